package mqtt

import (
	"fmt"
	"strings"
)

// Topic roots. Routing adapters address the controller per bus:
//
//	audiocontrol/routing/{bus}/command   controller → adapter
//	audiocontrol/routing/{bus}/ack       adapter → controller
//	audiocontrol/routing/{bus}/event     adapter → controller
const (
	// TopicPrefix is the base for every topic the controller uses.
	TopicPrefix = "audiocontrol"

	// TopicPrefixRouting is the base for routing adapter traffic.
	TopicPrefixRouting = "audiocontrol/routing"

	// TopicPrefixPolicy is the base for the remote policy engine.
	TopicPrefixPolicy = "audiocontrol/policy"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "audiocontrol/system"
)

// Topics provides builders for the controller's MQTT topics.
//
//	topics := mqtt.Topics{}
//	cmd := topics.RoutingCommand("virtdsp")
//	// Returns: "audiocontrol/routing/virtdsp/command"
type Topics struct{}

// =============================================================================
// Routing Topics
// =============================================================================

// RoutingCommand returns the topic a routing adapter receives commands on.
//
// Example: audiocontrol/routing/virtdsp/command
func (Topics) RoutingCommand(bus string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefixRouting, bus)
}

// RoutingAck returns the topic a routing adapter acknowledges commands on.
//
// Example: audiocontrol/routing/virtdsp/ack
func (Topics) RoutingAck(bus string) string {
	return fmt.Sprintf("%s/%s/ack", TopicPrefixRouting, bus)
}

// RoutingEvent returns the topic a routing adapter reports registrations
// and state changes on.
//
// Example: audiocontrol/routing/virtdsp/event
func (Topics) RoutingEvent(bus string) string {
	return fmt.Sprintf("%s/%s/event", TopicPrefixRouting, bus)
}

// BusFromRoutingTopic extracts the bus name from a routing ack or event
// topic.
func (Topics) BusFromRoutingTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, TopicPrefixRouting+"/")
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(rest, '/')
	if i <= 0 || i == len(rest)-1 {
		return "", false
	}
	return rest[:i], true
}

// =============================================================================
// Policy Topics
// =============================================================================

// PolicyHooks returns the topic hooks are forwarded to the remote policy on.
//
// Example: audiocontrol/policy/hooks
func (Topics) PolicyHooks() string {
	return TopicPrefixPolicy + "/hooks"
}

// PolicyActions returns the topic the remote policy installs action lists on.
//
// Example: audiocontrol/policy/actions
func (Topics) PolicyActions() string {
	return TopicPrefixPolicy + "/actions"
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the controller status topic (online, offline, LWT).
//
// Example: audiocontrol/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllRoutingAcks returns a pattern matching acknowledgements from every bus.
//
// Pattern: audiocontrol/routing/+/ack
func (Topics) AllRoutingAcks() string {
	return TopicPrefixRouting + "/+/ack"
}

// AllRoutingEvents returns a pattern matching events from every bus.
//
// Pattern: audiocontrol/routing/+/event
func (Topics) AllRoutingEvents() string {
	return TopicPrefixRouting + "/+/event"
}

// AllTopics returns a pattern matching all controller topics.
//
// Pattern: audiocontrol/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
