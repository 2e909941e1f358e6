package policy

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// MQTTClient is the subset of the broker client the MQTT engine needs.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
	Unsubscribe(topics ...string) error
}

// Executor runs fn on the controller's goroutine.
type Executor interface {
	Do(fn func()) error
}

// Logger is the logging surface used by the engines.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// HookMessage is published for every hook the controller forwards.
type HookMessage struct {
	Hook         string                           `json:"hook"`
	Name         string                           `json:"name,omitempty"`
	Class        string                           `json:"class,omitempty"`
	Source       string                           `json:"source,omitempty"`
	Sink         string                           `json:"sink,omitempty"`
	Status       string                           `json:"status,omitempty"`
	State        string                           `json:"state,omitempty"`
	Volume       *int16                           `json:"volume,omitempty"`
	Property     *audio.MainSoundProperty         `json:"property,omitempty"`
	System       *audio.SystemProperty            `json:"system_property,omitempty"`
	Availability *audio.Availability              `json:"availability,omitempty"`
	Notification *audio.NotificationConfiguration `json:"notification,omitempty"`
	Payload      *audio.NotificationPayload       `json:"payload,omitempty"`
}

// ActionListMessage is what a remote rule engine publishes to install actions.
type ActionListMessage struct {
	List    ListType `json:"list"`
	Actions []Action `json:"actions"`
}

// MQTTConfig holds the topics and QoS of an MQTTEngine.
type MQTTConfig struct {
	HookTopic    string
	ActionsTopic string
	QoS          byte
}

// MQTTEngine forwards every hook to a remote rule engine over MQTT and
// installs the action lists it publishes back. Configuration is served from
// the static file.
type MQTTEngine struct {
	*StaticConfig

	client MQTTClient
	exec   Executor
	cfg    MQTTConfig
	logger Logger

	mu   sync.Mutex
	recv Receive
}

// NewMQTTEngine creates an engine publishing on cfg.HookTopic.
func NewMQTTEngine(static *StaticConfig, client MQTTClient, exec Executor, cfg MQTTConfig) *MQTTEngine {
	if static == nil {
		static = &StaticConfig{}
	}
	return &MQTTEngine{
		StaticConfig: static,
		client:       client,
		exec:         exec,
		cfg:          cfg,
		logger:       noopLogger{},
	}
}

// SetLogger sets the logger for the engine.
func (e *MQTTEngine) SetLogger(logger Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Startup subscribes to the action topic.
func (e *MQTTEngine) Startup(r Receive) error {
	e.mu.Lock()
	e.recv = r
	e.mu.Unlock()
	if err := e.client.Subscribe(e.cfg.ActionsTopic, e.cfg.QoS, e.handleActions); err != nil {
		return fmt.Errorf("subscribing to %s: %w", e.cfg.ActionsTopic, err)
	}
	e.logger.Info("policy engine subscribed", "topic", e.cfg.ActionsTopic)
	return nil
}

// Shutdown unsubscribes and detaches from the controller.
func (e *MQTTEngine) Shutdown() {
	if err := e.client.Unsubscribe(e.cfg.ActionsTopic); err != nil {
		e.logger.Warn("policy engine unsubscribe failed", "error", err)
	}
	e.mu.Lock()
	e.recv = nil
	e.mu.Unlock()
}

func (e *MQTTEngine) handleActions(topic string, payload []byte) error {
	var msg ActionListMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	if msg.List == "" {
		msg.List = ListNormal
	}
	e.mu.Lock()
	recv := e.recv
	e.mu.Unlock()
	if recv == nil {
		return ErrNotStarted
	}
	e.logger.Debug("action list received", "topic", topic, "list", msg.List, "count", len(msg.Actions))
	return e.exec.Do(func() {
		if err := recv.SetListActions(msg.Actions, msg.List); err != nil {
			e.logger.Warn("action list rejected", "list", msg.List, "error", err)
		}
	})
}

func (e *MQTTEngine) publish(m HookMessage) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := e.client.Publish(e.cfg.HookTopic, payload, e.cfg.QoS, false); err != nil {
		return fmt.Errorf("%w: %v", audio.ErrCommunication, err)
	}
	return nil
}

func registration(hook, name string, status error) HookMessage {
	return HookMessage{Hook: hook, Name: name, Status: audio.Code(status)}
}

func volume(v int16) *int16 { return &v }

func (e *MQTTEngine) HookRegisterDomain(name string, status error) error {
	return e.publish(registration("HookRegisterDomain", name, status))
}

func (e *MQTTEngine) HookRegisterSource(name string, status error) error {
	return e.publish(registration("HookRegisterSource", name, status))
}

func (e *MQTTEngine) HookRegisterSink(name string, status error) error {
	return e.publish(registration("HookRegisterSink", name, status))
}

func (e *MQTTEngine) HookRegisterGateway(name string, status error) error {
	return e.publish(registration("HookRegisterGateway", name, status))
}

func (e *MQTTEngine) HookDeregisterDomain(name string, status error) error {
	return e.publish(registration("HookDeregisterDomain", name, status))
}

func (e *MQTTEngine) HookDeregisterSource(name string, status error) error {
	return e.publish(registration("HookDeregisterSource", name, status))
}

func (e *MQTTEngine) HookDeregisterSink(name string, status error) error {
	return e.publish(registration("HookDeregisterSink", name, status))
}

func (e *MQTTEngine) HookDeregisterGateway(name string, status error) error {
	return e.publish(registration("HookDeregisterGateway", name, status))
}

func (e *MQTTEngine) HookDomainRegistrationComplete(domain string) error {
	return e.publish(HookMessage{Hook: "HookDomainRegistrationComplete", Name: domain})
}

func (e *MQTTEngine) HookConnectionRequest(class, source, sink string) error {
	return e.publish(HookMessage{Hook: "HookConnectionRequest", Class: class, Source: source, Sink: sink})
}

func (e *MQTTEngine) HookDisconnectionRequest(class, source, sink string) error {
	return e.publish(HookMessage{Hook: "HookDisconnectionRequest", Class: class, Source: source, Sink: sink})
}

func (e *MQTTEngine) HookSetSinkMuteState(sink string, m audio.MuteState) error {
	return e.publish(HookMessage{Hook: "HookSetSinkMuteState", Sink: sink, State: string(m)})
}

func (e *MQTTEngine) HookSetVolume(sink string, v audio.MainVolume) error {
	return e.publish(HookMessage{Hook: "HookSetVolume", Sink: sink, Volume: volume(int16(v))})
}

func (e *MQTTEngine) HookSetSinkMainSoundProperty(sink string, p audio.MainSoundProperty) error {
	return e.publish(HookMessage{Hook: "HookSetSinkMainSoundProperty", Sink: sink, Property: &p})
}

func (e *MQTTEngine) HookSetSourceMainSoundProperty(source string, p audio.MainSoundProperty) error {
	return e.publish(HookMessage{Hook: "HookSetSourceMainSoundProperty", Source: source, Property: &p})
}

func (e *MQTTEngine) HookSetSystemProperty(p audio.SystemProperty) error {
	return e.publish(HookMessage{Hook: "HookSetSystemProperty", System: &p})
}

func (e *MQTTEngine) HookSetMainSinkNotificationConfiguration(sink string, c audio.NotificationConfiguration) error {
	return e.publish(HookMessage{Hook: "HookSetMainSinkNotificationConfiguration", Sink: sink, Notification: &c})
}

func (e *MQTTEngine) HookSetMainSourceNotificationConfiguration(source string, c audio.NotificationConfiguration) error {
	return e.publish(HookMessage{Hook: "HookSetMainSourceNotificationConfiguration", Source: source, Notification: &c})
}

func (e *MQTTEngine) HookSourceAvailabilityChanged(source string, a audio.Availability) error {
	return e.publish(HookMessage{Hook: "HookSourceAvailabilityChanged", Source: source, Availability: &a})
}

func (e *MQTTEngine) HookSinkAvailabilityChanged(sink string, a audio.Availability) error {
	return e.publish(HookMessage{Hook: "HookSinkAvailabilityChanged", Sink: sink, Availability: &a})
}

func (e *MQTTEngine) HookInterruptStateChanged(source string, s audio.InterruptState) error {
	return e.publish(HookMessage{Hook: "HookInterruptStateChanged", Source: source, State: string(s)})
}

func (e *MQTTEngine) HookSinkMuteStateChanged(sink string, m audio.MuteState) error {
	return e.publish(HookMessage{Hook: "HookSinkMuteStateChanged", Sink: sink, State: string(m)})
}

func (e *MQTTEngine) HookSinkMainSoundPropertyChanged(sink string, p audio.MainSoundProperty) error {
	return e.publish(HookMessage{Hook: "HookSinkMainSoundPropertyChanged", Sink: sink, Property: &p})
}

func (e *MQTTEngine) HookSourceMainSoundPropertyChanged(source string, p audio.MainSoundProperty) error {
	return e.publish(HookMessage{Hook: "HookSourceMainSoundPropertyChanged", Source: source, Property: &p})
}

func (e *MQTTEngine) HookVolumeChanged(sink string, v audio.MainVolume) error {
	return e.publish(HookMessage{Hook: "HookVolumeChanged", Sink: sink, Volume: volume(int16(v))})
}

func (e *MQTTEngine) HookSinkNotificationDataChanged(sink string, p audio.NotificationPayload) error {
	return e.publish(HookMessage{Hook: "HookSinkNotificationDataChanged", Sink: sink, Payload: &p})
}

func (e *MQTTEngine) HookSourceNotificationDataChanged(source string, p audio.NotificationPayload) error {
	return e.publish(HookMessage{Hook: "HookSourceNotificationDataChanged", Source: source, Payload: &p})
}

func (e *MQTTEngine) HookConnectionStateChange(connection string, s audio.ConnectionState, status error) error {
	return e.publish(HookMessage{Hook: "HookConnectionStateChange", Name: connection, State: string(s), Status: audio.Code(status)})
}

func (e *MQTTEngine) HookStoredSinkVolume(class, sink string, v audio.MainVolume) error {
	return e.publish(HookMessage{Hook: "HookStoredSinkVolume", Class: class, Sink: sink, Volume: volume(int16(v))})
}
