package routing

import (
	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
)

// Command operations.
const (
	OpConnect                = "connect"
	OpDisconnect             = "disconnect"
	OpSetSinkVolume          = "set_sink_volume"
	OpSetSourceVolume        = "set_source_volume"
	OpSetSourceState         = "set_source_state"
	OpSetSinkSoundProperty   = "set_sink_sound_property"
	OpSetSourceSoundProperty = "set_source_sound_property"
	OpSetSinkNotification    = "set_sink_notification"
	OpSetSourceNotification  = "set_source_notification"
	OpAbort                  = "abort"
	OpRegistered             = "registered"
)

// Command is published on a bus's command topic.
type Command struct {
	ID           string                           `json:"id"`
	Op           string                           `json:"op"`
	Handle       string                           `json:"handle,omitempty"`
	Source       audio.ID                         `json:"source,omitempty"`
	Sink         audio.ID                         `json:"sink,omitempty"`
	Connection   audio.ID                         `json:"connection,omitempty"`
	Format       audio.ConnectionFormat           `json:"format,omitempty"`
	Volume       *audio.Volume                    `json:"volume,omitempty"`
	Ramp         audio.RampType                   `json:"ramp,omitempty"`
	Duration     uint16                           `json:"duration,omitempty"`
	State        audio.SourceState                `json:"state,omitempty"`
	Property     *audio.SoundProperty             `json:"property,omitempty"`
	Notification *audio.NotificationConfiguration `json:"notification,omitempty"`

	// Registration replies.
	Kind   string   `json:"kind,omitempty"`
	Name   string   `json:"name,omitempty"`
	Assign audio.ID `json:"assigned_id,omitempty"`
	Status string   `json:"status,omitempty"`
}

// Ack answers a Command. ID and Handle must both match the command.
type Ack struct {
	ID     string        `json:"id"`
	Handle string        `json:"handle"`
	Status string        `json:"status"`
	Volume *audio.Volume `json:"volume,omitempty"`
}

// Event names.
const (
	EventRegisterDomain         = "register_domain"
	EventRegisterSource         = "register_source"
	EventRegisterSink           = "register_sink"
	EventRegisterGateway        = "register_gateway"
	EventDeregisterDomain       = "deregister_domain"
	EventDeregisterSource       = "deregister_source"
	EventDeregisterSink         = "deregister_sink"
	EventDeregisterGateway      = "deregister_gateway"
	EventRegistrationComplete   = "domain_registration_complete"
	EventSourceAvailability     = "source_availability"
	EventSinkAvailability       = "sink_availability"
	EventInterruptState         = "interrupt_state"
	EventSinkMuteState          = "sink_mute_state"
	EventSinkSoundProperty      = "sink_sound_property"
	EventSourceSoundProperty    = "source_sound_property"
	EventVolume                 = "volume"
	EventSinkNotificationData   = "sink_notification_data"
	EventSourceNotificationData = "source_notification_data"
	EventConnectionState        = "connection_state"
)

// Event is published by a routing adapter on its event topic.
type Event struct {
	Event string   `json:"event"`
	ID    audio.ID `json:"id,omitempty"`

	Domain  *element.DomainConfig  `json:"domain,omitempty"`
	Source  *element.SourceConfig  `json:"source,omitempty"`
	Sink    *element.SinkConfig    `json:"sink,omitempty"`
	Gateway *element.GatewayConfig `json:"gateway,omitempty"`

	Availability    *audio.Availability        `json:"availability,omitempty"`
	InterruptState  audio.InterruptState       `json:"interrupt_state,omitempty"`
	MuteState       audio.MuteState            `json:"mute_state,omitempty"`
	ConnectionState audio.ConnectionState      `json:"connection_state,omitempty"`
	Status          string                     `json:"status,omitempty"`
	Property        *audio.SoundProperty       `json:"property,omitempty"`
	Volume          *audio.Volume              `json:"volume,omitempty"`
	Payload         *audio.NotificationPayload `json:"payload,omitempty"`
}
