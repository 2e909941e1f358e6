package policy

import (
	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
)

// Hooks receives one call per forwarded trigger. A nil return means the
// engine accepted the trigger; it may already have called
// Receive.SetListActions before returning.
type Hooks interface {
	HookRegisterDomain(name string, status error) error
	HookRegisterSource(name string, status error) error
	HookRegisterSink(name string, status error) error
	HookRegisterGateway(name string, status error) error
	HookDeregisterDomain(name string, status error) error
	HookDeregisterSource(name string, status error) error
	HookDeregisterSink(name string, status error) error
	HookDeregisterGateway(name string, status error) error
	HookDomainRegistrationComplete(domain string) error

	HookConnectionRequest(class, source, sink string) error
	HookDisconnectionRequest(class, source, sink string) error
	HookSetSinkMuteState(sink string, state audio.MuteState) error
	HookSetVolume(sink string, volume audio.MainVolume) error
	HookSetSinkMainSoundProperty(sink string, p audio.MainSoundProperty) error
	HookSetSourceMainSoundProperty(source string, p audio.MainSoundProperty) error
	HookSetSystemProperty(p audio.SystemProperty) error
	HookSetMainSinkNotificationConfiguration(sink string, c audio.NotificationConfiguration) error
	HookSetMainSourceNotificationConfiguration(source string, c audio.NotificationConfiguration) error

	HookSourceAvailabilityChanged(source string, a audio.Availability) error
	HookSinkAvailabilityChanged(sink string, a audio.Availability) error
	HookInterruptStateChanged(source string, state audio.InterruptState) error
	HookSinkMuteStateChanged(sink string, state audio.MuteState) error
	HookSinkMainSoundPropertyChanged(sink string, p audio.MainSoundProperty) error
	HookSourceMainSoundPropertyChanged(source string, p audio.MainSoundProperty) error
	HookVolumeChanged(sink string, volume audio.MainVolume) error
	HookSinkNotificationDataChanged(sink string, p audio.NotificationPayload) error
	HookSourceNotificationDataChanged(source string, p audio.NotificationPayload) error
	HookConnectionStateChange(connection string, state audio.ConnectionState, status error) error
	HookStoredSinkVolume(class, sink string, volume audio.MainVolume) error
}

// Configuration lists the statically configured elements.
type Configuration interface {
	Domains() []element.DomainConfig
	Sources() []element.SourceConfig
	Sinks() []element.SinkConfig
	Gateways() []element.GatewayConfig
	Classes() []element.ClassConfig
	SystemProperties() []audio.SystemProperty
}

// Send is what the controller needs from a policy engine.
type Send interface {
	Hooks
	Configuration

	// Startup hands the engine the controller's Receive side.
	Startup(r Receive) error

	// Shutdown tells the engine the controller is going away.
	Shutdown()
}

// ListType distinguishes action lists installed by the engine on its own
// behalf (system) from the ones answering a trigger (normal).
type ListType string

// ListType constants.
const (
	ListNormal ListType = "normal"
	ListSystem ListType = "system"
)

// Receive is what the policy engine may ask of the controller.
type Receive interface {
	SetListActions(actions []Action, list ListType) error

	IsRegistered(kind element.Kind, name string) bool
	IsDomainRegistrationComplete(domain string) bool
	Availability(kind element.Kind, name string) (audio.Availability, error)
	MuteState(kind element.Kind, name string) (audio.MuteState, error)
	InterruptState(source string) (audio.InterruptState, error)
	Volume(kind element.Kind, name string) (audio.Volume, error)
	MainVolume(kind element.Kind, name string) (audio.MainVolume, error)
	SoundProperty(kind element.Kind, name string, typ int16) (int16, error)
	MainSoundProperty(kind element.Kind, name string, typ int16) (int16, error)
	SystemProperty(typ int16) (int16, error)
	ListMainConnections(kind element.Kind, name string, order Order) ([]ConnectionInfo, error)
	ListClasses(kind element.Kind, name string) ([]string, error)
}

// ConnectionInfo is a read-only view of a main connection.
type ConnectionInfo struct {
	ID       audio.ID              `json:"id"`
	Name     string                `json:"name"`
	Source   string                `json:"source"`
	Sink     string                `json:"sink"`
	Class    string                `json:"class"`
	State    audio.ConnectionState `json:"state"`
	Volume   audio.MainVolume      `json:"volume"`
	Priority int32                 `json:"priority"`
}
