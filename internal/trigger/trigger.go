package trigger

import "github.com/nerrad567/gray-logic-audio/internal/audio"

// Trigger is one queued event. The concrete types below carry the payload.
type Trigger interface {
	Kind() Kind
}

// ConnectionRequest asks for a main connection to be set up or torn down.
type ConnectionRequest struct {
	kind   Kind
	Class  string
	Source string
	Sink   string
}

// NewConnect creates a USER_CONNECTION_REQUEST.
func NewConnect(class, source, sink string) ConnectionRequest {
	return ConnectionRequest{kind: UserConnectionRequest, Class: class, Source: source, Sink: sink}
}

// NewDisconnect creates a USER_DISCONNECTION_REQUEST.
func NewDisconnect(class, source, sink string) ConnectionRequest {
	return ConnectionRequest{kind: UserDisconnectionRequest, Class: class, Source: source, Sink: sink}
}

func (t ConnectionRequest) Kind() Kind { return t.kind }

// MuteRequest is a USER_SET_SINK_MUTE_STATE.
type MuteRequest struct {
	Sink  string
	State audio.MuteState
}

func (MuteRequest) Kind() Kind { return UserSetSinkMuteState }

// VolumeRequest is a USER_SET_VOLUME.
type VolumeRequest struct {
	Sink   string
	Volume audio.MainVolume
}

func (VolumeRequest) Kind() Kind { return UserSetVolume }

// SoundPropertyRequest asks for a main sound property of a sink or source.
type SoundPropertyRequest struct {
	kind     Kind
	Name     string
	Property audio.MainSoundProperty
}

// NewSinkSoundProperty creates a USER_SET_SINK_MAIN_SOUND_PROPERTY.
func NewSinkSoundProperty(sink string, p audio.MainSoundProperty) SoundPropertyRequest {
	return SoundPropertyRequest{kind: UserSetSinkMainSoundProperty, Name: sink, Property: p}
}

// NewSourceSoundProperty creates a USER_SET_SOURCE_MAIN_SOUND_PROPERTY.
func NewSourceSoundProperty(source string, p audio.MainSoundProperty) SoundPropertyRequest {
	return SoundPropertyRequest{kind: UserSetSourceMainSoundProperty, Name: source, Property: p}
}

func (t SoundPropertyRequest) Kind() Kind { return t.kind }

// SystemPropertyRequest is a USER_SET_SYSTEM_PROPERTY.
type SystemPropertyRequest struct {
	Property audio.SystemProperty
}

func (SystemPropertyRequest) Kind() Kind { return UserSetSystemProperty }

// NotificationConfigurationRequest asks for a main notification
// configuration of a sink or source.
type NotificationConfigurationRequest struct {
	kind          Kind
	Name          string
	Configuration audio.NotificationConfiguration
}

// NewSinkNotificationConfiguration creates a USER_SET_MAIN_SINK_NOTIFICATION_CONFIGURATION.
func NewSinkNotificationConfiguration(sink string, c audio.NotificationConfiguration) NotificationConfigurationRequest {
	return NotificationConfigurationRequest{kind: UserSetMainSinkNotificationConfiguration, Name: sink, Configuration: c}
}

// NewSourceNotificationConfiguration creates a USER_SET_MAIN_SOURCE_NOTIFICATION_CONFIGURATION.
func NewSourceNotificationConfiguration(source string, c audio.NotificationConfiguration) NotificationConfigurationRequest {
	return NotificationConfigurationRequest{kind: UserSetMainSourceNotificationConfiguration, Name: source, Configuration: c}
}

func (t NotificationConfigurationRequest) Kind() Kind { return t.kind }

// Registration reports that a domain, source, sink or gateway was registered
// or deregistered. Status is the registry's verdict.
type Registration struct {
	kind   Kind
	Name   string
	Status error
}

// NewRegistration creates a SYSTEM_REGISTER_* or SYSTEM_DEREGISTER_* trigger.
// k must be one of those kinds.
func NewRegistration(k Kind, name string, status error) Registration {
	return Registration{kind: k, Name: name, Status: status}
}

func (t Registration) Kind() Kind { return t.kind }

// DomainRegistrationComplete is a SYSTEM_DOMAIN_REGISTRATION_COMPLETE.
type DomainRegistrationComplete struct {
	Domain string
}

func (DomainRegistrationComplete) Kind() Kind { return SystemDomainRegistrationComplete }

// AvailabilityChange reports a new availability of a source or sink.
type AvailabilityChange struct {
	kind         Kind
	Name         string
	Availability audio.Availability
}

// NewSourceAvailability creates a SYSTEM_SOURCE_AVAILABILITY_CHANGED.
func NewSourceAvailability(source string, a audio.Availability) AvailabilityChange {
	return AvailabilityChange{kind: SystemSourceAvailabilityChanged, Name: source, Availability: a}
}

// NewSinkAvailability creates a SYSTEM_SINK_AVAILABILITY_CHANGED.
func NewSinkAvailability(sink string, a audio.Availability) AvailabilityChange {
	return AvailabilityChange{kind: SystemSinkAvailabilityChanged, Name: sink, Availability: a}
}

func (t AvailabilityChange) Kind() Kind { return t.kind }

// InterruptStateChange is a SYSTEM_INTERRUPT_STATE_CHANGED.
type InterruptStateChange struct {
	Source string
	State  audio.InterruptState
}

func (InterruptStateChange) Kind() Kind { return SystemInterruptStateChanged }

// MuteStateChange is a SYSTEM_SINK_MUTE_STATE_CHANGED.
type MuteStateChange struct {
	Sink  string
	State audio.MuteState
}

func (MuteStateChange) Kind() Kind { return SystemSinkMuteStateChanged }

// SoundPropertyChange reports a main sound property changed by the routing
// side.
type SoundPropertyChange struct {
	kind     Kind
	Name     string
	Property audio.MainSoundProperty
}

// NewSinkSoundPropertyChange creates a SYSTEM_SINK_MAIN_SOUND_PROPERTY_CHANGED.
func NewSinkSoundPropertyChange(sink string, p audio.MainSoundProperty) SoundPropertyChange {
	return SoundPropertyChange{kind: SystemSinkMainSoundPropertyChanged, Name: sink, Property: p}
}

// NewSourceSoundPropertyChange creates a SYSTEM_SOURCE_MAIN_SOUND_PROPERTY_CHANGED.
func NewSourceSoundPropertyChange(source string, p audio.MainSoundProperty) SoundPropertyChange {
	return SoundPropertyChange{kind: SystemSourceMainSoundPropertyChanged, Name: source, Property: p}
}

func (t SoundPropertyChange) Kind() Kind { return t.kind }

// VolumeChange is a SYSTEM_VOLUME_CHANGED: a sink's main volume moved
// without a user request.
type VolumeChange struct {
	Sink   string
	Volume audio.MainVolume
}

func (VolumeChange) Kind() Kind { return SystemVolumeChanged }

// NotificationDataChange carries notification data reported by a sink or
// source.
type NotificationDataChange struct {
	kind    Kind
	Name    string
	Payload audio.NotificationPayload
}

// NewSinkNotificationData creates a SYSTEM_SINK_NOTIFICATION_DATA_CHANGED.
func NewSinkNotificationData(sink string, p audio.NotificationPayload) NotificationDataChange {
	return NotificationDataChange{kind: SystemSinkNotificationDataChanged, Name: sink, Payload: p}
}

// NewSourceNotificationData creates a SYSTEM_SOURCE_NOTIFICATION_DATA_CHANGED.
func NewSourceNotificationData(source string, p audio.NotificationPayload) NotificationDataChange {
	return NotificationDataChange{kind: SystemSourceNotificationDataChanged, Name: source, Payload: p}
}

func (t NotificationDataChange) Kind() Kind { return t.kind }

// ConnectionStateChange reports that a main connection changed state, with
// Status carrying the error that caused it, if any.
type ConnectionStateChange struct {
	Connection string
	State      audio.ConnectionState
	Status     error
}

func (ConnectionStateChange) Kind() Kind { return SystemConnectionStateChange }

// StoredSinkVolume replays a persisted sink volume of a class.
type StoredSinkVolume struct {
	Class  string
	Sink   string
	Volume audio.MainVolume
}

func (StoredSinkVolume) Kind() Kind { return SystemStoredSinkVolume }
