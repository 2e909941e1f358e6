package trigger

import "fmt"

// Kind enumerates the trigger variants.
type Kind int

// User-originated triggers.
const (
	UserConnectionRequest Kind = iota + 1
	UserDisconnectionRequest
	UserSetSinkMuteState
	UserSetVolume
	UserSetSinkMainSoundProperty
	UserSetSourceMainSoundProperty
	UserSetSystemProperty
	UserSetMainSinkNotificationConfiguration
	UserSetMainSourceNotificationConfiguration
)

// System-originated triggers.
const (
	SystemRegisterDomain Kind = iota + 100
	SystemRegisterSource
	SystemRegisterSink
	SystemRegisterGateway
	SystemDeregisterDomain
	SystemDeregisterSource
	SystemDeregisterSink
	SystemDeregisterGateway
	SystemDomainRegistrationComplete
	SystemSourceAvailabilityChanged
	SystemSinkAvailabilityChanged
	SystemInterruptStateChanged
	SystemSinkMuteStateChanged
	SystemSinkMainSoundPropertyChanged
	SystemSourceMainSoundPropertyChanged
	SystemVolumeChanged
	SystemSinkNotificationDataChanged
	SystemSourceNotificationDataChanged
	SystemConnectionStateChange
	SystemStoredSinkVolume
)

var kindNames = map[Kind]string{
	UserConnectionRequest:                      "USER_CONNECTION_REQUEST",
	UserDisconnectionRequest:                   "USER_DISCONNECTION_REQUEST",
	UserSetSinkMuteState:                       "USER_SET_SINK_MUTE_STATE",
	UserSetVolume:                              "USER_SET_VOLUME",
	UserSetSinkMainSoundProperty:               "USER_SET_SINK_MAIN_SOUND_PROPERTY",
	UserSetSourceMainSoundProperty:             "USER_SET_SOURCE_MAIN_SOUND_PROPERTY",
	UserSetSystemProperty:                      "USER_SET_SYSTEM_PROPERTY",
	UserSetMainSinkNotificationConfiguration:   "USER_SET_MAIN_SINK_NOTIFICATION_CONFIGURATION",
	UserSetMainSourceNotificationConfiguration: "USER_SET_MAIN_SOURCE_NOTIFICATION_CONFIGURATION",
	SystemRegisterDomain:                       "SYSTEM_REGISTER_DOMAIN",
	SystemRegisterSource:                       "SYSTEM_REGISTER_SOURCE",
	SystemRegisterSink:                         "SYSTEM_REGISTER_SINK",
	SystemRegisterGateway:                      "SYSTEM_REGISTER_GATEWAY",
	SystemDeregisterDomain:                     "SYSTEM_DEREGISTER_DOMAIN",
	SystemDeregisterSource:                     "SYSTEM_DEREGISTER_SOURCE",
	SystemDeregisterSink:                       "SYSTEM_DEREGISTER_SINK",
	SystemDeregisterGateway:                    "SYSTEM_DEREGISTER_GATEWAY",
	SystemDomainRegistrationComplete:           "SYSTEM_DOMAIN_REGISTRATION_COMPLETE",
	SystemSourceAvailabilityChanged:            "SYSTEM_SOURCE_AVAILABILITY_CHANGED",
	SystemSinkAvailabilityChanged:              "SYSTEM_SINK_AVAILABILITY_CHANGED",
	SystemInterruptStateChanged:                "SYSTEM_INTERRUPT_STATE_CHANGED",
	SystemSinkMuteStateChanged:                 "SYSTEM_SINK_MUTE_STATE_CHANGED",
	SystemSinkMainSoundPropertyChanged:         "SYSTEM_SINK_MAIN_SOUND_PROPERTY_CHANGED",
	SystemSourceMainSoundPropertyChanged:       "SYSTEM_SOURCE_MAIN_SOUND_PROPERTY_CHANGED",
	SystemVolumeChanged:                        "SYSTEM_VOLUME_CHANGED",
	SystemSinkNotificationDataChanged:          "SYSTEM_SINK_NOTIFICATION_DATA_CHANGED",
	SystemSourceNotificationDataChanged:        "SYSTEM_SOURCE_NOTIFICATION_DATA_CHANGED",
	SystemConnectionStateChange:                "SYSTEM_CONNECTION_STATE_CHANGE",
	SystemStoredSinkVolume:                     "SYSTEM_STORED_SINK_VOLUME",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TRIGGER_UNKNOWN(%d)", int(k))
}

// AllKinds returns every trigger kind.
func AllKinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := UserConnectionRequest; k <= UserSetMainSourceNotificationConfiguration; k++ {
		out = append(out, k)
	}
	for k := SystemRegisterDomain; k <= SystemStoredSinkVolume; k++ {
		out = append(out, k)
	}
	return out
}
