package policy

import "github.com/nerrad567/gray-logic-audio/internal/audio"

// NopHooks accepts every hook and does nothing. Embed it to implement only
// the hooks an engine cares about.
type NopHooks struct{}

func (NopHooks) HookRegisterDomain(string, error) error                 { return nil }
func (NopHooks) HookRegisterSource(string, error) error                 { return nil }
func (NopHooks) HookRegisterSink(string, error) error                   { return nil }
func (NopHooks) HookRegisterGateway(string, error) error                { return nil }
func (NopHooks) HookDeregisterDomain(string, error) error               { return nil }
func (NopHooks) HookDeregisterSource(string, error) error               { return nil }
func (NopHooks) HookDeregisterSink(string, error) error                 { return nil }
func (NopHooks) HookDeregisterGateway(string, error) error              { return nil }
func (NopHooks) HookDomainRegistrationComplete(string) error            { return nil }
func (NopHooks) HookConnectionRequest(string, string, string) error     { return nil }
func (NopHooks) HookDisconnectionRequest(string, string, string) error  { return nil }
func (NopHooks) HookSetSinkMuteState(string, audio.MuteState) error     { return nil }
func (NopHooks) HookSetVolume(string, audio.MainVolume) error           { return nil }
func (NopHooks) HookSetSystemProperty(audio.SystemProperty) error       { return nil }
func (NopHooks) HookSinkMuteStateChanged(string, audio.MuteState) error { return nil }
func (NopHooks) HookVolumeChanged(string, audio.MainVolume) error       { return nil }

func (NopHooks) HookInterruptStateChanged(string, audio.InterruptState) error {
	return nil
}

func (NopHooks) HookSetSinkMainSoundProperty(string, audio.MainSoundProperty) error {
	return nil
}

func (NopHooks) HookSetSourceMainSoundProperty(string, audio.MainSoundProperty) error {
	return nil
}

func (NopHooks) HookSetMainSinkNotificationConfiguration(string, audio.NotificationConfiguration) error {
	return nil
}

func (NopHooks) HookSetMainSourceNotificationConfiguration(string, audio.NotificationConfiguration) error {
	return nil
}

func (NopHooks) HookSourceAvailabilityChanged(string, audio.Availability) error {
	return nil
}

func (NopHooks) HookSinkAvailabilityChanged(string, audio.Availability) error {
	return nil
}

func (NopHooks) HookSinkMainSoundPropertyChanged(string, audio.MainSoundProperty) error {
	return nil
}

func (NopHooks) HookSourceMainSoundPropertyChanged(string, audio.MainSoundProperty) error {
	return nil
}

func (NopHooks) HookSinkNotificationDataChanged(string, audio.NotificationPayload) error {
	return nil
}

func (NopHooks) HookSourceNotificationDataChanged(string, audio.NotificationPayload) error {
	return nil
}

func (NopHooks) HookConnectionStateChange(string, audio.ConnectionState, error) error {
	return nil
}

func (NopHooks) HookStoredSinkVolume(string, string, audio.MainVolume) error {
	return nil
}
