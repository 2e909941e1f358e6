package policy

import (
	"strconv"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// Default is a built-in engine for installations without an external rule
// engine. User requests become the matching action unchanged, a registered
// domain gets its statically configured elements registered, an interrupted
// source is suspended and an unavailable source or sink is disconnected.
type Default struct {
	NopHooks
	*StaticConfig

	recv Receive
}

// NewDefault creates the built-in engine over static.
func NewDefault(static *StaticConfig) *Default {
	if static == nil {
		static = &StaticConfig{}
	}
	return &Default{StaticConfig: static}
}

// Startup implements Send.
func (d *Default) Startup(r Receive) error {
	d.recv = r
	return nil
}

// Shutdown implements Send.
func (d *Default) Shutdown() {
	d.recv = nil
}

func (d *Default) install(actions ...Action) error {
	if d.recv == nil {
		return ErrNotStarted
	}
	return d.recv.SetListActions(actions, ListNormal)
}

func itoa(v int16) string { return strconv.Itoa(int(v)) }

// HookRegisterDomain registers the static sources, sinks and gateways of a
// successfully registered domain.
func (d *Default) HookRegisterDomain(name string, status error) error {
	if status != nil {
		return nil
	}
	return d.install(NewAction(ActionRegister, ParamDomainName, name))
}

func (d *Default) HookConnectionRequest(class, source, sink string) error {
	return d.install(NewAction(ActionConnect,
		ParamClassName, class, ParamSourceName, source, ParamSinkName, sink))
}

func (d *Default) HookDisconnectionRequest(class, source, sink string) error {
	return d.install(NewAction(ActionDisconnect,
		ParamClassName, class, ParamSourceName, source, ParamSinkName, sink))
}

func (d *Default) HookSetVolume(sink string, v audio.MainVolume) error {
	return d.install(NewAction(ActionSetVolume, ParamSinkName, sink, ParamMainVolume, itoa(int16(v))))
}

func (d *Default) HookStoredSinkVolume(_, sink string, v audio.MainVolume) error {
	return d.HookSetVolume(sink, v)
}

func (d *Default) HookSetSinkMuteState(sink string, m audio.MuteState) error {
	name := ActionUnmute
	if m == audio.Muted {
		name = ActionMute
	}
	return d.install(NewAction(name, ParamSinkName, sink))
}

func (d *Default) HookSetSinkMainSoundProperty(sink string, p audio.MainSoundProperty) error {
	return d.install(NewAction(ActionSetProperty, ParamSinkName, sink,
		ParamPropertyType, itoa(p.Type), ParamPropertyValue, itoa(p.Value)))
}

func (d *Default) HookSetSourceMainSoundProperty(source string, p audio.MainSoundProperty) error {
	return d.install(NewAction(ActionSetProperty, ParamSourceName, source,
		ParamPropertyType, itoa(p.Type), ParamPropertyValue, itoa(p.Value)))
}

func (d *Default) HookSetSystemProperty(p audio.SystemProperty) error {
	return d.install(NewAction(ActionSetSystemProperty,
		ParamPropertyType, itoa(p.Type), ParamPropertyValue, itoa(p.Value)))
}

func (d *Default) HookSetMainSinkNotificationConfiguration(sink string, c audio.NotificationConfiguration) error {
	return d.install(notificationAction(ParamSinkName, sink, c))
}

func (d *Default) HookSetMainSourceNotificationConfiguration(source string, c audio.NotificationConfiguration) error {
	return d.install(notificationAction(ParamSourceName, source, c))
}

func notificationAction(key, name string, c audio.NotificationConfiguration) Action {
	return NewAction(ActionSetNotificationConfiguration, key, name,
		ParamNotificationType, itoa(c.Type),
		ParamNotificationStatus, string(c.Status),
		ParamNotificationParam, itoa(c.Parameter))
}

func (d *Default) HookInterruptStateChanged(source string, s audio.InterruptState) error {
	switch s {
	case audio.Interrupted:
		return d.install(NewAction(ActionSuspend, ParamSourceName, source))
	case audio.InterruptOff:
		return d.install(NewAction(ActionResume, ParamSourceName, source))
	}
	return nil
}

func (d *Default) HookSourceAvailabilityChanged(source string, a audio.Availability) error {
	if a.State != audio.Unavailable {
		return nil
	}
	return d.install(NewAction(ActionDisconnect, ParamSourceName, source))
}

func (d *Default) HookSinkAvailabilityChanged(sink string, a audio.Availability) error {
	if a.State != audio.Unavailable {
		return nil
	}
	return d.install(NewAction(ActionDisconnect, ParamSinkName, sink))
}

var (
	_ Send = (*Default)(nil)
	_ Send = (*MQTTEngine)(nil)
)
