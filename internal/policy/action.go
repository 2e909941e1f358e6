package policy

import (
	"fmt"
	"strconv"
)

// Action names understood by the controller.
const (
	ActionConnect                      = "ACTION_CONNECT"
	ActionDisconnect                   = "ACTION_DISCONNECT"
	ActionSetVolume                    = "ACTION_SET_VOLUME"
	ActionMute                         = "ACTION_MUTE"
	ActionUnmute                       = "ACTION_UNMUTE"
	ActionLimit                        = "ACTION_LIMIT"
	ActionUnlimit                      = "ACTION_UNLIMIT"
	ActionSuspend                      = "ACTION_SUSPEND"
	ActionResume                       = "ACTION_RESUME"
	ActionSetProperty                  = "ACTION_SET_PROPERTY"
	ActionSetSourceState               = "ACTION_SET_SOURCE_STATE"
	ActionSetSystemProperty            = "ACTION_SET_SYSTEM_PROPERTY"
	ActionSetNotificationConfiguration = "ACTION_SET_NOTIFICATION_CONFIGURATION"
	ActionRegister                     = "ACTION_REGISTER"
)

// Parameter keys of an Action.
const (
	ParamClassName          = "className"
	ParamSourceName         = "sourceName"
	ParamSinkName           = "sinkName"
	ParamDomainName         = "domainName"
	ParamExceptSource       = "exceptSource"
	ParamExceptSink         = "exceptSink"
	ParamMainVolume         = "mainVolume"
	ParamMainVolumeStep     = "mainVolumeStep"
	ParamLimitVolume        = "limitVolume"
	ParamRampType           = "rampType"
	ParamRampDuration       = "rampDuration"
	ParamPropertyType       = "propertyType"
	ParamPropertyValue      = "propertyValue"
	ParamSourceState        = "sourceState"
	ParamNotificationType   = "notificationType"
	ParamNotificationStatus = "notificationStatus"
	ParamNotificationParam  = "notificationParam"
	ParamOrder              = "order"
)

// Action is one entry of an action list: a name and string parameters.
type Action struct {
	Name   string            `json:"name" yaml:"name"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// NewAction builds an action from alternating key/value pairs.
func NewAction(name string, kv ...string) Action {
	a := Action{Name: name, Params: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		a.Params[kv[i]] = kv[i+1]
	}
	return a
}

// Param returns the value of key, or "" when absent.
func (a Action) Param(key string) string {
	return a.Params[key]
}

// Has reports whether key is set to a non-empty value.
func (a Action) Has(key string) bool {
	return a.Params[key] != ""
}

// Require returns the value of key or ErrMissingParam.
func (a Action) Require(key string) (string, error) {
	v := a.Params[key]
	if v == "" {
		return "", fmt.Errorf("%w: %s needs %s", ErrMissingParam, a.Name, key)
	}
	return v, nil
}

// Int16 parses key as a signed 16 bit integer. ok is false when absent.
func (a Action) Int16(key string) (v int16, ok bool, err error) {
	s := a.Params[key]
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s %s=%q", ErrInvalidParam, a.Name, key, s)
	}
	return int16(n), true, nil
}

// RequireInt16 is Int16 for mandatory parameters.
func (a Action) RequireInt16(key string) (int16, error) {
	v, ok, err := a.Int16(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s needs %s", ErrMissingParam, a.Name, key)
	}
	return v, nil
}

func (a Action) String() string {
	return fmt.Sprintf("%s%v", a.Name, a.Params)
}
