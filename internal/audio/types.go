package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is the numeric identity the routing side's element database assigns to
// a registered element. IDUnknown means "not yet registered".
type ID uint16

// IDUnknown is the zero ID carried by elements before registration.
const IDUnknown ID = 0

// Volume is a routing-side (hardware) volume.
type Volume int16

// MainVolume is the user-facing volume exposed to clients and the policy.
type MainVolume int16

// Volume limits used for clamping and muting.
const (
	MinVolume     Volume     = -3000
	MaxVolume     Volume     = 0
	MinMainVolume MainVolume = 0
	MaxMainVolume MainVolume = 100
)

// ConnectionState is the lifecycle state of a main connection.
type ConnectionState string

// ConnectionState constants.
const (
	ConnectionUnknown       ConnectionState = "CS_UNKNOWN"
	ConnectionConnecting    ConnectionState = "CS_CONNECTING"
	ConnectionConnected     ConnectionState = "CS_CONNECTED"
	ConnectionDisconnecting ConnectionState = "CS_DISCONNECTING"
	ConnectionDisconnected  ConnectionState = "CS_DISCONNECTED"
	ConnectionSuspended     ConnectionState = "CS_SUSPENDED"
)

// AllConnectionStates returns all valid connection states.
func AllConnectionStates() []ConnectionState {
	return []ConnectionState{
		ConnectionUnknown, ConnectionConnecting, ConnectionConnected,
		ConnectionDisconnecting, ConnectionDisconnected, ConnectionSuspended,
	}
}

// AvailabilityState says whether a source or sink can currently be used.
type AvailabilityState string

// AvailabilityState constants.
const (
	AvailabilityUnknown AvailabilityState = "A_UNKNOWN"
	Available           AvailabilityState = "A_AVAILABLE"
	Unavailable         AvailabilityState = "A_UNAVAILABLE"
)

// Availability pairs the state with a domain-specific reason code.
type Availability struct {
	State  AvailabilityState `json:"state" yaml:"state"`
	Reason int16             `json:"reason" yaml:"reason"`
}

// MuteState of a sink.
type MuteState string

// MuteState constants.
const (
	MuteUnknown MuteState = "MS_UNKNOWN"
	Muted       MuteState = "MS_MUTED"
	Unmuted     MuteState = "MS_UNMUTED"
)

// InterruptState of a source.
type InterruptState string

// InterruptState constants.
const (
	InterruptUnknown InterruptState = "IS_UNKNOWN"
	InterruptOff     InterruptState = "IS_OFF"
	Interrupted      InterruptState = "IS_INTERRUPTED"
)

// SourceState is the play state of a source.
type SourceState string

// SourceState constants.
const (
	SourceUnknown SourceState = "SS_UNKNOWN"
	SourceOn      SourceState = "SS_ON"
	SourceOff     SourceState = "SS_OFF"
	SourcePaused  SourceState = "SS_PAUSED"
)

// RampType selects how the routing side moves between two volumes.
type RampType string

// RampType constants.
const (
	RampUnknown  RampType = "RAMP_UNKNOWN"
	RampDirect   RampType = "RAMP_DIRECT"
	RampLinear   RampType = "RAMP_LINEAR"
	RampExponent RampType = "RAMP_EXPONENTIAL"
)

// ConnectionFormat is an opaque format code negotiated by the routing side.
type ConnectionFormat int16

// SoundProperty is a routing-side property of a source or sink.
type SoundProperty struct {
	Type  int16 `json:"type" yaml:"type"`
	Value int16 `json:"value" yaml:"value"`
}

// MainSoundProperty is the user-facing counterpart of SoundProperty.
type MainSoundProperty struct {
	Type  int16 `json:"type" yaml:"type"`
	Value int16 `json:"value" yaml:"value"`
}

// SystemProperty is a global, element independent property.
type SystemProperty struct {
	Type  int16 `json:"type" yaml:"type"`
	Value int16 `json:"value" yaml:"value"`
}

// NotificationStatus selects when a source or sink reports notification data.
type NotificationStatus string

// NotificationStatus constants.
const (
	NotificationUnknown  NotificationStatus = "NS_UNKNOWN"
	NotificationOff      NotificationStatus = "NS_OFF"
	NotificationPeriodic NotificationStatus = "NS_PERIODIC"
	NotificationMinimum  NotificationStatus = "NS_MINIMUM"
	NotificationMaximum  NotificationStatus = "NS_MAXIMUM"
	NotificationChange   NotificationStatus = "NS_CHANGE"
)

// NotificationConfiguration configures one notification type.
type NotificationConfiguration struct {
	Type      int16              `json:"type" yaml:"type"`
	Status    NotificationStatus `json:"status" yaml:"status"`
	Parameter int16              `json:"parameter" yaml:"parameter"`
}

// NotificationPayload is a value reported by a source or sink.
type NotificationPayload struct {
	Type  int16 `json:"type" yaml:"type"`
	Value int16 `json:"value" yaml:"value"`
}

// HandleType names the kind of asynchronous routing operation.
type HandleType string

// HandleType constants.
const (
	HandleUnknown                            HandleType = "H_UNKNOWN"
	HandleConnect                            HandleType = "H_CONNECT"
	HandleDisconnect                         HandleType = "H_DISCONNECT"
	HandleSetSourceState                     HandleType = "H_SETSOURCESTATE"
	HandleSetSinkVolume                      HandleType = "H_SETSINKVOLUME"
	HandleSetSourceVolume                    HandleType = "H_SETSOURCEVOLUME"
	HandleSetSinkSoundProperty               HandleType = "H_SETSINKSOUNDPROPERTY"
	HandleSetSourceSoundProperty             HandleType = "H_SETSOURCESOUNDPROPERTY"
	HandleSetSinkSoundProperties             HandleType = "H_SETSINKSOUNDPROPERTIES"
	HandleSetSourceSoundProperties           HandleType = "H_SETSOURCESOUNDPROPERTIES"
	HandleSetSinkNotificationConfiguration   HandleType = "H_SETSINKNOTIFICATION"
	HandleSetSourceNotificationConfiguration HandleType = "H_SETSOURCENOTIFICATION"
)

// Handle identifies one outstanding asynchronous routing operation.
// It is comparable and used as a map key.
type Handle struct {
	Type  HandleType `json:"type"`
	Index uint16     `json:"index"`
}

// String renders the handle as "TYPE:index".
func (h Handle) String() string {
	return string(h.Type) + ":" + strconv.Itoa(int(h.Index))
}

// ParseHandle is the inverse of Handle.String.
func ParseHandle(s string) (Handle, error) {
	typ, idx, ok := strings.Cut(s, ":")
	if !ok || typ == "" {
		return Handle{}, fmt.Errorf("%w: handle %q", ErrWrongFormat, s)
	}
	n, err := strconv.ParseUint(idx, 10, 16)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: handle %q", ErrWrongFormat, s)
	}
	return Handle{Type: HandleType(typ), Index: uint16(n)}, nil
}

// RoutingElement is one hop of a route, inside a single domain.
type RoutingElement struct {
	SourceID ID               `json:"source_id"`
	SinkID   ID               `json:"sink_id"`
	DomainID ID               `json:"domain_id"`
	Format   ConnectionFormat `json:"format"`
}

// Route is the ordered list of hops from a source to a sink.
type Route struct {
	SourceID ID               `json:"source_id"`
	SinkID   ID               `json:"sink_id"`
	Elements []RoutingElement `json:"elements"`
}
