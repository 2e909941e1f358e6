package element

import (
	"fmt"
	"strings"
)

// Kind is the closed set of element kinds.
type Kind int

// Kind constants.
const (
	KindDomain Kind = iota + 1
	KindSource
	KindSink
	KindGateway
	KindClass
	KindConnection
)

var kindNames = map[Kind]string{
	KindDomain:     "ET_DOMAIN",
	KindSource:     "ET_SOURCE",
	KindSink:       "ET_SINK",
	KindGateway:    "ET_GATEWAY",
	KindClass:      "ET_CLASS",
	KindConnection: "ET_CONNECTION",
}

// AllKinds returns every kind in dependency order.
func AllKinds() []Kind {
	return []Kind{KindDomain, KindSource, KindSink, KindGateway, KindClass, KindConnection}
}

// String returns the ET_ name used on the wire and in persistence strings.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ET_UNKNOWN(%d)", int(k))
}

// ParseKind accepts either the ET_ form ("ET_SINK") or the short lower-case
// form used by the REST API ("sink", "connection").
func ParseKind(s string) (Kind, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(norm, "ET_") {
		norm = "ET_" + norm
	}
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}
