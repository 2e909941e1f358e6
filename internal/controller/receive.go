package controller

import (
	"fmt"
	"slices"

	"github.com/nerrad567/gray-logic-audio/internal/action"
	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/policy"
)

var _ policy.Receive = (*Controller)(nil)

// SetListActions builds the actions and appends them to the tree as one
// batch. Nothing is appended if any action cannot be built.
func (c *Controller) SetListActions(actions []policy.Action, list policy.ListType) error {
	if len(actions) == 0 {
		return fmt.Errorf("%w: empty action list", audio.ErrNoChange)
	}

	built := make([]action.Action, 0, len(actions))
	for _, a := range actions {
		act, err := c.build(a)
		if err != nil {
			c.logger.Warn("action rejected", "action", a.String(), "error", err)
			return fmt.Errorf("%w: %s: %w", audio.ErrNotPossible, a.Name, err)
		}
		built = append(built, act)
	}

	c.root.Append(action.NewSequence(string(list), built...))
	c.logger.Debug("action list installed", "list", list, "count", len(built))
	c.iterateActions()
	return nil
}

// IsRegistered reports whether an element of kind is registered by name.
func (c *Controller) IsRegistered(kind element.Kind, name string) bool {
	var ok bool
	switch kind {
	case element.KindDomain:
		_, ok = c.domains.Get(name)
	case element.KindSource:
		_, ok = c.sources.Get(name)
	case element.KindSink:
		_, ok = c.sinks.Get(name)
	case element.KindGateway:
		_, ok = c.gateways.Get(name)
	case element.KindClass:
		_, ok = c.classes.Get(name)
	case element.KindConnection:
		_, ok = c.connections.Get(name)
	}
	return ok
}

// IsDomainRegistrationComplete reports whether the domain said it is done
// registering its elements.
func (c *Controller) IsDomainRegistrationComplete(domain string) bool {
	d, ok := c.domains.Get(domain)
	return ok && d.IsComplete()
}

// endpointOf resolves a source or sink for the query methods.
func (c *Controller) endpointOf(kind element.Kind, name string) (endpoint, error) {
	switch kind {
	case element.KindSource:
		if s, ok := c.sources.Get(name); ok {
			return s, nil
		}
	case element.KindSink:
		if s, ok := c.sinks.Get(name); ok {
			return s, nil
		}
	default:
		return nil, fmt.Errorf("%w: %s has no endpoint state", audio.ErrNotPossible, kind)
	}
	return nil, fmt.Errorf("%w: %s %q", audio.ErrNonExistent, kind, name)
}

// endpoint is what sources and sinks share.
type endpoint interface {
	element.Element
	Availability() audio.Availability
	Volume() audio.Volume
	MainVolume() audio.MainVolume
	SoundProperty(typ int16) (int16, error)
	MainSoundProperty(typ int16) (int16, error)
}

func (c *Controller) Availability(kind element.Kind, name string) (audio.Availability, error) {
	ep, err := c.endpointOf(kind, name)
	if err != nil {
		return audio.Availability{}, err
	}
	return ep.Availability(), nil
}

func (c *Controller) MuteState(kind element.Kind, name string) (audio.MuteState, error) {
	switch kind {
	case element.KindSink:
		if s, ok := c.sinks.Get(name); ok {
			return s.MuteState(), nil
		}
	case element.KindConnection:
		if conn, ok := c.connections.Get(name); ok {
			return conn.MuteState(), nil
		}
	default:
		return audio.MuteUnknown, fmt.Errorf("%w: %s has no mute state", audio.ErrNotPossible, kind)
	}
	return audio.MuteUnknown, fmt.Errorf("%w: %s %q", audio.ErrNonExistent, kind, name)
}

func (c *Controller) InterruptState(source string) (audio.InterruptState, error) {
	s, ok := c.sources.Get(source)
	if !ok {
		return audio.InterruptUnknown, fmt.Errorf("%w: source %q", audio.ErrNonExistent, source)
	}
	return s.InterruptState(), nil
}

func (c *Controller) Volume(kind element.Kind, name string) (audio.Volume, error) {
	ep, err := c.endpointOf(kind, name)
	if err != nil {
		return 0, err
	}
	return ep.Volume(), nil
}

func (c *Controller) MainVolume(kind element.Kind, name string) (audio.MainVolume, error) {
	if kind == element.KindConnection {
		conn, ok := c.connections.Get(name)
		if !ok {
			return 0, fmt.Errorf("%w: connection %q", audio.ErrNonExistent, name)
		}
		return conn.Volume(), nil
	}
	ep, err := c.endpointOf(kind, name)
	if err != nil {
		return 0, err
	}
	return ep.MainVolume(), nil
}

func (c *Controller) SoundProperty(kind element.Kind, name string, typ int16) (int16, error) {
	ep, err := c.endpointOf(kind, name)
	if err != nil {
		return 0, err
	}
	return ep.SoundProperty(typ)
}

func (c *Controller) MainSoundProperty(kind element.Kind, name string, typ int16) (int16, error) {
	ep, err := c.endpointOf(kind, name)
	if err != nil {
		return 0, err
	}
	return ep.MainSoundProperty(typ)
}

func (c *Controller) SystemProperty(typ int16) (int16, error) {
	v, ok := c.systemProperties[typ]
	if !ok {
		return 0, fmt.Errorf("%w: system property %d", audio.ErrNonExistent, typ)
	}
	return v, nil
}

// SystemProperties returns all system properties ordered by type.
func (c *Controller) SystemProperties() []audio.SystemProperty {
	types := make([]int16, 0, len(c.systemProperties))
	for t := range c.systemProperties {
		types = append(types, t)
	}
	slices.Sort(types)
	out := make([]audio.SystemProperty, len(types))
	for i, t := range types {
		out[i] = audio.SystemProperty{Type: t, Value: c.systemProperties[t]}
	}
	return out
}

// ListMainConnections lists the connections of a class, source or sink in
// the requested order.
func (c *Controller) ListMainConnections(kind element.Kind, name string, order policy.Order) ([]policy.ConnectionInfo, error) {
	var conns []*element.Connection
	switch kind {
	case element.KindClass:
		cl, ok := c.classes.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: class %q", audio.ErrNonExistent, name)
		}
		for _, cn := range cl.Connections() {
			if conn, ok := c.connections.Get(cn); ok {
				conns = append(conns, conn)
			}
		}
	case element.KindSource, element.KindSink:
		if !c.IsRegistered(kind, name) {
			return nil, fmt.Errorf("%w: %s %q", audio.ErrNonExistent, kind, name)
		}
		conns = c.connectionsOf(kind, name)
	default:
		return nil, fmt.Errorf("%w: cannot list connections of %s", audio.ErrNotPossible, kind)
	}

	out := make([]policy.ConnectionInfo, len(conns))
	for i, conn := range conns {
		out[i] = connectionInfo(conn)
	}
	policy.SortConnections(out, order)
	return out, nil
}

func connectionInfo(conn *element.Connection) policy.ConnectionInfo {
	return policy.ConnectionInfo{
		ID:       conn.ID(),
		Name:     conn.Name(),
		Source:   conn.SourceName(),
		Sink:     conn.SinkName(),
		Class:    conn.ClassName(),
		State:    conn.State(),
		Volume:   conn.Volume(),
		Priority: conn.Priority(),
	}
}

// ListClasses lists the names of the classes an element belongs to.
func (c *Controller) ListClasses(kind element.Kind, name string) ([]string, error) {
	switch kind {
	case element.KindSource, element.KindSink, element.KindConnection:
	default:
		return nil, fmt.Errorf("%w: %s has no classes", audio.ErrNotPossible, kind)
	}
	if !c.IsRegistered(kind, name) {
		return nil, fmt.Errorf("%w: %s %q", audio.ErrNonExistent, kind, name)
	}
	classes := c.classesOf(kind, name)
	out := make([]string, len(classes))
	for i, cl := range classes {
		out[i] = cl.Name()
	}
	return out, nil
}
