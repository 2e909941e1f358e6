package element

import (
	"fmt"
	"slices"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// ClassType says whether a class governs playback or capture.
type ClassType string

// ClassType constants.
const (
	ClassPlayback ClassType = "C_PLAYBACK"
	ClassCapture  ClassType = "C_CAPTURE"
)

// ClassConfig describes a class and its topology.
type ClassConfig struct {
	ID       audio.ID  `yaml:"id" json:"id,omitempty"`
	Name     string    `yaml:"name" json:"name"`
	Type     ClassType `yaml:"type" json:"type"`
	Priority int32     `yaml:"priority" json:"priority"`
	Sources  []string  `yaml:"sources" json:"sources,omitempty"`
	Sinks    []string  `yaml:"sinks" json:"sinks,omitempty"`
}

// ConnectionPair names the two ends of a stored main connection.
type ConnectionPair struct {
	Source string
	Sink   string
}

// Endpoint identifies a source or a sink by kind and name.
type Endpoint struct {
	Kind Kind
	Name string
}

// Class groups sources and sinks whose connections are arbitrated together.
// It tracks the names of the main connections it governs in creation order
// and the data persisted for restart recovery.
type Class struct {
	base
	typ         ClassType
	priority    int32
	sources     []string
	sinks       []string
	connections []string

	lastConnections     []ConnectionPair
	lastVolumes         map[string]audio.MainVolume
	lastSoundProperties map[Endpoint][]audio.MainSoundProperty
}

func newClass(cfg ClassConfig) (*Class, error) {
	if err := ValidateName(cfg.Name); err != nil {
		return nil, err
	}
	typ := cfg.Type
	switch typ {
	case "":
		typ = ClassPlayback
	case ClassPlayback, ClassCapture:
	default:
		return nil, fmt.Errorf("%w: class %q has type %q", ErrInvalidConfig, cfg.Name, cfg.Type)
	}
	return &Class{
		base:                base{id: cfg.ID, name: cfg.Name},
		typ:                 typ,
		priority:            cfg.Priority,
		sources:             slices.Clone(cfg.Sources),
		sinks:               slices.Clone(cfg.Sinks),
		lastVolumes:         make(map[string]audio.MainVolume),
		lastSoundProperties: make(map[Endpoint][]audio.MainSoundProperty),
	}, nil
}

// Kind implements Element.
func (c *Class) Kind() Kind { return KindClass }

func (c *Class) Type() ClassType { return c.typ }
func (c *Class) Priority() int32 { return c.priority }

// Contains reports whether the named source or sink is part of the class
// topology.
func (c *Class) Contains(kind Kind, name string) bool {
	switch kind {
	case KindSource:
		return slices.Contains(c.sources, name)
	case KindSink:
		return slices.Contains(c.sinks, name)
	}
	return false
}

// AddMember adds a source or sink to the topology.
func (c *Class) AddMember(kind Kind, name string) {
	if c.Contains(kind, name) {
		return
	}
	switch kind {
	case KindSource:
		c.sources = append(c.sources, name)
	case KindSink:
		c.sinks = append(c.sinks, name)
	}
}

// AddConnection records a main connection governed by the class.
func (c *Class) AddConnection(name string) {
	if !slices.Contains(c.connections, name) {
		c.connections = append(c.connections, name)
	}
}

// RemoveConnection forgets a main connection.
func (c *Class) RemoveConnection(name string) {
	c.connections = slices.DeleteFunc(c.connections, func(n string) bool { return n == name })
}

// Connections returns the governed main connection names, oldest first.
func (c *Class) Connections() []string { return slices.Clone(c.connections) }

// LastConnections returns the connections restored from persistence.
func (c *Class) LastConnections() []ConnectionPair { return slices.Clone(c.lastConnections) }

// SetLastConnections replaces the stored connections.
func (c *Class) SetLastConnections(pairs []ConnectionPair) {
	c.lastConnections = slices.Clone(pairs)
}

// LastVolume returns the stored main volume of a sink.
func (c *Class) LastVolume(sink string) (audio.MainVolume, bool) {
	v, ok := c.lastVolumes[sink]
	return v, ok
}

// SetLastVolume stores the main volume of a sink.
func (c *Class) SetLastVolume(sink string, v audio.MainVolume) { c.lastVolumes[sink] = v }

// LastVolumes returns a copy of all stored sink volumes.
func (c *Class) LastVolumes() map[string]audio.MainVolume {
	out := make(map[string]audio.MainVolume, len(c.lastVolumes))
	for k, v := range c.lastVolumes {
		out[k] = v
	}
	return out
}

// LastSoundProperties returns the stored main sound properties of an endpoint.
func (c *Class) LastSoundProperties(ep Endpoint) []audio.MainSoundProperty {
	return slices.Clone(c.lastSoundProperties[ep])
}

// SetLastSoundProperty stores one main sound property, replacing any value of
// the same type.
func (c *Class) SetLastSoundProperty(ep Endpoint, p audio.MainSoundProperty) {
	props := c.lastSoundProperties[ep]
	for i := range props {
		if props[i].Type == p.Type {
			props[i].Value = p.Value
			return
		}
	}
	c.lastSoundProperties[ep] = append(props, p)
}

// LastSoundPropertyEndpoints lists the endpoints with stored sound properties.
func (c *Class) LastSoundPropertyEndpoints() []Endpoint {
	out := make([]Endpoint, 0, len(c.lastSoundProperties))
	for ep := range c.lastSoundProperties {
		out = append(out, ep)
	}
	slices.SortFunc(out, func(a, b Endpoint) int {
		if a.Kind != b.Kind {
			return int(b.Kind) - int(a.Kind)
		}
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out
}

// Config returns the class configuration.
func (c *Class) Config() ClassConfig {
	return ClassConfig{
		ID:       c.id,
		Name:     c.name,
		Type:     c.typ,
		Priority: c.priority,
		Sources:  slices.Clone(c.sources),
		Sinks:    slices.Clone(c.sinks),
	}
}
