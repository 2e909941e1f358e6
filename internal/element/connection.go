package element

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// ConnectionName is the name of the main connection between source and sink.
func ConnectionName(source, sink string) string {
	return source + ":" + sink
}

// SplitConnectionName is the inverse of ConnectionName.
func SplitConnectionName(name string) (source, sink string, ok bool) {
	source, sink, ok = strings.Cut(name, ":")
	return source, sink, ok && source != "" && sink != ""
}

// ConnectionConfig describes a main connection.
type ConnectionConfig struct {
	ID       audio.ID
	Source   string
	Sink     string
	Class    string
	Priority int32
	Volume   audio.MainVolume
}

// Connection is a main connection: the user-visible link between one source
// and one sink, governed by one class. The route and the routing side's
// per-hop connection IDs are filled in while the connection is established.
type Connection struct {
	base
	source   string
	sink     string
	class    string
	priority int32
	state    audio.ConnectionState
	volume   audio.MainVolume
	mute     audio.MuteState
	route    []audio.RoutingElement
	hops     []audio.ID
}

func newConnection(cfg ConnectionConfig) (*Connection, error) {
	if err := ValidateName(cfg.Source); err != nil {
		return nil, err
	}
	if err := ValidateName(cfg.Sink); err != nil {
		return nil, err
	}
	if cfg.Class == "" {
		return nil, fmt.Errorf("%w: connection %s has no class", ErrInvalidConfig, ConnectionName(cfg.Source, cfg.Sink))
	}
	return &Connection{
		base:     base{id: cfg.ID, name: ConnectionName(cfg.Source, cfg.Sink)},
		source:   cfg.Source,
		sink:     cfg.Sink,
		class:    cfg.Class,
		priority: cfg.Priority,
		state:    audio.ConnectionDisconnected,
		volume:   cfg.Volume,
		mute:     audio.Unmuted,
	}, nil
}

// Kind implements Element.
func (c *Connection) Kind() Kind { return KindConnection }

func (c *Connection) SourceName() string { return c.source }
func (c *Connection) SinkName() string   { return c.sink }
func (c *Connection) ClassName() string  { return c.class }
func (c *Connection) Priority() int32    { return c.priority }

func (c *Connection) State() audio.ConnectionState     { return c.state }
func (c *Connection) SetState(s audio.ConnectionState) { c.state = s }

func (c *Connection) Volume() audio.MainVolume     { return c.volume }
func (c *Connection) SetVolume(v audio.MainVolume) { c.volume = v }

func (c *Connection) MuteState() audio.MuteState     { return c.mute }
func (c *Connection) SetMuteState(m audio.MuteState) { c.mute = m }

// Route returns the hops the connection is routed through.
func (c *Connection) Route() []audio.RoutingElement { return slices.Clone(c.route) }

// SetRoute replaces the route and forgets any per-hop connection IDs.
func (c *Connection) SetRoute(route []audio.RoutingElement) {
	c.route = slices.Clone(route)
	c.hops = make([]audio.ID, len(route))
}

// HopConnection returns the routing-side connection ID of hop i, or
// IDUnknown when the hop is not connected.
func (c *Connection) HopConnection(i int) audio.ID {
	if i < 0 || i >= len(c.hops) {
		return audio.IDUnknown
	}
	return c.hops[i]
}

// SetHopConnection records the routing-side connection ID of hop i.
func (c *Connection) SetHopConnection(i int, id audio.ID) {
	if i >= 0 && i < len(c.hops) {
		c.hops[i] = id
	}
}

// ConnectedHops returns the indexes of hops with a routing-side connection.
func (c *Connection) ConnectedHops() []int {
	var out []int
	for i, id := range c.hops {
		if id != audio.IDUnknown {
			out = append(out, i)
		}
	}
	return out
}
