package controller

import (
	"fmt"
	"strconv"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
)

// resolveClass picks the class governing source and sink: the named one if
// given, else the first class whose topology holds both, else the default
// class, created on first use.
func (c *Controller) resolveClass(name, source, sink string) (*element.Class, error) {
	if name != "" {
		cl, ok := c.classes.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: class %q", audio.ErrNonExistent, name)
		}
		return cl, nil
	}

	matches := c.classes.List(func(cl *element.Class) bool {
		return cl.Contains(element.KindSource, source) && cl.Contains(element.KindSink, sink)
	})
	if len(matches) > 0 {
		return matches[0], nil
	}

	if c.cfg.DefaultClass == "" {
		return nil, fmt.Errorf("%w: no class for %s", audio.ErrNotPossible, element.ConnectionName(source, sink))
	}
	if cl, ok := c.classes.Get(c.cfg.DefaultClass); ok {
		return cl, nil
	}
	cl, err := c.classes.Create(element.ClassConfig{Name: c.cfg.DefaultClass})
	if err != nil {
		return nil, err
	}
	c.logger.Info("default class created", "name", cl.Name(), "id", cl.ID())
	return cl, nil
}

// joinClass adds an endpoint to the topology of the class it names.
func (c *Controller) joinClass(kind element.Kind, name, class string) {
	if class == "" {
		return
	}
	cl, ok := c.classes.Get(class)
	if !ok {
		var err error
		if cl, err = c.classes.Create(element.ClassConfig{Name: class}); err != nil {
			c.logger.Warn("class for endpoint not created", "class", class, "name", name, "error", err)
			return
		}
	}
	cl.AddMember(kind, name)
}

// classesOf lists the classes an endpoint or connection belongs to, by
// topology or through a governed connection.
func (c *Controller) classesOf(kind element.Kind, name string) []*element.Class {
	if kind == element.KindConnection {
		conn, ok := c.connections.Get(name)
		if !ok {
			return nil
		}
		cl, ok := c.classes.Get(conn.ClassName())
		if !ok {
			return nil
		}
		return []*element.Class{cl}
	}
	return c.classes.List(func(cl *element.Class) bool {
		if cl.Contains(kind, name) {
			return true
		}
		for _, cn := range cl.Connections() {
			src, snk, _ := element.SplitConnectionName(cn)
			if (kind == element.KindSource && src == name) || (kind == element.KindSink && snk == name) {
				return true
			}
		}
		return false
	})
}

// connectionsOf lists the main connections using an endpoint, oldest first.
func (c *Controller) connectionsOf(kind element.Kind, name string) []*element.Connection {
	return c.connections.List(func(conn *element.Connection) bool {
		switch kind {
		case element.KindSource:
			return conn.SourceName() == name
		case element.KindSink:
			return conn.SinkName() == name
		case element.KindClass:
			return conn.ClassName() == name
		case element.KindConnection:
			return conn.Name() == name
		}
		return false
	})
}

func (c *Controller) createConnection(class *element.Class, src *element.Source, snk *element.Sink) (*element.Connection, error) {
	priority := class.Priority()
	if src.Priority() > priority {
		priority = src.Priority()
	}
	conn, err := c.connections.Create(element.ConnectionConfig{
		Source:   src.Name(),
		Sink:     snk.Name(),
		Class:    class.Name(),
		Priority: priority,
		Volume:   snk.MainVolume(),
	})
	if err != nil {
		return nil, err
	}
	class.AddConnection(conn.Name())
	c.notifyConnection(conn)
	return conn, nil
}

func (c *Controller) destroyConnection(conn *element.Connection) error {
	if err := c.connections.Destroy(conn.Name()); err != nil {
		return err
	}
	if cl, ok := c.classes.Get(conn.ClassName()); ok {
		cl.RemoveConnection(conn.Name())
	}
	conn.SetState(audio.ConnectionDisconnected)
	c.notifyConnection(conn)
	return nil
}

func (c *Controller) setConnectionState(conn *element.Connection, state audio.ConnectionState) {
	if conn.State() == state {
		return
	}
	conn.SetState(state)
	c.notifyConnection(conn)
}

func (c *Controller) allDomainsComplete() bool {
	all := c.domains.List(nil)
	if len(all) == 0 {
		return false
	}
	for _, d := range all {
		if !d.IsComplete() {
			return false
		}
	}
	return true
}

func clampMain(v int) audio.MainVolume {
	switch {
	case v < int(audio.MinMainVolume):
		return audio.MinMainVolume
	case v > int(audio.MaxMainVolume):
		return audio.MaxMainVolume
	}
	return audio.MainVolume(v)
}

// ─── Client notifications ───────────────────────────────────────────

func (c *Controller) notifyElement(kind element.Kind, name string, id audio.ID, registered bool) {
	c.notifier.Broadcast(ChannelElement, map[string]any{
		"kind":       kind.String(),
		"name":       name,
		"id":         id,
		"registered": registered,
	})
}

func (c *Controller) notifyConnection(conn *element.Connection) {
	c.notifier.Broadcast(ChannelConnection, map[string]any{
		"id":    conn.ID(),
		"name":  conn.Name(),
		"class": conn.ClassName(),
		"state": conn.State(),
	})
	c.metrics.WritePoint("audio_connection",
		map[string]string{"connection": conn.Name(), "class": conn.ClassName()},
		map[string]interface{}{"state": string(conn.State())},
	)
}

// volumeChanged records a sink's new main volume in its classes and tells
// clients.
func (c *Controller) volumeChanged(s *element.Sink, main audio.MainVolume) {
	for _, cl := range c.classesOf(element.KindSink, s.Name()) {
		cl.SetLastVolume(s.Name(), main)
	}
	for _, conn := range c.connectionsOf(element.KindSink, s.Name()) {
		conn.SetVolume(main)
	}
	c.notifier.Broadcast(ChannelVolume, map[string]any{"sink": s.Name(), "volume": main})
	c.metrics.WritePoint("audio_volume",
		map[string]string{"sink": s.Name()},
		map[string]interface{}{"main_volume": int64(main), "volume": int64(s.Volume())},
	)
}

func (c *Controller) muteChanged(s *element.Sink) {
	for _, conn := range c.connectionsOf(element.KindSink, s.Name()) {
		conn.SetMuteState(s.MuteState())
	}
	c.notifier.Broadcast(ChannelMute, map[string]any{"sink": s.Name(), "state": s.MuteState()})
}

func (c *Controller) soundPropertyChanged(ep element.Endpoint, p audio.MainSoundProperty) {
	for _, cl := range c.classesOf(ep.Kind, ep.Name) {
		cl.SetLastSoundProperty(ep, p)
	}
	c.notifier.Broadcast(ChannelSoundProperty, map[string]any{
		"kind":     ep.Kind.String(),
		"name":     ep.Name,
		"property": p,
	})
	c.metrics.WritePoint("audio_sound_property",
		map[string]string{"kind": ep.Kind.String(), "name": ep.Name, "type": strconv.Itoa(int(p.Type))},
		map[string]interface{}{"value": int64(p.Value)},
	)
}
