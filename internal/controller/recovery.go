package controller

import (
	"context"
	"sort"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/persistence"
	"github.com/nerrad567/gray-logic-audio/internal/trigger"
)

// restore loads the persisted snapshot into the classes. Classes named in
// the snapshot but not configured are created.
func (c *Controller) restore(ctx context.Context) error {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return err
	}

	class := func(name string) *element.Class {
		if cl, ok := c.classes.Get(name); ok {
			return cl
		}
		cl, err := c.classes.Create(element.ClassConfig{Name: name})
		if err != nil {
			c.logger.Warn("stored class not created", "class", name, "error", err)
			return nil
		}
		return cl
	}

	for _, cc := range snap.Connections {
		if cl := class(cc.Class); cl != nil {
			cl.SetLastConnections(cc.Connections)
		}
	}
	for _, cv := range snap.Volumes {
		if cl := class(cv.Class); cl != nil {
			for _, v := range cv.Volumes {
				cl.SetLastVolume(v.Sink, v.Volume)
			}
		}
	}
	for _, cs := range snap.SoundProperties {
		if cl := class(cs.Class); cl != nil {
			for _, ep := range cs.Endpoints {
				for _, p := range ep.Properties {
					cl.SetLastSoundProperty(ep.Endpoint, p)
				}
			}
		}
	}
	for _, p := range snap.SystemProperties {
		c.systemProperties[p.Type] = p.Value
	}

	c.logger.Info("persistence restored",
		"connections", len(snap.Connections),
		"volumes", len(snap.Volumes),
		"sound_properties", len(snap.SoundProperties),
		"system_properties", len(snap.SystemProperties),
	)
	return nil
}

// snapshot collects what is persisted at shutdown. Connections are the
// currently connected ones, or the restored ones if they were never
// replayed.
func (c *Controller) snapshot() persistence.Snapshot {
	var snap persistence.Snapshot
	for _, cl := range c.classes.List(nil) {
		var pairs []element.ConnectionPair
		if c.replayed {
			for _, name := range cl.Connections() {
				conn, ok := c.connections.Get(name)
				if !ok || conn.State() != audio.ConnectionConnected {
					continue
				}
				pairs = append(pairs, element.ConnectionPair{Source: conn.SourceName(), Sink: conn.SinkName()})
			}
		} else {
			pairs = cl.LastConnections()
		}
		if len(pairs) > 0 {
			snap.Connections = append(snap.Connections, persistence.ClassConnections{Class: cl.Name(), Connections: pairs})
		}

		if vols := cl.LastVolumes(); len(vols) > 0 {
			cv := persistence.ClassVolumes{Class: cl.Name()}
			for _, sink := range sortedNames(vols) {
				cv.Volumes = append(cv.Volumes, persistence.SinkVolume{Sink: sink, Volume: vols[sink]})
			}
			snap.Volumes = append(snap.Volumes, cv)
		}

		if eps := cl.LastSoundPropertyEndpoints(); len(eps) > 0 {
			cs := persistence.ClassSoundProperties{Class: cl.Name()}
			for _, ep := range eps {
				cs.Endpoints = append(cs.Endpoints, persistence.EndpointProperties{
					Endpoint:   ep,
					Properties: cl.LastSoundProperties(ep),
				})
			}
			snap.SoundProperties = append(snap.SoundProperties, cs)
		}
	}

	snap.SystemProperties = c.SystemProperties()
	return snap
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// registrationTimeout forces every incomplete domain complete and replays
// the stored data.
func (c *Controller) registrationTimeout() {
	c.stopTimer = nil
	if c.replayed || !c.started {
		return
	}
	for _, d := range c.domains.List(func(d *element.Domain) bool { return !d.IsComplete() }) {
		c.logger.Warn("domain registration timed out", "name", d.Name())
		d.SetComplete()
		c.queue.Push(trigger.DomainRegistrationComplete{Domain: d.Name()})
	}
	c.replay()
}

// replay queues the stored volumes, sound properties and connections of
// every class as triggers. It runs once.
func (c *Controller) replay() {
	if c.replayed {
		return
	}
	c.replayed = true
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}

	queued := 0
	for _, cl := range c.classes.List(nil) {
		vols := cl.LastVolumes()
		for _, sink := range sortedNames(vols) {
			if _, ok := c.sinks.Get(sink); !ok {
				continue
			}
			c.queue.Push(trigger.StoredSinkVolume{Class: cl.Name(), Sink: sink, Volume: vols[sink]})
			queued++
		}
		for _, ep := range cl.LastSoundPropertyEndpoints() {
			for _, p := range cl.LastSoundProperties(ep) {
				switch ep.Kind {
				case element.KindSink:
					if _, ok := c.sinks.Get(ep.Name); ok {
						c.queue.Push(trigger.NewSinkSoundProperty(ep.Name, p))
						queued++
					}
				case element.KindSource:
					if _, ok := c.sources.Get(ep.Name); ok {
						c.queue.Push(trigger.NewSourceSoundProperty(ep.Name, p))
						queued++
					}
				}
			}
		}
		for _, pair := range cl.LastConnections() {
			if c.replayConnection(cl, pair) {
				queued++
			}
		}
	}
	c.logger.Info("stored class data replayed", "triggers", queued)
	c.iterateActions()
}

func (c *Controller) replayConnection(cl *element.Class, pair element.ConnectionPair) bool {
	src, ok := c.sources.Get(pair.Source)
	if !ok {
		return false
	}
	snk, ok := c.sinks.Get(pair.Sink)
	if !ok {
		return false
	}
	if _, exists := c.connections.Get(element.ConnectionName(pair.Source, pair.Sink)); !exists {
		if _, err := c.createConnection(cl, src, snk); err != nil {
			c.logger.Warn("stored connection not created", "source", pair.Source, "sink", pair.Sink, "error", err)
			return false
		}
	}
	c.queue.Push(trigger.NewConnect(cl.Name(), pair.Source, pair.Sink))
	return true
}
