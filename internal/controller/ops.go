package controller

import (
	"fmt"

	"github.com/nerrad567/gray-logic-audio/internal/action"
	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/trigger"
)

// abortOnUndo cancels in-flight routing requests when a leaf is undone.
type abortOnUndo struct{ c *Controller }

func (a abortOnUndo) Abort(h audio.Handle) {
	if err := a.c.daemon.AbortAction(h); err != nil {
		a.c.logger.Warn("abort failed", "handle", h.String(), "error", err)
	}
}

// ─── Connect / disconnect ───────────────────────────────────────────

// connectOp establishes a main connection hop by hop. The connection is
// CS_CONNECTED once every hop is acknowledged. Undo disconnects the
// acknowledged hops and removes the connection if this op created it.
type connectOp struct {
	abortOnUndo
	class, source, sink string

	created bool
	acked   map[int]bool
}

func (o *connectOp) Execute(w action.Waiter) error {
	c := o.c
	src, ok := c.sources.Get(o.source)
	if !ok {
		return fmt.Errorf("%w: source %q", audio.ErrNonExistent, o.source)
	}
	snk, ok := c.sinks.Get(o.sink)
	if !ok {
		return fmt.Errorf("%w: sink %q", audio.ErrNonExistent, o.sink)
	}

	conn, exists := c.connections.Get(element.ConnectionName(o.source, o.sink))
	if !exists {
		cl, err := c.resolveClass(o.class, o.source, o.sink)
		if err != nil {
			return err
		}
		if conn, err = c.createConnection(cl, src, snk); err != nil {
			return err
		}
		o.created = true
	}
	if conn.State() == audio.ConnectionConnected {
		return nil
	}

	routes, err := c.daemon.GetRoute(src.ID(), snk.ID())
	if err != nil {
		return fmt.Errorf("%w: route %s: %v", audio.ErrNotPossible, conn.Name(), err)
	}
	if len(routes) == 0 {
		return fmt.Errorf("%w: no route for %s", audio.ErrNotPossible, conn.Name())
	}
	hops := routes[0].Elements
	conn.SetRoute(hops)
	c.setConnectionState(conn, audio.ConnectionConnecting)

	o.acked = make(map[int]bool, len(hops))
	if len(hops) == 0 {
		c.setConnectionState(conn, audio.ConnectionConnected)
		return nil
	}
	for i, hop := range hops {
		h, id, err := c.daemon.Connect(hop.SourceID, hop.SinkID, hop.Format)
		if err != nil {
			return fmt.Errorf("connecting hop %d of %s: %w", i, conn.Name(), err)
		}
		conn.SetHopConnection(i, id)
		if err := w.Wait(h, o.hopConnected(conn, i, len(hops))); err != nil {
			return err
		}
	}
	return nil
}

func (o *connectOp) hopConnected(conn *element.Connection, i, total int) func(error) error {
	return func(res error) error {
		if res != nil {
			conn.SetHopConnection(i, audio.IDUnknown)
			return res
		}
		o.acked[i] = true
		if len(o.acked) == total {
			o.c.setConnectionState(conn, audio.ConnectionConnected)
		}
		return nil
	}
}

func (o *connectOp) Undo(w action.Waiter) error {
	c := o.c
	conn, ok := c.connections.Get(element.ConnectionName(o.source, o.sink))
	if !ok {
		return nil
	}
	if len(o.acked) == 0 {
		return o.release(conn)
	}
	c.setConnectionState(conn, audio.ConnectionDisconnecting)
	for i := range o.acked {
		h, err := c.daemon.Disconnect(conn.HopConnection(i))
		if err != nil {
			return err
		}
		hop := i
		if err := w.Wait(h, func(res error) error {
			if res != nil {
				return res
			}
			delete(o.acked, hop)
			conn.SetHopConnection(hop, audio.IDUnknown)
			if len(o.acked) == 0 {
				return o.release(conn)
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (o *connectOp) release(conn *element.Connection) error {
	if o.created {
		return o.c.destroyConnection(conn)
	}
	conn.SetRoute(nil)
	o.c.setConnectionState(conn, audio.ConnectionDisconnected)
	return nil
}

// disconnectOp tears a main connection down and removes it once every hop
// is acknowledged.
type disconnectOp struct {
	abortOnUndo
	name string

	prev     audio.ConnectionState
	released int
}

func (o *disconnectOp) Execute(w action.Waiter) error {
	c := o.c
	conn, ok := c.connections.Get(o.name)
	if !ok {
		return fmt.Errorf("%w: connection %q", audio.ErrNonExistent, o.name)
	}
	hops := conn.ConnectedHops()
	if len(hops) == 0 {
		return c.destroyConnection(conn)
	}
	o.prev = conn.State()
	o.released = 0
	c.setConnectionState(conn, audio.ConnectionDisconnecting)

	for _, i := range hops {
		h, err := c.daemon.Disconnect(conn.HopConnection(i))
		if err != nil {
			return fmt.Errorf("disconnecting hop %d of %s: %w", i, conn.Name(), err)
		}
		if err := w.Wait(h, o.hopDisconnected(conn, i, len(hops))); err != nil {
			return err
		}
	}
	return nil
}

func (o *disconnectOp) hopDisconnected(conn *element.Connection, i, total int) func(error) error {
	return func(res error) error {
		if res != nil {
			return res
		}
		conn.SetHopConnection(i, audio.IDUnknown)
		o.released++
		if o.released == total {
			return o.c.destroyConnection(conn)
		}
		return nil
	}
}

// Undo puts a connection whose teardown failed back into its earlier
// state. Once a hop is gone the path carries no audio, so a partly torn
// down connection is reported CS_DISCONNECTED instead.
func (o *disconnectOp) Undo(action.Waiter) error {
	conn, ok := o.c.connections.Get(o.name)
	if !ok || conn.State() != audio.ConnectionDisconnecting {
		return nil
	}
	state := o.prev
	if o.released > 0 {
		state = audio.ConnectionDisconnected
	}
	o.c.setConnectionState(conn, state)
	return nil
}

// ─── Sink volume ────────────────────────────────────────────────────

type volumeMode int

const (
	volumeSet volumeMode = iota
	volumeStep
	volumeMute
	volumeUnmute
	volumeLimit
	volumeUnlimit
)

// sinkLevel is what a volume operation changes on a sink.
type sinkLevel struct {
	volume audio.Volume
	main   audio.MainVolume
	mute   audio.MuteState
}

// volumeOp moves a sink's routing volume, main volume and mute state
// together. Muting drives the routing volume to MinVolume and keeps the
// main volume; a limit caps the routing volume without touching it.
type volumeOp struct {
	abortOnUndo
	sink     string
	mode     volumeMode
	main     audio.MainVolume
	step     int16
	limit    audio.MainVolume
	ramp     audio.RampType
	duration uint16

	prev sinkLevel
}

func (o *volumeOp) target(s *element.Sink) sinkLevel {
	cur := sinkLevel{volume: s.Volume(), main: s.MainVolume(), mute: s.MuteState()}
	next := cur
	switch o.mode {
	case volumeSet, volumeStep:
		next.main = o.main
		if o.mode == volumeStep {
			next.main = clampMain(int(cur.main) + int(o.step))
		}
		if cur.mute != audio.Muted {
			next.volume = s.ToVolume(next.main)
		}
	case volumeMute:
		next.mute = audio.Muted
		next.volume = audio.MinVolume
	case volumeUnmute:
		next.mute = audio.Unmuted
		next.volume = s.ToVolume(cur.main)
	case volumeLimit:
		if cur.mute != audio.Muted {
			next.volume = min(s.ToVolume(cur.main), s.ToVolume(o.limit))
		}
	case volumeUnlimit:
		if cur.mute != audio.Muted {
			next.volume = s.ToVolume(cur.main)
		}
	}
	return next
}

func (o *volumeOp) Execute(w action.Waiter) error {
	s, ok := o.c.sinks.Get(o.sink)
	if !ok {
		return fmt.Errorf("%w: sink %q", audio.ErrNonExistent, o.sink)
	}
	o.prev = sinkLevel{volume: s.Volume(), main: s.MainVolume(), mute: s.MuteState()}
	return o.move(w, s, o.target(s))
}

func (o *volumeOp) Undo(w action.Waiter) error {
	s, ok := o.c.sinks.Get(o.sink)
	if !ok {
		return nil
	}
	return o.move(w, s, o.prev)
}

func (o *volumeOp) move(w action.Waiter, s *element.Sink, to sinkLevel) error {
	if to.volume == s.Volume() {
		o.apply(s, to)
		return nil
	}
	h, err := o.c.daemon.SetSinkVolume(s.ID(), to.volume, o.ramp, o.duration)
	if err != nil {
		return err
	}
	return w.Wait(h, func(res error) error {
		if res != nil {
			return res
		}
		if v, ok := o.c.ackedVolumes[h]; ok && v != to.volume {
			to = o.acked(s, to, v)
		}
		o.apply(s, to)
		return nil
	})
}

// acked adjusts to for a routing side that settled on v instead, for
// example after a clamped or interrupted ramp. Set and step operations
// follow with the main volume; mute and limits leave it alone.
func (o *volumeOp) acked(s *element.Sink, to sinkLevel, v audio.Volume) sinkLevel {
	to.volume = v
	if (o.mode == volumeSet || o.mode == volumeStep) && to.mute != audio.Muted {
		to.main = s.ToMainVolume(v)
	}
	return to
}

func (o *volumeOp) apply(s *element.Sink, to sinkLevel) {
	s.SetVolume(to.volume)
	if s.MainVolume() != to.main {
		s.SetMainVolume(to.main)
		o.c.volumeChanged(s, s.MainVolume())
	}
	if s.MuteState() != to.mute {
		s.SetMuteState(to.mute)
		o.c.muteChanged(s)
	}
}

// ─── Source state ───────────────────────────────────────────────────

// sourceStateOp changes a source's play state. Suspend and resume also
// move the source's main connections between CS_CONNECTED and
// CS_SUSPENDED.
type sourceStateOp struct {
	abortOnUndo
	source string
	state  audio.SourceState
	from   audio.ConnectionState
	to     audio.ConnectionState

	prev audio.SourceState
}

func (o *sourceStateOp) Execute(w action.Waiter) error {
	s, ok := o.c.sources.Get(o.source)
	if !ok {
		return fmt.Errorf("%w: source %q", audio.ErrNonExistent, o.source)
	}
	o.prev = s.State()
	return o.move(w, s, o.state, o.from, o.to)
}

func (o *sourceStateOp) Undo(w action.Waiter) error {
	s, ok := o.c.sources.Get(o.source)
	if !ok {
		return nil
	}
	return o.move(w, s, o.prev, o.to, o.from)
}

func (o *sourceStateOp) move(w action.Waiter, s *element.Source, state audio.SourceState, from, to audio.ConnectionState) error {
	apply := func() {
		s.SetState(state)
		if from == "" {
			return
		}
		for _, conn := range o.c.connectionsOf(element.KindSource, s.Name()) {
			if conn.State() == from {
				o.c.setConnectionState(conn, to)
			}
		}
	}
	if s.State() == state {
		apply()
		return nil
	}
	h, err := o.c.daemon.SetSourceState(s.ID(), state)
	if err != nil {
		return err
	}
	return w.Wait(h, func(res error) error {
		if res != nil {
			return res
		}
		apply()
		return nil
	})
}

// ─── Sound properties ───────────────────────────────────────────────

// propertyOp sets one main sound property of a source or sink and the
// routing-side property of the same type.
type propertyOp struct {
	abortOnUndo
	endpoint element.Endpoint
	prop     audio.MainSoundProperty

	prev    int16
	hadPrev bool
}

type propertyHolder interface {
	element.Element
	MainSoundProperty(typ int16) (int16, error)
	SetMainSoundProperty(p audio.MainSoundProperty)
	SetSoundProperty(p audio.SoundProperty)
}

func (o *propertyOp) holder() (propertyHolder, bool) {
	switch o.endpoint.Kind {
	case element.KindSink:
		if s, ok := o.c.sinks.Get(o.endpoint.Name); ok {
			return s, true
		}
	case element.KindSource:
		if s, ok := o.c.sources.Get(o.endpoint.Name); ok {
			return s, true
		}
	}
	return nil, false
}

func (o *propertyOp) Execute(w action.Waiter) error {
	ep, ok := o.holder()
	if !ok {
		return fmt.Errorf("%w: %s %q", audio.ErrNonExistent, o.endpoint.Kind, o.endpoint.Name)
	}
	v, err := ep.MainSoundProperty(o.prop.Type)
	o.prev, o.hadPrev = v, err == nil
	return o.move(w, ep, o.prop)
}

func (o *propertyOp) Undo(w action.Waiter) error {
	ep, ok := o.holder()
	if !ok || !o.hadPrev {
		return nil
	}
	return o.move(w, ep, audio.MainSoundProperty{Type: o.prop.Type, Value: o.prev})
}

func (o *propertyOp) move(w action.Waiter, ep propertyHolder, p audio.MainSoundProperty) error {
	if cur, err := ep.MainSoundProperty(p.Type); err == nil && cur == p.Value {
		return nil
	}
	var (
		h   audio.Handle
		err error
	)
	if o.endpoint.Kind == element.KindSink {
		h, err = o.c.daemon.SetSinkSoundProperty(ep.ID(), audio.SoundProperty(p))
	} else {
		h, err = o.c.daemon.SetSourceSoundProperty(ep.ID(), audio.SoundProperty(p))
	}
	if err != nil {
		return err
	}
	return w.Wait(h, func(res error) error {
		if res != nil {
			return res
		}
		ep.SetSoundProperty(audio.SoundProperty(p))
		ep.SetMainSoundProperty(p)
		o.c.soundPropertyChanged(o.endpoint, p)
		return nil
	})
}

// ─── Notification configuration ─────────────────────────────────────

type notificationHolder interface {
	element.Element
	NotificationConfiguration(typ int16) (audio.NotificationConfiguration, bool)
	SetNotificationConfiguration(n audio.NotificationConfiguration)
	SetMainNotificationConfiguration(n audio.NotificationConfiguration)
}

// notificationOp configures how a source or sink reports notification data.
type notificationOp struct {
	abortOnUndo
	endpoint element.Endpoint
	cfg      audio.NotificationConfiguration

	prev    audio.NotificationConfiguration
	hadPrev bool
}

func (o *notificationOp) holder() (notificationHolder, bool) {
	switch o.endpoint.Kind {
	case element.KindSink:
		if s, ok := o.c.sinks.Get(o.endpoint.Name); ok {
			return s, true
		}
	case element.KindSource:
		if s, ok := o.c.sources.Get(o.endpoint.Name); ok {
			return s, true
		}
	}
	return nil, false
}

func (o *notificationOp) Execute(w action.Waiter) error {
	ep, ok := o.holder()
	if !ok {
		return fmt.Errorf("%w: %s %q", audio.ErrNonExistent, o.endpoint.Kind, o.endpoint.Name)
	}
	o.prev, o.hadPrev = ep.NotificationConfiguration(o.cfg.Type)
	return o.move(w, ep, o.cfg)
}

func (o *notificationOp) Undo(w action.Waiter) error {
	ep, ok := o.holder()
	if !ok || !o.hadPrev {
		return nil
	}
	return o.move(w, ep, o.prev)
}

func (o *notificationOp) move(w action.Waiter, ep notificationHolder, cfg audio.NotificationConfiguration) error {
	var (
		h   audio.Handle
		err error
	)
	if o.endpoint.Kind == element.KindSink {
		h, err = o.c.daemon.SetSinkNotificationConfiguration(ep.ID(), cfg)
	} else {
		h, err = o.c.daemon.SetSourceNotificationConfiguration(ep.ID(), cfg)
	}
	if err != nil {
		return err
	}
	return w.Wait(h, func(res error) error {
		if res != nil {
			return res
		}
		ep.SetNotificationConfiguration(cfg)
		ep.SetMainNotificationConfiguration(cfg)
		return nil
	})
}

// ─── System property ────────────────────────────────────────────────

// systemPropertyOp changes a system property. It completes synchronously.
func (c *Controller) systemPropertyOp(p audio.SystemProperty) action.Operation {
	var (
		prev    int16
		hadPrev bool
	)
	set := func(v int16, had bool) {
		if had {
			c.systemProperties[p.Type] = v
		} else {
			delete(c.systemProperties, p.Type)
		}
		c.notifier.Broadcast(ChannelSystemProperty, map[string]any{"type": p.Type, "value": v})
	}
	return action.Funcs{
		Run: func(action.Waiter) error {
			prev, hadPrev = c.systemProperties[p.Type]
			set(p.Value, true)
			return nil
		},
		Revert: func(action.Waiter) error {
			set(prev, hadPrev)
			return nil
		},
	}
}

// ─── Register ───────────────────────────────────────────────────────

// registerOp registers the statically configured sources, sinks and
// gateways of a domain. Each new element queues its registration trigger.
type registerOp struct {
	c       *Controller
	domain  string
	created []element.Endpoint
}

func (o *registerOp) Execute(action.Waiter) error {
	c := o.c
	if _, ok := c.domains.Get(o.domain); !ok {
		return fmt.Errorf("%w: domain %q", audio.ErrNonExistent, o.domain)
	}

	for _, cfg := range c.policy.Sources() {
		if cfg.Domain != o.domain || c.IsRegistered(element.KindSource, cfg.Name) {
			continue
		}
		s, err := c.sources.Create(cfg)
		if err != nil {
			return err
		}
		c.joinClass(element.KindSource, s.Name(), s.ClassName())
		o.registered(element.KindSource, s.Name(), s.ID(), trigger.SystemRegisterSource)
	}
	for _, cfg := range c.policy.Sinks() {
		if cfg.Domain != o.domain || c.IsRegistered(element.KindSink, cfg.Name) {
			continue
		}
		s, err := c.sinks.Create(cfg)
		if err != nil {
			return err
		}
		c.joinClass(element.KindSink, s.Name(), s.ClassName())
		o.registered(element.KindSink, s.Name(), s.ID(), trigger.SystemRegisterSink)
	}
	for _, cfg := range c.policy.Gateways() {
		if cfg.ControlDomain != o.domain || c.IsRegistered(element.KindGateway, cfg.Name) {
			continue
		}
		g, err := c.gateways.Create(cfg)
		if err != nil {
			return err
		}
		o.registered(element.KindGateway, g.Name(), g.ID(), trigger.SystemRegisterGateway)
	}
	return nil
}

func (o *registerOp) registered(kind element.Kind, name string, id audio.ID, tk trigger.Kind) {
	o.created = append(o.created, element.Endpoint{Kind: kind, Name: name})
	o.c.notifyElement(kind, name, id, true)
	o.c.queue.Push(trigger.NewRegistration(tk, name, nil))
}

func (o *registerOp) Undo(action.Waiter) error {
	c := o.c
	for i := len(o.created) - 1; i >= 0; i-- {
		e := o.created[i]
		var err error
		switch e.Kind {
		case element.KindSource:
			err = c.sources.Destroy(e.Name)
		case element.KindSink:
			err = c.sinks.Destroy(e.Name)
		case element.KindGateway:
			err = c.gateways.Destroy(e.Name)
		}
		if err != nil {
			c.logger.Warn("undoing registration", "kind", e.Kind, "name", e.Name, "error", err)
		}
	}
	o.created = nil
	return nil
}
