package routing

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
)

// MQTTClient is the subset of the broker client the adapter needs.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
	Unsubscribe(topics ...string) error
}

// Executor runs fn on the controller's goroutine.
type Executor interface {
	Do(fn func()) error
}

// Callbacks is the controller surface acks and events are delivered to.
type Callbacks interface {
	CbAckConnect(h audio.Handle, err error)
	CbAckDisconnect(h audio.Handle, err error)
	CbAckSetSinkVolumeChange(h audio.Handle, v audio.Volume, err error)
	CbAckSetSourceVolumeChange(h audio.Handle, v audio.Volume, err error)
	CbAckSetSourceState(h audio.Handle, err error)
	CbAckSetSinkSoundProperty(h audio.Handle, err error)
	CbAckSetSourceSoundProperty(h audio.Handle, err error)
	CbAckSetSinkNotificationConfiguration(h audio.Handle, err error)
	CbAckSetSourceNotificationConfiguration(h audio.Handle, err error)

	HookSystemRegisterDomain(cfg element.DomainConfig) (audio.ID, error)
	HookSystemRegisterSource(cfg element.SourceConfig) (audio.ID, error)
	HookSystemRegisterSink(cfg element.SinkConfig) (audio.ID, error)
	HookSystemRegisterGateway(cfg element.GatewayConfig) (audio.ID, error)
	HookSystemDeregisterDomain(id audio.ID) error
	HookSystemDeregisterSource(id audio.ID) error
	HookSystemDeregisterSink(id audio.ID) error
	HookSystemDeregisterGateway(id audio.ID) error
	HookSystemDomainRegistrationComplete(id audio.ID) error
	HookSystemSourceAvailabilityChanged(id audio.ID, a audio.Availability) error
	HookSystemSinkAvailabilityChanged(id audio.ID, a audio.Availability) error
	HookSystemInterruptStateChanged(id audio.ID, state audio.InterruptState) error
	HookSystemSinkMuteStateChanged(id audio.ID, state audio.MuteState) error
	HookSystemSinkSoundPropertyChanged(id audio.ID, p audio.SoundProperty) error
	HookSystemSourceSoundPropertyChanged(id audio.ID, p audio.SoundProperty) error
	HookSystemVolumeChanged(id audio.ID, v audio.Volume) error
	HookSystemSinkNotificationDataChanged(id audio.ID, p audio.NotificationPayload) error
	HookSystemSourceNotificationDataChanged(id audio.ID, p audio.NotificationPayload) error
	HookSystemConnectionStateChange(hop audio.ID, state audio.ConnectionState, status error) error
}

// Logger is the logging surface used by the adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// inflight is a published command waiting for its ack.
type inflight struct {
	id     string
	bus    string
	hop    audio.ID
	volume audio.Volume
}

// Adapter is the MQTT routing side. It embeds the element database so it
// satisfies the controller's Daemon interface on its own.
type Adapter struct {
	*ElementDB

	client MQTTClient
	exec   Executor
	qos    byte
	topics mqtt.Topics
	logger Logger

	mu      sync.Mutex
	cb      Callbacks
	seq     map[audio.HandleType]uint16
	pending map[audio.Handle]inflight
	hops    map[audio.ID]string
	lastHop audio.ID
}

// NewAdapter creates an adapter. Nothing is subscribed until Start.
func NewAdapter(db *ElementDB, client MQTTClient, exec Executor, qos byte) *Adapter {
	return &Adapter{
		ElementDB: db,
		client:    client,
		exec:      exec,
		qos:       qos,
		logger:    noopLogger{},
		seq:       make(map[audio.HandleType]uint16),
		pending:   make(map[audio.Handle]inflight),
		hops:      make(map[audio.ID]string),
	}
}

// SetLogger sets the logger for the adapter.
func (a *Adapter) SetLogger(logger Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Start subscribes to acks and events of every bus and delivers them to cb.
func (a *Adapter) Start(cb Callbacks) error {
	a.mu.Lock()
	a.cb = cb
	a.mu.Unlock()

	if err := a.client.Subscribe(a.topics.AllRoutingAcks(), a.qos, a.handleAck); err != nil {
		return fmt.Errorf("subscribing to routing acks: %w", err)
	}
	if err := a.client.Subscribe(a.topics.AllRoutingEvents(), a.qos, a.handleEvent); err != nil {
		return fmt.Errorf("subscribing to routing events: %w", err)
	}
	a.logger.Info("routing adapter subscribed")
	return nil
}

// Stop unsubscribes and forgets every in-flight command.
func (a *Adapter) Stop() {
	if err := a.client.Unsubscribe(a.topics.AllRoutingAcks(), a.topics.AllRoutingEvents()); err != nil {
		a.logger.Warn("routing adapter unsubscribe failed", "error", err)
	}
	a.mu.Lock()
	a.cb = nil
	clear(a.pending)
	a.mu.Unlock()
}

// Pending returns the number of commands waiting for an ack.
func (a *Adapter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// nextHandle must be called with mu held. Indices in flight are skipped.
func (a *Adapter) nextHandle(typ audio.HandleType) audio.Handle {
	for {
		a.seq[typ]++
		if a.seq[typ] == 0 {
			continue
		}
		h := audio.Handle{Type: typ, Index: a.seq[typ]}
		if _, busy := a.pending[h]; !busy {
			return h
		}
	}
}

func (a *Adapter) send(bus string, typ audio.HandleType, cmd Command, w inflight) (audio.Handle, error) {
	a.mu.Lock()
	h := a.nextHandle(typ)
	cmd.ID = uuid.NewString()
	cmd.Handle = h.String()
	w.id = cmd.ID
	w.bus = bus
	a.pending[h] = w
	a.mu.Unlock()

	if err := a.publish(bus, cmd); err != nil {
		a.mu.Lock()
		delete(a.pending, h)
		a.mu.Unlock()
		return audio.Handle{}, err
	}
	a.logger.Debug("routing command sent", "bus", bus, "op", cmd.Op, "handle", cmd.Handle)
	return h, nil
}

func (a *Adapter) publish(bus string, cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrWrongFormat, err)
	}
	if err := a.client.Publish(a.topics.RoutingCommand(bus), payload, a.qos, false); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrCommunication, err)
	}
	return nil
}

// Connect asks the sink's bus to connect one hop. The returned ID names
// the hop connection from now on.
func (a *Adapter) Connect(source, sink audio.ID, format audio.ConnectionFormat) (audio.Handle, audio.ID, error) {
	bus, err := a.BusOf(element.KindSink, sink)
	if err != nil {
		return audio.Handle{}, audio.IDUnknown, err
	}

	a.mu.Lock()
	a.lastHop++
	if a.lastHop == audio.IDUnknown {
		a.lastHop++
	}
	hop := a.lastHop
	a.hops[hop] = bus
	a.mu.Unlock()

	h, err := a.send(bus, audio.HandleConnect, Command{
		Op: OpConnect, Source: source, Sink: sink, Connection: hop, Format: format,
	}, inflight{hop: hop})
	if err != nil {
		a.mu.Lock()
		delete(a.hops, hop)
		a.mu.Unlock()
		return audio.Handle{}, audio.IDUnknown, err
	}
	return h, hop, nil
}

// Disconnect asks the hop's bus to tear the hop down.
func (a *Adapter) Disconnect(connection audio.ID) (audio.Handle, error) {
	a.mu.Lock()
	bus, ok := a.hops[connection]
	a.mu.Unlock()
	if !ok {
		return audio.Handle{}, fmt.Errorf("%w: hop connection %d", audio.ErrNonExistent, connection)
	}
	return a.send(bus, audio.HandleDisconnect, Command{Op: OpDisconnect, Connection: connection},
		inflight{hop: connection})
}

func (a *Adapter) SetSinkVolume(sink audio.ID, v audio.Volume, ramp audio.RampType, duration uint16) (audio.Handle, error) {
	bus, err := a.BusOf(element.KindSink, sink)
	if err != nil {
		return audio.Handle{}, err
	}
	return a.send(bus, audio.HandleSetSinkVolume, Command{
		Op: OpSetSinkVolume, Sink: sink, Volume: &v, Ramp: ramp, Duration: duration,
	}, inflight{volume: v})
}

func (a *Adapter) SetSourceVolume(source audio.ID, v audio.Volume, ramp audio.RampType, duration uint16) (audio.Handle, error) {
	bus, err := a.BusOf(element.KindSource, source)
	if err != nil {
		return audio.Handle{}, err
	}
	return a.send(bus, audio.HandleSetSourceVolume, Command{
		Op: OpSetSourceVolume, Source: source, Volume: &v, Ramp: ramp, Duration: duration,
	}, inflight{volume: v})
}

func (a *Adapter) SetSourceState(source audio.ID, s audio.SourceState) (audio.Handle, error) {
	bus, err := a.BusOf(element.KindSource, source)
	if err != nil {
		return audio.Handle{}, err
	}
	return a.send(bus, audio.HandleSetSourceState, Command{Op: OpSetSourceState, Source: source, State: s}, inflight{})
}

func (a *Adapter) SetSinkSoundProperty(sink audio.ID, p audio.SoundProperty) (audio.Handle, error) {
	bus, err := a.BusOf(element.KindSink, sink)
	if err != nil {
		return audio.Handle{}, err
	}
	return a.send(bus, audio.HandleSetSinkSoundProperty, Command{Op: OpSetSinkSoundProperty, Sink: sink, Property: &p}, inflight{})
}

func (a *Adapter) SetSourceSoundProperty(source audio.ID, p audio.SoundProperty) (audio.Handle, error) {
	bus, err := a.BusOf(element.KindSource, source)
	if err != nil {
		return audio.Handle{}, err
	}
	return a.send(bus, audio.HandleSetSourceSoundProperty, Command{Op: OpSetSourceSoundProperty, Source: source, Property: &p}, inflight{})
}

func (a *Adapter) SetSinkNotificationConfiguration(sink audio.ID, c audio.NotificationConfiguration) (audio.Handle, error) {
	bus, err := a.BusOf(element.KindSink, sink)
	if err != nil {
		return audio.Handle{}, err
	}
	return a.send(bus, audio.HandleSetSinkNotificationConfiguration,
		Command{Op: OpSetSinkNotification, Sink: sink, Notification: &c}, inflight{})
}

func (a *Adapter) SetSourceNotificationConfiguration(source audio.ID, c audio.NotificationConfiguration) (audio.Handle, error) {
	bus, err := a.BusOf(element.KindSource, source)
	if err != nil {
		return audio.Handle{}, err
	}
	return a.send(bus, audio.HandleSetSourceNotificationConfiguration,
		Command{Op: OpSetSourceNotification, Source: source, Notification: &c}, inflight{})
}

// AbortAction forgets h and tells its bus to give up on it. A late ack
// for h is dropped.
func (a *Adapter) AbortAction(h audio.Handle) error {
	a.mu.Lock()
	w, ok := a.pending[h]
	delete(a.pending, h)
	if ok && h.Type == audio.HandleConnect {
		delete(a.hops, w.hop)
	}
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return a.publish(w.bus, Command{ID: w.id, Op: OpAbort, Handle: h.String()})
}

// handleAck runs on a broker goroutine.
func (a *Adapter) handleAck(topic string, payload []byte) error {
	var ack Ack
	if err := json.Unmarshal(payload, &ack); err != nil {
		return fmt.Errorf("%w: ack on %s: %w", audio.ErrWrongFormat, topic, err)
	}
	h, err := audio.ParseHandle(ack.Handle)
	if err != nil {
		return err
	}

	a.mu.Lock()
	w, ok := a.pending[h]
	if ok && w.id == ack.ID {
		delete(a.pending, h)
	}
	cb := a.cb
	a.mu.Unlock()

	if !ok || w.id != ack.ID {
		return fmt.Errorf("%w: %s (command %s)", ErrUnknownHandle, h, ack.ID)
	}
	if cb == nil {
		return ErrNotStarted
	}

	status := audio.FromCode(ack.Status)
	volume := w.volume
	if ack.Volume != nil {
		volume = *ack.Volume
	}
	return a.exec.Do(func() { a.deliverAck(cb, h, w, volume, status) })
}

func (a *Adapter) deliverAck(cb Callbacks, h audio.Handle, w inflight, v audio.Volume, status error) {
	switch h.Type {
	case audio.HandleConnect:
		if status != nil {
			a.forgetHop(w.hop)
		}
		cb.CbAckConnect(h, status)
	case audio.HandleDisconnect:
		if status == nil {
			a.forgetHop(w.hop)
		}
		cb.CbAckDisconnect(h, status)
	case audio.HandleSetSinkVolume:
		cb.CbAckSetSinkVolumeChange(h, v, status)
	case audio.HandleSetSourceVolume:
		cb.CbAckSetSourceVolumeChange(h, v, status)
	case audio.HandleSetSourceState:
		cb.CbAckSetSourceState(h, status)
	case audio.HandleSetSinkSoundProperty:
		cb.CbAckSetSinkSoundProperty(h, status)
	case audio.HandleSetSourceSoundProperty:
		cb.CbAckSetSourceSoundProperty(h, status)
	case audio.HandleSetSinkNotificationConfiguration:
		cb.CbAckSetSinkNotificationConfiguration(h, status)
	case audio.HandleSetSourceNotificationConfiguration:
		cb.CbAckSetSourceNotificationConfiguration(h, status)
	default:
		a.logger.Warn("ack of unknown handle type dropped", "handle", h.String())
	}
}

func (a *Adapter) forgetHop(hop audio.ID) {
	a.mu.Lock()
	delete(a.hops, hop)
	a.mu.Unlock()
}

// handleEvent runs on a broker goroutine.
func (a *Adapter) handleEvent(topic string, payload []byte) error {
	bus, ok := a.topics.BusFromRoutingTopic(topic)
	if !ok {
		return fmt.Errorf("%w: topic %s", audio.ErrWrongFormat, topic)
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("%w: event on %s: %w", audio.ErrWrongFormat, topic, err)
	}

	a.mu.Lock()
	cb := a.cb
	a.mu.Unlock()
	if cb == nil {
		return ErrNotStarted
	}
	return a.exec.Do(func() {
		if err := a.deliverEvent(cb, bus, ev); err != nil {
			a.logger.Warn("routing event failed", "bus", bus, "event", ev.Event, "id", ev.ID, "error", err)
		}
	})
}

func (a *Adapter) deliverEvent(cb Callbacks, bus string, ev Event) error {
	switch ev.Event {
	case EventRegisterDomain:
		if ev.Domain == nil {
			return missing(ev, "domain")
		}
		cfg := *ev.Domain
		if cfg.BusName == "" {
			cfg.BusName = bus
		}
		id, err := cb.HookSystemRegisterDomain(cfg)
		return a.reply(bus, element.KindDomain, cfg.Name, id, err)
	case EventRegisterSource:
		if ev.Source == nil {
			return missing(ev, "source")
		}
		id, err := cb.HookSystemRegisterSource(*ev.Source)
		return a.reply(bus, element.KindSource, ev.Source.Name, id, err)
	case EventRegisterSink:
		if ev.Sink == nil {
			return missing(ev, "sink")
		}
		id, err := cb.HookSystemRegisterSink(*ev.Sink)
		return a.reply(bus, element.KindSink, ev.Sink.Name, id, err)
	case EventRegisterGateway:
		if ev.Gateway == nil {
			return missing(ev, "gateway")
		}
		id, err := cb.HookSystemRegisterGateway(*ev.Gateway)
		return a.reply(bus, element.KindGateway, ev.Gateway.Name, id, err)
	case EventDeregisterDomain:
		return cb.HookSystemDeregisterDomain(ev.ID)
	case EventDeregisterSource:
		return cb.HookSystemDeregisterSource(ev.ID)
	case EventDeregisterSink:
		return cb.HookSystemDeregisterSink(ev.ID)
	case EventDeregisterGateway:
		return cb.HookSystemDeregisterGateway(ev.ID)
	case EventRegistrationComplete:
		return cb.HookSystemDomainRegistrationComplete(ev.ID)
	case EventSourceAvailability, EventSinkAvailability:
		if ev.Availability == nil {
			return missing(ev, "availability")
		}
		if ev.Event == EventSourceAvailability {
			return cb.HookSystemSourceAvailabilityChanged(ev.ID, *ev.Availability)
		}
		return cb.HookSystemSinkAvailabilityChanged(ev.ID, *ev.Availability)
	case EventInterruptState:
		return cb.HookSystemInterruptStateChanged(ev.ID, ev.InterruptState)
	case EventSinkMuteState:
		return cb.HookSystemSinkMuteStateChanged(ev.ID, ev.MuteState)
	case EventSinkSoundProperty, EventSourceSoundProperty:
		if ev.Property == nil {
			return missing(ev, "property")
		}
		if ev.Event == EventSinkSoundProperty {
			return cb.HookSystemSinkSoundPropertyChanged(ev.ID, *ev.Property)
		}
		return cb.HookSystemSourceSoundPropertyChanged(ev.ID, *ev.Property)
	case EventVolume:
		if ev.Volume == nil {
			return missing(ev, "volume")
		}
		return cb.HookSystemVolumeChanged(ev.ID, *ev.Volume)
	case EventSinkNotificationData, EventSourceNotificationData:
		if ev.Payload == nil {
			return missing(ev, "payload")
		}
		if ev.Event == EventSinkNotificationData {
			return cb.HookSystemSinkNotificationDataChanged(ev.ID, *ev.Payload)
		}
		return cb.HookSystemSourceNotificationDataChanged(ev.ID, *ev.Payload)
	case EventConnectionState:
		return cb.HookSystemConnectionStateChange(ev.ID, ev.ConnectionState, audio.FromCode(ev.Status))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Event)
	}
}

func missing(ev Event, field string) error {
	return fmt.Errorf("%w: %s event without %s", audio.ErrWrongFormat, ev.Event, field)
}

// reply tells the registering bus which ID it got, or why it got none.
func (a *Adapter) reply(bus string, kind element.Kind, name string, id audio.ID, status error) error {
	err := a.publish(bus, Command{
		ID:     uuid.NewString(),
		Op:     OpRegistered,
		Kind:   kind.String(),
		Name:   name,
		Assign: id,
		Status: audio.Code(status),
	})
	if status != nil {
		return status
	}
	return err
}
