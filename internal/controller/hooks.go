package controller

import (
	"fmt"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/trigger"
)

// ─── Registration (routing side) ────────────────────────────────────

// HookSystemRegisterDomain registers a domain announced by the routing side
// and queues SYSTEM_REGISTER_DOMAIN with the outcome.
func (c *Controller) HookSystemRegisterDomain(cfg element.DomainConfig) (audio.ID, error) {
	d, err := c.domains.Create(cfg)
	c.push(trigger.NewRegistration(trigger.SystemRegisterDomain, cfg.Name, err))
	if err != nil {
		return audio.IDUnknown, err
	}
	c.notifyElement(element.KindDomain, d.Name(), d.ID(), true)
	return d.ID(), nil
}

// HookSystemDeregisterDomain removes a domain together with the sources,
// sinks and gateways that belong to it.
func (c *Controller) HookSystemDeregisterDomain(id audio.ID) error {
	d, ok := c.domains.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: domain ID %d", audio.ErrNonExistent, id)
	}
	name := d.Name()
	for _, g := range c.gateways.List(func(g *element.Gateway) bool { return g.ControlDomain() == name }) {
		if err := c.deregister(element.KindGateway, g.ID()); err != nil {
			c.logger.Warn("deregistering with domain", "domain", name, "name", g.Name(), "error", err)
		}
	}
	for _, s := range c.sinks.List(func(s *element.Sink) bool { return s.DomainName() == name }) {
		if err := c.deregister(element.KindSink, s.ID()); err != nil {
			c.logger.Warn("deregistering with domain", "domain", name, "name", s.Name(), "error", err)
		}
	}
	for _, s := range c.sources.List(func(s *element.Source) bool { return s.DomainName() == name }) {
		if err := c.deregister(element.KindSource, s.ID()); err != nil {
			c.logger.Warn("deregistering with domain", "domain", name, "name", s.Name(), "error", err)
		}
	}
	err := c.domains.DestroyByID(id)
	c.push(trigger.NewRegistration(trigger.SystemDeregisterDomain, name, err))
	if err == nil {
		c.notifyElement(element.KindDomain, name, id, false)
	}
	return err
}

// HookSystemRegisterSource registers a source announced by the routing side.
func (c *Controller) HookSystemRegisterSource(cfg element.SourceConfig) (audio.ID, error) {
	s, err := c.sources.Create(cfg)
	c.push(trigger.NewRegistration(trigger.SystemRegisterSource, cfg.Name, err))
	if err != nil {
		return audio.IDUnknown, err
	}
	c.joinClass(element.KindSource, s.Name(), s.ClassName())
	c.notifyElement(element.KindSource, s.Name(), s.ID(), true)
	return s.ID(), nil
}

// HookSystemDeregisterSource unregisters a source.
func (c *Controller) HookSystemDeregisterSource(id audio.ID) error {
	return c.deregister(element.KindSource, id)
}

// HookSystemRegisterSink registers a sink announced by the routing side.
func (c *Controller) HookSystemRegisterSink(cfg element.SinkConfig) (audio.ID, error) {
	s, err := c.sinks.Create(cfg)
	c.push(trigger.NewRegistration(trigger.SystemRegisterSink, cfg.Name, err))
	if err != nil {
		return audio.IDUnknown, err
	}
	c.joinClass(element.KindSink, s.Name(), s.ClassName())
	c.notifyElement(element.KindSink, s.Name(), s.ID(), true)
	return s.ID(), nil
}

// HookSystemDeregisterSink unregisters a sink.
func (c *Controller) HookSystemDeregisterSink(id audio.ID) error {
	return c.deregister(element.KindSink, id)
}

// HookSystemRegisterGateway registers a gateway announced by the routing side.
func (c *Controller) HookSystemRegisterGateway(cfg element.GatewayConfig) (audio.ID, error) {
	g, err := c.gateways.Create(cfg)
	c.push(trigger.NewRegistration(trigger.SystemRegisterGateway, cfg.Name, err))
	if err != nil {
		return audio.IDUnknown, err
	}
	c.notifyElement(element.KindGateway, g.Name(), g.ID(), true)
	return g.ID(), nil
}

// HookSystemDeregisterGateway unregisters a gateway.
func (c *Controller) HookSystemDeregisterGateway(id audio.ID) error {
	return c.deregister(element.KindGateway, id)
}

func (c *Controller) deregister(kind element.Kind, id audio.ID) error {
	var (
		name string
		err  error
		tk   trigger.Kind
	)
	switch kind {
	case element.KindSource:
		s, ok := c.sources.GetByID(id)
		if !ok {
			return fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, id)
		}
		name, tk = s.Name(), trigger.SystemDeregisterSource
		err = c.sources.DestroyByID(id)
	case element.KindSink:
		s, ok := c.sinks.GetByID(id)
		if !ok {
			return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
		}
		name, tk = s.Name(), trigger.SystemDeregisterSink
		err = c.sinks.DestroyByID(id)
	case element.KindGateway:
		g, ok := c.gateways.GetByID(id)
		if !ok {
			return fmt.Errorf("%w: gateway ID %d", audio.ErrNonExistent, id)
		}
		name, tk = g.Name(), trigger.SystemDeregisterGateway
		err = c.gateways.DestroyByID(id)
	default:
		return fmt.Errorf("%w: cannot deregister %s", audio.ErrNotPossible, kind)
	}
	c.push(trigger.NewRegistration(tk, name, err))
	if err == nil {
		c.notifyElement(kind, name, id, false)
	}
	return err
}

// HookSystemDomainRegistrationComplete marks a domain complete. Once every
// registered domain is complete the stored class data is replayed.
func (c *Controller) HookSystemDomainRegistrationComplete(id audio.ID) error {
	d, ok := c.domains.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: domain ID %d", audio.ErrNonExistent, id)
	}
	d.SetComplete()
	c.push(trigger.DomainRegistrationComplete{Domain: d.Name()})
	if c.allDomainsComplete() {
		c.replay()
	}
	return nil
}

// ─── State changes (routing side) ───────────────────────────────────

// HookSystemSourceAvailabilityChanged records and queues a source
// availability change.
func (c *Controller) HookSystemSourceAvailabilityChanged(id audio.ID, a audio.Availability) error {
	s, ok := c.sources.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, id)
	}
	s.SetAvailability(a)
	c.notifier.Broadcast(ChannelAvailability, map[string]any{"kind": element.KindSource.String(), "name": s.Name(), "availability": a})
	c.push(trigger.NewSourceAvailability(s.Name(), a))
	return nil
}

// HookSystemSinkAvailabilityChanged records and queues a sink availability
// change.
func (c *Controller) HookSystemSinkAvailabilityChanged(id audio.ID, a audio.Availability) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	s.SetAvailability(a)
	c.notifier.Broadcast(ChannelAvailability, map[string]any{"kind": element.KindSink.String(), "name": s.Name(), "availability": a})
	c.push(trigger.NewSinkAvailability(s.Name(), a))
	return nil
}

// HookSystemInterruptStateChanged records and queues an interrupt change.
func (c *Controller) HookSystemInterruptStateChanged(id audio.ID, state audio.InterruptState) error {
	s, ok := c.sources.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, id)
	}
	s.SetInterruptState(state)
	c.push(trigger.InterruptStateChange{Source: s.Name(), State: state})
	return nil
}

// HookSystemSinkMuteStateChanged records a mute change made outside the
// controller.
func (c *Controller) HookSystemSinkMuteStateChanged(id audio.ID, state audio.MuteState) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	s.SetMuteState(state)
	c.notifier.Broadcast(ChannelMute, map[string]any{"sink": s.Name(), "state": state})
	c.push(trigger.MuteStateChange{Sink: s.Name(), State: state})
	return nil
}

// HookSystemSinkSoundPropertyChanged records a routing-side property change
// and queues it as a main sound property change.
func (c *Controller) HookSystemSinkSoundPropertyChanged(id audio.ID, p audio.SoundProperty) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	s.SetSoundProperty(p)
	mp := audio.MainSoundProperty(p)
	s.SetMainSoundProperty(mp)
	c.push(trigger.NewSinkSoundPropertyChange(s.Name(), mp))
	return nil
}

// HookSystemSourceSoundPropertyChanged is the source counterpart.
func (c *Controller) HookSystemSourceSoundPropertyChanged(id audio.ID, p audio.SoundProperty) error {
	s, ok := c.sources.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, id)
	}
	s.SetSoundProperty(p)
	mp := audio.MainSoundProperty(p)
	s.SetMainSoundProperty(mp)
	c.push(trigger.NewSourceSoundPropertyChange(s.Name(), mp))
	return nil
}

// HookSystemVolumeChanged records a routing-side volume change of a sink.
func (c *Controller) HookSystemVolumeChanged(id audio.ID, v audio.Volume) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	s.SetVolume(v)
	main := s.ToMainVolume(v)
	s.SetMainVolume(main)
	c.volumeChanged(s, main)
	c.push(trigger.VolumeChange{Sink: s.Name(), Volume: main})
	return nil
}

// HookSystemSinkNotificationDataChanged queues notification data of a sink.
func (c *Controller) HookSystemSinkNotificationDataChanged(id audio.ID, p audio.NotificationPayload) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	c.push(trigger.NewSinkNotificationData(s.Name(), p))
	return nil
}

// HookSystemSourceNotificationDataChanged queues notification data of a
// source.
func (c *Controller) HookSystemSourceNotificationDataChanged(id audio.ID, p audio.NotificationPayload) error {
	s, ok := c.sources.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, id)
	}
	c.push(trigger.NewSourceNotificationData(s.Name(), p))
	return nil
}

// HookSystemConnectionStateChange is called when the routing side reports
// that one of its connections changed state on its own, for example
// because a device went away. The main connection using that hop takes the
// new state.
func (c *Controller) HookSystemConnectionStateChange(hop audio.ID, state audio.ConnectionState, status error) error {
	for _, conn := range c.connections.List(nil) {
		for _, i := range conn.ConnectedHops() {
			if conn.HopConnection(i) != hop {
				continue
			}
			c.setConnectionState(conn, state)
			c.push(trigger.ConnectionStateChange{Connection: conn.Name(), State: state, Status: status})
			return nil
		}
	}
	return fmt.Errorf("%w: routing connection %d", audio.ErrNonExistent, hop)
}

// ─── User requests (command side) ───────────────────────────────────

// HookUserConnectionRequest asks for a main connection between source and
// sink. The main connection is created right away in CS_DISCONNECTED and
// its ID returned; the policy decides whether it gets connected. An
// existing connection returns its ID with ErrAlreadyExists.
func (c *Controller) HookUserConnectionRequest(source, sink audio.ID) (audio.ID, error) {
	src, ok := c.sources.GetByID(source)
	if !ok {
		return audio.IDUnknown, fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, source)
	}
	snk, ok := c.sinks.GetByID(sink)
	if !ok {
		return audio.IDUnknown, fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, sink)
	}
	if conn, exists := c.connections.Get(element.ConnectionName(src.Name(), snk.Name())); exists {
		return conn.ID(), fmt.Errorf("%w: connection %s", audio.ErrAlreadyExists, conn.Name())
	}

	class, err := c.resolveClass("", src.Name(), snk.Name())
	if err != nil {
		return audio.IDUnknown, err
	}
	conn, err := c.createConnection(class, src, snk)
	if err != nil {
		return audio.IDUnknown, err
	}
	c.push(trigger.NewConnect(class.Name(), src.Name(), snk.Name()))
	return conn.ID(), nil
}

// HookUserDisconnectionRequest asks for a main connection to go away.
func (c *Controller) HookUserDisconnectionRequest(id audio.ID) error {
	conn, ok := c.connections.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: connection ID %d", audio.ErrNonExistent, id)
	}
	c.push(trigger.NewDisconnect(conn.ClassName(), conn.SourceName(), conn.SinkName()))
	return nil
}

// HookUserSetSinkMuteState asks for a sink to be muted or unmuted.
func (c *Controller) HookUserSetSinkMuteState(id audio.ID, state audio.MuteState) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	if state != audio.Muted && state != audio.Unmuted {
		return fmt.Errorf("%w: mute state %q", audio.ErrNotPossible, state)
	}
	c.push(trigger.MuteRequest{Sink: s.Name(), State: state})
	return nil
}

// HookUserSetVolume asks for a new main volume of a sink.
func (c *Controller) HookUserSetVolume(id audio.ID, v audio.MainVolume) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	if v < audio.MinMainVolume || v > audio.MaxMainVolume {
		return fmt.Errorf("%w: main volume %d", audio.ErrOutOfRange, v)
	}
	c.push(trigger.VolumeRequest{Sink: s.Name(), Volume: v})
	return nil
}

// HookUserVolumeStep asks for the main volume of a sink to change by step.
func (c *Controller) HookUserVolumeStep(id audio.ID, step int16) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	c.push(trigger.VolumeRequest{Sink: s.Name(), Volume: clampMain(int(s.MainVolume()) + int(step))})
	return nil
}

// HookUserSetSinkMainSoundProperty asks for a sink property change.
func (c *Controller) HookUserSetSinkMainSoundProperty(id audio.ID, p audio.MainSoundProperty) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	c.push(trigger.NewSinkSoundProperty(s.Name(), p))
	return nil
}

// HookUserSetSourceMainSoundProperty asks for a source property change.
func (c *Controller) HookUserSetSourceMainSoundProperty(id audio.ID, p audio.MainSoundProperty) error {
	s, ok := c.sources.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, id)
	}
	c.push(trigger.NewSourceSoundProperty(s.Name(), p))
	return nil
}

// HookUserSetSystemProperty asks for a system property change.
func (c *Controller) HookUserSetSystemProperty(p audio.SystemProperty) error {
	c.push(trigger.SystemPropertyRequest{Property: p})
	return nil
}

// HookUserSetMainSinkNotificationConfiguration asks for a sink notification
// configuration change.
func (c *Controller) HookUserSetMainSinkNotificationConfiguration(id audio.ID, cfg audio.NotificationConfiguration) error {
	s, ok := c.sinks.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, id)
	}
	c.push(trigger.NewSinkNotificationConfiguration(s.Name(), cfg))
	return nil
}

// HookUserSetMainSourceNotificationConfiguration is the source counterpart.
func (c *Controller) HookUserSetMainSourceNotificationConfiguration(id audio.ID, cfg audio.NotificationConfiguration) error {
	s, ok := c.sources.GetByID(id)
	if !ok {
		return fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, id)
	}
	c.push(trigger.NewSourceNotificationConfiguration(s.Name(), cfg))
	return nil
}
