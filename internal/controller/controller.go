package controller

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/action"
	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/handle"
	"github.com/nerrad567/gray-logic-audio/internal/policy"
	"github.com/nerrad567/gray-logic-audio/internal/trigger"
)

// Config holds controller settings.
type Config struct {
	// DefaultClass governs connections whose source and sink share no
	// class. It is created on demand. Empty disables the fallback.
	DefaultClass string

	// RegistrationTimeout is how long startup waits for every domain to
	// report registration complete before stored data is replayed anyway.
	RegistrationTimeout time.Duration
}

// Deps are the collaborators of a Controller. Daemon and Policy are
// required; the rest fall back to no-op or in-memory implementations.
type Deps struct {
	Daemon      Daemon
	Policy      policy.Send
	Persistence Persistence
	Notifier    Notifier
	Metrics     Metrics
	Scheduler   Scheduler
}

// Controller is the decision core. See the package documentation.
type Controller struct {
	cfg Config

	domains     *element.DomainStore
	sources     *element.SourceStore
	sinks       *element.SinkStore
	gateways    *element.GatewayStore
	classes     *element.ClassStore
	connections *element.ConnectionStore

	root    *action.Container
	queue   *trigger.Queue
	handles *handle.Store

	// ackedVolumes holds the volume reported by a sink volume ack while
	// the ack is delivered to the waiting action.
	ackedVolumes map[audio.Handle]audio.Volume

	daemon   Daemon
	policy   policy.Send
	store    Persistence
	notifier Notifier
	metrics  Metrics
	sched    Scheduler
	logger   Logger

	systemProperties map[int16]int16

	iterating     bool
	started       bool
	replayed      bool
	stopTimer     func() bool
	forwarded     uint64
	forwardErrors uint64
}

// New creates a controller. Nothing talks to the collaborators until
// Startup.
func New(cfg Config, deps Deps) *Controller {
	c := &Controller{
		cfg:              cfg,
		root:             action.NewRoot(),
		queue:            trigger.NewQueue(),
		handles:          handle.NewStore(),
		ackedVolumes:     make(map[audio.Handle]audio.Volume),
		daemon:           deps.Daemon,
		policy:           deps.Policy,
		store:            deps.Persistence,
		notifier:         deps.Notifier,
		metrics:          deps.Metrics,
		sched:            deps.Scheduler,
		logger:           noopLogger{},
		systemProperties: make(map[int16]int16),
	}
	if c.store == nil {
		c.store = &memoryPersistence{}
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if c.metrics == nil {
		c.metrics = noopMetrics{}
	}

	c.domains = element.NewDomainStore(c.daemon)
	c.sources = element.NewSourceStore(c.daemon)
	c.sinks = element.NewSinkStore(c.daemon)
	c.gateways = element.NewGatewayStore(c.daemon)
	c.classes = element.NewClassStore(c.daemon)
	c.connections = element.NewConnectionStore(c.daemon)
	return c
}

// SetLogger sets the logger for the controller and its stores.
func (c *Controller) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	c.logger = logger
	c.handles.SetLogger(logger)
	c.domains.SetLogger(logger)
	c.sources.SetLogger(logger)
	c.sinks.SetLogger(logger)
	c.gateways.SetLogger(logger)
	c.classes.SetLogger(logger)
	c.connections.SetLogger(logger)
}

// Domains returns the domain store. Callers must be on the controller
// goroutine.
func (c *Controller) Domains() *element.DomainStore { return c.domains }

// Sources returns the source store.
func (c *Controller) Sources() *element.SourceStore { return c.sources }

// Sinks returns the sink store.
func (c *Controller) Sinks() *element.SinkStore { return c.sinks }

// Gateways returns the gateway store.
func (c *Controller) Gateways() *element.GatewayStore { return c.gateways }

// Classes returns the class store.
func (c *Controller) Classes() *element.ClassStore { return c.classes }

// Connections returns the main connection store.
func (c *Controller) Connections() *element.ConnectionStore { return c.connections }

// Status is a snapshot of the dispatch machinery.
type Status struct {
	Started        bool           `json:"started"`
	Replayed       bool           `json:"replayed"`
	QueueLength    int            `json:"queue_length"`
	QueuedKinds    []string       `json:"queued_kinds,omitempty"`
	RootState      string         `json:"root_state"`
	RootBatches    int            `json:"root_batches"`
	PendingHandles []audio.Handle `json:"pending_handles,omitempty"`
	Forwarded      uint64         `json:"forwarded"`
	ForwardErrors  uint64         `json:"forward_errors"`
	Elements       map[string]int `json:"elements"`
}

// Status reports queue, tree and registry sizes.
func (c *Controller) Status() Status {
	kinds := c.queue.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return Status{
		Started:        c.started,
		Replayed:       c.replayed,
		QueueLength:    c.queue.Len(),
		QueuedKinds:    names,
		RootState:      c.root.State().String(),
		RootBatches:    c.root.Len(),
		PendingHandles: c.handles.Pending(),
		Forwarded:      c.forwarded,
		ForwardErrors:  c.forwardErrors,
		Elements: map[string]int{
			element.KindDomain.String():     c.domains.Len(),
			element.KindSource.String():     c.sources.Len(),
			element.KindSink.String():       c.sinks.Len(),
			element.KindGateway.String():    c.gateways.Len(),
			element.KindClass.String():      c.classes.Len(),
			element.KindConnection.String(): c.connections.Len(),
		},
	}
}

// Startup seeds the registry from the policy's static configuration,
// restores persisted data and starts the domain registration timer.
func (c *Controller) Startup(ctx context.Context) error {
	for _, cfg := range c.policy.Classes() {
		if _, err := c.classes.Create(cfg); err != nil {
			c.logger.Warn("static class rejected", "name", cfg.Name, "error", err)
		}
	}
	for _, p := range c.policy.SystemProperties() {
		c.systemProperties[p.Type] = p.Value
	}

	if err := c.restore(ctx); err != nil {
		c.logger.Warn("persistence not restored", "error", err)
	}

	if err := c.policy.Startup(c); err != nil {
		return err
	}
	c.started = true

	if c.sched != nil && c.cfg.RegistrationTimeout > 0 {
		c.stopTimer = c.sched.After(c.cfg.RegistrationTimeout, c.registrationTimeout)
	}

	c.logger.Info("controller started",
		"classes", c.classes.Len(),
		"system_properties", len(c.systemProperties),
	)
	c.iterateActions()
	return nil
}

// Shutdown persists the class data, discards pending work and removes
// every element from the routing side's database.
func (c *Controller) Shutdown(ctx context.Context) error {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	if c.started {
		c.policy.Shutdown()
	}

	err := c.store.Save(ctx, c.snapshot())
	if err != nil {
		c.logger.Error("persisting class data failed", "error", err)
	}

	for _, h := range c.handles.Pending() {
		if abortErr := c.daemon.AbortAction(h); abortErr != nil {
			c.logger.Debug("abort on shutdown failed", "handle", h.String(), "error", abortErr)
		}
	}
	c.root = action.NewRoot()
	c.handles.Clear()
	c.queue.Clear()

	c.connections.DestroyAll()
	c.gateways.DestroyAll()
	c.sinks.DestroyAll()
	c.sources.DestroyAll()
	c.classes.DestroyAll()
	c.domains.DestroyAll()

	c.started = false
	c.logger.Info("controller stopped")
	return err
}

// Forwarded returns how many triggers were handed to the policy.
func (c *Controller) Forwarded() uint64 { return c.forwarded }
