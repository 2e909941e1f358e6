package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/controller"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-audio/internal/policy"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Core is the part of the controller the API reads and drives. Its methods
// are only called from inside Caller.Call.
type Core interface {
	Status() controller.Status

	Domains() *element.DomainStore
	Sources() *element.SourceStore
	Sinks() *element.SinkStore
	Gateways() *element.GatewayStore
	Classes() *element.ClassStore
	Connections() *element.ConnectionStore

	ListMainConnections(kind element.Kind, name string, order policy.Order) ([]policy.ConnectionInfo, error)
	SystemProperties() []audio.SystemProperty

	HookUserConnectionRequest(source, sink audio.ID) (audio.ID, error)
	HookUserDisconnectionRequest(id audio.ID) error
	HookUserSetSinkMuteState(id audio.ID, state audio.MuteState) error
	HookUserSetVolume(id audio.ID, v audio.MainVolume) error
	HookUserVolumeStep(id audio.ID, step int16) error
	HookUserSetSinkMainSoundProperty(id audio.ID, p audio.MainSoundProperty) error
	HookUserSetSourceMainSoundProperty(id audio.ID, p audio.MainSoundProperty) error
	HookUserSetSystemProperty(p audio.SystemProperty) error
	HookUserSetMainSinkNotificationConfiguration(id audio.ID, cfg audio.NotificationConfiguration) error
	HookUserSetMainSourceNotificationConfiguration(id audio.ID, cfg audio.NotificationConfiguration) error
}

// Caller runs fn on the controller goroutine and waits for it.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

// BrokerStatus reports the MQTT connection for the metrics endpoint.
type BrokerStatus interface {
	Stats() mqtt.Stats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Core    Core
	Caller  Caller
	Broker  BrokerStatus // optional
	Hub     *Hub         // If set, the server uses this hub instead of creating its own
	Version string
}

// Server is the HTTP API server of the audio controller.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	core      Core
	caller    Caller
	broker    BrokerStatus
	version   string
	startedAt time.Time

	server      *http.Server
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Core == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if deps.Caller == nil {
		return nil, fmt.Errorf("caller is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		core:      deps.Core,
		caller:    deps.Caller,
		broker:    deps.Broker,
		version:   deps.Version,
		startedAt: time.Now(),
	}

	// The controller broadcasts through the hub, so cmd creates it first
	// and hands it in.
	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub unless one was injected,
// and launches the HTTP listener in a background goroutine. The server can
// be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.Timeouts.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.Timeouts.ReadTimeout(),
		WriteTimeout:      s.cfg.Timeouts.WriteTimeout(),
		IdleTimeout:       s.cfg.Timeouts.IdleTimeout(),
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// call runs fn on the controller and writes a 503 if it could not.
func (s *Server) call(w http.ResponseWriter, r *http.Request, fn func()) bool {
	if err := s.caller.Call(r.Context(), fn); err != nil {
		s.logger.Warn("controller call failed", "path", r.URL.Path, "error", err)
		writeUnavailable(w, "controller not running")
		return false
	}
	return true
}
