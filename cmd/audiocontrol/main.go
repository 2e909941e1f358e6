// Audio Control - routing decision core for vehicle audio
//
// This is the main entry point of the audio controller. It connects the
// decision core to:
//   - the routing daemon, over MQTT (commands, acks and events)
//   - the policy engine, built in or remote over MQTT
//   - SQLite, for the element database and persisted class data
//   - an HTTP/WebSocket API for HMI clients
//   - InfluxDB, for optional dispatch metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/gray-logic-audio/migrations"

	"github.com/nerrad567/gray-logic-audio/internal/api"
	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/controller"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-audio/internal/persistence"
	"github.com/nerrad567/gray-logic-audio/internal/policy"
	"github.com/nerrad567/gray-logic-audio/internal/routing"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configEnv         = "AUDIOCONTROL_CONFIG"

	// statsInterval is how often dispatch statistics go to InfluxDB.
	statsInterval = 10 * time.Second

	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run starts every component, blocks until ctx is cancelled and then shuts
// the controller down. It is separated from main for testability.
func run(ctx context.Context, configPath string) error { //nolint:gocognit,gocyclo // Linear startup sequence
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting audio controller",
		"version", version,
		"commit", commit,
		"build_date", date,
		"site", cfg.Site.ID,
	)

	// Database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database connected", "path", cfg.Database.Path)

	edb := routing.NewElementDB(db, audio.ID(cfg.Controller.StaticIDBoundary)) // #nosec G115 -- validated to fit uint16
	if resetErr := edb.Reset(ctx); resetErr != nil {
		return fmt.Errorf("resetting element database: %w", resetErr)
	}

	// MQTT
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected", "broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port))

	// InfluxDB (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Warn("InfluxDB write failed", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	if healthErr := healthCheck(ctx, db, mqttClient, influxClient); healthErr != nil {
		return fmt.Errorf("health check: %w", healthErr)
	}

	// Decision core
	qos := byte(cfg.MQTT.QoS) // #nosec G115 -- validated 0..2
	runner := controller.NewRunner()

	adapter := routing.NewAdapter(edb, mqttClient, runner, qos)
	adapter.SetLogger(log.Component("routing"))

	engine, err := newPolicy(cfg, mqttClient, runner, log)
	if err != nil {
		return err
	}

	store := persistence.NewSQLiteStore(db)
	defer store.Close()

	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))

	deps := controller.Deps{
		Daemon:      adapter,
		Policy:      engine,
		Persistence: store,
		Notifier:    hub,
		Scheduler:   runner,
	}
	if influxClient != nil {
		deps.Metrics = influxClient
	}
	ctrl := controller.New(controller.Config{
		DefaultClass:        cfg.Controller.DefaultClass,
		RegistrationTimeout: cfg.RegistrationTimeout(),
	}, deps)
	ctrl.SetLogger(log.Component("controller"))

	// Background work outlives ctx so the controller can still be shut
	// down through the runner once a signal arrives.
	workCtx, stopWork := context.WithCancel(context.WithoutCancel(ctx))
	var g errgroup.Group
	g.Go(func() error {
		if runErr := runner.Run(workCtx); !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		return nil
	})
	g.Go(func() error {
		hub.Run(workCtx)
		return nil
	})
	g.Go(func() error {
		toggleDebugOnSignal(workCtx, log, logging.ParseLevel(cfg.Logging.Level))
		return nil
	})
	defer func() {
		stopWork()
		if waitErr := g.Wait(); waitErr != nil {
			log.Error("background worker failed", "error", waitErr)
		}
	}()

	if startErr := adapter.Start(ctrl); startErr != nil {
		return fmt.Errorf("starting routing adapter: %w", startErr)
	}
	defer adapter.Stop()

	var startupErr error
	if callErr := runner.Call(ctx, func() { startupErr = ctrl.Startup(ctx) }); callErr != nil {
		return fmt.Errorf("starting controller: %w", callErr)
	}
	if startupErr != nil {
		return fmt.Errorf("starting controller: %w", startupErr)
	}

	// API server
	var server *api.Server
	if cfg.API.Enabled {
		server, err = api.New(api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log.Component("api"),
			Core:    ctrl,
			Caller:  runner,
			Broker:  mqttClient,
			Hub:     hub,
			Version: version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if startErr := server.Start(workCtx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
	}

	if influxClient != nil {
		g.Go(func() error {
			reportStats(workCtx, runner, ctrl, influxClient, cfg.Site.ID)
			return nil
		})
	}

	log.Info("audio controller started", "policy", cfg.Policy.Engine, "api", cfg.API.Enabled)

	<-ctx.Done()
	log.Info("shutdown signal received")

	if server != nil {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	var shutdownErr error
	if callErr := runner.Call(shutdownCtx, func() { shutdownErr = ctrl.Shutdown(shutdownCtx) }); callErr != nil {
		log.Error("controller shutdown did not complete", "error", callErr)
	} else if shutdownErr != nil {
		log.Error("controller shutdown failed", "error", shutdownErr)
	}

	log.Info("audio controller stopped")
	return nil
}

// toggleDebugOnSignal flips between the configured level and debug on
// each SIGUSR1 until ctx is cancelled.
func toggleDebugOnSignal(ctx context.Context, log *logging.Logger, configured slog.Level) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			log.Warn("log level changed", "level", log.ToggleDebug(configured).String())
		}
	}
}

// newPolicy builds the engine selected by policy.engine.
func newPolicy(cfg *config.Config, client policy.MQTTClient, exec policy.Executor, log *logging.Logger) (policy.Send, error) {
	static, err := policy.LoadStatic(cfg.Policy.File)
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}

	if cfg.Policy.Engine != "mqtt" {
		return policy.NewDefault(static), nil
	}
	engine := policy.NewMQTTEngine(static, client, exec, policy.MQTTConfig{
		HookTopic:    cfg.Policy.HookTopic,
		ActionsTopic: cfg.Policy.ActionsTopic,
		QoS:          byte(cfg.MQTT.QoS), // #nosec G115 -- validated 0..2
	})
	engine.SetLogger(log.Component("policy"))
	return engine, nil
}

// statusSource is the part of the controller the stats reporter reads.
type statusSource interface {
	Status() controller.Status
}

// statsWriter is the part of the InfluxDB client the stats reporter writes to.
type statsWriter interface {
	WriteDispatchStats(site string, s influxdb.DispatchStats)
}

// reportStats samples the controller on its own goroutine every
// statsInterval until ctx is cancelled.
func reportStats(ctx context.Context, caller api.Caller, core statusSource, w statsWriter, site string) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sampleStats(ctx, caller, core, w, site)
		}
	}
}

func sampleStats(ctx context.Context, caller api.Caller, core statusSource, w statsWriter, site string) {
	var st controller.Status
	if err := caller.Call(ctx, func() { st = core.Status() }); err != nil {
		return
	}
	w.WriteDispatchStats(site, influxdb.DispatchStats{
		QueueLength:    st.QueueLength,
		RootBatches:    st.RootBatches,
		PendingHandles: len(st.PendingHandles),
		Forwarded:      st.Forwarded,
		ForwardErrors:  st.ForwardErrors,
	})
}

// getConfigPath returns the configuration file path.
//
// Priority:
//  1. AUDIOCONTROL_CONFIG environment variable
//  2. Default path (configs/config.yaml)
func getConfigPath() string {
	if path := os.Getenv(configEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
