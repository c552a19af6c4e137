package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/forgo/dinmore/api/internal/config"
	"github.com/forgo/dinmore/api/internal/database"
	"github.com/forgo/dinmore/api/internal/handler"
	"github.com/forgo/dinmore/api/internal/ingest"
	"github.com/forgo/dinmore/api/internal/logging"
	"github.com/forgo/dinmore/api/internal/metrics"
	"github.com/forgo/dinmore/api/internal/middleware"
	"github.com/forgo/dinmore/api/internal/repository"
	"github.com/forgo/dinmore/api/internal/service"
	"github.com/forgo/dinmore/api/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		cancel()
		os.Exit(1)
	}
}

// run wires the service and serves until ctx is cancelled or the listener
// fails. Startup errors are returned so every deferred Close still runs.
func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.Logging, version)
	slog.SetDefault(logger)

	// Initialize table store
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		slog.Info("closing store")
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("error closing store", slog.String("error", closeErr.Error()))
		}
	}()

	slog.Info("store ready", slog.String("backend", cfg.Store.Backend))

	// Initialize repositories
	gateway := repository.NewTableGateway(store, cfg.Store.PageSize, logger.With(slog.String("component", "gateway")))
	keys := repository.NewKeyStrategy(cfg.Store.DevicePartition)
	deviceRepo := repository.NewDeviceRepository(gateway, keys, cfg.Store.DeviceTable)
	sightingRepo := repository.NewSightingRepository(gateway, keys, cfg.Store.PatronTable)

	// Initialize sighting telemetry (optional)
	var recorder service.SightingRecorder
	var influx *telemetry.Recorder
	if cfg.InfluxDB.Enabled {
		influx, err = telemetry.Connect(cfg.InfluxDB, logger)
		if err != nil {
			slog.Warn("influxdb unavailable, sighting telemetry disabled", slog.String("error", err.Error()))
		} else {
			recorder = influx
			defer func() { _ = influx.Close() }()
			slog.Info("sighting telemetry enabled", slog.String("url", cfg.InfluxDB.URL))
		}
	}

	// Initialize Prometheus metrics (optional)
	var registry *prometheus.Registry
	var observer service.BatchObserver
	if cfg.Metrics.Enabled {
		registry = metrics.NewRegistry()
		observer = metrics.NewSightingMetrics(registry)
	}

	// Initialize services
	storeService := service.NewStoreService(service.StoreServiceConfig{
		DeviceRepo:   deviceRepo,
		SightingRepo: sightingRepo,
		Recorder:     recorder,
		Observer:     observer,
		Logger:       logger.With(slog.String("component", "store")),
	})

	// Initialize handlers
	deviceHandler := handler.NewDeviceHandler(storeService)
	patronHandler := handler.NewPatronHandler(storeService)
	healthHandler := handler.NewHealthHandler(gateway)
	if influx != nil {
		healthHandler.AddComponent("influxdb", influx)
	}

	// Initialize MQTT ingestion (optional)
	if cfg.MQTT.Enabled {
		mqttClient, err := ingest.Connect(cfg.MQTT, logger)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() { _ = mqttClient.Close() }()

		sightings := ingest.NewSightingHandler(storeService, cfg.MQTT.TopicPrefix, logger)
		if err := mqttClient.Subscribe(sightings.Topic(), byte(cfg.MQTT.QoS), sightings.Handle); err != nil {
			return fmt.Errorf("subscribing to sightings: %w", err)
		}
		healthHandler.AddComponent("mqtt", mqttClient)
	}

	// Initialize rate limiter for sighting ingestion
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:   cfg.RateLimit.Rate,
			Window: cfg.RateLimit.Window,
			Burst:  cfg.RateLimit.Burst,
		})
		defer limiter.Stop()
	}

	if cfg.Auth.AdminKeyHash == "" {
		slog.Warn("ADMIN_KEY_HASH not set, device management routes will reject all requests")
	}

	wrapped := newRouter(routerConfig{
		Devices:        deviceHandler,
		Patrons:        patronHandler,
		Health:         healthHandler,
		AdminKeyHash:   cfg.Auth.AdminKeyHash,
		PatronLimiter:  limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        registry,
		Logger:         logger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("version", version),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
	return runErr
}

// openStore connects the configured table store backend
func openStore(ctx context.Context, cfg *config.Config) (database.TableStore, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return database.OpenSQLite(cfg.SQLite.Path)
	case config.BackendSurrealDB:
		db := database.NewSurrealDB(cfg.SurrealConfig())
		if err := db.Connect(ctx); err != nil {
			return nil, err
		}
		return database.NewSurrealStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
