package main

import (
	"log/slog"
	"net/http"

	"github.com/forgo/dinmore/api/internal/handler"
	"github.com/forgo/dinmore/api/internal/metrics"
	"github.com/forgo/dinmore/api/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// routerConfig holds everything the HTTP surface is assembled from
type routerConfig struct {
	Devices        *handler.DeviceHandler
	Patrons        *handler.PatronHandler
	Health         *handler.HealthHandler
	AdminKeyHash   string
	PatronLimiter  *middleware.RateLimiter // Optional, nil disables rate limiting
	AllowedOrigins []string
	Metrics        *prometheus.Registry // Optional, nil disables /metrics
	Logger         *slog.Logger
}

// newRouter registers the API routes and wraps them in the global middleware
func newRouter(cfg routerConfig) http.Handler {
	admin := middleware.AdminKey(cfg.AdminKeyHash)

	patronLimit := func(next http.Handler) http.Handler { return next }
	if cfg.PatronLimiter != nil {
		patronLimit = middleware.RateLimit(cfg.PatronLimiter)
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", cfg.Health.Check)

	// Device endpoints
	mux.Handle("POST /v1/devices", admin(http.HandlerFunc(cfg.Devices.Register)))
	mux.Handle("GET /v1/devices", admin(http.HandlerFunc(cfg.Devices.List)))
	mux.HandleFunc("GET /v1/devices/{deviceId}", cfg.Devices.Get)
	mux.Handle("DELETE /v1/devices/{deviceId}", admin(http.HandlerFunc(cfg.Devices.Delete)))

	// Sighting ingestion
	mux.Handle("POST /v1/patrons", patronLimit(http.HandlerFunc(cfg.Patrons.Store)))

	var routes http.Handler = mux
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler(cfg.Metrics))
		routes = metrics.NewHTTPMetrics(cfg.Metrics).Middleware(mux)
	}

	return middleware.Chain(
		routes,
		middleware.RequestID,
		middleware.Logger(cfg.Logger),
		middleware.Recovery,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Compress,
	)
}
