// Package metrics exposes Prometheus metrics for the Dinmore API.
//
// Collectors are registered on an explicit registry built by NewRegistry and
// served on GET /metrics:
//
//	reg := metrics.NewRegistry()
//	httpMetrics := metrics.NewHTTPMetrics(reg)
//	sightings := metrics.NewSightingMetrics(reg) // service.BatchObserver
//	mux.Handle("GET /metrics", metrics.Handler(reg))
package metrics
