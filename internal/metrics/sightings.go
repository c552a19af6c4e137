package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SightingMetrics holds Prometheus metrics for patron batch ingestion.
// It satisfies service.BatchObserver.
type SightingMetrics struct {
	PatronsTotal  *prometheus.CounterVec
	BatchSize     prometheus.Histogram
	BatchDuration prometheus.Histogram
}

// NewSightingMetrics creates and registers sighting metrics on the given registry.
func NewSightingMetrics(reg prometheus.Registerer) *SightingMetrics {
	m := &SightingMetrics{
		PatronsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patrons_total",
			Help:      "Total number of patron entries processed, by result.",
		}, []string{"result"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "patron_batch_size",
			Help:      "Number of entries per patron batch.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "patron_batch_duration_seconds",
			Help:      "Duration of patron batch writes in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	reg.MustRegister(m.PatronsTotal, m.BatchSize, m.BatchDuration)
	return m
}

// ObserveBatch records the outcome of one patron batch
func (m *SightingMetrics) ObserveBatch(stored, failed int, elapsed time.Duration) {
	m.PatronsTotal.WithLabelValues("stored").Add(float64(stored))
	m.PatronsTotal.WithLabelValues("failed").Add(float64(failed))
	m.BatchSize.Observe(float64(stored + failed))
	m.BatchDuration.Observe(elapsed.Seconds())
}
