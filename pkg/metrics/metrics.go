package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes
const (
	OutcomeOK       = "ok"
	OutcomeNoop     = "noop"
	OutcomeRejected = "rejected"
)

// Metrics holds all application metrics
type Metrics struct {
	// Store related metrics
	StoreOperations *prometheus.CounterVec
	StoreRecords    prometheus.Gauge

	// Seed loading metrics
	SeedLoadLatency prometheus.Histogram
	SeedRecords     prometheus.Gauge
}

// NewMetrics creates all application metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_operations_total",
			Help:      "Total number of record store operations",
		}, []string{"operation", "outcome"}),
		StoreRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_records",
			Help:      "Current number of committed records",
		}),
		SeedLoadLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "seed_load_duration_seconds",
			Help:      "Time spent loading the seed dataset",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		SeedRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "seed_records",
			Help:      "Number of records in the last loaded seed dataset",
		}),
	}
}

func (m *Metrics) ObserveOperation(operation, outcome string) {
	m.StoreOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) SetRecordCount(n int) {
	m.StoreRecords.Set(float64(n))
}

func (m *Metrics) ObserveSeedLoad(started time.Time, records int) {
	m.SeedLoadLatency.Observe(time.Since(started).Seconds())
	m.SeedRecords.Set(float64(records))
}
