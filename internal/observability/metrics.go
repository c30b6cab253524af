package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the scoring pipeline.
type Metrics struct {
	StationsScored   prometheus.Counter
	CalculatorErrors prometheus.Counter
	ScoringProgress  prometheus.Gauge

	SnapshotDuration prometheus.Histogram
	RunDuration      prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StationsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rhnr_scoring",
			Name:      "stations_scored_total",
			Help:      "Total stations scored across completed runs.",
		}),
		CalculatorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rhnr_scoring",
			Name:      "calculator_errors_total",
			Help:      "Total criterion calculator failures.",
		}),
		ScoringProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rhnr_scoring",
			Name:      "run_progress_ratio",
			Help:      "Fraction of stations processed in the current scoring run.",
		}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rhnr_scoring",
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of the raw-value snapshot build.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rhnr_scoring",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete scoring run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(
		m.StationsScored,
		m.CalculatorErrors,
		m.ScoringProgress,
		m.SnapshotDuration,
		m.RunDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		StationsScored:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rhnr_scoring", Name: "stations_scored_total"}),
		CalculatorErrors: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rhnr_scoring", Name: "calculator_errors_total"}),
		ScoringProgress:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rhnr_scoring", Name: "run_progress_ratio"}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "rhnr_scoring", Name: "snapshot_duration_seconds"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "rhnr_scoring", Name: "run_duration_seconds"}),
	}
}
