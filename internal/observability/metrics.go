package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	FilesConsumed   prometheus.Counter
	EventsProduced  prometheus.Counter
	AssembleErrors  prometheus.Counter
	CommitErrors    prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Catalog sink metrics.
	CatalogWrites *prometheus.CounterVec // labels: outcome={inserted,duplicate,error}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nordic_etl",
			Name:      "files_consumed_total",
			Help:      "Total bulletin files read from the spool directory.",
		}),
		EventsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nordic_etl",
			Name:      "events_produced_total",
			Help:      "Total assembled events written to the sinks.",
		}),
		AssembleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nordic_etl",
			Name:      "assemble_errors_total",
			Help:      "Total files that failed to assemble into an event.",
		}),
		CommitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nordic_etl",
			Name:      "commit_errors_total",
			Help:      "Total failures acknowledging a processed spool file.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nordic_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nordic_etl",
			Name:      "batch_size",
			Help:      "Number of bulletin files per batch taken from the spool.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nordic_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-assemble-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		CatalogWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nordic_etl",
			Name:      "catalog_writes_total",
			Help:      "Catalog insert attempts by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.FilesConsumed,
		m.EventsProduced,
		m.AssembleErrors,
		m.CommitErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.CatalogWrites,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesConsumed:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nordic_etl", Name: "files_consumed_total"}),
		EventsProduced:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nordic_etl", Name: "events_produced_total"}),
		AssembleErrors:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nordic_etl", Name: "assemble_errors_total"}),
		CommitErrors:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nordic_etl", Name: "commit_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "nordic_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "nordic_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "nordic_etl", Name: "batch_processing_duration_seconds"}),
		CatalogWrites:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "nordic_etl", Name: "catalog_writes_total"}, []string{"outcome"}),
	}
}
