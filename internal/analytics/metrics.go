package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of one search service. They live
// on their own registry so several services can coexist in a process.
type Metrics struct {
	Registry *prometheus.Registry

	SearchesTotal    *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	IndexingDuration *prometheus.HistogramVec
	Documents        *prometheus.GaugeVec
	IndexFileBytes   prometheus.Gauge
	JobsTotal        *prometheus.CounterVec
	JobDuration      *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statwrap_search_queries_total",
				Help: "Total number of searches by cache outcome",
			},
			[]string{"cache"},
		),
		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statwrap_search_duration_seconds",
				Help:    "Duration of searches in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		IndexingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statwrap_indexing_duration_seconds",
				Help:    "Duration of indexing operations in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"operation"},
		),
		Documents: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "statwrap_index_documents",
				Help: "Number of indexed documents by type",
			},
			[]string{"type"},
		),
		IndexFileBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "statwrap_index_file_bytes",
				Help: "Size of the persisted index file in bytes",
			},
		),
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statwrap_jobs_total",
				Help: "Total number of background jobs by type and final status",
			},
			[]string{"type", "status"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statwrap_job_duration_seconds",
				Help:    "Duration of background jobs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
	}
}
