// Package analytics keeps the persisted performance counters and mirrors
// them into Prometheus collectors.
package analytics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/StatTag/StatWrap-sub000/model"
)

// Service tracks search and indexing timings.
type Service struct {
	mu          sync.RWMutex
	performance model.PerformanceStats
	metrics     *Metrics
}

// NewService creates a new analytics service with zeroed counters.
func NewService() *Service {
	return &Service{
		performance: model.PerformanceStats{SearchTimes: []float64{}},
		metrics:     NewMetrics(),
	}
}

// RecordSearch counts a search. Only executed searches enter the rolling
// timing window; cache hits just bump the total.
func (s *Service) RecordSearch(took time.Duration, cached bool) {
	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	s.metrics.SearchesTotal.WithLabelValues(outcome).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached {
		s.performance.TotalSearches++
		return
	}
	s.metrics.SearchDuration.Observe(took.Seconds())
	s.performance.RecordSearch(float64(took.Microseconds()) / 1000)
}

// RecordIndexing adds an indexing run to the totals. documents is the store
// size after the run.
func (s *Service) RecordIndexing(operation string, took time.Duration, documents int) {
	s.metrics.IndexingDuration.WithLabelValues(operation).Observe(took.Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.performance.TotalIndexingTime += took.Milliseconds()
	s.performance.DocumentsIndexed = int64(documents)
}

// SetDocumentCounts publishes the per-type document gauge.
func (s *Service) SetDocumentCounts(byType map[string]int) {
	s.metrics.Documents.Reset()
	for _, t := range model.AllDocumentTypes {
		s.metrics.Documents.WithLabelValues(string(t)).Set(float64(byType[string(t)]))
	}
}

// SetIndexFileSize publishes the size of the persisted index file.
func (s *Service) SetIndexFileSize(bytes int64) {
	s.metrics.IndexFileBytes.Set(float64(bytes))
}

// JobFinished records a background job reaching a terminal status.
func (s *Service) JobFinished(jobType model.JobType, status model.JobStatus, took time.Duration) {
	s.metrics.JobsTotal.WithLabelValues(string(jobType), string(status)).Inc()
	s.metrics.JobDuration.WithLabelValues(string(jobType)).Observe(took.Seconds())
}

// Performance returns a copy of the counters.
func (s *Service) Performance() model.PerformanceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.performance.Clone()
}

// Restore replaces the counters, typically with the persisted ones.
func (s *Service) Restore(stats model.PerformanceStats) {
	stats = stats.Clone()
	if len(stats.SearchTimes) > model.MaxSearchTimes {
		stats.SearchTimes = stats.SearchTimes[len(stats.SearchTimes)-model.MaxSearchTimes:]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.performance = stats
}

// Reset zeroes the counters.
func (s *Service) Reset() {
	s.Restore(model.PerformanceStats{})
}

// Metrics exposes the collectors.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// Handler serves the Prometheus exposition of this service's registry.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})
}
