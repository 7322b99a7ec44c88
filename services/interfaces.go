// Package services declares the contracts the outer surfaces depend on.
package services

import (
	"context"
	"net/http"

	"github.com/StatTag/StatWrap-sub000/internal/engine"
	"github.com/StatTag/StatWrap-sub000/internal/jobs"
	"github.com/StatTag/StatWrap-sub000/model"
)

// Searcher defines the read side of the search index
type Searcher interface {
	Search(query string, opts model.SearchOptions) *model.GroupedResults
	GetSuggestions(partial string) []string
	GetSearchStats() model.SearchStats
	IsInitialized() bool
}

// IndexManager manages the lifecycle of the index content
type IndexManager interface {
	Initialize(ctx context.Context, projects []model.Project) (engine.ReconcileResult, error)
	ReindexAll(ctx context.Context) error
	ExportIndex() *model.ExportPayload
	ImportIndex(ctx context.Context, payload *model.ExportPayload) error
	DeleteIndexFile() bool
}

// JobManager defines operations for running and tracking background jobs
type JobManager interface {
	InitializeAsync(projects []model.Project) (string, error)
	ReindexAllAsync() (string, error)
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
	JobMetrics() jobs.JobMetricsData
}

// MetricsExporter serves Prometheus metrics
type MetricsExporter interface {
	MetricsHandler() http.Handler
}

// SearchService is everything the HTTP and CLI surfaces use.
type SearchService interface {
	Searcher
	IndexManager
	JobManager
	MetricsExporter
}

var _ SearchService = (*engine.Service)(nil)
