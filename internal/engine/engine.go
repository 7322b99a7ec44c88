// Package engine owns the search service lifecycle: it wires the document
// store, the index set, the indexing and query services, persistence and the
// background job manager behind one Service value.
package engine

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StatTag/StatWrap-sub000/config"
	"github.com/StatTag/StatWrap-sub000/index"
	"github.com/StatTag/StatWrap-sub000/internal/analytics"
	"github.com/StatTag/StatWrap-sub000/internal/indexing"
	"github.com/StatTag/StatWrap-sub000/internal/jobs"
	"github.com/StatTag/StatWrap-sub000/internal/logging"
	"github.com/StatTag/StatWrap-sub000/internal/persistence"
	"github.com/StatTag/StatWrap-sub000/internal/search"
	"github.com/StatTag/StatWrap-sub000/model"
	"github.com/StatTag/StatWrap-sub000/store"
)

var log = logging.ForComponent(logging.CompEngine)

// Service is the project search index. Create it with New, call Initialize
// once with the current project list, then query it. Close releases it.
type Service struct {
	settings  *config.Settings
	indexPath string

	// contentMu guards the document store and the indices as one unit.
	contentMu     sync.RWMutex
	documentStore *store.DocumentStore
	indices       *index.Set
	indexer       *indexing.Service
	searcher      *search.Service
	analytics     *analytics.Service
	jobManager    *jobs.Manager

	// stateMu guards the registry and the known project descriptors.
	stateMu         sync.Mutex
	indexedProjects map[string]model.IndexedProject
	projects        []model.Project
	// summaryOnly marks projects known only by id, name and path, as
	// adopted from an index file or import payload.
	summaryOnly map[string]bool

	initialized atomic.Bool
	indexing    atomic.Bool
	closed      atomic.Bool

	now func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithAnalytics makes the service report into a caller-owned analytics service.
func WithAnalytics(a *analytics.Service) Option {
	return func(s *Service) { s.analytics = a }
}

// WithClock overrides the clock used for registry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service from settings. Nothing is read from disk until Initialize.
func New(settings *config.Settings, opts ...Option) (*Service, error) {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid settings: %v", problems)
	}

	s := &Service{
		settings:        settings,
		indexPath:       filepath.Join(persistence.ResolveDataDir(settings.Index.DataDir), settings.Index.FileName),
		documentStore:   store.New(),
		indexedProjects: make(map[string]model.IndexedProject),
		summaryOnly:     make(map[string]bool),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analytics == nil {
		s.analytics = analytics.NewService()
	}

	indices, err := index.NewSet(settings.Index.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create indices: %w", err)
	}
	s.indices = indices

	s.indexer, err = indexing.NewService(s.documentStore, indices, settings, &s.contentMu)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer service: %w", err)
	}
	s.searcher, err = search.NewService(s.documentStore, indices, settings, &s.contentMu, s.analytics)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}

	retain := time.Duration(settings.Server.JobRetainHr) * time.Hour
	s.jobManager = jobs.NewManager(settings.Server.MaxJobs, retain, s.analytics)
	s.jobManager.Start()

	log.Info("service_created", "backend", indices.BackendName(), "index_path", s.indexPath)
	return s, nil
}

// Close stops background jobs, persists the current state when the service
// was initialized and releases the indices. Calling Close again is a no-op.
func (s *Service) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.jobManager.Stop()
	if s.initialized.Load() {
		s.persist()
	}
	if err := s.indices.Close(); err != nil {
		return fmt.Errorf("failed to close indices: %w", err)
	}
	log.Info("service_closed")
	return nil
}

// Settings returns the settings the service was built with.
func (s *Service) Settings() *config.Settings { return s.settings }

// Analytics returns the analytics service receiving this service's counters.
func (s *Service) Analytics() *analytics.Service { return s.analytics }

// MetricsHandler serves the Prometheus exposition of the service's collectors.
func (s *Service) MetricsHandler() http.Handler { return s.analytics.Handler() }

// IndexPath returns the location of the persisted index file.
func (s *Service) IndexPath() string { return s.indexPath }

// IsInitialized reports whether Initialize or ImportIndex has completed.
func (s *Service) IsInitialized() bool { return s.initialized.Load() }

// IndexingInProgress reports whether an Initialize, ReindexAll or ImportIndex is running.
func (s *Service) IndexingInProgress() bool { return s.indexing.Load() }

// contentChanged drops cached results and republishes document gauges.
func (s *Service) contentChanged() {
	s.searcher.InvalidateCache()
	s.analytics.SetDocumentCounts(s.documentStore.CountByType())
}

func (s *Service) registerProject(p model.Project) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.indexedProjects[p.ID] = model.IndexedProject{
		LastIndexed: s.now().UnixMilli(),
		Path:        p.Path,
		Name:        p.Name,
	}
}

func (s *Service) registry() map[string]model.IndexedProject {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	out := make(map[string]model.IndexedProject, len(s.indexedProjects))
	for id, entry := range s.indexedProjects {
		out[id] = entry
	}
	return out
}

func (s *Service) knownProjects() ([]model.Project, map[string]bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	summaryOnly := make(map[string]bool, len(s.summaryOnly))
	for id := range s.summaryOnly {
		summaryOnly[id] = true
	}
	return append([]model.Project(nil), s.projects...), summaryOnly
}
