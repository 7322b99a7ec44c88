package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "github.com/StatTag/StatWrap-sub000/internal/errors"
	"github.com/StatTag/StatWrap-sub000/internal/indexing"
	"github.com/StatTag/StatWrap-sub000/internal/persistence"
	"github.com/StatTag/StatWrap-sub000/model"
)

// ProgressFunc receives the number of projects handled so far.
type ProgressFunc func(done, total int, message string)

// ReconcileResult summarizes what Initialize did with the incoming project list.
type ReconcileResult struct {
	FullIndex bool     `json:"fullIndex"`
	Added     []string `json:"added,omitempty"`
	Removed   []string `json:"removed,omitempty"`
	Reindexed []string `json:"reindexed,omitempty"` // known projects whose path changed
	Refreshed int      `json:"refreshed,omitempty"` // changed file documents re-read
	Documents int      `json:"documents"`
}

// Initialize brings the index in line with projects. On first use it loads
// the persisted index and rebuilds the in-memory indices from it, then
// reconciles: new projects are indexed, projects no longer listed are
// removed, and known projects are left alone unless their path changed. With
// no usable persisted index every project is indexed from scratch. The
// result is persisted; save failures are logged only.
func (s *Service) Initialize(ctx context.Context, projects []model.Project) (ReconcileResult, error) {
	return s.initialize(ctx, projects, nil)
}

func (s *Service) initialize(ctx context.Context, projects []model.Project, progress ProgressFunc) (ReconcileResult, error) {
	if s.closed.Load() {
		return ReconcileResult{}, apperrors.ErrClosed
	}
	if !s.indexing.CompareAndSwap(false, true) {
		return ReconcileResult{}, apperrors.ErrIndexingInProgress
	}
	defer s.indexing.Store(false)

	start := time.Now()
	projects = validProjects(projects)
	s.stateMu.Lock()
	s.projects = projects
	s.summaryOnly = make(map[string]bool)
	s.stateMu.Unlock()

	var (
		result ReconcileResult
		err    error
	)
	if s.initialized.Load() {
		result, err = s.reconcile(ctx, projects, progress)
	} else {
		result, err = s.loadAndReconcile(ctx, projects, progress)
	}
	s.contentChanged()
	if err != nil {
		return result, err
	}

	s.initialized.Store(true)
	result.Documents = s.documentStore.Size()
	took := time.Since(start)
	s.analytics.RecordIndexing("initialize", took, result.Documents)
	s.persist()

	log.Info("service_initialized",
		"full_index", result.FullIndex,
		"added", len(result.Added),
		"removed", len(result.Removed),
		"reindexed", len(result.Reindexed),
		"refreshed", result.Refreshed,
		"documents", result.Documents,
		"duration_ms", took.Milliseconds())
	return result, nil
}

func (s *Service) loadAndReconcile(ctx context.Context, projects []model.Project, progress ProgressFunc) (ReconcileResult, error) {
	snapshot, err := persistence.LoadIndex(s.indexPath, s.settings.Search.MaxIndexableFileSize)
	if err != nil {
		log.Warn("index_load_fallback", "path", s.indexPath, "error", err.Error())
	}

	if snapshot.IsEmpty() {
		s.indexer.Clear()
		s.stateMu.Lock()
		s.indexedProjects = make(map[string]model.IndexedProject)
		s.stateMu.Unlock()
		s.analytics.Restore(snapshot.PerformanceStats)

		result := ReconcileResult{FullIndex: true}
		for i, p := range projects {
			if err := s.indexProject(ctx, p); err != nil {
				return result, err
			}
			result.Added = append(result.Added, p.ID)
			reportProgress(progress, i+1, len(projects), p.Name)
		}
		return result, nil
	}

	if err := s.restore(ctx, snapshot); err != nil {
		return ReconcileResult{}, err
	}
	return s.reconcile(ctx, projects, progress)
}

// restore replaces the in-memory state with snapshot and rebuilds the indices
// from the store. The file system is not touched.
func (s *Service) restore(ctx context.Context, snapshot *model.IndexSnapshot) error {
	s.indexer.Clear()
	s.contentMu.Lock()
	loaded := s.documentStore.Load(snapshot.DocumentStore)
	s.contentMu.Unlock()

	s.stateMu.Lock()
	s.indexedProjects = make(map[string]model.IndexedProject, len(snapshot.IndexedProjects))
	for id, entry := range snapshot.IndexedProjects {
		s.indexedProjects[id] = entry
	}
	s.stateMu.Unlock()
	s.analytics.Restore(snapshot.PerformanceStats)

	start := time.Now()
	if _, err := s.indexer.RebuildFromStore(ctx); err != nil {
		return fmt.Errorf("rebuilding indices: %w", err)
	}
	log.Info("index_restored", "documents", loaded, "projects", len(snapshot.IndexedProjects),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// reconcile diffs projects against the registry.
func (s *Service) reconcile(ctx context.Context, projects []model.Project, progress ProgressFunc) (ReconcileResult, error) {
	var result ReconcileResult
	registry := s.registry()

	incoming := make(map[string]bool, len(projects))
	for _, p := range projects {
		incoming[p.ID] = true
	}
	for id := range registry {
		if incoming[id] {
			continue
		}
		s.indexer.RemoveProject(id)
		s.stateMu.Lock()
		delete(s.indexedProjects, id)
		s.stateMu.Unlock()
		result.Removed = append(result.Removed, id)
	}

	for i, p := range projects {
		entry, known := registry[p.ID]
		switch {
		case !known:
			if err := s.indexProject(ctx, p); err != nil {
				return result, err
			}
			result.Added = append(result.Added, p.ID)
		case entry.Path != p.Path:
			s.indexer.RemoveProject(p.ID)
			if err := s.indexProject(ctx, p); err != nil {
				return result, err
			}
			result.Reindexed = append(result.Reindexed, p.ID)
		case s.settings.Index.RefreshChangedFiles:
			n, err := s.indexer.RefreshChangedFiles(ctx, p)
			if err != nil {
				return result, err
			}
			if n > 0 {
				s.registerProject(p)
			}
			result.Refreshed += n
		}
		reportProgress(progress, i+1, len(projects), p.Name)
	}
	return result, nil
}

func (s *Service) indexProject(ctx context.Context, p model.Project) error {
	if _, err := s.indexer.IndexProject(ctx, p); err != nil {
		return err
	}
	s.registerProject(p)
	return nil
}

// ReindexAll clears the store and indices and re-indexes every project passed
// to the last Initialize. Projects adopted from an index file or import keep
// their stored non-file documents and have their directories re-walked. The indexing flag is always cleared before
// returning, so a failed reindex leaves the service usable.
func (s *Service) ReindexAll(ctx context.Context) error {
	return s.reindexAll(ctx, nil)
}

func (s *Service) reindexAll(ctx context.Context, progress ProgressFunc) error {
	if s.closed.Load() {
		return apperrors.ErrClosed
	}
	if !s.indexing.CompareAndSwap(false, true) {
		return apperrors.ErrIndexingInProgress
	}
	defer s.indexing.Store(false)

	start := time.Now()
	projects, summaryOnly := s.knownProjects()
	carried := s.carriedDocuments(summaryOnly)

	s.indexer.Clear()
	s.stateMu.Lock()
	s.indexedProjects = make(map[string]model.IndexedProject)
	s.stateMu.Unlock()
	s.contentChanged()

	for i, p := range projects {
		var err error
		if summaryOnly[p.ID] {
			err = s.indexProjectFiles(ctx, p, carried[p.ID])
		} else {
			err = s.indexProject(ctx, p)
		}
		if err != nil {
			s.contentChanged()
			log.Error("reindex_failed", "project_id", p.ID, "error", err.Error())
			return fmt.Errorf("reindexing project %s: %w", p.ID, err)
		}
		reportProgress(progress, i+1, len(projects), p.Name)
	}
	s.contentChanged()
	s.initialized.Store(true)

	documents := s.documentStore.Size()
	took := time.Since(start)
	s.analytics.RecordIndexing("reindex", took, documents)
	s.persist()
	log.Info("reindex_completed", "projects", len(projects), "documents", documents,
		"duration_ms", took.Milliseconds())
	return nil
}

// carriedDocuments collects the stored non-file documents of projects known
// only by summary. A reindex cannot derive them again, so it re-adds them.
func (s *Service) carriedDocuments(summaryOnly map[string]bool) map[string][]model.Document {
	if len(summaryOnly) == 0 {
		return nil
	}
	docs := s.documentStore.Filter(func(d model.Document) bool {
		return summaryOnly[d.ProjectID] && !indexing.IsFileTreeType(d.Type)
	})
	byProject := make(map[string][]model.Document, len(summaryOnly))
	for _, doc := range docs {
		byProject[doc.ProjectID] = append(byProject[doc.ProjectID], doc)
	}
	return byProject
}

func (s *Service) indexProjectFiles(ctx context.Context, p model.Project, carried []model.Document) error {
	if err := s.indexer.AddDocuments(ctx, carried); err != nil {
		return err
	}
	if _, err := s.indexer.IndexProjectFiles(ctx, p); err != nil {
		return err
	}
	s.registerProject(p)
	return nil
}

// validProjects drops descriptors without an id and keeps the first of any
// duplicated id.
func validProjects(projects []model.Project) []model.Project {
	out := make([]model.Project, 0, len(projects))
	seen := make(map[string]bool, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			log.Warn("project_skipped", "reason", "empty_id", "name", p.Name)
			continue
		}
		if seen[p.ID] {
			log.Warn("project_skipped", "reason", "duplicate_id", "project_id", p.ID)
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func reportProgress(progress ProgressFunc, done, total int, name string) {
	if progress != nil {
		progress(done, total, "indexed "+name)
	}
}

// Open loads the persisted index without reconciling it against a project
// list. Projects recorded in the index become the ones ReindexAll walks. It
// reports false, leaving the service uninitialized, when there is no usable
// index file.
func (s *Service) Open(ctx context.Context) (bool, error) {
	if s.closed.Load() {
		return false, apperrors.ErrClosed
	}
	if !s.indexing.CompareAndSwap(false, true) {
		return false, apperrors.ErrIndexingInProgress
	}
	defer s.indexing.Store(false)

	snapshot, err := persistence.LoadIndex(s.indexPath, s.settings.Search.MaxIndexableFileSize)
	if err != nil {
		log.Warn("index_load_fallback", "path", s.indexPath, "error", err.Error())
	}
	if snapshot.IsEmpty() {
		return false, nil
	}

	err = s.restore(ctx, snapshot)
	s.contentChanged()
	if err != nil {
		return false, err
	}

	summaries := make([]model.ProjectSummary, 0, len(snapshot.IndexedProjects))
	for id, entry := range snapshot.IndexedProjects {
		summaries = append(summaries, model.ProjectSummary{ID: id, Name: entry.Name, Path: entry.Path})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	s.adoptProjectSummaries(summaries)
	s.initialized.Store(true)
	return true, nil
}
