package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "github.com/StatTag/StatWrap-sub000/internal/errors"
	"github.com/StatTag/StatWrap-sub000/internal/persistence"
	"github.com/StatTag/StatWrap-sub000/model"
)

// snapshot captures the current state in the persisted shape.
func (s *Service) snapshot() *model.IndexSnapshot {
	snap := model.NewIndexSnapshot(s.settings.Search.MaxIndexableFileSize)
	s.contentMu.RLock()
	snap.DocumentStore = s.documentStore.Entries()
	s.contentMu.RUnlock()
	snap.IndexedProjects = s.registry()
	snap.PerformanceStats = s.analytics.Performance()
	return snap
}

// persist writes the index file. Failures are logged and reported as false.
func (s *Service) persist() bool {
	start := time.Now()
	snap := s.snapshot()
	if err := persistence.SaveIndex(s.indexPath, snap); err != nil {
		log.Error("index_save_failed", "path", s.indexPath, "error", err.Error())
		return false
	}
	info := persistence.FileInfo(s.indexPath)
	s.analytics.SetIndexFileSize(info.Size)
	log.Debug("index_saved", "path", s.indexPath, "documents", len(snap.DocumentStore),
		"bytes", info.Size, "duration_ms", time.Since(start).Milliseconds())
	return true
}

// ExportIndex returns the current state plus id/name/path summaries of the
// indexed projects.
func (s *Service) ExportIndex() *model.ExportPayload {
	snap := s.snapshot()
	snap.Timestamp = s.now().UTC().Format(time.RFC3339Nano)

	summaries := make([]model.ProjectSummary, 0, len(snap.IndexedProjects))
	for id, entry := range snap.IndexedProjects {
		summaries = append(summaries, model.ProjectSummary{ID: id, Name: entry.Name, Path: entry.Path})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	log.Info("index_exported", "documents", len(snap.DocumentStore), "projects", len(summaries))
	return &model.ExportPayload{IndexSnapshot: *snap, ProjectsData: summaries}
}

// ImportIndex replaces the current state with payload and persists it. It is
// the one operation that reports bad input: a payload with the wrong version
// or a malformed document store is rejected before anything changes.
func (s *Service) ImportIndex(ctx context.Context, payload *model.ExportPayload) error {
	if payload == nil {
		return apperrors.NewValidationError("", "index payload is empty")
	}
	if err := persistence.ValidateSnapshot(&payload.IndexSnapshot); err != nil {
		return err
	}
	if s.closed.Load() {
		return apperrors.ErrClosed
	}
	if !s.indexing.CompareAndSwap(false, true) {
		return apperrors.ErrIndexingInProgress
	}
	defer s.indexing.Store(false)

	start := time.Now()
	err := s.restore(ctx, &payload.IndexSnapshot)
	s.contentChanged()
	if err != nil {
		return fmt.Errorf("importing index: %w", err)
	}
	s.adoptProjectSummaries(payload.ProjectsData)
	s.initialized.Store(true)

	documents := s.documentStore.Size()
	s.analytics.RecordIndexing("import", time.Since(start), documents)
	s.persist()
	log.Info("index_imported", "documents", documents, "projects", len(payload.IndexedProjects))
	return nil
}

// adoptProjectSummaries adds imported projects that are not already known so
// a later ReindexAll can walk them. Their file trees are re-walked; their
// other documents can only be carried over from the store.
func (s *Service) adoptProjectSummaries(summaries []model.ProjectSummary) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	known := make(map[string]bool, len(s.projects))
	for _, p := range s.projects {
		known[p.ID] = true
	}
	for _, summary := range summaries {
		if summary.ID == "" || known[summary.ID] {
			continue
		}
		known[summary.ID] = true
		s.projects = append(s.projects, model.Project{ID: summary.ID, Name: summary.Name, Path: summary.Path})
		s.summaryOnly[summary.ID] = true
	}
}

// DeleteIndexFile removes the index file and resets the in-memory state so
// the next Initialize performs a full index. It reports false, without
// resetting anything, when the file cannot be removed or indexing is running.
func (s *Service) DeleteIndexFile() bool {
	if !s.indexing.CompareAndSwap(false, true) {
		log.Warn("index_delete_refused", "reason", "indexing_in_progress")
		return false
	}
	defer s.indexing.Store(false)

	if err := persistence.DeleteFile(s.indexPath); err != nil {
		log.Error("index_delete_failed", "path", s.indexPath, "error", err.Error())
		return false
	}

	s.initialized.Store(false)
	s.indexer.Clear()
	s.stateMu.Lock()
	s.indexedProjects = make(map[string]model.IndexedProject)
	s.stateMu.Unlock()
	s.analytics.Reset()
	s.analytics.SetIndexFileSize(0)
	s.contentChanged()

	log.Info("index_deleted", "path", s.indexPath)
	return true
}
