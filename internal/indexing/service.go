package indexing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/StatTag/StatWrap-sub000/config"
	"github.com/StatTag/StatWrap-sub000/index"
	"github.com/StatTag/StatWrap-sub000/internal/logging"
	"github.com/StatTag/StatWrap-sub000/model"
	"github.com/StatTag/StatWrap-sub000/store"
)

var log = logging.ForComponent(logging.CompIndexing)

// microBatchSize is the number of documents written per lock acquisition.
const microBatchSize = 10

// Service turns project descriptors into documents and keeps the document
// store and the index set in step.
type Service struct {
	documentStore *store.DocumentStore
	indices       *index.Set
	settings      *config.Settings
	// contentMu guards the store and indices as one unit. Writers hold it per
	// micro-batch so searches interleave with long indexing runs.
	contentMu *sync.RWMutex
}

// NewService creates a new indexing Service.
func NewService(documentStore *store.DocumentStore, indices *index.Set, settings *config.Settings, contentMu *sync.RWMutex) (*Service, error) {
	if documentStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if indices == nil {
		return nil, fmt.Errorf("index set cannot be nil")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}
	if contentMu == nil {
		contentMu = &sync.RWMutex{}
	}
	return &Service{
		documentStore: documentStore,
		indices:       indices,
		settings:      settings,
		contentMu:     contentMu,
	}, nil
}

// ProjectResult summarizes one IndexProject call.
type ProjectResult struct {
	ProjectID string
	Documents int
	Removed   int
	Walk      WalkStats
	Duration  time.Duration
}

// IndexProject derives every document for p and writes them to the store and
// indices. Documents of p that are no longer derived are removed, so indexing
// an unchanged project twice leaves the store unchanged. File-level failures
// are logged and skipped; only cancellation of ctx aborts the call.
func (s *Service) IndexProject(ctx context.Context, p model.Project) (ProjectResult, error) {
	return s.indexProject(ctx, p, true)
}

// IndexProjectFiles re-walks the directory of p and replaces its file and
// folder documents only. Project, people, note and asset documents already in
// the store are left as they are, so p may be a bare id/name/path summary.
func (s *Service) IndexProjectFiles(ctx context.Context, p model.Project) (ProjectResult, error) {
	return s.indexProject(ctx, p, false)
}

// IsFileTreeType reports whether documents of type t come from the directory walk.
func IsFileTreeType(t model.DocumentType) bool {
	return t == model.TypeFile || t == model.TypeFolder
}

func (s *Service) indexProject(ctx context.Context, p model.Project, withMetadata bool) (ProjectResult, error) {
	start := time.Now()
	result := ProjectResult{ProjectID: p.ID}

	var docs []model.Document
	if withMetadata {
		docs = ProjectDocuments(p)
	}
	fileDocs, walk, err := s.walkProjectFiles(ctx, p)
	result.Walk = walk
	if err != nil {
		return result, fmt.Errorf("indexing project %s: %w", p.ID, err)
	}
	docs = append(docs, fileDocs...)

	keep := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		keep[doc.ID] = struct{}{}
	}
	stale := s.documentStore.Filter(func(d model.Document) bool {
		_, kept := keep[d.ID]
		return d.ProjectID == p.ID && !kept && (withMetadata || IsFileTreeType(d.Type))
	})
	s.RemoveDocuments(stale)
	result.Removed = len(stale)

	if err := s.AddDocuments(ctx, docs); err != nil {
		return result, fmt.Errorf("indexing project %s: %w", p.ID, err)
	}
	result.Documents = len(docs)
	result.Duration = time.Since(start)

	log.Info("project_indexed",
		"project_id", p.ID,
		"files_only", !withMetadata,
		"documents", result.Documents,
		"removed", result.Removed,
		"files", walk.Files,
		"content_indexed", walk.ContentIndexed,
		"skipped", walk.Skipped,
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// AddDocuments writes docs to the store and indices in micro-batches,
// pausing between batches.
func (s *Service) AddDocuments(ctx context.Context, docs []model.Document) error {
	for i := 0; i < len(docs); i += microBatchSize {
		end := min(i+microBatchSize, len(docs))
		s.addDocumentMicroBatch(docs[i:end])

		// Let pending readers acquire the lock between micro-batches.
		if end < len(docs) {
			if err := s.yield(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) addDocumentMicroBatch(docs []model.Document) {
	s.contentMu.Lock()
	defer s.contentMu.Unlock()

	for _, doc := range docs {
		if old, exists := s.documentStore.Get(doc.ID); exists && old.Type != doc.Type {
			s.removeFromIndices(old)
		}
		s.documentStore.Put(doc)
		if err := s.indices.Add(doc); err != nil {
			log.Warn("index_add_failed", "document_id", doc.ID, "error", err.Error())
		}
	}
}

// RemoveDocuments deletes docs from the store and from every index.
func (s *Service) RemoveDocuments(docs []model.Document) {
	if len(docs) == 0 {
		return
	}
	s.contentMu.Lock()
	defer s.contentMu.Unlock()
	for _, doc := range docs {
		s.documentStore.Delete(doc.ID)
		s.removeFromIndices(doc)
	}
}

// RemoveProject deletes every document belonging to projectID and returns how many were removed.
func (s *Service) RemoveProject(projectID string) int {
	s.contentMu.Lock()
	defer s.contentMu.Unlock()

	removed := s.documentStore.DeleteWhere(func(d model.Document) bool { return d.ProjectID == projectID })
	for _, doc := range removed {
		s.removeFromIndices(doc)
	}
	log.Info("project_removed", "project_id", projectID, "documents", len(removed))
	return len(removed)
}

func (s *Service) removeFromIndices(doc model.Document) {
	if err := s.indices.Remove(doc); err != nil {
		log.Warn("index_remove_failed", "document_id", doc.ID, "error", err.Error())
	}
}

// Clear empties the store and every index.
func (s *Service) Clear() {
	s.contentMu.Lock()
	defer s.contentMu.Unlock()
	s.documentStore.Clear()
	if err := s.indices.Clear(); err != nil {
		log.Warn("index_clear_failed", "error", err.Error())
	}
}

// RebuildFromStore clears the indices and re-adds every stored document in
// batches of RebuildBatchSize with a pause between batches. The file system
// is never touched.
func (s *Service) RebuildFromStore(ctx context.Context) (int, error) {
	s.contentMu.Lock()
	if err := s.indices.Clear(); err != nil {
		log.Warn("index_clear_failed", "error", err.Error())
	}
	s.contentMu.Unlock()

	docs := s.documentStore.Values()
	batch := max(1, s.settings.Performance.RebuildBatchSize)

	for i := 0; i < len(docs); i += batch {
		end := min(i+batch, len(docs))
		s.contentMu.Lock()
		for _, doc := range docs[i:end] {
			if err := s.indices.Add(doc); err != nil {
				log.Warn("index_add_failed", "document_id", doc.ID, "error", err.Error())
			}
		}
		s.contentMu.Unlock()

		if end < len(docs) {
			if err := s.yield(ctx); err != nil {
				return end, err
			}
		}
	}
	log.Info("indices_rebuilt", "documents", len(docs), "batch_size", batch)
	return len(docs), nil
}

// RefreshChangedFiles re-reads file documents of p whose modification time no
// longer matches the stored one, and drops file documents whose file is gone.
// It returns the number of documents updated or removed.
func (s *Service) RefreshChangedFiles(ctx context.Context, p model.Project) (int, error) {
	fileDocs := s.documentStore.Filter(func(d model.Document) bool {
		return d.ProjectID == p.ID && d.Type == model.TypeFile
	})

	var updated []model.Document
	var gone []model.Document
	for i, doc := range fileDocs {
		if i > 0 && i%s.yieldEvery() == 0 {
			if err := s.yield(ctx); err != nil {
				return 0, err
			}
		}
		absPath := doc.Item.Path
		if absPath == "" {
			absPath = filepath.Join(p.Path, filepath.FromSlash(doc.Item.RelativePath))
		}
		info, err := os.Stat(absPath)
		if err != nil {
			gone = append(gone, doc)
			continue
		}
		if info.ModTime().UnixMilli() == doc.Item.LastModified && info.Size() == doc.Item.Size {
			continue
		}
		updated = append(updated, s.buildFileDocument(p, absPath, doc.Item.RelativePath, info))
	}

	s.RemoveDocuments(gone)
	if err := s.AddDocuments(ctx, updated); err != nil {
		return 0, err
	}
	if n := len(updated) + len(gone); n > 0 {
		log.Info("changed_files_refreshed", "project_id", p.ID, "updated", len(updated), "removed", len(gone))
	}
	return len(updated) + len(gone), nil
}

func (s *Service) yieldEvery() int {
	return max(1, s.settings.Performance.YieldEvery)
}

// yield pauses briefly so other goroutines can take the content lock.
func (s *Service) yield(ctx context.Context) error {
	pause := s.settings.Performance.Pause()
	if pause <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
