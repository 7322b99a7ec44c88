package engine

import (
	"github.com/StatTag/StatWrap-sub000/internal/persistence"
	"github.com/StatTag/StatWrap-sub000/model"
)

// Search runs query against whatever is currently indexed. It never fails;
// before initialization every bucket is empty.
func (s *Service) Search(query string, opts model.SearchOptions) *model.GroupedResults {
	if !s.initialized.Load() {
		return model.EmptyGroupedResults()
	}
	return s.searcher.Search(query, opts)
}

// GetSuggestions returns autocomplete candidates for partial. It is empty
// before initialization.
func (s *Service) GetSuggestions(partial string) []string {
	if !s.initialized.Load() {
		return []string{}
	}
	return s.searcher.Suggestions(partial)
}

// GetSearchStats returns a diagnostics snapshot.
func (s *Service) GetSearchStats() model.SearchStats {
	s.contentMu.RLock()
	documentCount := s.documentStore.Size()
	byType := s.documentStore.CountByType()
	sizes := s.indices.Sizes()
	s.contentMu.RUnlock()

	s.stateMu.Lock()
	indexedProjects := len(s.indexedProjects)
	s.stateMu.Unlock()

	return model.SearchStats{
		Initialized:        s.initialized.Load(),
		IndexingInProgress: s.indexing.Load(),
		Backend:            s.indices.BackendName(),
		DocumentCount:      documentCount,
		DocumentsByType:    byType,
		IndexSizes:         sizes,
		IndexedProjects:    indexedProjects,
		IndexFile:          persistence.FileInfo(s.indexPath),
		Performance:        s.analytics.Performance(),
		Cache:              s.searcher.CacheStats(),
		IndexQueries:       s.searcher.IndexQueries(),
	}
}
