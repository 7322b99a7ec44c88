package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/StatTag/StatWrap-sub000/config"
	"github.com/StatTag/StatWrap-sub000/index"
	"github.com/StatTag/StatWrap-sub000/internal/logging"
	"github.com/StatTag/StatWrap-sub000/internal/tokenizer"
	"github.com/StatTag/StatWrap-sub000/model"
	"github.com/StatTag/StatWrap-sub000/store"
)

var log = logging.ForComponent(logging.CompSearch)

// Recorder observes completed searches.
type Recorder interface {
	RecordSearch(took time.Duration, cached bool)
}

// Service answers queries against the index set, materializing hits from the
// document store.
type Service struct {
	documentStore *store.DocumentStore
	indices       *index.Set
	settings      *config.Settings
	contentMu     *sync.RWMutex
	cache         *ResultCache
	recorder      Recorder

	// indexQueries counts calls into a Backend; cache hits never increment it.
	indexQueries atomic.Int64
	now          func() time.Time
}

// NewService creates a new search Service. recorder may be nil.
func NewService(documentStore *store.DocumentStore, indices *index.Set, settings *config.Settings, contentMu *sync.RWMutex, recorder Recorder) (*Service, error) {
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
		cache:         NewResultCache(settings.Performance.ResultCacheSize, settings.Performance.CacheTTL()),
		recorder:      recorder,
		now:           time.Now,
	}, nil
}

// Search runs query and returns grouped results. It never fails: empty or
// unsearchable queries, backend errors and panics all yield empty buckets.
func (s *Service) Search(query string, opts model.SearchOptions) (result *model.GroupedResults) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("search_panic", "query", query, "panic", fmt.Sprint(r))
			result = model.EmptyGroupedResults()
		}
	}()

	if strings.TrimSpace(query) == "" {
		return model.EmptyGroupedResults()
	}

	processed := tokenizer.ProcessQuery(query, s.settings.Search.Preprocessing)
	if processed.Empty() {
		empty := model.EmptyGroupedResults()
		empty.ProcessedQuery = processed.Processed
		empty.RemovedWords = processed.Removed
		return empty
	}

	key := cacheKey(processed.Processed, opts)
	if cached, ok := s.cache.Get(key); ok {
		s.record(time.Since(start), true)
		log.Debug("search_cache_hit", "query", processed.Processed)
		return cached
	}

	results, err := s.execute(processed, opts)
	if err != nil {
		log.Error("search_failed", "query", query, "error", err.Error())
		return model.EmptyGroupedResults()
	}

	results.QueryID = uuid.New().String()
	results.ProcessedQuery = processed.Processed
	results.RemovedWords = processed.Removed
	took := time.Since(start)
	results.Took = took.Milliseconds()

	s.cache.Put(key, results)
	s.record(took, false)
	log.Debug("search_executed",
		"query", processed.Processed,
		"results", results.Total(),
		"took_ms", results.Took)
	return results
}

func (s *Service) execute(processed tokenizer.ProcessedQuery, opts model.SearchOptions) (*model.GroupedResults, error) {
	s.contentMu.RLock()
	defer s.contentMu.RUnlock()

	indexName := targetIndex(opts)
	backend, ok := s.indices.Get(indexName)
	if !ok {
		return nil, fmt.Errorf("index %q not found", indexName)
	}

	q := index.Query{
		Terms:        processed.Terms,
		FieldWeights: s.settings.Search.FieldWeights.AsMap(),
		MinFuzzyLen:  s.settings.Search.MinFuzzyTermLength,
	}
	hits, err := s.query(backend, q)
	if err != nil {
		return nil, err
	}
	if s.settings.Search.EnableFuzzySearch {
		q.Fuzzy = true
		fuzzyHits, err := s.query(backend, q)
		if err != nil {
			log.Warn("fuzzy_pass_failed", "index", indexName, "error", err.Error())
		} else {
			hits = mergeHits(hits, fuzzyHits, s.settings.Search.FuzzyWeight)
		}
	}

	now := s.now()
	ranked := make([]model.Result, 0, len(hits))
	for _, hit := range hits {
		doc, found := s.documentStore.Get(hit.ID)
		if !found {
			log.Warn("hit_document_missing", "document_id", hit.ID, "index", indexName)
			continue
		}
		if !docMatchesOptions(doc, opts) {
			continue
		}
		ranked = append(ranked, model.Result{
			DocumentID: doc.ID,
			Score:      Relevance(doc, hit, processed.Terms, processed.Processed, s.settings.Scoring, now),
			Type:       doc.Type,
			Item:       doc.Item,
			Highlights: highlights(doc.Title, doc.Content, processed.Terms),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].DocumentID < ranked[j].DocumentID
	})

	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.settings.Search.MaxResults
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	grouped := model.EmptyGroupedResults()
	for _, r := range ranked {
		grouped.Add(r)
	}
	return grouped, nil
}

func (s *Service) query(backend index.Backend, q index.Query) ([]index.RawHit, error) {
	s.indexQueries.Add(1)
	return backend.Query(q)
}

func (s *Service) record(took time.Duration, cached bool) {
	if s.recorder != nil {
		s.recorder.RecordSearch(took, cached)
	}
}

func cacheKey(processed string, opts model.SearchOptions) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%d", processed, opts.Type, opts.ProjectID, opts.FileType, opts.MaxResults)
}

// InvalidateCache drops every cached result. Call it whenever index content changes.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
}

// CacheStats reports the result cache counters.
func (s *Service) CacheStats() model.CacheStats {
	return s.cache.Stats()
}

// IndexQueries returns how many backend queries have been issued.
func (s *Service) IndexQueries() int64 {
	return s.indexQueries.Load()
}
