package model

// MaxSearchTimes bounds the rolling window of recorded search timings.
const MaxSearchTimes = 100

// PerformanceStats are the counters persisted alongside the index.
type PerformanceStats struct {
	TotalSearches     int64     `json:"totalSearches"`
	TotalIndexingTime int64     `json:"totalIndexingTime"` // milliseconds
	AverageSearchTime float64   `json:"averageSearchTime"` // milliseconds
	DocumentsIndexed  int64     `json:"documentsIndexed"`
	SearchTimes       []float64 `json:"searchTimes"`
}

// RecordSearch appends a timing to the rolling window and recomputes the average.
func (p *PerformanceStats) RecordSearch(ms float64) {
	p.TotalSearches++
	p.SearchTimes = append(p.SearchTimes, ms)
	if len(p.SearchTimes) > MaxSearchTimes {
		p.SearchTimes = append([]float64(nil), p.SearchTimes[len(p.SearchTimes)-MaxSearchTimes:]...)
	}
	var sum float64
	for _, v := range p.SearchTimes {
		sum += v
	}
	p.AverageSearchTime = sum / float64(len(p.SearchTimes))
}

// Clone returns a deep copy.
func (p PerformanceStats) Clone() PerformanceStats {
	p.SearchTimes = append([]float64{}, p.SearchTimes...)
	return p
}

// CacheStats describes the result cache.
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hitRate"`
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
}

// IndexFileInfo describes the persisted index file.
type IndexFileInfo struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Size   int64  `json:"size"`
}

// SearchStats is the operator-facing diagnostics snapshot.
type SearchStats struct {
	Initialized        bool             `json:"initialized"`
	IndexingInProgress bool             `json:"indexingInProgress"`
	Backend            string           `json:"backend"`
	DocumentCount      int              `json:"documentCount"`
	DocumentsByType    map[string]int   `json:"documentsByType"`
	IndexSizes         map[string]int   `json:"indexSizes"`
	IndexedProjects    int              `json:"indexedProjects"`
	IndexFile          IndexFileInfo    `json:"indexFile"`
	Performance        PerformanceStats `json:"performance"`
	Cache              CacheStats       `json:"cache"`
	IndexQueries       int64            `json:"indexQueries"`
}
