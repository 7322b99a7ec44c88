// Package config provides configuration structures for the search service.
// It defines search, indexing, scoring, cache, and outer-surface settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend names accepted by IndexSettings.Backend.
const (
	BackendNative = "native"
	BackendBleve  = "bleve"
)

// Settings is the complete configuration surface of the search service.
type Settings struct {
	Search      SearchSettings      `toml:"search" json:"search"`
	Index       IndexSettings       `toml:"index" json:"index"`
	Performance PerformanceSettings `toml:"performance" json:"performance"`
	Scoring     ScoringSettings     `toml:"scoring" json:"scoring"`
	UI          UISettings          `toml:"ui" json:"ui"`
	Logging     LoggingSettings     `toml:"logging" json:"logging"`
	Server      ServerSettings      `toml:"server" json:"server"`
}

// SearchSettings controls query execution.
type SearchSettings struct {
	MaxResults           int                   `toml:"maxResults" json:"maxResults"`                     // Cap on ranked hits before grouping
	EnableFuzzySearch    bool                  `toml:"enableFuzzySearch" json:"enableFuzzySearch"`       // Supplementary wildcard/typo pass merged with exact matches
	FuzzyWeight          float64               `toml:"fuzzyWeight" json:"fuzzyWeight"`                   // Multiplier applied to fuzzy-only raw scores
	MinFuzzyTermLength   int                   `toml:"minFuzzyTermLength" json:"minFuzzyTermLength"`     // Terms shorter than this never get typo matches
	MaxIndexableFileSize int64                 `toml:"maxIndexableFileSize" json:"maxIndexableFileSize"` // Bytes; larger files are indexed by name only
	FieldWeights         FieldWeights          `toml:"fieldWeights" json:"fieldWeights"`
	Preprocessing        PreprocessingSettings `toml:"preprocessing" json:"preprocessing"`
}

// FieldWeights multiplies per-field raw scores.
type FieldWeights struct {
	Title   float64 `toml:"title" json:"title"`
	Tags    float64 `toml:"tags" json:"tags"`
	Content float64 `toml:"content" json:"content"`
}

// AsMap returns the weights keyed by field name.
func (w FieldWeights) AsMap() map[string]float64 {
	return map[string]float64{"title": w.Title, "tags": w.Tags, "content": w.Content}
}

// PreprocessingSettings controls stop-word removal on queries.
type PreprocessingSettings struct {
	EnableStopWords bool     `toml:"enableStopWords" json:"enableStopWords"`
	StopWords       []string `toml:"stopWords" json:"stopWords"`
	MinWordLength   int      `toml:"minWordLength" json:"minWordLength"`
}

// IndexSettings controls where and how the index lives.
type IndexSettings struct {
	DataDir             string   `toml:"dataDir" json:"dataDir"`                         // Directory holding the index file; empty resolves the user config dir
	FileName            string   `toml:"fileName" json:"fileName"`                       // Index file name inside DataDir
	Backend             string   `toml:"backend" json:"backend"`                         // "native" or "bleve"
	SkipDirectories     []string `toml:"skipDirectories" json:"skipDirectories"`         // Directory names never descended into
	RefreshChangedFiles bool     `toml:"refreshChangedFiles" json:"refreshChangedFiles"` // Re-read files whose mtime changed since the last index
}

// PerformanceSettings bounds caches and yielding.
type PerformanceSettings struct {
	ResultCacheSize  int   `toml:"resultCacheSize" json:"resultCacheSize"`
	ResultCacheTTL   int64 `toml:"resultCacheTTL" json:"resultCacheTTL"` // milliseconds
	YieldEvery       int   `toml:"yieldEvery" json:"yieldEvery"`         // files or documents processed between pauses
	YieldPause       int64 `toml:"yieldPause" json:"yieldPause"`         // milliseconds
	RebuildBatchSize int   `toml:"rebuildBatchSize" json:"rebuildBatchSize"`
}

// CacheTTL returns ResultCacheTTL as a duration.
func (p PerformanceSettings) CacheTTL() time.Duration {
	return time.Duration(p.ResultCacheTTL) * time.Millisecond
}

// Pause returns YieldPause as a duration.
func (p PerformanceSettings) Pause() time.Duration {
	return time.Duration(p.YieldPause) * time.Millisecond
}

// ScoringSettings are the tunable coefficients of the relevance formula.
type ScoringSettings struct {
	RawScoreWeight      float64            `toml:"rawScoreWeight" json:"rawScoreWeight"`
	TitlePhraseBonus    float64            `toml:"titlePhraseBonus" json:"titlePhraseBonus"`
	ContentPhraseBonus  float64            `toml:"contentPhraseBonus" json:"contentPhraseBonus"`
	TermMatchWeight     float64            `toml:"termMatchWeight" json:"termMatchWeight"`
	AllTermsBonus       float64            `toml:"allTermsBonus" json:"allTermsBonus"`
	ContentIndexedBonus float64            `toml:"contentIndexedBonus" json:"contentIndexedBonus"`
	RecencyBonus        float64            `toml:"recencyBonus" json:"recencyBonus"`
	RecencyWindowDays   int                `toml:"recencyWindowDays" json:"recencyWindowDays"`
	Compression         float64            `toml:"compression" json:"compression"` // x in 1 - exp(-x*score)
	TypeWeights         map[string]float64 `toml:"typeWeights" json:"typeWeights"`
}

// UISettings controls autocomplete.
type UISettings struct {
	MaxSuggestions      int `toml:"maxSuggestions" json:"maxSuggestions"`
	MinSuggestionLength int `toml:"minSuggestionLength" json:"minSuggestionLength"`
}

// LoggingSettings mirrors logging.Config.
type LoggingSettings struct {
	Dir        string `toml:"dir" json:"dir"`
	Level      string `toml:"level" json:"level"`
	Format     string `toml:"format" json:"format"`
	MaxSizeMB  int    `toml:"maxSizeMB" json:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups" json:"maxBackups"`
	MaxAgeDays int    `toml:"maxAgeDays" json:"maxAgeDays"`
	Compress   bool   `toml:"compress" json:"compress"`
	Stderr     bool   `toml:"stderr" json:"stderr"`
}

// ServerSettings controls the HTTP surface.
type ServerSettings struct {
	Addr        string `toml:"addr" json:"addr"`
	MaxJobs     int    `toml:"maxJobs" json:"maxJobs"`
	JobRetainHr int    `toml:"jobRetainHours" json:"jobRetainHours"`
}

// DefaultStopWords is the stop-word list used when none is configured.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "he", "in", "is", "it",
	"its", "of", "on", "or", "that", "the", "to", "was", "were", "will", "with",
}

// DefaultSkipDirectories is the directory deny-list used when none is configured.
var DefaultSkipDirectories = []string{"node_modules", ".git", ".statwrap", "__pycache__", ".venv", "venv"}

// DefaultTypeWeights ranks projects highest and folders lowest.
var DefaultTypeWeights = map[string]float64{
	"project":        1.2,
	"person":         1.1,
	"note":           1.0,
	"file":           1.0,
	"asset-group":    0.9,
	"asset":          0.9,
	"external-asset": 0.85,
	"folder":         0.7,
}

// DefaultSettings returns a Settings value with every default applied.
func DefaultSettings() *Settings {
	s := &Settings{
		Search: SearchSettings{
			EnableFuzzySearch: true,
			Preprocessing:     PreprocessingSettings{EnableStopWords: true},
		},
	}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills zero values with defaults. Booleans are left as set.
func (s *Settings) ApplyDefaults() {
	if s.Search.MaxResults == 0 {
		s.Search.MaxResults = 100
	}
	if s.Search.FuzzyWeight == 0 {
		s.Search.FuzzyWeight = 0.5
	}
	if s.Search.MinFuzzyTermLength == 0 {
		s.Search.MinFuzzyTermLength = 4
	}
	if s.Search.MaxIndexableFileSize == 0 {
		s.Search.MaxIndexableFileSize = 1024 * 1024
	}
	if s.Search.FieldWeights == (FieldWeights{}) {
		s.Search.FieldWeights = FieldWeights{Title: 3, Tags: 2, Content: 1}
	}
	if s.Search.Preprocessing.StopWords == nil {
		s.Search.Preprocessing.StopWords = append([]string{}, DefaultStopWords...)
	}
	if s.Search.Preprocessing.MinWordLength == 0 {
		s.Search.Preprocessing.MinWordLength = 2
	}

	if s.Index.FileName == "" {
		s.Index.FileName = "search-index.json"
	}
	if s.Index.Backend == "" {
		s.Index.Backend = BackendNative
	}
	if s.Index.SkipDirectories == nil {
		s.Index.SkipDirectories = append([]string{}, DefaultSkipDirectories...)
	}

	if s.Performance.ResultCacheSize == 0 {
		s.Performance.ResultCacheSize = 100
	}
	if s.Performance.ResultCacheTTL == 0 {
		s.Performance.ResultCacheTTL = 5 * 60 * 1000
	}
	if s.Performance.YieldEvery == 0 {
		s.Performance.YieldEvery = 50
	}
	if s.Performance.YieldPause == 0 {
		s.Performance.YieldPause = 1
	}
	if s.Performance.RebuildBatchSize == 0 {
		s.Performance.RebuildBatchSize = 100
	}

	sc := &s.Scoring
	if sc.RawScoreWeight == 0 {
		sc.RawScoreWeight = 0.4
	}
	if sc.TitlePhraseBonus == 0 {
		sc.TitlePhraseBonus = 0.3
	}
	if sc.ContentPhraseBonus == 0 {
		sc.ContentPhraseBonus = 0.2
	}
	if sc.TermMatchWeight == 0 {
		sc.TermMatchWeight = 0.2
	}
	if sc.AllTermsBonus == 0 {
		sc.AllTermsBonus = 0.1
	}
	if sc.ContentIndexedBonus == 0 {
		sc.ContentIndexedBonus = 0.05
	}
	if sc.RecencyBonus == 0 {
		sc.RecencyBonus = 0.05
	}
	if sc.RecencyWindowDays == 0 {
		sc.RecencyWindowDays = 30
	}
	if sc.Compression == 0 {
		sc.Compression = 3
	}
	if sc.TypeWeights == nil {
		sc.TypeWeights = make(map[string]float64, len(DefaultTypeWeights))
	}
	for k, v := range DefaultTypeWeights {
		if _, ok := sc.TypeWeights[k]; !ok {
			sc.TypeWeights[k] = v
		}
	}

	if s.UI.MaxSuggestions == 0 {
		s.UI.MaxSuggestions = 10
	}
	if s.UI.MinSuggestionLength == 0 {
		s.UI.MinSuggestionLength = 2
	}

	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Logging.Format == "" {
		s.Logging.Format = "json"
	}
	if s.Logging.MaxSizeMB == 0 {
		s.Logging.MaxSizeMB = 10
	}
	if s.Logging.MaxBackups == 0 {
		s.Logging.MaxBackups = 5
	}
	if s.Logging.MaxAgeDays == 0 {
		s.Logging.MaxAgeDays = 10
	}

	if s.Server.Addr == "" {
		s.Server.Addr = ":8080"
	}
	if s.Server.MaxJobs == 0 {
		s.Server.MaxJobs = 2
	}
	if s.Server.JobRetainHr == 0 {
		s.Server.JobRetainHr = 24
	}
}

// Validate returns a list of problems; an empty list means the settings are usable.
func (s *Settings) Validate() []string {
	var problems []string

	if s.Search.MaxResults < 0 {
		problems = append(problems, "search.maxResults must not be negative")
	}
	if s.Search.MaxIndexableFileSize < 0 {
		problems = append(problems, "search.maxIndexableFileSize must not be negative")
	}
	if s.Search.FuzzyWeight < 0 || s.Search.FuzzyWeight > 1 {
		problems = append(problems, fmt.Sprintf("search.fuzzyWeight must be within [0,1], got %v", s.Search.FuzzyWeight))
	}
	if s.Index.Backend != BackendNative && s.Index.Backend != BackendBleve {
		problems = append(problems, "index.backend must be '"+BackendNative+"' or '"+BackendBleve+"', got '"+s.Index.Backend+"'")
	}
	if strings.ContainsAny(s.Index.FileName, `/\`) {
		problems = append(problems, "index.fileName must be a bare file name")
	}
	if s.Performance.ResultCacheSize < 0 {
		problems = append(problems, "performance.resultCacheSize must not be negative")
	}
	if s.Performance.ResultCacheTTL < 0 {
		problems = append(problems, "performance.resultCacheTTL must not be negative")
	}
	for name, w := range s.Scoring.TypeWeights {
		if w < 0 {
			problems = append(problems, "scoring.typeWeights."+name+" must not be negative")
		}
	}
	if s.UI.MaxSuggestions < 0 {
		problems = append(problems, "ui.maxSuggestions must not be negative")
	}

	seen := make(map[string]bool)
	for _, dir := range s.Index.SkipDirectories {
		if strings.TrimSpace(dir) == "" {
			problems = append(problems, "index.skipDirectories entries cannot be empty")
		}
		if seen[dir] {
			problems = append(problems, "Duplicate directory '"+dir+"' found in index.skipDirectories")
		}
		seen[dir] = true
	}

	return problems
}

// LoadFile reads a TOML settings file and applies defaults. A missing file
// yields DefaultSettings.
func LoadFile(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}

	s := &Settings{
		Search: SearchSettings{
			EnableFuzzySearch: true,
			Preprocessing:     PreprocessingSettings{EnableStopWords: true},
		},
	}
	if _, err := toml.DecodeFile(path, s); err != nil {
		return DefaultSettings(), fmt.Errorf("settings parse error: %w", err)
	}
	s.ApplyDefaults()

	if problems := s.Validate(); len(problems) > 0 {
		return s, fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}
	return s, nil
}
