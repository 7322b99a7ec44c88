package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 100, s.Search.MaxResults)
	assert.True(t, s.Search.EnableFuzzySearch)
	assert.True(t, s.Search.Preprocessing.EnableStopWords)
	assert.Contains(t, s.Search.Preprocessing.StopWords, "the")
	assert.Equal(t, FieldWeights{Title: 3, Tags: 2, Content: 1}, s.Search.FieldWeights)
	assert.Equal(t, BackendNative, s.Index.Backend)
	assert.ElementsMatch(t, DefaultSkipDirectories, s.Index.SkipDirectories)
	assert.Equal(t, 100, s.Performance.RebuildBatchSize)
	assert.Equal(t, 10, s.UI.MaxSuggestions)
	assert.Empty(t, s.Validate())
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	s := &Settings{
		Search:      SearchSettings{MaxResults: 7},
		Performance: PerformanceSettings{ResultCacheSize: 3, ResultCacheTTL: 250},
		Scoring:     ScoringSettings{TypeWeights: map[string]float64{"folder": 0.1}},
	}
	s.ApplyDefaults()

	assert.Equal(t, 7, s.Search.MaxResults)
	assert.Equal(t, 3, s.Performance.ResultCacheSize)
	assert.Equal(t, int64(250), s.Performance.CacheTTL().Milliseconds())
	assert.Equal(t, 0.1, s.Scoring.TypeWeights["folder"])
	assert.Equal(t, 1.2, s.Scoring.TypeWeights["project"], "missing type weights are filled in")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(*Settings)
		expectedErrors int
	}{
		{name: "defaults are valid", mutate: func(*Settings) {}, expectedErrors: 0},
		{name: "unknown backend", mutate: func(s *Settings) { s.Index.Backend = "lucene" }, expectedErrors: 1},
		{name: "fuzzy weight above one", mutate: func(s *Settings) { s.Search.FuzzyWeight = 1.5 }, expectedErrors: 1},
		{name: "file name with separator", mutate: func(s *Settings) { s.Index.FileName = "a/b.json" }, expectedErrors: 1},
		{
			name:           "duplicate skip directory",
			mutate:         func(s *Settings) { s.Index.SkipDirectories = []string{".git", ".git"} },
			expectedErrors: 1,
		},
		{
			name:           "negative type weight",
			mutate:         func(s *Settings) { s.Scoring.TypeWeights["note"] = -1 },
			expectedErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			problems := s.Validate()
			assert.Len(t, problems, tt.expectedErrors, "problems: %v", problems)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		s, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), s)
	})

	t.Run("overrides are applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.toml")
		content := `
[search]
maxResults = 25
enableFuzzySearch = false
maxIndexableFileSize = 2048

[search.preprocessing]
enableStopWords = false

[index]
backend = "bleve"

[performance]
resultCacheSize = 5

[ui]
maxSuggestions = 3
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		s, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 25, s.Search.MaxResults)
		assert.False(t, s.Search.EnableFuzzySearch)
		assert.False(t, s.Search.Preprocessing.EnableStopWords)
		assert.Equal(t, int64(2048), s.Search.MaxIndexableFileSize)
		assert.Equal(t, BackendBleve, s.Index.Backend)
		assert.Equal(t, 5, s.Performance.ResultCacheSize)
		assert.Equal(t, 3, s.UI.MaxSuggestions)
		assert.Equal(t, "search-index.json", s.Index.FileName)
	})

	t.Run("parse error returns defaults and error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[search\nmaxResults = "), 0o644))

		s, err := LoadFile(path)
		require.Error(t, err)
		assert.NotNil(t, s)
	})

	t.Run("invalid values are reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.toml")
		require.NoError(t, os.WriteFile(path, []byte("[index]\nbackend = \"sqlite\"\n"), 0o644))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index.backend")
	})
}
