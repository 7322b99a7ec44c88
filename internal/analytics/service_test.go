package analytics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StatTag/StatWrap-sub000/model"
)

func TestAnalyticsService_RecordSearch(t *testing.T) {
	service := NewService()

	service.RecordSearch(2*time.Millisecond, false)
	service.RecordSearch(4*time.Millisecond, false)
	service.RecordSearch(time.Millisecond, true)

	perf := service.Performance()
	assert.Equal(t, int64(3), perf.TotalSearches)
	assert.Equal(t, []float64{2, 4}, perf.SearchTimes, "cache hits do not enter the window")
	assert.InDelta(t, 3.0, perf.AverageSearchTime, 1e-9)

	m := service.Metrics()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("hit")))
}

func TestAnalyticsService_RollingWindow(t *testing.T) {
	service := NewService()
	for i := 1; i <= model.MaxSearchTimes+20; i++ {
		service.RecordSearch(time.Duration(i)*time.Millisecond, false)
	}

	perf := service.Performance()
	require.Len(t, perf.SearchTimes, model.MaxSearchTimes)
	assert.Equal(t, 21.0, perf.SearchTimes[0])
	assert.Equal(t, float64(model.MaxSearchTimes+20), perf.SearchTimes[model.MaxSearchTimes-1])
	assert.InDelta(t, 70.5, perf.AverageSearchTime, 1e-9)
	assert.Equal(t, int64(model.MaxSearchTimes+20), perf.TotalSearches)
}

func TestAnalyticsService_RecordIndexing(t *testing.T) {
	service := NewService()
	service.RecordIndexing("initialize", 1500*time.Millisecond, 20)
	service.RecordIndexing("reindex", 500*time.Millisecond, 18)

	perf := service.Performance()
	assert.Equal(t, int64(2000), perf.TotalIndexingTime)
	assert.Equal(t, int64(18), perf.DocumentsIndexed)
}

func TestAnalyticsService_RestoreAndReset(t *testing.T) {
	service := NewService()
	persisted := model.PerformanceStats{TotalSearches: 7, AverageSearchTime: 1.5, SearchTimes: []float64{1, 2}}
	service.Restore(persisted)

	perf := service.Performance()
	assert.Equal(t, persisted, perf)

	perf.SearchTimes[0] = 99
	assert.Equal(t, 1.0, service.Performance().SearchTimes[0], "Performance returns a copy")

	service.Reset()
	assert.Zero(t, service.Performance().TotalSearches)
	assert.Empty(t, service.Performance().SearchTimes)
}

func TestAnalyticsService_Gauges(t *testing.T) {
	service := NewService()
	service.SetDocumentCounts(map[string]int{"file": 4, "project": 1})
	service.SetIndexFileSize(2048)
	service.JobFinished(model.JobTypeReindex, model.JobStatusCompleted, time.Second)

	m := service.Metrics()
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Documents.WithLabelValues("file")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Documents.WithLabelValues("note")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.IndexFileBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("reindex", "completed")))
}

func TestAnalyticsService_Handler(t *testing.T) {
	service := NewService()
	service.RecordSearch(time.Millisecond, false)

	rec := httptest.NewRecorder()
	service.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "statwrap_search_queries_total")
	assert.Contains(t, string(body), "statwrap_search_duration_seconds")
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
