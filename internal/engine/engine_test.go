package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StatTag/StatWrap-sub000/config"
	apperrors "github.com/StatTag/StatWrap-sub000/internal/errors"
	testutil "github.com/StatTag/StatWrap-sub000/internal/testing"
	"github.com/StatTag/StatWrap-sub000/model"
)

func newTestService(t *testing.T, settings *config.Settings, opts ...Option) *Service {
	t.Helper()
	if settings == nil {
		settings = testutil.NewTestSettings(t)
	}
	svc, err := New(settings, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func fixedClock(ts time.Time) Option {
	return WithClock(func() time.Time { return ts })
}

func assertAllEmpty(t *testing.T, r *model.GroupedResults) {
	t.Helper()
	require.NotNil(t, r)
	assert.Empty(t, r.Projects)
	assert.Empty(t, r.People)
	assert.Empty(t, r.Assets)
	assert.Empty(t, r.Files)
	assert.Empty(t, r.Folders)
	assert.Empty(t, r.Notes)
	assert.Empty(t, r.All)
}

func projectDocIDs(svc *Service, projectID string) []string {
	var ids []string
	for _, doc := range svc.documentStore.Values() {
		if doc.ProjectID == projectID {
			ids = append(ids, doc.ID)
		}
	}
	return ids
}

func TestService_ExampleScenario(t *testing.T) {
	for _, backend := range []string{config.BackendNative, config.BackendBleve} {
		t.Run(backend, func(t *testing.T) {
			settings := testutil.NewTestSettings(t)
			settings.Index.Backend = backend
			svc := newTestService(t, settings)

			p := testutil.ExampleProject(t, "P")
			result, err := svc.Initialize(context.Background(), []model.Project{p})
			require.NoError(t, err)
			assert.True(t, result.FullIndex)
			assert.Equal(t, []string{"P"}, result.Added)
			assert.True(t, svc.IsInitialized())

			r := svc.Search("variance", model.SearchOptions{})
			require.Len(t, r.All, 1)
			require.Len(t, r.Files, 1)
			assert.Equal(t, "readme.md", r.Files[0].Item.Name)
			assert.Greater(t, r.Files[0].Score, 0.0)
			assert.LessOrEqual(t, r.Files[0].Score, 1.0)

			assertAllEmpty(t, svc.Search("nonexistentterm12345", model.SearchOptions{}))

			_, err = os.Stat(svc.IndexPath())
			assert.NoError(t, err, "initialize persists the index")
		})
	}
}

func TestService_NotInitialized(t *testing.T) {
	svc := newTestService(t, nil)

	assertAllEmpty(t, svc.Search("variance", model.SearchOptions{}))
	assert.Equal(t, []string{}, svc.GetSuggestions("variance"))

	stats := svc.GetSearchStats()
	assert.False(t, stats.Initialized)
	assert.False(t, stats.IndexingInProgress)
	assert.Zero(t, stats.DocumentCount)
	assert.False(t, stats.IndexFile.Exists)
	assert.Equal(t, config.BackendNative, stats.Backend)
}

func TestService_EmptyQueryAfterInitialize(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Initialize(context.Background(), []model.Project{testutil.ExampleProject(t, "P")})
	require.NoError(t, err)

	assertAllEmpty(t, svc.Search("", model.SearchOptions{}))
	assertAllEmpty(t, svc.Search("   \t", model.SearchOptions{}))
}

func TestService_Reconciliation(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	a := testutil.ExampleProject(t, "A")
	b := testutil.ExampleProject(t, "B")
	c := testutil.ExampleProject(t, "C")

	svc1 := newTestService(t, settings, fixedClock(first))
	_, err := svc1.Initialize(context.Background(), []model.Project{a, b})
	require.NoError(t, err)
	aDocs := projectDocIDs(svc1, "A")
	require.NotEmpty(t, aDocs)
	require.NotEmpty(t, projectDocIDs(svc1, "B"))
	require.NoError(t, svc1.Close())

	// A file added to A is only picked up by a walk.
	testutil.WriteFile(t, a.Path, "extra.md", "unwalked appendix")

	svc2 := newTestService(t, settings, fixedClock(second))
	result, err := svc2.Initialize(context.Background(), []model.Project{a, c})
	require.NoError(t, err)
	assert.False(t, result.FullIndex)
	assert.Equal(t, []string{"C"}, result.Added)
	assert.Equal(t, []string{"B"}, result.Removed)
	assert.Empty(t, result.Reindexed)

	for _, doc := range svc2.documentStore.Values() {
		assert.Contains(t, []string{"A", "C"}, doc.ProjectID, "document %s", doc.ID)
	}
	assert.ElementsMatch(t, aDocs, projectDocIDs(svc2, "A"), "A's documents are untouched")
	assert.NotEmpty(t, projectDocIDs(svc2, "C"))
	assert.Empty(t, projectDocIDs(svc2, "B"))
	assertAllEmpty(t, svc2.Search("unwalked", model.SearchOptions{}))

	registry := svc2.ExportIndex().IndexedProjects
	require.Len(t, registry, 2)
	assert.Equal(t, first.UnixMilli(), registry["A"].LastIndexed)
	assert.Equal(t, second.UnixMilli(), registry["C"].LastIndexed)
}

func TestService_ReconcilePathChange(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	svc := newTestService(t, settings)

	original := testutil.ExampleProject(t, "A")
	_, err := svc.Initialize(context.Background(), []model.Project{original})
	require.NoError(t, err)

	moved := model.Project{
		ID:   "A",
		Name: original.Name,
		Path: testutil.WriteProjectFiles(t, map[string]string{"moved.md": "relocated manuscript"}),
	}
	result, err := svc.Initialize(context.Background(), []model.Project{moved})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, result.Reindexed)

	r := svc.Search("relocated", model.SearchOptions{})
	require.Len(t, r.Files, 1)
	assert.Equal(t, "moved.md", r.Files[0].Item.Name)
	assertAllEmpty(t, svc.Search("variance", model.SearchOptions{}))
	assert.Equal(t, moved.Path, svc.ExportIndex().IndexedProjects["A"].Path)
}

func TestService_RefreshChangedFilesOnInitialize(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	settings.Index.RefreshChangedFiles = true

	p := testutil.ExampleProject(t, "P")
	svc1 := newTestService(t, settings)
	_, err := svc1.Initialize(context.Background(), []model.Project{p})
	require.NoError(t, err)
	require.NoError(t, svc1.Close())

	testutil.WriteFile(t, p.Path, "readme.md", "Statistical analysis of covariance")
	testutil.TouchLater(t, p.Path, "readme.md", time.Minute)

	svc2 := newTestService(t, settings)
	result, err := svc2.Initialize(context.Background(), []model.Project{p})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Refreshed)
	assert.Len(t, svc2.Search("covariance", model.SearchOptions{}).Files, 1)
}

func TestService_DeleteIndexFileThenFullRewalk(t *testing.T) {
	svc := newTestService(t, nil)
	p := testutil.ExampleProject(t, "P")

	first, err := svc.Initialize(context.Background(), []model.Project{p})
	require.NoError(t, err)
	require.Positive(t, first.Documents)

	assert.True(t, svc.DeleteIndexFile())
	_, err = os.Stat(svc.IndexPath())
	assert.True(t, os.IsNotExist(err))
	assert.False(t, svc.IsInitialized())
	assert.Zero(t, svc.GetSearchStats().DocumentCount)
	assertAllEmpty(t, svc.Search("variance", model.SearchOptions{}))

	second, err := svc.Initialize(context.Background(), []model.Project{p})
	require.NoError(t, err)
	assert.True(t, second.FullIndex, "a deleted index is rebuilt from the file system")
	assert.Equal(t, first.Documents, second.Documents)

	assert.True(t, svc.DeleteIndexFile())
	assert.True(t, svc.DeleteIndexFile(), "deleting a missing file succeeds")
}

func TestService_CorruptIndexFileFallsBackToFullIndex(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	svc := newTestService(t, settings)
	require.NoError(t, os.WriteFile(svc.IndexPath(), []byte("{not json"), 0o644))

	result, err := svc.Initialize(context.Background(), []model.Project{testutil.ExampleProject(t, "P")})
	require.NoError(t, err)
	assert.True(t, result.FullIndex)
	assert.Len(t, svc.Search("variance", model.SearchOptions{}).Files, 1)
}

func TestService_ExportImportRoundTrip(t *testing.T) {
	source := newTestService(t, nil)
	_, err := source.Initialize(context.Background(), []model.Project{testutil.ExampleProject(t, "P")})
	require.NoError(t, err)
	source.Search("variance", model.SearchOptions{})

	payload := source.ExportIndex()
	assert.Equal(t, model.IndexVersion, payload.Version)
	require.Len(t, payload.ProjectsData, 1)
	assert.Equal(t, "P", payload.ProjectsData[0].ID)
	assert.Equal(t, int64(1), payload.PerformanceStats.TotalSearches)

	target := newTestService(t, nil)
	require.NoError(t, target.ImportIndex(context.Background(), payload))
	assert.True(t, target.IsInitialized())
	assert.Equal(t, source.GetSearchStats().DocumentCount, target.GetSearchStats().DocumentCount)
	assert.Equal(t, source.documentStore.Values(), target.documentStore.Values())
	assert.Len(t, target.Search("variance", model.SearchOptions{}).Files, 1)

	_, err = os.Stat(target.IndexPath())
	assert.NoError(t, err, "import persists the index")

	// Imported projects can be re-walked.
	require.NoError(t, target.ReindexAll(context.Background()))
	assert.Len(t, target.Search("numpy", model.SearchOptions{}).Files, 1)
}

func TestService_ImportRejectsBadPayloads(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Initialize(context.Background(), []model.Project{testutil.ExampleProject(t, "P")})
	require.NoError(t, err)
	before := svc.GetSearchStats().DocumentCount

	payload := svc.ExportIndex()
	payload.Version = "2.0"
	err = svc.ImportIndex(context.Background(), payload)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVersion)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = svc.ImportIndex(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	malformed := svc.ExportIndex()
	malformed.DocumentStore = append(malformed.DocumentStore, model.DocumentEntry{ID: "x"})
	assert.ErrorIs(t, svc.ImportIndex(context.Background(), malformed), apperrors.ErrInvalidInput)

	assert.Equal(t, before, svc.GetSearchStats().DocumentCount, "rejected imports change nothing")
}

func TestService_ReindexAllClearsFlagOnError(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Initialize(context.Background(), []model.Project{
		testutil.ExampleProject(t, "A"),
		testutil.RichProject(t, "B"),
	})
	require.NoError(t, err)
	count := svc.GetSearchStats().DocumentCount

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = svc.ReindexAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, svc.IndexingInProgress())

	require.NoError(t, svc.ReindexAll(context.Background()))
	assert.Equal(t, count, svc.GetSearchStats().DocumentCount)
	assert.False(t, svc.IndexingInProgress())
}

func TestService_SingleIndexingOperation(t *testing.T) {
	svc := newTestService(t, nil)
	svc.indexing.Store(true)

	_, err := svc.Initialize(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrIndexingInProgress)
	assert.ErrorIs(t, svc.ReindexAll(context.Background()), apperrors.ErrIndexingInProgress)
	assert.False(t, svc.DeleteIndexFile())
	_, err = svc.InitializeAsync(nil)
	assert.ErrorIs(t, err, apperrors.ErrIndexingInProgress)

	svc.indexing.Store(false)
	_, err = svc.Initialize(context.Background(), nil)
	assert.NoError(t, err)
}

func TestService_InvalidProjectsSkipped(t *testing.T) {
	svc := newTestService(t, nil)
	p := testutil.ExampleProject(t, "P")
	result, err := svc.Initialize(context.Background(), []model.Project{{Name: "no id"}, p, p})
	require.NoError(t, err)
	assert.Equal(t, []string{"P"}, result.Added)
}

func TestService_StatsAndCache(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Initialize(context.Background(), []model.Project{testutil.RichProject(t, "R")})
	require.NoError(t, err)

	first := svc.Search("regression", model.SearchOptions{})
	assert.Equal(t, first.QueryID, svc.Search("regression", model.SearchOptions{}).QueryID, "served from the cache")

	stats := svc.GetSearchStats()
	assert.True(t, stats.Initialized)
	assert.Equal(t, 1, stats.IndexedProjects)
	assert.Equal(t, 20, stats.DocumentCount)
	assert.Equal(t, 7, stats.DocumentsByType[string(model.TypeFile)])
	assert.Equal(t, 20, stats.IndexSizes["main"])
	assert.True(t, stats.IndexFile.Exists)
	assert.Positive(t, stats.IndexFile.Size)
	assert.Equal(t, int64(2), stats.Performance.TotalSearches)
	assert.Len(t, stats.Performance.SearchTimes, 1)
	assert.Equal(t, int64(1), stats.Cache.Hits)
	assert.Positive(t, stats.IndexQueries)

	assert.Contains(t, svc.GetSuggestions("regress"), "statistics-regression")

	// New content invalidates cached results.
	_, err = svc.Initialize(context.Background(), []model.Project{testutil.RichProject(t, "R"), testutil.ExampleProject(t, "E")})
	require.NoError(t, err)
	assert.NotEqual(t, first.QueryID, svc.Search("regression", model.SearchOptions{}).QueryID)
}

func TestService_ClosePersistsAndRejectsWork(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	svc, err := New(settings)
	require.NoError(t, err)

	_, err = svc.Initialize(context.Background(), []model.Project{testutil.ExampleProject(t, "P")})
	require.NoError(t, err)
	svc.Search("variance", model.SearchOptions{})
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	_, err = svc.Initialize(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrClosed)

	reopened := newTestService(t, settings)
	_, err = reopened.Initialize(context.Background(), []model.Project{testutil.ExampleProject(t, "P")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), reopened.GetSearchStats().Performance.TotalSearches, "performance stats survive restarts")
}

func TestNew_InvalidSettings(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	settings.Index.Backend = "lucene"
	_, err := New(settings)
	assert.Error(t, err)

	settings = testutil.NewTestSettings(t)
	settings.Index.FileName = filepath.Join("nested", "index.json")
	_, err = New(settings)
	assert.Error(t, err)
}

func TestService_OpenLoadsPersistedIndex(t *testing.T) {
	settings := testutil.NewTestSettings(t)

	empty := newTestService(t, settings)
	opened, err := empty.Open(context.Background())
	require.NoError(t, err)
	assert.False(t, opened)
	assert.False(t, empty.IsInitialized())
	require.NoError(t, empty.Close())

	writer := newTestService(t, settings)
	_, err = writer.Initialize(context.Background(), []model.Project{testutil.ExampleProject(t, "P")})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := newTestService(t, settings)
	opened, err = reader.Open(context.Background())
	require.NoError(t, err)
	assert.True(t, opened)
	assert.True(t, reader.IsInitialized())
	assert.Len(t, reader.Search("variance", model.SearchOptions{}).Files, 1)

	require.NoError(t, reader.ReindexAll(context.Background()))
	assert.Len(t, reader.Search("variance", model.SearchOptions{}).Files, 1, "opened projects can be reindexed")
}

func TestService_ReindexAfterOpenKeepsProjectMetadata(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	rich := testutil.RichProject(t, "R")

	writer := newTestService(t, settings)
	_, err := writer.Initialize(context.Background(), []model.Project{rich})
	require.NoError(t, err)
	before := writer.documentStore.CountByType()
	require.NoError(t, writer.Close())

	reader := newTestService(t, settings)
	opened, err := reader.Open(context.Background())
	require.NoError(t, err)
	require.True(t, opened)

	// The directory is re-walked, so a new file shows up.
	testutil.WriteFile(t, rich.Path, "docs/appendix.md", "Sensitivity analysis appendix")
	require.NoError(t, reader.ReindexAll(context.Background()))

	after := reader.documentStore.CountByType()
	assert.Equal(t, before[string(model.TypeFile)]+1, after[string(model.TypeFile)])
	delete(before, string(model.TypeFile))
	delete(after, string(model.TypeFile))
	assert.Equal(t, before, after)

	assert.NotEmpty(t, reader.Search("Lovelace", model.SearchOptions{}).People)
	assert.NotEmpty(t, reader.Search("interaction", model.SearchOptions{}).Notes)
	assert.NotEmpty(t, reader.Search("heart failure", model.SearchOptions{Type: model.TypeProject}).Projects)
	assert.Len(t, reader.Search("appendix", model.SearchOptions{}).Files, 1)
}

func TestService_ReindexAfterImportKeepsProjectMetadata(t *testing.T) {
	source := newTestService(t, nil)
	_, err := source.Initialize(context.Background(), []model.Project{testutil.RichProject(t, "R")})
	require.NoError(t, err)

	target := newTestService(t, nil)
	require.NoError(t, target.ImportIndex(context.Background(), source.ExportIndex()))
	require.NoError(t, target.ReindexAll(context.Background()))

	assert.Equal(t, source.documentStore.CountByType(), target.documentStore.CountByType())
	assert.NotEmpty(t, target.Search("Hopper", model.SearchOptions{}).People)
}
