package indexing

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StatTag/StatWrap-sub000/config"
	"github.com/StatTag/StatWrap-sub000/index"
	testutil "github.com/StatTag/StatWrap-sub000/internal/testing"
	"github.com/StatTag/StatWrap-sub000/model"
	"github.com/StatTag/StatWrap-sub000/store"
)

func newTestService(t *testing.T, settings *config.Settings) (*Service, *store.DocumentStore, *index.Set) {
	t.Helper()
	if settings == nil {
		settings = testutil.NewTestSettings(t)
	}
	ds := store.New()
	indices, err := index.NewSet(settings.Index.Backend)
	require.NoError(t, err)
	t.Cleanup(func() { _ = indices.Close() })
	svc, err := NewService(ds, indices, settings, &sync.RWMutex{})
	require.NoError(t, err)
	return svc, ds, indices
}

func countByType(docs []model.Document) map[model.DocumentType]int {
	counts := make(map[model.DocumentType]int)
	for _, d := range docs {
		counts[d.Type]++
	}
	return counts
}

func findByTitle(docs []model.Document, title string) (model.Document, bool) {
	for _, d := range docs {
		if d.Title == title {
			return d, true
		}
	}
	return model.Document{}, false
}

func TestNewService(t *testing.T) {
	settings := config.DefaultSettings()
	indices, err := index.NewSet(config.BackendNative)
	require.NoError(t, err)

	t.Run("valid initialization", func(t *testing.T) {
		_, err := NewService(store.New(), indices, settings, nil)
		assert.NoError(t, err)
	})
	t.Run("nil document store", func(t *testing.T) {
		_, err := NewService(nil, indices, settings, nil)
		assert.Error(t, err)
	})
	t.Run("nil index set", func(t *testing.T) {
		_, err := NewService(store.New(), nil, settings, nil)
		assert.Error(t, err)
	})
	t.Run("nil settings", func(t *testing.T) {
		_, err := NewService(store.New(), indices, nil, nil)
		assert.Error(t, err)
	})
}

func TestIndexProject_RichProject(t *testing.T) {
	svc, ds, indices := newTestService(t, nil)
	p := testutil.RichProject(t, "rich")

	result, err := svc.IndexProject(context.Background(), p)
	require.NoError(t, err)

	docs := ds.Values()
	counts := countByType(docs)
	assert.Equal(t, 1, counts[model.TypeProject])
	assert.Equal(t, 2, counts[model.TypePerson])
	assert.Equal(t, 3, counts[model.TypeNote], "project note, person note, asset note")
	assert.Equal(t, 1, counts[model.TypeAsset], "only assets carrying notes are emitted")
	assert.Equal(t, 1, counts[model.TypeExternalAsset])
	assert.Equal(t, 1, counts[model.TypeAssetGroup])
	assert.Equal(t, 4, counts[model.TypeFolder], "code, data, data/raw, docs")
	assert.Equal(t, 7, counts[model.TypeFile])
	assert.Equal(t, 20, result.Documents)
	assert.Equal(t, 6, result.Walk.ContentIndexed)

	for _, d := range docs {
		assert.Equal(t, "rich", d.ProjectID)
		assert.True(t, d.HasTag(string(d.Type)), "type tag on %s", d.ID)
		assert.Regexp(t, `^[a-z0-9_-]+$`, d.ID)
		assert.NotContains(t, d.Item.Path, "node_modules")
		assert.NotContains(t, d.Item.Path, string(filepath.Separator)+".git")
	}

	assert.Equal(t, 20, indices.Sizes()[index.Main])
	assert.Equal(t, 11, indices.Sizes()[index.Files])
	assert.Equal(t, 3, indices.Sizes()[index.Notes])
	assert.Equal(t, 2, indices.Sizes()[index.People])
	assert.Equal(t, 1, indices.Sizes()[index.Projects])
}

func TestIndexProject_FileDocuments(t *testing.T) {
	svc, ds, _ := newTestService(t, nil)
	p := testutil.RichProject(t, "files")
	_, err := svc.IndexProject(context.Background(), p)
	require.NoError(t, err)
	docs := ds.Values()

	t.Run("eligible text file is content indexed", func(t *testing.T) {
		doc, ok := findByTitle(docs, "README.md")
		require.True(t, ok)
		assert.True(t, doc.Item.ContentIndexed)
		assert.Equal(t, "README.md\nCohort study protocol with regression models", doc.Content)
		assert.Equal(t, "Cohort study protocol with regression models", doc.Item.Preview)
		assert.Contains(t, doc.Tags, "ext-md")
		assert.Contains(t, doc.Tags, "statistics-regression")
		assert.Contains(t, doc.Tags, "research-protocol")
		assert.Contains(t, doc.Item.MimeType, "text/plain")
		assert.Contains(t, doc.Metadata, `"contentIndexed":true`)
		assert.NotZero(t, doc.Item.LastModified)
	})

	t.Run("binary file is indexed by name only", func(t *testing.T) {
		doc, ok := findByTitle(docs, "image.png")
		require.True(t, ok)
		assert.False(t, doc.Item.ContentIndexed)
		assert.Equal(t, "image.png data/image.png", doc.Content)
		assert.Equal(t, "data/image.png", doc.Item.RelativePath)
	})

	t.Run("latin-1 content is decoded", func(t *testing.T) {
		doc, ok := findByTitle(docs, "latin1.txt")
		require.True(t, ok)
		assert.True(t, doc.Item.ContentIndexed)
		assert.Contains(t, doc.Content, "café au lait")
	})

	t.Run("person document", func(t *testing.T) {
		doc, ok := findByTitle(docs, "Ada Lovelace")
		require.True(t, ok)
		assert.Equal(t, model.TypePerson, doc.Type)
		assert.Contains(t, doc.Content, "Northwestern University")
		assert.Contains(t, doc.Content, "Statistician")
		assert.Contains(t, doc.Content, "Reviewed the hypothesis section")
		assert.Equal(t, []string{"PI", "Statistician"}, doc.Item.Roles)
	})

	t.Run("note document", func(t *testing.T) {
		doc, ok := findByTitle(docs, "Note: Ada Lovelace")
		require.True(t, ok)
		assert.Equal(t, "person", doc.Item.EntityType)
		assert.Equal(t, "Reviewed the hypothesis section", doc.Content)
	})

	t.Run("asset group lists members", func(t *testing.T) {
		doc, ok := findByTitle(docs, "Primary analysis")
		require.True(t, ok)
		require.Len(t, doc.Item.Members, 1)
		assert.Contains(t, doc.Content, "analysis.R")
	})
}

func TestIndexProject_MissingPathStillIndexesMetadata(t *testing.T) {
	svc, ds, _ := newTestService(t, nil)
	p := model.Project{
		ID:     "gone",
		Name:   "Moved Project",
		Path:   filepath.Join(t.TempDir(), "does-not-exist"),
		People: []model.Person{{ID: "x", Name: model.PersonName{First: "Solo"}}},
		Notes:  []model.Note{{ID: "n", Content: "still searchable"}},
	}

	result, err := svc.IndexProject(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Documents)
	counts := countByType(ds.Values())
	assert.Equal(t, 1, counts[model.TypeProject])
	assert.Equal(t, 1, counts[model.TypePerson])
	assert.Equal(t, 1, counts[model.TypeNote])
	assert.Zero(t, counts[model.TypeFile])
}

func TestIndexProject_OversizedFileIsLightweight(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	settings.Search.MaxIndexableFileSize = 10
	svc, ds, _ := newTestService(t, settings)
	p := testutil.ExampleProject(t, "small")

	_, err := svc.IndexProject(context.Background(), p)
	require.NoError(t, err)

	readme, ok := findByTitle(ds.Values(), "readme.md")
	require.True(t, ok)
	assert.False(t, readme.Item.ContentIndexed)
	assert.NotContains(t, readme.Content, "variance")
}

func TestIndexProject_Idempotent(t *testing.T) {
	svc, ds, _ := newTestService(t, nil)
	p := testutil.RichProject(t, "same")

	_, err := svc.IndexProject(context.Background(), p)
	require.NoError(t, err)
	first := ds.Values()

	_, err = svc.IndexProject(context.Background(), p)
	require.NoError(t, err)
	second := ds.Values()

	assert.Equal(t, first, second)
}

func TestIndexProject_RemovesDeletedFiles(t *testing.T) {
	svc, ds, _ := newTestService(t, nil)
	p := testutil.ExampleProject(t, "shrink")

	_, err := svc.IndexProject(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(p.Path, "main.py")))

	result, err := svc.IndexProject(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	_, ok := findByTitle(ds.Values(), "main.py")
	assert.False(t, ok)
}

func TestIndexProject_CancelledContext(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	settings.Performance.YieldEvery = 1
	settings.Performance.YieldPause = 1
	svc, _, _ := newTestService(t, settings)
	p := testutil.RichProject(t, "cancel")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.IndexProject(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoveProject(t *testing.T) {
	svc, ds, indices := newTestService(t, nil)
	a := testutil.ExampleProject(t, "A")
	b := testutil.ExampleProject(t, "B")
	_, err := svc.IndexProject(context.Background(), a)
	require.NoError(t, err)
	_, err = svc.IndexProject(context.Background(), b)
	require.NoError(t, err)

	removed := svc.RemoveProject("A")
	assert.Equal(t, 3, removed)
	for _, d := range ds.Values() {
		assert.Equal(t, "B", d.ProjectID)
	}
	assert.Equal(t, ds.Size(), indices.Sizes()[index.Main])
}

func TestRebuildFromStore(t *testing.T) {
	settings := testutil.NewTestSettings(t)
	settings.Performance.RebuildBatchSize = 3
	svc, ds, indices := newTestService(t, settings)
	_, err := svc.IndexProject(context.Background(), testutil.RichProject(t, "r"))
	require.NoError(t, err)

	require.NoError(t, indices.Clear())
	assert.Zero(t, indices.Sizes()[index.Main])

	n, err := svc.RebuildFromStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ds.Size(), n)
	assert.Equal(t, ds.Size(), indices.Sizes()[index.Main])
	assert.Equal(t, 11, indices.Sizes()[index.Files])
}

func TestRefreshChangedFiles(t *testing.T) {
	svc, ds, _ := newTestService(t, nil)
	p := testutil.ExampleProject(t, "fresh")
	_, err := svc.IndexProject(context.Background(), p)
	require.NoError(t, err)

	n, err := svc.RefreshChangedFiles(context.Background(), p)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing changed")

	testutil.WriteFile(t, p.Path, "readme.md", "Updated notes on covariance")
	testutil.TouchLater(t, p.Path, "readme.md", time.Minute)
	require.NoError(t, os.Remove(filepath.Join(p.Path, "main.py")))

	n, err = svc.RefreshChangedFiles(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	readme, ok := findByTitle(ds.Values(), "readme.md")
	require.True(t, ok)
	assert.Contains(t, readme.Content, "covariance")
	_, ok = findByTitle(ds.Values(), "main.py")
	assert.False(t, ok)
}
