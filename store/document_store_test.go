package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StatTag/StatWrap-sub000/model"
)

func newDoc(id string, docType model.DocumentType, projectID string) model.Document {
	return model.Document{
		ID:        id,
		Type:      docType,
		Title:     "title " + id,
		Content:   "content " + id,
		Tags:      []string{string(docType)},
		ProjectID: projectID,
		Item:      model.Item{ID: id, Name: "title " + id},
	}
}

func TestDocumentStore_PutGetDelete(t *testing.T) {
	ds := New()
	ds.Put(newDoc("b", model.TypeFile, "p1"))
	ds.Put(newDoc("a", model.TypeNote, "p1"))

	assert.Equal(t, 2, ds.Size())

	doc, ok := ds.Get("a")
	require.True(t, ok)
	assert.Equal(t, model.TypeNote, doc.Type)

	updated := newDoc("a", model.TypeNote, "p1")
	updated.Content = "replaced"
	ds.Put(updated)
	doc, _ = ds.Get("a")
	assert.Equal(t, "replaced", doc.Content)
	assert.Equal(t, 2, ds.Size(), "put with same id replaces")

	assert.True(t, ds.Delete("a"))
	assert.False(t, ds.Delete("a"))
	assert.False(t, ds.Has("a"))

	ds.Clear()
	assert.Equal(t, 0, ds.Size())
}

func TestDocumentStore_ValuesSorted(t *testing.T) {
	ds := New()
	for _, id := range []string{"c", "a", "b"} {
		ds.Put(newDoc(id, model.TypeFile, "p"))
	}
	values := ds.Values()
	require.Len(t, values, 3)
	assert.Equal(t, "a", values[0].ID)
	assert.Equal(t, "b", values[1].ID)
	assert.Equal(t, "c", values[2].ID)
}

func TestDocumentStore_DeleteWhere(t *testing.T) {
	ds := New()
	ds.Put(newDoc("a1", model.TypeFile, "A"))
	ds.Put(newDoc("a2", model.TypeProject, "A"))
	ds.Put(newDoc("b1", model.TypeFile, "B"))

	removed := ds.DeleteWhere(func(d model.Document) bool { return d.ProjectID == "A" })

	require.Len(t, removed, 2)
	assert.Equal(t, "a1", removed[0].ID)
	assert.Equal(t, 1, ds.Size())
	assert.True(t, ds.Has("b1"))
	assert.Equal(t, map[string]int{"file": 1}, ds.CountByType())
}

func TestDocumentStore_EntriesJSON(t *testing.T) {
	ds := New()
	ds.Put(newDoc("z", model.TypePerson, "p"))
	ds.Put(newDoc("m", model.TypeFile, "p"))

	data, err := json.Marshal(ds.Entries())
	require.NoError(t, err)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)

	var first []json.RawMessage
	require.NoError(t, json.Unmarshal(raw[0], &first))
	require.Len(t, first, 2, "each entry is an [id, document] pair")
	assert.JSONEq(t, `"m"`, string(first[0]))

	var decoded model.DocumentEntries
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := New()
	assert.Equal(t, 2, restored.Load(decoded))
	assert.Equal(t, ds.Values(), restored.Values())
}

func TestDocumentEntries_RejectsMalformedPairs(t *testing.T) {
	var entries model.DocumentEntries
	err := json.Unmarshal([]byte(`[["only-id"]]`), &entries)
	assert.Error(t, err)
}
