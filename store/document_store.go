package store

import (
	"sort"
	"sync"

	"github.com/StatTag/StatWrap-sub000/model"
)

// DocumentStore maps document ids to documents. It is the source of truth for
// index rebuilds, result rendering and the persisted snapshot.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]model.Document
}

// New returns an empty DocumentStore.
func New() *DocumentStore {
	return &DocumentStore{docs: make(map[string]model.Document)}
}

// Put inserts or replaces the document stored under doc.ID.
func (ds *DocumentStore) Put(doc model.Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs[doc.ID] = doc
}

// Get returns the document with the given id.
func (ds *DocumentStore) Get(id string) (model.Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	doc, ok := ds.docs[id]
	return doc, ok
}

// Has reports whether id is present.
func (ds *DocumentStore) Has(id string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	_, ok := ds.docs[id]
	return ok
}

// Delete removes id and reports whether it was present.
func (ds *DocumentStore) Delete(id string) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if _, ok := ds.docs[id]; !ok {
		return false
	}
	delete(ds.docs, id)
	return true
}

// DeleteWhere removes every document matching pred and returns them sorted by id.
func (ds *DocumentStore) DeleteWhere(pred func(model.Document) bool) []model.Document {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	var removed []model.Document
	for id, doc := range ds.docs {
		if pred(doc) {
			removed = append(removed, doc)
			delete(ds.docs, id)
		}
	}
	sortDocuments(removed)
	return removed
}

// Clear removes every document.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs = make(map[string]model.Document)
}

// Size returns the number of stored documents.
func (ds *DocumentStore) Size() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.docs)
}

// Values returns every document sorted by id.
func (ds *DocumentStore) Values() []model.Document {
	ds.mu.RLock()
	out := make([]model.Document, 0, len(ds.docs))
	for _, doc := range ds.docs {
		out = append(out, doc)
	}
	ds.mu.RUnlock()
	sortDocuments(out)
	return out
}

// Filter returns the documents matching pred sorted by id.
func (ds *DocumentStore) Filter(pred func(model.Document) bool) []model.Document {
	ds.mu.RLock()
	var out []model.Document
	for _, doc := range ds.docs {
		if pred(doc) {
			out = append(out, doc)
		}
	}
	ds.mu.RUnlock()
	sortDocuments(out)
	return out
}

// CountByType returns the number of documents per type.
func (ds *DocumentStore) CountByType() map[string]int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	counts := make(map[string]int)
	for _, doc := range ds.docs {
		counts[string(doc.Type)]++
	}
	return counts
}

// Entries returns the [id, document] pairs in id order, ready for serialization.
func (ds *DocumentStore) Entries() model.DocumentEntries {
	values := ds.Values()
	entries := make(model.DocumentEntries, 0, len(values))
	for i := range values {
		doc := values[i]
		entries = append(entries, model.DocumentEntry{ID: doc.ID, Document: &doc})
	}
	return entries
}

// Load replaces the store content with entries. Entries without a document are
// skipped; an entry whose document has no id takes the entry id.
func (ds *DocumentStore) Load(entries model.DocumentEntries) int {
	docs := make(map[string]model.Document, len(entries))
	for _, entry := range entries {
		if entry.Document == nil || entry.ID == "" {
			continue
		}
		doc := *entry.Document
		if doc.ID == "" {
			doc.ID = entry.ID
		}
		docs[entry.ID] = doc
	}
	ds.mu.Lock()
	ds.docs = docs
	ds.mu.Unlock()
	return len(docs)
}

func sortDocuments(docs []model.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
