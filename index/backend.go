package index

import (
	"fmt"

	"github.com/StatTag/StatWrap-sub000/config"
	"github.com/StatTag/StatWrap-sub000/model"
)

// Field names known to every backend.
const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldTags    = "tags"
)

// Query describes a single lookup against a Backend.
type Query struct {
	Terms        []string           // already tokenized and lowercased
	FieldWeights map[string]float64 // missing fields are not searched
	Fuzzy        bool               // prefix expansion plus one-edit typo matches
	MinFuzzyLen  int                // terms shorter than this get prefix expansion only
	Limit        int                // 0 means unlimited
}

// RawHit is an unnormalized match returned by a Backend.
type RawHit struct {
	ID           string
	Score        float64
	MatchedTerms []string // query terms (not expansions) that matched
}

// Backend is the swappable inverted-index implementation. Implementations
// must be safe for concurrent use.
type Backend interface {
	Name() string
	AddDocument(doc model.Document) error
	RemoveDocument(id string) error
	Query(q Query) ([]RawHit, error)
	Clear() error
	Len() int
	Close() error
}

// NewBackend builds the backend named by kind.
func NewBackend(kind string) (Backend, error) {
	switch kind {
	case "", config.BackendNative:
		return NewInvertedIndex(), nil
	case config.BackendBleve:
		return NewBleveIndex()
	default:
		return nil, fmt.Errorf("unknown index backend %q", kind)
	}
}
