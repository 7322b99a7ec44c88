package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	bleve "github.com/blevesearch/bleve/v2"
	query "github.com/blevesearch/bleve/v2/search/query"

	"github.com/StatTag/StatWrap-sub000/internal/tokenizer"
	"github.com/StatTag/StatWrap-sub000/model"
)

// BleveIndex is a Backend over an in-memory bleve index. Text is
// pre-tokenized with the package tokenizer so both backends see the same terms.
type BleveIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewBleveIndex creates an empty in-memory bleve backend.
func NewBleveIndex() (*BleveIndex, error) {
	idx, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &BleveIndex{index: idx}, nil
}

func newMemIndex() (bleve.Index, error) {
	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = "standard"
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return idx, nil
}

// Name implements Backend.
func (bi *BleveIndex) Name() string { return "bleve" }

// AddDocument implements Backend.
func (bi *BleveIndex) AddDocument(doc model.Document) error {
	fields := documentFields(doc)
	body := map[string]interface{}{
		FieldTitle:   strings.Join(fields[FieldTitle], " "),
		FieldContent: strings.Join(fields[FieldContent], " "),
		FieldTags:    strings.Join(fields[FieldTags], " "),
		"type":       string(doc.Type),
	}

	bi.mu.RLock()
	defer bi.mu.RUnlock()
	if err := bi.index.Index(doc.ID, body); err != nil {
		return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
	}
	return nil
}

// RemoveDocument implements Backend.
func (bi *BleveIndex) RemoveDocument(id string) error {
	bi.mu.RLock()
	defer bi.mu.RUnlock()
	if err := bi.index.Delete(id); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

// Clear replaces the underlying index with a fresh one.
func (bi *BleveIndex) Clear() error {
	fresh, err := newMemIndex()
	if err != nil {
		return err
	}
	bi.mu.Lock()
	old := bi.index
	bi.index = fresh
	bi.mu.Unlock()
	return old.Close()
}

// Len implements Backend.
func (bi *BleveIndex) Len() int {
	bi.mu.RLock()
	defer bi.mu.RUnlock()
	count, err := bi.index.DocCount()
	if err != nil {
		return 0
	}
	return int(count)
}

// Close implements Backend.
func (bi *BleveIndex) Close() error {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	return bi.index.Close()
}

// Query runs one disjunction per query term so that each hit knows which
// terms it matched, then sums the per-term scores.
func (bi *BleveIndex) Query(q Query) ([]RawHit, error) {
	bi.mu.RLock()
	defer bi.mu.RUnlock()

	if len(q.Terms) == 0 {
		return []RawHit{}, nil
	}
	count, err := bi.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count bleve documents: %w", err)
	}
	if count == 0 {
		return []RawHit{}, nil
	}

	scores := make(map[string]float64)
	matched := make(map[string][]string)

	for _, term := range q.Terms {
		termQuery := bi.termQuery(term, q)
		if termQuery == nil {
			continue
		}
		req := bleve.NewSearchRequestOptions(termQuery, int(count), 0, false)
		res, err := bi.index.Search(req)
		if err != nil {
			return nil, fmt.Errorf("bleve search for %q failed: %w", term, err)
		}
		for _, hit := range res.Hits {
			scores[hit.ID] += hit.Score
			matched[hit.ID] = append(matched[hit.ID], term)
		}
	}

	hits := make([]RawHit, 0, len(scores))
	for id, score := range scores {
		terms := matched[id]
		sort.Strings(terms)
		hits = append(hits, RawHit{ID: id, Score: score, MatchedTerms: terms})
	}
	sortHits(hits)
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

func (bi *BleveIndex) termQuery(term string, q Query) query.Query {
	// Analyze the term the same way documents were analyzed.
	tokens := tokenizer.Tokenize(term)
	if len(tokens) == 0 {
		return nil
	}
	text := strings.Join(tokens, " ")

	disj := bleve.NewDisjunctionQuery()
	for _, field := range []string{FieldTitle, FieldTags, FieldContent} {
		weight := q.FieldWeights[field]
		if weight <= 0 {
			continue
		}

		match := bleve.NewMatchQuery(text)
		match.SetField(field)
		match.SetBoost(weight)
		disj.AddQuery(match)

		if !q.Fuzzy {
			continue
		}
		prefix := bleve.NewPrefixQuery(text)
		prefix.SetField(field)
		prefix.SetBoost(weight)
		disj.AddQuery(prefix)

		if len([]rune(text)) >= q.MinFuzzyLen {
			fuzzy := bleve.NewFuzzyQuery(text)
			fuzzy.SetField(field)
			fuzzy.SetFuzziness(1)
			fuzzy.SetBoost(weight)
			disj.AddQuery(fuzzy)
		}
	}
	if len(disj.Disjuncts) == 0 {
		return nil
	}
	return disj
}
