package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/StatTag/StatWrap-sub000/internal/tokenizer"
	"github.com/StatTag/StatWrap-sub000/internal/typoutil"
	"github.com/StatTag/StatWrap-sub000/model"
)

const (
	maxPrefixExpansions = 50
	maxTypoExpansions   = 20
)

// InvertedIndex maps a term to the documents and fields containing it and
// ranks matches with BM25.
type InvertedIndex struct {
	mu               sync.RWMutex
	index            map[string]PostingList
	docTerms         map[string][]string       // doc id -> distinct terms, for removal
	fieldLengths     map[string]map[string]int // doc id -> field -> token count
	totalFieldLength map[string]int

	vocabMu    sync.Mutex
	vocabulary []string // sorted terms, rebuilt on demand
	vocabDirty bool
}

// NewInvertedIndex returns an empty native index.
func NewInvertedIndex() *InvertedIndex {
	ii := &InvertedIndex{}
	ii.reset()
	return ii
}

func (ii *InvertedIndex) reset() {
	ii.index = make(map[string]PostingList)
	ii.docTerms = make(map[string][]string)
	ii.fieldLengths = make(map[string]map[string]int)
	ii.totalFieldLength = make(map[string]int)
	ii.markVocabDirty()
}

func (ii *InvertedIndex) markVocabDirty() {
	ii.vocabMu.Lock()
	ii.vocabDirty = true
	ii.vocabMu.Unlock()
}

// Name implements Backend.
func (ii *InvertedIndex) Name() string { return "native" }

// documentFields returns the tokenized searchable fields of doc.
func documentFields(doc model.Document) map[string][]string {
	return map[string][]string{
		FieldTitle:   tokenizer.Tokenize(doc.Title),
		FieldContent: tokenizer.Tokenize(doc.Content),
		FieldTags:    tokenizer.Tokenize(strings.Join(doc.Tags, " ")),
	}
}

// AddDocument indexes doc, replacing any previous version with the same id.
func (ii *InvertedIndex) AddDocument(doc model.Document) error {
	fields := documentFields(doc)

	ii.mu.Lock()
	defer ii.mu.Unlock()

	if _, exists := ii.docTerms[doc.ID]; exists {
		ii.removeLocked(doc.ID)
	}

	lengths := make(map[string]int, len(fields))
	terms := make(map[string]struct{})
	for field, tokens := range fields {
		lengths[field] = len(tokens)
		ii.totalFieldLength[field] += len(tokens)

		positions := make(map[string][]int)
		for pos, tok := range tokens {
			positions[tok] = append(positions[tok], pos)
		}
		for tok, pos := range positions {
			ii.index[tok] = append(ii.index[tok], PostingEntry{
				DocID:     doc.ID,
				FieldName: field,
				Score:     float64(len(pos)),
				Positions: pos,
			})
			terms[tok] = struct{}{}
		}
	}

	docTerms := make([]string, 0, len(terms))
	for tok := range terms {
		docTerms = append(docTerms, tok)
	}
	ii.docTerms[doc.ID] = docTerms
	ii.fieldLengths[doc.ID] = lengths
	ii.markVocabDirty()
	return nil
}

// RemoveDocument drops every posting for id. Unknown ids are ignored.
func (ii *InvertedIndex) RemoveDocument(id string) error {
	ii.mu.Lock()
	defer ii.mu.Unlock()
	if _, exists := ii.docTerms[id]; exists {
		ii.removeLocked(id)
		ii.markVocabDirty()
	}
	return nil
}

func (ii *InvertedIndex) removeLocked(id string) {
	for _, term := range ii.docTerms[id] {
		remaining := ii.index[term].without(id)
		if len(remaining) == 0 {
			delete(ii.index, term)
		} else {
			ii.index[term] = remaining
		}
	}
	for field, n := range ii.fieldLengths[id] {
		ii.totalFieldLength[field] -= n
	}
	delete(ii.docTerms, id)
	delete(ii.fieldLengths, id)
}

// Clear empties the index.
func (ii *InvertedIndex) Clear() error {
	ii.mu.Lock()
	defer ii.mu.Unlock()
	ii.reset()
	return nil
}

// Len returns the number of indexed documents.
func (ii *InvertedIndex) Len() int {
	ii.mu.RLock()
	defer ii.mu.RUnlock()
	return len(ii.docTerms)
}

// TermCount returns the vocabulary size.
func (ii *InvertedIndex) TermCount() int {
	ii.mu.RLock()
	defer ii.mu.RUnlock()
	return len(ii.index)
}

// Close implements Backend.
func (ii *InvertedIndex) Close() error { return nil }

// Query scores every document matching at least one term.
func (ii *InvertedIndex) Query(q Query) ([]RawHit, error) {
	ii.mu.RLock()
	defer ii.mu.RUnlock()

	totalDocs := len(ii.docTerms)
	if totalDocs == 0 || len(q.Terms) == 0 {
		return []RawHit{}, nil
	}

	avgLength := make(map[string]float64, len(ii.totalFieldLength))
	for field, total := range ii.totalFieldLength {
		avgLength[field] = float64(total) / float64(totalDocs)
	}

	scores := make(map[string]float64)
	matched := make(map[string]map[string]struct{})

	for _, queryTerm := range q.Terms {
		for _, term := range ii.expand(queryTerm, q) {
			postings := ii.index[term]
			if len(postings) == 0 {
				continue
			}
			df := postings.docFrequency()
			for _, entry := range postings {
				weight := q.FieldWeights[entry.FieldName]
				if weight <= 0 {
					continue
				}
				fieldLen := ii.fieldLengths[entry.DocID][entry.FieldName]
				scores[entry.DocID] += weight * bm25(entry.Score, fieldLen, avgLength[entry.FieldName], totalDocs, df)
				if matched[entry.DocID] == nil {
					matched[entry.DocID] = make(map[string]struct{})
				}
				matched[entry.DocID][queryTerm] = struct{}{}
			}
		}
	}

	hits := make([]RawHit, 0, len(scores))
	for id, score := range scores {
		terms := make([]string, 0, len(matched[id]))
		for t := range matched[id] {
			terms = append(terms, t)
		}
		sort.Strings(terms)
		hits = append(hits, RawHit{ID: id, Score: score, MatchedTerms: terms})
	}
	sortHits(hits)
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

// expand returns the indexed terms a query term stands for. Caller holds mu.
func (ii *InvertedIndex) expand(term string, q Query) []string {
	if !q.Fuzzy {
		return []string{term}
	}

	vocab := ii.sortedVocabulary()
	seen := map[string]struct{}{term: {}}
	out := []string{term}

	start := sort.SearchStrings(vocab, term)
	for i := start; i < len(vocab) && len(out) <= maxPrefixExpansions; i++ {
		if !strings.HasPrefix(vocab[i], term) {
			break
		}
		if _, ok := seen[vocab[i]]; !ok {
			seen[vocab[i]] = struct{}{}
			out = append(out, vocab[i])
		}
	}

	if len([]rune(term)) >= q.MinFuzzyLen {
		for _, typo := range typoutil.FindTypos(term, vocab, 1, maxTypoExpansions, 0) {
			if _, ok := seen[typo]; !ok {
				seen[typo] = struct{}{}
				out = append(out, typo)
			}
		}
	}
	return out
}

// sortedVocabulary returns the sorted term list, rebuilding it if the index
// changed. Caller holds at least mu.RLock.
func (ii *InvertedIndex) sortedVocabulary() []string {
	ii.vocabMu.Lock()
	defer ii.vocabMu.Unlock()
	if ii.vocabDirty || ii.vocabulary == nil {
		vocab := make([]string, 0, len(ii.index))
		for term := range ii.index {
			vocab = append(vocab, term)
		}
		sort.Strings(vocab)
		ii.vocabulary = vocab
		ii.vocabDirty = false
	}
	return ii.vocabulary
}

func sortHits(hits []RawHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
}
