package search

import (
	"math"
	"strings"
	"time"

	"github.com/StatTag/StatWrap-sub000/config"
	"github.com/StatTag/StatWrap-sub000/index"
	"github.com/StatTag/StatWrap-sub000/model"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// Relevance blends a backend hit into a score in [0,1]:
//
//	x = (w_raw*log(1+raw) + phrase bonuses + w_term*matched/terms + all-terms bonus) * typeWeight
//	    + content-indexed bonus + recency bonus
//	score = 1 - exp(-compression*x)
func Relevance(doc model.Document, hit index.RawHit, terms []string, phrase string, sc config.ScoringSettings, now time.Time) float64 {
	if hit.Score <= 0 && len(hit.MatchedTerms) == 0 {
		return 0
	}

	x := sc.RawScoreWeight * math.Log1p(math.Max(hit.Score, 0))

	if phrase = strings.ToLower(strings.TrimSpace(phrase)); phrase != "" {
		if strings.Contains(strings.ToLower(doc.Title), phrase) {
			x += sc.TitlePhraseBonus
		}
		if strings.Contains(strings.ToLower(doc.Content), phrase) {
			x += sc.ContentPhraseBonus
		}
	}

	if len(terms) > 0 {
		matched := min(len(hit.MatchedTerms), len(terms))
		x += sc.TermMatchWeight * float64(matched) / float64(len(terms))
		if matched == len(terms) {
			x += sc.AllTermsBonus
		}
	}

	weight, ok := sc.TypeWeights[string(doc.Type)]
	if !ok {
		weight = 1
	}
	x *= weight

	if doc.Item.ContentIndexed {
		x += sc.ContentIndexedBonus
	}
	x += recencyBonus(doc.Item.LastModified, sc, now)

	score := 1 - math.Exp(-sc.Compression*x)
	return clamp01(score)
}

// recencyBonus decays linearly from the full bonus for a file modified now to
// zero at the end of the recency window.
func recencyBonus(lastModified int64, sc config.ScoringSettings, now time.Time) float64 {
	if lastModified <= 0 || sc.RecencyWindowDays <= 0 || sc.RecencyBonus <= 0 {
		return 0
	}
	age := now.UnixMilli() - lastModified
	if age < 0 {
		age = 0
	}
	window := int64(sc.RecencyWindowDays) * dayMillis
	if age >= window {
		return 0
	}
	return sc.RecencyBonus * (1 - float64(age)/float64(window))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// mergeHits combines exact and fuzzy-pass hits. A document keeps the larger of
// its exact score and its down-weighted fuzzy score; matched terms are unioned.
func mergeHits(exact, fuzzy []index.RawHit, fuzzyWeight float64) []index.RawHit {
	if len(fuzzy) == 0 {
		return exact
	}
	byID := make(map[string]int, len(exact)+len(fuzzy))
	merged := make([]index.RawHit, 0, len(exact)+len(fuzzy))
	for _, h := range exact {
		byID[h.ID] = len(merged)
		merged = append(merged, h)
	}
	for _, h := range fuzzy {
		weighted := h.Score * fuzzyWeight
		i, ok := byID[h.ID]
		if !ok {
			byID[h.ID] = len(merged)
			merged = append(merged, index.RawHit{ID: h.ID, Score: weighted, MatchedTerms: h.MatchedTerms})
			continue
		}
		if weighted > merged[i].Score {
			merged[i].Score = weighted
		}
		merged[i].MatchedTerms = unionTerms(merged[i].MatchedTerms, h.MatchedTerms)
	}
	return merged
}

func unionTerms(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out
}
