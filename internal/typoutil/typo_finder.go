package typoutil

import (
	"time"

	"github.com/StatTag/StatWrap-sub000/internal/logging"
)

// DefaultTimeLimit bounds a single typo lookup.
const DefaultTimeLimit = 50 * time.Millisecond

// FindTypos returns the terms of vocabulary within maxDistance edits of term,
// excluding term itself. The scan stops after maxResults matches (when > 0) or
// when timeLimit elapses, whichever comes first.
func FindTypos(term string, vocabulary []string, maxDistance, maxResults int, timeLimit time.Duration) []string {
	typos := make([]string, 0)
	if maxDistance <= 0 || term == "" || len(vocabulary) == 0 {
		return typos
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	termLen := len([]rune(term))
	start := time.Now()

	for i, candidate := range vocabulary {
		if i%256 == 0 && time.Since(start) >= timeLimit {
			logging.ForComponent("search").Warn("typo_search_time_limit",
				"term", term,
				"found", len(typos),
				"unchecked", len(vocabulary)-i,
				"limit_ms", timeLimit.Milliseconds())
			break
		}
		if candidate == term || abs(len([]rune(candidate))-termLen) > maxDistance {
			continue
		}
		if d := Distance(term, candidate, maxDistance); d > 0 && d <= maxDistance {
			typos = append(typos, candidate)
			if maxResults > 0 && len(typos) >= maxResults {
				break
			}
		}
	}
	return typos
}
