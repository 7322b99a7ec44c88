package search

import (
	"sort"
	"strings"
	"unicode"
)

const (
	maxHighlights    = 3
	highlightContext = 40
)

type span struct{ start, end int }

// highlights returns up to three snippets of content around occurrences of
// terms, each extended by highlightContext runes on both sides. Overlapping
// windows are merged. When content has no occurrence but the title does, the
// title itself is the only highlight.
func highlights(title, content string, terms []string) []string {
	if len(terms) == 0 {
		return nil
	}

	runes := []rune(content)
	lower := lowerRunes(runes)

	var windows []span
	for _, term := range terms {
		needle := lowerRunes([]rune(term))
		if len(needle) == 0 {
			continue
		}
		for from := 0; from <= len(lower)-len(needle); {
			at := indexRunes(lower[from:], needle)
			if at < 0 {
				break
			}
			at += from
			windows = append(windows, span{
				start: max(0, at-highlightContext),
				end:   min(len(runes), at+len(needle)+highlightContext),
			})
			from = at + len(needle)
		}
	}

	if len(windows) == 0 {
		lowerTitle := strings.ToLower(title)
		for _, term := range terms {
			if term != "" && strings.Contains(lowerTitle, strings.ToLower(term)) {
				return []string{title}
			}
		}
		return nil
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	merged := []span{windows[0]}
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.start <= last.end {
			last.end = max(last.end, w.end)
			continue
		}
		merged = append(merged, w)
	}

	out := make([]string, 0, min(len(merged), maxHighlights))
	for _, w := range merged {
		if len(out) == maxHighlights {
			break
		}
		snippet := strings.Join(strings.Fields(string(runes[w.start:w.end])), " ")
		if w.start > 0 {
			snippet = "..." + snippet
		}
		if w.end < len(runes) {
			snippet += "..."
		}
		out = append(out, snippet)
	}
	return out
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
