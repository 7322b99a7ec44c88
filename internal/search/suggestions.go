package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// suggestionSource implements fuzzy.Source over lowercased candidates.
type suggestionSource []string

func (s suggestionSource) String(i int) string { return s[i] }
func (s suggestionSource) Len() int            { return len(s) }

// Suggestions returns titles and tags containing partial (case-insensitive),
// best fuzzy match first, capped at ui.maxSuggestions. Inputs shorter than
// ui.minSuggestionLength yield an empty list.
func (s *Service) Suggestions(partial string) []string {
	out := []string{}
	partial = strings.TrimSpace(partial)
	if len([]rune(partial)) < s.settings.UI.MinSuggestionLength || s.settings.UI.MaxSuggestions <= 0 {
		return out
	}
	needle := strings.ToLower(partial)

	seen := make(map[string]struct{})
	var originals []string
	consider := func(text string) {
		lower := strings.ToLower(strings.TrimSpace(text))
		if lower == "" || !strings.Contains(lower, needle) {
			return
		}
		if _, dup := seen[lower]; dup {
			return
		}
		seen[lower] = struct{}{}
		originals = append(originals, strings.TrimSpace(text))
	}
	for _, doc := range s.documentStore.Values() {
		consider(doc.Title)
		for _, tag := range doc.Tags {
			consider(tag)
		}
	}
	if len(originals) == 0 {
		return out
	}

	sort.Strings(originals)
	lowered := make(suggestionSource, len(originals))
	for i, o := range originals {
		lowered[i] = strings.ToLower(o)
	}

	used := make(map[int]struct{}, len(originals))
	for _, m := range fuzzy.FindFrom(needle, lowered) {
		if len(out) == s.settings.UI.MaxSuggestions {
			return out
		}
		out = append(out, originals[m.Index])
		used[m.Index] = struct{}{}
	}
	for i, o := range originals {
		if len(out) == s.settings.UI.MaxSuggestions {
			break
		}
		if _, ok := used[i]; !ok {
			out = append(out, o)
		}
	}
	return out
}
