package tokenizer

import (
	"regexp"
	"strings"

	"github.com/StatTag/StatWrap-sub000/config"
)

// nonAlphanumericRegex matches sequences of characters that are neither letters nor digits.
var nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// acronymRegex handles cases like "HTTPRequest" -> "HTTP Request"
var acronymRegex = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)

// camelCaseRegex handles cases like "dataLoader" -> "data Loader" or "myAPI" -> "my API"
var camelCaseRegex = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// Tokenize converts a string into a slice of tokens.
// It splits camel/PascalCase, lowercases the string, and splits by non-alphanumeric characters.
func Tokenize(text string) []string {
	// 1. Split camelCase/PascalCase
	processedText := acronymRegex.ReplaceAllString(text, "$1 $2")
	processedText = camelCaseRegex.ReplaceAllString(processedText, "$1 $2")

	// 2. Lowercase
	lowerText := strings.ToLower(processedText)

	// 3. Split by non-alphanumeric characters
	split := nonAlphanumericRegex.Split(lowerText, -1)

	tokens := make([]string, 0)
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// UniqueTokens tokenizes text and drops repeated tokens, keeping first-seen order.
func UniqueTokens(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// ProcessedQuery is the result of query preprocessing.
type ProcessedQuery struct {
	Original  string   `json:"original"`
	Processed string   `json:"processed"` // kept words joined by a space; this is what gets matched
	Terms     []string `json:"terms"`
	Kept      []string `json:"kept"`
	Removed   []string `json:"removed"`
}

// Empty reports whether nothing searchable is left.
func (p ProcessedQuery) Empty() bool {
	return len(p.Terms) == 0
}

// ProcessQuery tokenizes a raw query and, when enabled, removes stop words and
// words shorter than MinWordLength. If every word would be removed the original
// words are kept.
func ProcessQuery(query string, settings config.PreprocessingSettings) ProcessedQuery {
	words := UniqueTokens(query)
	result := ProcessedQuery{Original: query, Kept: []string{}, Removed: []string{}}

	if !settings.EnableStopWords {
		result.Kept = words
	} else {
		stop := make(map[string]struct{}, len(settings.StopWords))
		for _, w := range settings.StopWords {
			stop[strings.ToLower(w)] = struct{}{}
		}
		for _, w := range words {
			_, isStop := stop[w]
			if isStop || len([]rune(w)) < settings.MinWordLength {
				result.Removed = append(result.Removed, w)
				continue
			}
			result.Kept = append(result.Kept, w)
		}
		if len(result.Kept) == 0 {
			result.Kept = words
			result.Removed = []string{}
		}
	}

	result.Terms = result.Kept
	result.Processed = strings.Join(result.Kept, " ")
	return result
}
