package search

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
)

const (
	// MinSuggestLength is the shortest partial query that gets suggestions.
	MinSuggestLength = 2
	// MaxSuggestions caps the suggestion list.
	MaxSuggestions = 10
	// titleSuggestionWords is how many leading title words form a suggestion.
	titleSuggestionWords = 3
)

// Suggestions returns up to MaxSuggestions sorted, distinct completions for
// partial: every tag containing it and the leading words of every title
// containing it.
func Suggestions(docs []index.Document, partial string) []string {
	q := fold(strings.TrimSpace(partial))
	if utf8.RuneCountInString(q) < MinSuggestLength {
		return []string{}
	}

	set := make(map[string]struct{})
	for i := range docs {
		doc := &docs[i]
		for _, list := range [][]string{doc.Tags, doc.TopTags, doc.DetailTags} {
			for _, tag := range list {
				if strings.Contains(fold(tag), q) {
					set[tag] = struct{}{}
				}
			}
		}
		if doc.Title != "" && strings.Contains(fold(doc.Title), q) {
			words := strings.Fields(doc.Title)
			if len(words) > titleSuggestionWords {
				words = words[:titleSuggestionWords]
			}
			set[strings.Join(words, " ")] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}
