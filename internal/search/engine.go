package search

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
)

// Scoring weights.
const (
	TitleWeight   = 3
	ContentWeight = 1
	TagWeight     = 2
)

const (
	// ContextChars is how many characters of text surround a match on each side.
	ContextChars = 50
	// MaxContexts caps the snippets reported per text field.
	MaxContexts = 3
	// MaxMatches caps the match explanations kept on a result.
	MaxMatches = 5
)

// Match explanation prefixes.
const (
	titleLabel   = "title: "
	contentLabel = "content: "
	tagLabel     = "tag: "
)

// Result is a matching document with its score and match explanations.
type Result struct {
	index.Document
	RelevanceScore int      `json:"relevance_score"`
	Matches        []string `json:"matches"`
}

// Rank scores docs against query and returns the matching ones, highest
// score first. Equal scores keep the order of docs. A blank query matches
// nothing.
func Rank(docs []index.Document, query string, fields []Field, logger *slog.Logger) []Result {
	q := fold(strings.TrimSpace(query))
	results := []Result{}
	if q == "" {
		return results
	}
	if logger == nil {
		logger = slog.Default()
	}

	fs := newFieldSet(fields)
	for i := range docs {
		score, matches, err := scoreSafe(&docs[i], q, fs)
		if err != nil {
			logger.Error("Failed to score document", "id", docs[i].ID, "error", err)
			continue
		}
		if score == 0 {
			continue
		}
		if len(matches) > MaxMatches {
			matches = matches[:MaxMatches]
		}
		results = append(results, Result{
			Document:       docs[i],
			RelevanceScore: score,
			Matches:        matches,
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return b.RelevanceScore - a.RelevanceScore
	})
	return results
}

func scoreSafe(doc *index.Document, q string, fs fieldSet) (score int, matches []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, matches, err = 0, nil, fmt.Errorf("scoring panic: %v", r)
		}
	}()
	score, matches = scoreDocument(doc, q, fs)
	return score, matches, nil
}

// scoreDocument expects q to be folded and non-empty.
func scoreDocument(doc *index.Document, q string, fs fieldSet) (int, []string) {
	score := 0
	matches := []string{}

	if fs.title && doc.Title != "" {
		if n := strings.Count(fold(doc.Title), q); n > 0 {
			score += n * TitleWeight
			for _, c := range matchContexts(doc.Title, q) {
				matches = append(matches, titleLabel+c)
			}
		}
	}

	if fs.content && doc.Content != "" {
		if n := strings.Count(fold(doc.Content), q); n > 0 {
			score += n * ContentWeight
			for _, c := range matchContexts(doc.Content, q) {
				matches = append(matches, contentLabel+c)
			}
		}
	}

	if fs.tags {
		tagHits := 0
		for _, list := range [][]string{doc.Tags, doc.TopTags, doc.DetailTags} {
			for _, tag := range list {
				if strings.Contains(fold(tag), q) {
					tagHits++
					matches = append(matches, tagLabel+tag)
				}
			}
		}
		score += tagHits * TagWeight
	}

	return score, matches
}

// matchContexts returns up to MaxContexts snippets of text around
// occurrences of q. Scanning resumes one character after each match start,
// so overlapping occurrences are each reported.
func matchContexts(text, q string) []string {
	runes := []rune(text)
	folded := []rune(fold(text))
	needle := []rune(q)

	var contexts []string
	for pos := indexRunes(folded, needle, 0); pos >= 0 && len(contexts) < MaxContexts; pos = indexRunes(folded, needle, pos+1) {
		start := max(0, pos-ContextChars)
		end := min(len(runes), pos+len(needle)+ContextChars)

		snippet := string(runes[start:end])
		if start > 0 {
			snippet = "..." + snippet
		}
		if end < len(runes) {
			snippet += "..."
		}
		contexts = append(contexts, strings.TrimSpace(snippet))
	}
	return contexts
}

func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// fold lower-cases s rune by rune, so rune offsets in the result match s.
func fold(s string) string {
	return strings.Map(unicode.ToLower, s)
}
