package search

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
)

// Index supplies documents to search. *index.Builder implements it.
type Index interface {
	Documents() []index.Document
	ClearCache()
	Stats() index.Stats
}

var _ Index = (*index.Builder)(nil)

// EmptyQueryMessage is reported by Query for a blank query.
const EmptyQueryMessage = "Please provide a search query"

// Request is a search with field selection by name or preset.
type Request struct {
	Query      string
	Fields     []string // explicit field names; win over SearchType
	SearchType string   // all, content or tags
}

// Response is the envelope returned to tool and CLI callers.
type Response struct {
	Results    []Result `json:"results"`
	Query      string   `json:"query"`
	Total      int      `json:"total"`
	Fields     []Field  `json:"fields,omitempty"`
	SearchType string   `json:"search_type,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// Service is the search facade over a cached index.
type Service struct {
	index  Index
	logger *slog.Logger
}

// NewService creates a search service. A nil logger uses slog.Default().
func NewService(idx Index, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{index: idx, logger: logger}
}

// Search ranks the indexed documents against query. Empty fields selects
// title, content and tags. A blank query returns an empty list without
// touching the index.
func (s *Service) Search(query string, fields []Field) []Result {
	if strings.TrimSpace(query) == "" {
		return []Result{}
	}
	return Rank(s.index.Documents(), query, fields, s.logger)
}

// Query resolves the request's fields and runs Search.
func (s *Service) Query(req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	searchType := strings.TrimSpace(req.SearchType)
	if searchType == "" {
		searchType = SearchTypeAll
	}

	fields, err := ParseFields(req.Fields)
	if err != nil {
		return Response{}, fmt.Errorf("parse fields: %w", err)
	}
	if len(fields) == 0 {
		fields = FieldsForSearchType(searchType)
	}

	if query == "" {
		return Response{
			Results:    []Result{},
			Query:      query,
			Fields:     fields,
			SearchType: searchType,
			Message:    EmptyQueryMessage,
		}, nil
	}

	results := s.Search(query, fields)
	return Response{
		Results:    results,
		Query:      query,
		Total:      len(results),
		Fields:     fields,
		SearchType: searchType,
	}, nil
}

// Suggest returns completions for a partial query. Inputs shorter than
// MinSuggestLength after trimming return an empty list without touching
// the index.
func (s *Service) Suggest(partial string) []string {
	if len([]rune(strings.TrimSpace(partial))) < MinSuggestLength {
		return []string{}
	}
	return Suggestions(s.index.Documents(), partial)
}

// ClearCache discards the cached index so the next call rebuilds it.
func (s *Service) ClearCache() {
	s.index.ClearCache()
}

// Get returns the indexed document with the given ID.
func (s *Service) Get(id string) (index.Document, error) {
	id = strings.TrimSpace(id)
	for _, doc := range s.index.Documents() {
		if doc.ID == id {
			return doc, nil
		}
	}
	return index.Document{}, fmt.Errorf("%w: %s", ErrPaperNotFound, id)
}

// Stats reports on the cached index without building it.
func (s *Service) Stats() index.Stats {
	return s.index.Stats()
}
