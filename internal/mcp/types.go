// Package mcp exposes paper search over the Model Context Protocol.
package mcp

// SearchPapersInput defines the input parameters for the search_papers tool.
type SearchPapersInput struct {
	// Query is matched case-insensitively as a substring.
	Query string `json:"query" jsonschema:"Free-text query matched as a case-insensitive substring"`
	// Fields restricts the searched fields. Empty searches title, content and tags.
	Fields []string `json:"fields,omitempty" jsonschema:"Fields to search: title, content, tags. Overrides search_type"`
	// SearchType is a field preset.
	SearchType string `json:"search_type,omitempty" jsonschema:"Preset: all (default), content (title and content) or tags"`
	// MaxResults truncates the ranked list. Total still counts every match.
	MaxResults int `json:"max_results,omitempty" jsonschema:"Maximum number of results to return (default 20)"`
}

// SearchPapersOutput mirrors the search response envelope.
type SearchPapersOutput struct {
	Results    []PaperResult `json:"results"`
	Query      string        `json:"query"`
	Total      int           `json:"total"`
	Fields     []string      `json:"fields"`
	SearchType string        `json:"search_type"`
	Message    string        `json:"message,omitempty"`
}

// PaperResult is one ranked paper. Content is left out; use get_paper.
type PaperResult struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Tags           []string `json:"tags"`
	TopTags        []string `json:"top_tags"`
	DetailTags     []string `json:"detail_tags"`
	SourceType     string   `json:"source_type"`
	UserID         string   `json:"user_id,omitempty"`
	OriginalURL    string   `json:"original_url,omitempty"`
	RelevanceScore int      `json:"relevance_score"`
	Matches        []string `json:"matches"`
}

// SuggestQueriesInput defines the input parameters for the suggest_queries tool.
type SuggestQueriesInput struct {
	Query string `json:"query" jsonschema:"Partial query of at least two characters"`
}

// SuggestQueriesOutput lists completions drawn from tags and titles.
type SuggestQueriesOutput struct {
	Suggestions []string `json:"suggestions"`
}

// ClearCacheInput takes no parameters.
type ClearCacheInput struct{}

// ClearCacheOutput confirms the cache was dropped.
type ClearCacheOutput struct {
	Cleared bool   `json:"cleared"`
	Message string `json:"message"`
}

// GetPaperInput defines the input parameters for the get_paper tool.
type GetPaperInput struct {
	ID string `json:"id" jsonschema:"Paper identifier, the record file name without extension (e.g. 2401.12345)"`
}

// GetPaperOutput is a full indexed paper with its section outline.
type GetPaperOutput struct {
	Found       bool           `json:"found"`
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"content,omitempty"`
	Tags        []string       `json:"tags"`
	TopTags     []string       `json:"top_tags"`
	DetailTags  []string       `json:"detail_tags"`
	SourceType  string         `json:"source_type,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	OriginalURL string         `json:"original_url,omitempty"`
	Format      string         `json:"format,omitempty"`
	Outline     []OutlineEntry `json:"outline"`
}

// OutlineEntry is one heading of a paper summary.
type OutlineEntry struct {
	Depth      int    `json:"depth"`
	Title      string `json:"title"`
	HeaderPath string `json:"header_path"`
}

// StatusInput takes no parameters.
type StatusInput struct{}

// StatusOutput describes the cached index and, when enabled, the vector store.
type StatusOutput struct {
	RecordsDir      string `json:"records_dir"`
	Cached          bool   `json:"cached"`
	Documents       int    `json:"documents"`
	Files           int    `json:"files"`
	LatestModTime   string `json:"latest_mtime,omitempty"`
	BuildID         string `json:"build_id,omitempty"`
	BuiltAt         string `json:"built_at,omitempty"`
	BuildDurationMS int64  `json:"build_duration_ms"`
	VectorSearch    bool   `json:"vector_search"`
	EmbeddedPapers  int64  `json:"embedded_papers,omitempty"`
	VectorError     string `json:"vector_error,omitempty"`
}

// RelatedPapersInput defines the input parameters for the related_papers tool.
type RelatedPapersInput struct {
	ID    string `json:"id" jsonschema:"Identifier of an embedded paper"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of related papers (default 5, max 20)"`
}

// RelatedPapersOutput lists the nearest embedded papers.
type RelatedPapersOutput struct {
	ID      string         `json:"id"`
	Results []RelatedPaper `json:"results"`
	Message string         `json:"message,omitempty"`
}

// RelatedPaper is a similarity hit.
type RelatedPaper struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	OriginalURL string   `json:"original_url,omitempty"`
	Score       float64  `json:"score"`
}
