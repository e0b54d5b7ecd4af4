package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/markdown"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/search"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/storage"
)

const (
	defaultMaxResults = 20
	defaultRelated    = 5
	maxRelated        = 20
)

type handlers struct {
	search     PaperSearcher
	related    RelatedFinder
	outliner   *markdown.Outliner
	recordsDir string
	logger     *slog.Logger
}

// searchPapers runs a ranked search. Unknown field names are a tool error.
func (h *handlers) searchPapers(ctx context.Context, req *mcp.CallToolRequest, input SearchPapersInput) (
	*mcp.CallToolResult, SearchPapersOutput, error,
) {
	resp, err := h.search.Query(search.Request{
		Query:      input.Query,
		Fields:     input.Fields,
		SearchType: input.SearchType,
	})
	if err != nil {
		return nil, SearchPapersOutput{}, fmt.Errorf("search failed: %w", err)
	}

	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	ranked := resp.Results
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	results := make([]PaperResult, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, PaperResult{
			ID:             r.ID,
			Title:          r.Title,
			Tags:           nonNil(r.Tags),
			TopTags:        nonNil(r.TopTags),
			DetailTags:     nonNil(r.DetailTags),
			SourceType:     r.SourceType,
			UserID:         r.UserID,
			OriginalURL:    r.OriginalURL,
			RelevanceScore: r.RelevanceScore,
			Matches:        nonNil(r.Matches),
		})
	}

	fields := make([]string, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		fields = append(fields, string(f))
	}

	message := resp.Message
	if message == "" && resp.Total == 0 {
		message = "No matching papers found. Try a shorter query or another field."
	}

	return nil, SearchPapersOutput{
		Results:    results,
		Query:      resp.Query,
		Total:      resp.Total,
		Fields:     fields,
		SearchType: resp.SearchType,
		Message:    message,
	}, nil
}

func (h *handlers) suggestQueries(ctx context.Context, req *mcp.CallToolRequest, input SuggestQueriesInput) (
	*mcp.CallToolResult, SuggestQueriesOutput, error,
) {
	return nil, SuggestQueriesOutput{Suggestions: nonNil(h.search.Suggest(input.Query))}, nil
}

func (h *handlers) clearCache(ctx context.Context, req *mcp.CallToolRequest, input ClearCacheInput) (
	*mcp.CallToolResult, ClearCacheOutput, error,
) {
	h.search.ClearCache()
	h.logger.Info("Search cache cleared by tool call")
	return nil, ClearCacheOutput{
		Cleared: true,
		Message: "Search index cache cleared; the next search rebuilds it.",
	}, nil
}

// getPaper reports a missing paper as Found=false rather than an error.
func (h *handlers) getPaper(ctx context.Context, req *mcp.CallToolRequest, input GetPaperInput) (
	*mcp.CallToolResult, GetPaperOutput, error,
) {
	id := strings.TrimSpace(input.ID)
	notFound := GetPaperOutput{
		ID:         id,
		Tags:       []string{},
		TopTags:    []string{},
		DetailTags: []string{},
		Outline:    []OutlineEntry{},
	}
	if id == "" {
		return nil, notFound, nil
	}

	doc, err := h.search.Get(id)
	if err != nil {
		if errors.Is(err, search.ErrPaperNotFound) {
			return nil, notFound, nil
		}
		return nil, GetPaperOutput{}, fmt.Errorf("failed to get paper: %w", err)
	}

	outline := []OutlineEntry{}
	headings, err := h.outliner.Outline([]byte(doc.Content), 0)
	if err != nil {
		h.logger.Warn("Failed to outline paper", "id", id, "error", err)
	}
	for _, hd := range headings {
		outline = append(outline, OutlineEntry{Depth: hd.Depth, Title: hd.Title, HeaderPath: hd.HeaderPath})
	}

	return nil, GetPaperOutput{
		Found:       true,
		ID:          doc.ID,
		Title:       doc.Title,
		Content:     doc.Content,
		Tags:        nonNil(doc.Tags),
		TopTags:     nonNil(doc.TopTags),
		DetailTags:  nonNil(doc.DetailTags),
		SourceType:  doc.SourceType,
		UserID:      doc.UserID,
		OriginalURL: doc.OriginalURL,
		Format:      string(doc.Format),
		Outline:     outline,
	}, nil
}

// status never builds the index; it reports what is cached.
func (h *handlers) status(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
	*mcp.CallToolResult, StatusOutput, error,
) {
	out := statusFromStats(h.search.Stats())
	out.RecordsDir = h.recordsDir

	if h.related != nil {
		out.VectorSearch = true
		count, err := h.related.CountPapers(ctx)
		if err != nil {
			h.logger.Warn("Failed to count embedded papers", "error", err)
			out.VectorError = err.Error()
		} else {
			out.EmbeddedPapers = int64(count)
		}
	}
	return nil, out, nil
}

func statusFromStats(stats index.Stats) StatusOutput {
	out := StatusOutput{
		Cached:          stats.Cached,
		Documents:       stats.Documents,
		Files:           stats.Files,
		BuildID:         stats.BuildID,
		BuildDurationMS: stats.BuildDuration.Milliseconds(),
	}
	if !stats.LatestModTime.IsZero() {
		out.LatestModTime = stats.LatestModTime.UTC().Format(time.RFC3339)
	}
	if !stats.BuiltAt.IsZero() {
		out.BuiltAt = stats.BuiltAt.UTC().Format(time.RFC3339)
	}
	return out
}

func (h *handlers) relatedPapers(ctx context.Context, req *mcp.CallToolRequest, input RelatedPapersInput) (
	*mcp.CallToolResult, RelatedPapersOutput, error,
) {
	id := strings.TrimSpace(input.ID)
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRelated
	}
	limit = min(limit, maxRelated)

	hits, err := h.related.SimilarPapers(ctx, id, limit)
	if err != nil {
		if errors.Is(err, storage.ErrPaperNotFound) {
			return nil, RelatedPapersOutput{
				ID:      id,
				Results: []RelatedPaper{},
				Message: "Paper has not been embedded yet. Run `digest embed` first.",
			}, nil
		}
		return nil, RelatedPapersOutput{}, fmt.Errorf("related search failed: %w", err)
	}

	results := make([]RelatedPaper, 0, len(hits))
	for _, hit := range hits {
		results = append(results, RelatedPaper{
			ID:          hit.Paper.PaperID,
			Title:       hit.Paper.Title,
			Tags:        nonNil(hit.Paper.Tags),
			OriginalURL: hit.Paper.OriginalURL,
			Score:       hit.Score,
		})
	}
	return nil, RelatedPapersOutput{ID: id, Results: results}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
