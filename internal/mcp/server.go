package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/markdown"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/search"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/storage"
)

// PaperSearcher is the search facade. *search.Service implements it.
type PaperSearcher interface {
	Query(req search.Request) (search.Response, error)
	Suggest(partial string) []string
	ClearCache()
	Get(id string) (index.Document, error)
	Stats() index.Stats
}

var _ PaperSearcher = (*search.Service)(nil)

// RelatedFinder looks up nearest neighbours of embedded papers.
// *storage.QdrantStorage implements it.
type RelatedFinder interface {
	SimilarPapers(ctx context.Context, paperID string, limit int) ([]*storage.ScoredPaper, error)
	CountPapers(ctx context.Context) (uint64, error)
}

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
	search PaperSearcher
}

// Config holds server dependencies.
type Config struct {
	Search     PaperSearcher
	Related    RelatedFinder // nil leaves related_papers unregistered
	RecordsDir string
	Version    string
	Logger     *slog.Logger
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "v0.1.0"
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ai-paper-digest",
		Version: version,
	}, nil)

	h := &handlers{
		search:     cfg.Search,
		related:    cfg.Related,
		outliner:   markdown.NewOutliner(),
		recordsDir: cfg.RecordsDir,
		logger:     logger,
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_papers",
		Description: "Search summarized arXiv papers by case-insensitive substring match over title, content and tags. Returns papers ranked by relevance with match snippets. Use get_paper for full content.",
	}, h.searchPapers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest_queries",
		Description: "Suggest search queries from paper tags and titles for a partial query of two or more characters.",
	}, h.suggestQueries)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_search_cache",
		Description: "Drop the cached search index so the next search re-reads the paper records.",
	}, h.clearCache)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_paper",
		Description: "Retrieve one summarized paper by identifier, including full markdown content and its section outline.",
	}, h.getPaper)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Report the state of the search index: cached document and file counts, latest record modification time and last build.",
	}, h.status)

	if cfg.Related != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "related_papers",
			Description: "Find papers whose summaries are semantically closest to an already embedded paper.",
		}, h.relatedPapers)
	}

	return &Server{server: server, search: cfg.Search}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
