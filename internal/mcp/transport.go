package mcp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HTTPHandlerOptions configures the HTTP transport behavior.
type HTTPHandlerOptions struct {
	// Stateless disables session management. Search tools never call back
	// into the client, so stateless mode is safe behind a load balancer.
	Stateless bool
	// SessionTimeout closes idle sessions. Zero keeps them until the client leaves.
	SessionTimeout time.Duration
	Logger         *slog.Logger
}

// NewHTTPHandler serves the MCP server over Streamable HTTP.
//
//	mux := http.NewServeMux()
//	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))
func NewHTTPHandler(server *Server, opts *HTTPHandlerOptions) http.Handler {
	if opts == nil {
		opts = &HTTPHandlerOptions{}
	}

	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server.MCPServer()
	}, &mcp.StreamableHTTPOptions{
		Stateless:      opts.Stateless,
		SessionTimeout: opts.SessionTimeout,
		Logger:         opts.Logger,
	})
}
