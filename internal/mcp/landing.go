package mcp

import "net/http"

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>AI Paper Digest MCP Server</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: #f8fafc; color: #0f172a; margin: 0; display: flex; justify-content: center; }
  main { max-width: 640px; width: 90%; margin: 3rem 0; }
  h1 { font-size: 1.6rem; margin-bottom: 0.25rem; }
  p.sub { color: #475569; margin-top: 0; }
  h2 { font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.08em; color: #64748b; margin-top: 2rem; }
  pre { background: #0f172a; color: #e2e8f0; border-radius: 6px; padding: 0.9rem; overflow-x: auto; font-size: 0.85rem; }
  code, .endpoint { font-family: "SF Mono", Menlo, monospace; }
  li { margin: 0.3rem 0; }
  a { color: #0369a1; }
</style>
</head>
<body>
<main>
  <h1>AI Paper Digest</h1>
  <p class="sub">Keyword search over summarized arXiv papers via the Model Context Protocol.</p>

  <h2>Connect</h2>
  <pre><code>{"mcpServers": {"paper-digest": {"type": "http", "url": "http://localhost:8080/mcp"}}}</code></pre>

  <h2>Tools</h2>
  <ul>
    <li><code>search_papers</code> ranked substring search over titles, summaries and tags</li>
    <li><code>suggest_queries</code> completions from tags and titles</li>
    <li><code>get_paper</code> full summary with section outline</li>
    <li><code>get_index_status</code> cache state</li>
    <li><code>clear_search_cache</code> force a rebuild</li>
  </ul>

  <h2>Endpoints</h2>
  <ul>
    <li><a href="/mcp" class="endpoint">/mcp</a> MCP Streamable HTTP</li>
    <li><a href="/health" class="endpoint">/health</a> health check</li>
  </ul>
</main>
</body>
</html>`

// NewLandingHandler returns an HTTP handler that serves the landing page at /.
func NewLandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(landingHTML))
	}
}
