package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func connect(t *testing.T, cfg *Config) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(cfg)
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool[Out any](t *testing.T, session *mcp.ClientSession, name string, args map[string]any) Out {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "tool %s returned an error result", name)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out Out
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func toolNames(t *testing.T, session *mcp.ClientSession) []string {
	t.Helper()
	list, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, 0, len(list.Tools))
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestServer_ToolsOverMCP(t *testing.T) {
	svc, dir := newTestSearch(t)
	session := connect(t, &Config{Search: svc, RecordsDir: dir, Logger: testLogger()})

	assert.ElementsMatch(t, []string{
		"search_papers", "suggest_queries", "clear_search_cache", "get_paper", "get_index_status",
	}, toolNames(t, session))

	found := callTool[SearchPapersOutput](t, session, "search_papers", map[string]any{"query": "diffusion"})
	require.NotEmpty(t, found.Results)
	assert.Equal(t, "2312.00002", found.Results[0].ID)

	suggested := callTool[SuggestQueriesOutput](t, session, "suggest_queries", map[string]any{"query": "robot"})
	assert.Contains(t, suggested.Suggestions, "robotics")

	paper := callTool[GetPaperOutput](t, session, "get_paper", map[string]any{"id": "2401.00001"})
	assert.True(t, paper.Found)

	status := callTool[StatusOutput](t, session, "get_index_status", map[string]any{})
	assert.True(t, status.Cached)

	cleared := callTool[ClearCacheOutput](t, session, "clear_search_cache", map[string]any{})
	assert.True(t, cleared.Cleared)
}

func TestServer_RelatedToolRegisteredWhenEnabled(t *testing.T) {
	svc, dir := newTestSearch(t)
	session := connect(t, &Config{Search: svc, Related: &fakeRelated{}, RecordsDir: dir, Logger: testLogger()})

	assert.Contains(t, toolNames(t, session), "related_papers")
}

func TestServer_UnknownFieldIsToolError(t *testing.T) {
	svc, dir := newTestSearch(t)
	session := connect(t, &Config{Search: svc, RecordsDir: dir, Logger: testLogger()})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search_papers",
		Arguments: map[string]any{"query": "x", "fields": []string{"abstract"}},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
