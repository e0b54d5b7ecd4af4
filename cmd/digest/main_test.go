package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/search"
)

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("2401.00001.json", `{
		"service_data": {"source_type": "system"},
		"summary_data": {
			"structured_content": {"paper_info": {"title_en": "Transformer Models"}},
			"markdown_content": "transformer transformer",
			"tags": {"top": ["llm"], "tags": ["attention"]}
		}
	}`)
	write("2312.00002.md", "# Diffusion Policies\nRobots learn from diffusion.")
	write("2312.00002.tags.json", `["Robotics"]`)
	return dir
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("VECTOR_SEARCH", "false")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), errOut.String())
	return out.String()
}

func TestSearchCommand(t *testing.T) {
	dir := fixtureDir(t)

	out := execute(t, "--dir", dir, "search", "transformer")
	assert.Contains(t, out, "1. [5] Transformer Models (2401.00001)")
	assert.Contains(t, out, "title: Transformer Models")
	assert.Contains(t, out, `1 of 1 papers matched "transformer"`)

	out = execute(t, "--dir", dir, "search", "   ")
	assert.Contains(t, out, search.EmptyQueryMessage)
}

func TestSearchCommandJSON(t *testing.T) {
	dir := fixtureDir(t)

	out := execute(t, "--dir", dir, "search", "--type", "tags", "--json", "robotics")

	var resp search.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "2312.00002", resp.Results[0].ID)
	assert.Equal(t, "tags", resp.SearchType)
	assert.Equal(t, []search.Field{search.FieldTags}, resp.Fields)
	// detail tag counted in both tags and detail_tags
	assert.Equal(t, 4, resp.Results[0].RelevanceScore)
}

func TestSearchCommandRejectsUnknownField(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("VECTOR_SEARCH", "false")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dir", fixtureDir(t), "search", "--fields", "abstract", "x"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, search.ErrUnknownField)
}

func TestSuggestCommand(t *testing.T) {
	dir := fixtureDir(t)

	out := execute(t, "--dir", dir, "suggest", "ro")
	assert.Equal(t, "robotics\n", out)

	out = execute(t, "--dir", dir, "suggest", "r")
	assert.Empty(t, out)
}

func TestStatusCommand(t *testing.T) {
	dir := fixtureDir(t)

	out := execute(t, "--dir", dir, "status")
	assert.Contains(t, out, "Documents: 2")
	assert.Contains(t, out, "Files:     2")

	out = execute(t, "--dir", dir, "status", "--json")
	var stats index.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.True(t, stats.Cached)
	assert.Equal(t, 2, stats.Documents)
	assert.NotEmpty(t, stats.BuildID)
}
