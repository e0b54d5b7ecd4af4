package records

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStore_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2401.00002.json", `{}`)
	writeFile(t, dir, "2401.00001.json", `{}`)
	writeFile(t, dir, "2312.99999.md", "# Legacy")
	writeFile(t, dir, "2312.99999.tags.json", `["llm"]`)
	writeFile(t, dir, "orphan.tags.json", `["x"]`)
	writeFile(t, dir, "notes.txt", "ignored")

	listing, err := NewStore(dir).Scan()
	require.NoError(t, err)

	require.Len(t, listing.Current, 2)
	assert.Equal(t, "2401.00001", listing.Current[0].ID)
	assert.Equal(t, "2401.00002", listing.Current[1].ID)
	assert.Equal(t, FormatCurrent, listing.Current[0].Format)

	require.Len(t, listing.Legacy, 1)
	assert.Equal(t, "2312.99999", listing.Legacy[0].ID)
	assert.Equal(t, FormatLegacy, listing.Legacy[0].Format)

	assert.Equal(t, 3, listing.Count)
	assert.False(t, listing.LatestModTime.IsZero())
}

func TestStore_Scan_SidecarMtimeCounts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "paper.md", "# Paper")
	sidecar := writeFile(t, dir, "paper.tags.json", `[]`)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "paper.md"), old, old))
	newer := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(sidecar, newer, newer))

	listing, err := NewStore(dir).Scan()
	require.NoError(t, err)
	assert.Equal(t, 1, listing.Count)
	assert.True(t, listing.LatestModTime.Equal(newer), "sidecar mtime should be the latest")
}

func TestStore_Scan_MissingDir(t *testing.T) {
	listing, err := NewStore(filepath.Join(t.TempDir(), "missing")).Scan()
	require.NoError(t, err)
	assert.Equal(t, 0, listing.Count)
	assert.True(t, listing.LatestModTime.IsZero())
}

func TestStore_LoadCurrent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2401.00001.json", `{
		"service_data": {"arxiv_id": "2401.00001", "source_type": "user", "user_id": "alice", "original_url": "https://arxiv.org/abs/2401.00001"},
		"summary_data": {
			"markdown_content": "# Title\n\nBody",
			"structured_content": {"paper_info": {"title_en": "Attention"}, "one_sentence_summary": "Short."},
			"tags": {"top": ["LLM"], "tags": ["Attention"]},
			"updated_at": "2024-01-01T00:00:00"
		}
	}`)

	store := NewStore(dir)
	listing, err := store.Scan()
	require.NoError(t, err)
	require.Len(t, listing.Current, 1)

	rec, err := store.LoadCurrent(listing.Current[0])
	require.NoError(t, err)
	assert.Equal(t, "2401.00001", rec.ID)
	assert.Equal(t, "user", rec.ServiceData.SourceType)
	assert.Equal(t, "alice", rec.ServiceData.UserID)
	assert.Equal(t, "# Title\n\nBody", rec.SummaryData.MarkdownContent)

	structured, err := rec.SummaryData.Structured()
	require.NoError(t, err)
	require.NotNil(t, structured)
	require.NotNil(t, structured.PaperInfo)
	assert.Equal(t, "Attention", structured.PaperInfo.TitleEn)
	assert.Equal(t, "Short.", structured.OneSentenceSummary)
}

func TestStore_LoadCurrent_Errors(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, WithReadRetry(0))

	t.Run("malformed JSON", func(t *testing.T) {
		path := writeFile(t, dir, "bad.json", `{ invalid json`)
		_, err := store.LoadCurrent(Entry{ID: "bad", Path: path, Format: FormatCurrent})
		assert.Error(t, err)
	})

	t.Run("not an object", func(t *testing.T) {
		path := writeFile(t, dir, "list.json", `["a"]`)
		_, err := store.LoadCurrent(Entry{ID: "list", Path: path, Format: FormatCurrent})
		assert.ErrorIs(t, err, ErrNotObject)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := store.LoadCurrent(Entry{ID: "gone", Path: filepath.Join(dir, "gone.json")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong field type", func(t *testing.T) {
		path := writeFile(t, dir, "typed.json", `{"service_data": "oops"}`)
		_, err := store.LoadCurrent(Entry{ID: "typed", Path: path})
		assert.Error(t, err)
	})
}

func TestStore_LoadCurrent_RetriesTruncatedRecord(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "partial.json", `{"summary_data": {"markdown_content": "# Par`)
	store := NewStore(dir, WithReadRetry(2*time.Second))

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(path, []byte(`{"summary_data": {"markdown_content": "# Partial"}}`), 0644)
	}()

	rec, err := store.LoadCurrent(Entry{ID: "partial", Path: path})
	require.NoError(t, err)
	assert.Equal(t, "# Partial", rec.SummaryData.MarkdownContent)
}

func TestStore_LoadCurrent_TruncatedGivesUp(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "partial.json", `{"summary_data": {`)
	store := NewStore(dir, WithReadRetry(50*time.Millisecond))

	start := time.Now()
	_, err := store.LoadCurrent(Entry{ID: "partial", Path: path})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStore_LoadLegacy(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	t.Run("with nested sidecar", func(t *testing.T) {
		path := writeFile(t, dir, "a.md", "# A paper\n\ntext")
		writeFile(t, dir, "a.tags.json", `{"tags": {"top": ["LLM"], "tags": ["RAG"]}}`)

		rec, err := store.LoadLegacy(Entry{ID: "a", Path: path, Format: FormatLegacy})
		require.NoError(t, err)
		assert.Equal(t, "# A paper\n\ntext", rec.Markdown)
		assert.Equal(t, []string{"llm"}, rec.Tags.Top)
		assert.Equal(t, []string{"rag"}, rec.Tags.Detail)
		assert.Equal(t, TagShapeNested, rec.TagShape)
	})

	t.Run("corrupt sidecar leaves tags empty", func(t *testing.T) {
		path := writeFile(t, dir, "b.md", "# B")
		writeFile(t, dir, "b.tags.json", `{ nope`)

		rec, err := store.LoadLegacy(Entry{ID: "b", Path: path, Format: FormatLegacy})
		require.NoError(t, err)
		assert.Empty(t, rec.Tags.All())
		assert.Equal(t, TagShapeNone, rec.TagShape)
	})

	t.Run("no sidecar", func(t *testing.T) {
		path := writeFile(t, dir, "c.md", "plain")
		rec, err := store.LoadLegacy(Entry{ID: "c", Path: path, Format: FormatLegacy})
		require.NoError(t, err)
		assert.Empty(t, rec.Tags.All())
	})

	t.Run("missing markdown", func(t *testing.T) {
		_, err := store.LoadLegacy(Entry{ID: "z", Path: filepath.Join(dir, "z.md")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Health(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, NewStore(dir).Health())
	assert.Error(t, NewStore(filepath.Join(dir, "missing")).Health())

	file := writeFile(t, dir, "file.json", "{}")
	assert.Error(t, NewStore(file).Health())
}
