package index

import (
	"slices"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/records"
)

// Source types recorded in a paper's provenance.
const (
	SourceSystem = "system"
	SourceUser   = "user"
)

// Document is the normalized, searchable form of a paper record.
type Document struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Tags        []string       `json:"tags"` // TopTags followed by DetailTags
	TopTags     []string       `json:"top_tags"`
	DetailTags  []string       `json:"detail_tags"`
	SourceType  string         `json:"source_type"`
	UserID      string         `json:"user_id,omitempty"`
	OriginalURL string         `json:"original_url,omitempty"`
	Format      records.Format `json:"format"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	d.Tags = slices.Clone(d.Tags)
	d.TopTags = slices.Clone(d.TopTags)
	d.DetailTags = slices.Clone(d.DetailTags)
	return d
}

func cloneDocuments(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}
