package index

import (
	"log/slog"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/markdown"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/records"
)

// Normalizer converts loaded records into Documents.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger uses slog.Default().
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Current normalizes a structured record.
//
// Title: paper_info.title_en, then paper_info.title, then the first heading
// of the stored markdown, then the record ID.
// Content: stored markdown, then plain content, then markdown rendered from
// the structured sections.
func (n *Normalizer) Current(rec *records.CurrentRecord) (*Document, error) {
	if rec == nil || rec.ID == "" {
		return nil, ErrEmptyID
	}
	data := rec.SummaryData

	structured, err := data.Structured()
	if err != nil {
		n.logger.Warn("Ignoring malformed structured content", "id", rec.ID, "error", err)
		structured = nil
	}

	stored := data.MarkdownContent
	if stored == "" {
		stored = data.Content
	}

	content := stored
	if content == "" && structured != nil {
		if structured.PaperInfo != nil {
			content = markdown.FromStructured(structured)
		} else {
			content = structured.Content
		}
	}

	title := structuredTitle(structured)
	if title == "" {
		title = markdown.ExtractTitle(stored)
	}
	if title == "" {
		title = rec.ID
	}

	tags := records.EmptyTags()
	if len(data.Tags) > 0 && string(data.Tags) != "null" {
		parsed, _, err := records.ParseTags(data.Tags)
		if err != nil {
			n.logger.Debug("Ignoring malformed tags", "id", rec.ID, "error", err)
		} else {
			tags = parsed
		}
	}

	sourceType := rec.ServiceData.SourceType
	if sourceType == "" {
		sourceType = SourceSystem
	}

	doc := newDocument(rec.ID, title, content, tags, records.FormatCurrent)
	doc.SourceType = sourceType
	doc.UserID = rec.ServiceData.UserID
	doc.OriginalURL = rec.ServiceData.OriginalURL
	return doc, nil
}

// Legacy normalizes a markdown record. Legacy records are always
// system-sourced and carry no user or URL.
func (n *Normalizer) Legacy(rec *records.LegacyRecord) (*Document, error) {
	if rec == nil || rec.ID == "" {
		return nil, ErrEmptyID
	}
	doc := newDocument(rec.ID, markdown.ExtractTitle(rec.Markdown), rec.Markdown, rec.Tags, records.FormatLegacy)
	doc.SourceType = SourceSystem
	return doc, nil
}

func structuredTitle(s *records.StructuredSummary) string {
	if s == nil || s.PaperInfo == nil {
		return ""
	}
	if s.PaperInfo.TitleEn != "" {
		return s.PaperInfo.TitleEn
	}
	return s.PaperInfo.Title
}

func newDocument(id, title, content string, tags records.TagSet, format records.Format) *Document {
	top := cleanTags(tags.Top)
	detail := cleanTags(tags.Detail)
	all := make([]string, 0, len(top)+len(detail))
	all = append(append(all, top...), detail...)

	return &Document{
		ID:         id,
		Title:      title,
		Content:    content,
		Tags:       all,
		TopTags:    top,
		DetailTags: detail,
		Format:     format,
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = records.NormalizeTag(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
