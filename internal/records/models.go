package records

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format identifies which on-disk layout a record was stored in.
type Format string

const (
	// FormatCurrent is a structured <id>.json record.
	FormatCurrent Format = "current"
	// FormatLegacy is a raw <id>.md summary with an optional <id>.tags.json sidecar.
	FormatLegacy Format = "legacy"
)

// SidecarSuffix marks auxiliary tag files. Files ending in it are never records.
const SidecarSuffix = ".tags.json"

// Entry is one record file found by Scan.
type Entry struct {
	ID      string    // Filename stem, unique per format
	Path    string    // Absolute or dir-relative path of the record file
	Format  Format    // Which loader to use
	ModTime time.Time // Zero if the file vanished between listing and stat
}

// Listing is the result of a directory scan together with its staleness key.
type Listing struct {
	Current []Entry
	Legacy  []Entry

	// Count is len(Current) + len(Legacy).
	Count int
	// LatestModTime is the newest mtime across record files and the
	// sidecars that belong to legacy records.
	LatestModTime time.Time
}

// CurrentRecord is a structured summary record as written by the summarizer.
type CurrentRecord struct {
	ID          string      `json:"-"`
	ServiceData ServiceData `json:"service_data"`
	SummaryData SummaryData `json:"summary_data"`
}

// ServiceData holds provenance for a record.
type ServiceData struct {
	ArxivID        string `json:"arxiv_id,omitempty"`
	SourceType     string `json:"source_type,omitempty"` // "system" or "user"
	CreatedAt      string `json:"created_at,omitempty"`
	FirstCreatedAt string `json:"first_created_at,omitempty"`
	OriginalURL    string `json:"original_url,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	IsAbstractOnly bool   `json:"is_abstract_only,omitempty"`
}

// SummaryData is the summary payload. Structured content and tags are kept
// raw because older writers used several layouts for both.
type SummaryData struct {
	StructuredContent json.RawMessage `json:"structured_content,omitempty"`
	MarkdownContent   string          `json:"markdown_content,omitempty"`
	Content           string          `json:"content,omitempty"`
	Tags              json.RawMessage `json:"tags,omitempty"`
	UpdatedAt         string          `json:"updated_at,omitempty"`
}

// Structured decodes the structured summary. It returns nil, nil when the
// record has none.
func (d SummaryData) Structured() (*StructuredSummary, error) {
	if isEmptyJSON(d.StructuredContent) {
		return nil, nil
	}
	var s StructuredSummary
	if err := json.Unmarshal(d.StructuredContent, &s); err != nil {
		return nil, fmt.Errorf("decode structured content: %w", err)
	}
	return &s, nil
}

// StructuredSummary is the sectioned summary produced by the summarizer.
type StructuredSummary struct {
	PaperInfo          *PaperInfo       `json:"paper_info,omitempty"`
	OneSentenceSummary string           `json:"one_sentence_summary,omitempty"`
	Innovations        []Innovation     `json:"innovations,omitempty"`
	Results            Results          `json:"results"`
	Terminology        []TermDefinition `json:"terminology,omitempty"`

	// Content is set by writers that stored plain markdown instead of sections.
	Content string `json:"content,omitempty"`
}

// PaperInfo describes the summarized paper.
type PaperInfo struct {
	TitleZh        string `json:"title_zh,omitempty"`
	TitleEn        string `json:"title_en,omitempty"`
	Title          string `json:"title,omitempty"`
	Abstract       string `json:"abstract,omitempty"`
	URL            string `json:"url,omitempty"`
	ArxivID        string `json:"arxiv_id,omitempty"`
	Source         string `json:"source,omitempty"`
	SubmissionDate string `json:"submission_date,omitempty"`
}

// Innovation is one contribution of the paper.
type Innovation struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Improvement  string `json:"improvement"`
	Significance string `json:"significance"`
}

// Results lists experimental highlights and practical value.
type Results struct {
	ExperimentalHighlights []string `json:"experimental_highlights,omitempty"`
	PracticalValue         []string `json:"practical_value,omitempty"`
}

// TermDefinition is a glossary entry.
type TermDefinition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// LegacyRecord is a markdown summary plus whatever its sidecar held.
type LegacyRecord struct {
	ID       string
	Markdown string
	Tags     TagSet
	TagShape TagShape
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := string(raw)
	return len(raw) == 0 || s == "null" || s == "{}"
}
