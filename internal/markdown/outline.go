package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Heading is one entry of a document outline.
type Heading struct {
	Depth      int    // Nesting depth in the outline, starting at 1
	Title      string // Heading text
	HeaderPath string // Hierarchy: "# Paper > ## Results"
}

// Outliner extracts heading outlines from markdown summaries.
type Outliner struct {
	parser goldmark.Markdown
}

// NewOutliner creates an outliner configured with a goldmark parser.
func NewOutliner() *Outliner {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Outliner{parser: md}
}

// Outline returns the headings of source in document order, up to maxDepth
// levels (0 means all levels). Bold title lines are not headings and are
// not part of the outline.
func (o *Outliner) Outline(source []byte, maxDepth int) ([]Heading, error) {
	doc := o.parser.Parser().Parse(text.NewReader(source))

	opts := []toc.InspectOption{toc.MinDepth(1), toc.Compact(true)}
	if maxDepth > 0 {
		opts = append(opts, toc.MaxDepth(maxDepth))
	}
	tree, err := toc.Inspect(doc, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}

	var headings []Heading
	collectHeadings(tree.Items, nil, &headings)
	return headings, nil
}

// collectHeadings walks TOC items depth-first, carrying the ancestor titles.
func collectHeadings(items toc.Items, ancestors []string, out *[]Heading) {
	for _, item := range items {
		title := strings.TrimSpace(string(item.Title))
		path := append(append([]string(nil), ancestors...), title)

		if title != "" {
			*out = append(*out, Heading{
				Depth:      len(path),
				Title:      title,
				HeaderPath: formatHeaderPath(path),
			})
		}

		if len(item.Items) > 0 {
			collectHeadings(item.Items, path, out)
		}
	}
}

// formatHeaderPath builds a header hierarchy string.
// Example: ["Paper", "Results"] -> "# Paper > ## Results"
func formatHeaderPath(path []string) string {
	if len(path) == 0 {
		return ""
	}

	parts := make([]string, 0, len(path))
	for i, segment := range path {
		parts = append(parts, fmt.Sprintf("%s %s", strings.Repeat("#", i+1), segment))
	}
	return strings.Join(parts, " > ")
}
