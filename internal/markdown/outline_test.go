package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOutline_Hierarchy tests nested headings and their header paths.
func TestOutline_Hierarchy(t *testing.T) {
	input := `# Paper Title

Intro text.

## Method

### Details

Some details here.

## Results

Numbers.
`

	headings, err := NewOutliner().Outline([]byte(input), 0)
	require.NoError(t, err)

	expected := []Heading{
		{Depth: 1, Title: "Paper Title", HeaderPath: "# Paper Title"},
		{Depth: 2, Title: "Method", HeaderPath: "# Paper Title > ## Method"},
		{Depth: 3, Title: "Details", HeaderPath: "# Paper Title > ## Method > ### Details"},
		{Depth: 2, Title: "Results", HeaderPath: "# Paper Title > ## Results"},
	}
	assert.Equal(t, expected, headings)
}

// TestOutline_MaxDepth verifies deeper headings are cut off.
func TestOutline_MaxDepth(t *testing.T) {
	input := "# A\n\n## B\n\n### C\n"

	headings, err := NewOutliner().Outline([]byte(input), 2)
	require.NoError(t, err)

	require.Len(t, headings, 2)
	assert.Equal(t, "# A > ## B", headings[1].HeaderPath)
}

// TestOutline_NoHeadings tests plain text and bold-only titles.
func TestOutline_NoHeadings(t *testing.T) {
	input := "**Bold Title**\n\nJust a paragraph.\n"

	headings, err := NewOutliner().Outline([]byte(input), 0)
	require.NoError(t, err)
	assert.Empty(t, headings)
}

// TestOutline_CompactsMissingLevels tests that a document starting at H2 is not nested under an empty H1.
func TestOutline_CompactsMissingLevels(t *testing.T) {
	headings, err := NewOutliner().Outline([]byte("## Only Section\n\ntext\n"), 0)
	require.NoError(t, err)

	require.Len(t, headings, 1)
	assert.Equal(t, Heading{Depth: 1, Title: "Only Section", HeaderPath: "# Only Section"}, headings[0])
}

func TestFormatHeaderPath(t *testing.T) {
	assert.Equal(t, "", formatHeaderPath(nil))
	assert.Equal(t, "# Installation > ## Prerequisites", formatHeaderPath([]string{"Installation", "Prerequisites"}))
}
