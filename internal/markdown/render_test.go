package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/records"
)

func TestFromStructured_Full(t *testing.T) {
	s := &records.StructuredSummary{
		PaperInfo:          &records.PaperInfo{TitleZh: "注意力", TitleEn: "Attention Is All You Need"},
		OneSentenceSummary: "  Transformers replace recurrence.  ",
		Innovations: []records.Innovation{
			{Title: "Self-attention", Description: "d", Improvement: "i", Significance: "s"},
		},
		Results: records.Results{
			ExperimentalHighlights: []string{"BLEU 28.4"},
			PracticalValue:         []string{"Faster training"},
		},
		Terminology: []records.TermDefinition{{Term: "MHA", Definition: "multi-head attention"}},
	}

	md := FromStructured(s)

	assert.True(t, strings.HasPrefix(md, "**注意力** / \n**Attention Is All You Need**"))
	assert.Contains(t, md, "### 1. One-sentence summary\nTransformers replace recurrence.")
	assert.Contains(t, md, "#### 1. Self-attention")
	assert.Contains(t, md, "* **Improvement**: i")
	assert.Contains(t, md, "* BLEU 28.4")
	assert.Contains(t, md, "* Faster training")
	assert.Contains(t, md, "* **MHA**: multi-head attention")
	assert.True(t, strings.HasSuffix(md, "\n"))

	// The rendered markdown feeds the title heuristic for records without a title field.
	assert.Equal(t, "Attention Is All You Need", ExtractTitle(md))
}

func TestFromStructured_SummaryOnly(t *testing.T) {
	md := FromStructured(&records.StructuredSummary{OneSentenceSummary: "Only this."})

	assert.Equal(t, "### 1. One-sentence summary\nOnly this.\n", md)
	assert.NotContains(t, md, "Innovations")
	assert.NotContains(t, md, "Terminology")
}

func TestFromStructured_Nil(t *testing.T) {
	assert.Equal(t, "", FromStructured(nil))
}
