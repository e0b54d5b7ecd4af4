package markdown

import (
	"fmt"
	"strings"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/records"
)

// FromStructured renders a structured summary as markdown. It is used for
// records that were saved without a markdown body.
func FromStructured(s *records.StructuredSummary) string {
	if s == nil {
		return ""
	}

	var lines []string
	if info := s.PaperInfo; info != nil {
		if info.TitleZh != "" {
			lines = append(lines, fmt.Sprintf("**%s** / ", info.TitleZh))
		}
		title := info.TitleEn
		if title == "" {
			title = info.Title
		}
		if title != "" {
			lines = append(lines, fmt.Sprintf("**%s**", title))
		}
		lines = append(lines, "\n---\n")
	}

	lines = append(lines, "### 1. One-sentence summary")
	lines = append(lines, strings.TrimSpace(s.OneSentenceSummary))

	if len(s.Innovations) > 0 {
		lines = append(lines, "\n---\n", "### 2. Innovations", "")
		for i, inn := range s.Innovations {
			lines = append(lines,
				fmt.Sprintf("#### %d. %s", i+1, inn.Title),
				"",
				fmt.Sprintf("* **Innovation**: %s", inn.Description),
				fmt.Sprintf("* **Improvement**: %s", inn.Improvement),
				fmt.Sprintf("* **Significance**: %s", inn.Significance),
				"",
			)
		}
	}

	res := s.Results
	if len(res.ExperimentalHighlights) > 0 || len(res.PracticalValue) > 0 {
		lines = append(lines, "\n---\n", "### 3. Results and value", "")
		if len(res.ExperimentalHighlights) > 0 {
			lines = append(lines, "#### **Highlights**", "")
			for _, h := range res.ExperimentalHighlights {
				lines = append(lines, "* "+h)
			}
			lines = append(lines, "")
		}
		if len(res.PracticalValue) > 0 {
			lines = append(lines, "#### **Practical value**", "")
			for _, v := range res.PracticalValue {
				lines = append(lines, "* "+v)
			}
			lines = append(lines, "")
		}
	}

	if len(s.Terminology) > 0 {
		lines = append(lines, "\n---\n", "### 4. Terminology", "")
		for _, term := range s.Terminology {
			lines = append(lines, fmt.Sprintf("* **%s**: %s", term.Term, term.Definition))
		}
		lines = append(lines, "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
