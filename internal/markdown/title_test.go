package markdown

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"atx heading", "# Attention Is All You Need\n\nbody", "Attention Is All You Need"},
		{"deeper heading", "intro line\n### Scaling Laws ###\n", "Scaling Laws ###"},
		{"bold line", "**Chain of Thought**\n\ntext", "Chain of Thought"},
		{"bold before heading", "  **First**  \n# Second", "First"},
		{"empty heading skipped", "#\n##   \n# Real", "Real"},
		{"bold too short", "****\n**x**", "x"},
		{"partially bold line", "**Bold** and more\nplain", ""},
		{"none", "just text\nmore text", ""},
		{"empty", "", ""},
		{"hash without space", "#hashtag title", "hashtag title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.content); got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
