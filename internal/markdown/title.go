package markdown

import "strings"

// ExtractTitle returns the first heading-like line of a markdown document:
// a line starting with '#' (hashes stripped) or a line wrapped entirely in
// '**'. It returns "" when neither occurs.
func ExtractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "#") && len(line) > 1:
			if title := strings.TrimSpace(strings.TrimLeft(line, "#")); title != "" {
				return title
			}
		case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4:
			if title := strings.TrimSpace(line[2 : len(line)-2]); title != "" {
				return title
			}
		}
	}
	return ""
}
