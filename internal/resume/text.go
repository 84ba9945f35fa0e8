package resume

import (
	"regexp"
	"strings"
)

var (
	blankRunExpr   = regexp.MustCompile(`[ \t]+`)
	lineEdgeExpr   = regexp.MustCompile(` *\n *`)
	newlineRunExpr = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips carriage returns, collapses runs of spaces and tabs, keeps
// at most one blank line between paragraphs and trims the result.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = blankRunExpr.ReplaceAllString(text, " ")
	text = lineEdgeExpr.ReplaceAllString(text, "\n")
	text = newlineRunExpr.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// nonEmptyLines returns the trimmed, non-empty lines of text.
func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
