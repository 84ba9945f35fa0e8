package resume

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	minPhoneDigits    = 9
	maxNameLineLength = 50
	maxLooseNameLine  = 30
)

var (
	emailExpr = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneExpr = regexp.MustCompile(`\+?\(?\d[\d \t\-()]{7,}\d`)

	nameWordExpr    = regexp.MustCompile(`^[A-Z][a-z]*(?:[-'][A-Z]?[a-z]+)*$`)
	nameInitialExpr = regexp.MustCompile(`^[A-Z]\.?$`)
	leadingDigit    = regexp.MustCompile(`^\d`)
)

// InferEmail returns the first email address found in text.
func InferEmail(text string) string {
	return strings.TrimSpace(emailExpr.FindString(text))
}

// InferPhone returns the first phone-like run with at least nine digits.
func InferPhone(text string) string {
	for _, match := range phoneExpr.FindAllString(text, -1) {
		if countDigits(match) >= minPhoneDigits {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

// InferName picks the first line made of two to four capitalized words or
// initials. Without such a line it falls back to the first short line that
// does not look like an email or a document title.
func InferName(text string) string {
	lines := make([]string, 0)
	for _, line := range nonEmptyLines(text) {
		if _, heading := headingKey(line); heading {
			continue
		}
		lines = append(lines, line)
	}

	for _, line := range lines {
		if strictName(line) {
			return line
		}
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		if len(line) <= maxLooseNameLine &&
			!strings.Contains(line, "@") &&
			!strings.Contains(lower, "resume") &&
			len(strings.Fields(line)) <= 4 {
			return line
		}
	}

	return ""
}

func strictName(line string) bool {
	if len(line) > maxNameLineLength || leadingDigit.MatchString(line) {
		return false
	}

	lower := strings.ToLower(line)
	for _, banned := range []string{"@", "http", "www.", "resume", "curriculum", ":"} {
		if strings.Contains(lower, banned) {
			return false
		}
	}

	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, word := range words {
		if !nameWordExpr.MatchString(word) && !nameInitialExpr.MatchString(word) {
			return false
		}
	}
	return true
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
