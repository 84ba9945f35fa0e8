package resume

import (
	"regexp"
	"strings"
	"unicode"
)

// Canonical section keys.
const (
	SectionStart               = "start"
	SectionProfessionalSummary = "professional_summary"
	SectionSummary             = "summary"
	SectionObjective           = "objective"
	SectionAboutMe             = "about_me"
	SectionExperience          = "experience"
	SectionEducation           = "education"
	SectionProjects            = "projects"
	SectionSkills              = "skills"
	SectionCertifications      = "certifications"
	SectionAchievements        = "achievements"
	SectionPublications        = "publications"
	SectionInterests           = "interests"
	SectionContact             = "contact"
)

const (
	fallbackSummaryLines = 12
	fallbackSummaryWords = 120
)

// headings maps the letters-only lowercase form of a heading line to its section key.
var headings = map[string]string{
	"professionalsummary":    SectionProfessionalSummary,
	"careersummary":          SectionProfessionalSummary,
	"summary":                SectionSummary,
	"objective":              SectionObjective,
	"careerobjective":        SectionObjective,
	"profile":                SectionAboutMe,
	"aboutme":                SectionAboutMe,
	"experience":             SectionExperience,
	"workexperience":         SectionExperience,
	"professionalexperience": SectionExperience,
	"employment":             SectionExperience,
	"employmenthistory":      SectionExperience,
	"education":              SectionEducation,
	"project":                SectionProjects,
	"projects":               SectionProjects,
	"skill":                  SectionSkills,
	"skills":                 SectionSkills,
	"technicalskills":        SectionSkills,
	"certification":          SectionCertifications,
	"certifications":         SectionCertifications,
	"achievements":           SectionAchievements,
	"awards":                 SectionAchievements,
	"publications":           SectionPublications,
	"interests":              SectionInterests,
	"contact":                SectionContact,
	"contactinformation":     SectionContact,
	"personaldetails":        SectionContact,
}

// summarySections in priority order.
var summarySections = []string{
	SectionProfessionalSummary,
	SectionSummary,
	SectionObjective,
	SectionAboutMe,
}

var contactLineExprs = []*regexp.Regexp{
	regexp.MustCompile(`@`),
	regexp.MustCompile(`(?i)http`),
	regexp.MustCompile(`(?i)www\.`),
	regexp.MustCompile(`^\+?\d[\d\s\-()]{7,}\d$`),
	regexp.MustCompile(`(?i)address`),
	regexp.MustCompile(`(?i)linkedin|github|portfolio`),
	regexp.MustCompile(`(?i)email`),
}

// headingKey reports the section key for a heading line.
func headingKey(line string) (string, bool) {
	var b strings.Builder
	for _, r := range line {
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	key, ok := headings[b.String()]
	return key, ok
}

// Segment splits normalized text into canonical sections. Text before the
// first heading belongs to SectionStart. Repeated headings are joined with a
// blank line and empty sections are dropped.
func Segment(text string) map[string]string {
	sections := make(map[string]string)

	current := SectionStart
	var content []string

	flush := func() {
		body := Normalize(strings.Join(content, "\n"))
		content = content[:0]
		if body == "" {
			return
		}
		if existing, ok := sections[current]; ok {
			sections[current] = existing + "\n\n" + body
			return
		}
		sections[current] = body
	}

	for _, line := range strings.Split(text, "\n") {
		if key, ok := headingKey(strings.TrimSpace(line)); ok {
			flush()
			current = key
			continue
		}
		content = append(content, line)
	}
	flush()

	return sections
}

// SelectSummary returns the first non-empty summary-like section.
func SelectSummary(sections map[string]string) string {
	for _, key := range summarySections {
		if s := strings.TrimSpace(sections[key]); s != "" {
			return s
		}
	}
	return ""
}

// FallbackSummary joins the leading non-contact lines of the document and
// keeps at most 120 words.
func FallbackSummary(text string) string {
	lines := make([]string, 0, fallbackSummaryLines)
	for _, line := range nonEmptyLines(text) {
		if isContactLine(line) {
			continue
		}
		if _, ok := headingKey(line); ok {
			continue
		}
		lines = append(lines, line)
		if len(lines) == fallbackSummaryLines {
			break
		}
	}

	words := strings.Fields(strings.Join(lines, " "))
	if len(words) > fallbackSummaryWords {
		words = words[:fallbackSummaryWords]
	}
	return strings.Join(words, " ")
}

func isContactLine(line string) bool {
	for _, expr := range contactLineExprs {
		if expr.MatchString(line) {
			return true
		}
	}
	return false
}
