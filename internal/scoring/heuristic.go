package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/interviewer/internal/interview"
)

const (
	shortAnswerChars = 40
	longAnswerChars  = 120
	lengthPoints     = 2
	keywordPoints    = 2
	maxKeywordPoints = 6
	minKeywordLength = 4
)

// RationalePrefix marks scores produced without external assist.
const RationalePrefix = "heuristic:"

var stopwords = map[string]struct{}{
	"about": {}, "between": {}, "could": {}, "describe": {}, "difference": {},
	"does": {}, "each": {}, "example": {}, "explain": {}, "from": {},
	"give": {}, "have": {}, "into": {}, "over": {}, "provide": {},
	"real": {}, "should": {}, "some": {}, "that": {}, "their": {},
	"them": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"those": {}, "using": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "with": {}, "without": {}, "work": {},
	"works": {}, "world": {}, "would": {}, "your": {},
}

// budget is the raw point ceiling per tier. Unknown tiers use the medium budget.
func budget(d interview.Difficulty) int {
	switch d {
	case interview.DifficultyEasy:
		return 8
	case interview.DifficultyHard:
		return 12
	default:
		return 10
	}
}

// Heuristic scores an answer from its length and from how many topic keywords
// of the question it mentions. It is deterministic and never calls out.
func Heuristic(question, answer string, difficulty interview.Difficulty) interview.ScoreResult {
	text := strings.ToLower(strings.TrimSpace(answer))
	length := utf8.RuneCountInString(text)

	raw := 0
	if length > shortAnswerChars {
		raw += lengthPoints
	}
	if length > longAnswerChars {
		raw += lengthPoints
	}

	topics := Keywords(question)
	hits := 0
	if text != "" {
		for _, kw := range topics {
			if strings.Contains(text, kw) {
				hits++
			}
		}
	}
	raw += min(hits*keywordPoints, maxKeywordPoints)

	ceiling := budget(difficulty)
	raw = min(raw, ceiling)
	score := int(math.Round(float64(raw) / float64(ceiling) * 10))

	return interview.ScoreResult{
		Score:     score,
		Rationale: fmt.Sprintf("%s %d chars, %d of %d topic keywords matched", RationalePrefix, length, hits, len(topics)),
	}
}

// Keywords returns the distinct lowercase words of at least four letters in
// the question, minus common question phrasing, in order of appearance.
func Keywords(question string) []string {
	words := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(words))
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < minKeywordLength {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}
	return keywords
}
