package interview

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// DefaultRole is used when no role label is given.
const DefaultRole = "Full Stack (React/Node)"

const questionsPerTier = 2

// Template is a bank entry before it becomes part of a session.
type Template struct {
	Text        string `mapstructure:"text" json:"text"`
	IdealAnswer string `mapstructure:"ideal-answer" json:"idealAnswer"`
}

// Bank maps every tier to its question pool.
type Bank map[Difficulty][]Template

// QuestionSet is the ordered battery of one session.
type QuestionSet struct {
	Role      string
	Questions []QuestionItem
}

type QuestionSetBuilder struct {
	perm  func(n int) []int
	newID func() string
}

func NewQuestionSetBuilder() *QuestionSetBuilder {
	return &QuestionSetBuilder{perm: rand.Perm, newID: uuid.NewString}
}

// Build samples two questions per tier without replacement. Picked questions
// keep their pool order, so a pool of exactly two always yields both in order.
func (b *QuestionSetBuilder) Build(role string, bank Bank) (*QuestionSet, error) {
	questions := make([]QuestionItem, 0, len(Tiers)*questionsPerTier)

	for _, tier := range Tiers {
		pool := usable(bank[tier])
		if len(pool) < questionsPerTier {
			return nil, fmt.Errorf("%w: %s tier has %d questions, need %d",
				ErrPoolExhausted, strings.ToLower(string(tier)), len(pool), questionsPerTier)
		}

		picked := b.perm(len(pool))[:questionsPerTier]
		slices.Sort(picked)

		for i, idx := range picked {
			questions = append(questions, b.item(tier, i, pool[idx]))
		}
	}

	return &QuestionSet{Role: roleOrDefault(role), Questions: questions}, nil
}

// FallbackQuestions returns the fixed battery used when the bank cannot
// supply a full set.
func (b *QuestionSetBuilder) FallbackQuestions(role string) *QuestionSet {
	questions := make([]QuestionItem, 0, len(Tiers)*questionsPerTier)
	for _, tier := range Tiers {
		for i, tpl := range fallbackBank[tier] {
			questions = append(questions, b.item(tier, i, tpl))
		}
	}
	return &QuestionSet{Role: roleOrDefault(role), Questions: questions}
}

func (b *QuestionSetBuilder) item(tier Difficulty, i int, tpl Template) QuestionItem {
	return QuestionItem{
		ID:             fmt.Sprintf("%s-%d-%s", strings.ToLower(string(tier)), i, b.newID()),
		Text:           strings.TrimSpace(tpl.Text),
		Difficulty:     tier,
		IdealAnswer:    strings.TrimSpace(tpl.IdealAnswer),
		SecondsAllowed: tier.SecondsAllowed(),
	}
}

func usable(pool []Template) []Template {
	out := make([]Template, 0, len(pool))
	for _, tpl := range pool {
		if strings.TrimSpace(tpl.Text) != "" {
			out = append(out, tpl)
		}
	}
	return out
}

func roleOrDefault(role string) string {
	if role = strings.TrimSpace(role); role == "" {
		return DefaultRole
	}
	return role
}

// DecodeBank decodes the questions.pools configuration section. Keys are the
// tier names in any case; entries are either plain question strings or
// objects with text and ideal-answer. An empty section yields DefaultBank.
func DecodeBank(raw map[string]any) (Bank, error) {
	if len(raw) == 0 {
		return DefaultBank(), nil
	}

	var pools struct {
		Easy   []Template `mapstructure:"easy"`
		Medium []Template `mapstructure:"medium"`
		Hard   []Template `mapstructure:"hard"`
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncType(stringToTemplateHook),
		ErrorUnused: true,
		Result:      &pools,
	})
	if err != nil {
		return nil, fmt.Errorf("creating question bank decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding question bank: %w", err)
	}

	return Bank{
		DifficultyEasy:   pools.Easy,
		DifficultyMedium: pools.Medium,
		DifficultyHard:   pools.Hard,
	}, nil
}

func stringToTemplateHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(Template{}) {
		return data, nil
	}
	return Template{Text: data.(string)}, nil
}
