package interview

import (
	"errors"
	"strings"
	"testing"
)

func twoPerTier() Bank {
	return Bank{
		DifficultyEasy:   {{Text: "e1", IdealAnswer: "ie1"}, {Text: "e2"}},
		DifficultyMedium: {{Text: "m1"}, {Text: "m2"}},
		DifficultyHard:   {{Text: "h1"}, {Text: "h2", IdealAnswer: "ih2"}},
	}
}

func TestBuildWithExactPoolsIsDeterministic(t *testing.T) {
	t.Parallel()

	builder := NewQuestionSetBuilder()

	for run := 0; run < 5; run++ {
		set, err := builder.Build("", twoPerTier())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if set.Role != DefaultRole {
			t.Fatalf("expected default role, got %q", set.Role)
		}

		wantText := []string{"e1", "e2", "m1", "m2", "h1", "h2"}
		wantTier := []Difficulty{DifficultyEasy, DifficultyEasy, DifficultyMedium, DifficultyMedium, DifficultyHard, DifficultyHard}
		wantSeconds := []int{20, 20, 60, 60, 120, 120}

		if len(set.Questions) != len(wantText) {
			t.Fatalf("expected %d questions, got %d", len(wantText), len(set.Questions))
		}

		seen := make(map[string]bool)
		for i, q := range set.Questions {
			if q.Text != wantText[i] || q.Difficulty != wantTier[i] || q.SecondsAllowed != wantSeconds[i] {
				t.Fatalf("question %d: unexpected %+v", i, q)
			}
			prefix := strings.ToLower(string(q.Difficulty)) + "-" + string(rune('0'+i%2)) + "-"
			if !strings.HasPrefix(q.ID, prefix) {
				t.Fatalf("question %d: id %q does not start with %q", i, q.ID, prefix)
			}
			if seen[q.ID] {
				t.Fatalf("duplicate id %q", q.ID)
			}
			seen[q.ID] = true
			if q.Resolved() {
				t.Fatalf("question %d must start unresolved", i)
			}
		}

		if set.Questions[0].IdealAnswer != "ie1" || set.Questions[5].IdealAnswer != "ih2" {
			t.Fatalf("ideal answers were not carried over")
		}
	}
}

func TestBuildKeepsPoolOrderOfSample(t *testing.T) {
	t.Parallel()

	builder := NewQuestionSetBuilder()
	builder.perm = func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = n - 1 - i
		}
		return out
	}

	set, err := builder.Build("Backend (Go)", DefaultBank())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	easy := defaultBank[DifficultyEasy]
	if set.Questions[0].Text != easy[2].Text || set.Questions[1].Text != easy[3].Text {
		t.Fatalf("expected the last two easy questions in pool order, got %q and %q",
			set.Questions[0].Text, set.Questions[1].Text)
	}
	if set.Role != "Backend (Go)" {
		t.Fatalf("unexpected role %q", set.Role)
	}
}

func TestBuildFailsOnSmallPool(t *testing.T) {
	t.Parallel()

	bank := twoPerTier()
	bank[DifficultyHard] = []Template{{Text: "only one"}, {Text: "   "}}

	_, err := NewQuestionSetBuilder().Build("", bank)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestFallbackQuestions(t *testing.T) {
	t.Parallel()

	set := NewQuestionSetBuilder().FallbackQuestions("  ")
	if set.Role != DefaultRole {
		t.Fatalf("unexpected role %q", set.Role)
	}
	if len(set.Questions) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(set.Questions))
	}
	if set.Questions[0].Text != "What is the difference between let, const, and var in JavaScript?" {
		t.Fatalf("unexpected first question %q", set.Questions[0].Text)
	}
	for i, tier := range []Difficulty{DifficultyEasy, DifficultyEasy, DifficultyMedium, DifficultyMedium, DifficultyHard, DifficultyHard} {
		if set.Questions[i].Difficulty != tier {
			t.Fatalf("question %d: expected %s, got %s", i, tier, set.Questions[i].Difficulty)
		}
	}
}

func TestDefaultBankIsCopy(t *testing.T) {
	t.Parallel()

	bank := DefaultBank()
	bank[DifficultyEasy][0].Text = "changed"

	if defaultBank[DifficultyEasy][0].Text == "changed" {
		t.Fatal("DefaultBank must not expose the built-in pools")
	}
}

func TestDecodeBank(t *testing.T) {
	t.Parallel()

	bank, err := DecodeBank(map[string]any{
		"easy": []any{"What is a goroutine?", map[string]any{"text": "What is a channel?", "ideal-answer": "A typed conduit."}},
		"Medium": []any{
			map[string]any{"text": "Explain context cancellation."},
			"Explain sync.WaitGroup.",
		},
		"hard": []any{"Design a rate limiter.", "Design a job queue."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := bank[DifficultyEasy]; len(got) != 2 || got[0].Text != "What is a goroutine?" || got[1].IdealAnswer != "A typed conduit." {
		t.Fatalf("unexpected easy pool: %+v", got)
	}
	if got := bank[DifficultyMedium]; len(got) != 2 || got[1].Text != "Explain sync.WaitGroup." {
		t.Fatalf("unexpected medium pool: %+v", got)
	}

	if _, err := NewQuestionSetBuilder().Build("", bank); err != nil {
		t.Fatalf("decoded bank must build: %v", err)
	}
}

func TestDecodeBankErrors(t *testing.T) {
	t.Parallel()

	if _, err := DecodeBank(map[string]any{"expert": []any{"?"}}); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if _, err := DecodeBank(map[string]any{"easy": []any{map[string]any{"txt": "typo"}}}); err == nil {
		t.Fatal("expected error for unknown question key")
	}

	bank, err := DecodeBank(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bank[DifficultyHard]) != len(defaultBank[DifficultyHard]) {
		t.Fatal("expected default bank for empty config")
	}
}
