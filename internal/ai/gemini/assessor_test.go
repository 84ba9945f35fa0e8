package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestAssessorEvaluate(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"score\": 8, \"notes\": \"Covers scoping and hoisting\"}\n```"}
	assessor := NewAssessor(stub, 0, zap.NewNop())

	evaluation, err := assessor.Evaluate(context.Background(), &ai.EvaluationRequest{
		Question:    "What is the difference between let, const, and var?",
		IdealAnswer: "let and const are block scoped",
		Answer:      "var is function scoped and hoisted",
		Difficulty:  "Easy",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if evaluation.Score != 8 {
		t.Fatalf("expected score 8, got %d", evaluation.Score)
	}
	if evaluation.Notes != "Covers scoping and hoisting" {
		t.Fatalf("unexpected notes: %q", evaluation.Notes)
	}
	if evaluation.Raw == "" {
		t.Fatalf("expected raw response to be kept")
	}

	for _, want := range []string{
		"Difficulty: Easy.",
		"What is the difference between let, const, and var?",
		"let and const are block scoped",
		"var is function scoped and hoisted",
	} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("prompt is missing %q: %s", want, stub.lastPrompt)
		}
	}
	if stub.lastSystem != scoreSystemPrompt {
		t.Fatalf("unexpected system prompt: %q", stub.lastSystem)
	}
}

func TestAssessorEvaluateRejectsMalformedResponses(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":         "I think this deserves a 7",
		"score as string":  `{"score": "7", "notes": "fine"}`,
		"missing notes":    `{"score": 7}`,
		"missing score":    `{"notes": "fine"}`,
		"notes not string": `{"score": 7, "notes": 3}`,
		"above range":      `{"score": 11, "notes": "generous"}`,
		"below range":      `{"score": -1, "notes": "harsh"}`,
	}

	for name, response := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assessor := NewAssessor(&stubGenerator{response: response}, 0, nil)
			if _, err := assessor.Evaluate(context.Background(), &ai.EvaluationRequest{Question: "q", Answer: "a"}); err == nil {
				t.Fatalf("expected error for %q", response)
			}
		})
	}
}

func TestAssessorEvaluatePropagatesGeneratorError(t *testing.T) {
	boom := errors.New("network down")
	assessor := NewAssessor(&stubGenerator{err: boom}, 0, zap.NewNop())

	_, err := assessor.Evaluate(context.Background(), &ai.EvaluationRequest{Question: "q", Answer: "a"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestAssessorSummarize(t *testing.T) {
	stub := &stubGenerator{response: `{"summary": "  Solid fundamentals, weak on scaling.  "}`}
	assessor := NewAssessor(stub, 0, zap.NewNop())

	seven := 7
	summary, err := assessor.Summarize(context.Background(), &ai.SummaryRequest{
		CandidateName: "Jane Doe",
		FinalScore:    3.5,
		Entries: []ai.TranscriptEntry{
			{Question: "Explain useState", Difficulty: "Easy", Answer: "state hook", Score: &seven},
			{Question: "Scale a chat service", Difficulty: "Hard", TimedOut: true},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "Solid fundamentals, weak on scaling." {
		t.Fatalf("unexpected summary: %q", summary)
	}

	for _, want := range []string{
		"Name: Jane Doe",
		"Email: Unknown",
		"Final score: 3.5/10",
		"Q1: Explain useState\nDifficulty: Easy\nScore: 7\nAnswer: state hook",
		"Q2: Scale a chat service\nDifficulty: Hard\nScore: N/A\nAnswer: (timed out)",
	} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("prompt is missing %q:\n%s", want, stub.lastPrompt)
		}
	}
}

func TestAssessorSummarizeRejectsEmptySummary(t *testing.T) {
	assessor := NewAssessor(&stubGenerator{response: `{"summary": "   "}`}, 0, zap.NewNop())

	if _, err := assessor.Summarize(context.Background(), &ai.SummaryRequest{}); err == nil {
		t.Fatal("expected error for empty summary")
	}
}

func TestExtractJSONHandlesCodeBlock(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"`{\"a\":1}`":             `{"a":1}`,
	}

	for in, want := range cases {
		if got := extractJSON(in); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}
