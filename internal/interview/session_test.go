package interview

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T) *Session {
	t.Helper()

	set, err := NewQuestionSetBuilder().Build("", twoPerTier())
	if err != nil {
		t.Fatalf("building questions: %v", err)
	}
	return NewSession("cand-1", set, t0)
}

func TestNewSessionStartsInProgress(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	if s.Status != StatusInProgress || s.FinalScore != nil || s.FinalizedAt != nil {
		t.Fatalf("unexpected initial state: %+v", s)
	}
	if s.CandidateID != "cand-1" || s.ID == "" {
		t.Fatalf("unexpected identity: %q %q", s.ID, s.CandidateID)
	}
	for i, q := range s.Questions {
		if !q.StartedAt.Equal(t0) {
			t.Fatalf("question %d: unexpected start %v", i, q.StartedAt)
		}
	}

	idx, q, ok := s.Current()
	if !ok || idx != 0 || q.Text != "e1" {
		t.Fatalf("unexpected current question: %d %+v %v", idx, q, ok)
	}
}

func TestSubmitAnswerRecordsResult(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	at := t0.Add(15 * time.Second)

	if err := s.SubmitAnswer(0, "  block scoping  ", ScoreResult{Score: 14, Rationale: "good"}, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := s.Questions[0]
	if q.Answer == nil || *q.Answer != "block scoping" {
		t.Fatalf("unexpected answer: %v", q.Answer)
	}
	if q.Score == nil || *q.Score != 10 {
		t.Fatalf("expected score clamped to 10, got %v", q.Score)
	}
	if q.Rationale != "good" || q.AnsweredAt == nil || !q.AnsweredAt.Equal(at) || q.TimedOut {
		t.Fatalf("unexpected question state: %+v", q)
	}

	idx, _, _ := s.Current()
	if idx != 1 {
		t.Fatalf("expected current index 1, got %d", idx)
	}
}

func TestSubmitAfterSkipIsRejected(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	if err := s.Skip(2, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.SubmitAnswer(2, "late answer", ScoreResult{Score: 9}, t0.Add(time.Minute))
	if !errors.Is(err, ErrQuestionAlreadyResolved) {
		t.Fatalf("expected ErrQuestionAlreadyResolved, got %v", err)
	}

	q := s.Questions[2]
	if q.Score == nil || *q.Score != 0 || q.Answer != nil || !q.TimedOut || q.Rationale != SkipRationale {
		t.Fatalf("skipped question changed: %+v", q)
	}

	if err := s.Skip(2, t0); !errors.Is(err, ErrQuestionAlreadyResolved) {
		t.Fatalf("expected ErrQuestionAlreadyResolved on second skip, got %v", err)
	}
}

func TestInvalidQuestionIndex(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	for _, idx := range []int{-1, 6, 100} {
		if err := s.SubmitAnswer(idx, "x", ScoreResult{}, t0); !errors.Is(err, ErrInvalidQuestionIndex) {
			t.Fatalf("index %d: expected ErrInvalidQuestionIndex, got %v", idx, err)
		}
		if err := s.Skip(idx, t0); !errors.Is(err, ErrInvalidQuestionIndex) {
			t.Fatalf("index %d: expected ErrInvalidQuestionIndex, got %v", idx, err)
		}
	}
}

func TestResolutionInvariantHolds(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	check := func() {
		t.Helper()
		for i, q := range s.Questions {
			if q.Answer != nil && q.TimedOut {
				t.Fatalf("question %d both answered and timed out", i)
			}
			if (q.Score != nil) != q.Resolved() {
				t.Fatalf("question %d score presence does not match resolution", i)
			}
		}
	}

	check()
	for i := range s.Questions {
		var err error
		if i%2 == 0 {
			err = s.SubmitAnswer(i, "answer", ScoreResult{Score: i}, t0)
		} else {
			err = s.Skip(i, t0)
		}
		if err != nil {
			t.Fatalf("transition %d: %v", i, err)
		}
		check()
	}

	if !s.AllResolved() || s.Resolved() != 6 || s.Answered() != 3 {
		t.Fatalf("unexpected counters: resolved=%d answered=%d", s.Resolved(), s.Answered())
	}

	progress := s.Progress()
	if !progress.Completed || progress.Question != nil || progress.Index != -1 || progress.Status != StatusInProgress {
		t.Fatalf("unexpected progress: %+v", progress)
	}
}

func TestCompletedSessionRejectsTransitions(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.Status = StatusCompleted

	if err := s.Skip(0, t0); !errors.Is(err, ErrQuestionAlreadyResolved) {
		t.Fatalf("expected ErrQuestionAlreadyResolved, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if err := s.SubmitAnswer(0, "first", ScoreResult{Score: 5}, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := s.Clone()
	*c.Questions[0].Score = 1
	*c.Questions[0].Answer = "changed"
	c.Questions[1].Text = "changed"

	if *s.Questions[0].Score != 5 || *s.Questions[0].Answer != "first" || s.Questions[1].Text != "e2" {
		t.Fatal("clone shares state with the original")
	}
}

func TestSessionWireShape(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if err := s.Skip(0, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if wire["status"] != "in_progress" || wire["candidateRef"] != "cand-1" {
		t.Fatalf("unexpected wire fields: %v", wire)
	}
	if _, ok := wire["finalScore"]; ok {
		t.Fatal("finalScore must be absent before completion")
	}

	first := wire["questions"].([]any)[0].(map[string]any)
	if first["difficulty"] != "Easy" || first["timedOut"] != true || first["score"] != float64(0) {
		t.Fatalf("unexpected question wire shape: %v", first)
	}
	if _, ok := first["answer"]; ok {
		t.Fatal("skipped question must not carry an answer")
	}
}
