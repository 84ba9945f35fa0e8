package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks a failed external-assist call. Callers recover from it
// with their local fallback and never surface it.
var ErrUnavailable = errors.New("external assist unavailable")

// EvaluationRequest carries one answer to be graded.
type EvaluationRequest struct {
	Question    string
	IdealAnswer string
	Answer      string
	Difficulty  string
}

// Evaluation is a validated grading verdict: Score is within 0..10.
type Evaluation struct {
	Score int
	Notes string
	Raw   string
}

// TranscriptEntry is one question of a finished interview as shown to the summarizer.
type TranscriptEntry struct {
	Question   string
	Difficulty string
	Answer     string
	Score      *int
	TimedOut   bool
}

// SummaryRequest describes a finished interview.
type SummaryRequest struct {
	CandidateName  string
	CandidateEmail string
	CandidatePhone string
	FinalScore     float64
	Entries        []TranscriptEntry
}

type Evaluator interface {
	Evaluate(ctx context.Context, req *EvaluationRequest) (*Evaluation, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, req *SummaryRequest) (string, error)
}

// Bounded runs fn with a deadline and returns once the deadline passes even if
// fn ignores its context. Any failure is wrapped with ErrUnavailable.
func Bounded[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := fn(ctx)
		done <- outcome{value: value, err: err}
	}()

	var zero T
	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	case out := <-done:
		if out.err != nil {
			return zero, fmt.Errorf("%w: %w", ErrUnavailable, out.err)
		}
		return out.value, nil
	}
}
