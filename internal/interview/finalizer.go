package interview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/candidate"
	"github.com/spigell/interviewer/internal/logger"
)

const defaultAssistTimeout = 20 * time.Second

// Finalizer closes sessions: it computes the final score and writes a summary,
// asking the summarizer first and falling back to a fixed template.
type Finalizer struct {
	summarizer ai.Summarizer
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewFinalizer accepts a nil summarizer, in which case only the template is used.
func NewFinalizer(summarizer ai.Summarizer, timeout time.Duration, log *zap.Logger) *Finalizer {
	if timeout <= 0 {
		timeout = defaultAssistTimeout
	}

	return &Finalizer{
		summarizer: summarizer,
		timeout:    timeout,
		logger:     logger.WithFields(log),
		now:        time.Now,
	}
}

// Finalize sets the final score and summary and marks the session completed.
// A completed session is left untouched.
func (f *Finalizer) Finalize(ctx context.Context, s *Session, c *candidate.Candidate) error {
	if s.Completed() {
		return nil
	}
	if !s.AllResolved() {
		return fmt.Errorf("%w: %d of %d resolved", ErrSessionIncomplete, s.Resolved(), len(s.Questions))
	}

	score := FinalScore(s.Questions)
	summary := f.summarize(ctx, s, c, score)
	now := f.now()

	s.FinalScore = &score
	s.Summary = summary
	s.Status = StatusCompleted
	s.FinalizedAt = &now

	return nil
}

func (f *Finalizer) summarize(ctx context.Context, s *Session, c *candidate.Candidate, score float64) string {
	var name string
	if c != nil {
		name = c.Name
	}

	if f.summarizer == nil {
		return FallbackSummary(name, s, score)
	}

	req := &ai.SummaryRequest{FinalScore: score}
	if c != nil {
		req.CandidateName = c.Name
		req.CandidateEmail = c.Email
		req.CandidatePhone = c.Phone
	}
	for _, q := range s.Questions {
		entry := ai.TranscriptEntry{
			Question:   q.Text,
			Difficulty: string(q.Difficulty),
			Score:      q.Score,
			TimedOut:   q.TimedOut,
		}
		if q.Answer != nil {
			entry.Answer = *q.Answer
		}
		req.Entries = append(req.Entries, entry)
	}

	summary, err := ai.Bounded(ctx, f.timeout, func(ctx context.Context) (string, error) {
		out, err := f.summarizer.Summarize(ctx, req)
		if err == nil && strings.TrimSpace(out) == "" {
			err = errors.New("empty summary")
		}
		return out, err
	})
	if err != nil {
		f.logger.Warn("falling back to template summary",
			append(logger.SessionFields(s.ID, s.CandidateID, -1), zap.Error(err))...,
		)
		return FallbackSummary(name, s, score)
	}

	return strings.TrimSpace(summary)
}

// FinalScore is the mean of all scored questions rounded to one decimal.
// Timed-out questions count as zero; no scores yields zero.
func FinalScore(questions []QuestionItem) float64 {
	var sum, n int
	for _, q := range questions {
		if q.Score == nil {
			continue
		}
		sum += *q.Score
		n++
	}
	if n == 0 {
		return 0
	}

	mean := float64(sum) / float64(n)
	return math.Min(10, math.Max(0, math.Round(mean*10)/10))
}

// FallbackSummary renders the deterministic summary template.
func FallbackSummary(name string, s *Session, score float64) string {
	if name = strings.TrimSpace(name); name == "" {
		name = "Candidate"
	}

	var remark string
	switch {
	case score >= 7:
		remark = "Strong performance with good technical knowledge."
	case score >= 5:
		remark = "Moderate performance with room for improvement."
	default:
		remark = "Needs significant improvement in technical skills."
	}

	return fmt.Sprintf("Interview Summary for %s: Answered %d/%d questions with an average score of %.1f/10. %s",
		name, s.Answered(), len(s.Questions), score, remark)
}
