package interview

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SkipRationale is recorded for skipped and timed-out questions.
const SkipRationale = "skipped/timed out"

// NewSession opens a session over the given question set. Every question
// starts its clock at creation time.
func NewSession(candidateID string, set *QuestionSet, now time.Time) *Session {
	questions := make([]QuestionItem, len(set.Questions))
	copy(questions, set.Questions)
	for i := range questions {
		questions[i].StartedAt = now
	}

	return &Session{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		Role:        set.Role,
		Questions:   questions,
		Status:      StatusInProgress,
		CreatedAt:   now,
	}
}

// Resolvable reports whether the question at index can still take an answer
// or a skip.
func (s *Session) Resolvable(index int) error {
	if index < 0 || index >= len(s.Questions) {
		return fmt.Errorf("%w: %d, session has %d questions", ErrInvalidQuestionIndex, index, len(s.Questions))
	}
	if s.Status == StatusCompleted || s.Questions[index].Resolved() {
		return fmt.Errorf("%w: question %d", ErrQuestionAlreadyResolved, index)
	}
	return nil
}

// SubmitAnswer records a graded answer.
func (s *Session) SubmitAnswer(index int, text string, result ScoreResult, now time.Time) error {
	if err := s.Resolvable(index); err != nil {
		return err
	}

	score := min(max(result.Score, 0), 10)
	answer := strings.TrimSpace(text)

	q := &s.Questions[index]
	q.Answer = &answer
	q.Score = &score
	q.Rationale = result.Rationale
	q.AnsweredAt = &now

	return nil
}

// Skip records a timeout. The question scores zero.
func (s *Session) Skip(index int, now time.Time) error {
	if err := s.Resolvable(index); err != nil {
		return err
	}

	score := 0

	q := &s.Questions[index]
	q.TimedOut = true
	q.Score = &score
	q.Rationale = SkipRationale
	q.AnsweredAt = &now

	return nil
}

// Current returns the first unresolved question in session order. The last
// return value is false when every question is resolved.
func (s *Session) Current() (int, *QuestionItem, bool) {
	for i := range s.Questions {
		if !s.Questions[i].Resolved() {
			return i, &s.Questions[i], true
		}
	}
	return -1, nil, false
}

// Resolved counts answered and timed-out questions.
func (s *Session) Resolved() int {
	n := 0
	for i := range s.Questions {
		if s.Questions[i].Resolved() {
			n++
		}
	}
	return n
}

// Answered counts questions with an answer that did not time out.
func (s *Session) Answered() int {
	n := 0
	for i := range s.Questions {
		if s.Questions[i].Answer != nil && !s.Questions[i].TimedOut {
			n++
		}
	}
	return n
}

func (s *Session) AllResolved() bool {
	return s.Resolved() == len(s.Questions)
}

func (s *Session) Completed() bool {
	return s.Status == StatusCompleted
}

// Progress reports the current question and counters.
func (s *Session) Progress() *Progress {
	idx, q, ok := s.Current()
	return &Progress{
		SessionID: s.ID,
		Completed: !ok,
		Index:     idx,
		Question:  q,
		Total:     len(s.Questions),
		Resolved:  s.Resolved(),
		Answered:  s.Answered(),
		Status:    s.Status,
	}
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	out := *s
	out.Questions = make([]QuestionItem, len(s.Questions))
	for i, q := range s.Questions {
		if q.Answer != nil {
			answer := *q.Answer
			q.Answer = &answer
		}
		if q.Score != nil {
			score := *q.Score
			q.Score = &score
		}
		if q.AnsweredAt != nil {
			at := *q.AnsweredAt
			q.AnsweredAt = &at
		}
		out.Questions[i] = q
	}
	if s.FinalScore != nil {
		score := *s.FinalScore
		out.FinalScore = &score
	}
	if s.FinalizedAt != nil {
		at := *s.FinalizedAt
		out.FinalizedAt = &at
	}
	return &out
}
