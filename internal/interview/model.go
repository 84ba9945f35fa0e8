package interview

import (
	"context"
	"time"
)

// Difficulty is the question tier. Values are case-sensitive on the wire.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Tiers lists difficulties in session order.
var Tiers = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// SecondsAllowed is the advisory answer time for the tier.
func (d Difficulty) SecondsAllowed() int {
	switch d {
	case DifficultyEasy:
		return 20
	case DifficultyMedium:
		return 60
	case DifficultyHard:
		return 120
	default:
		return 0
	}
}

func (d Difficulty) Valid() bool {
	return d.SecondsAllowed() > 0
}

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// QuestionItem is one question of a session together with its outcome.
// A question is resolved once it has an answer or timed out, and only then
// carries a score.
type QuestionItem struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	Difficulty     Difficulty `json:"difficulty"`
	IdealAnswer    string     `json:"idealAnswer"`
	SecondsAllowed int        `json:"secondsAllowed"`
	Answer         *string    `json:"answer,omitempty"`
	Score          *int       `json:"score,omitempty"`
	Rationale      string     `json:"rationale,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	AnsweredAt     *time.Time `json:"answeredAt,omitempty"`
	TimedOut       bool       `json:"timedOut"`
}

func (q *QuestionItem) Resolved() bool {
	return q.Answer != nil || q.TimedOut
}

// Session is one candidate's run through a fixed question battery.
type Session struct {
	ID          string         `json:"id"`
	CandidateID string         `json:"candidateRef"`
	Role        string         `json:"role"`
	Questions   []QuestionItem `json:"questions"`
	Status      Status         `json:"status"`
	FinalScore  *float64       `json:"finalScore,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	FinalizedAt *time.Time     `json:"finalizedAt,omitempty"`
	// Revision counts successful saves. Stores reject a save whose revision
	// does not match the stored one.
	Revision    int            `json:"revision"`
}

// ScoreRequest asks a Scorer to grade one answer. Assist enables the external
// grader when one is configured.
type ScoreRequest struct {
	Question    string
	IdealAnswer string
	Answer      string
	Difficulty  Difficulty
	Assist      bool
}

// ScoreResult is always within 0..10.
type ScoreResult struct {
	Score     int
	Rationale string
	Assisted  bool
}

// Scorer grades answers. It never fails: external problems are recovered
// inside the implementation.
type Scorer interface {
	Score(ctx context.Context, req ScoreRequest) ScoreResult
}

// Progress describes where a session currently stands. Completed is set once
// every question is resolved, even if the session is not finalized yet.
type Progress struct {
	SessionID string        `json:"sessionId"`
	Completed bool          `json:"completed"`
	Index     int           `json:"questionIndex"`
	Question  *QuestionItem `json:"question,omitempty"`
	Total     int           `json:"totalQuestions"`
	Resolved  int           `json:"resolvedQuestions"`
	Answered  int           `json:"answeredQuestions"`
	Status    Status        `json:"status"`
}
