package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
)

const defaultTimeout = 15 * time.Second

// Engine scores answers with an optional external evaluator and falls back to
// Heuristic whenever the evaluator is missing, slow or wrong.
type Engine struct {
	evaluator ai.Evaluator
	timeout   time.Duration
	logger    *zap.Logger
}

var _ interview.Scorer = (*Engine)(nil)

func NewEngine(evaluator ai.Evaluator, timeout time.Duration, log *zap.Logger) *Engine {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Engine{
		evaluator: evaluator,
		timeout:   timeout,
		logger:    logger.WithFields(log),
	}
}

func (e *Engine) Score(ctx context.Context, req interview.ScoreRequest) interview.ScoreResult {
	if req.Assist && e.evaluator != nil && strings.TrimSpace(req.Answer) != "" {
		result, err := e.assist(ctx, req)
		if err == nil {
			return result
		}
		e.logger.Warn("falling back to heuristic score",
			zap.String("difficulty", string(req.Difficulty)),
			zap.Error(err),
		)
	}

	return Heuristic(req.Question, req.Answer, req.Difficulty)
}

func (e *Engine) assist(ctx context.Context, req interview.ScoreRequest) (interview.ScoreResult, error) {
	evaluation, err := ai.Bounded(ctx, e.timeout, func(ctx context.Context) (*ai.Evaluation, error) {
		return e.evaluator.Evaluate(ctx, &ai.EvaluationRequest{
			Question:    req.Question,
			IdealAnswer: req.IdealAnswer,
			Answer:      req.Answer,
			Difficulty:  string(req.Difficulty),
		})
	})
	if err != nil {
		return interview.ScoreResult{}, err
	}

	if evaluation == nil {
		return interview.ScoreResult{}, fmt.Errorf("%w: empty evaluation", ai.ErrUnavailable)
	}
	if evaluation.Score < 0 || evaluation.Score > 10 {
		return interview.ScoreResult{}, fmt.Errorf("%w: score %d outside 0..10", ai.ErrUnavailable, evaluation.Score)
	}

	rationale := strings.TrimSpace(evaluation.Notes)
	if rationale == "" {
		rationale = "external assessment"
	}

	return interview.ScoreResult{
		Score:     evaluation.Score,
		Rationale: rationale,
		Assisted:  true,
	}, nil
}
