package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	defaultMaxLogLength = 200
	scoreSystemPrompt   = "You are a strict but fair senior engineer grading interview answers. Output valid JSON only."
	summarySystemPrompt = "You are a hiring panel assistant summarizing interviews. Output valid JSON only."
)

//go:embed score_prompt.md
var scorePromptTemplate string

//go:embed summary_prompt.md
var summaryPromptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

// Assessor grades answers and summarizes interviews with Gemini.
// It implements both ai.Evaluator and ai.Summarizer.
type Assessor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAssessor(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assessor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Assessor) Evaluate(ctx context.Context, req *ai.EvaluationRequest) (*ai.Evaluation, error) {
	if req == nil {
		return nil, errors.New("evaluation request is required")
	}

	prompt := strings.NewReplacer(
		"{{DIFFICULTY}}", req.Difficulty,
		"{{QUESTION}}", orNone(req.Question),
		"{{IDEAL_ANSWER}}", orNone(req.IdealAnswer),
		"{{ANSWER}}", orNone(req.Answer),
	).Replace(scorePromptTemplate)

	raw, err := a.generate(ctx, "score", scoreSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	evaluation, err := parseEvaluation(raw)
	if err != nil {
		return nil, err
	}
	evaluation.Raw = raw

	return evaluation, nil
}

func (a *Assessor) Summarize(ctx context.Context, req *ai.SummaryRequest) (string, error) {
	if req == nil {
		return "", errors.New("summary request is required")
	}

	prompt := strings.NewReplacer(
		"{{NAME}}", orUnknown(req.CandidateName),
		"{{EMAIL}}", orUnknown(req.CandidateEmail),
		"{{PHONE}}", orUnknown(req.CandidatePhone),
		"{{FINAL_SCORE}}", strconv.FormatFloat(req.FinalScore, 'f', 1, 64),
		"{{TRANSCRIPT}}", transcript(req.Entries),
	).Replace(summaryPromptTemplate)

	raw, err := a.generate(ctx, "summary", summarySystemPrompt, prompt)
	if err != nil {
		return "", err
	}

	return parseSummary(raw)
}

func (a *Assessor) generate(ctx context.Context, kind, system, prompt string) (string, error) {
	a.logger.Debug("gemini generate content request",
		zap.String("kind", kind),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini generate content response",
		zap.String("kind", kind),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return raw, nil
}

func transcript(entries []ai.TranscriptEntry) string {
	blocks := make([]string, 0, len(entries))
	for i, entry := range entries {
		score := "N/A"
		if entry.Score != nil {
			score = strconv.Itoa(*entry.Score)
		}
		answer := strings.TrimSpace(entry.Answer)
		if entry.TimedOut {
			answer = "(timed out)"
		} else if answer == "" {
			answer = "(none)"
		}
		blocks = append(blocks, fmt.Sprintf("Q%d: %s\nDifficulty: %s\nScore: %s\nAnswer: %s",
			i+1, entry.Question, entry.Difficulty, score, answer))
	}
	return strings.Join(blocks, "\n\n")
}

func parseEvaluation(raw string) (*ai.Evaluation, error) {
	var data struct {
		Score *float64 `json:"score"`
		Notes *string  `json:"notes"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini score response: %w", err)
	}

	if data.Score == nil {
		return nil, errors.New("gemini score response has no score")
	}
	if data.Notes == nil {
		return nil, errors.New("gemini score response has no notes")
	}

	score := *data.Score
	if math.IsNaN(score) || score < 0 || score > 10 {
		return nil, fmt.Errorf("gemini score %v is outside 0..10", score)
	}

	return &ai.Evaluation{
		Score: int(math.Round(score)),
		Notes: strings.TrimSpace(*data.Notes),
	}, nil
}

func parseSummary(raw string) (string, error) {
	var data struct {
		Summary *string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return "", fmt.Errorf("parse gemini summary response: %w", err)
	}

	if data.Summary == nil || strings.TrimSpace(*data.Summary) == "" {
		return "", errors.New("gemini summary response is empty")
	}

	return strings.TrimSpace(*data.Summary), nil
}

// extractJSON strips markdown code fences around a JSON payload.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "(none)"
	}
	return s
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "Unknown"
	}
	return s
}
