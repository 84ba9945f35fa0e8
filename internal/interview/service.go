package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/candidate"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	answerPreviewLength = 80
	maxSaveAttempts     = 3
)

// Repository is the persistence the service needs. GetSession returns
// ErrSessionNotFound and GetCandidate candidate.ErrNotFound for unknown ids.
// FindInProgress returns nil without error when the candidate has no open
// session.
//
// SaveSession is a compare-and-swap on Session.Revision: it fails with
// ErrStaleSession when the stored revision differs, and with a
// *SessionInProgressError when saving an open session while the candidate
// already has another one. On success it increments the revision.
type Repository interface {
	GetCandidate(ctx context.Context, id string) (*candidate.Candidate, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	SaveSession(ctx context.Context, s *Session) error
	FindInProgress(ctx context.Context, candidateID string) (*Session, error)
}

type Config struct {
	Role      string
	Bank      Bank
	UseAssist bool
}

// Service drives sessions through their lifecycle. Transitions on one session
// are serialized; different sessions never wait for each other.
type Service struct {
	cfg       Config
	repo      Repository
	builder   *QuestionSetBuilder
	scorer    Scorer
	finalizer *Finalizer
	logger    *zap.Logger
	now       func() time.Time

	sessions   *keyedMutex
	candidates *keyedMutex
}

func NewService(cfg Config, repo Repository, scorer Scorer, finalizer *Finalizer, log *zap.Logger) *Service {
	if cfg.Bank == nil {
		cfg.Bank = DefaultBank()
	}
	log = logger.WithFields(log)
	if finalizer == nil {
		finalizer = NewFinalizer(nil, 0, log)
	}

	return &Service{
		cfg:        cfg,
		repo:       repo,
		builder:    NewQuestionSetBuilder(),
		scorer:     scorer,
		finalizer:  finalizer,
		logger:     log,
		now:        time.Now,
		sessions:   newKeyedMutex(),
		candidates: newKeyedMutex(),
	}
}

// StartSession opens a new session for the candidate. It fails with a
// *SessionInProgressError while another session of the candidate is open.
func (s *Service) StartSession(ctx context.Context, candidateID string) (*Session, error) {
	unlock := s.candidates.Lock(candidateID)
	defer unlock()

	c, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("loading candidate: %w", err)
	}

	open, err := s.repo.FindInProgress(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("looking up open interview: %w", err)
	}
	if open != nil {
		return nil, &SessionInProgressError{SessionID: open.ID}
	}

	set, err := s.builder.Build(s.cfg.Role, s.cfg.Bank)
	if err != nil {
		if !errors.Is(err, ErrPoolExhausted) {
			return nil, fmt.Errorf("building questions: %w", err)
		}
		s.logger.Warn("using fallback questions", zap.String(logger.FieldCandidateID, c.ID), zap.Error(err))
		set = s.builder.FallbackQuestions(s.cfg.Role)
	}

	// The store rejects a second open session, which covers a start racing
	// in another process between FindInProgress and here.
	session := NewSession(c.ID, set, s.now())
	if err := s.repo.SaveSession(ctx, session); err != nil {
		var inProgress *SessionInProgressError
		if errors.As(err, &inProgress) {
			return nil, inProgress
		}
		return nil, fmt.Errorf("saving interview: %w", err)
	}

	s.logger.Info("interview started",
		append(logger.SessionFields(session.ID, c.ID, -1),
			zap.String("role", session.Role),
			zap.Int("questions", len(session.Questions)),
		)...,
	)

	return session, nil
}

// SubmitAnswer grades and records an answer, finalizing the session when it
// was the last open question.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, index int, text string) (*Session, error) {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Resolvable(index); err != nil {
		return nil, err
	}

	q := session.Questions[index]
	log := logger.WithFields(s.logger, logger.SessionFields(session.ID, session.CandidateID, index)...)
	log.Debug("scoring answer",
		zap.String("difficulty", string(q.Difficulty)),
		zap.String("answer_preview", utils.TruncateForLog(utils.SingleLine(text), answerPreviewLength)),
	)

	result := s.scorer.Score(ctx, ScoreRequest{
		Question:    q.Text,
		IdealAnswer: q.IdealAnswer,
		Answer:      text,
		Difficulty:  q.Difficulty,
		Assist:      s.cfg.UseAssist,
	})

	// The grade is applied to a fresh copy on every attempt, so a concurrent
	// answer to the same question turns into ErrQuestionAlreadyResolved.
	session, err = s.transition(ctx, session, func(current *Session) (bool, error) {
		return true, current.SubmitAnswer(index, text, result, s.now())
	})
	if err != nil {
		return nil, err
	}

	log.Info("answer recorded", zap.Int("score", result.Score), zap.Bool("assisted", result.Assisted))
	return session, nil
}

// Skip records a timeout for the question.
func (s *Service) Skip(ctx context.Context, sessionID string, index int) (*Session, error) {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session, err = s.transition(ctx, session, func(current *Session) (bool, error) {
		return true, current.Skip(index, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("question skipped", logger.SessionFields(session.ID, session.CandidateID, index)...)
	return session, nil
}

// Finalize closes a fully resolved session. Finalizing a completed session
// returns it unchanged.
func (s *Service) Finalize(ctx context.Context, sessionID string) (*Session, error) {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, session, func(current *Session) (bool, error) {
		if current.Completed() {
			return false, nil
		}
		if !current.AllResolved() {
			return false, fmt.Errorf("%w: %d of %d resolved", ErrSessionIncomplete, current.Resolved(), len(current.Questions))
		}
		return true, nil
	})
}

func (s *Service) CurrentQuestion(ctx context.Context, sessionID string) (*Progress, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Progress(), nil
}

func (s *Service) Session(ctx context.Context, sessionID string) (*Session, error) {
	return s.repo.GetSession(ctx, sessionID)
}

// transition applies fn to session and saves the result, finalizing it once
// every question is resolved. When another writer saved the session in the
// meantime, the latest copy is loaded and fn runs again on it. fn reports
// false when there is nothing to save.
func (s *Service) transition(ctx context.Context, session *Session, fn func(*Session) (bool, error)) (*Session, error) {
	for attempt := 1; ; attempt++ {
		changed, err := fn(session)
		if err != nil {
			return nil, err
		}
		if !changed {
			return session, nil
		}

		err = s.settle(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrStaleSession) || attempt >= maxSaveAttempts {
			return nil, err
		}

		s.logger.Debug("interview changed concurrently, reloading",
			append(logger.SessionFields(session.ID, session.CandidateID, -1), zap.Int("attempt", attempt))...,
		)

		if session, err = s.repo.GetSession(ctx, session.ID); err != nil {
			return nil, err
		}
	}
}

// settle finalizes the session once every question is resolved and saves it.
func (s *Service) settle(ctx context.Context, session *Session) error {
	if session.AllResolved() {
		if err := s.finalize(ctx, session); err != nil {
			return err
		}
	}

	if err := s.repo.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("saving interview: %w", err)
	}
	return nil
}

func (s *Service) finalize(ctx context.Context, session *Session) error {
	c, err := s.repo.GetCandidate(ctx, session.CandidateID)
	if err != nil {
		if !errors.Is(err, candidate.ErrNotFound) {
			return fmt.Errorf("loading candidate: %w", err)
		}
		s.logger.Warn("finalizing without candidate details",
			logger.SessionFields(session.ID, session.CandidateID, -1)...)
		c = nil
	}

	if err := s.finalizer.Finalize(ctx, session, c); err != nil {
		return err
	}

	s.logger.Info("interview completed",
		append(logger.SessionFields(session.ID, session.CandidateID, -1),
			zap.Float64("final_score", *session.FinalScore),
			zap.Int("answered", session.Answered()),
		)...,
	)
	return nil
}
