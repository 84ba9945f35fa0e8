package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/candidate"
	"github.com/spigell/interviewer/internal/interview"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store persists candidates and interview sessions. Lookups of unknown ids
// return candidate.ErrNotFound and interview.ErrSessionNotFound. Returned
// values are copies and may be modified freely.
type Store interface {
	GetCandidate(ctx context.Context, id string) (*candidate.Candidate, error)
	SaveCandidate(ctx context.Context, c *candidate.Candidate) error
	ListCandidates(ctx context.Context) ([]*candidate.Candidate, error)

	GetSession(ctx context.Context, id string) (*interview.Session, error)
	// SaveSession stores s if its Revision matches the stored one and bumps
	// s.Revision. It returns interview.ErrStaleSession on a mismatch and a
	// *interview.SessionInProgressError when the candidate already has
	// another open session.
	SaveSession(ctx context.Context, s *interview.Session) error
	// FindInProgress returns the candidate's open session or nil.
	FindInProgress(ctx context.Context, candidateID string) (*interview.Session, error)
	// ListSessions returns the candidate's sessions, newest first.
	ListSessions(ctx context.Context, candidateID string) ([]*interview.Session, error)

	Close() error
}

type Config struct {
	Backend string
	Path    string
	Redis   RedisConfig
}

type RedisConfig struct {
	URL      string
	Password string
}

// Open returns the backend selected by cfg.Backend; empty means file.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		return OpenFile(cfg.Path, logger)
	case BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		return NewRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}

func cloneCandidate(c *candidate.Candidate) *candidate.Candidate {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}
