package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/spigell/interviewer/internal/candidate"
	"github.com/spigell/interviewer/internal/interview"
)

// Memory keeps everything in process memory.
type Memory struct {
	mu         sync.RWMutex
	candidates map[string]*candidate.Candidate
	sessions   map[string]*interview.Session
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		candidates: make(map[string]*candidate.Candidate),
		sessions:   make(map[string]*interview.Session),
	}
}

func (m *Memory) GetCandidate(_ context.Context, id string) (*candidate.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.candidates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", candidate.ErrNotFound, id)
	}
	return cloneCandidate(c), nil
}

func (m *Memory) SaveCandidate(_ context.Context, c *candidate.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.candidates[c.ID] = cloneCandidate(c)
	return nil
}

func (m *Memory) ListCandidates(_ context.Context) ([]*candidate.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*candidate.Candidate, 0, len(m.candidates))
	for _, c := range m.candidates {
		out = append(out, cloneCandidate(c))
	}
	sortCandidates(out)
	return out, nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*interview.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interview.ErrSessionNotFound, id)
	}
	return s.Clone(), nil
}

func (m *Memory) SaveSession(_ context.Context, s *interview.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := m.checkSession(s)
	if err != nil {
		return err
	}
	m.sessions[s.ID] = next
	s.Revision = next.Revision
	return nil
}

// checkSession validates a save against the stored state and returns the
// copy to store. Callers hold m.mu.
func (m *Memory) checkSession(s *interview.Session) (*interview.Session, error) {
	stored := 0
	if current, ok := m.sessions[s.ID]; ok {
		stored = current.Revision
	}
	if stored != s.Revision {
		return nil, fmt.Errorf("%w: %s is at revision %d, saving %d", interview.ErrStaleSession, s.ID, stored, s.Revision)
	}

	if s.Status == interview.StatusInProgress {
		for _, other := range m.sessions {
			if other.ID != s.ID && other.CandidateID == s.CandidateID && other.Status == interview.StatusInProgress {
				return nil, &interview.SessionInProgressError{SessionID: other.ID}
			}
		}
	}

	next := s.Clone()
	next.Revision++
	return next, nil
}

func (m *Memory) FindInProgress(_ context.Context, candidateID string) (*interview.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sessions {
		if s.CandidateID == candidateID && s.Status == interview.StatusInProgress {
			return s.Clone(), nil
		}
	}
	return nil, nil
}

func (m *Memory) ListSessions(_ context.Context, candidateID string) ([]*interview.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*interview.Session, 0)
	for _, s := range m.sessions {
		if s.CandidateID == candidateID {
			out = append(out, s.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }

func sortCandidates(candidates []*candidate.Candidate) {
	slices.SortFunc(candidates, func(a, b *candidate.Candidate) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

func sortNewestFirst(sessions []*interview.Session) {
	slices.SortFunc(sessions, func(a, b *interview.Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
