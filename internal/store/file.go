package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/candidate"
	"github.com/spigell/interviewer/internal/interview"
)

const (
	// DefaultPath is used by OpenFile when no path is configured.
	DefaultPath = "interviewer-data.json"

	lockRetryDelay = 10 * time.Millisecond
)

type document struct {
	Candidates map[string]*candidate.Candidate `json:"candidates"`
	Sessions   map[string]*interview.Session   `json:"sessions"`
}

// File keeps everything in one JSON document. Every operation takes an
// advisory lock on <path>.lock and reloads the document, so several
// processes can share the file. Writes replace it atomically.
type File struct {
	mu     sync.Mutex
	path   string
	lock   *flock.Flock
	logger *zap.Logger
}

var _ Store = (*File)(nil)

// OpenFile checks that path, if it exists, holds a readable document. The
// file is created on the first save.
func OpenFile(path string, logger *zap.Logger) (*File, error) {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &File{path: path, lock: flock.New(path + ".lock"), logger: logger}

	err := f.view(context.Background(), func(m *Memory) error {
		logger.Debug("store file opened",
			zap.String("path", path),
			zap.Int("candidates", len(m.candidates)),
			zap.Int("sessions", len(m.sessions)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) GetCandidate(ctx context.Context, id string) (c *candidate.Candidate, err error) {
	err = f.view(ctx, func(m *Memory) error {
		c, err = m.GetCandidate(ctx, id)
		return err
	})
	return c, err
}

func (f *File) SaveCandidate(ctx context.Context, c *candidate.Candidate) error {
	return f.update(ctx, func(m *Memory) error {
		return m.SaveCandidate(ctx, c)
	})
}

func (f *File) ListCandidates(ctx context.Context) (out []*candidate.Candidate, err error) {
	err = f.view(ctx, func(m *Memory) error {
		out, err = m.ListCandidates(ctx)
		return err
	})
	return out, err
}

func (f *File) GetSession(ctx context.Context, id string) (s *interview.Session, err error) {
	err = f.view(ctx, func(m *Memory) error {
		s, err = m.GetSession(ctx, id)
		return err
	})
	return s, err
}

// SaveSession checks the revision against the document on disk.
func (f *File) SaveSession(ctx context.Context, s *interview.Session) error {
	revision := s.Revision
	err := f.update(ctx, func(m *Memory) error {
		return m.SaveSession(ctx, s)
	})
	if err != nil {
		s.Revision = revision
	}
	return err
}

func (f *File) FindInProgress(ctx context.Context, candidateID string) (s *interview.Session, err error) {
	err = f.view(ctx, func(m *Memory) error {
		s, err = m.FindInProgress(ctx, candidateID)
		return err
	})
	return s, err
}

func (f *File) ListSessions(ctx context.Context, candidateID string) (out []*interview.Session, err error) {
	err = f.view(ctx, func(m *Memory) error {
		out, err = m.ListSessions(ctx, candidateID)
		return err
	})
	return out, err
}

func (f *File) Close() error {
	return nil
}

// view runs fn on a fresh copy of the document under a shared lock.
func (f *File) view(ctx context.Context, fn func(m *Memory) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("locking store file: %w", err)
	}
	defer f.unlock()

	m, err := f.load()
	if err != nil {
		return err
	}
	return fn(m)
}

// update runs fn on a fresh copy of the document under an exclusive lock and
// writes the result back when fn succeeds.
func (f *File) update(ctx context.Context, fn func(m *Memory) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("locking store file: %w", err)
	}
	defer f.unlock()

	m, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return f.flush(m)
}

func (f *File) unlock() {
	if err := f.lock.Unlock(); err != nil {
		f.logger.Warn("unlocking store file", zap.String("path", f.path), zap.Error(err))
	}
}

func (f *File) load() (*Memory, error) {
	m := NewMemory()

	raw, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing store file %s: %w", f.path, err)
	}
	for id, c := range doc.Candidates {
		if c != nil {
			m.candidates[id] = c
		}
	}
	for id, s := range doc.Sessions {
		if s != nil {
			m.sessions[id] = s
		}
	}

	return m, nil
}

// flush writes a temporary file next to the target and renames it over.
func (f *File) flush(m *Memory) error {
	m.mu.RLock()
	doc := document{Candidates: m.candidates, Sessions: m.sessions}
	raw, err := json.MarshalIndent(doc, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}
