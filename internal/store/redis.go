package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/interviewer/internal/candidate"
	"github.com/spigell/interviewer/internal/interview"
)

const keyPrefix = "interviewer"

// Redis stores JSON documents under interviewer:* keys.
type Redis struct {
	client *redis.Client
}

var _ Store = (*Redis)(nil)

// NewRedis connects to cfg.URL (redis:// or rediss://) and pings the server.
// A non-empty cfg.Password overrides the one in the URL.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis url is not configured (set store.redis.url)")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	return &Redis{client: client}, nil
}

func candidateKey(id string) string { return keyPrefix + ":candidate:" + id }
func candidateSessionsKey(id string) string { return keyPrefix + ":candidate:" + id + ":sessions" }
func openSessionKey(id string) string { return keyPrefix + ":candidate:" + id + ":open" }
func sessionKey(id string) string { return keyPrefix + ":session:" + id }
func candidatesKey() string { return keyPrefix + ":candidates" }

func (r *Redis) GetCandidate(ctx context.Context, id string) (*candidate.Candidate, error) {
	var c candidate.Candidate
	if err := r.getJSON(ctx, candidateKey(id), &c); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", candidate.ErrNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *Redis) SaveCandidate(ctx context.Context, c *candidate.Candidate) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding candidate: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, candidateKey(c.ID), raw, 0)
		pipe.SAdd(ctx, candidatesKey(), c.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving candidate: %w", err)
	}
	return nil
}

func (r *Redis) ListCandidates(ctx context.Context) ([]*candidate.Candidate, error) {
	ids, err := r.client.SMembers(ctx, candidatesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, candidateKey(id))
	}

	out := make([]*candidate.Candidate, 0, len(keys))
	err = r.mgetJSON(ctx, keys, func(raw string) error {
		var c candidate.Candidate
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return err
		}
		out = append(out, &c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	sortCandidates(out)
	return out, nil
}

func (r *Redis) GetSession(ctx context.Context, id string) (*interview.Session, error) {
	var s interview.Session
	if err := r.getJSON(ctx, sessionKey(id), &s); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", interview.ErrSessionNotFound, id)
		}
		return nil, err
	}
	return &s, nil
}

// SaveSession runs an optimistic transaction watching the session and the
// candidate's open-session pointer. The stored revision must match and the
// pointer must be free or name this session.
func (r *Redis) SaveSession(ctx context.Context, s *interview.Session) error {
	next := s.Clone()
	next.Revision++
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	key := sessionKey(s.ID)
	openKey := openSessionKey(s.CandidateID)

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := storedRevision(ctx, tx, key)
		if err != nil {
			return err
		}
		if stored != s.Revision {
			return fmt.Errorf("%w: %s is at revision %d, saving %d", interview.ErrStaleSession, s.ID, stored, s.Revision)
		}

		open, err := tx.Get(ctx, openKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("looking up open session: %w", err)
		}
		if s.Status == interview.StatusInProgress && open != "" && open != s.ID {
			return &interview.SessionInProgressError{SessionID: open}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			pipe.SAdd(ctx, candidateSessionsKey(s.CandidateID), s.ID)
			switch {
			case s.Status == interview.StatusInProgress:
				pipe.Set(ctx, openKey, s.ID, 0)
			case open == s.ID:
				pipe.Del(ctx, openKey)
			}
			return nil
		})
		return err
	}, key, openKey)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%w: %s was modified during save", interview.ErrStaleSession, s.ID)
	case err != nil:
		var inProgress *interview.SessionInProgressError
		if errors.As(err, &inProgress) || errors.Is(err, interview.ErrStaleSession) {
			return err
		}
		return fmt.Errorf("saving session: %w", err)
	}

	s.Revision = next.Revision
	return nil
}

// storedRevision returns 0 for a session that does not exist yet.
func storedRevision(ctx context.Context, tx *redis.Tx, key string) (int, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}

	var head struct {
		Revision int `json:"revision"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return 0, fmt.Errorf("decoding %s: %w", key, err)
	}
	return head.Revision, nil
}

func (r *Redis) FindInProgress(ctx context.Context, candidateID string) (*interview.Session, error) {
	id, err := r.client.Get(ctx, openSessionKey(candidateID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up open session: %w", err)
	}

	s, err := r.GetSession(ctx, id)
	if errors.Is(err, interview.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.Status != interview.StatusInProgress {
		return nil, nil
	}
	return s, nil
}

func (r *Redis) ListSessions(ctx context.Context, candidateID string) ([]*interview.Session, error) {
	ids, err := r.client.SMembers(ctx, candidateSessionsKey(candidateID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}

	out := make([]*interview.Session, 0, len(keys))
	err = r.mgetJSON(ctx, keys, func(raw string) error {
		var s interview.Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return err
		}
		out = append(out, &s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	sortNewestFirst(out)
	return out, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) getJSON(ctx context.Context, key string, v any) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return err
		}
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// mgetJSON calls fn for every existing key. Missing keys are skipped.
func (r *Redis) mgetJSON(ctx context.Context, keys []string, fn func(raw string) error) error {
	if len(keys) == 0 {
		return nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return err
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
	return nil
}
