package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"roastroyale/models"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps in-flight game sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (models.Session, error)
	Save(ctx context.Context, session models.Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore holds sessions in a map. Sessions idle for longer than
// ttl are dropped on read and swept out on save; a zero ttl keeps them
// forever.
type MemorySessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]models.Session
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// maxSweepInterval caps how long expired sessions can linger between saves.
const maxSweepInterval = time.Minute

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (models.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}

	if m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return models.Session{}, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemorySessionStore) Save(_ context.Context, session models.Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.sessions[session.ID] = session.Clone()
	return nil
}

// sweepLocked drops expired sessions at most once per min(ttl, maxSweepInterval).
func (m *MemorySessionStore) sweepLocked() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	if now.Sub(m.lastSweep) < min(m.ttl, maxSweepInterval) {
		return
	}
	m.lastSweep = now
	for id, s := range m.sessions {
		if now.Sub(s.UpdatedAt) > m.ttl {
			delete(m.sessions, id)
		}
	}
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

const sessionKeyPrefix = "roast_session:"

// RedisSessionStore stores each session as a JSON string with an expiry
// that is refreshed on every save.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, session models.Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(session.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}
