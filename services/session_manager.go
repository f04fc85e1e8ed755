package services

import (
	"context"
	"sync"

	"roastroyale/db"
	"roastroyale/models"

	"github.com/google/uuid"
)

// SessionManager loads a session, applies one transition and saves the
// result. Calls for the same session id run one at a time.
type SessionManager struct {
	game  *Game
	store db.SessionStore
	locks *keyedMutex
	newID func() string
}

func NewSessionManager(game *Game, store db.SessionStore) *SessionManager {
	return &SessionManager{
		game:  game,
		store: store,
		locks: newKeyedMutex(),
		newID: uuid.NewString,
	}
}

func (m *SessionManager) Create(ctx context.Context) (models.Session, error) {
	s := m.game.NewSession(m.newID())
	if err := m.store.Save(ctx, s); err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (m *SessionManager) Get(ctx context.Context, id string) (models.Session, error) {
	return m.store.Get(ctx, id)
}

func (m *SessionManager) StartBattle(ctx context.Context, id, username string) (models.Session, error) {
	return m.apply(ctx, id, func(s models.Session) (models.Session, error) {
		return m.game.StartBattle(s, username)
	})
}

func (m *SessionManager) SubmitRoast(ctx context.Context, id, roast string) (models.Session, error) {
	return m.apply(ctx, id, func(s models.Session) (models.Session, error) {
		return m.game.SubmitRoast(ctx, s, roast)
	})
}

func (m *SessionManager) NextRound(ctx context.Context, id string) (models.Session, error) {
	return m.apply(ctx, id, m.game.NextRound)
}

func (m *SessionManager) Finish(ctx context.Context, id string) (models.Session, error) {
	return m.apply(ctx, id, func(s models.Session) (models.Session, error) {
		return m.game.Finish(ctx, s)
	})
}

func (m *SessionManager) ViewLeaderboard(ctx context.Context, id string) (models.Session, error) {
	return m.apply(ctx, id, m.game.ViewLeaderboard)
}

func (m *SessionManager) PlayAgain(ctx context.Context, id string) (models.Session, error) {
	return m.apply(ctx, id, m.game.PlayAgain)
}

// apply persists the transition result. A failed transition is only saved
// when it recorded a new LastError, as Finish does on a store failure.
func (m *SessionManager) apply(ctx context.Context, id string, transition func(models.Session) (models.Session, error)) (models.Session, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	current, err := m.store.Get(ctx, id)
	if err != nil {
		return models.Session{}, err
	}

	next, err := transition(current)
	if err != nil {
		if next.LastError != current.LastError {
			if saveErr := m.store.Save(ctx, next); saveErr != nil {
				return current, saveErr
			}
		}
		return next, err
	}

	if err := m.store.Save(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds
// or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
