package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"roastroyale/db"
	"roastroyale/models"
)

// fixedRand always picks the same index, clamped to n.
type fixedRand struct{ v int }

func (f fixedRand) IntN(n int) int { return f.v % n }

// lockedRand is a seeded source safe for the concurrent tests.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed uint64) *lockedRand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed+1))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

type fakeGenerator struct {
	out   string
	err   error
	calls int
	gotFn func(ctx context.Context, prompt string)
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.gotFn != nil {
		f.gotFn(ctx, prompt)
	}
	return f.out, f.err
}

// stubResponder replies with the same comeback every round.
type stubResponder struct {
	reply models.OpponentReply
	mu    sync.Mutex
	calls int
}

func (s *stubResponder) Respond(context.Context, string, string) models.OpponentReply {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.reply
}

var errStoreDown = errors.New("store down")

// failingStore rejects every write.
type failingStore struct{}

func (failingStore) FetchTop(context.Context, int) ([]models.Player, error) {
	return nil, errStoreDown
}

func (failingStore) FetchByUsername(context.Context, string) (*models.Player, error) {
	return nil, errStoreDown
}

func (failingStore) UpsertAfterBattle(context.Context, string, int, string) (*models.Player, error) {
	return nil, errStoreDown
}

var errSessionSaveFailed = errors.New("session save failed")

// flakySessionStore fails the first save of a finished battle, after the
// leaderboard write has already gone through.
type flakySessionStore struct {
	*db.MemorySessionStore
	mu     sync.Mutex
	failed bool
}

func (f *flakySessionStore) Save(ctx context.Context, s models.Session) error {
	f.mu.Lock()
	if !f.failed && s.State == models.StateLeaderboard {
		f.failed = true
		f.mu.Unlock()
		return errSessionSaveFailed
	}
	f.mu.Unlock()
	return f.MemorySessionStore.Save(ctx, s)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LeaderboardEvent
}

func (r *recordingPublisher) PublishLeaderboardEvent(e models.LeaderboardEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}
