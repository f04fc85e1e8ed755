package db

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"roastroyale/models"
)

// MemoryLeaderboard keeps players in process memory. Used for local play
// and tests.
type MemoryLeaderboard struct {
	mu      sync.RWMutex
	players map[string]models.Player
	battles map[string][]string // recent battle ids per username, oldest first
	now     func() time.Time
}

func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{
		players: make(map[string]models.Player),
		battles: make(map[string][]string),
		now:     time.Now,
	}
}

func (m *MemoryLeaderboard) FetchTop(_ context.Context, n int) ([]models.Player, error) {
	if n <= 0 {
		return []models.Player{}, nil
	}

	m.mu.RLock()
	players := make([]models.Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	m.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool {
		if players[i].RoastScore != players[j].RoastScore {
			return players[i].RoastScore > players[j].RoastScore
		}
		return players[i].Username < players[j].Username
	})
	if len(players) > n {
		players = players[:n]
	}
	return players, nil
}

func (m *MemoryLeaderboard) FetchByUsername(_ context.Context, username string) (*models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[strings.TrimSpace(username)]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (m *MemoryLeaderboard) UpsertAfterBattle(_ context.Context, username string, points int, battleID string) (*models.Player, error) {
	username, err := validateUpsert(username, points)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if battleID != "" {
		recent := m.battles[username]
		if slices.Contains(recent, battleID) {
			return nil, ErrBattleAlreadyRecorded
		}
		recent = append(recent, battleID)
		if len(recent) > recentBattleLimit {
			recent = recent[len(recent)-recentBattleLimit:]
		}
		m.battles[username] = recent
	}

	now := m.now().UTC()
	p, ok := m.players[username]
	if !ok {
		p = models.Player{Username: username, CreatedAt: now}
	}
	p.RoastScore += points
	p.TotalBattles++
	p.UpdatedAt = now
	m.players[username] = p
	return &p, nil
}
