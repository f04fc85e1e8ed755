package services

import (
	"context"
	"errors"
	"fmt"

	"roastroyale/db"
	"roastroyale/metrics"
	"roastroyale/models"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardService ranks stored players for display.
type LeaderboardService struct {
	store   db.LeaderboardStore
	metrics *metrics.Metrics
}

func NewLeaderboardService(store db.LeaderboardStore, m *metrics.Metrics) *LeaderboardService {
	return &LeaderboardService{store: store, metrics: m}
}

// ClampLimit applies the default for n <= 0 and caps n at MaxLeaderboardLimit.
func ClampLimit(n, def int) int {
	if def <= 0 {
		def = DefaultLeaderboardLimit
	}
	if n <= 0 {
		n = def
	}
	return min(n, MaxLeaderboardLimit)
}

// Top returns up to n ranked entries, rank 1 being the highest score.
func (l *LeaderboardService) Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	players, err := l.store.FetchTop(ctx, n)
	if err != nil {
		l.metrics.StoreError("fetch_top")
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(players))
	for i, p := range players {
		entries = append(entries, EntryFor(i+1, p))
	}
	return entries, nil
}

func (l *LeaderboardService) Player(ctx context.Context, username string) (*models.Player, error) {
	p, err := l.store.FetchByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, db.ErrPlayerNotFound) {
			l.metrics.StoreError("fetch_player")
		}
		return nil, err
	}
	return p, nil
}

func EntryFor(rank int, p models.Player) models.LeaderboardEntry {
	return models.LeaderboardEntry{
		Rank:         rank,
		Username:     p.Username,
		RoastScore:   p.RoastScore,
		TotalBattles: p.TotalBattles,
		Title:        RoastTitle(p.RoastScore),
	}
}
