package db

import (
	"context"
	"fmt"
)

// demoPlayers gives a fresh install something to look at on the home screen.
var demoPlayers = []struct {
	Username string
	Battles  []int
}{
	{"RoastMaster3000", []int{45, 38, 42, 31}},
	{"BurnQueen", []int{40, 36, 28}},
	{"SavageSam", []int{33, 29}},
	{"ToastedTom", []int{18}},
	{"MildMike", []int{7}},
}

// SeedDemoPlayers records a few demo battles when the leaderboard is empty.
// It reports how many players were created.
func SeedDemoPlayers(ctx context.Context, store LeaderboardStore) (int, error) {
	existing, err := store.FetchTop(ctx, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to check leaderboard: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, p := range demoPlayers {
		for _, points := range p.Battles {
			if _, err := store.UpsertAfterBattle(ctx, p.Username, points, ""); err != nil {
				return 0, fmt.Errorf("failed to seed %s: %w", p.Username, err)
			}
		}
	}
	return len(demoPlayers), nil
}
