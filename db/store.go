package db

import (
	"context"
	"errors"
	"strings"

	"roastroyale/models"
)

// Sentinel errors for the storage layer.
var (
	// ErrPlayerNotFound means no leaderboard entry exists for the username.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrInvalidUsername rejects empty or whitespace-only usernames.
	ErrInvalidUsername = errors.New("username is required")

	// ErrInvalidPoints rejects negative score changes; scores only go up.
	ErrInvalidPoints = errors.New("points must not be negative")

	// ErrSessionNotFound means the session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBattleAlreadyRecorded means the battle id was already applied to
	// the player; the stored score is unchanged.
	ErrBattleAlreadyRecorded = errors.New("battle already recorded")
)

// recentBattleLimit bounds how many battle ids are remembered per player.
const recentBattleLimit = 50

// LeaderboardStore persists cumulative player scores.
type LeaderboardStore interface {
	// FetchTop returns at most n players ordered by roast score, highest first.
	FetchTop(ctx context.Context, n int) ([]models.Player, error)
	// FetchByUsername returns ErrPlayerNotFound when the player has never battled.
	FetchByUsername(ctx context.Context, username string) (*models.Player, error)
	// UpsertAfterBattle adds points and one battle to the player, creating
	// the entry on first use. The change is applied atomically or not at all.
	// A non-empty battleID is applied at most once; a repeat returns
	// ErrBattleAlreadyRecorded. An empty battleID is never deduplicated.
	UpsertAfterBattle(ctx context.Context, username string, points int, battleID string) (*models.Player, error)
}

func validateUpsert(username string, points int) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrInvalidUsername
	}
	if points < 0 {
		return "", ErrInvalidPoints
	}
	return username, nil
}
