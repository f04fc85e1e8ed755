package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"roastroyale/db"
	"roastroyale/metrics"
	"roastroyale/models"
	"roastroyale/utils"

	"github.com/google/uuid"
)

var (
	ErrEmptyUsername      = errors.New("username is required")
	ErrEmptyRoast         = errors.New("roast must not be empty")
	ErrRoastTooLong       = fmt.Errorf("roast must be at most %d characters", models.MaxRoastLength)
	ErrRoundAlreadyScored = errors.New("round has already been scored")
	ErrRoundNotScored     = errors.New("round has not been scored yet")
	ErrInvalidTransition  = errors.New("invalid transition for current state")
)

// EventPublisher receives leaderboard updates after a battle is saved.
type EventPublisher interface {
	PublishLeaderboardEvent(event models.LeaderboardEvent)
}

// Game runs the battle state machine. Transitions take a session by value
// and return the next session; the input is never modified.
type Game struct {
	responder Responder
	store     db.LeaderboardStore
	prompts   *PromptPool
	audience  *AudienceSelector
	metrics   *metrics.Metrics
	publisher EventPublisher
	now       func() time.Time
	battleID  func() string
}

type GameOption func(*Game)

func WithMetrics(m *metrics.Metrics) GameOption {
	return func(g *Game) { g.metrics = m }
}

func WithPublisher(p EventPublisher) GameOption {
	return func(g *Game) { g.publisher = p }
}

func WithClock(now func() time.Time) GameOption {
	return func(g *Game) { g.now = now }
}

// WithBattleIDs replaces the generator that names each battle.
func WithBattleIDs(next func() string) GameOption {
	return func(g *Game) { g.battleID = next }
}

func NewGame(responder Responder, store db.LeaderboardStore, prompts *PromptPool, audience *AudienceSelector, opts ...GameOption) *Game {
	g := &Game{
		responder: responder,
		store:     store,
		prompts:   prompts,
		audience:  audience,
		now:       time.Now,
		battleID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSession returns a fresh session on the home screen.
func (g *Game) NewSession(id string) models.Session {
	now := g.now().UTC()
	return models.Session{
		ID:        id,
		State:     models.StateHome,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (g *Game) StartBattle(s models.Session, username string) (models.Session, error) {
	if s.State != models.StateHome {
		return s, ErrInvalidTransition
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return s, ErrEmptyUsername
	}

	next := s.Clone()
	next.State = models.StateBattle
	next.Username = username
	next.BattleID = g.battleID()
	next.BattleRound = 1
	next.BattleScore = 0
	next.UsedPrompts = nil
	next.LastError = ""
	next.Round = g.newRound(&next)
	next.UpdatedAt = g.now().UTC()
	return next, nil
}

// SubmitRoast scores the player's roast, asks the opponent for a comeback
// and records points and reactions on the current round.
func (g *Game) SubmitRoast(ctx context.Context, s models.Session, roast string) (models.Session, error) {
	if s.State != models.StateBattle || s.Round == nil {
		return s, ErrInvalidTransition
	}
	if s.Round.Scored {
		return s, ErrRoundAlreadyScored
	}
	roast = strings.TrimSpace(roast)
	if roast == "" {
		return s, ErrEmptyRoast
	}
	if utf8.RuneCountInString(roast) > models.MaxRoastLength {
		return s, ErrRoastTooLong
	}

	userQuality := AssessRoastQuality(roast)
	reply := g.responder.Respond(ctx, roast, s.Round.Prompt)

	next := s.Clone()
	r := next.Round
	r.UserRoast = roast
	r.UserQuality = userQuality
	r.UserLabel = QualityLabel(userQuality)
	r.OpponentRoast = reply.Text
	r.OpponentQuality = reply.Quality
	r.OpponentLabel = QualityLabel(reply.Quality)
	r.OpponentFallback = reply.Fallback
	r.Points = RoundPoints(userQuality, reply.Quality, r.Number)
	r.UserReactions = g.audience.GenerateAudienceReactions(userQuality, models.SubjectUser)
	r.OpponentReactions = g.audience.GenerateAudienceReactions(reply.Quality, models.SubjectOpponent)
	r.Scored = true
	next.LastError = ""
	next.UpdatedAt = g.now().UTC()

	g.metrics.RoastScored(string(TierFor(userQuality)), userQuality, reply.Quality)
	return next, nil
}

func (g *Game) NextRound(s models.Session) (models.Session, error) {
	if s.State != models.StateBattle || s.Round == nil {
		return s, ErrInvalidTransition
	}
	if !s.Round.Scored {
		return s, ErrRoundNotScored
	}

	next := s.Clone()
	next.BattleScore += s.Round.Points
	next.BattleRound++
	next.LastError = ""
	next.Round = g.newRound(&next)
	next.UpdatedAt = g.now().UTC()
	return next, nil
}

// Finish saves the battle total to the leaderboard. When the store fails the
// input session is returned unchanged apart from LastError, so the player
// can retry. The write is keyed by the session's BattleID, so a retry after
// the score was already stored does not count the battle twice.
func (g *Game) Finish(ctx context.Context, s models.Session) (models.Session, error) {
	if s.State != models.StateBattle || s.Round == nil {
		return s, ErrInvalidTransition
	}
	if !s.Round.Scored {
		return s, ErrRoundNotScored
	}

	total := s.BattleScore + s.Round.Points
	player, err := g.store.UpsertAfterBattle(ctx, s.Username, total, s.BattleID)
	replayed := errors.Is(err, db.ErrBattleAlreadyRecorded)
	if replayed {
		utils.LogWarning("battle %s for %s was already saved", s.BattleID, s.Username)
		player, err = g.store.FetchByUsername(ctx, s.Username)
	}
	if err != nil {
		utils.LogError("failed to save battle for %s (%d points): %v", s.Username, total, err)
		g.metrics.StoreError("upsert")
		failed := s.Clone()
		failed.LastError = err.Error()
		failed.UpdatedAt = g.now().UTC()
		return failed, fmt.Errorf("failed to save battle: %w", err)
	}

	now := g.now().UTC()
	next := s.Clone()
	next.State = models.StateLeaderboard
	next.BattleScore = total
	next.LastScore = player.RoastScore
	next.TotalBattles = player.TotalBattles
	next.LastError = ""
	next.UpdatedAt = now
	if replayed {
		return next, nil
	}

	g.metrics.BattleFinished(total)
	utils.LogSuccess("%s finished a battle with %d points (total %d)", player.Username, total, player.RoastScore)
	if g.publisher != nil {
		g.publisher.PublishLeaderboardEvent(models.LeaderboardEvent{
			Type:       "leaderboard_updated",
			Username:   player.Username,
			Points:     total,
			RoastScore: player.RoastScore,
			Timestamp:  now,
		})
	}
	return next, nil
}

func (g *Game) ViewLeaderboard(s models.Session) (models.Session, error) {
	if s.State != models.StateHome {
		return s, ErrInvalidTransition
	}
	next := s.Clone()
	next.State = models.StateLeaderboard
	next.UpdatedAt = g.now().UTC()
	return next, nil
}

func (g *Game) PlayAgain(s models.Session) (models.Session, error) {
	if s.State != models.StateLeaderboard {
		return s, ErrInvalidTransition
	}
	next := s.Clone()
	next.State = models.StateHome
	next.Round = nil
	next.BattleID = ""
	next.BattleRound = 0
	next.BattleScore = 0
	next.UsedPrompts = nil
	next.LastError = ""
	next.UpdatedAt = g.now().UTC()
	return next, nil
}

// newRound draws the next theme for s and records it in s.UsedPrompts.
func (g *Game) newRound(s *models.Session) *models.Round {
	idx, used := g.prompts.Next(s.UsedPrompts)
	s.UsedPrompts = used
	return &models.Round{
		Number:      s.BattleRound,
		PromptIndex: idx,
		Prompt:      g.prompts.Prompt(idx),
	}
}
