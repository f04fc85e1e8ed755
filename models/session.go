package models

import "time"

// State is a screen of the game
type State string

const (
	StateHome        State = "home"
	StateBattle      State = "battle"
	StateLeaderboard State = "leaderboard"
)

// Session is the per-player game state. It is treated as a value: every
// transition produces a new Session and leaves the old one untouched.
type Session struct {
	ID           string    `json:"id"`
	State        State     `json:"state"`
	Username     string    `json:"username"`
	BattleID     string    `json:"battleId,omitempty"` // identifies the battle to the leaderboard so a retried save counts once
	Round        *Round    `json:"round,omitempty"`
	BattleRound  int       `json:"battleRound"`
	BattleScore  int       `json:"battleScore"`  // points banked from completed rounds of this battle
	LastScore    int       `json:"lastScore"`    // cumulative leaderboard score after the last saved battle
	TotalBattles int       `json:"totalBattles"` // as reported by the leaderboard
	UsedPrompts  []int     `json:"usedPrompts,omitempty"`
	LastError    string    `json:"lastError,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can change it freely.
func (s Session) Clone() Session {
	out := s
	if s.Round != nil {
		r := *s.Round
		r.UserReactions = append([]Reaction(nil), s.Round.UserReactions...)
		r.OpponentReactions = append([]Reaction(nil), s.Round.OpponentReactions...)
		out.Round = &r
	}
	out.UsedPrompts = append([]int(nil), s.UsedPrompts...)
	return out
}
