package models

import "time"

// Player is a leaderboard entry keyed by username
type Player struct {
	Username     string    `bson:"username" json:"username"`
	RoastScore   int       `bson:"roast_score" json:"roastScore"`
	TotalBattles int       `bson:"total_battles" json:"totalBattles"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// LeaderboardEntry is a ranked player as shown on the leaderboard screen
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	Username     string `json:"username"`
	RoastScore   int    `json:"roastScore"`
	TotalBattles int    `json:"totalBattles"`
	Title        string `json:"title"`
}

// LeaderboardEvent is pushed to feed subscribers after a battle is saved
type LeaderboardEvent struct {
	Type       string    `json:"type"` // "leaderboard_updated"
	Username   string    `json:"username"`
	Points     int       `json:"points"`
	RoastScore int       `json:"roastScore"`
	Timestamp  time.Time `json:"timestamp"`
}
