package controllers

import (
	"net/http"
	"strconv"

	"roastroyale/services"

	"github.com/gin-gonic/gin"
)

// LeaderboardController serves the ranked leaderboard and player lookups.
type LeaderboardController struct {
	leaderboard  *services.LeaderboardService
	defaultLimit int
}

func NewLeaderboardController(leaderboard *services.LeaderboardService, defaultLimit int) *LeaderboardController {
	return &LeaderboardController{leaderboard: leaderboard, defaultLimit: defaultLimit}
}

// GetLeaderboard returns the top players; ?limit defaults to the configured
// value and is capped at 100.
func (lc *LeaderboardController) GetLeaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	limit = services.ClampLimit(limit, lc.defaultLimit)

	entries, err := lc.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (lc *LeaderboardController) GetPlayer(c *gin.Context) {
	player, err := lc.leaderboard.Player(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player": player,
		"title":  services.RoastTitle(player.RoastScore),
	})
}
