package routes

import (
	"roastroyale/controllers"
	"roastroyale/websocket"

	"github.com/gin-gonic/gin"
)

// SetupLeaderboardRoutes sets up the leaderboard, player and live feed routes
func SetupLeaderboardRoutes(router *gin.RouterGroup, lc *controllers.LeaderboardController, hub *websocket.LeaderboardHub) {
	router.GET("/leaderboard", lc.GetLeaderboard)
	router.GET("/players/:username", lc.GetPlayer)
	router.GET("/ws/leaderboard", hub.Handler)
}
