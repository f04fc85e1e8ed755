package routes

import (
	"roastroyale/controllers"
	"roastroyale/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupGameRoutes sets up the session and battle routes
func SetupGameRoutes(router *gin.RouterGroup, gc *controllers.GameController) {
	router.POST("/sessions", gc.CreateSession)

	session := router.Group("/sessions/:id")
	session.Use(middlewares.SessionID())
	{
		session.GET("", gc.GetSession)
		session.POST("/start", gc.StartBattle)
		session.POST("/roast", gc.SubmitRoast)
		session.POST("/next", gc.NextRound)
		session.POST("/finish", gc.Finish)
		session.POST("/leaderboard", gc.ViewLeaderboard)
		session.POST("/play-again", gc.PlayAgain)
	}
}
