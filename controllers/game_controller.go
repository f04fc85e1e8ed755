package controllers

import (
	"net/http"

	"roastroyale/middlewares"
	"roastroyale/models"
	"roastroyale/services"

	"github.com/gin-gonic/gin"
)

type StartBattleRequest struct {
	Username string `json:"username"`
}

type RoastRequest struct {
	Roast string `json:"roast"`
}

// SessionResponse wraps a session with the derived display fields.
type SessionResponse struct {
	models.Session
	Title string `json:"title"`
}

// GameController serves the per-session battle endpoints.
type GameController struct {
	sessions *services.SessionManager
}

func NewGameController(sessions *services.SessionManager) *GameController {
	return &GameController{sessions: sessions}
}

func sessionResponse(s models.Session) SessionResponse {
	return SessionResponse{Session: s, Title: services.RoastTitle(s.LastScore)}
}

func (gc *GameController) CreateSession(c *gin.Context) {
	s, err := gc.sessions.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse(s))
}

func (gc *GameController) GetSession(c *gin.Context) {
	s, err := gc.sessions.Get(c.Request.Context(), c.GetString(middlewares.SessionIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (gc *GameController) StartBattle(c *gin.Context) {
	var req StartBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	id := c.GetString(middlewares.SessionIDKey)
	gc.respond(c, func() (models.Session, error) {
		return gc.sessions.StartBattle(c.Request.Context(), id, req.Username)
	})
}

func (gc *GameController) SubmitRoast(c *gin.Context) {
	var req RoastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	id := c.GetString(middlewares.SessionIDKey)
	gc.respond(c, func() (models.Session, error) {
		return gc.sessions.SubmitRoast(c.Request.Context(), id, req.Roast)
	})
}

func (gc *GameController) NextRound(c *gin.Context) {
	id := c.GetString(middlewares.SessionIDKey)
	gc.respond(c, func() (models.Session, error) {
		return gc.sessions.NextRound(c.Request.Context(), id)
	})
}

func (gc *GameController) Finish(c *gin.Context) {
	id := c.GetString(middlewares.SessionIDKey)
	gc.respond(c, func() (models.Session, error) {
		return gc.sessions.Finish(c.Request.Context(), id)
	})
}

func (gc *GameController) ViewLeaderboard(c *gin.Context) {
	id := c.GetString(middlewares.SessionIDKey)
	gc.respond(c, func() (models.Session, error) {
		return gc.sessions.ViewLeaderboard(c.Request.Context(), id)
	})
}

func (gc *GameController) PlayAgain(c *gin.Context) {
	id := c.GetString(middlewares.SessionIDKey)
	gc.respond(c, func() (models.Session, error) {
		return gc.sessions.PlayAgain(c.Request.Context(), id)
	})
}

func (gc *GameController) respond(c *gin.Context, transition func() (models.Session, error)) {
	s, err := transition()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}
