package controllers

import (
	"errors"
	"net/http"

	"roastroyale/db"
	"roastroyale/services"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors to HTTP status codes. Anything unknown is a
// persistence or upstream failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrSessionNotFound),
		errors.Is(err, db.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmptyUsername),
		errors.Is(err, services.ErrEmptyRoast),
		errors.Is(err, services.ErrRoastTooLong),
		errors.Is(err, services.ErrRoundAlreadyScored),
		errors.Is(err, services.ErrRoundNotScored),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, db.ErrInvalidUsername),
		errors.Is(err, db.ErrInvalidPoints):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
