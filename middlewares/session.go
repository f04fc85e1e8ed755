package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionIDKey is the gin context key holding the validated session id
const SessionIDKey = "sessionID"

// SessionID validates the :id path parameter and stores the canonical form
// in the context. Ids that are not UUIDs can never match a session, so they
// are rejected with 404 before any store lookup.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Param("id"))
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			c.Abort()
			return
		}
		c.Set(SessionIDKey, id.String())
		c.Next()
	}
}
