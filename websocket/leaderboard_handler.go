package websocket

import (
	"net/http"

	"roastroyale/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades the request and streams leaderboard events until the
// client goes away.
func (h *LeaderboardHub) Handler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogError("WebSocket upgrade error: %v", err)
		return
	}

	client := &FeedClient{Conn: conn}
	h.Register(client)
	defer h.Unregister(client)

	client.SafeWriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Connected to leaderboard updates",
	})

	// Reads only detect disconnects; control frames are handled by gorilla.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.LogWarning("Leaderboard WebSocket error: %v", err)
			}
			return
		}
	}
}
