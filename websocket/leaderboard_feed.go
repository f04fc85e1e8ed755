package websocket

import (
	"sync"

	"roastroyale/models"
	"roastroyale/utils"

	"github.com/gorilla/websocket"
)

// FeedClient is a connection subscribed to leaderboard updates
type FeedClient struct {
	Conn    *websocket.Conn
	writeMu sync.Mutex
}

// SafeWriteJSON serializes writes; gorilla connections allow one writer at a time
func (fc *FeedClient) SafeWriteJSON(v interface{}) error {
	fc.writeMu.Lock()
	defer fc.writeMu.Unlock()
	return fc.Conn.WriteJSON(v)
}

// LeaderboardHub broadcasts leaderboard events to every connected client
type LeaderboardHub struct {
	mu      sync.RWMutex
	clients map[*FeedClient]bool
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{clients: make(map[*FeedClient]bool)}
}

// Register adds a client to the feed
func (h *LeaderboardHub) Register(client *FeedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	utils.LogDebug("Leaderboard feed client registered. Total clients: %d", len(h.clients))
}

// Unregister removes a client and closes its connection
func (h *LeaderboardHub) Unregister(client *FeedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	client.Conn.Close()
	utils.LogDebug("Leaderboard feed client unregistered. Total clients: %d", len(h.clients))
}

// PublishLeaderboardEvent sends the event to all clients. Clients that fail
// the write are dropped.
func (h *LeaderboardHub) PublishLeaderboardEvent(event models.LeaderboardEvent) {
	h.mu.RLock()
	clients := make([]*FeedClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.SafeWriteJSON(event); err != nil {
			utils.LogWarning("Error broadcasting leaderboard event to client: %v", err)
			h.Unregister(client)
		}
	}

	utils.LogDebug("Broadcasted %s for %s to %d clients", event.Type, event.Username, len(clients))
}

// ClientCount returns the number of connected feed clients
func (h *LeaderboardHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
