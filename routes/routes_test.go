package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roastroyale/controllers"
	"roastroyale/db"
	"roastroyale/models"
	"roastroyale/services"
	"roastroyale/websocket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constRand struct{}

func (constRand) IntN(int) int { return 0 }

type brokenStore struct{}

var errBroken = errors.New("connection refused")

func (brokenStore) FetchTop(context.Context, int) ([]models.Player, error) { return nil, errBroken }
func (brokenStore) FetchByUsername(context.Context, string) (*models.Player, error) {
	return nil, errBroken
}
func (brokenStore) UpsertAfterBattle(context.Context, string, int, string) (*models.Player, error) {
	return nil, errBroken
}

// setupTestRouter mounts the routes the way the server does.
func setupTestRouter(store db.LeaderboardStore) (*gin.Engine, *websocket.LeaderboardHub) {
	gin.SetMode(gin.TestMode)

	hub := websocket.NewLeaderboardHub()
	game := services.NewGame(
		services.NewOfflineResponder(constRand{}, 2),
		store,
		services.NewPromptPool(services.DefaultPrompts(), constRand{}),
		services.NewAudienceSelector(constRand{}),
		services.WithPublisher(hub),
	)
	gc := controllers.NewGameController(services.NewSessionManager(game, db.NewMemorySessionStore(0)))
	lc := controllers.NewLeaderboardController(services.NewLeaderboardService(store, nil), 10)

	router := gin.New()
	api := router.Group("/")
	SetupGameRoutes(api, gc)
	SetupLeaderboardRoutes(api, lc, hub)
	return router, hub
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestBattleFlowOverHTTP(t *testing.T) {
	router, _ := setupTestRouter(db.NewMemoryLeaderboard())

	w, body := doJSON(t, router, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := body["id"].(string)
	assert.Equal(t, "home", body["state"])
	assert.Equal(t, "Newbie Toaster 🍞", body["title"])

	w, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/start", controllers.StartBattleRequest{Username: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "battle", body["state"])
	assert.NotEmpty(t, body["battleId"])

	w, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/roast", controllers.RoastRequest{Roast: "you're mean"})
	require.Equal(t, http.StatusOK, w.Code)
	round := body["round"].(map[string]interface{})
	assert.Equal(t, true, round["scored"])
	assert.EqualValues(t, 3, round["userQuality"])

	w, _ = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/roast", controllers.RoastRequest{Roast: "again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/finish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leaderboard", body["state"])

	w, body = doJSON(t, router, http.MethodGet, "/leaderboard?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := body["entries"].([]interface{})
	require.Len(t, entries, 1)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, "alice", first["username"])
	assert.EqualValues(t, 1, first["rank"])

	w, body = doJSON(t, router, http.MethodGet, "/players/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["title"])

	w, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/play-again", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "home", body["state"])
	assert.Equal(t, "alice", body["username"])

	w, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leaderboard", body["state"])
}

func TestErrorStatuses(t *testing.T) {
	router, _ := setupTestRouter(db.NewMemoryLeaderboard())

	w, _ := doJSON(t, router, http.MethodGet, "/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/players/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/leaderboard?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, body := doJSON(t, router, http.MethodPost, "/sessions", nil)
	id := body["id"].(string)

	w, body = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/next", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["error"])

	w, _ = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/start", controllers.StartBattleRequest{Username: " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreFailureIsBadGateway(t *testing.T) {
	router, _ := setupTestRouter(brokenStore{})

	w, _ := doJSON(t, router, http.MethodGet, "/leaderboard", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	_, body := doJSON(t, router, http.MethodPost, "/sessions", nil)
	id := body["id"].(string)
	doJSON(t, router, http.MethodPost, "/sessions/"+id+"/start", controllers.StartBattleRequest{Username: "bob"})
	doJSON(t, router, http.MethodPost, "/sessions/"+id+"/roast", controllers.RoastRequest{Roast: "you're mean"})

	w, _ = doJSON(t, router, http.MethodPost, "/sessions/"+id+"/finish", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w, body = doJSON(t, router, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "battle", body["state"])
	assert.Contains(t, body["lastError"], "connection refused")
}

func TestLeaderboardFeedRouteReceivesFinishedBattles(t *testing.T) {
	router, hub := setupTestRouter(db.NewMemoryLeaderboard())
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var hello map[string]interface{}
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello["type"])
	assert.Equal(t, 1, hub.ClientCount())

	_, body := doJSON(t, router, http.MethodPost, "/sessions", nil)
	id := body["id"].(string)
	doJSON(t, router, http.MethodPost, "/sessions/"+id+"/start", controllers.StartBattleRequest{Username: "cleo"})
	doJSON(t, router, http.MethodPost, "/sessions/"+id+"/roast", controllers.RoastRequest{Roast: "you're mean"})
	w, _ := doJSON(t, router, http.MethodPost, "/sessions/"+id+"/finish", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var event models.LeaderboardEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "leaderboard_updated", event.Type)
	assert.Equal(t, "cleo", event.Username)
}
