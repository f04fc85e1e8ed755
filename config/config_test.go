package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
leaderboard:
  backend: memory
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1313, cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 15*time.Second, cfg.GeminiTimeout())
	assert.Equal(t, OpponentOffline, cfg.Opponent.Mode)
	assert.Equal(t, 2, cfg.Opponent.Band)
	assert.Equal(t, BackendMemory, cfg.Sessions.Backend)
	assert.Equal(t, 10, cfg.Leaderboard.DefaultLimit)
	assert.False(t, cfg.UsesRedis())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
leaderboard:
  backend: memory
`)
	t.Setenv("ROAST_SERVER_PORT", "9090")
	t.Setenv("ROAST_LEADERBOARD_BACKEND", "redis")
	t.Setenv("ROAST_REDIS_ADDR", "cache:6380")
	t.Setenv("ROAST_OPPONENT_MODE", "online")
	t.Setenv("ROAST_GEMINI_API_KEY", "key")
	t.Setenv("ROAST_ALLOW_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, BackendRedis, cfg.Leaderboard.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, OpponentOnline, cfg.Opponent.Mode)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowOrigins)
	assert.True(t, cfg.UsesRedis())
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{
			name: "mongo without uri",
			body: "leaderboard:\n  backend: mongo\n",
		},
		{
			name: "unknown backend",
			body: "leaderboard:\n  backend: sqlite\n",
		},
		{
			name: "online without api key",
			body: "leaderboard:\n  backend: memory\nopponent:\n  mode: online\n",
		},
		{
			name: "negative band",
			body: "leaderboard:\n  backend: memory\nopponent:\n  band: -1\n",
		},
		{
			name: "non numeric port",
			body: "leaderboard:\n  backend: memory\n",
			env:  map[string]string{"ROAST_SERVER_PORT": "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigOpponentBand(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  string
		want int
	}{
		{name: "absent", body: "leaderboard:\n  backend: memory\n", want: 2},
		{name: "zero in file", body: "leaderboard:\n  backend: memory\nopponent:\n  band: 0\n", want: 0},
		{name: "set in file", body: "leaderboard:\n  backend: memory\nopponent:\n  band: 4\n", want: 4},
		{name: "zero from env", body: "leaderboard:\n  backend: memory\n", env: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("ROAST_OPPONENT_BAND", tt.env)
			}
			cfg, err := LoadConfig(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Opponent.Band)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
