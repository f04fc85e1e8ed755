package main

import (
	"bytes"
	"strings"
	"testing"

	"roastroyale/db"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"roastctl"}, args...))
	return out.String(), err
}

func TestParsePointsArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		user    int
		opp     int
		round   int
		wantErr bool
	}{
		{name: "round defaults to one", args: []string{"8", "5"}, user: 8, opp: 5, round: 1},
		{name: "explicit round", args: []string{"7", "5", "3"}, user: 7, opp: 5, round: 3},
		{name: "too few", args: []string{"8"}, wantErr: true},
		{name: "too many", args: []string{"1", "2", "3", "4"}, wantErr: true},
		{name: "not a number", args: []string{"eight", "5"}, wantErr: true},
		{name: "round zero", args: []string{"8", "5", "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, opp, round, err := parsePointsArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.user, user)
			assert.Equal(t, tt.opp, opp)
			assert.Equal(t, tt.round, round)
		})
	}
}

func TestPointsCommand(t *testing.T) {
	out, err := runCLI(t, "points", "7", "5", "3")
	require.NoError(t, err)
	assert.Equal(t, "Points: 16\n", out)

	out, err = runCLI(t, "points", "8", "5")
	require.NoError(t, err)
	assert.Equal(t, "Points: 13\n", out)

	_, err = runCLI(t, "points", "8")
	assert.Error(t, err)
}

func TestScoreCommand(t *testing.T) {
	out, err := runCLI(t, "score", "I would say you're like a broken GPS because you're always lost, lol, dead")
	require.NoError(t, err)
	assert.Equal(t, "Quality: 8/10 (Epic, high tier)\n", out)

	_, err = runCLI(t, "score", "  ")
	assert.Error(t, err)
}

func TestLeaderboardCommands(t *testing.T) {
	t.Setenv("ROAST_LEADERBOARD_BACKEND", "memory")

	out, err := runCLI(t, "leaderboard")
	require.NoError(t, err)
	assert.Equal(t, "No battles recorded yet.\n", out)

	_, err = runCLI(t, "player", "ghost")
	assert.ErrorIs(t, err, db.ErrPlayerNotFound)

	_, err = runCLI(t, "player")
	assert.Error(t, err)
}

func TestSeedThenLeaderboardOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("ROAST_LEADERBOARD_BACKEND", "redis")
	t.Setenv("ROAST_REDIS_ADDR", mr.Addr())

	out, err := runCLI(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded")

	out, err = runCLI(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")

	out, err = runCLI(t, "leaderboard", "--limit", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "RoastMaster3000")
	assert.Contains(t, lines[0], "156 pts")

	out, err = runCLI(t, "player", "RoastMaster3000")
	require.NoError(t, err)
	assert.Contains(t, out, "RoastMaster3000: 156 points over 4 battles")
}
