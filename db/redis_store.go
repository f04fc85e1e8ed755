package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"roastroyale/models"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey  = "roast_leaderboard"
	playerKeyPrefix = "roast_player:"
	fieldBattles    = "total_battles"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
	battleKeyPrefix = "roast_battle:"

	// battleMarkerTTL bounds how long a finished battle id is remembered.
	battleMarkerTTL = 7 * 24 * time.Hour
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// RedisLeaderboard keeps scores in a sorted set and per-player metadata in
// hashes. Players with equal scores come back in reverse username order,
// which is how ZREVRANGE orders ties.
type RedisLeaderboard struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisLeaderboard(rdb *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{rdb: rdb, now: time.Now}
}

func playerKey(username string) string {
	return playerKeyPrefix + username
}

func (r *RedisLeaderboard) FetchTop(ctx context.Context, n int) ([]models.Player, error) {
	if n <= 0 {
		return []models.Player{}, nil
	}
	if r == nil || r.rdb == nil {
		return nil, fmt.Errorf("Redis client not available")
	}

	ranked, err := r.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	if len(ranked) == 0 {
		return []models.Player{}, nil
	}

	pipe := r.rdb.Pipeline()
	meta := make([]*redis.MapStringStringCmd, len(ranked))
	for i, z := range ranked {
		meta[i] = pipe.HGetAll(ctx, playerKey(fmt.Sprint(z.Member)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch player metadata: %w", err)
	}

	players := make([]models.Player, 0, len(ranked))
	for i, z := range ranked {
		players = append(players, playerFromHash(fmt.Sprint(z.Member), int(z.Score), meta[i].Val()))
	}
	return players, nil
}

func (r *RedisLeaderboard) FetchByUsername(ctx context.Context, username string) (*models.Player, error) {
	if r == nil || r.rdb == nil {
		return nil, fmt.Errorf("Redis client not available")
	}
	username = strings.TrimSpace(username)

	score, err := r.rdb.ZScore(ctx, leaderboardKey, username).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player: %w", err)
	}

	fields, err := r.rdb.HGetAll(ctx, playerKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player metadata: %w", err)
	}
	p := playerFromHash(username, int(score), fields)
	return &p, nil
}

// upsertScript applies a battle atomically. When a battle key is given it is
// claimed with SET NX first, and a second claim leaves the player untouched.
// Returns {applied, score, battles, created_at}.
var upsertScript = redis.NewScript(`
if KEYS[3] ~= "" then
	if not redis.call("SET", KEYS[3], "1", "NX", "EX", ARGV[4]) then
		return {0, "", 0, ""}
	end
end
local score = redis.call("ZINCRBY", KEYS[1], ARGV[1], ARGV[2])
local battles = redis.call("HINCRBY", KEYS[2], "total_battles", 1)
redis.call("HSETNX", KEYS[2], "created_at", ARGV[3])
redis.call("HSET", KEYS[2], "updated_at", ARGV[3])
local created = redis.call("HGET", KEYS[2], "created_at")
return {1, score, battles, created}
`)

// UpsertAfterBattle runs as one Lua script so the battle marker, the score
// and the battle count move together.
func (r *RedisLeaderboard) UpsertAfterBattle(ctx context.Context, username string, points int, battleID string) (*models.Player, error) {
	username, err := validateUpsert(username, points)
	if err != nil {
		return nil, err
	}
	if r == nil || r.rdb == nil {
		return nil, fmt.Errorf("Redis client not available")
	}

	now := r.now().UTC().Format(time.RFC3339Nano)
	marker := ""
	if battleID != "" {
		marker = battleKeyPrefix + battleID
	}

	keys := []string{leaderboardKey, playerKey(username), marker}
	res, err := upsertScript.Run(ctx, r.rdb, keys, points, username, now, int(battleMarkerTTL.Seconds())).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to update player score: %w", err)
	}
	if len(res) != 4 {
		return nil, fmt.Errorf("failed to update player score: unexpected reply %v", res)
	}
	if applied, _ := res[0].(int64); applied == 0 {
		return nil, ErrBattleAlreadyRecorded
	}

	score, _ := strconv.ParseFloat(fmt.Sprint(res[1]), 64)
	battles, _ := res[2].(int64)
	return &models.Player{
		Username:     username,
		RoastScore:   int(score),
		TotalBattles: int(battles),
		CreatedAt:    parseRedisTime(fmt.Sprint(res[3])),
		UpdatedAt:    parseRedisTime(now),
	}, nil
}

func playerFromHash(username string, score int, fields map[string]string) models.Player {
	battles, _ := strconv.Atoi(fields[fieldBattles])
	return models.Player{
		Username:     username,
		RoastScore:   score,
		TotalBattles: battles,
		CreatedAt:    parseRedisTime(fields[fieldCreatedAt]),
		UpdatedAt:    parseRedisTime(fields[fieldUpdatedAt]),
	}
}

func parseRedisTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
