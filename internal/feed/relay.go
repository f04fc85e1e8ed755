package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roastroyale/models"
	"roastroyale/utils"

	"github.com/redis/go-redis/v9"
)

const (
	// StreamKey holds leaderboard events shared by every server instance.
	StreamKey = "roast_leaderboard:events"

	streamMaxLen = 10000
	readBlock    = time.Second
	readCount    = 100
	retryDelay   = time.Second
)

// Broadcaster delivers an event to the clients connected to this instance.
type Broadcaster interface {
	PublishLeaderboardEvent(event models.LeaderboardEvent)
}

// StreamRelay fans leaderboard events out through a Redis Stream so that
// feed clients on every instance see every saved battle. Each instance
// reads the whole stream; there is no consumer group.
type StreamRelay struct {
	rdb    *redis.Client
	stream string
	local  Broadcaster
}

func NewStreamRelay(rdb *redis.Client, local Broadcaster) *StreamRelay {
	return &StreamRelay{rdb: rdb, stream: StreamKey, local: local}
}

// PublishLeaderboardEvent appends the event to the stream. Local clients get
// it back through Run. If Redis is unreachable the event is delivered to
// local clients only.
func (r *StreamRelay) PublishLeaderboardEvent(event models.LeaderboardEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.publish(ctx, event); err != nil {
		utils.LogWarning("leaderboard relay publish failed, delivering locally: %v", err)
		r.local.PublishLeaderboardEvent(event)
	}
}

func (r *StreamRelay) publish(ctx context.Context, event models.LeaderboardEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Add to stream with MAXLEN to bound history
	err = r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{"data": string(data)},
		MaxLen: streamMaxLen,
		Approx: true,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Run forwards new stream entries to the local broadcaster until ctx is
// cancelled. Entries written before Run first reaches Redis are skipped.
// Redis errors never stop the loop; Run waits and tries again.
func (r *StreamRelay) Run(ctx context.Context) {
	lastID := ""
	for {
		if lastID == "" {
			id, err := r.tailID(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				utils.LogWarning("leaderboard relay cannot reach redis, retrying: %v", err)
				if !sleep(ctx, retryDelay) {
					return
				}
				continue
			}
			lastID = id
		}

		streams, err := r.rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{r.stream, lastID},
			Count:   readCount,
			Block:   readBlock,
		}).Result()
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			utils.LogWarning("leaderboard relay read failed: %v", err)
			if !sleep(ctx, retryDelay) {
				return
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				lastID = message.ID
				event, err := decodeMessage(message)
				if err != nil {
					utils.LogWarning("skipping leaderboard event %s: %v", message.ID, err)
					continue
				}
				r.local.PublishLeaderboardEvent(event)
			}
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// tailID returns the id of the newest entry, or "0-0" for an empty stream.
func (r *StreamRelay) tailID(ctx context.Context) (string, error) {
	last, err := r.rdb.XRevRangeN(ctx, r.stream, "+", "-", 1).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read stream tail: %w", err)
	}
	if len(last) == 0 {
		return "0-0", nil
	}
	return last[0].ID, nil
}

func decodeMessage(message redis.XMessage) (models.LeaderboardEvent, error) {
	var event models.LeaderboardEvent
	data, ok := message.Values["data"].(string)
	if !ok {
		return event, errors.New("invalid message format: missing data field")
	}
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}
