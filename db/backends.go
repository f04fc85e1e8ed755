package db

import (
	"context"
	"errors"

	"roastroyale/config"
	"roastroyale/utils"

	"github.com/redis/go-redis/v9"
)

// Backends bundles the stores selected by the configuration.
type Backends struct {
	Leaderboard LeaderboardStore
	Sessions    SessionStore
	// Redis is nil unless a redis backend was configured.
	Redis *redis.Client

	closers []func(context.Context) error
}

// Open connects to whatever the configuration asks for. Redis is dialed at
// most once and shared by the leaderboard and the session store.
func Open(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{}

	var rdb *redis.Client
	if cfg.UsesRedis() {
		client, err := NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		rdb = client
		b.Redis = client
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		utils.LogInfo("Connected to Redis at %s", cfg.Redis.Addr)
	}

	switch cfg.Leaderboard.Backend {
	case config.BackendMongo:
		store, err := ConnectMongoDB(ctx, cfg.Database.URI, cfg.Database.Collection)
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.Leaderboard = store
		b.closers = append(b.closers, store.Close)
		utils.LogInfo("Connected to MongoDB")
	case config.BackendRedis:
		b.Leaderboard = NewRedisLeaderboard(rdb)
	default:
		utils.LogWarning("Using in-memory leaderboard; scores are lost on restart")
		b.Leaderboard = NewMemoryLeaderboard()
	}

	if cfg.Sessions.Backend == config.BackendRedis {
		b.Sessions = NewRedisSessionStore(rdb, cfg.SessionTTL())
	} else {
		b.Sessions = NewMemorySessionStore(cfg.SessionTTL())
	}
	return b, nil
}

// Close releases every connection opened by Open.
func (b *Backends) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
