package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/config"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

// NewStoreFromConfig selects the counter backend. The returned closer
// releases backend resources and is never nil.
func NewStoreFromConfig(ctx context.Context, cfg config.RateLimitConfig, db *gorm.DB, newRedisClient RedisClientFactory) (Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", config.BackendDatabase:
		if db == nil {
			return nil, noop, fmt.Errorf("rate limit: database backend requires a connection")
		}
		return NewGormStore(db), noop, nil
	case config.BackendMemory:
		log.Warn("rate limit: using in-memory counters; limits are per process")
		return NewMemoryStore(), noop, nil
	case config.BackendRedis:
		if newRedisClient == nil {
			newRedisClient = redis.NewClient
		}
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			return nil, noop, fmt.Errorf("rate limit redis: missing address")
		}
		redisDB := cfg.RedisDB
		if redisDB < 0 {
			redisDB = 0
		}
		client := newRedisClient(&redis.Options{
			Addr:     addr,
			Password: strings.TrimSpace(cfg.RedisPassword),
			DB:       redisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if errPing := client.Ping(ctxPing).Err(); errPing != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("rate limit redis: ping: %w", errPing)
		}
		store := NewRedisStore(client, cfg.RedisPrefix)
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("rate limit: unsupported backend: %s", cfg.Backend)
	}
}
