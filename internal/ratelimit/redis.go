package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisExpiryGrace keeps a key a little past its window so a late read still sees it.
const redisExpiryGrace = time.Second

// ARGV: window ms, now ms, expiry grace ms. Returns {attempts, reset_at ms}.
var redisHitScript = redis.NewScript(`
local window = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local current = redis.call("HMGET", KEYS[1], "attempts", "reset_at")
if current[1] == false or current[2] == false or tonumber(current[2]) <= now then
  local resetAt = now + window
  redis.call("HSET", KEYS[1], "attempts", 1, "reset_at", resetAt)
  redis.call("PEXPIRE", KEYS[1], window + tonumber(ARGV[3]))
  return {1, resetAt}
end
local attempts = redis.call("HINCRBY", KEYS[1], "attempts", 1)
return {attempts, tonumber(current[2])}
`)

// RedisStore keeps counters in Redis hashes that expire with their window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// Find returns the counter hash for key.
func (s *RedisStore) Find(ctx context.Context, key string) (Counter, bool, error) {
	values, errGet := s.client.HMGet(ctx, s.buildKey(key), "attempts", "reset_at").Result()
	if errGet != nil {
		return Counter{}, false, fmt.Errorf("rate limit redis: find: %w", errGet)
	}
	if len(values) != 2 || values[0] == nil || values[1] == nil {
		return Counter{}, false, nil
	}
	attempts, errAttempts := strconv.Atoi(fmt.Sprint(values[0]))
	resetMillis, errReset := strconv.ParseInt(fmt.Sprint(values[1]), 10, 64)
	if errAttempts != nil || errReset != nil {
		return Counter{}, false, errors.New("rate limit redis: malformed counter")
	}
	return Counter{Key: key, Attempts: attempts, ResetAt: time.UnixMilli(resetMillis).UTC()}, true, nil
}

// Hit runs the window script atomically on the server.
func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (Counter, error) {
	res, errEval := redisHitScript.Run(ctx, s.client, []string{s.buildKey(key)},
		window.Milliseconds(), now.UnixMilli(), redisExpiryGrace.Milliseconds()).Result()
	if errEval != nil {
		return Counter{}, fmt.Errorf("rate limit redis: hit: %w", errEval)
	}
	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return Counter{}, errors.New("rate limit redis: unexpected response type")
	}
	attempts, okAttempts := toInt64(values[0])
	resetMillis, okReset := toInt64(values[1])
	if !okAttempts || !okReset {
		return Counter{}, errors.New("rate limit redis: unexpected response type")
	}
	return Counter{Key: key, Attempts: int(attempts), ResetAt: time.UnixMilli(resetMillis).UTC()}, nil
}

// DeleteExpired is a no-op: Redis expires counters itself.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Close releases the Redis client.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) buildKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
