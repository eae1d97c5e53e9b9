package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blissevent/invitation/internal/config"
	"github.com/redis/go-redis/v9"
)

func newMiniredisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:rl")
}

func TestRedisStore_KeyExpiresWithWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	store := NewRedisStore(client, "test:rl")
	ctx := context.Background()

	now := time.Now().UTC()
	counter, err := store.Hit(ctx, "gift:u-1", time.Minute, now)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if counter.Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", counter.Attempts)
	}
	if !mr.Exists("test:rl:gift:u-1") {
		t.Fatalf("expected prefixed key to exist")
	}
	if ttl := mr.TTL("test:rl:gift:u-1"); ttl <= 0 || ttl > time.Minute+redisExpiryGrace {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	found, ok, err := store.Find(ctx, "gift:u-1")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if found.Attempts != 1 || !found.ResetAt.Equal(counter.ResetAt) {
		t.Fatalf("unexpected counter %+v", found)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Find(ctx, "gift:u-1"); ok {
		t.Fatalf("expected counter to expire")
	}
	if deleted, errDelete := store.DeleteExpired(ctx, now); errDelete != nil || deleted != 0 {
		t.Fatalf("expected no-op delete, got %d %v", deleted, errDelete)
	}
}

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()

	store, closer, err := NewStoreFromConfig(ctx, config.RateLimitConfig{Backend: config.BackendMemory}, nil, nil)
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected MemoryStore, got %T", store)
	}
	_ = closer()

	if _, _, errDB := NewStoreFromConfig(ctx, config.RateLimitConfig{Backend: config.BackendDatabase}, nil, nil); errDB == nil {
		t.Fatalf("expected error for database backend without connection")
	}

	mr := miniredis.RunT(t)
	store, closer, err = NewStoreFromConfig(ctx, config.RateLimitConfig{
		Backend:     config.BackendRedis,
		RedisAddr:   mr.Addr(),
		RedisPrefix: "test:rl",
	}, nil, nil)
	if err != nil {
		t.Fatalf("redis backend: %v", err)
	}
	if _, ok := store.(*RedisStore); !ok {
		t.Fatalf("expected RedisStore, got %T", store)
	}
	if errClose := closer(); errClose != nil {
		t.Fatalf("close: %v", errClose)
	}

	addr := mr.Addr()
	mr.Close()
	if _, _, errPing := NewStoreFromConfig(ctx, config.RateLimitConfig{Backend: config.BackendRedis, RedisAddr: addr}, nil, nil); errPing == nil {
		t.Fatalf("expected ping failure for stopped redis")
	}
}
