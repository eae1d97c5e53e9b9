package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidArgument rejects empty keys and non-positive quotas.
var ErrInvalidArgument = errors.New("rate limit: invalid argument")

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Counter is the persisted state of one bucket.
type Counter struct {
	Key      string
	Attempts int
	ResetAt  time.Time
}

// Store persists fixed-window counters. Hit must be a single atomic
// operation: it starts a fresh window when none is active and increments
// the active one otherwise.
type Store interface {
	Find(ctx context.Context, key string) (Counter, bool, error)
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (Counter, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Quota is an attempt cap over a fixed window.
type Quota struct {
	Max    int
	Window time.Duration
}
