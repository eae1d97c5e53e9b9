package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/apperr"
)

// Limiter enforces fixed-window quotas against a Store.
type Limiter struct {
	store Store
	nowFn func() time.Time
}

// NewLimiter constructs a Limiter. A nil nowFn uses the wall clock.
func NewLimiter(store Store, nowFn func() time.Time) *Limiter {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Limiter{store: store, nowFn: nowFn}
}

// Check records one attempt for key and reports whether it fits the quota.
// The window is set once on the first attempt and never moves until it expires.
func (l *Limiter) Check(ctx context.Context, key string, maxAttempts int, window time.Duration) (Result, error) {
	key = strings.TrimSpace(key)
	if key == "" || maxAttempts <= 0 || window <= 0 {
		return Result{}, fmt.Errorf("%w: key=%q max=%d window=%s", ErrInvalidArgument, key, maxAttempts, window)
	}
	if l == nil || l.store == nil {
		return Result{}, fmt.Errorf("rate limit: check %s: %w", key, apperr.ErrStoreUnavailable)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	counter, errHit := l.store.Hit(ctx, key, window, l.nowFn().UTC())
	if errHit != nil {
		return Result{}, fmt.Errorf("rate limit: check %s: %w: %w", key, apperr.ErrStoreUnavailable, errHit)
	}

	remaining := maxAttempts - counter.Attempts
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   counter.Attempts <= maxAttempts,
		Remaining: remaining,
		ResetAt:   counter.ResetAt,
	}, nil
}

// CheckQuota is Check with a Quota value.
func (l *Limiter) CheckQuota(ctx context.Context, key string, quota Quota) (Result, error) {
	return l.Check(ctx, key, quota.Max, quota.Window)
}

// Cleanup deletes counters whose window ended strictly before now.
func (l *Limiter) Cleanup(ctx context.Context) (int64, error) {
	if l == nil || l.store == nil {
		return 0, fmt.Errorf("rate limit: cleanup: %w", apperr.ErrStoreUnavailable)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	deleted, errDelete := l.store.DeleteExpired(ctx, l.nowFn().UTC())
	if errDelete != nil {
		return 0, fmt.Errorf("rate limit: cleanup: %w: %w", apperr.ErrStoreUnavailable, errDelete)
	}
	return deleted, nil
}
