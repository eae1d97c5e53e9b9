package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	attempts int
	resetAt  time.Time
}

// MemoryStore keeps counters in process memory. Single-process use only.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*memoryEntry
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*memoryEntry),
	}
}

// Find returns the counter for key.
func (s *MemoryStore) Find(_ context.Context, key string) (Counter, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.counters[key]
	if entry == nil {
		return Counter{}, false, nil
	}
	return Counter{Key: key, Attempts: entry.attempts, ResetAt: entry.resetAt}, true, nil
}

// Hit starts or increments the window for key under the store mutex.
func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration, now time.Time) (Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.counters[key]
	if entry == nil {
		entry = &memoryEntry{}
		s.counters[key] = entry
	}
	if entry.attempts == 0 || !entry.resetAt.After(now) {
		entry.attempts = 1
		entry.resetAt = now.Add(window)
	} else {
		entry.attempts++
	}
	return Counter{Key: key, Attempts: entry.attempts, ResetAt: entry.resetAt}, nil
}

// DeleteExpired drops counters whose window ended before now.
func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for key, entry := range s.counters {
		if entry.resetAt.Before(now) {
			delete(s.counters, key)
			deleted++
		}
	}
	return deleted, nil
}
