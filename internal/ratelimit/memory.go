package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a process-local sliding window limiter. State is lost on
// restart and is not shared between instances.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
	lastGC time.Time
}

// NewMemoryLimiter allows limit requests per key within any window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	recent := prune(l.hits[key], cutoff)

	if now.Sub(l.lastGC) > l.window {
		l.gc(cutoff)
		l.lastGC = now
	}

	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false, nil
	}
	l.hits[key] = append(recent, now)
	return true, nil
}

// gc drops keys with no hits inside the window. Caller holds mu.
func (l *MemoryLimiter) gc(cutoff time.Time) {
	for key, ts := range l.hits {
		if len(prune(ts, cutoff)) == 0 {
			delete(l.hits, key)
		}
	}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}
