package memory

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements domain.RateLimiter with in-process fixed windows:
// the first action on a key opens a window, subsequent actions count against
// it until it expires.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time
}

type rateWindow struct {
	start time.Time
	count int
}

// NewRateLimiter creates an empty limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

// Allow reports whether key has budget left in its current window and
// consumes one unit if so.
func (l *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= window {
		l.windows[key] = &rateWindow{start: now, count: 1}
		l.sweep(now, window)
		return true, nil
	}

	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// sweep drops expired windows so the map stays bounded by active clients.
func (l *RateLimiter) sweep(now time.Time, window time.Duration) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= window {
			delete(l.windows, k)
		}
	}
}
