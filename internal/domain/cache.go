package domain

import (
	"context"
	"time"
)

// RateLimiter limits actions per key within a time window.
type RateLimiter interface {
	// Allow reports whether the action identified by key is within its
	// budget of limit actions per window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
