package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Counter is the subset of the Redis client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Limiter is a fixed-window request counter shared by all instances through Redis.
type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
}

func New(counter Counter, limit int64, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window}
}

// Allow counts one hit for subject/action and reports whether it is within
// the limit. A non-positive limit disables limiting.
func (l *Limiter) Allow(ctx context.Context, subject, action string) (bool, error) {
	const operation = "ratelimit.Allow"

	if l.limit <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", subject, action)

	count, err := l.counter.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%s: failed to increment rate limit counter: %w", operation, err)
	}

	// First hit opens the window.
	if count == 1 {
		if _, err := l.counter.Expire(ctx, key, l.window); err != nil {
			return false, fmt.Errorf("%s: failed to set rate limit window: %w", operation, err)
		}
		return true, nil
	}

	if count > l.limit {
		// A key without TTL would stay over the limit forever.
		if err := l.rearm(ctx, key); err != nil {
			return false, fmt.Errorf("%s: %w", operation, err)
		}
		return false, nil
	}

	return true, nil
}

// rearm opens the window again when the first Expire of a key was lost.
func (l *Limiter) rearm(ctx context.Context, key string) error {
	ttl, err := l.counter.TTL(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read rate limit window: %w", err)
	}
	if ttl >= 0 {
		return nil
	}
	if _, err := l.counter.Expire(ctx, key, l.window); err != nil {
		return fmt.Errorf("failed to set rate limit window: %w", err)
	}
	return nil
}
