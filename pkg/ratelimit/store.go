package ratelimit

import (
	"context"
	"time"
)

// Store is the counter backend for rate limit windows.
type Store interface {
	// Incr atomically increments the window counter and returns the new
	// count. The first increment on a key must set its expiry to ttl so
	// windows clean themselves up.
	Incr(ctx context.Context, key string, ttl time.Duration) (int, error)

	// TTL returns the remaining lifetime of the key. Used only to compute
	// the retry-after hint on denial.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
