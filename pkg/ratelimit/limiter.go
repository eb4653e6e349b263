package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// keyPrefix namespaces limiter keys in the shared counter substrate.
const keyPrefix = "rl"

// Limiter implements a fixed-window request limiter: requests are counted
// per (client, window bucket) and denied once the count exceeds the limit.
//
// A store failure admits the request (fail open). Rate limiting is an
// abuse guard, not a correctness guarantee; an unrelated store outage must
// not block all traffic.
type Limiter struct {
	store  Store
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger used to report store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source. Intended for tests that need to
// cross window boundaries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a fixed-window limiter backed by the given store.
func New(store Store, cfg Config, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, cfg.Limit)
	}
	// Buckets are computed in whole seconds, so anything shorter would
	// divide by zero on every Allow call.
	if cfg.Window < time.Second {
		return nil, fmt.Errorf("%w: window must be at least one second, got %v", ErrInvalidConfig, cfg.Window)
	}

	l := &Limiter{
		store:  store,
		config: cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow counts a request for the client and reports whether it is admitted.
func (l *Limiter) Allow(ctx context.Context, clientID string) (*Result, error) {
	now := l.now()
	windowSec := int64(l.config.Window / time.Second)
	bucket := now.Unix() / windowSec
	key := fmt.Sprintf("%s:%s:%d", keyPrefix, clientID, bucket)
	resetAt := time.Unix((bucket+1)*windowSec, 0)

	count, err := l.store.Incr(ctx, key, l.config.Window)
	if err != nil {
		// Fail open: admit and report a full window so callers emit sane
		// headers.
		l.logger.WarnContext(ctx, "rate limit store unavailable, admitting request",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()))
		return &Result{
			Limit:     l.config.Limit,
			Remaining: l.config.Limit - 1,
			ResetAt:   resetAt,
		}, nil
	}

	res := &Result{
		Limit:     l.config.Limit,
		Remaining: l.config.Limit - count,
		ResetAt:   resetAt,
	}

	if !res.Allowed() {
		// Prefer the key's actual TTL for the retry hint; the bucket edge
		// is a fine fallback if the TTL read fails.
		if ttl, err := l.store.TTL(ctx, key); err == nil && ttl > 0 {
			res.ResetAt = now.Add(ttl)
		}
	}

	return res, nil
}
