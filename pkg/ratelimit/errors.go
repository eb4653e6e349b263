package ratelimit

import "errors"

var (
	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid rate limit configuration")

	// ErrStoreNil is returned when a nil store is provided.
	ErrStoreNil = errors.New("rate limit store cannot be nil")

	// ErrStoreUnavailable indicates that the store backend is unavailable.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
