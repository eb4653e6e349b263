package ratelimit

import "time"

// Result contains the outcome of a rate limit check.
type Result struct {
	Limit     int       // Maximum requests per window
	Remaining int       // Requests remaining in the current window
	ResetAt   time.Time // When the current window ends
}

// Allowed reports whether the request is admitted.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next request.
// Returns 0 if the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Config defines the fixed-window limiter configuration.
type Config struct {
	Limit  int           `env:"RATE_LIMIT_PER_WINDOW" envDefault:"7"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`
}
