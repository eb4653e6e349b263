package quota

import (
	"context"
	"time"
)

// Store is the durable counter substrate backing quota admission decisions.
//
// Implementations must provide atomic increments: callers never do
// read-modify-write, so the store stays correct if the delivery router is
// ever scaled to multiple workers.
type Store interface {
	// Get returns the current value of the counter, 0 if it does not exist.
	Get(ctx context.Context, counterID string) (int, error)

	// Incr atomically increments the counter by one and returns the new value.
	Incr(ctx context.Context, counterID string) (int, error)

	// Set overwrites the counter with the given value.
	Set(ctx context.Context, counterID string, value int) error

	// ResetAll sets every listed counter back to zero.
	ResetAll(ctx context.Context, counterIDs ...string) error
}

// dayFormat is the UTC date layout appended to daily counter keys.
const dayFormat = "2006-01-02"

// counterTTL bounds the lifetime of daily counters. Two days covers clock
// skew around the midnight boundary; beyond that the counter is garbage.
const counterTTL = 48 * time.Hour

// DayKey derives the storage key for a counter's current daily window.
// Keying by UTC date makes the daily reset lazy: a new day simply reads a
// fresh key, so the reset boundary survives process restarts without any
// scheduled task.
func DayKey(counterID string, t time.Time) string {
	return counterID + ":" + t.UTC().Format(dayFormat)
}
