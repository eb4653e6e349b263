// Package quota provides named durable counters for per-channel daily send
// quotas.
//
// The Store interface exposes get, atomic increment-by-one and reset
// operations with no upper bound enforcement; deciding whether a counter is
// over its ceiling belongs to the delivery router. Counters for daily quotas
// are addressed through DayKey, which folds the current UTC date into the
// key so the once-per-day reset happens lazily and survives restarts.
//
// Two implementations are provided: RedisStore for production (atomic INCR,
// safe across process instances) and MemoryStore for tests and Redis-less
// development.
//
// When the backing store is unreachable every operation fails with an error
// wrapping ErrStoreUnavailable. Quota admission callers must fail closed on
// that error.
package quota
