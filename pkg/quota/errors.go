package quota

import "errors"

var (
	// ErrStoreUnavailable indicates the backing store is unreachable.
	// Quota admission callers must treat this as "counter at its limit"
	// (fail closed), never assume zero.
	ErrStoreUnavailable = errors.New("quota store unavailable")
)
