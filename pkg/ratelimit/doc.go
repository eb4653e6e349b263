// Package ratelimit implements a fixed-window request limiter shared by all
// process instances through a durable counter store.
//
// Requests are counted per (client, window bucket) where the bucket is the
// current unix time divided by the window width. The first increment on a
// fresh key sets its expiry to the window width, so the store cleans up
// after itself and the next bucket starts from zero. On denial the key's
// remaining TTL is reported as the retry-after hint.
//
// The limiter fails open: if the counter store is unreachable the request
// is admitted and the failure logged. This is a deliberate
// availability-over-strictness tradeoff — an unrelated store outage must
// not take down the submission endpoint.
package ratelimit
