// Package delivery routes messages across the provider ring under daily
// quota limits.
//
// The router encodes the system's cost/reliability tradeoff: the cheap bulk
// primary is always tried first while under its ceiling, then the
// credentialed secondary accounts are swept in rotation order starting one
// past the last successfully used account. Transport failures fall through
// to the next channel; quota increments are recorded only after a
// confirmed send. When every channel is over quota or failing, Deliver
// returns ErrAllChannelsExhausted and the job queue retries later.
//
// Channel selection itself is a pure function over a quota snapshot
// (attemptOrder), so the ordering rules are unit-tested without network
// access.
package delivery
