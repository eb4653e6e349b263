// Package provider defines the outbound email channels and the ordered ring
// the delivery router walks.
//
// A Channel is one transport with a static daily ceiling: the Postmark bulk
// provider (shared server token, single quota counter), an individually
// credentialed SMTP account, or the file-drop dev channel. The Ring holds
// the channels in priority order — bulk primary at index 0, secondary
// accounts after — and exposes nothing but transport and configuration.
// Quota state lives elsewhere; the ring stays a pure send abstraction.
package provider
