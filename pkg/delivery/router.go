package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/prajwaln07/EmailSender/pkg/logger"
	"github.com/prajwaln07/EmailSender/pkg/provider"
	"github.com/prajwaln07/EmailSender/pkg/quota"
)

// rotationKey stores the ring index of the last successfully used secondary
// channel. It lives in the quota substrate so rotation survives restarts
// and is shared if the router is ever scaled to multiple workers.
const rotationKey = "router:rotation"

// counterPrefix namespaces quota counters in the shared store.
const counterPrefix = "quota:"

// Router picks an outbound channel for each message based on daily quota
// counters, attempts the send, and falls through to the next channel on
// transport failure or quota exhaustion.
type Router struct {
	ring  *provider.Ring
	store quota.Store
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router's logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock overrides the time source used for daily counter keys.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRouter creates a delivery router over the given ring and quota store.
func NewRouter(ring *provider.Ring, store quota.Store, opts ...Option) (*Router, error) {
	if ring == nil {
		return nil, ErrRingNil
	}
	if store == nil {
		return nil, ErrStoreNil
	}

	r := &Router{
		ring:  ring,
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// counterID returns the daily quota counter key for channel i.
func (r *Router) counterID(i int, now time.Time) string {
	return quota.DayKey(counterPrefix+r.ring.NameOf(i), now)
}

// Deliver sends the message through the first channel that is under quota
// and accepts it. Quota increments happen strictly after a confirmed
// successful send — a failed attempt must not consume capacity. Two
// concurrent deliveries can both read "under ceiling" and overshoot by one;
// that narrow race is accepted rather than serializing all sends.
//
// Returns ErrAllChannelsExhausted when every channel was over quota or
// failed; the queue consumer treats that as a retryable job failure.
func (r *Router) Deliver(ctx context.Context, msg provider.Message) error {
	now := r.now()

	counts := make([]int, r.ring.Len())
	ceilings := make([]int, r.ring.Len())
	for i := range counts {
		ceilings[i] = r.ring.CeilingOf(i)

		count, err := r.store.Get(ctx, r.counterID(i, now))
		if err != nil {
			// Fail closed: an unreadable counter means the channel is
			// assumed to be at its limit, never at zero.
			r.log.WarnContext(ctx, "quota read failed, treating channel as exhausted",
				logger.Channel(r.ring.NameOf(i)),
				logger.Error(err))
			count = -1
		}
		counts[i] = count
	}

	lastUsed, err := r.store.Get(ctx, rotationKey)
	if err != nil {
		// Rotation is a load-spreading optimization, not a correctness
		// requirement; losing it just restarts the sweep at the first
		// secondary.
		lastUsed = 0
	}

	for _, idx := range attemptOrder(counts, ceilings, lastUsed) {
		name := r.ring.NameOf(idx)

		if err := r.ring.Send(ctx, idx, msg); err != nil {
			r.log.WarnContext(ctx, "channel send failed, falling through",
				logger.Channel(name),
				logger.Error(err))
			continue
		}

		if _, err := r.store.Incr(ctx, r.counterID(idx, now)); err != nil {
			// The send succeeded; an increment failure under-counts usage
			// but must not fail the delivery.
			r.log.ErrorContext(ctx, "quota increment failed after successful send",
				logger.Channel(name),
				logger.Error(err))
		}

		if idx > 0 {
			if err := r.store.Set(ctx, rotationKey, idx); err != nil {
				r.log.WarnContext(ctx, "failed to persist rotation offset",
					logger.Error(err))
			}
		}

		r.log.InfoContext(ctx, "message delivered",
			logger.Channel(name),
			slog.String("to", msg.To))
		return nil
	}

	return ErrAllChannelsExhausted
}

// ChannelStatus is a read-only view of one channel's daily quota.
type ChannelStatus struct {
	Name        string `json:"name"`
	EmailsSent  int    `json:"emailsSent"`
	Remaining   int    `json:"remaining"`
	IsAvailable bool   `json:"isAvailable"`
}

// Snapshot reports per-channel usage for the status surface. It only reads
// counters and tolerates staleness; a read failure marks the channel
// unavailable rather than failing the whole snapshot.
func (r *Router) Snapshot(ctx context.Context) []ChannelStatus {
	now := r.now()
	statuses := make([]ChannelStatus, r.ring.Len())

	for i := range statuses {
		ceiling := r.ring.CeilingOf(i)
		count, err := r.store.Get(ctx, r.counterID(i, now))
		if err != nil {
			statuses[i] = ChannelStatus{Name: r.ring.NameOf(i)}
			continue
		}

		statuses[i] = ChannelStatus{
			Name:        r.ring.NameOf(i),
			EmailsSent:  count,
			Remaining:   max(0, ceiling-count),
			IsAvailable: count < ceiling,
		}
	}

	return statuses
}

// ResetCounters zeroes today's quota counter for every channel. Exposed for
// the admin surface and tests; normal operation relies on day-keyed
// counters expiring on their own.
func (r *Router) ResetCounters(ctx context.Context) error {
	now := r.now()
	ids := make([]string, r.ring.Len())
	for i := range ids {
		ids[i] = r.counterID(i, now)
	}
	return r.store.ResetAll(ctx, ids...)
}
