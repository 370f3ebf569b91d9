package services

import (
	"context"
	"log"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/queue"
)

// BoardCache holds the rendered room board between lifecycle changes.
// Get reports the cache generation it read; Set only lands for readers of
// that same generation, so a board rendered across an Invalidate is never
// served. A negative generation tells the caller not to store.
type BoardCache interface {
	Get(ctx context.Context) (payload []byte, gen int64, ok bool)
	Set(ctx context.Context, gen int64, payload []byte)
	Invalidate(ctx context.Context)
}

type nopCache struct{}

func (nopCache) Get(context.Context) ([]byte, int64, bool) { return nil, -1, false }
func (nopCache) Set(context.Context, int64, []byte)        {}
func (nopCache) Invalidate(context.Context)                {}

type hooks struct {
	clock  clock.Clock
	cache  BoardCache
	events queue.Publisher
}

// Option configures the lifecycle services.
type Option func(*hooks)

func WithClock(c clock.Clock) Option {
	return func(h *hooks) {
		if c != nil {
			h.clock = c
		}
	}
}

func WithBoardCache(c BoardCache) Option {
	return func(h *hooks) {
		if c != nil {
			h.cache = c
		}
	}
}

func WithPublisher(p queue.Publisher) Option {
	return func(h *hooks) {
		if p != nil {
			h.events = p
		}
	}
}

func newHooks(opts []Option) hooks {
	h := hooks{
		clock:  clock.NewSystem(nil),
		cache:  nopCache{},
		events: queue.Nop{},
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// committed runs after a lifecycle transaction commits: the room board is
// dropped from the cache and each event is counted and published. Publish
// failures are logged; the change itself already stands.
func (h hooks) committed(ctx context.Context, events ...queue.Event) {
	h.cache.Invalidate(ctx)
	now := h.clock.Now()
	for _, ev := range events {
		if ev.FromStatus != "" && ev.ToStatus != "" && ev.FromStatus != ev.ToStatus {
			roomTransitions.WithLabelValues(ev.FromStatus, ev.ToStatus).Inc()
		}
		if err := h.events.Publish(ctx, ev.Stamp(now)); err != nil {
			log.Printf("[WARN] publish %s for room %s: %v", ev.Type, ev.RoomNo, err)
		}
	}
}
