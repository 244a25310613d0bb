// Package signal is the app-wide channel shared by every store: a pending
// request counter behind the global loading flag, a single most-recent-error
// slot with a retry cooldown, and a small event fan-out for post-mutation
// cross-store refreshes.
package signal

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event names published on the bus after successful mutations.
type Event string

const (
	EventMealLogged      Event = "meal.logged"
	EventIdentityChanged Event = "identity.changed"
)

// RetryCooldown is the only automatic backoff policy in the client: callers
// re-issuing a failed request consult ShouldRetry before doing so.
const RetryCooldown = 3 * time.Second

type Bus struct {
	mu          sync.Mutex
	pending     int
	lastError   string
	lastErrorAt time.Time
	cooldown    time.Duration
	now         func() time.Time
	subs        map[Event][]func(Event)
	log         *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		cooldown: RetryCooldown,
		now:      time.Now,
		subs:     make(map[Event][]func(Event)),
		log:      log,
	}
}

func (b *Bus) IncrementPending() {
	b.mu.Lock()
	b.pending++
	b.mu.Unlock()
}

// DecrementPending clamps at zero so a mismatched call sequence (a view
// unmounting mid-request) cannot drive the counter negative.
func (b *Bus) DecrementPending() {
	b.mu.Lock()
	if b.pending > 0 {
		b.pending--
	}
	b.mu.Unlock()
}

func (b *Bus) PendingRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

func (b *Bus) GlobalLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending > 0
}

func (b *Bus) SetGlobalError(msg string) {
	b.mu.Lock()
	b.lastError = msg
	b.lastErrorAt = b.now()
	b.mu.Unlock()
	b.log.Warn("global error set", zap.String("message", msg))
}

func (b *Bus) GlobalError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

func (b *Bus) ClearGlobalError() {
	b.mu.Lock()
	b.lastError = ""
	b.mu.Unlock()
}

// ShouldRetry reports whether enough time has passed since the last global
// error for a user-initiated retry to be worth issuing.
func (b *Bus) ShouldRetry() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastErrorAt.IsZero() {
		return true
	}
	return b.now().Sub(b.lastErrorAt) > b.cooldown
}

func (b *Bus) Subscribe(ev Event, fn func(Event)) {
	b.mu.Lock()
	b.subs[ev] = append(b.subs[ev], fn)
	b.mu.Unlock()
}

// Publish invokes subscribers outside the lock; a subscriber is free to call
// back into the bus.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	fns := make([]func(Event), len(b.subs[ev]))
	copy(fns, b.subs[ev])
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
