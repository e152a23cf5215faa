// Package eventsvc implements the event service from spec.md §4.4: the
// single public add(event) operation that validates an event against the
// current snapshot, persists the event and the resulting snapshot
// atomically, and publishes EventAdded. Grounded in
// original_source/monee/src/backoffice/events/application.rs's Add::run,
// which reads the last snapshot, applies the event in memory, persists the
// event, persists the snapshot, then publishes — the exact order this
// package follows.
package eventsvc

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/ledger"
	"github.com/ocxide/monee/snapshot"
)

// Persister commits an event entry and the snapshot it produced as a single
// unit: either both become visible to a subsequent reader or neither does
// (spec.md §4.4 step 4). Implementations: store/sqlite (a real DB
// transaction), store/memory (sequential, since both in-memory stores are
// already behind their own mutex and there is no partial-visibility window
// worth modelling there).
type Persister interface {
	Commit(ctx context.Context, entry event.Entry, ops []ledger.Operation, snap *ledger.Snapshot) (event.Entry, error)
}

// Error is what Add returns on a rejected event: the underlying
// event/ledger apply error, unchanged from what event.Apply produced.
type Error struct {
	Inner error
}

func (e *Error) Error() string { return e.Inner.Error() }
func (e *Error) Unwrap() error { return e.Inner }
func (e *Error) Code() string  { return "event.rejected" }

// Service is the event service. Only one Add call is ever in flight per
// process (spec.md §5's ledger write serialisation): Service.mu enforces
// that directly rather than relying on callers to coordinate it.
type Service struct {
	mu      sync.Mutex
	store   snapshot.Store
	pers    Persister
	cache   *snapshot.Cache
	bus     *bus.Bus
	latency prometheus.Histogram
}

// New builds a Service. latency is the container's EventAppendLatency
// histogram; it may be nil in tests that don't care about metrics.
func New(store snapshot.Store, pers Persister, cache *snapshot.Cache, b *bus.Bus, latency prometheus.Histogram) *Service {
	return &Service{store: store, pers: pers, cache: cache, bus: b, latency: latency}
}

// Add mints an event id, validates ev against the current snapshot, and on
// success persists the event and the new snapshot atomically before
// publishing EventAdded. On a rejected event the snapshot is left byte-
// identical to its pre-Add state (spec.md §8's invariant), since Add always
// operates on a Snapshot.Clone() and only swaps the cache in once the
// persister has confirmed the commit.
func (s *Service) Add(ctx context.Context, ev event.Event) (event.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if s.latency != nil {
		defer func() { s.latency.Observe(time.Since(start).Seconds()) }()
	}

	snap := s.cache.Get()
	working := snap.Clone()

	ops, err := event.Apply(working, ev, id.NewDebtID)
	if err != nil {
		return event.Entry{}, apperr.App[*Error](&Error{Inner: err})
	}

	entry := event.Entry{EventID: id.NewEventID(), Event: ev}
	committed, err := s.pers.Commit(ctx, entry, ops, working)
	if err != nil {
		return event.Entry{}, apperr.Infrastructure[*Error](err)
	}

	s.cache.Set(working)
	s.bus.Publish(bus.EventAdded{ID: committed.EventID})
	return committed, nil
}
