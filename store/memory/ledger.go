package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/ledger"
)

// Snapshot is the in-memory snapshot.Store implementation: a single
// materialised row, guarded by a mutex.
type Snapshot struct {
	mu   sync.Mutex
	snap *ledger.Snapshot
	has  bool
}

func NewSnapshot() *Snapshot { return &Snapshot{} }

func (s *Snapshot) LoadSnapshot(context.Context) (*ledger.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has {
		return nil, false, nil
	}
	return s.snap.Clone(), true, nil
}

func (s *Snapshot) SaveSnapshot(_ context.Context, snap *ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	s.has = true
	return nil
}

// EventLog is the append-only event log: in-memory, ordered by insertion,
// which for this store coincides with created_at order.
type EventLog struct {
	mu      sync.Mutex
	entries []event.Entry
}

func NewEventLog() *EventLog { return &EventLog{} }

// Append assigns created_at and stores the entry, returning the entry
// actually recorded. Grounded in spec.md §3: "created_at is UTC,
// server-assigned at insertion." Callers supply EventID; CreatedAt is
// overwritten here regardless of what the caller passed in.
func (l *EventLog) Append(_ context.Context, entry event.Entry) (event.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.CreatedAt = time.Now().UTC()
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *EventLog) EventsAfter(_ context.Context, after time.Time, limit int) ([]event.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []event.Entry
	for _, e := range l.entries {
		if e.CreatedAt.After(after) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (l *EventLog) All(context.Context) ([]event.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]event.Entry(nil), l.entries...), nil
}

// Truncate empties the log, used by a node's overwrite-from-host (spec.md §4.7).
func (l *EventLog) Truncate(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return nil
}
