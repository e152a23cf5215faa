// Package snapshot implements the two materialisation modes from spec.md
// §4.5: an in-memory cache kept current incrementally by the event service,
// and a full rebuild-from-log used to recover from a corrupted or deleted
// snapshot row. Grounded in the teacher's generic/snapshot.go for the
// "materialise from an append-only log, in pages, with a structured failure
// report" shape, adapted from its period/accrual domain to monee's simpler
// single-snapshot domain.
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/ledger"
)

// PageSize is the fixed page size rebuild iterates the event log with
// (spec.md §4.5).
const PageSize = 1000

// Store persists the single materialised snapshot row.
type Store interface {
	LoadSnapshot(ctx context.Context) (*ledger.Snapshot, bool, error)
	SaveSnapshot(ctx context.Context, snap *ledger.Snapshot) error
}

// LogReader pages through the append-only event log in created_at-ascending
// order. After is exclusive: pages start strictly after the given timestamp.
type LogReader interface {
	EventsAfter(ctx context.Context, after time.Time, limit int) ([]event.Entry, error)
}

// WalletLister supplies the catalogue's current wallets. Wallets are
// catalogue entities, not user Events (their WalletOp.Create is applied by
// the catalogue-created bus handler, never logged), so a from-scratch
// rebuild has to seed them separately before replaying the log — the
// snapshot is derived from the event log plus catalogue state, not the log
// alone.
type WalletLister interface {
	ListWallets(ctx context.Context) ([]catalogue.Wallet, error)
}

// Cache is an in-memory reference to the last-known snapshot; reads return
// it without touching storage. It is swapped only by the owner of the
// ledger write-serialisation lock (spec.md §5), so it needs no locking of
// its own beyond what a single RWMutex gives concurrent readers.
type Cache struct {
	mu   sync.RWMutex
	snap *ledger.Snapshot
}

func NewCache() *Cache {
	return &Cache{snap: ledger.NewSnapshot()}
}

func (c *Cache) Get() *ledger.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Set swaps in a new snapshot. Callers must only call this after the
// corresponding storage write has committed, never before (spec.md §5:
// "writing the new snapshot under a transaction and swapping a cached
// reference only on commit").
func (c *Cache) Set(snap *ledger.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
}

// Report is the structured failure report rebuild() emits when replay fails
// at some event Ei: the snapshot immediately before Ei, the two events
// preceding it, Ei itself, the two events following it, and the error.
type Report struct {
	SnapshotBeforeFailure *ledger.Snapshot
	Preceding             []event.Entry
	FailingEvent          event.Entry
	Following             []event.Entry
	Err                   error
}

func (r *Report) Error() string {
	return fmt.Sprintf("snapshot: rebuild failed at event %s: %v", r.FailingEvent.EventID, r.Err)
}

func (r *Report) Unwrap() error { return r.Err }

// SeedWallets applies a WalletOp.Create to snap for every wallet not already
// present in it. Wallets are catalogue entities, not user Events — their
// creation is never logged — so both a from-scratch Rebuild and a running
// process that just learned about new wallets (locally, via
// catalogue.Service.CreateWallet, or from a synced node's catalogue bundle)
// need this same reconciliation step before replaying or applying events
// that might reference one of those wallets.
func SeedWallets(snap *ledger.Snapshot, wallets []catalogue.Wallet) error {
	for _, w := range wallets {
		if _, ok := snap.Wallets.Get(w.ID); ok {
			continue
		}
		create := ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletCreate, WalletID: w.ID, CurrencyID: w.CurrencyID})
		if err := ledger.Apply(snap, create); err != nil {
			return fmt.Errorf("snapshot: seeding wallet %s: %w", w.ID, err)
		}
	}
	return nil
}

// Rebuild seeds a fresh snapshot with the catalogue's current wallets, then
// iterates the entire event log in created_at-ascending order, applying
// each event on top. On success it persists the rebuilt snapshot and swaps
// the cache. On a deterministic apply error it returns a *Report and leaves
// persisted state untouched.
func Rebuild(ctx context.Context, wallets WalletLister, reader LogReader, store Store, cache *Cache, mintDebtID event.DebtIDMinter) (*ledger.Snapshot, error) {
	snap := ledger.NewSnapshot()

	seeds, err := wallets.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: listing wallets to seed: %w", err)
	}
	if err := SeedWallets(snap, seeds); err != nil {
		return nil, err
	}

	var window []event.Entry // trailing window of up to 2 prior entries, for the failure report
	var lastSeen time.Time

	for {
		page, err := reader.EventsAfter(ctx, lastSeen, PageSize)
		if err != nil {
			return nil, fmt.Errorf("snapshot: reading event page: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for i, entry := range page {
			before := snap.Clone()
			if _, applyErr := event.Apply(snap, entry.Event, mintDebtID); applyErr != nil {
				report := &Report{
					SnapshotBeforeFailure: before,
					Preceding:             trailingTwo(window),
					FailingEvent:          entry,
					Following:             followingTwo(page, i),
					Err:                   applyErr,
				}
				return nil, report
			}
			window = append(window, entry)
			if len(window) > 2 {
				window = window[len(window)-2:]
			}
		}

		lastSeen = page[len(page)-1].CreatedAt
		if len(page) < PageSize {
			break
		}
	}

	if err := store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("snapshot: saving rebuilt snapshot: %w", err)
	}
	cache.Set(snap)
	return snap, nil
}

func trailingTwo(window []event.Entry) []event.Entry {
	if len(window) <= 2 {
		return append([]event.Entry(nil), window...)
	}
	return append([]event.Entry(nil), window[len(window)-2:]...)
}

func followingTwo(page []event.Entry, failedIndex int) []event.Entry {
	start := failedIndex + 1
	end := start + 2
	if end > len(page) {
		end = len(page)
	}
	if start >= end {
		return nil
	}
	return append([]event.Entry(nil), page[start:end]...)
}
