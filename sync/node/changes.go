// Package node implements the node-side half of spec.md §4.7: the local
// ChangesRecord bookkeeping, the host HTTP client, the background sync
// task multiplexing domain-event and host-binding notifications, and the
// overwrite-from-host that replaces local state wholesale after a
// successful pull. Grounded in
// original_source/monee/src/nodes/sync/infrastructure.rs for the four
// parallel id-set queries a push assembles from, and
// original_source/monee/src/apps.rs for the self_app binding record.
package node

import (
	"sync"

	"github.com/ocxide/monee/internal/id"
)

// ChangesRecord is the node-local bookkeeping of catalogue entity ids
// mutated since the last successful push, plus the event ids appended
// locally in that window (spec.md §3's "Change record"). It is semantically
// a set per kind; duplicates are harmless, so Add is idempotent.
type ChangesRecord struct {
	mu sync.Mutex

	Currencies map[id.CurrencyID]struct{}
	Actors     map[id.ActorID]struct{}
	Wallets    map[id.WalletID]struct{}
	Items      map[id.ItemTagID]struct{}
	Events     map[id.EventID]struct{}
}

func NewChangesRecord() *ChangesRecord {
	return &ChangesRecord{
		Currencies: map[id.CurrencyID]struct{}{},
		Actors:     map[id.ActorID]struct{}{},
		Wallets:    map[id.WalletID]struct{}{},
		Items:      map[id.ItemTagID]struct{}{},
		Events:     map[id.EventID]struct{}{},
	}
}

func (r *ChangesRecord) AddCurrency(v id.CurrencyID) { r.mu.Lock(); r.Currencies[v] = struct{}{}; r.mu.Unlock() }
func (r *ChangesRecord) AddActor(v id.ActorID)       { r.mu.Lock(); r.Actors[v] = struct{}{}; r.mu.Unlock() }
func (r *ChangesRecord) AddWallet(v id.WalletID)     { r.mu.Lock(); r.Wallets[v] = struct{}{}; r.mu.Unlock() }
func (r *ChangesRecord) AddItem(v id.ItemTagID)      { r.mu.Lock(); r.Items[v] = struct{}{}; r.mu.Unlock() }
func (r *ChangesRecord) AddEvent(v id.EventID)       { r.mu.Lock(); r.Events[v] = struct{}{}; r.mu.Unlock() }

// IsEmpty reports whether nothing has changed locally since the last clear.
func (r *ChangesRecord) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Currencies) == 0 && len(r.Actors) == 0 && len(r.Wallets) == 0 && len(r.Items) == 0 && len(r.Events) == 0
}

// Snapshot returns a copy of the four id sets, for building a push without
// holding the lock across the network call.
func (r *ChangesRecord) Snapshot() (currencies []id.CurrencyID, actors []id.ActorID, wallets []id.WalletID, items []id.ItemTagID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for v := range r.Currencies {
		currencies = append(currencies, v)
	}
	for v := range r.Actors {
		actors = append(actors, v)
	}
	for v := range r.Wallets {
		wallets = append(wallets, v)
	}
	for v := range r.Items {
		items = append(items, v)
	}
	return
}

// Clear empties every set, used after a push the host has accepted.
func (r *ChangesRecord) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Currencies = map[id.CurrencyID]struct{}{}
	r.Actors = map[id.ActorID]struct{}{}
	r.Wallets = map[id.WalletID]struct{}{}
	r.Items = map[id.ItemTagID]struct{}{}
	r.Events = map[id.EventID]struct{}{}
}

// SelfApp is the node's own identity plus, once bound, the host it
// reconciles with (spec.md §6's self_app singleton table).
type SelfApp struct {
	AppID   id.AppID
	HostURL string // empty until bound
}

func (a SelfApp) Bound() bool { return a.HostURL != "" }

// Store persists ChangesRecord and SelfApp. Implementations: store/sqlite
// (the real node database) and an in-memory fake for tests.
type Store interface {
	LoadChangesRecord() (*ChangesRecord, error)
	SaveChangesRecord(*ChangesRecord) error
	LoadSelfApp() (SelfApp, bool, error)
	SaveSelfApp(SelfApp) error
}
