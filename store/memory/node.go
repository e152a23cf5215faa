package memory

import (
	"context"
	"sync"

	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/internal/id"
	syncnode "github.com/ocxide/monee/sync/node"
)

// NodeState is the in-memory sync/node.Store: ChangesRecord and SelfApp
// bookkeeping kept behind a mutex, exercised directly by sync/node's tests.
type NodeState struct {
	mu      sync.Mutex
	changes *syncnode.ChangesRecord
	app     syncnode.SelfApp
	bound   bool
}

func NewNodeState() *NodeState {
	return &NodeState{changes: syncnode.NewChangesRecord()}
}

func (s *NodeState) LoadChangesRecord() (*syncnode.ChangesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changes, nil
}

func (s *NodeState) SaveChangesRecord(r *syncnode.ChangesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = r
	return nil
}

func (s *NodeState) LoadSelfApp() (syncnode.SelfApp, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app, s.bound, nil
}

func (s *NodeState) SaveSelfApp(app syncnode.SelfApp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.app = app
	s.bound = true
	return nil
}

// LocalStore bundles the in-memory Catalogue, Snapshot, and EventLog behind
// the sync/node.LocalStore interface, for node-side tests that exercise a
// full overwrite-from-host cycle without a real database.
type LocalStore struct {
	*Catalogue
	*Snapshot
	*EventLog
}

func NewLocalStore() *LocalStore {
	return &LocalStore{Catalogue: NewCatalogue(), Snapshot: NewSnapshot(), EventLog: NewEventLog()}
}

// ReplaceCatalogue wholesale-replaces every catalogue table with b, the
// node-side counterpart to UpsertBundle's merge-by-id (spec.md §4.7:
// "replace the local catalogue tables wholesale with the bundle").
func (l *LocalStore) ReplaceCatalogue(_ context.Context, b catalogue.Bundle) error {
	l.Catalogue.mu.Lock()
	defer l.Catalogue.mu.Unlock()

	l.Catalogue.currencies = make(map[id.CurrencyID]catalogue.Currency, len(b.Currencies))
	l.Catalogue.byCode = make(map[string]id.CurrencyID, len(b.Currencies))
	for _, c := range b.Currencies {
		l.Catalogue.currencies[c.ID] = c
		l.Catalogue.byCode[c.Code] = c.ID
	}

	l.Catalogue.actors = make(map[id.ActorID]catalogue.Actor, len(b.Actors))
	l.Catalogue.byAlias = make(map[string]id.ActorID, len(b.Actors))
	for _, a := range b.Actors {
		l.Catalogue.actors[a.ID] = a
		if a.Alias != nil {
			l.Catalogue.byAlias[*a.Alias] = a.ID
		}
	}

	l.Catalogue.wallets = make(map[id.WalletID]catalogue.Wallet, len(b.Wallets))
	l.Catalogue.byWallet = make(map[string]id.WalletID, len(b.Wallets))
	for _, w := range b.Wallets {
		l.Catalogue.wallets[w.ID] = w
		l.Catalogue.byWallet[w.Name] = w.ID
	}

	l.Catalogue.tags = make(map[id.ItemTagID]catalogue.ItemTag, len(b.Items))
	l.Catalogue.byTagName = make(map[string]id.ItemTagID, len(b.Items))
	for _, t := range b.Items {
		l.Catalogue.tags[t.ID] = t
		l.Catalogue.byTagName[t.Name] = t.ID
	}
	// The "contains" edges are not part of the sync bundle (spec.md §4.6's
	// catalogue_bundle has no edge list), so a pulled node starts with a
	// flat tag set; edges are rebuilt by the node's own subsequent link
	// calls, same as a fresh host has none until linked.
	l.Catalogue.edges = map[id.ItemTagID]map[id.ItemTagID]bool{}

	return nil
}

// TruncateEvents empties the local log after a successful pull.
func (l *LocalStore) TruncateEvents(ctx context.Context) error {
	return l.EventLog.Truncate(ctx)
}
