package node

import (
	"context"
	"sync"
	"time"

	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/snapshot"
	"github.com/ocxide/monee/sync/host"
)

// Log is the node's local event log, read from when assembling a push.
type Log interface {
	snapshot.LogReader
}

// bindingMsg carries a new host URL + node id from the host-binding input
// (spec.md §4.7's second multiplexed input).
type bindingMsg struct {
	hostURL string
	nodeID  id.AppID
}

// Task is the single background task that owns node-side sync (spec.md
// §4.7/§5): it multiplexes domain-event notifications and host-binding
// notifications over a non-blocking select, and never runs two cycles
// concurrently — the for/select loop itself is the serialisation.
type Task struct {
	store   Store
	repo    LocalStore
	log     Log
	cache   *snapshot.Cache
	changes *ChangesRecord

	changeCh chan struct{}
	bindCh   chan bindingMsg

	mu     sync.Mutex
	client *HostClient

	confirmMu  sync.Mutex
	confirmChs []chan error
}

func NewTask(store Store, repo LocalStore, log Log, cache *snapshot.Cache, changes *ChangesRecord) *Task {
	return &Task{
		store:    store,
		repo:     repo,
		log:      log,
		cache:    cache,
		changes:  changes,
		changeCh: make(chan struct{}, 1),
		bindCh:   make(chan bindingMsg, 1),
	}
}

// WireBus subscribes the task to every domain event that marks something as
// locally changed (spec.md §4.7's first multiplexed input).
func (t *Task) WireBus(b *bus.Bus) {
	bus.Subscribe(b, func(e bus.CurrencyCreated) { t.changes.AddCurrency(e.ID); t.signalChange() })
	bus.Subscribe(b, func(e bus.WalletCreated) { t.changes.AddWallet(e.ID); t.signalChange() })
	bus.Subscribe(b, func(e bus.ActorCreated) { t.changes.AddActor(e.ID); t.signalChange() })
	bus.Subscribe(b, func(e bus.ItemTagCreated) { t.changes.AddItem(e.ID); t.signalChange() })
	bus.Subscribe(b, func(e bus.EventAdded) { t.changes.AddEvent(e.ID); t.signalChange() })
}

func (t *Task) signalChange() {
	select {
	case t.changeCh <- struct{}{}:
	default: // a cycle is already pending; coalesce
	}
}

// Bind notifies the task of a new or changed host binding. It returns a
// channel the caller (the UI) may await for the outcome of the pull that
// follows the bind, per spec.md §4.7's "one-shot sync
// confirmation channel".
func (t *Task) Bind(hostURL string, nodeID id.AppID) <-chan error {
	ch := make(chan error, 1)
	t.registerConfirm(ch)
	t.bindCh <- bindingMsg{hostURL: hostURL, nodeID: nodeID}
	return ch
}

// RequestSync nudges the task to run a cycle now (used when the UI wants an
// immediate push rather than waiting for the next domain event) and returns
// a one-shot channel for the outcome.
func (t *Task) RequestSync() <-chan error {
	ch := make(chan error, 1)
	t.registerConfirm(ch)
	t.signalChange()
	return ch
}

func (t *Task) registerConfirm(ch chan error) {
	t.confirmMu.Lock()
	t.confirmChs = append(t.confirmChs, ch)
	t.confirmMu.Unlock()
}

func (t *Task) resolveConfirms(err error) {
	t.confirmMu.Lock()
	chs := t.confirmChs
	t.confirmChs = nil
	t.confirmMu.Unlock()
	for _, ch := range chs {
		ch <- err
		close(ch)
	}
}

// Run drains both inputs until ctx is cancelled. Intended to run for the
// lifetime of the process under an errgroup.Group (SPEC_FULL.md's domain
// stack: cmd/node starts this alongside its bus dispatcher with errgroup,
// cancelled together on shutdown).
func (t *Task) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b := <-t.bindCh:
			t.mu.Lock()
			t.client = NewHostClient(b.hostURL, b.nodeID)
			t.mu.Unlock()
			if err := t.store.SaveSelfApp(SelfApp{AppID: b.nodeID, HostURL: b.hostURL}); err != nil {
				t.resolveConfirms(err)
				continue
			}
			t.resolveConfirms(t.pull(ctx))
		case <-t.changeCh:
			t.resolveConfirms(t.cycle(ctx))
		}
	}
}

// cycle is one sync cycle: persist the dirty record, fetch the guide, build
// and push a NodeChanges batch, and on success clear the record and pull
// the host's state back (spec.md §4.7).
func (t *Task) cycle(ctx context.Context) error {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return nil // no host bound yet; ChangesRecord keeps accumulating
	}

	if err := t.store.SaveChangesRecord(t.changes); err != nil {
		return err
	}

	guide, err := client.Guide(ctx)
	if err != nil {
		return nil // connection failure is a no-op; ChangesRecord is preserved
	}

	changes, err := t.buildChanges(ctx, guide)
	if err != nil {
		return err
	}

	if err := client.Push(ctx, changes); err != nil {
		return err // ChangesRecord preserved for the next cycle to resend
	}

	t.changes.Clear()
	if err := t.store.SaveChangesRecord(t.changes); err != nil {
		return err
	}
	return t.pull(ctx)
}

// buildChanges assembles a NodeChanges batch: every local event newer than
// the host's guide, plus the catalogue sub-bundles named by ChangesRecord.
func (t *Task) buildChanges(ctx context.Context, guide host.Guide) (host.NodeChanges, error) {
	var after time.Time
	if guide.LastEventDate != nil {
		after = *guide.LastEventDate
	}

	var events []event.Entry
	for {
		page, err := t.log.EventsAfter(ctx, after, snapshot.PageSize)
		if err != nil {
			return host.NodeChanges{}, err
		}
		if len(page) == 0 {
			break
		}
		events = append(events, page...)
		after = page[len(page)-1].CreatedAt
		if len(page) < snapshot.PageSize {
			break
		}
	}

	currencyIDs, actorIDs, walletIDs, itemIDs := t.changes.Snapshot()
	bundle, err := t.filterBundle(ctx, currencyIDs, actorIDs, walletIDs, itemIDs)
	if err != nil {
		return host.NodeChanges{}, err
	}

	return host.NodeChanges{Events: events, Catalogue: bundle}, nil
}

func (t *Task) filterBundle(ctx context.Context, currencyIDs []id.CurrencyID, actorIDs []id.ActorID, walletIDs []id.WalletID, itemIDs []id.ItemTagID) (catalogue.Bundle, error) {
	currencySet := toSet(currencyIDs)
	actorSet := toSet(actorIDs)
	walletSet := toSet(walletIDs)
	itemSet := toSet(itemIDs)

	allCurrencies, err := t.repo.ListCurrencies(ctx)
	if err != nil {
		return catalogue.Bundle{}, err
	}
	allActors, err := t.repo.ListActors(ctx)
	if err != nil {
		return catalogue.Bundle{}, err
	}
	allWallets, err := t.repo.ListWallets(ctx)
	if err != nil {
		return catalogue.Bundle{}, err
	}
	allItems, err := t.repo.ListItemTags(ctx)
	if err != nil {
		return catalogue.Bundle{}, err
	}

	var b catalogue.Bundle
	for _, c := range allCurrencies {
		if _, ok := currencySet[c.ID]; ok {
			b.Currencies = append(b.Currencies, c)
		}
	}
	for _, a := range allActors {
		if _, ok := actorSet[a.ID]; ok {
			b.Actors = append(b.Actors, a)
		}
	}
	for _, w := range allWallets {
		if _, ok := walletSet[w.ID]; ok {
			b.Wallets = append(b.Wallets, w)
		}
	}
	for _, it := range allItems {
		if _, ok := itemSet[it.ID]; ok {
			b.Items = append(b.Items, it.ItemTag)
		}
	}
	return b, nil
}

func toSet[K comparable](ids []K) map[K]struct{} {
	set := make(map[K]struct{}, len(ids))
	for _, v := range ids {
		set[v] = struct{}{}
	}
	return set
}

// pull fetches the host's full state and overwrites the local copy.
func (t *Task) pull(ctx context.Context) error {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return nil
	}
	state, err := client.State(ctx)
	if err != nil {
		return err
	}
	return Overwrite(ctx, t.repo, t.cache, state)
}
