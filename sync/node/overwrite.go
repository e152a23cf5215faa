package node

import (
	"context"
	"fmt"

	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/ledger"
	"github.com/ocxide/monee/snapshot"
	"github.com/ocxide/monee/sync/host"
)

// LocalStore is the local repository surface overwrite-from-host needs:
// wholesale catalogue replacement, snapshot replacement, and event log
// truncation (spec.md §4.7).
type LocalStore interface {
	catalogue.Repository
	ReplaceCatalogue(ctx context.Context, b catalogue.Bundle) error
	snapshot.Store
	TruncateEvents(ctx context.Context) error
}

// Overwrite replaces the node's local catalogue tables, snapshot, and event
// log wholesale with the host's state — "the host log is authoritative; the
// node keeps no history after a successful pull" (spec.md §4.7).
func Overwrite(ctx context.Context, local LocalStore, cache *snapshot.Cache, state host.State) error {
	bundle := catalogue.Bundle{
		Currencies: state.Currencies,
		Actors:     state.Actors,
		Wallets:    state.Wallets,
		Items:      state.Items,
	}
	if err := local.ReplaceCatalogue(ctx, bundle); err != nil {
		return fmt.Errorf("sync/node: replacing catalogue: %w", err)
	}

	snap := state.Snapshot
	if snap == nil {
		snap = ledger.NewSnapshot()
	}
	if err := local.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("sync/node: saving pulled snapshot: %w", err)
	}
	cache.Set(snap)

	if err := local.TruncateEvents(ctx); err != nil {
		return fmt.Errorf("sync/node: truncating event log: %w", err)
	}
	return nil
}
