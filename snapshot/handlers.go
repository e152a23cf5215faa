package snapshot

import (
	"context"
	"log"

	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/ledger"
)

// WireBus subscribes the OnWalletCreated handler from
// original_source/monee/src/backoffice/snapshot.rs: on every WalletCreated
// it reads the live snapshot, applies Wallet.Create, and persists the
// result, so a wallet created after the first event has already landed a
// snapshot row is still visible to the very next Deposit/Deduct against it
// (spec.md §4.2/§8: "after wallet.Create(w,c) ... wallets[w].amount == s").
// Without this, only a full Rebuild ever seeds a wallet into the cache.
func WireBus(b *bus.Bus, cache *Cache, store Store, logger *log.Logger) {
	bus.Subscribe(b, func(e bus.WalletCreated) {
		onWalletCreated(cache, store, logger, e)
	})
}

func onWalletCreated(cache *Cache, store Store, logger *log.Logger, e bus.WalletCreated) {
	snap := cache.Get().Clone()
	op := ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletCreate, WalletID: e.ID, CurrencyID: e.CurrencyID})
	if err := ledger.Apply(snap, op); err != nil {
		logPrintf(logger, "snapshot: seeding wallet %s: %v", e.ID, err)
		return
	}
	if err := store.SaveSnapshot(context.Background(), snap); err != nil {
		logPrintf(logger, "snapshot: persisting seeded wallet %s: %v", e.ID, err)
		return
	}
	cache.Set(snap)
}

func logPrintf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
