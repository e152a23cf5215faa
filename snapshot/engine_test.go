package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/ledger"
	"github.com/ocxide/monee/money"
)

type memoryLog struct {
	entries []event.Entry
}

func (m *memoryLog) EventsAfter(_ context.Context, after time.Time, limit int) ([]event.Entry, error) {
	var out []event.Entry
	for _, e := range m.entries {
		if e.CreatedAt.After(after) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type memorySnapshotStore struct {
	saved *ledger.Snapshot
}

func (m *memorySnapshotStore) LoadSnapshot(context.Context) (*ledger.Snapshot, bool, error) {
	if m.saved == nil {
		return nil, false, nil
	}
	return m.saved, true, nil
}

func (m *memorySnapshotStore) SaveSnapshot(_ context.Context, snap *ledger.Snapshot) error {
	m.saved = snap
	return nil
}

type fixedWallets struct {
	wallets []catalogue.Wallet
}

func (f *fixedWallets) ListWallets(context.Context) ([]catalogue.Wallet, error) {
	return f.wallets, nil
}

func TestRebuildSeedsWalletsAndReplaysLog(t *testing.T) {
	currency := id.NewCurrencyID()
	wallet := id.NewWalletID()
	base := time.Unix(1700000000, 0)

	amount100, _ := money.ParseAmount("100")
	amount30, _ := money.ParseAmount("30")

	wallets := &fixedWallets{wallets: []catalogue.Wallet{{ID: wallet, CurrencyID: currency, Name: "main"}}}
	logReader := &memoryLog{entries: []event.Entry{
		{EventID: id.NewEventID(), CreatedAt: base.Add(time.Second), Event: event.NewRegisterBalance(event.RegisterBalance{WalletID: wallet, Amount: amount100})},
		{EventID: id.NewEventID(), CreatedAt: base.Add(2 * time.Second), Event: event.NewBuy(event.Buy{WalletID: wallet, Amount: amount30})},
	}}
	store := &memorySnapshotStore{}
	cache := NewCache()

	snap, err := Rebuild(context.Background(), wallets, logReader, store, cache, nil)
	require.NoError(t, err)

	host, ok := snap.Wallets.Get(wallet)
	require.True(t, ok)
	assert.Equal(t, "70", host.Money.Amount.String())
	assert.Same(t, snap, store.saved)
	assert.Same(t, snap, cache.Get())
}

func TestRebuildReportsFailureAtUnknownWallet(t *testing.T) {
	base := time.Unix(1700000000, 0)
	amount100, _ := money.ParseAmount("100")

	wallets := &fixedWallets{}
	logReader := &memoryLog{entries: []event.Entry{
		{EventID: id.NewEventID(), CreatedAt: base.Add(time.Second), Event: event.NewRegisterBalance(event.RegisterBalance{WalletID: id.NewWalletID(), Amount: amount100})},
	}}
	store := &memorySnapshotStore{}
	cache := NewCache()

	result, err := Rebuild(context.Background(), wallets, logReader, store, cache, nil)
	require.Error(t, err)
	var report *Report
	require.ErrorAs(t, err, &report)
	assert.Nil(t, result)
	assert.Nil(t, store.saved)
}

func TestRebuildMintsDebtIDOnlyOnce(t *testing.T) {
	base := time.Unix(1700000000, 0)
	actor := id.NewActorID()
	currency := id.NewCurrencyID()
	amount50, _ := money.ParseAmount("50")

	debtID := id.NewDebtID()
	wallets := &fixedWallets{}
	logReader := &memoryLog{entries: []event.Entry{
		{EventID: id.NewEventID(), CreatedAt: base.Add(time.Second), Event: event.NewRegisterDebt(event.RegisterDebt{
			DebtID: debtID, Amount: amount50, CurrencyID: currency, ActorID: actor,
		})},
	}}
	store := &memorySnapshotStore{}
	cache := NewCache()

	mintCalls := 0
	mint := func() id.DebtID { mintCalls++; return id.NewDebtID() }

	snap, err := Rebuild(context.Background(), wallets, logReader, store, cache, mint)
	require.NoError(t, err)
	assert.Equal(t, 0, mintCalls)
	_, ok := snap.Debts.Get(debtID)
	assert.True(t, ok)
}
