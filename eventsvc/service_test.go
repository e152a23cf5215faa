package eventsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
	"github.com/ocxide/monee/snapshot"
	"github.com/ocxide/monee/store/memory"
)

func TestAddAppliesAndPersistsEvent(t *testing.T) {
	store := memory.NewSnapshot()
	cache := snapshot.NewCache()
	log := memory.NewEventLog()
	pers := memory.NewPersister(log, store)
	s := New(store, pers, cache, bus.New(16), nil)

	wallet := id.NewWalletID()
	require.NoError(t, snapshot.SeedWallets(cache.Get(), []catalogue.Wallet{{ID: wallet, CurrencyID: id.NewCurrencyID()}}))
	amount, _ := money.ParseAmount("100")
	entry, err := s.Add(context.Background(), event.NewRegisterBalance(event.RegisterBalance{WalletID: wallet, Amount: amount}))
	require.NoError(t, err)
	require.False(t, entry.EventID.IsZero())

	host, ok := cache.Get().Wallets.Get(wallet)
	require.True(t, ok)
	assert.Equal(t, "100", host.Money.Amount.String())

	entries, err := log.All(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.EventID, entries[0].EventID)
}

func TestAddRejectedLeavesSnapshotUntouched(t *testing.T) {
	store := memory.NewSnapshot()
	cache := snapshot.NewCache()
	log := memory.NewEventLog()
	pers := memory.NewPersister(log, store)
	s := New(store, pers, cache, bus.New(16), nil)

	before := cache.Get()

	_, err := s.Add(context.Background(), event.NewMoveValue(event.MoveValue{From: id.NewWalletID(), To: id.NewWalletID()}))
	require.Error(t, err)

	var appErr apperr.Error[*Error]
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.IsApp())

	assert.Same(t, before, cache.Get())
	entries, err := log.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddPublishesEventAdded(t *testing.T) {
	store := memory.NewSnapshot()
	cache := snapshot.NewCache()
	log := memory.NewEventLog()
	pers := memory.NewPersister(log, store)
	b := bus.New(16)
	go b.Run()
	defer b.Stop()
	s := New(store, pers, cache, b, nil)

	received := make(chan bus.EventAdded, 1)
	bus.Subscribe(b, func(e bus.EventAdded) { received <- e })

	wallet := id.NewWalletID()
	require.NoError(t, snapshot.SeedWallets(cache.Get(), []catalogue.Wallet{{ID: wallet, CurrencyID: id.NewCurrencyID()}}))
	amount, _ := money.ParseAmount("10")
	entry, err := s.Add(context.Background(), event.NewRegisterBalance(event.RegisterBalance{WalletID: wallet, Amount: amount}))
	require.NoError(t, err)

	select {
	case e := <-received:
		assert.Equal(t, entry.EventID, e.ID)
	case <-time.After(time.Second):
		t.Fatal("expected EventAdded to be published")
	}
}
