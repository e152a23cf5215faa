package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/ledger"
	"github.com/ocxide/monee/money"
	"github.com/ocxide/monee/store/memory"
)

func TestNewLoadsExistingSnapshot(t *testing.T) {
	repo := memory.NewCatalogue()
	snapStore := memory.NewSnapshot()
	log := memory.NewEventLog()
	b := bus.New(16)

	want := ledger.NewSnapshot()
	require.NoError(t, snapStore.SaveSnapshot(context.Background(), want))

	c, err := New(context.Background(), nil, nil, b, repo, snapStore, log)
	require.NoError(t, err)
	assert.NotNil(t, c.Snapshot.Get())
}

func TestNewRebuildsFromLogWhenNoSnapshotExists(t *testing.T) {
	repo := memory.NewCatalogue()
	snapStore := memory.NewSnapshot()
	log := memory.NewEventLog()
	b := bus.New(16)

	currency, err := catalogue.NewService(repo, b).CreateCurrency(context.Background(), "US Dollar", "$", "usd")
	require.NoError(t, err)
	wallet, err := catalogue.NewService(repo, b).CreateWallet(context.Background(), currency.ID, "checking", "")
	require.NoError(t, err)

	amount, err := money.ParseAmount("50")
	require.NoError(t, err)
	_, err = log.Append(context.Background(), event.Entry{
		EventID: id.NewEventID(),
		Event:   event.NewRegisterBalance(event.RegisterBalance{WalletID: wallet.ID, Amount: amount}),
	})
	require.NoError(t, err)

	c, err := New(context.Background(), nil, nil, b, repo, snapStore, log)
	require.NoError(t, err)

	host, ok := c.Snapshot.Get().Wallets.Get(wallet.ID)
	require.True(t, ok)
	assert.Equal(t, "50", host.Money.Amount.String())

	_, ok, err = snapStore.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "Rebuild should have persisted the rebuilt snapshot")
}
