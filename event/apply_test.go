package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/ledger"
	"github.com/ocxide/monee/money"
)

func seedWallet(t *testing.T, snap *ledger.Snapshot, currency id.CurrencyID) id.WalletID {
	t.Helper()
	w := id.NewWalletID()
	require.NoError(t, ledger.Apply(snap, ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletCreate, WalletID: w, CurrencyID: currency})))
	return w
}

func TestBuyDeductsWallet(t *testing.T) {
	snap := ledger.NewSnapshot()
	currency := id.NewCurrencyID()
	wallet := seedWallet(t, snap, currency)
	require.NoError(t, ledger.Apply(snap, ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletDeposit, WalletID: wallet, Amount: money.Amount(1000000)})))

	amount, err := money.ParseAmount("30")
	require.NoError(t, err)
	ops, err := Apply(snap, NewBuy(Buy{WalletID: wallet, ItemTagID: id.NewItemTagID(), Actors: []id.ActorID{id.NewActorID()}, Amount: amount}), nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	host, _ := snap.Wallets.Get(wallet)
	assert.Equal(t, "70", host.Money.Amount.String())
}

func TestMoveValueCrossCurrencyRejected(t *testing.T) {
	snap := ledger.NewSnapshot()
	pen := id.NewCurrencyID()
	usd := id.NewCurrencyID()
	w1 := seedWallet(t, snap, pen)
	w2 := seedWallet(t, snap, usd)
	fifty, _ := money.ParseAmount("50")
	require.NoError(t, ledger.Apply(snap, ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletDeposit, WalletID: w1, Amount: fifty})))
	require.NoError(t, ledger.Apply(snap, ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletDeposit, WalletID: w2, Amount: fifty})))

	ten, _ := money.ParseAmount("10")
	_, err := Apply(snap, NewMoveValue(MoveValue{From: w1, To: w2, Amount: ten}), nil)
	require.Error(t, err)
	var mvErr *MoveValueError
	require.ErrorAs(t, err, &mvErr)
	assert.Equal(t, CurrenciesNonEqual, mvErr.Kind)

	h1, _ := snap.Wallets.Get(w1)
	h2, _ := snap.Wallets.Get(w2)
	assert.Equal(t, "50", h1.Money.Amount.String())
	assert.Equal(t, "50", h2.Money.Amount.String())
}

func TestMoveValueMissingWallet(t *testing.T) {
	snap := ledger.NewSnapshot()
	currency := id.NewCurrencyID()
	w1 := seedWallet(t, snap, currency)
	missing := id.NewWalletID()

	amount, _ := money.ParseAmount("1")
	_, err := Apply(snap, NewMoveValue(MoveValue{From: w1, To: missing, Amount: amount}), nil)
	require.Error(t, err)
	var mvErr *MoveValueError
	require.ErrorAs(t, err, &mvErr)
	assert.Equal(t, WalletNotFound, mvErr.Kind)
}

func TestRegisterDebtMintsFreshID(t *testing.T) {
	snap := ledger.NewSnapshot()
	currency := id.NewCurrencyID()
	actor := id.NewActorID()
	amount, _ := money.ParseAmount("25")

	var minted id.DebtID
	mint := func() id.DebtID {
		minted = id.NewDebtID()
		return minted
	}

	ops, err := Apply(snap, NewRegisterDebt(RegisterDebt{Amount: amount, CurrencyID: currency, ActorID: actor}), mint)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	host, ok := snap.Debts.Get(minted)
	require.True(t, ok)
	assert.Equal(t, actor, host.Data)
	assert.Equal(t, "25", host.Money.Amount.String())
}

func TestDeductPastZeroLeavesCloneUnaffected(t *testing.T) {
	snap := ledger.NewSnapshot()
	currency := id.NewCurrencyID()
	wallet := seedWallet(t, snap, currency)

	clone := snap.Clone()
	amount, _ := money.ParseAmount("1")
	_, err := Apply(clone, NewBuy(Buy{WalletID: wallet, Amount: amount}), nil)
	require.Error(t, err)

	origHost, _ := snap.Wallets.Get(wallet)
	assert.Equal(t, "0", origHost.Money.Amount.String())
}
