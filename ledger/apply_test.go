package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
)

func TestApplyWalletLifecycle(t *testing.T) {
	snap := NewSnapshot()
	wallet := id.NewWalletID()
	currency := id.NewCurrencyID()

	require.NoError(t, Apply(snap, OpWallet(WalletOp{Kind: WalletCreate, WalletID: wallet, CurrencyID: currency})))
	require.NoError(t, Apply(snap, OpWallet(WalletOp{Kind: WalletDeposit, WalletID: wallet, Amount: money.Amount(1000000)})))
	require.NoError(t, Apply(snap, OpWallet(WalletOp{Kind: WalletDeduct, WalletID: wallet, Amount: money.Amount(300000)})))

	host, ok := snap.Wallets.Get(wallet)
	require.True(t, ok)
	assert.Equal(t, money.Amount(700000), host.Money.Amount)
}

func TestApplyWalletDeductPastZero(t *testing.T) {
	snap := NewSnapshot()
	wallet := id.NewWalletID()
	currency := id.NewCurrencyID()
	require.NoError(t, Apply(snap, OpWallet(WalletOp{Kind: WalletCreate, WalletID: wallet, CurrencyID: currency})))

	err := Apply(snap, OpWallet(WalletOp{Kind: WalletDeduct, WalletID: wallet, Amount: money.Amount(1)}))
	require.Error(t, err)
	var ledgerErr *Error
	require.ErrorAs(t, err, &ledgerErr)
	assert.Equal(t, "cannot deduct from wallet", ledgerErr.Error())
}

func TestApplyDebtAndLoanErrorPrefixes(t *testing.T) {
	snap := NewSnapshot()
	debtID := id.NewDebtID()

	err := Apply(snap, OpDebt(DebtOp{Kind: DebtAmortize, DebtID: debtID, Amount: money.Amount(1)}))
	require.Error(t, err)
	assert.Equal(t, "in debt not found", err.Error())

	loanID := id.NewDebtID()
	err = Apply(snap, OpLoan(DebtOp{Kind: DebtAmortize, DebtID: loanID, Amount: money.Amount(1)}))
	require.Error(t, err)
	assert.Equal(t, "out debt not found", err.Error())
}

func TestApplyFailureDoesNotMutateSnapshot(t *testing.T) {
	snap := NewSnapshot()
	wallet := id.NewWalletID()
	currency := id.NewCurrencyID()
	require.NoError(t, Apply(snap, OpWallet(WalletOp{Kind: WalletCreate, WalletID: wallet, CurrencyID: currency})))
	require.NoError(t, Apply(snap, OpWallet(WalletOp{Kind: WalletDeposit, WalletID: wallet, Amount: money.Amount(500)})))

	before := snap.Clone()
	err := Apply(snap, OpWallet(WalletOp{Kind: WalletDeduct, WalletID: wallet, Amount: money.Amount(10000)}))
	require.Error(t, err)

	afterHost, _ := snap.Wallets.Get(wallet)
	beforeHost, _ := before.Wallets.Get(wallet)
	assert.Equal(t, beforeHost.Money.Amount, afterHost.Money.Amount)
}
