package event

import (
	"fmt"

	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/ledger"
)

// MoveValueErrorKind enumerates MoveValue's own failure modes, distinct
// from the underlying ledger.Error a decomposed Deduct/Deposit can raise.
type MoveValueErrorKind string

const (
	CurrenciesNonEqual MoveValueErrorKind = "currencies_non_equal"
	WalletNotFound     MoveValueErrorKind = "wallet_not_found"
)

// MoveValueError reports why a MoveValue event was rejected before any
// ledger operation was even constructed.
type MoveValueError struct {
	Kind     MoveValueErrorKind
	WalletID id.WalletID
}

func (e *MoveValueError) Error() string {
	switch e.Kind {
	case CurrenciesNonEqual:
		return "move value: currencies are not equal"
	case WalletNotFound:
		return fmt.Sprintf("move value: wallet %s not found", e.WalletID)
	default:
		return "move value: invalid"
	}
}

// Code returns a stable machine-readable code for the CLI diagnostic
// printer (spec.md §7's "wallets::UnequalCurrencies", "wallets::NotFound").
func (e *MoveValueError) Code() string {
	switch e.Kind {
	case CurrenciesNonEqual:
		return "wallets.unequal_currencies"
	case WalletNotFound:
		return "wallets.not_found"
	default:
		return "wallets.error"
	}
}

// DebtIDMinter mints a fresh DebtID for RegisterDebt/RegisterLoan events.
type DebtIDMinter func() id.DebtID

// Apply decomposes ev into its ledger operations and applies each one, in
// order, to snap. It mutates snap directly — callers that need all-or-
// nothing semantics (the event service, snapshot rebuild) must call it
// against a Snapshot.Clone() and only adopt the clone once Apply returns
// nil, since a partial failure here leaves the operations already applied
// in place (matching "implementation may snapshot-copy before decomposition"
// in spec.md §4.2).
//
// It returns the operations that were successfully applied, for appending
// to the log alongside the event itself.
func Apply(snap *ledger.Snapshot, ev Event, mintDebtID DebtIDMinter) ([]ledger.Operation, error) {
	switch ev.Kind {
	case KindBuy:
		return applyBuy(snap, ev.Buy)
	case KindMoveValue:
		return applyMoveValue(snap, ev.MoveValue)
	case KindRegisterBalance:
		return applyRegisterBalance(snap, ev.RegisterBalance)
	case KindRegisterDebt:
		return applyRegisterDebt(snap, ev.RegisterDebt, mintDebtID)
	case KindRegisterLoan:
		return applyRegisterLoan(snap, ev.RegisterLoan, mintDebtID)
	case KindPaymentReceived:
		return applyPaymentReceived(snap, ev.PaymentReceived)
	default:
		panic(fmt.Sprintf("event: unknown kind %q", ev.Kind))
	}
}

func applyBuy(snap *ledger.Snapshot, b *Buy) ([]ledger.Operation, error) {
	op := ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletDeduct, WalletID: b.WalletID, Amount: b.Amount})
	if err := ledger.Apply(snap, op); err != nil {
		return nil, err
	}
	return []ledger.Operation{op}, nil
}

func applyMoveValue(snap *ledger.Snapshot, mv *MoveValue) ([]ledger.Operation, error) {
	fromHost, ok := snap.Wallets.Get(mv.From)
	if !ok {
		return nil, &MoveValueError{Kind: WalletNotFound, WalletID: mv.From}
	}
	toHost, ok := snap.Wallets.Get(mv.To)
	if !ok {
		return nil, &MoveValueError{Kind: WalletNotFound, WalletID: mv.To}
	}
	if fromHost.Money.CurrencyID != toHost.Money.CurrencyID {
		return nil, &MoveValueError{Kind: CurrenciesNonEqual}
	}

	deduct := ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletDeduct, WalletID: mv.From, Amount: mv.Amount})
	if err := ledger.Apply(snap, deduct); err != nil {
		return nil, err
	}
	deposit := ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletDeposit, WalletID: mv.To, Amount: mv.Amount})
	if err := ledger.Apply(snap, deposit); err != nil {
		return nil, err
	}
	return []ledger.Operation{deduct, deposit}, nil
}

func applyRegisterBalance(snap *ledger.Snapshot, rb *RegisterBalance) ([]ledger.Operation, error) {
	op := ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletDeposit, WalletID: rb.WalletID, Amount: rb.Amount})
	if err := ledger.Apply(snap, op); err != nil {
		return nil, err
	}
	return []ledger.Operation{op}, nil
}

func applyRegisterDebt(snap *ledger.Snapshot, rd *RegisterDebt, mint DebtIDMinter) ([]ledger.Operation, error) {
	debtID := rd.DebtID
	if debtID.IsZero() {
		debtID = mint()
		rd.DebtID = debtID
	}
	incur := ledger.OpDebt(ledger.DebtOp{Kind: ledger.DebtIncur, DebtID: debtID, CurrencyID: rd.CurrencyID, ActorID: rd.ActorID})
	if err := ledger.Apply(snap, incur); err != nil {
		return nil, err
	}
	accumulate := ledger.OpDebt(ledger.DebtOp{Kind: ledger.DebtAccumulate, DebtID: debtID, Amount: rd.Amount})
	if err := ledger.Apply(snap, accumulate); err != nil {
		return nil, err
	}
	return []ledger.Operation{incur, accumulate}, nil
}

func applyRegisterLoan(snap *ledger.Snapshot, rl *RegisterLoan, mint DebtIDMinter) ([]ledger.Operation, error) {
	loanID := rl.DebtID
	if loanID.IsZero() {
		loanID = mint()
		rl.DebtID = loanID
	}
	incur := ledger.OpLoan(ledger.DebtOp{Kind: ledger.DebtIncur, DebtID: loanID, CurrencyID: rl.CurrencyID, ActorID: rl.ActorID})
	if err := ledger.Apply(snap, incur); err != nil {
		return nil, err
	}
	accumulate := ledger.OpLoan(ledger.DebtOp{Kind: ledger.DebtAccumulate, DebtID: loanID, Amount: rl.Amount})
	if err := ledger.Apply(snap, accumulate); err != nil {
		return nil, err
	}
	return []ledger.Operation{incur, accumulate}, nil
}

func applyPaymentReceived(snap *ledger.Snapshot, pr *PaymentReceived) ([]ledger.Operation, error) {
	op := ledger.OpWallet(ledger.WalletOp{Kind: ledger.WalletDeposit, WalletID: pr.WalletID, Amount: pr.Amount})
	if err := ledger.Apply(snap, op); err != nil {
		return nil, err
	}
	return []ledger.Operation{op}, nil
}
