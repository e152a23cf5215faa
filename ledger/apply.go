package ledger

import (
	"errors"
	"fmt"

	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
)

// Error is the ledger-level error returned by Apply: it names which group
// (wallet/debt/loan) the failing operation targeted and wraps the
// underlying money.Map error. Messages match
// original_source/monee/monee_core/src/snapshot.rs's hand-written Display:
// wallet errors read "wallet ...", debt errors are prefixed "in ", loan
// errors (debts owed to the user, reusing the same primitive) "out ".
type Error struct {
	Group OpGroup
	Inner error
}

func (e *Error) Error() string {
	switch e.Group {
	case GroupWallet:
		switch {
		case errors.Is(e.Inner, money.ErrNotFound):
			return "wallet not found"
		case errors.Is(e.Inner, money.ErrCannotSub):
			return "cannot deduct from wallet"
		case errors.Is(e.Inner, money.ErrAlreadyExists):
			return "wallet already exists"
		}
	case GroupDebt, GroupLoan:
		prefix := "in "
		if e.Group == GroupLoan {
			prefix = "out "
		}
		switch {
		case errors.Is(e.Inner, money.ErrNotFound):
			return prefix + "debt not found"
		case errors.Is(e.Inner, money.ErrCannotSub):
			return prefix + "debt amortize overflow"
		case errors.Is(e.Inner, money.ErrAlreadyExists):
			return prefix + "debt already exists"
		}
	}
	return fmt.Sprintf("ledger: %s: %v", e.Group, e.Inner)
}

func (e *Error) Unwrap() error { return e.Inner }

// Code returns a stable machine-readable code for the CLI diagnostic
// printer and the HTTP status mapping (spec.md §7: "wallets::UnequalCurrencies"-
// style codes).
func (e *Error) Code() string {
	var reason string
	switch {
	case errors.Is(e.Inner, money.ErrNotFound):
		reason = "not_found"
	case errors.Is(e.Inner, money.ErrCannotSub):
		reason = "cannot_sub"
	case errors.Is(e.Inner, money.ErrAlreadyExists):
		reason = "already_exists"
	default:
		reason = "error"
	}
	return string(e.Group) + "." + reason
}

// Apply mutates snap according to op, or returns an Error leaving snap
// unchanged (every failure path below returns before any map write takes
// effect for that operation; a caller running several operations for one
// event is expected to operate on a Snapshot.Clone() and discard the clone
// wholesale on the first failure, per the event package).
func Apply(snap *Snapshot, op Operation) error {
	switch op.Group {
	case GroupWallet:
		return applyWallet(snap, op.Wallet)
	case GroupDebt:
		return applyDebt(snap.Debts, op.Debt, GroupDebt)
	case GroupLoan:
		return applyDebt(snap.Loans, op.Loan, GroupLoan)
	default:
		panic(fmt.Sprintf("ledger: unknown operation group %q", op.Group))
	}
}

func applyWallet(snap *Snapshot, op *WalletOp) error {
	var err error
	switch op.Kind {
	case WalletCreate:
		err = snap.Wallets.Create(op.WalletID, op.CurrencyID, struct{}{})
	case WalletDelete:
		err = snap.Wallets.Remove(op.WalletID)
	case WalletDeposit:
		err = snap.Wallets.Add(op.WalletID, op.Amount)
	case WalletDeduct:
		err = snap.Wallets.Sub(op.WalletID, op.Amount)
	default:
		panic(fmt.Sprintf("ledger: unknown wallet op kind %q", op.Kind))
	}
	if err != nil {
		return &Error{Group: GroupWallet, Inner: err}
	}
	return nil
}

func applyDebt(m *money.Map[id.DebtID, id.ActorID], op *DebtOp, group OpGroup) error {
	var err error
	switch op.Kind {
	case DebtIncur:
		err = m.Create(op.DebtID, op.CurrencyID, op.ActorID)
	case DebtForget:
		err = m.Remove(op.DebtID)
	case DebtAccumulate:
		err = m.Add(op.DebtID, op.Amount)
	case DebtAmortize:
		err = m.Sub(op.DebtID, op.Amount)
	default:
		panic(fmt.Sprintf("ledger: unknown debt op kind %q", op.Kind))
	}
	if err != nil {
		return &Error{Group: group, Inner: err}
	}
	return nil
}
