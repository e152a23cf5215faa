// Package ledger implements the snapshot state machine: the three money
// maps (wallets, debts, loans) and the single apply(snapshot, operation)
// entrypoint that mutates them under the conservation invariants. Grounded
// in original_source/monee/monee_core/src/snapshot.rs and
// monee_core/src/snapshot/money.rs; the teacher's generic.Ledger/DefaultLedger
// (generic/ledger.go) supplies the append-and-validate idiom this package's
// callers (the event service) build on top of.
package ledger

import (
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
)

// Wallet is an account the user owns directly.
type Wallet = money.Host[struct{}]

// Debt is money owed, either by the user (a debt) or to the user (a loan);
// both are the same shape, keyed separately in the snapshot's two maps.
type Debt = money.Host[id.ActorID]

// Snapshot is the materialised current state of wallets, debts and loans.
// It is derivable purely from the ordered event log plus catalogue state:
// replaying the log from empty always yields the same snapshot.
type Snapshot struct {
	Wallets *money.Map[id.WalletID, struct{}]
	Debts   *money.Map[id.DebtID, id.ActorID]
	Loans   *money.Map[id.DebtID, id.ActorID]
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Wallets: money.NewMap[id.WalletID, struct{}](),
		Debts:   money.NewMap[id.DebtID, id.ActorID](),
		Loans:   money.NewMap[id.DebtID, id.ActorID](),
	}
}

// Clone deep-copies the snapshot. The event service applies events against
// a clone and only swaps it in on success, so a failing event never leaves
// the live snapshot partially mutated.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		Wallets: s.Wallets.Clone(),
		Debts:   s.Debts.Clone(),
		Loans:   s.Loans.Clone(),
	}
}
