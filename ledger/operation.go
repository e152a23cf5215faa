package ledger

import (
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
)

// OpGroup names which of the snapshot's three maps an operation targets.
type OpGroup string

const (
	GroupWallet OpGroup = "wallet"
	GroupDebt   OpGroup = "debt"
	GroupLoan   OpGroup = "loan"
)

// WalletOpKind enumerates the wallet-group primitives.
type WalletOpKind string

const (
	WalletCreate  WalletOpKind = "create"
	WalletDelete  WalletOpKind = "delete"
	WalletDeposit WalletOpKind = "deposit"
	WalletDeduct  WalletOpKind = "deduct"
)

// WalletOp is a primitive mutation of the wallets map.
type WalletOp struct {
	Kind       WalletOpKind  `json:"kind"`
	WalletID   id.WalletID   `json:"wallet_id"`
	CurrencyID id.CurrencyID `json:"currency_id,omitempty"`
	Amount     money.Amount  `json:"amount,omitempty"`
}

// DebtOpKind enumerates the debt-group primitives; the same shape is reused
// for both the debts map and the loans map.
type DebtOpKind string

const (
	DebtIncur      DebtOpKind = "incur"
	DebtForget     DebtOpKind = "forget"
	DebtAccumulate DebtOpKind = "accumulate"
	DebtAmortize   DebtOpKind = "amortize"
)

// DebtOp is a primitive mutation of the debts or loans map.
type DebtOp struct {
	Kind       DebtOpKind    `json:"kind"`
	DebtID     id.DebtID     `json:"debt_id"`
	CurrencyID id.CurrencyID `json:"currency_id,omitempty"`
	ActorID    id.ActorID    `json:"actor_id,omitempty"`
	Amount     money.Amount  `json:"amount,omitempty"`
}

// Operation is the tagged union of ledger primitives: Wallet(WalletOp) |
// Debt(DebtOp) | Loan(DebtOp). Exactly one of Wallet/Debt/Loan is set,
// matching Group.
type Operation struct {
	Group  OpGroup   `json:"group"`
	Wallet *WalletOp `json:"wallet,omitempty"`
	Debt   *DebtOp   `json:"debt,omitempty"`
	Loan   *DebtOp   `json:"loan,omitempty"`
}

func OpWallet(op WalletOp) Operation { return Operation{Group: GroupWallet, Wallet: &op} }
func OpDebt(op DebtOp) Operation     { return Operation{Group: GroupDebt, Debt: &op} }
func OpLoan(op DebtOp) Operation     { return Operation{Group: GroupLoan, Loan: &op} }
