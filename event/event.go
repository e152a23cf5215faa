// Package event implements the user-level "Event" vocabulary (spec.md §3)
// and its decomposition into ledger.Operations, including the
// snapshot-reading validation (currency equality, wallet existence) that
// MoveValue needs before it can decide whether it is even legal to apply.
// Grounded in original_source/monee/src/backoffice/events/infrastructure.rs
// for the event field shapes and original_source/monee/monee_core/src/snapshot.rs
// for how an event's operations compose.
package event

import (
	"time"

	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
)

// Kind names the wire form of an event. "buy" resolves spec.md's Buy/Purchase
// open question (see SPEC_FULL.md).
type Kind string

const (
	KindBuy             Kind = "buy"
	KindMoveValue       Kind = "move_value"
	KindRegisterBalance Kind = "register_balance"
	KindRegisterDebt    Kind = "register_debt"
	KindRegisterLoan    Kind = "register_loan"
	KindPaymentReceived Kind = "payment_received"
)

type Buy struct {
	ItemTagID id.ItemTagID `json:"item_tag_id"`
	Actors    []id.ActorID `json:"actors"`
	WalletID  id.WalletID  `json:"wallet_id"`
	Amount    money.Amount `json:"amount"`
}

type MoveValue struct {
	From   id.WalletID  `json:"from"`
	To     id.WalletID  `json:"to"`
	Amount money.Amount `json:"amount"`
}

type RegisterBalance struct {
	WalletID id.WalletID  `json:"wallet_id"`
	Amount   money.Amount `json:"amount"`
}

// RegisterDebt mints a fresh DebtID when the event service first constructs
// it; DebtID is persisted as part of the event entry (not reminted on
// replay) so that rebuilding the snapshot from the log is deterministic —
// see the "mint a fresh DebtId per event" / "replay is not
// id-deterministic" passage in spec.md §4.2.
type RegisterDebt struct {
	DebtID         id.DebtID     `json:"debt_id"`
	Amount         money.Amount  `json:"amount"`
	CurrencyID     id.CurrencyID `json:"currency_id"`
	ActorID        id.ActorID    `json:"actor_id"`
	PaymentPromise *string       `json:"payment_promise,omitempty"`
}

// RegisterLoan is RegisterDebt's symmetric counterpart on the loans map.
type RegisterLoan struct {
	DebtID         id.DebtID     `json:"debt_id"`
	Amount         money.Amount  `json:"amount"`
	CurrencyID     id.CurrencyID `json:"currency_id"`
	ActorID        id.ActorID    `json:"actor_id"`
	PaymentPromise *string       `json:"payment_promise,omitempty"`
}

type PaymentReceived struct {
	ActorID  id.ActorID   `json:"actor_id"`
	WalletID id.WalletID  `json:"wallet_id"`
	Amount   money.Amount `json:"amount"`
}

// Event is the tagged union of user-level intents recorded in the
// append-only log. Exactly one field matching Kind is set.
type Event struct {
	Kind            Kind             `json:"type"`
	Buy             *Buy             `json:"buy,omitempty"`
	MoveValue       *MoveValue       `json:"move_value,omitempty"`
	RegisterBalance *RegisterBalance `json:"register_balance,omitempty"`
	RegisterDebt    *RegisterDebt    `json:"register_debt,omitempty"`
	RegisterLoan    *RegisterLoan    `json:"register_loan,omitempty"`
	PaymentReceived *PaymentReceived `json:"payment_received,omitempty"`
}

func NewBuy(v Buy) Event                         { return Event{Kind: KindBuy, Buy: &v} }
func NewMoveValue(v MoveValue) Event             { return Event{Kind: KindMoveValue, MoveValue: &v} }
func NewRegisterBalance(v RegisterBalance) Event { return Event{Kind: KindRegisterBalance, RegisterBalance: &v} }
func NewRegisterDebt(v RegisterDebt) Event       { return Event{Kind: KindRegisterDebt, RegisterDebt: &v} }
func NewRegisterLoan(v RegisterLoan) Event       { return Event{Kind: KindRegisterLoan, RegisterLoan: &v} }
func NewPaymentReceived(v PaymentReceived) Event {
	return Event{Kind: KindPaymentReceived, PaymentReceived: &v}
}

// Entry is an append-only log record: the event plus its mint id and the
// server-assigned timestamp (spec.md §3's "Append-only event entry").
type Entry struct {
	EventID   id.EventID `json:"event_id"`
	Event     Event      `json:"event"`
	CreatedAt time.Time  `json:"created_at"`
}
