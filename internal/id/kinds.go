package id

type walletKind struct{}

func (walletKind) kindName() string { return "wallet" }

type debtKind struct{}

func (debtKind) kindName() string { return "debt" }

type currencyKind struct{}

func (currencyKind) kindName() string { return "currency" }

type actorKind struct{}

func (actorKind) kindName() string { return "actor" }

type itemTagKind struct{}

func (itemTagKind) kindName() string { return "item_tag" }

type eventKind struct{}

func (eventKind) kindName() string { return "event" }

type appKind struct{}

func (appKind) kindName() string { return "app" }

// WalletID identifies an account the user owns.
type WalletID = Token[walletKind]

// DebtID identifies a debt or loan record (the same kind is reused for both,
// per the snapshot's two independently-keyed debt/loan maps).
type DebtID = Token[debtKind]

// CurrencyID identifies a currency catalogue entry.
type CurrencyID = Token[currencyKind]

// ActorID identifies a natural person, business, or financial entity.
type ActorID = Token[actorKind]

// ItemTagID identifies a node in the item-tag DAG.
type ItemTagID = Token[itemTagKind]

// EventID identifies an appended ledger event.
type EventID = Token[eventKind]

// AppID identifies a registered sync node (called AppId in the original
// implementation; kept as AppID here to follow Go initialism conventions).
type AppID = Token[appKind]

func NewWalletID() WalletID     { return New[walletKind]() }
func NewDebtID() DebtID         { return New[debtKind]() }
func NewCurrencyID() CurrencyID { return New[currencyKind]() }
func NewActorID() ActorID       { return New[actorKind]() }
func NewItemTagID() ItemTagID   { return New[itemTagKind]() }
func NewEventID() EventID       { return New[eventKind]() }
func NewAppID() AppID           { return New[appKind]() }

func ParseWalletID(s string) (WalletID, error)     { return Parse[walletKind](s) }
func ParseDebtID(s string) (DebtID, error)         { return Parse[debtKind](s) }
func ParseCurrencyID(s string) (CurrencyID, error) { return Parse[currencyKind](s) }
func ParseActorID(s string) (ActorID, error)       { return Parse[actorKind](s) }
func ParseItemTagID(s string) (ItemTagID, error)   { return Parse[itemTagKind](s) }
func ParseEventID(s string) (EventID, error)       { return Parse[eventKind](s) }
func ParseAppID(s string) (AppID, error)           { return Parse[appKind](s) }
