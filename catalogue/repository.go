package catalogue

import (
	"context"

	"github.com/ocxide/monee/internal/id"
)

// Repository is the storage capability the catalogue service is built on.
// Implementations: store/sqlite (embedded DB) and store/memory (tests).
// Matches spec.md §9's "repository capabilities" — an opaque interface
// injected through the capability container, no inheritance implied.
type Repository interface {
	SaveCurrency(ctx context.Context, c Currency) error
	SaveWallet(ctx context.Context, w Wallet) error
	SaveActor(ctx context.Context, a Actor) error
	SaveItemTag(ctx context.Context, t ItemTag) error

	ResolveCurrencyByCode(ctx context.Context, code string) (id.CurrencyID, bool, error)
	ResolveWalletByName(ctx context.Context, name string) (id.WalletID, bool, error)
	ResolveActorByAlias(ctx context.Context, alias string) (id.ActorID, bool, error)
	ResolveItemTagByName(ctx context.Context, name string) (id.ItemTagID, bool, error)

	GetWallet(ctx context.Context, walletID id.WalletID) (Wallet, bool, error)

	ListCurrencies(ctx context.Context) ([]Currency, error)
	ListWallets(ctx context.Context) ([]Wallet, error)
	ListActors(ctx context.Context) ([]Actor, error)
	ListItemTags(ctx context.Context) ([]ItemTagNode, error)

	// UpsertBundle merges a catalogue bundle idempotently by id, used by
	// the host-side sync apply path and the node-side overwrite-from-host
	// path (spec.md §4.6/§4.7). An id that already exists is updated in
	// place; an id that doesn't exist is inserted.
	UpsertBundle(ctx context.Context, b Bundle) error

	TagRepository
}

// TagRepository isolates the DAG operations, grounded directly in
// original_source/monee/src/backoffice/item_tags/domain.rs's Repository trait.
type TagRepository interface {
	CheckRelation(ctx context.Context, targetTag, maybeAncestor id.ItemTagID) (TagsRelation, error)
	Link(ctx context.Context, parentID, childID id.ItemTagID) error
	Unlink(ctx context.Context, parentID, childID id.ItemTagID) error
}

// TagsRelation is the outcome of walking the ancestor chain from one tag
// looking for another.
type TagsRelation int

const (
	NotRelated TagsRelation = iota
	Ancestor
	TargetNotFound
)

// Bundle is the full enumeration of catalogue entities exchanged during
// sync: spec.md §4.6's catalogue_bundle.
type Bundle struct {
	Currencies []Currency `json:"currencies"`
	Actors     []Actor    `json:"actors"`
	Wallets    []Wallet   `json:"wallets"`
	Items      []ItemTag  `json:"items"`
}
