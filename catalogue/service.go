package catalogue

import (
	"context"
	"fmt"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/internal/id"
)

// Service is the catalogue's four sub-services (currency, wallet, actor,
// item-tag) fronted by a single type, since they share the same
// save/resolve/list shape (spec.md §4.3). Construct with NewService.
type Service struct {
	repo Repository
	bus  *bus.Bus
}

func NewService(repo Repository, b *bus.Bus) *Service {
	return &Service{repo: repo, bus: b}
}

func (s *Service) CreateCurrency(ctx context.Context, name, symbol, code string) (Currency, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return Currency{}, err
	}
	c := Currency{ID: id.NewCurrencyID(), Name: name, Symbol: symbol, Code: normalized}
	if err := s.repo.SaveCurrency(ctx, c); err != nil {
		return Currency{}, wrapUnique(err, "currency", normalized)
	}
	s.bus.Publish(bus.CurrencyCreated{ID: c.ID})
	return c, nil
}

func (s *Service) CreateWallet(ctx context.Context, currencyID id.CurrencyID, name, description string) (Wallet, error) {
	if err := ValidateName(name); err != nil {
		return Wallet{}, err
	}
	w := Wallet{ID: id.NewWalletID(), CurrencyID: currencyID, Name: name, Description: description}
	if err := s.repo.SaveWallet(ctx, w); err != nil {
		return Wallet{}, wrapUnique(err, "wallet", name)
	}
	s.bus.Publish(bus.WalletCreated{ID: w.ID, CurrencyID: currencyID})
	return w, nil
}

func (s *Service) CreateActor(ctx context.Context, name string, actorType ActorType, alias *string) (Actor, error) {
	if alias != nil {
		if err := ValidateAlias(*alias); err != nil {
			return Actor{}, err
		}
	}
	a := Actor{ID: id.NewActorID(), Name: name, Type: actorType, Alias: alias}
	if err := s.repo.SaveActor(ctx, a); err != nil {
		key := name
		if alias != nil {
			key = *alias
		}
		return Actor{}, wrapUnique(err, "actor", key)
	}
	s.bus.Publish(bus.ActorCreated{ID: a.ID})
	return a, nil
}

func (s *Service) CreateItemTag(ctx context.Context, name string) (ItemTag, error) {
	if err := ValidateName(name); err != nil {
		return ItemTag{}, err
	}
	t := ItemTag{ID: id.NewItemTagID(), Name: name}
	if err := s.repo.SaveItemTag(ctx, t); err != nil {
		return ItemTag{}, wrapUnique(err, "item_tag", name)
	}
	s.bus.Publish(bus.ItemTagCreated{ID: t.ID})
	return t, nil
}

func (s *Service) ResolveCurrency(ctx context.Context, code string) (id.CurrencyID, bool, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return id.CurrencyID{}, false, err
	}
	return s.repo.ResolveCurrencyByCode(ctx, normalized)
}

func (s *Service) ResolveWallet(ctx context.Context, name string) (id.WalletID, bool, error) {
	return s.repo.ResolveWalletByName(ctx, name)
}

func (s *Service) ResolveActor(ctx context.Context, alias string) (id.ActorID, bool, error) {
	return s.repo.ResolveActorByAlias(ctx, alias)
}

func (s *Service) ResolveItemTag(ctx context.Context, name string) (id.ItemTagID, bool, error) {
	return s.repo.ResolveItemTagByName(ctx, name)
}

func (s *Service) ListCurrencies(ctx context.Context) ([]Currency, error) { return s.repo.ListCurrencies(ctx) }
func (s *Service) ListWallets(ctx context.Context) ([]Wallet, error)      { return s.repo.ListWallets(ctx) }
func (s *Service) ListActors(ctx context.Context) ([]Actor, error)        { return s.repo.ListActors(ctx) }
func (s *Service) ListItemTags(ctx context.Context) ([]ItemTagNode, error) {
	return s.repo.ListItemTags(ctx)
}

func wrapUnique(err error, entity, key string) error {
	if err == nil {
		return nil
	}
	var u apperr.UniqueSaveError
	if apperr.As(err, &u) {
		return u
	}
	return fmt.Errorf("catalogue: saving %s %q: %w", entity, key, err)
}
