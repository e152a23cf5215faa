package catalogue

import (
	"context"
	"sync"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/internal/id"
)

// fakeRepository is a minimal in-memory Repository used only by this
// package's tests; the real in-memory implementation exercised by the rest
// of the module lives in store/memory.
type fakeRepository struct {
	mu         sync.Mutex
	currencies map[id.CurrencyID]Currency
	wallets    map[id.WalletID]Wallet
	actors     map[id.ActorID]Actor
	tags       map[id.ItemTagID]ItemTag
	edges      map[id.ItemTagID]map[id.ItemTagID]bool // parent -> children
	byCode     map[string]id.CurrencyID
	byWallet   map[string]id.WalletID
	byAlias    map[string]id.ActorID
	byTagName  map[string]id.ItemTagID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		currencies: map[id.CurrencyID]Currency{},
		wallets:    map[id.WalletID]Wallet{},
		actors:     map[id.ActorID]Actor{},
		tags:       map[id.ItemTagID]ItemTag{},
		edges:      map[id.ItemTagID]map[id.ItemTagID]bool{},
		byCode:     map[string]id.CurrencyID{},
		byWallet:   map[string]id.WalletID{},
		byAlias:    map[string]id.ActorID{},
		byTagName:  map[string]id.ItemTagID{},
	}
}

func (f *fakeRepository) SaveCurrency(_ context.Context, c Currency) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byCode[c.Code]; ok {
		return apperr.UniqueSaveError{Entity: "currency", Key: c.Code}
	}
	f.currencies[c.ID] = c
	f.byCode[c.Code] = c.ID
	return nil
}

func (f *fakeRepository) SaveWallet(_ context.Context, w Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byWallet[w.Name]; ok {
		return apperr.UniqueSaveError{Entity: "wallet", Key: w.Name}
	}
	f.wallets[w.ID] = w
	f.byWallet[w.Name] = w.ID
	return nil
}

func (f *fakeRepository) SaveActor(_ context.Context, a Actor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.Alias != nil {
		if _, ok := f.byAlias[*a.Alias]; ok {
			return apperr.UniqueSaveError{Entity: "actor", Key: *a.Alias}
		}
	}
	f.actors[a.ID] = a
	if a.Alias != nil {
		f.byAlias[*a.Alias] = a.ID
	}
	return nil
}

func (f *fakeRepository) SaveItemTag(_ context.Context, t ItemTag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byTagName[t.Name]; ok {
		return apperr.UniqueSaveError{Entity: "item_tag", Key: t.Name}
	}
	f.tags[t.ID] = t
	f.byTagName[t.Name] = t.ID
	return nil
}

func (f *fakeRepository) ResolveCurrencyByCode(_ context.Context, code string) (id.CurrencyID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byCode[code]
	return v, ok, nil
}

func (f *fakeRepository) ResolveWalletByName(_ context.Context, name string) (id.WalletID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byWallet[name]
	return v, ok, nil
}

func (f *fakeRepository) ResolveActorByAlias(_ context.Context, alias string) (id.ActorID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byAlias[alias]
	return v, ok, nil
}

func (f *fakeRepository) ResolveItemTagByName(_ context.Context, name string) (id.ItemTagID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byTagName[name]
	return v, ok, nil
}

func (f *fakeRepository) GetWallet(_ context.Context, walletID id.WalletID) (Wallet, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[walletID]
	return w, ok, nil
}

func (f *fakeRepository) ListCurrencies(context.Context) ([]Currency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Currency, 0, len(f.currencies))
	for _, c := range f.currencies {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepository) ListWallets(context.Context) ([]Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Wallet, 0, len(f.wallets))
	for _, w := range f.wallets {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeRepository) ListActors(context.Context) ([]Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Actor, 0, len(f.actors))
	for _, a := range f.actors {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepository) ListItemTags(context.Context) ([]ItemTagNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ItemTagNode, 0, len(f.tags))
	for id, t := range f.tags {
		var parents []string
		for parent, children := range f.edges {
			if children[id] {
				parents = append(parents, f.tags[parent].Name)
			}
		}
		out = append(out, ItemTagNode{ItemTag: t, ParentNames: parents})
	}
	return out, nil
}

func (f *fakeRepository) UpsertBundle(_ context.Context, b Bundle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range b.Currencies {
		f.currencies[c.ID] = c
		f.byCode[c.Code] = c.ID
	}
	for _, a := range b.Actors {
		f.actors[a.ID] = a
		if a.Alias != nil {
			f.byAlias[*a.Alias] = a.ID
		}
	}
	for _, w := range b.Wallets {
		f.wallets[w.ID] = w
		f.byWallet[w.Name] = w.ID
	}
	for _, t := range b.Items {
		f.tags[t.ID] = t
		f.byTagName[t.Name] = t.ID
	}
	return nil
}

func (f *fakeRepository) CheckRelation(_ context.Context, targetTag, maybeAncestor id.ItemTagID) (TagsRelation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tags[targetTag]; !ok {
		return TargetNotFound, nil
	}
	if _, ok := f.tags[maybeAncestor]; !ok {
		return TargetNotFound, nil
	}

	visited := map[id.ItemTagID]bool{}
	queue := []id.ItemTagID{targetTag}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		for parent, children := range f.edges {
			if !children[current] {
				continue
			}
			if parent == maybeAncestor {
				return Ancestor, nil
			}
			if !visited[parent] {
				queue = append(queue, parent)
			}
		}
	}
	return NotRelated, nil
}

func (f *fakeRepository) Link(_ context.Context, parentID, childID id.ItemTagID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edges[parentID] == nil {
		f.edges[parentID] = map[id.ItemTagID]bool{}
	}
	if f.edges[parentID][childID] {
		return apperr.UniqueSaveError{Entity: "contains", Key: parentID.String() + ">" + childID.String()}
	}
	f.edges[parentID][childID] = true
	return nil
}

func (f *fakeRepository) Unlink(_ context.Context, parentID, childID id.ItemTagID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edges[parentID] != nil {
		delete(f.edges[parentID], childID)
	}
	return nil
}
