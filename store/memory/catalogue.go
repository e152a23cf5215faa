// Package memory provides in-memory implementations of every repository
// capability monee defines, exercised directly by package tests and
// available for node/host wiring in tests that don't need real
// persistence. Grounded in the teacher's generic/store/memory.go for the
// "guarded maps behind a single mutex, same interface as the real store"
// shape.
package memory

import (
	"context"
	"sync"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/internal/id"
)

// Catalogue is the in-memory catalogue.Repository implementation.
type Catalogue struct {
	mu sync.Mutex

	currencies map[id.CurrencyID]catalogue.Currency
	wallets    map[id.WalletID]catalogue.Wallet
	actors     map[id.ActorID]catalogue.Actor
	tags       map[id.ItemTagID]catalogue.ItemTag
	edges      map[id.ItemTagID]map[id.ItemTagID]bool // parent -> children

	byCode    map[string]id.CurrencyID
	byWallet  map[string]id.WalletID
	byAlias   map[string]id.ActorID
	byTagName map[string]id.ItemTagID
}

func NewCatalogue() *Catalogue {
	return &Catalogue{
		currencies: map[id.CurrencyID]catalogue.Currency{},
		wallets:    map[id.WalletID]catalogue.Wallet{},
		actors:     map[id.ActorID]catalogue.Actor{},
		tags:       map[id.ItemTagID]catalogue.ItemTag{},
		edges:      map[id.ItemTagID]map[id.ItemTagID]bool{},
		byCode:     map[string]id.CurrencyID{},
		byWallet:   map[string]id.WalletID{},
		byAlias:    map[string]id.ActorID{},
		byTagName:  map[string]id.ItemTagID{},
	}
}

func (c *Catalogue) SaveCurrency(_ context.Context, cur catalogue.Currency) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byCode[cur.Code]; ok {
		return apperr.UniqueSaveError{Entity: "currency", Key: cur.Code}
	}
	c.currencies[cur.ID] = cur
	c.byCode[cur.Code] = cur.ID
	return nil
}

func (c *Catalogue) SaveWallet(_ context.Context, w catalogue.Wallet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byWallet[w.Name]; ok {
		return apperr.UniqueSaveError{Entity: "wallet", Key: w.Name}
	}
	c.wallets[w.ID] = w
	c.byWallet[w.Name] = w.ID
	return nil
}

func (c *Catalogue) SaveActor(_ context.Context, a catalogue.Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a.Alias != nil {
		if _, ok := c.byAlias[*a.Alias]; ok {
			return apperr.UniqueSaveError{Entity: "actor", Key: *a.Alias}
		}
	}
	c.actors[a.ID] = a
	if a.Alias != nil {
		c.byAlias[*a.Alias] = a.ID
	}
	return nil
}

func (c *Catalogue) SaveItemTag(_ context.Context, t catalogue.ItemTag) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byTagName[t.Name]; ok {
		return apperr.UniqueSaveError{Entity: "item_tag", Key: t.Name}
	}
	c.tags[t.ID] = t
	c.byTagName[t.Name] = t.ID
	return nil
}

func (c *Catalogue) ResolveCurrencyByCode(_ context.Context, code string) (id.CurrencyID, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.byCode[code]
	return v, ok, nil
}

func (c *Catalogue) ResolveWalletByName(_ context.Context, name string) (id.WalletID, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.byWallet[name]
	return v, ok, nil
}

func (c *Catalogue) ResolveActorByAlias(_ context.Context, alias string) (id.ActorID, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.byAlias[alias]
	return v, ok, nil
}

func (c *Catalogue) ResolveItemTagByName(_ context.Context, name string) (id.ItemTagID, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.byTagName[name]
	return v, ok, nil
}

func (c *Catalogue) GetWallet(_ context.Context, walletID id.WalletID) (catalogue.Wallet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.wallets[walletID]
	return w, ok, nil
}

func (c *Catalogue) ListCurrencies(context.Context) ([]catalogue.Currency, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalogue.Currency, 0, len(c.currencies))
	for _, v := range c.currencies {
		out = append(out, v)
	}
	return out, nil
}

func (c *Catalogue) ListWallets(context.Context) ([]catalogue.Wallet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalogue.Wallet, 0, len(c.wallets))
	for _, v := range c.wallets {
		out = append(out, v)
	}
	return out, nil
}

func (c *Catalogue) ListActors(context.Context) ([]catalogue.Actor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalogue.Actor, 0, len(c.actors))
	for _, v := range c.actors {
		out = append(out, v)
	}
	return out, nil
}

func (c *Catalogue) ListItemTags(context.Context) ([]catalogue.ItemTagNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalogue.ItemTagNode, 0, len(c.tags))
	for tagID, t := range c.tags {
		var parents []string
		for parent, children := range c.edges {
			if children[tagID] {
				parents = append(parents, c.tags[parent].Name)
			}
		}
		out = append(out, catalogue.ItemTagNode{ItemTag: t, ParentNames: parents})
	}
	return out, nil
}

// UpsertBundle merges b in by id: an id already present is updated, an
// unseen id is inserted. It validates every natural-key uniqueness
// constraint across the whole bundle before writing anything, so a conflict
// anywhere in the bundle leaves the catalogue entirely unmodified — the
// host-side sync apply path (spec.md §4.6) depends on this to keep a
// rejected batch from partially landing.
func (c *Catalogue) UpsertBundle(_ context.Context, b catalogue.Bundle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cur := range b.Currencies {
		if owner, ok := c.byCode[cur.Code]; ok && owner != cur.ID {
			return apperr.UniqueSaveError{Entity: "currency", Key: cur.Code}
		}
	}
	for _, a := range b.Actors {
		if a.Alias == nil {
			continue
		}
		if owner, ok := c.byAlias[*a.Alias]; ok && owner != a.ID {
			return apperr.UniqueSaveError{Entity: "actor", Key: *a.Alias}
		}
	}
	for _, w := range b.Wallets {
		if owner, ok := c.byWallet[w.Name]; ok && owner != w.ID {
			return apperr.UniqueSaveError{Entity: "wallet", Key: w.Name}
		}
	}
	for _, t := range b.Items {
		if owner, ok := c.byTagName[t.Name]; ok && owner != t.ID {
			return apperr.UniqueSaveError{Entity: "item_tag", Key: t.Name}
		}
	}

	for _, cur := range b.Currencies {
		c.currencies[cur.ID] = cur
		c.byCode[cur.Code] = cur.ID
	}
	for _, a := range b.Actors {
		c.actors[a.ID] = a
		if a.Alias != nil {
			c.byAlias[*a.Alias] = a.ID
		}
	}
	for _, w := range b.Wallets {
		c.wallets[w.ID] = w
		c.byWallet[w.Name] = w.ID
	}
	for _, t := range b.Items {
		c.tags[t.ID] = t
		c.byTagName[t.Name] = t.ID
	}
	return nil
}

func (c *Catalogue) CheckRelation(_ context.Context, targetTag, maybeAncestor id.ItemTagID) (catalogue.TagsRelation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tags[targetTag]; !ok {
		return catalogue.TargetNotFound, nil
	}
	if _, ok := c.tags[maybeAncestor]; !ok {
		return catalogue.TargetNotFound, nil
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
		for parent, children := range c.edges {
			if !children[current] {
				continue
			}
			if parent == maybeAncestor {
				return catalogue.Ancestor, nil
			}
			if !visited[parent] {
				queue = append(queue, parent)
			}
		}
	}
	return catalogue.NotRelated, nil
}

func (c *Catalogue) Link(_ context.Context, parentID, childID id.ItemTagID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edges[parentID] == nil {
		c.edges[parentID] = map[id.ItemTagID]bool{}
	}
	if c.edges[parentID][childID] {
		return apperr.UniqueSaveError{Entity: "contains", Key: parentID.String() + ">" + childID.String()}
	}
	c.edges[parentID][childID] = true
	return nil
}

func (c *Catalogue) Unlink(_ context.Context, parentID, childID id.ItemTagID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edges[parentID] != nil {
		delete(c.edges[parentID], childID)
	}
	return nil
}
