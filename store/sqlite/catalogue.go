package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/internal/id"
)

// Catalogue is the sqlx-backed catalogue.Repository.
type Catalogue struct {
	conn *sqlx.DB
}

func NewCatalogue(db *DB) *Catalogue { return &Catalogue{conn: db.Conn} }

func (c *Catalogue) SaveCurrency(ctx context.Context, cur catalogue.Currency) error {
	_, err := c.conn.ExecContext(ctx,
		`INSERT INTO currency (id, code, symbol, name) VALUES (?, ?, ?, ?)`,
		cur.ID, cur.Code, cur.Symbol, cur.Name)
	return wrapUnique(err, "currency", cur.Code)
}

func (c *Catalogue) SaveWallet(ctx context.Context, w catalogue.Wallet) error {
	_, err := c.conn.ExecContext(ctx,
		`INSERT INTO wallet (id, currency_id, name, description) VALUES (?, ?, ?, ?)`,
		w.ID, w.CurrencyID, w.Name, w.Description)
	return wrapUnique(err, "wallet", w.Name)
}

func (c *Catalogue) SaveActor(ctx context.Context, a catalogue.Actor) error {
	_, err := c.conn.ExecContext(ctx,
		`INSERT INTO actor (id, name, type, alias) VALUES (?, ?, ?, ?)`,
		a.ID, a.Name, a.Type, a.Alias)
	key := ""
	if a.Alias != nil {
		key = *a.Alias
	}
	return wrapUnique(err, "actor", key)
}

func (c *Catalogue) SaveItemTag(ctx context.Context, t catalogue.ItemTag) error {
	_, err := c.conn.ExecContext(ctx, `INSERT INTO item_tag (id, name) VALUES (?, ?)`, t.ID, t.Name)
	return wrapUnique(err, "item_tag", t.Name)
}

func (c *Catalogue) ResolveCurrencyByCode(ctx context.Context, code string) (id.CurrencyID, bool, error) {
	var out id.CurrencyID
	err := c.conn.GetContext(ctx, &out, `SELECT id FROM currency WHERE code = ?`, code)
	return scanOptional(out, err)
}

func (c *Catalogue) ResolveWalletByName(ctx context.Context, name string) (id.WalletID, bool, error) {
	var out id.WalletID
	err := c.conn.GetContext(ctx, &out, `SELECT id FROM wallet WHERE name = ?`, name)
	return scanOptional(out, err)
}

func (c *Catalogue) ResolveActorByAlias(ctx context.Context, alias string) (id.ActorID, bool, error) {
	var out id.ActorID
	err := c.conn.GetContext(ctx, &out, `SELECT id FROM actor WHERE alias = ?`, alias)
	return scanOptional(out, err)
}

func (c *Catalogue) ResolveItemTagByName(ctx context.Context, name string) (id.ItemTagID, bool, error) {
	var out id.ItemTagID
	err := c.conn.GetContext(ctx, &out, `SELECT id FROM item_tag WHERE name = ?`, name)
	return scanOptional(out, err)
}

func (c *Catalogue) GetWallet(ctx context.Context, walletID id.WalletID) (catalogue.Wallet, bool, error) {
	var w catalogue.Wallet
	err := c.conn.GetContext(ctx, &w, `SELECT id, currency_id, name, description FROM wallet WHERE id = ?`, walletID)
	if errors.Is(err, sql.ErrNoRows) {
		return catalogue.Wallet{}, false, nil
	}
	if err != nil {
		return catalogue.Wallet{}, false, err
	}
	return w, true, nil
}

func (c *Catalogue) ListCurrencies(ctx context.Context) ([]catalogue.Currency, error) {
	var out []catalogue.Currency
	err := c.conn.SelectContext(ctx, &out, `SELECT id, code, symbol, name FROM currency`)
	return out, err
}

func (c *Catalogue) ListWallets(ctx context.Context) ([]catalogue.Wallet, error) {
	var out []catalogue.Wallet
	err := c.conn.SelectContext(ctx, &out, `SELECT id, currency_id, name, description FROM wallet`)
	return out, err
}

func (c *Catalogue) ListActors(ctx context.Context) ([]catalogue.Actor, error) {
	var out []catalogue.Actor
	err := c.conn.SelectContext(ctx, &out, `SELECT id, name, type, alias FROM actor`)
	return out, err
}

func (c *Catalogue) ListItemTags(ctx context.Context) ([]catalogue.ItemTagNode, error) {
	var tags []catalogue.ItemTag
	if err := c.conn.SelectContext(ctx, &tags, `SELECT id, name FROM item_tag`); err != nil {
		return nil, err
	}

	type edge struct {
		ParentID id.ItemTagID `db:"parent_id"`
		ChildID  id.ItemTagID `db:"child_id"`
	}
	var edges []edge
	if err := c.conn.SelectContext(ctx, &edges, `SELECT parent_id, child_id FROM contains`); err != nil {
		return nil, err
	}
	names := make(map[id.ItemTagID]string, len(tags))
	for _, t := range tags {
		names[t.ID] = t.Name
	}
	parentsOf := make(map[id.ItemTagID][]string)
	for _, e := range edges {
		parentsOf[e.ChildID] = append(parentsOf[e.ChildID], names[e.ParentID])
	}

	out := make([]catalogue.ItemTagNode, len(tags))
	for i, t := range tags {
		out[i] = catalogue.ItemTagNode{ItemTag: t, ParentNames: parentsOf[t.ID]}
	}
	return out, nil
}

// UpsertBundle merges b in by id inside one transaction, so a uniqueness
// violation anywhere in the bundle rolls back the whole batch — the SQL
// analogue of store/memory's pre-validated in-place merge.
func (c *Catalogue) UpsertBundle(ctx context.Context, b catalogue.Bundle) error {
	return withTx(ctx, c.conn, func(tx *sqlx.Tx) error {
		for _, cur := range b.Currencies {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO currency (id, code, symbol, name) VALUES (?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET code = excluded.code, symbol = excluded.symbol, name = excluded.name`,
				cur.ID, cur.Code, cur.Symbol, cur.Name); err != nil {
				return wrapUnique(err, "currency", cur.Code)
			}
		}
		for _, a := range b.Actors {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO actor (id, name, type, alias) VALUES (?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type, alias = excluded.alias`,
				a.ID, a.Name, a.Type, a.Alias); err != nil {
				key := ""
				if a.Alias != nil {
					key = *a.Alias
				}
				return wrapUnique(err, "actor", key)
			}
		}
		for _, w := range b.Wallets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO wallet (id, currency_id, name, description) VALUES (?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET currency_id = excluded.currency_id, name = excluded.name, description = excluded.description`,
				w.ID, w.CurrencyID, w.Name, w.Description); err != nil {
				return wrapUnique(err, "wallet", w.Name)
			}
		}
		for _, t := range b.Items {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO item_tag (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
				t.ID, t.Name); err != nil {
				return wrapUnique(err, "item_tag", t.Name)
			}
		}
		return nil
	})
}

func (c *Catalogue) CheckRelation(ctx context.Context, targetTag, maybeAncestor id.ItemTagID) (catalogue.TagsRelation, error) {
	for _, t := range []id.ItemTagID{targetTag, maybeAncestor} {
		var exists bool
		if err := c.conn.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM item_tag WHERE id = ?)`, t); err != nil {
			return catalogue.NotRelated, err
		}
		if !exists {
			return catalogue.TargetNotFound, nil
		}
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

		var parents []id.ItemTagID
		if err := c.conn.SelectContext(ctx, &parents, `SELECT parent_id FROM contains WHERE child_id = ?`, current); err != nil {
			return catalogue.NotRelated, err
		}
		for _, parent := range parents {
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

func (c *Catalogue) Link(ctx context.Context, parentID, childID id.ItemTagID) error {
	_, err := c.conn.ExecContext(ctx, `INSERT INTO contains (parent_id, child_id) VALUES (?, ?)`, parentID, childID)
	return wrapUnique(err, "contains", parentID.String()+">"+childID.String())
}

func (c *Catalogue) Unlink(ctx context.Context, parentID, childID id.ItemTagID) error {
	_, err := c.conn.ExecContext(ctx, `DELETE FROM contains WHERE parent_id = ? AND child_id = ?`, parentID, childID)
	return err
}

// ReplaceCatalogue wipes and repopulates every catalogue table, for a
// node's overwrite-from-host (spec.md §4.7).
func (c *Catalogue) ReplaceCatalogue(ctx context.Context, b catalogue.Bundle) error {
	return withTx(ctx, c.conn, func(tx *sqlx.Tx) error {
		for _, table := range []string{"contains", "item_tag", "wallet", "actor", "currency"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		for _, cur := range b.Currencies {
			if _, err := tx.ExecContext(ctx, `INSERT INTO currency (id, code, symbol, name) VALUES (?, ?, ?, ?)`,
				cur.ID, cur.Code, cur.Symbol, cur.Name); err != nil {
				return err
			}
		}
		for _, a := range b.Actors {
			if _, err := tx.ExecContext(ctx, `INSERT INTO actor (id, name, type, alias) VALUES (?, ?, ?, ?)`,
				a.ID, a.Name, a.Type, a.Alias); err != nil {
				return err
			}
		}
		for _, w := range b.Wallets {
			if _, err := tx.ExecContext(ctx, `INSERT INTO wallet (id, currency_id, name, description) VALUES (?, ?, ?, ?)`,
				w.ID, w.CurrencyID, w.Name, w.Description); err != nil {
				return err
			}
		}
		for _, t := range b.Items {
			if _, err := tx.ExecContext(ctx, `INSERT INTO item_tag (id, name) VALUES (?, ?)`, t.ID, t.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

func wrapUnique(err error, entity, key string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return apperr.UniqueSaveError{Entity: entity, Key: key}
	}
	return err
}

func scanOptional[T any](v T, err error) (T, bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}
