package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
)

// App is the capability set every command Run method receives via kong's
// bound-argument injection (kong.Parse(..., kong.Bind(app))): the node
// container plus the background context a one-shot CLI invocation runs
// under.
type App struct {
	ctx context.Context
	nc  *NodeDeps
}

// parseAmount validates a user-typed amount with decimal.Decimal first (for
// a friendly, locale-agnostic "is this even a number" error) before handing
// it to money.ParseAmount for the strict fixed-point parse spec.md §3
// defines (SPEC_FULL.md's domain stack: shopspring/decimal at the CLI
// boundary only, never inside money.Amount itself).
func parseAmount(s string) (money.Amount, error) {
	if _, err := decimal.NewFromString(s); err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return money.ParseAmount(s)
}

// WalletCmd is the `wallet` noun (spec.md §6).
type WalletCmd struct {
	Create WalletCreateCmd `cmd:"" help:"Create a wallet."`
}

type WalletCreateCmd struct {
	Currency    string `required:"" help:"Currency id or code."`
	Name        string `required:"" help:"Wallet name, matching [A-Za-z0-9_-]+."`
	Description string `help:"Optional description."`
}

func (c *WalletCreateCmd) Run(app *App) error {
	currencyID, err := resolveCurrency(app.ctx, app.nc.Catalogue, c.Currency)
	if err != nil {
		return err
	}
	w, err := app.nc.Catalogue.CreateWallet(app.ctx, currencyID, c.Name, c.Description)
	if err != nil {
		return err
	}
	fmt.Printf("created wallet %s (%s)\n", w.Name, w.ID)
	return nil
}

// CurrencyCmd is the `currency` noun.
type CurrencyCmd struct {
	Create CurrencyCreateCmd `cmd:"" help:"Create a currency."`
}

type CurrencyCreateCmd struct {
	Name   string `required:"" help:"Display name."`
	Code   string `required:"" help:"3-letter currency code."`
	Symbol string `required:"" help:"Display symbol."`
}

func (c *CurrencyCreateCmd) Run(app *App) error {
	cur, err := app.nc.Catalogue.CreateCurrency(app.ctx, c.Name, c.Symbol, c.Code)
	if err != nil {
		return err
	}
	fmt.Printf("created currency %s (%s)\n", cur.Code, cur.ID)
	return nil
}

// ActorCmd is the `actor` noun.
type ActorCmd struct {
	Create ActorCreateCmd `cmd:"" help:"Create an actor."`
}

type ActorCreateCmd struct {
	Name  string `required:"" help:"Actor name."`
	Type  string `required:"" enum:"natural,business,financial_entity" help:"natural|business|financial_entity"`
	Alias string `help:"Optional unique alias."`
}

func (c *ActorCreateCmd) Run(app *App) error {
	var alias *string
	if c.Alias != "" {
		alias = &c.Alias
	}
	a, err := app.nc.Catalogue.CreateActor(app.ctx, c.Name, catalogue.ActorType(c.Type), alias)
	if err != nil {
		return err
	}
	fmt.Printf("created actor %s (%s)\n", a.Name, a.ID)
	return nil
}

// EventCmd is the `event` noun; `event add <kind>` matches spec.md §6.
type EventCmd struct {
	Add EventAddCmd `cmd:"" help:"Record an event."`
}

type EventAddCmd struct {
	RegisterBalance RegisterBalanceCmd `cmd:"" name:"register-balance"`
	Buy             BuyCmd             `cmd:""`
}

type RegisterBalanceCmd struct {
	Wallet string `required:""`
	Amount string `required:""`
}

func (c *RegisterBalanceCmd) Run(app *App) error {
	walletID, err := resolveWallet(app.ctx, app.nc.Catalogue, c.Wallet)
	if err != nil {
		return err
	}
	amount, err := parseAmount(c.Amount)
	if err != nil {
		return err
	}
	ev := event.NewRegisterBalance(event.RegisterBalance{WalletID: walletID, Amount: amount})
	entry, err := app.nc.Events.Add(app.ctx, ev)
	if err != nil {
		return err
	}
	fmt.Printf("recorded event %s\n", entry.EventID)
	return nil
}

type BuyCmd struct {
	Item   string   `required:"" help:"Item tag name or id."`
	Actors []string `required:"" help:"One or more actor names or ids."`
	Wallet string   `required:""`
	Amount string   `required:""`
}

func (c *BuyCmd) Run(app *App) error {
	itemID, err := resolveItemTag(app.ctx, app.nc.Catalogue, c.Item)
	if err != nil {
		return err
	}
	walletID, err := resolveWallet(app.ctx, app.nc.Catalogue, c.Wallet)
	if err != nil {
		return err
	}
	actors := make([]id.ActorID, 0, len(c.Actors))
	for _, ref := range c.Actors {
		aid, err := resolveActor(app.ctx, app.nc.Catalogue, ref)
		if err != nil {
			return err
		}
		actors = append(actors, aid)
	}
	amount, err := parseAmount(c.Amount)
	if err != nil {
		return err
	}
	ev := event.NewBuy(event.Buy{ItemTagID: itemID, Actors: actors, WalletID: walletID, Amount: amount})
	entry, err := app.nc.Events.Add(app.ctx, ev)
	if err != nil {
		return err
	}
	fmt.Printf("recorded event %s\n", entry.EventID)
	return nil
}

// ItemTagsCmd is the `item-tags` noun.
type ItemTagsCmd struct {
	Create ItemTagCreateCmd `cmd:""`
	Relate ItemTagRelateCmd `cmd:""`
	View   ItemTagViewCmd   `cmd:""`
}

type ItemTagCreateCmd struct {
	Name string `required:""`
}

func (c *ItemTagCreateCmd) Run(app *App) error {
	t, err := app.nc.Catalogue.CreateItemTag(app.ctx, c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("created item tag %s (%s)\n", t.Name, t.ID)
	return nil
}

type ItemTagRelateCmd struct {
	Parent string `required:"" help:"Parent tag (the container)."`
	Child  string `required:"" help:"Child tag (the contained)."`
	Unlink bool   `help:"Remove the relation instead of adding it."`
}

func (c *ItemTagRelateCmd) Run(app *App) error {
	parentID, err := resolveItemTag(app.ctx, app.nc.Catalogue, c.Parent)
	if err != nil {
		return err
	}
	childID, err := resolveItemTag(app.ctx, app.nc.Catalogue, c.Child)
	if err != nil {
		return err
	}
	if c.Unlink {
		if err := app.nc.Catalogue.UnlinkItemTag(app.ctx, parentID, childID); err != nil {
			return err
		}
		fmt.Println("unlinked")
		return nil
	}
	status, err := app.nc.Catalogue.LinkItemTag(app.ctx, parentID, childID)
	if err != nil {
		return err
	}
	switch status {
	case catalogue.Linked:
		fmt.Println("linked")
	case catalogue.AlreadyContains:
		fmt.Println("already contains")
	case catalogue.CyclicRelation:
		return fmt.Errorf("item_tag.cyclic_relation: linking %s to contain %s would create a cycle", c.Parent, c.Child)
	case catalogue.TagNotFound:
		return fmt.Errorf("item_tag.not_found: %s or %s does not resolve", c.Parent, c.Child)
	}
	return nil
}

type ItemTagViewCmd struct{}

func (c *ItemTagViewCmd) Run(app *App) error {
	tags, err := app.nc.Catalogue.ListItemTags(app.ctx)
	if err != nil {
		return err
	}
	fmt.Println(headingStyle.Render("item tags"))
	for _, t := range tags {
		parents := "-"
		if len(t.ParentNames) > 0 {
			parents = fmt.Sprintf("%v", t.ParentNames)
		}
		fmt.Printf("  %-4s %-20s contained by %s\n", t.ID, t.Name, parents)
	}
	return nil
}

// CLI is the root kong command tree, matching spec.md §6's noun surface.
// DB's default is filled in from monee.yaml (if present) via kong.Vars
// before parsing, so precedence is flag > env > config file, per
// SPEC_FULL.md's ambient-stack configuration section.
type CLI struct {
	DB       string      `help:"SQLite database path." default:"${db_path}" env:"MONEE_DB_PATH"`
	Wallet   WalletCmd   `cmd:""`
	Currency CurrencyCmd `cmd:""`
	Actor    ActorCmd    `cmd:""`
	Event    EventCmd    `cmd:""`
	Show     ShowCmd     `cmd:""`
	ItemTags ItemTagsCmd `cmd:"" name:"item-tags"`
	Sync     SyncBindCmd `cmd:"" help:"Bind this node to a host and sync now."`
}
