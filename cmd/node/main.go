/*
main.go - Node process / CLI entry point

PURPOSE:
  monee's node binary is both a one-shot CLI (spec.md §6's wallet/currency/
  actor/event/show/item-tags surface) and, for the duration of each
  invocation, the host of the background sync task (spec.md §4.7) so that
  `sync` can bind to a host and immediately pull its state. Every other
  subcommand runs against purely local state; the sync task only matters
  once a host binding exists, at which point domain-event notifications
  (wallet/currency/actor/item-tag/event creation) queue up a push for the
  next time the node runs `sync` or any command that appends an event.

STARTUP SEQUENCE:
  1. Read monee.yaml (if present) for config-file defaults
  2. Parse the kong command line: flags > env vars > config-file defaults
  3. Open the SQLite database and migrate its schema
  4. Wire the capability container and background sync task
  5. Start the sync task under an errgroup, run the requested command,
     cancel and wait for the task to stop

CONFIGURATION:
  --db        SQLite database path (env MONEE_DB_PATH, monee.yaml db_path)
  --host-url  Host URL, only for `sync` (env MONEE_NODE_HOST_URL, monee.yaml node_host_url)

SEE ALSO:
  - commands.go: the kong command tree (wallet, currency, actor, event, item-tags)
  - show.go: the `show` command
  - sync.go: the `sync` command (host binding)
  - resolve.go: alias-or-id resolution shared by every command
*/
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/container"
	"github.com/ocxide/monee/eventsvc"
	"github.com/ocxide/monee/snapshot"
	"github.com/ocxide/monee/store/sqlite"
	syncnode "github.com/ocxide/monee/sync/node"
)

// NodeDeps bundles the capability container pieces every command needs,
// plus the node-only state store (self_app, changes_record) that isn't
// part of container.Container's base capability set.
type NodeDeps struct {
	Catalogue *catalogue.Service
	Events    *eventsvc.Service
	Snapshot  *snapshot.Cache
	Store     syncnode.Store
	Task      *syncnode.Task
}

// configDefaults reads monee.yaml, if present, for the lowest-precedence
// layer of configuration; flags and environment variables (both handled by
// kong's struct tags below) override whatever it returns.
func configDefaults() kong.Vars {
	v := viper.New()
	v.SetConfigName("monee")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // absence is fine; flags/env still apply
	v.SetDefault("db_path", "monee.db")
	v.SetDefault("node_host_url", "")
	return kong.Vars{
		"db_path":       v.GetString("db_path"),
		"node_host_url": v.GetString("node_host_url"),
	}
}

func main() {
	var cli CLI
	parser := kong.Must(&cli,
		kong.Name("monee"),
		kong.Description("A personal-finance ledger CLI."),
		configDefaults(),
	)
	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		printDiagnostic(err)
		os.Exit(1)
	}

	db, err := sqlite.New(cli.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	logger := log.New(os.Stderr, "monee-node: ", log.LstdFlags)
	b := bus.New(256)

	cat := sqlite.NewCatalogue(db)
	ledgerStore := sqlite.NewLedger(db)
	nodeState := sqlite.NewNodeState(db)
	localStore := sqlite.NewLocalStore(db)

	nc, err := container.NewNode(context.Background(), db.Conn, logger, b, cat, ledgerStore, ledgerStore, ledgerStore, localStore, ledgerStore, nodeState)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to bootstrap snapshot: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { b.Run(); return nil })
	g.Go(func() error { return nc.Task.Run(gctx) })

	app := &App{
		ctx: gctx,
		nc: &NodeDeps{
			Catalogue: nc.Catalogue,
			Events:    nc.Events,
			Snapshot:  nc.Snapshot,
			Store:     nodeState,
			Task:      nc.Task,
		},
	}

	runErr := kctx.Run(app)

	cancel()
	b.Stop()
	_ = g.Wait()

	if runErr != nil {
		printDiagnostic(runErr)
		os.Exit(1)
	}
}
