/*
Package sqlite provides a SQLite-backed implementation of every storage
interface monee defines, for both the host and the node binary.

PURPOSE:
  monee's two processes (host, node) share this one package. Which tables a
  given process actually touches depends on which repository interfaces its
  container wires up: a node never reads the host's node/node_sync tables,
  a host never reads the node's self_app/changes_record tables, but both
  share the catalogue and event-log schema since both sides materialise the
  same ledger shape.

APPEND-ONLY ENFORCEMENT:
  The event table is never UPDATEd or DELETEd except by TruncateEvents
  (node-side, after a full overwrite-from-host) — corrections happen by
  appending a compensating event, never by editing history.

CONCURRENCY:
  Every write path that mutates the snapshot (event append, sync apply) is
  already serialised above this package by eventsvc.Service.mu / host
  Service.mu; sqlite.go itself only wraps multi-statement writes in a single
  *sql.Tx so they commit atomically, the same role generic/store.go's
  "apply in a transaction" helper plays for the teacher.

WAL MODE:
  Opened with WAL so node and host (or the sync task and a local CLI
  command) can read while a write transaction is in flight.

SEE ALSO:
  - catalogue.go: catalogue.Repository
  - ledger.go: snapshot.Store, snapshot.LogReader, eventsvc.Persister
  - host.go: sync/host.NodeRegistry, sync/host.AuditStore, sync/host.Log
  - node.go: sync/node.Store, sync/node.LocalStore
*/
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the shared handle every repository in this package embeds.
type DB struct {
	Conn *sqlx.DB
}

// New opens dbPath (":memory:" for an in-memory database) and migrates the
// schema. WAL mode and foreign keys match the teacher's connection string.
func New(dbPath string) (*DB, error) {
	conn, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	db := &DB{Conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: migrating schema: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error { return db.Conn.Close() }

// migrate creates every table this package's repositories use. A process
// that only ever exercises a subset of them (a node never touches `node` or
// `node_sync`) still gets the full schema; unused tables cost nothing.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS currency (
		id   TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wallet (
		id          TEXT PRIMARY KEY,
		currency_id TEXT NOT NULL REFERENCES currency(id),
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS actor (
		id    TEXT PRIMARY KEY,
		name  TEXT NOT NULL,
		type  TEXT NOT NULL,
		alias TEXT UNIQUE
	);

	CREATE TABLE IF NOT EXISTS item_tag (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS contains (
		parent_id TEXT NOT NULL REFERENCES item_tag(id),
		child_id  TEXT NOT NULL REFERENCES item_tag(id),
		PRIMARY KEY (parent_id, child_id)
	);

	CREATE TABLE IF NOT EXISTS event (
		event_id   TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		payload    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_event_created_at ON event(created_at);

	CREATE TABLE IF NOT EXISTS snapshot (
		id      INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL
	);

	-- Node-side singletons (empty tables on a host).
	CREATE TABLE IF NOT EXISTS self_app (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		app_id   TEXT NOT NULL,
		host_url TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS changes_record (
		id      INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL
	);

	-- Host-side node registry and audit trail (empty tables on a node).
	CREATE TABLE IF NOT EXISTS node (
		app_id      TEXT PRIMARY KEY,
		registered_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS node_sync (
		id         TEXT PRIMARY KEY,
		app_id     TEXT NOT NULL REFERENCES node(app_id),
		batch      TEXT NOT NULL,
		error      TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_node_sync_app_id ON node_sync(app_id);
	CREATE INDEX IF NOT EXISTS idx_node_sync_created_at ON node_sync(created_at);
	`
	_, err := db.Conn.Exec(schema)
	return err
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error fn returns (the single multi-statement commit helper
// every Persister/ApplyChanges-style write in this package goes through).
func withTx(ctx context.Context, conn *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
