package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ocxide/monee/internal/id"
	syncnode "github.com/ocxide/monee/sync/node"
)

// NodeState is the sqlx-backed sync/node.Store: the `self_app` and
// `changes_record` singleton rows.
type NodeState struct {
	conn *sqlx.DB
}

func NewNodeState(db *DB) *NodeState { return &NodeState{conn: db.Conn} }

func (s *NodeState) LoadChangesRecord() (*syncnode.ChangesRecord, error) {
	ctx := context.Background()
	var payload string
	err := s.conn.GetContext(ctx, &payload, `SELECT payload FROM changes_record WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return syncnode.NewChangesRecord(), nil
	}
	if err != nil {
		return nil, err
	}
	record := syncnode.NewChangesRecord()
	if err := json.Unmarshal([]byte(payload), record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *NodeState) SaveChangesRecord(record *syncnode.ChangesRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(context.Background(),
		`INSERT INTO changes_record (id, payload) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`, string(payload))
	return err
}

type selfAppRow struct {
	AppID   id.AppID `db:"app_id"`
	HostURL string   `db:"host_url"`
}

func (s *NodeState) LoadSelfApp() (syncnode.SelfApp, bool, error) {
	var row selfAppRow
	err := s.conn.GetContext(context.Background(), &row, `SELECT app_id, host_url FROM self_app WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return syncnode.SelfApp{}, false, nil
	}
	if err != nil {
		return syncnode.SelfApp{}, false, err
	}
	return syncnode.SelfApp{AppID: row.AppID, HostURL: row.HostURL}, true, nil
}

func (s *NodeState) SaveSelfApp(app syncnode.SelfApp) error {
	_, err := s.conn.ExecContext(context.Background(),
		`INSERT INTO self_app (id, app_id, host_url) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET app_id = excluded.app_id, host_url = excluded.host_url`,
		app.AppID, app.HostURL)
	return err
}

// LocalStore composes the sqlite Catalogue and Ledger repositories into
// sync/node.LocalStore: ReplaceCatalogue and TruncateEvents already live on
// those types (shared with the host-side ApplyChanges path and the
// catalogue/eventsvc services), so a node only needs to bundle them.
type LocalStore struct {
	*Catalogue
	*Ledger
}

func NewLocalStore(db *DB) *LocalStore {
	return &LocalStore{Catalogue: NewCatalogue(db), Ledger: NewLedger(db)}
}
