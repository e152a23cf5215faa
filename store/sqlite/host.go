package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ocxide/monee/internal/id"
	synchost "github.com/ocxide/monee/sync/host"
)

// NodeRegistry is the sqlx-backed sync/host.NodeRegistry.
type NodeRegistry struct {
	conn *sqlx.DB
}

func NewNodeRegistry(db *DB) *NodeRegistry { return &NodeRegistry{conn: db.Conn} }

func (r *NodeRegistry) Register(ctx context.Context, nodeID id.AppID) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO node (app_id, registered_at) VALUES (?, ?)`,
		nodeID, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (r *NodeRegistry) Exists(ctx context.Context, nodeID id.AppID) (bool, error) {
	var exists bool
	err := r.conn.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM node WHERE app_id = ?)`, nodeID)
	return exists, err
}

// AuditTrail is the sqlx-backed sync/host.AuditStore: the `node_sync` table
// records every inbound batch verbatim, successful or not.
type AuditTrail struct {
	conn *sqlx.DB
}

func NewAuditTrail(db *DB) *AuditTrail { return &AuditTrail{conn: db.Conn} }

func (a *AuditTrail) RecordBatch(ctx context.Context, nodeID id.AppID, batch synchost.NodeChanges, syncErr error) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	var errText sql.NullString
	if syncErr != nil {
		errText = sql.NullString{String: syncErr.Error(), Valid: true}
	}
	_, err = a.conn.ExecContext(ctx,
		`INSERT INTO node_sync (id, app_id, batch, error, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), nodeID, string(payload), errText, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

type auditRow struct {
	ID        string         `db:"id"`
	AppID     id.AppID       `db:"app_id"`
	Batch     string         `db:"batch"`
	Error     sql.NullString `db:"error"`
	CreatedAt string         `db:"created_at"`
}

// Records lists every audited batch for nodeID, oldest first, for
// diagnostics and tests. Not part of sync/host.AuditStore itself. The
// audit row id is a uuid (not an autoincrement), so ordering is by
// created_at rather than id.
func (a *AuditTrail) Records(ctx context.Context, nodeID id.AppID) ([]synchost.NodeChanges, error) {
	var rows []auditRow
	if err := a.conn.SelectContext(ctx, &rows,
		`SELECT id, app_id, batch, error, created_at FROM node_sync WHERE app_id = ? ORDER BY created_at ASC`, nodeID); err != nil {
		return nil, err
	}
	out := make([]synchost.NodeChanges, 0, len(rows))
	for _, r := range rows {
		var changes synchost.NodeChanges
		if err := json.Unmarshal([]byte(r.Batch), &changes); err != nil {
			return nil, err
		}
		out = append(out, changes)
	}
	return out, nil
}
