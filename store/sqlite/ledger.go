package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/ledger"
)

// Ledger is the sqlx-backed snapshot.Store, snapshot.LogReader and
// eventsvc.Persister: the single `snapshot` row plus the append-only
// `event` table.
type Ledger struct {
	conn *sqlx.DB
}

func NewLedger(db *DB) *Ledger { return &Ledger{conn: db.Conn} }

func (l *Ledger) LoadSnapshot(ctx context.Context) (*ledger.Snapshot, bool, error) {
	var payload string
	err := l.conn.GetContext(ctx, &payload, `SELECT payload FROM snapshot WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	snap := ledger.NewSnapshot()
	if err := json.Unmarshal([]byte(payload), snap); err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (l *Ledger) SaveSnapshot(ctx context.Context, snap *ledger.Snapshot) error {
	return saveSnapshot(ctx, l.conn, snap)
}

func saveSnapshot(ctx context.Context, exec sqlx.ExecerContext, snap *ledger.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx,
		`INSERT INTO snapshot (id, payload) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`, string(payload))
	return err
}

type eventRow struct {
	EventID   id.EventID `db:"event_id"`
	Kind      event.Kind `db:"kind"`
	Payload   string     `db:"payload"`
	CreatedAt time.Time  `db:"created_at"`
}

func (r eventRow) toEntry() (event.Entry, error) {
	ev := event.Event{Kind: r.Kind}
	if err := json.Unmarshal([]byte(r.Payload), &ev); err != nil {
		return event.Entry{}, err
	}
	return event.Entry{EventID: r.EventID, Event: ev, CreatedAt: r.CreatedAt.UTC()}, nil
}

func (l *Ledger) EventsAfter(ctx context.Context, after time.Time, limit int) ([]event.Entry, error) {
	var rows []eventRow
	err := l.conn.SelectContext(ctx, &rows,
		`SELECT event_id, kind, payload, created_at FROM event
		 WHERE created_at > ? ORDER BY created_at ASC LIMIT ?`, after.UTC(), limit)
	if err != nil {
		return nil, err
	}
	out := make([]event.Entry, 0, len(rows))
	for _, r := range rows {
		entry, err := r.toEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (l *Ledger) All(ctx context.Context) ([]event.Entry, error) {
	var rows []eventRow
	if err := l.conn.SelectContext(ctx, &rows,
		`SELECT event_id, kind, payload, created_at FROM event ORDER BY created_at ASC`); err != nil {
		return nil, err
	}
	out := make([]event.Entry, 0, len(rows))
	for _, r := range rows {
		entry, err := r.toEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (l *Ledger) Exists(ctx context.Context, eventID id.EventID) (bool, error) {
	var exists bool
	err := l.conn.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM event WHERE event_id = ?)`, eventID)
	return exists, err
}

func (l *Ledger) LastCreatedAt(ctx context.Context) (time.Time, bool, error) {
	var payload sql.NullString
	err := l.conn.GetContext(ctx, &payload, `SELECT created_at FROM event ORDER BY created_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) || !payload.Valid {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, payload.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return at.UTC(), true, nil
}

// TruncateEvents empties the event table, used by a node's
// overwrite-from-host (spec.md §4.7).
func (l *Ledger) TruncateEvents(ctx context.Context) error {
	_, err := l.conn.ExecContext(ctx, `DELETE FROM event`)
	return err
}

func appendEvent(ctx context.Context, exec sqlx.ExecerContext, entry event.Entry) (event.Entry, error) {
	entry.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(entry.Event)
	if err != nil {
		return event.Entry{}, err
	}
	_, err = exec.ExecContext(ctx,
		`INSERT INTO event (event_id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		entry.EventID, entry.Event.Kind, string(payload), entry.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return event.Entry{}, err
	}
	return entry, nil
}

// Append records a single event on its own, outside any transaction and
// without touching the snapshot. sync/host.Service.ApplyChanges uses it to
// append a batch's events one at a time; node-local writes go through
// Commit below instead.
func (l *Ledger) Append(ctx context.Context, entry event.Entry) (event.Entry, error) {
	return appendEvent(ctx, l.conn, entry)
}

// Commit is the eventsvc.Persister implementation: append the event and
// save the snapshot inside one transaction, so a crash between the two
// writes never leaves the log and the materialised snapshot disagreeing.
func (l *Ledger) Commit(ctx context.Context, entry event.Entry, _ []ledger.Operation, snap *ledger.Snapshot) (event.Entry, error) {
	var committed event.Entry
	err := withTx(ctx, l.conn, func(tx *sqlx.Tx) error {
		var err error
		committed, err = appendEvent(ctx, tx, entry)
		if err != nil {
			return err
		}
		return saveSnapshot(ctx, tx, snap)
	})
	if err != nil {
		return event.Entry{}, err
	}
	return committed, nil
}
