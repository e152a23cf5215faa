package memory

import (
	"context"

	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/ledger"
)

// Persister is the in-memory eventsvc.Persister: it appends to an EventLog
// and saves to a Snapshot store in sequence. Both stores are already
// guarded by their own mutex, and there is no reader that can observe one
// write without the other in a single-process in-memory test, so there is
// no separate transaction to model here (unlike store/sqlite, where Commit
// wraps both writes in one *sql.Tx).
type Persister struct {
	Log      *EventLog
	Snapshot *Snapshot
}

func NewPersister(log *EventLog, snap *Snapshot) *Persister {
	return &Persister{Log: log, Snapshot: snap}
}

func (p *Persister) Commit(ctx context.Context, entry event.Entry, _ []ledger.Operation, snap *ledger.Snapshot) (event.Entry, error) {
	committed, err := p.Log.Append(ctx, entry)
	if err != nil {
		return event.Entry{}, err
	}
	if err := p.Snapshot.SaveSnapshot(ctx, snap); err != nil {
		return event.Entry{}, err
	}
	return committed, nil
}
