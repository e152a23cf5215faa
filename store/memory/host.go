package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ocxide/monee/internal/id"
	synchost "github.com/ocxide/monee/sync/host"
)

// NodeRegistry is the in-memory sync/host.NodeRegistry: the set of node ids
// the host has accepted a registration request from.
type NodeRegistry struct {
	mu    sync.Mutex
	nodes map[id.AppID]struct{}
}

func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{nodes: map[id.AppID]struct{}{}}
}

func (r *NodeRegistry) Register(_ context.Context, nodeID id.AppID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[nodeID] = struct{}{}
	return nil
}

func (r *NodeRegistry) Exists(_ context.Context, nodeID id.AppID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.nodes[nodeID]
	return ok, nil
}

// HostLog extends EventLog with the idempotency check, last-created-at guide
// lookup, and host-assigned created_at that sync/host.Log requires.
type HostLog struct {
	*EventLog
}

func NewHostLog() *HostLog {
	return &HostLog{EventLog: NewEventLog()}
}

func (l *HostLog) Exists(_ context.Context, eventID id.EventID) (bool, error) {
	l.EventLog.mu.Lock()
	defer l.EventLog.mu.Unlock()
	for _, e := range l.EventLog.entries {
		if e.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (l *HostLog) LastCreatedAt(_ context.Context) (time.Time, bool, error) {
	l.EventLog.mu.Lock()
	defer l.EventLog.mu.Unlock()
	if len(l.EventLog.entries) == 0 {
		return time.Time{}, false, nil
	}
	last := l.EventLog.entries[0].CreatedAt
	for _, e := range l.EventLog.entries[1:] {
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}
	return last, true, nil
}

// AuditRecord is one entry in the host's verbatim audit trail of inbound
// batches (spec.md §4.6), including the rejection error when the batch
// wasn't ultimately applied.
type AuditRecord struct {
	NodeID    id.AppID
	Batch     synchost.NodeChanges
	Err       error
	CreatedAt time.Time
}

// AuditTrail is the in-memory sync/host.AuditStore: every RecordBatch call
// is appended, never overwritten, matching the host's verbatim-audit
// requirement.
type AuditTrail struct {
	mu      sync.Mutex
	records []AuditRecord
}

func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

func (a *AuditTrail) RecordBatch(_ context.Context, nodeID id.AppID, batch synchost.NodeChanges, syncErr error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, AuditRecord{NodeID: nodeID, Batch: batch, Err: syncErr, CreatedAt: time.Now().UTC()})
	return nil
}

func (a *AuditTrail) Records() []AuditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditRecord(nil), a.records...)
}
