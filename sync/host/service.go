package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/snapshot"
)

// NodeRegistry records which nodes are known to the host (spec.md §4.6:
// "register node" / "subsequent node requests must carry this id").
type NodeRegistry interface {
	Register(ctx context.Context, nodeID id.AppID) error
	Exists(ctx context.Context, nodeID id.AppID) (bool, error)
}

// Log is the host's append-only event log, extended beyond snapshot.LogReader
// with the operations ApplyChanges needs: an idempotency check on event id
// (spec.md §9's "recommended behaviour is idempotent accept"), the guide
// timestamp, and an append that records the host-assigned created_at.
type Log interface {
	snapshot.LogReader
	Exists(ctx context.Context, eventID id.EventID) (bool, error)
	LastCreatedAt(ctx context.Context) (time.Time, bool, error)
	Append(ctx context.Context, entry event.Entry) (event.Entry, error)
}

// AuditStore records every inbound batch verbatim against the node id that
// sent it, regardless of outcome, plus the error if the batch was rejected
// (spec.md §4.6's "records the inbound batch verbatim (audit)").
type AuditStore interface {
	RecordBatch(ctx context.Context, nodeID id.AppID, batch NodeChanges, syncErr error) error
}

// Notifier is an optional best-effort sink for NodeSynced/SyncErrorOccurred,
// invoked after the HTTP response's outcome is already decided — see
// sync/host/notifier.go.
type Notifier interface {
	NodeSynced(nodeID id.AppID)
	SyncFailed(nodeID id.AppID, message string)
}

// Service is the host-side half of spec.md §4.6.
type Service struct {
	mu sync.Mutex

	nodes     NodeRegistry
	catalogue catalogue.Repository
	log       Log
	snapStore snapshot.Store
	cache     *snapshot.Cache
	bus       *bus.Bus
	audit     AuditStore
	notifier  Notifier
	batches   *prometheus.CounterVec
}

// New builds a Service. batches is the container's SyncBatches counter,
// labelled by outcome ("accepted", "rejected_catalogue", "rejected_event");
// it may be nil in tests that don't care about metrics.
func New(nodes NodeRegistry, cat catalogue.Repository, log Log, snapStore snapshot.Store, cache *snapshot.Cache, b *bus.Bus, audit AuditStore, notifier Notifier, batches *prometheus.CounterVec) *Service {
	return &Service{
		nodes: nodes, catalogue: cat, log: log, snapStore: snapStore,
		cache: cache, bus: b, audit: audit, notifier: notifier, batches: batches,
	}
}

func (s *Service) countBatch(outcome string) {
	if s.batches != nil {
		s.batches.WithLabelValues(outcome).Inc()
	}
}

// RegisterNode mints a fresh AppId and records it.
func (s *Service) RegisterNode(ctx context.Context) (id.AppID, error) {
	nodeID := id.NewAppID()
	if err := s.nodes.Register(ctx, nodeID); err != nil {
		return id.AppID{}, fmt.Errorf("host: registering node: %w", err)
	}
	return nodeID, nil
}

// Guide returns the timestamp of the host's last appended event, or nil if
// the log is empty.
func (s *Service) Guide(ctx context.Context) (Guide, error) {
	last, ok, err := s.log.LastCreatedAt(ctx)
	if err != nil {
		return Guide{}, err
	}
	if !ok {
		return Guide{}, nil
	}
	return Guide{LastEventDate: &last}, nil
}

// State returns the full snapshot plus catalogue enumeration for a node to
// overwrite its local state with.
func (s *Service) State(ctx context.Context) (State, error) {
	snap := s.cache.Get()

	currencies, err := s.catalogue.ListCurrencies(ctx)
	if err != nil {
		return State{}, err
	}
	actors, err := s.catalogue.ListActors(ctx)
	if err != nil {
		return State{}, err
	}
	wallets, err := s.catalogue.ListWallets(ctx)
	if err != nil {
		return State{}, err
	}
	tagNodes, err := s.catalogue.ListItemTags(ctx)
	if err != nil {
		return State{}, err
	}
	items := make([]catalogue.ItemTag, len(tagNodes))
	for i, t := range tagNodes {
		items[i] = t.ItemTag
	}

	return State{Snapshot: snap, Currencies: currencies, Actors: actors, Wallets: wallets, Items: items}, nil
}

// ApplyChanges is spec.md §4.6's "apply node changes": the whole batch
// commits or none of it does. Serialised against every other ApplyChanges
// call and against eventsvc.Service.Add by the same write-ordering
// discipline spec.md §5 requires of the ledger-mutating path (s.mu plays
// the role the event service's own mutex plays for local writes).
func (s *Service) ApplyChanges(ctx context.Context, nodeID id.AppID, changes NodeChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known, err := s.nodes.Exists(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("host: checking node registration: %w", err)
	}
	if !known {
		return ErrUnknownNode
	}

	// Step 1: audit the raw batch unconditionally, before any validation —
	// original_source/monee/src/host/sync/application.rs records the batch
	// even when it is about to be rejected.
	auditErr := s.audit.RecordBatch(ctx, nodeID, changes, nil)
	if auditErr != nil {
		return fmt.Errorf("host: recording audit: %w", auditErr)
	}

	// Step 2: replay events against an in-memory clone of the snapshot,
	// seeded with the batch's own wallets so an event against a wallet the
	// node created in this same batch resolves (snapshot.SeedWallets skips
	// any wallet already present, so this is safe to call unconditionally).
	// Events are replayed before the catalogue bundle is persisted — as
	// original_source/monee/src/host/sync/application.rs::SyncNodeChanges::run
	// does — so a rejected event never leaves catalogue rows committed.
	// Duplicate event ids already present in the host log (spec.md §9's
	// idempotent-accept resolution for cross-node duplicates) are skipped.
	snap := s.cache.Get().Clone()
	if err := snapshot.SeedWallets(snap, changes.Catalogue.Wallets); err != nil {
		return fmt.Errorf("host: seeding batch wallets: %w", err)
	}
	toAppend := make([]event.Entry, 0, len(changes.Events))
	now := time.Now().UTC()
	for _, entry := range changes.Events {
		exists, err := s.log.Exists(ctx, entry.EventID)
		if err != nil {
			return fmt.Errorf("host: checking event idempotency: %w", err)
		}
		if exists {
			continue
		}
		if _, applyErr := event.Apply(snap, entry.Event, id.NewDebtID); applyErr != nil {
			syncErr := &SyncError{Kind: ErrorEvent, Inner: applyErr}
			s.recordFailure(ctx, nodeID, changes, syncErr)
			s.countBatch("rejected_event")
			return apperr.App[*SyncError](syncErr)
		}
		entry.CreatedAt = now
		toAppend = append(toAppend, entry)
	}

	// Step 3: validate and merge the catalogue bundle, now that the batch's
	// events are known to replay cleanly. UpsertBundle commits in a single
	// transaction (store/sqlite), so a uniqueness conflict here leaves no
	// catalogue row behind and the whole batch is still rejected as a unit.
	if err := s.catalogue.UpsertBundle(ctx, changes.Catalogue); err != nil {
		var unique apperr.UniqueSaveError
		if apperr.As(err, &unique) {
			syncErr := &SyncError{Kind: ErrorSave, Inner: unique}
			s.recordFailure(ctx, nodeID, changes, syncErr)
			s.countBatch("rejected_catalogue")
			return apperr.App[*SyncError](syncErr)
		}
		return fmt.Errorf("host: upserting catalogue bundle: %w", err)
	}

	// Step 4: commit — catalogue already persisted above, events next,
	// snapshot last.
	for _, entry := range toAppend {
		if _, err := s.log.Append(ctx, entry); err != nil {
			return fmt.Errorf("host: appending event %s: %w", entry.EventID, err)
		}
	}
	if err := s.snapStore.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("host: saving snapshot: %w", err)
	}
	s.cache.Set(snap)

	s.bus.Publish(bus.NodeSynced{NodeID: nodeID})
	if s.notifier != nil {
		s.notifier.NodeSynced(nodeID)
	}
	s.countBatch("accepted")
	return nil
}

func (s *Service) recordFailure(ctx context.Context, nodeID id.AppID, changes NodeChanges, syncErr error) {
	_ = s.audit.RecordBatch(ctx, nodeID, changes, syncErr)
	s.bus.Publish(bus.SyncErrorOccurred{NodeID: nodeID, Message: syncErr.Error()})
	if s.notifier != nil {
		s.notifier.SyncFailed(nodeID, syncErr.Error())
	}
}

// ErrUnknownNode is returned when a request carries an X-Node-Id the host
// has not registered (spec.md §6: "401 if X-Node-Id is missing or unknown").
var ErrUnknownNode = unknownNodeError{}

type unknownNodeError struct{}

func (unknownNodeError) Error() string { return "host: unknown node id" }
