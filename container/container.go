// Package container implements the capability container from spec.md §4.8:
// a struct holding the shared database handle, the logger, the event-bus
// port, and each repository derived from it. Components declare their
// dependencies by type and are constructed from the container rather than
// reaching for globals. Grounded in the shape of
// other_examples/...Sketchyjo-STACK-BACKEND-SERVICE__internal-infrastructure-di-container.go
// (a Container struct built once in main, handed down to every service
// constructor), trimmed to the handful of capabilities monee actually needs.
package container

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/eventsvc"
	"github.com/ocxide/monee/snapshot"
	synchost "github.com/ocxide/monee/sync/host"
	syncnode "github.com/ocxide/monee/sync/node"
)

// DB is the database-only capability subset: just the shared handle, kept
// in its own type. Container carries it as the exported DB field, so any
// component handed a *Container can reach the database; nothing in this
// package keeps non-DB components away from it.
type DB struct {
	Conn *sqlx.DB
}

// Metrics groups the Prometheus collectors shared across packages so each
// component registers against one registry instead of using the global
// default, which would make two Container instances in the same test binary
// collide.
type Metrics struct {
	Registry          *prometheus.Registry
	EventAppendLatency prometheus.Histogram
	SyncBatches        *prometheus.CounterVec
	RebuildDuration    prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		EventAppendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "monee_event_append_seconds",
			Help: "Latency of event-service Add calls.",
		}),
		SyncBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monee_sync_batches_total",
			Help: "Host-side sync batches by outcome.",
		}, []string{"outcome"}),
		RebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "monee_snapshot_rebuild_seconds",
			Help: "Duration of full snapshot rebuilds.",
		}),
	}
	reg.MustRegister(m.EventAppendLatency, m.SyncBatches, m.RebuildDuration)
	return m
}

// Container is the top-level capability set. It is cheap to copy: every
// field is a pointer or an interface value, so clones share the underlying
// handles (spec.md §4.8: "the container is cheaply cloneable").
type Container struct {
	DB      *DB
	Logger  *log.Logger
	Bus     *bus.Bus
	Metrics *Metrics

	Catalogue *catalogue.Service
	Snapshot  *snapshot.Cache

	CatalogueRepo catalogue.Repository
	SnapshotStore snapshot.Store
	LogReader     snapshot.LogReader
}

// New wires a Container from its leaf capabilities. Callers (cmd/host,
// cmd/node) supply the concrete repository implementations (store/sqlite or
// store/memory); this function only assembles them, mirroring
// di.NewContainer's "build repositories, then build services on top of them"
// ordering.
//
// It also bootstraps Snapshot from storage: LoadSnapshot's persisted row is
// the fast path, and a missing or unreadable row falls back to
// snapshot.Rebuild (spec.md §4.5's "recover from a corrupted or deleted
// snapshot row"), so a freshly started process never runs against an empty
// cache while the database already holds events.
func New(ctx context.Context, conn *sqlx.DB, logger *log.Logger, b *bus.Bus, repo catalogue.Repository, snapStore snapshot.Store, logReader snapshot.LogReader) (*Container, error) {
	metrics := NewMetrics()
	cache := snapshot.NewCache()

	loaded, ok, err := snapStore.LoadSnapshot(ctx)
	if err == nil && ok {
		cache.Set(loaded)
	} else {
		start := time.Now()
		if _, err := snapshot.Rebuild(ctx, repo, logReader, snapStore, cache, nil); err != nil {
			return nil, err
		}
		metrics.RebuildDuration.Observe(time.Since(start).Seconds())
	}

	snapshot.WireBus(b, cache, snapStore, logger)

	return &Container{
		DB:            &DB{Conn: conn},
		Logger:        logger,
		Bus:           b,
		Metrics:       metrics,
		Catalogue:     catalogue.NewService(repo, b),
		Snapshot:      cache,
		CatalogueRepo: repo,
		SnapshotStore: snapStore,
		LogReader:     logReader,
	}, nil
}

// HostContainer is the capability set cmd/host wires: the base Container
// plus the event service (for any host-local writes, e.g. a host operator's
// own CLI) and the sync/host service that answers register/guide/report/
// apply-changes.
type HostContainer struct {
	*Container

	Events *eventsvc.Service
	Sync   *synchost.Service
}

// NewHost builds a HostContainer. persister is the same repository value as
// snapStore/logReader cast to eventsvc.Persister (store/sqlite.Ledger
// satisfies all three); nodes and audit are the host-only repository
// capabilities the base Container doesn't carry.
func NewHost(ctx context.Context, conn *sqlx.DB, logger *log.Logger, b *bus.Bus, repo catalogue.Repository, snapStore snapshot.Store, logReader snapshot.LogReader, persister eventsvc.Persister, nodes synchost.NodeRegistry, hostLog synchost.Log, audit synchost.AuditStore, notifier synchost.Notifier) (*HostContainer, error) {
	base, err := New(ctx, conn, logger, b, repo, snapStore, logReader)
	if err != nil {
		return nil, err
	}
	return &HostContainer{
		Container: base,
		Events:    eventsvc.New(snapStore, persister, base.Snapshot, b, base.Metrics.EventAppendLatency),
		Sync:      synchost.New(nodes, repo, hostLog, snapStore, base.Snapshot, b, audit, notifier, base.Metrics.SyncBatches),
	}, nil
}

// NodeContainer is the capability set cmd/node wires: the base Container,
// the event service for local writes, and the background sync Task.
type NodeContainer struct {
	*Container

	Events *eventsvc.Service
	Task   *syncnode.Task
}

// NewNode builds a NodeContainer. local is the node's repository, serving
// double duty as catalogue.Repository (via the base Container) and as
// syncnode.LocalStore/syncnode.Log; state persists SelfApp/ChangesRecord.
func NewNode(ctx context.Context, conn *sqlx.DB, logger *log.Logger, b *bus.Bus, local catalogue.Repository, snapStore snapshot.Store, logReader snapshot.LogReader, persister eventsvc.Persister, localStore syncnode.LocalStore, nodeLog syncnode.Log, state syncnode.Store) (*NodeContainer, error) {
	base, err := New(ctx, conn, logger, b, local, snapStore, logReader)
	if err != nil {
		return nil, err
	}
	changes := syncnode.NewChangesRecord()
	if loaded, err := state.LoadChangesRecord(); err == nil && loaded != nil {
		changes = loaded
	}
	task := syncnode.NewTask(state, localStore, nodeLog, base.Snapshot, changes)
	task.WireBus(b)
	return &NodeContainer{
		Container: base,
		Events:    eventsvc.New(snapStore, persister, base.Snapshot, b, base.Metrics.EventAppendLatency),
		Task:      task,
	}, nil
}
