// Package host implements the host-side half of spec.md §4.6: the
// authoritative accept-and-merge path a node's sync batch goes through.
// Grounded in original_source/monee/src/host/sync/application.rs, whose
// SyncNodeChanges::run fixes the exact ordering this package's ApplyChanges
// follows (audit first, catalogue and events validated in memory, then
// committed catalogue-then-events-then-snapshot).
package host

import (
	"time"

	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/ledger"
)

// Guide is what a node fetches to decide which of its local events are
// newer than anything the host has already seen (spec.md §4.6).
type Guide struct {
	LastEventDate *time.Time `json:"last_event_date"`
}

// State is the full host state a node can overwrite its local copy with
// (spec.md §4.6's "get host state").
type State struct {
	Snapshot   *ledger.Snapshot  `json:"snapshot"`
	Currencies []catalogue.Currency  `json:"currencies"`
	Actors     []catalogue.Actor     `json:"actors"`
	Wallets    []catalogue.Wallet    `json:"wallets"`
	Items      []catalogue.ItemTag   `json:"items"`
}

// NodeChanges is the batch a node PATCHes to the host: the events it wants
// to forward plus the sub-bundles of catalogue entities it created or
// touched locally (spec.md §4.6/§4.7).
type NodeChanges struct {
	Events    []event.Entry     `json:"events"`
	Catalogue catalogue.Bundle  `json:"catalogue"`
}

// ErrorKind distinguishes why ApplyChanges rejected a batch.
type ErrorKind string

const (
	ErrorSave  ErrorKind = "save"
	ErrorEvent ErrorKind = "event"
)

// SyncError is the typed application error ApplyChanges returns when a
// batch is rejected (spec.md §4.6's SyncError::Save / SyncError::Event).
type SyncError struct {
	Kind  ErrorKind
	Inner error
}

func (e *SyncError) Error() string { return e.Inner.Error() }
func (e *SyncError) Unwrap() error { return e.Inner }
func (e *SyncError) Code() string {
	switch e.Kind {
	case ErrorSave:
		return "sync.save_conflict"
	case ErrorEvent:
		return "sync.event_rejected"
	default:
		return "sync.error"
	}
}
