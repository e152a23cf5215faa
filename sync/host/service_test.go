package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/event"
	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
	"github.com/ocxide/monee/snapshot"
	"github.com/ocxide/monee/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.NodeRegistry, *memory.AuditTrail) {
	t.Helper()
	nodes := memory.NewNodeRegistry()
	cat := memory.NewCatalogue()
	log := memory.NewHostLog()
	snapStore := memory.NewSnapshot()
	cache := snapshot.NewCache()
	audit := memory.NewAuditTrail()
	return New(nodes, cat, log, snapStore, cache, bus.New(16), audit, nil, nil), nodes, audit
}

func registerNode(t *testing.T, nodes *memory.NodeRegistry) id.AppID {
	t.Helper()
	nodeID := id.NewAppID()
	require.NoError(t, nodes.Register(context.Background(), nodeID))
	return nodeID
}

func TestApplyChangesRejectsUnknownNode(t *testing.T) {
	s, _, _ := newTestService(t)
	err := s.ApplyChanges(context.Background(), id.NewAppID(), NodeChanges{})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestApplyChangesMergesCatalogueAndAppliesEvents(t *testing.T) {
	s, nodes, audit := newTestService(t)
	nodeID := registerNode(t, nodes)

	currency := catalogue.Currency{ID: id.NewCurrencyID(), Code: "PEN", Symbol: "S/", Name: "sol"}
	wallet := catalogue.Wallet{ID: id.NewWalletID(), CurrencyID: currency.ID, Name: "main"}
	amount, _ := money.ParseAmount("50")
	entry := event.Entry{
		EventID: id.NewEventID(),
		Event:   event.NewRegisterBalance(event.RegisterBalance{WalletID: wallet.ID, Amount: amount}),
	}

	changes := NodeChanges{
		Events:    []event.Entry{entry},
		Catalogue: catalogue.Bundle{Currencies: []catalogue.Currency{currency}, Wallets: []catalogue.Wallet{wallet}},
	}

	err := s.ApplyChanges(context.Background(), nodeID, changes)
	require.NoError(t, err)

	state, err := s.State(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Wallets, 1)
	host, ok := state.Snapshot.Wallets.Get(wallet.ID)
	require.True(t, ok)
	assert.Equal(t, "50", host.Money.Amount.String())

	records := audit.Records()
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Err)
}

func TestApplyChangesCatalogueConflictLeavesSnapshotUntouched(t *testing.T) {
	s, nodes, audit := newTestService(t)
	nodeID := registerNode(t, nodes)

	existing := catalogue.Currency{ID: id.NewCurrencyID(), Code: "PEN", Symbol: "S/", Name: "sol"}
	require.NoError(t, s.catalogue.UpsertBundle(context.Background(), catalogue.Bundle{Currencies: []catalogue.Currency{existing}}))

	conflicting := catalogue.Currency{ID: id.NewCurrencyID(), Code: "PEN", Symbol: "S/", Name: "other"}
	before := s.cache.Get()

	err := s.ApplyChanges(context.Background(), nodeID, NodeChanges{Catalogue: catalogue.Bundle{Currencies: []catalogue.Currency{conflicting}}})
	require.Error(t, err)

	var appErr apperr.Error[*SyncError]
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrorSave, appErr.App.Kind)
	assert.Same(t, before, s.cache.Get())

	records := audit.Records()
	require.Len(t, records, 2) // unconditional record + failure record
	assert.NotNil(t, records[1].Err)
}

func TestApplyChangesEventRejectionLeavesSnapshotUntouched(t *testing.T) {
	s, nodes, _ := newTestService(t)
	nodeID := registerNode(t, nodes)

	before := s.cache.Get()
	badEvent := event.Entry{
		EventID: id.NewEventID(),
		Event:   event.NewMoveValue(event.MoveValue{From: id.NewWalletID(), To: id.NewWalletID()}),
	}

	err := s.ApplyChanges(context.Background(), nodeID, NodeChanges{Events: []event.Entry{badEvent}})
	require.Error(t, err)

	var appErr apperr.Error[*SyncError]
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrorEvent, appErr.App.Kind)
	assert.Same(t, before, s.cache.Get())
}

func TestApplyChangesSkipsDuplicateEventID(t *testing.T) {
	s, nodes, _ := newTestService(t)
	nodeID := registerNode(t, nodes)

	currency := catalogue.Currency{ID: id.NewCurrencyID(), Code: "PEN", Symbol: "S/", Name: "sol"}
	wallet := catalogue.Wallet{ID: id.NewWalletID(), CurrencyID: currency.ID, Name: "main"}
	amount, _ := money.ParseAmount("20")
	shared := event.Entry{
		EventID: id.NewEventID(),
		Event:   event.NewRegisterBalance(event.RegisterBalance{WalletID: wallet.ID, Amount: amount}),
	}
	bundle := catalogue.Bundle{Currencies: []catalogue.Currency{currency}, Wallets: []catalogue.Wallet{wallet}}

	require.NoError(t, s.ApplyChanges(context.Background(), nodeID, NodeChanges{Events: []event.Entry{shared}, Catalogue: bundle}))
	// Same event id arrives again (a retried push); it must be dropped
	// silently rather than double-applied.
	require.NoError(t, s.ApplyChanges(context.Background(), nodeID, NodeChanges{Events: []event.Entry{shared}, Catalogue: bundle}))

	host, ok := s.cache.Get().Wallets.Get(wallet.ID)
	require.True(t, ok)
	assert.Equal(t, "20", host.Money.Amount.String())
}
