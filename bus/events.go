package bus

import "github.com/ocxide/monee/internal/id"

// Domain events published over the bus, per spec.md §4.3/§4.4/§4.6.

type CurrencyCreated struct{ ID id.CurrencyID }

type WalletCreated struct {
	ID         id.WalletID
	CurrencyID id.CurrencyID
}

type ActorCreated struct{ ID id.ActorID }

type ItemTagCreated struct{ ID id.ItemTagID }

type EventAdded struct{ ID id.EventID }

// NodeSynced is published by the host after a node's batch has been fully
// committed (catalogue merged, events applied and appended, snapshot saved).
type NodeSynced struct{ NodeID id.AppID }

// SyncErrorOccurred is published by the host alongside a failed batch, for
// any bus subscriber. The SNS publisher does not subscribe to it;
// sync/host.Service calls its Notifier directly.
type SyncErrorOccurred struct {
	NodeID  id.AppID
	Message string
}
