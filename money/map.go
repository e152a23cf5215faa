package money

import (
	"encoding/json"
	"errors"

	"github.com/ocxide/monee/internal/id"
)

// Money is a currency-tagged amount, the unit held by every entry of a Map.
type Money struct {
	Amount     Amount       `json:"amount"`
	CurrencyID id.CurrencyID `json:"currency_id"`
}

var (
	ErrNotFound      = errors.New("money: not found")
	ErrCannotSub     = errors.New("money: cannot sub")
	ErrAlreadyExists = errors.New("money: already exists")
)

// Host is one entry of a Map: the money it holds plus whatever extra data
// its kind carries (wallets carry none, debts/loans carry the actor they're
// owed to or owed by).
type Host[D any] struct {
	Money Money
	Data  D
}

// Map is a keyed collection of money-holding records. It is the Go analogue
// of MoneyMap<M: MoneyHost> in monee_core/src/snapshot/money.rs: Create
// rejects a key already present, Add/Sub reject a missing key, and Sub
// additionally rejects an underflowing subtraction. Map carries no locking
// of its own — callers serialise access at the snapshot/ledger level.
type Map[K comparable, D any] struct {
	items map[K]Host[D]
}

func NewMap[K comparable, D any]() *Map[K, D] {
	return &Map[K, D]{items: make(map[K]Host[D])}
}

func (m *Map[K, D]) Create(key K, currency id.CurrencyID, data D) error {
	if _, ok := m.items[key]; ok {
		return ErrAlreadyExists
	}
	m.items[key] = Host[D]{Money: Money{Amount: Zero, CurrencyID: currency}, Data: data}
	return nil
}

func (m *Map[K, D]) Add(key K, amount Amount) error {
	h, ok := m.items[key]
	if !ok {
		return ErrNotFound
	}
	h.Money.Amount = h.Money.Amount.Add(amount)
	m.items[key] = h
	return nil
}

func (m *Map[K, D]) Sub(key K, amount Amount) error {
	h, ok := m.items[key]
	if !ok {
		return ErrNotFound
	}
	next, ok := h.Money.Amount.CheckedSub(amount)
	if !ok {
		return ErrCannotSub
	}
	h.Money.Amount = next
	m.items[key] = h
	return nil
}

// Remove deletes key. It does not redistribute the balance it held.
func (m *Map[K, D]) Remove(key K) error {
	if _, ok := m.items[key]; !ok {
		return ErrNotFound
	}
	delete(m.items, key)
	return nil
}

func (m *Map[K, D]) Get(key K) (Host[D], bool) {
	h, ok := m.items[key]
	return h, ok
}

func (m *Map[K, D]) Len() int { return len(m.items) }

// Range iterates entries in unspecified order; returning false stops iteration.
func (m *Map[K, D]) Range(fn func(key K, host Host[D]) bool) {
	for k, h := range m.items {
		if !fn(k, h) {
			return
		}
	}
}

// SetUnchecked inserts or overwrites an entry without going through the
// domain rules above. It exists for loading trusted state from storage
// (the Rust original's `from_iter_unchecked`), never for ledger mutation.
func (m *Map[K, D]) SetUnchecked(key K, host Host[D]) {
	m.items[key] = host
}

// Clone returns a deep copy, used by the event service to apply an event
// against scratch state before committing it.
func (m *Map[K, D]) Clone() *Map[K, D] {
	clone := NewMap[K, D]()
	for k, v := range m.items {
		clone.items[k] = v
	}
	return clone
}

// mapEntry is the wire form of one Map record: items is unexported, so Map
// marshals as a list of key/host pairs rather than a JSON object, which
// works for any comparable K, including key types encoding/json cannot use
// as object keys.
type mapEntry[K comparable, D any] struct {
	Key  K       `json:"key"`
	Host Host[D] `json:"host"`
}

func (m *Map[K, D]) MarshalJSON() ([]byte, error) {
	entries := make([]mapEntry[K, D], 0, len(m.items))
	for k, h := range m.items {
		entries = append(entries, mapEntry[K, D]{Key: k, Host: h})
	}
	return json.Marshal(entries)
}

func (m *Map[K, D]) UnmarshalJSON(data []byte) error {
	var entries []mapEntry[K, D]
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	m.items = make(map[K]Host[D], len(entries))
	for _, e := range entries {
		m.items[e.Key] = e.Host
	}
	return nil
}
