package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCreateAddSub(t *testing.T) {
	m := NewMap[string, struct{}]()
	currency := newTestCurrencyID()

	require.NoError(t, m.Create("w1", currency, struct{}{}))
	require.ErrorIs(t, m.Create("w1", currency, struct{}{}), ErrAlreadyExists)

	require.NoError(t, m.Add("w1", Amount(1000)))
	h, ok := m.Get("w1")
	require.True(t, ok)
	assert.Equal(t, Amount(1000), h.Money.Amount)

	require.NoError(t, m.Sub("w1", Amount(400)))
	h, _ = m.Get("w1")
	assert.Equal(t, Amount(600), h.Money.Amount)

	_, err := ParseAmount("700")
	require.NoError(t, err)
	require.ErrorIs(t, m.Sub("w1", Amount(700)), ErrCannotSub)
}

func TestMapMissingKey(t *testing.T) {
	m := NewMap[string, struct{}]()
	require.ErrorIs(t, m.Add("missing", Amount(1)), ErrNotFound)
	require.ErrorIs(t, m.Sub("missing", Amount(1)), ErrNotFound)
	require.ErrorIs(t, m.Remove("missing"), ErrNotFound)
}

func TestMapRemoveDoesNotRedistribute(t *testing.T) {
	m := NewMap[string, struct{}]()
	currency := newTestCurrencyID()
	require.NoError(t, m.Create("w1", currency, struct{}{}))
	require.NoError(t, m.Add("w1", Amount(500)))
	require.NoError(t, m.Remove("w1"))
	assert.Equal(t, 0, m.Len())
}

func TestMapCloneIsIndependent(t *testing.T) {
	m := NewMap[string, struct{}]()
	currency := newTestCurrencyID()
	require.NoError(t, m.Create("w1", currency, struct{}{}))

	clone := m.Clone()
	require.NoError(t, clone.Add("w1", Amount(100)))

	orig, _ := m.Get("w1")
	cloned, _ := clone.Get("w1")
	assert.Equal(t, Amount(0), orig.Money.Amount)
	assert.Equal(t, Amount(100), cloned.Money.Amount)
}

func TestMapJSONRoundTrip(t *testing.T) {
	m := NewMap[string, struct{}]()
	currency := newTestCurrencyID()
	require.NoError(t, m.Create("w1", currency, struct{}{}))
	require.NoError(t, m.Add("w1", Amount(500)))

	data, err := json.Marshal(m)
	require.NoError(t, err)

	restored := NewMap[string, struct{}]()
	require.NoError(t, json.Unmarshal(data, restored))

	h, ok := restored.Get("w1")
	require.True(t, ok)
	assert.Equal(t, Amount(500), h.Money.Amount)
	assert.Equal(t, currency, h.Money.CurrencyID)
}
