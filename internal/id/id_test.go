package id

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	w := NewWalletID()
	parsed, err := ParseWalletID(w.String())
	require.NoError(t, err)
	assert.Equal(t, w, parsed)
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := ParseWalletID("abc")
	require.Error(t, err)

	_, err = ParseWalletID("abcde")
	require.Error(t, err)
}

func TestParseRejectsNonAlphanumeric(t *testing.T) {
	_, err := ParseWalletID("ab-!")
	require.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	c := NewCurrencyID()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"`+c.String()+`"`, string(data))

	var back CurrencyID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c, back)
}

func TestMapKeyRoundTrip(t *testing.T) {
	w := NewWalletID()
	m := map[WalletID]int{w: 7}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back map[WalletID]int
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 7, back[w])
}

func TestRawStringParsesAsAnyKind(t *testing.T) {
	w := NewWalletID()
	var a ActorID
	// Token[walletKind] and Token[actorKind] are distinct types; this just
	// documents that a raw string round-trips into any kind's Parse.
	a, err := ParseActorID(w.String())
	require.NoError(t, err)
	assert.Equal(t, w.String(), a.String())
}
