package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountRoundTrip(t *testing.T) {
	cases := []string{"0", "1", "1234.5678", "1.0000", "100", "0.0001", "123.0045"}
	for _, s := range cases {
		a, err := ParseAmount(s)
		require.NoErrorf(t, err, "parsing %q", s)
		got := a.String()
		switch s {
		case "1.0000":
			assert.Equal(t, "1", got)
		default:
			assert.Equal(t, s, got)
		}
	}
}

func TestParseAmountPadsShortDecimals(t *testing.T) {
	a, err := ParseAmount(".5")
	require.NoError(t, err)
	assert.Equal(t, "0.5", a.String())

	b, err := ParseAmount("1,5")
	require.NoError(t, err)
	assert.Equal(t, "1.5", b.String())
}

func TestParseAmountRejectsTwoSeparators(t *testing.T) {
	_, err := ParseAmount("1.2,3")
	require.Error(t, err)
}

func TestParseAmountRejectsTooManyDecimalDigits(t *testing.T) {
	_, err := ParseAmount("1.23456")
	require.ErrorIs(t, err, ErrMaxDecimal)
}

func TestParseAmountRejectsEmptyDecimal(t *testing.T) {
	_, err := ParseAmount("1.")
	require.ErrorIs(t, err, ErrInvalidNumber)
}

func TestParseAmountRejectsOverflow(t *testing.T) {
	_, err := ParseAmount("99999999999999999999")
	require.ErrorIs(t, err, ErrTooBig)
}

func TestCheckedSubUnderflow(t *testing.T) {
	a := Amount(100)
	_, ok := a.CheckedSub(Amount(200))
	assert.False(t, ok)
}

func TestAddOverflowPanics(t *testing.T) {
	assert.Panics(t, func() {
		Amount(^uint64(0)).Add(Amount(1))
	})
}
