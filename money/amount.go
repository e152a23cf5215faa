// Package money implements the fixed-point Amount type and the generic
// monetary map used to hold wallet and debt balances. It is pure: no I/O,
// no knowledge of storage or transport. Grounded in
// original_source/monee/monee_core/src/amount.rs and
// original_source/monee/monee_core/src/snapshot/money.rs.
package money

import (
	"errors"
	"strings"
)

// multiplier scales a decimal amount into its integer 10^-4 unit representation.
const multiplier = 10000

// Amount is a non-negative fixed-point number with exactly 4 decimal places,
// stored as a 64-bit unsigned integer of 10^-4 units. Addition never
// saturates: an overflowing Add indicates a programmer error and panics,
// it is not a value a caller is expected to handle. Subtraction is checked.
type Amount uint64

// Zero is the additive identity.
const Zero Amount = 0

// Add returns a + b. Panics on overflow: per spec this can only happen if a
// caller accumulates amounts far beyond anything a real ledger would hold,
// which is treated as a programmer error rather than a recoverable one.
func (a Amount) Add(b Amount) Amount {
	sum := uint64(a) + uint64(b)
	if sum < uint64(a) {
		panic("money: amount overflow")
	}
	return Amount(sum)
}

// CheckedSub returns a - b and true, or (0, false) if the result would be negative.
func (a Amount) CheckedSub(b Amount) (Amount, bool) {
	if uint64(b) > uint64(a) {
		return 0, false
	}
	return a - b, true
}

func (a Amount) IsZero() bool { return a == 0 }

func (a Amount) Compare(b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Errors returned by ParseAmount.
var (
	ErrTooBig         = errors.New("money: amount too big")
	ErrInvalidNumber  = errors.New("money: invalid number")
	ErrInvalidDecimal = errors.New("money: invalid decimal part")
	ErrMaxDecimal     = errors.New("money: at most 4 decimal digits are allowed")
)

// ParseAmount parses "[integer]([.,]decimal)?": both '.' and ',' are accepted
// decimal separators, at most one is allowed, and at most 4 decimal digits
// are allowed. A decimal part shorter than 4 digits is right-padded with
// implicit zeros (e.g. ".5" is 0.5000, not 0.0005).
func ParseAmount(s string) (Amount, error) {
	dotIdx := strings.IndexByte(s, '.')
	commaIdx := strings.IndexByte(s, ',')

	var sepIdx int
	switch {
	case dotIdx >= 0 && commaIdx >= 0:
		return 0, ErrInvalidDecimal
	case dotIdx >= 0:
		sepIdx = dotIdx
	case commaIdx >= 0:
		sepIdx = commaIdx
	default:
		sepIdx = -1
	}

	var integerPart, decimalPart string
	if sepIdx < 0 {
		integerPart = s
	} else {
		integerPart = s[:sepIdx]
		decimalPart = s[sepIdx+1:]
		if strings.ContainsAny(decimalPart, ".,") {
			return 0, ErrInvalidDecimal
		}
	}

	integerValue, err := parseDigits(integerPart)
	if err != nil {
		return 0, err
	}

	scaled := integerValue * multiplier
	if integerValue != 0 && scaled/multiplier != integerValue {
		return 0, ErrTooBig
	}

	if sepIdx < 0 {
		return Amount(scaled), nil
	}

	if decimalPart == "" {
		return 0, ErrInvalidNumber
	}
	if len(decimalPart) > 4 {
		return 0, ErrMaxDecimal
	}

	decimalValue, err := parseDigits(decimalPart)
	if err != nil {
		return 0, ErrInvalidDecimal
	}
	for i := len(decimalPart); i < 4; i++ {
		decimalValue *= 10
	}

	total := scaled + decimalValue
	if total < scaled {
		return 0, ErrTooBig
	}
	return Amount(total), nil
}

func parseDigits(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, ErrInvalidNumber
		}
		d := uint64(c - '0')
		if v > (^uint64(0)-d)/10 {
			return 0, ErrTooBig
		}
		v = v*10 + d
	}
	return v, nil
}

// String renders the amount, dropping trailing zeros but keeping interior
// ones, e.g. 1230045 -> "123.0045", 10000 -> "1", 0 -> "0".
func (a Amount) String() string {
	integer := uint64(a) / multiplier
	remainder := uint64(a) % multiplier

	var b strings.Builder
	writeUint(&b, integer)
	if remainder == 0 {
		return b.String()
	}

	b.WriteByte('.')
	for remainder != 0 {
		remainder *= 10
		digit := remainder / multiplier
		b.WriteByte(byte('0' + digit))
		remainder %= multiplier
	}
	return b.String()
}

func writeUint(b *strings.Builder, v uint64) {
	if v == 0 {
		b.WriteByte('0')
		return
	}
	var digits [20]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	b.Write(digits[i:])
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	s = strings.Trim(s, `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
