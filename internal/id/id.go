// Package id implements the fixed-width random token identifier scheme used
// for every catalogue and ledger entity. It mirrors tiny_id::TinyId<const N: usize>
// from the original implementation, using a Go generic type parameter as the
// stand-in for the per-kind marker type instead of a const-generic length.
package id

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const length = 4

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Kind marks which entity a Token identifies. Each catalogue/ledger entity
// declares its own empty Kind type so that, say, a WalletId and a CurrencyId
// are distinct Go types even though both are 4-byte tokens underneath.
type Kind interface {
	kindName() string
}

// Token is an opaque 4-character alphanumeric identifier, unique per entity
// kind, never recycled. The zero value is not a valid token.
type Token[K Kind] [length]byte

// New mints a fresh random token.
func New[K Kind]() Token[K] {
	var t Token[K]
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("id: failed to read randomness: %v", err))
	}
	for i, b := range buf {
		t[i] = alphabet[int(b)%len(alphabet)]
	}
	return t
}

// Parse validates and constructs a Token from its textual form.
func Parse[K Kind](s string) (Token[K], error) {
	var t Token[K]
	if len(s) != length {
		return t, &ParseError{Reason: "invalid_length", Length: len(s)}
	}
	for i := 0; i < length; i++ {
		c := s[i]
		if !isAlphanumeric(c) {
			return t, &ParseError{Reason: "invalid"}
		}
		t[i] = c
	}
	return t, nil
}

// MustParse panics on invalid input; intended for test fixtures and literals.
func MustParse[K Kind](s string) Token[K] {
	t, err := Parse[K](s)
	if err != nil {
		panic(err)
	}
	return t
}

func isAlphanumeric(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	default:
		return false
	}
}

func (t Token[K]) String() string {
	return string(t[:])
}

func (t Token[K]) IsZero() bool {
	return t == Token[K]{}
}

func (t Token[K]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Token[K]) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse[K](s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText/UnmarshalText let a Token serve as a JSON object key: Token is
// a [4]byte array, a kind encoding/json otherwise refuses as a map key
// unless the key type implements encoding.TextMarshaler.
func (t Token[K]) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Token[K]) UnmarshalText(data []byte) error {
	parsed, err := Parse[K](string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer so Tokens can be bound directly in sqlx queries.
func (t Token[K]) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.String(), nil
}

// Scan implements sql.Scanner so Tokens can be read directly out of sqlx rows.
func (t *Token[K]) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Token[K]{}
		return nil
	case string:
		parsed, err := Parse[K](v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := Parse[K](string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("id: cannot scan %T into Token", src)
	}
}

// ParseError reports why a string failed to parse as a Token.
type ParseError struct {
	Reason string
	Length int
}

func (e *ParseError) Error() string {
	if e.Reason == "invalid_length" {
		return fmt.Sprintf("id: string should be of length %d, got %d", length, e.Length)
	}
	return "id: invalid"
}
