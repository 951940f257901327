package object

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// HashLen is the length of a hex-encoded SHA-1 object id.
const HashLen = 40

var (
	// ErrMalformedHash is returned when a reference string is not a
	// well-formed object id.
	ErrMalformedHash = errors.New("malformed object hash")
	// ErrNotFound is returned when the store holds no object for a hash.
	ErrNotFound = errors.New("object not found")
)

// HashError records a reference string that failed validation.
type HashError struct {
	Value  string
	Reason string
}

func (e *HashError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q: %s", ErrMalformedHash, e.Value, e.Reason)
}

func (e *HashError) Unwrap() error {
	return ErrMalformedHash
}

// ParseHash validates s as a hex object id and returns it lowercased.
// Upper-case digits are accepted.
func ParseHash(s string) (Hash, error) {
	if len(s) != HashLen {
		return "", &HashError{Value: s, Reason: fmt.Sprintf("want %d hex characters, got %d", HashLen, len(s))}
	}
	lower := strings.ToLower(s)
	if _, err := hex.DecodeString(lower); err != nil {
		return "", &HashError{Value: s, Reason: "not hexadecimal"}
	}
	return Hash(lower), nil
}

// Short returns the first n characters of h, or h itself when shorter.
func (h Hash) Short(n int) string {
	if n <= 0 || len(h) <= n {
		return string(h)
	}
	return string(h[:n])
}

func (h Hash) String() string {
	return string(h)
}
