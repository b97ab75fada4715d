// Package aid handles Application Identifiers (AIDs) as used by card packages
// and applets.
//
// An AID is 5 to 16 bytes long. Its first 5 bytes are the RID (Registered
// application provider IDentifier), which a package shares with every applet
// it contains.
package aid

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// RIDLen is the length of the registered identifier prefix.
	RIDLen = 5
	// MinLen is the minimal AID length.
	MinLen = 5
	// MaxLen is the maximal AID length.
	MaxLen = 16
)

var (
	ErrOddLength = errors.New("odd number of hex characters")
	ErrLength    = errors.New("AID must be between 5 and 16 bytes")
)

// AID is an application or package identifier.
type AID []byte

// Parse normalizes a free-form AID string and decodes it.
//
// Accepted forms include "0102030405", "01:02:03:04:05",
// "0x01 0x02 0x03 0x04 0x05" and mixes of them. The result must be between
// MinLen and MaxLen bytes.
func Parse(s string) (AID, error) {
	b, err := DecodeHex(Normalize(s))
	if err != nil {
		return nil, err
	}
	if len(b) < MinLen || len(b) > MaxLen {
		return nil, fmt.Errorf("%w: %s (%d)", ErrLength, EncodeHex(b), len(b))
	}
	return AID(b), nil
}

// Normalize strips separators and "0x" prefixes from a free-form hex string
// and lowercases it.
func Normalize(s string) string {
	s = strings.ToLower(s)
	r := strings.NewReplacer(" ", "", ":", "", "0x", "", "\n", "", "\t", "", ";", "")
	return r.Replace(s)
}

// DecodeHex decodes an even-length hex string.
func DecodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: %s", ErrOddLength, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not a hex string %q: %w", s, err)
	}
	return b, nil
}

// EncodeHex returns the uppercase hex form of b.
func EncodeHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// String returns the uppercase hex form of the AID.
func (a AID) String() string {
	return EncodeHex(a)
}

// RID returns the first RIDLen bytes of the AID, or the whole AID if it is
// shorter.
func (a AID) RID() []byte {
	if len(a) < RIDLen {
		return bytes.Clone(a)
	}
	return bytes.Clone(a[:RIDLen])
}

// SameRID reports whether a and b share the same RID.
func SameRID(a, b AID) bool {
	return bytes.Equal(a.RID(), b.RID())
}

// Append returns a new AID with suffix appended. a is left unchanged.
func (a AID) Append(suffix ...byte) AID {
	out := make(AID, 0, len(a)+len(suffix))
	out = append(out, a...)
	return append(out, suffix...)
}

// Equal reports whether a and b hold the same bytes.
func (a AID) Equal(b AID) bool {
	return bytes.Equal(a, b)
}

// ConverterString renders the AID the way the converter command line expects
// it: "0x01:0x02:0x03".
func (a AID) ConverterString() string {
	parts := make([]string, len(a))
	for i, b := range a {
		parts[i] = fmt.Sprintf("0x%02X", b)
	}
	return strings.Join(parts, ":")
}
