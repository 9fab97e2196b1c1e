package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes in a Hash.
const HashSize = sha256.Size

// Hash is the SHA-256 digest identifying a stored object. The same value is
// used as map key, as the object's filename (lowercase hex), and as the
// identifier exchanged between stores.
type Hash [HashSize]byte

// ZeroHash is the absent digest.
var ZeroHash Hash

// ParseHash parses a 64-character hex-encoded digest.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != hex.EncodedLen(HashSize) {
		return h, fmt.Errorf("parse hash %q: wrong length %d", s, len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return ZeroHash, fmt.Errorf("parse hash %q: %w", s, err)
	}
	return h, nil
}

// IsHex reports whether s consists only of hex digits.
func IsHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return s != ""
}

// String returns the lowercase hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 10 hex characters of h.
func (h Hash) Short() string {
	return h.String()[:10]
}

// IsZero reports whether h is the absent digest.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// MarshalText encodes h as hex so it can be used in JSON maps and values.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes a hex digest.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HashObject computes the digest of kind || 0x00 || data without storing
// anything.
func HashObject(kind Kind, data []byte) Hash {
	d := sha256.New()
	d.Write([]byte(kind))
	d.Write([]byte{0})
	d.Write(data)
	var h Hash
	copy(h[:], d.Sum(nil))
	return h
}
