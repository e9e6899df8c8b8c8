package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// KeyLength is the size of the encryption key in bytes. Keys travel
// externally as 2*KeyLength lowercase hex characters.
const KeyLength = 16

// ErrInvalidKeyFormat reports a key string or byte slice that fails the
// length or encoding checks.
var ErrInvalidKeyFormat = errors.New("invalid key format")

// Key is the XOR key applied to the masked prefix of an asset. It is a
// value type: set once per run and passed into every transform, never
// mutated in place.
type Key [KeyLength]byte

// ParseKey decodes a hex key string. The string must be exactly
// 2*KeyLength hex characters.
func ParseKey(s string) (Key, error) {
	var key Key
	raw, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("crypto: key %q is not valid hex: %w", s, ErrInvalidKeyFormat)
	}
	if len(raw) != KeyLength {
		return key, fmt.Errorf("crypto: key decodes to %d bytes, want %d: %w", len(raw), KeyLength, ErrInvalidKeyFormat)
	}
	copy(key[:], raw)
	return key, nil
}

// KeyFromBytes builds a Key from raw bytes of exactly KeyLength.
func KeyFromBytes(b []byte) (Key, error) {
	var key Key
	if len(b) != KeyLength {
		return key, fmt.Errorf("crypto: key is %d bytes, want %d: %w", len(b), KeyLength, ErrInvalidKeyFormat)
	}
	copy(key[:], b)
	return key, nil
}

// Hex returns the lowercase hex form of the key. ParseKey(k.Hex()) == k.
func (k Key) Hex() string {
	return hex.EncodeToString(k[:])
}
