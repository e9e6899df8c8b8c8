package crypto

import (
	"bytes"
	"errors"
	"fmt"
)

// HeaderLength is the number of leading plain-file bytes masked by the key.
// Bytes past this offset pass through the transform unmodified.
const HeaderLength = 16

// MagicHeader is the constant tag prepended to every encrypted asset:
// "RPGMV" plus a version marker. It identifies the obfuscation scheme and
// is distinct from the media signature of the underlying file.
var MagicHeader = []byte{
	0x52, 0x50, 0x47, 0x4D, 0x56, 0x00, 0x00, 0x00,
	0x00, 0x03, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// ErrMalformedHeader reports a buffer that is shorter than MagicHeader or
// does not start with it.
var ErrMalformedHeader = errors.New("malformed header")

// Encrypt masks the first min(HeaderLength, len(plain)) bytes of plain with
// the key and prepends MagicHeader:
//
//	out = MagicHeader ++ (plain[:n] XOR key) ++ plain[n:]
//
// The key repeats cyclically should HeaderLength ever exceed KeyLength.
// The input buffer is never modified.
func Encrypt(plain []byte, key Key) []byte {
	out := make([]byte, 0, len(MagicHeader)+len(plain))
	out = append(out, MagicHeader...)
	out = append(out, plain...)
	xorPrefix(out[len(MagicHeader):], key)
	return out
}

// Decrypt strips MagicHeader and unmasks the prefix, returning a fresh
// buffer of len(obf)-len(MagicHeader) bytes. It fails with
// ErrMalformedHeader when the buffer is too short or the magic bytes do
// not match; it cannot detect a wrong key (XOR with any key yields a
// buffer of the right shape), so callers should follow up with
// ValidateSignature.
func Decrypt(obf []byte, key Key) ([]byte, error) {
	if len(obf) < len(MagicHeader) {
		return nil, fmt.Errorf("crypto: %d-byte buffer is shorter than the %d-byte magic: %w",
			len(obf), len(MagicHeader), ErrMalformedHeader)
	}
	if !bytes.Equal(obf[:len(MagicHeader)], MagicHeader) {
		return nil, fmt.Errorf("crypto: magic bytes mismatch: %w", ErrMalformedHeader)
	}

	plain := make([]byte, len(obf)-len(MagicHeader))
	copy(plain, obf[len(MagicHeader):])
	xorPrefix(plain, key)
	return plain, nil
}

// xorPrefix applies the repeating key to the first min(HeaderLength,
// len(buf)) bytes in place. XOR is its own inverse, so the same routine
// serves both directions.
func xorPrefix(buf []byte, key Key) {
	n := min(HeaderLength, len(buf))
	for i := 0; i < n; i++ {
		buf[i] ^= key[i%KeyLength]
	}
}
