package crypto

import (
	"bytes"
	"errors"
	"fmt"
)

// FileKind is the media type of an asset. It determines the signature a
// decrypted buffer must carry and the extension spellings used on disk.
type FileKind int

const (
	PNG FileKind = iota
	OGG
	M4A
)

func (k FileKind) String() string {
	switch k {
	case PNG:
		return "PNG"
	case OGG:
		return "OGG"
	case M4A:
		return "M4A"
	}
	return fmt.Sprintf("FileKind(%d)", int(k))
}

var (
	pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	oggSignature = []byte("OggS")
	// M4A files start with a variable 4-byte box size; the ftyp tag and
	// brand at offset 4 are the stable part. Checking all 8 bytes catches
	// wrong keys that a bare "ftyp" match would let through.
	m4aSignature = []byte("ftypM4A ")
)

const m4aSignatureOffset = 4

// ErrInvalidSignature reports decrypted content whose media signature does
// not match its declared kind — the canonical symptom of a wrong key.
var ErrInvalidSignature = errors.New("invalid media signature")

// SignatureError carries the kind whose signature was expected.
type SignatureError struct {
	Kind FileKind
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("crypto: decrypted data has no valid %s signature; the key is likely wrong", e.Kind)
}

func (e *SignatureError) Unwrap() error { return ErrInvalidSignature }

// ValidateSignature checks that decrypted begins with the media signature
// of kind. The magic header alone proves nothing about the key — any key
// produces a magic-prefixed buffer of the right length — so this check is
// the only reliable wrong-key detector at decrypt time.
func ValidateSignature(decrypted []byte, kind FileKind) error {
	switch kind {
	case PNG:
		if bytes.HasPrefix(decrypted, pngSignature) {
			return nil
		}
	case OGG:
		if bytes.HasPrefix(decrypted, oggSignature) {
			return nil
		}
	case M4A:
		end := m4aSignatureOffset + len(m4aSignature)
		if len(decrypted) >= end && bytes.Equal(decrypted[m4aSignatureOffset:end], m4aSignature) {
			return nil
		}
	}
	return &SignatureError{Kind: kind}
}
