package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Known-plaintext windows per kind: the byte ranges of a genuine plain
// file that are constant across real files. Key bytes are recovered only
// where the plaintext is actually known; anything outside the window would
// be a guess.
//
// PNG covers the full masked prefix (magic, IHDR chunk length 13, "IHDR"),
// so a genuine PNG sample recovers the entire key. OGG covers the page
// capture pattern, stream version (always 0) and the beginning-of-stream
// flag. M4A skips the variable box-size bytes.
var (
	pngKnownPlain = []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	}
	oggKnownPlain = []byte{0x4F, 0x67, 0x67, 0x53, 0x00, 0x02}
)

// knownPlaintext returns the constant plaintext window for kind and the
// offset at which it starts.
func (k FileKind) knownPlaintext() (plain []byte, offset int) {
	switch k {
	case PNG:
		return pngKnownPlain, 0
	case OGG:
		return oggKnownPlain, 0
	case M4A:
		return m4aSignature, m4aSignatureOffset
	}
	return nil, 0
}

// RecoverKey derives the key from an encrypted asset by XORing its masked
// prefix against the known plaintext of kind. Key bytes outside the
// known-plaintext window (or past the end of a short sample) are left at
// zero rather than guessed; callers needing a full key should use a PNG
// sample, whose window spans the whole prefix. The input is not modified.
func RecoverKey(obf []byte, kind FileKind) (Key, error) {
	var key Key
	if len(obf) < len(MagicHeader) {
		return key, fmt.Errorf("crypto: %d-byte sample is shorter than the %d-byte magic: %w",
			len(obf), len(MagicHeader), ErrMalformedHeader)
	}
	if !bytes.Equal(obf[:len(MagicHeader)], MagicHeader) {
		return key, fmt.Errorf("crypto: sample magic bytes mismatch: %w", ErrMalformedHeader)
	}

	masked := obf[len(MagicHeader):]
	plain, offset := kind.knownPlaintext()
	n := min(HeaderLength, KeyLength, len(masked))
	for i := offset; i < n && i-offset < len(plain); i++ {
		key[i] = masked[i] ^ plain[i-offset]
	}
	return key, nil
}

// ErrKeyFieldNotFound reports that the encryptionKey field could not be
// located in the supplied configuration text.
var ErrKeyFieldNotFound = errors.New("encryptionKey field not found")

// KeyFromSystemJSON extracts the key from the text of a System.json file,
// which stores it in the open as a top-level "encryptionKey" hex string.
// A missing or non-string field (including unparsable JSON) yields
// ErrKeyFieldNotFound; a present field with bad hex yields
// ErrInvalidKeyFormat.
func KeyFromSystemJSON(text string) (Key, error) {
	var system struct {
		EncryptionKey *string `json:"encryptionKey"`
	}
	if err := json.Unmarshal([]byte(text), &system); err != nil {
		return Key{}, fmt.Errorf("crypto: configuration text is not valid JSON: %w", ErrKeyFieldNotFound)
	}
	if system.EncryptionKey == nil {
		return Key{}, fmt.Errorf("crypto: %w", ErrKeyFieldNotFound)
	}
	return ParseKey(*system.EncryptionKey)
}
