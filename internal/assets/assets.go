// Package assets maps file extensions to media kinds for the two engine
// variants. The variant only affects extension spelling, never the
// transform itself.
package assets

import (
	"fmt"
	"strings"

	"rpgm-asset-tool/internal/crypto"
)

// Engine selects the extension-naming convention of an engine variant.
type Engine int

const (
	MV Engine = iota
	MZ
)

func (e Engine) String() string {
	if e == MZ {
		return "mz"
	}
	return "mv"
}

// ParseEngine accepts "mv" or "mz" (case-insensitive).
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(s) {
	case "mv":
		return MV, nil
	case "mz":
		return MZ, nil
	}
	return MV, fmt.Errorf("assets: unknown engine %q (want mv or mz)", s)
}

const (
	pngExt = "png"
	oggExt = "ogg"
	m4aExt = "m4a"

	mvPNGExt = "rpgmvp"
	mvOGGExt = "rpgmvo"
	mvM4AExt = "rpgmvm"

	mzPNGExt = "png_"
	mzOGGExt = "ogg_"
	mzM4AExt = "m4a_"
)

// EncryptExtensions lists the plain extensions accepted for encryption.
var EncryptExtensions = []string{pngExt, oggExt, m4aExt}

// DecryptExtensions lists the obfuscated extensions of both variants.
var DecryptExtensions = []string{
	mvPNGExt, mvOGGExt, mvM4AExt,
	mzPNGExt, mzOGGExt, mzM4AExt,
}

// KindForPlain maps a plain extension (without dot) onto its kind.
func KindForPlain(ext string) (crypto.FileKind, bool) {
	switch ext {
	case pngExt:
		return crypto.PNG, true
	case oggExt:
		return crypto.OGG, true
	case m4aExt:
		return crypto.M4A, true
	}
	return 0, false
}

// KindForObfuscated maps an obfuscated extension of either variant onto
// its kind.
func KindForObfuscated(ext string) (crypto.FileKind, bool) {
	switch ext {
	case mvPNGExt, mzPNGExt:
		return crypto.PNG, true
	case mvOGGExt, mzOGGExt:
		return crypto.OGG, true
	case mvM4AExt, mzM4AExt:
		return crypto.M4A, true
	}
	return 0, false
}

// PlainExt returns the canonical plain extension for kind.
func PlainExt(kind crypto.FileKind) string {
	switch kind {
	case crypto.OGG:
		return oggExt
	case crypto.M4A:
		return m4aExt
	}
	return pngExt
}

// ObfuscatedExt returns the obfuscated extension for kind under engine.
func ObfuscatedExt(kind crypto.FileKind, engine Engine) string {
	if engine == MZ {
		switch kind {
		case crypto.OGG:
			return mzOGGExt
		case crypto.M4A:
			return mzM4AExt
		default:
			return mzPNGExt
		}
	}
	switch kind {
	case crypto.OGG:
		return mvOGGExt
	case crypto.M4A:
		return mvM4AExt
	default:
		return mvPNGExt
	}
}
