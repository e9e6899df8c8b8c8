package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rpgm-asset-tool/internal/assets"
	"rpgm-asset-tool/internal/crypto"
)

// Dumps the header structure of one encrypted asset: magic validity,
// inferred kind, masked prefix, and the key recoverable from it.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inspectasset <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File: %s (%d bytes)\n", path, len(data))

	if len(data) < len(crypto.MagicHeader) {
		fmt.Println("Magic: missing (file shorter than header)")
		os.Exit(1)
	}
	if bytes.Equal(data[:len(crypto.MagicHeader)], crypto.MagicHeader) {
		fmt.Println("Magic: ok")
	} else {
		fmt.Printf("Magic: MISMATCH, got % X\n", data[:len(crypto.MagicHeader)])
		os.Exit(1)
	}

	body := data[len(crypto.MagicHeader):]
	n := min(crypto.HeaderLength, len(body))
	fmt.Printf("Masked prefix: %s\n", hex.EncodeToString(body[:n]))

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	kind, ok := assets.KindForObfuscated(ext)
	if !ok {
		fmt.Printf("Kind: unknown extension %q, assuming PNG for key recovery\n", ext)
		kind = crypto.PNG
	} else {
		fmt.Printf("Kind: %s (.%s -> .%s)\n", kind, ext, assets.PlainExt(kind))
	}

	key, err := crypto.RecoverKey(data, kind)
	if err != nil {
		fmt.Printf("Key recovery: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recovered key: %s\n", key.Hex())

	plain, err := crypto.Decrypt(data, key)
	if err == nil {
		if err := crypto.ValidateSignature(plain, kind); err == nil {
			fmt.Println("Signature check with recovered key: ok")
		} else {
			fmt.Printf("Signature check with recovered key: %v\n", err)
		}
	}
}
