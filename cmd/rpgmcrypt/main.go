package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rpgm-asset-tool/internal/assets"
	"rpgm-asset-tool/internal/batch"
	"rpgm-asset-tool/internal/config"
	"rpgm-asset-tool/internal/crypto"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "encrypt":
		err = runBatch(batch.Encrypt, os.Args[2:])
	case "decrypt":
		err = runBatch(batch.Decrypt, os.Args[2:])
	case "extract-key":
		err = runExtractKey(os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Decrypt/encrypt RPG Maker MV/MZ audio and image assets.

Usage:
  rpgmcrypt encrypt     -key HEX -engine mv|mz [flags]
  rpgmcrypt decrypt     [flags]
  rpgmcrypt extract-key -file PATH

Encrypt maps .png/.ogg/.m4a to .rpgmvp/.rpgmvo/.rpgmvm (mv) or
.png_/.ogg_/.m4a_ (mz). Decrypt maps them back; when no -key is given it
reads the key from the game's System.json or recovers it from each file.
Extract-key prints the key found in a System.json or encrypted asset.

Flags:
  -config PATH   JSON config file (flags override it)
  -key HEX       Encryption key as 32 hex characters
  -engine NAME   Game engine, mv or mz (required for encrypt)
  -in DIR        Input directory (default: current directory)
  -out DIR       Output directory (default: input directory)
  -file PATH     Process a single file instead of a directory
  -system PATH   System.json to read the key from
  -workers N     Worker goroutines (default: NumCPU)
  -thumbs N      Write N-pixel WebP thumbnails of decrypted PNGs
`)
}

func parseFlags(name string, args []string) (config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config.json file")
	key := fs.String("key", "", "Encryption key as 32 hex characters")
	engine := fs.String("engine", "", "Game engine: mv or mz")
	inputDir := fs.String("in", "", "Input directory (default: current directory)")
	outputDir := fs.String("out", "", "Output directory (default: input directory)")
	file := fs.String("file", "", "Process a single file instead of a directory")
	systemJSON := fs.String("system", "", "Path to System.json for key lookup")
	workers := fs.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	thumbs := fs.Int("thumbs", 0, "WebP thumbnail size for decrypted PNGs (0 = off)")
	fs.Parse(args)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return cfg, err
		}
	}

	cfg.Resolve(config.Flags{
		InputDir:   *inputDir,
		OutputDir:  *outputDir,
		File:       *file,
		SystemJSON: *systemJSON,
		Key:        *key,
		Engine:     *engine,
		Workers:    *workers,
		ThumbSize:  *thumbs,
	})
	return cfg, nil
}

func runBatch(mode batch.Mode, args []string) error {
	name := "encrypt"
	if mode == batch.Decrypt {
		name = "decrypt"
	}
	cfg, err := parseFlags(name, args)
	if err != nil {
		return err
	}

	bcfg := batch.Config{
		Mode:      mode,
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
		ThumbSize: cfg.ThumbSize,
	}

	if cfg.Key != "" {
		bcfg.Key, err = crypto.ParseKey(cfg.Key)
		if err != nil {
			return err
		}
		bcfg.HaveKey = true
	} else if mode == batch.Encrypt {
		return fmt.Errorf("encrypt requires -key")
	} else if path := cfg.FindSystemJSON(); path != "" {
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		key, err := crypto.KeyFromSystemJSON(string(text))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s: %v; recovering the key per file instead\n", path, err)
		} else {
			bcfg.Key = key
			bcfg.HaveKey = true
			fmt.Printf("Key from %s: %s\n", path, key.Hex())
		}
	}

	if mode == batch.Encrypt {
		if cfg.Engine == "" {
			return fmt.Errorf("encrypt requires -engine (mv or mz)")
		}
		bcfg.Engine, err = assets.ParseEngine(cfg.Engine)
		if err != nil {
			return err
		}
	}

	allowed := assets.EncryptExtensions
	if mode == batch.Decrypt {
		allowed = assets.DecryptExtensions
	}

	var files []string
	if cfg.File != "" {
		ext := strings.TrimPrefix(filepath.Ext(cfg.File), ".")
		kindOK := false
		for _, a := range allowed {
			if ext == a {
				kindOK = true
				break
			}
		}
		if !kindOK {
			return fmt.Errorf("%s: extension %q cannot be %sed", cfg.File, ext, name)
		}
		files = []string{cfg.File}
	} else {
		files, err = batch.Collect(cfg.InputDir, allowed)
		if err != nil {
			return err
		}
	}

	if len(files) == 0 {
		fmt.Println("No files to process.")
		return nil
	}

	fmt.Printf("RPG Maker asset %s\n", name)
	fmt.Printf("Files: %d, Workers: %d\n", len(files), bcfg.Workers)
	fmt.Printf("Output: %s\n", bcfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(bcfg, files)
	elapsed := time.Since(start)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.2fs\n", elapsed.Seconds())

	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}
	fmt.Printf("Processed: %d/%d\n", success, len(files))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(errors), 20)
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", filepath.Base(e.Source), e.Error)
		}
	}

	manifestPath := filepath.Join(bcfg.OutputDir, "manifest.json")
	os.MkdirAll(bcfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func runExtractKey(args []string) error {
	cfg, err := parseFlags("extract-key", args)
	if err != nil {
		return err
	}
	if cfg.File == "" {
		return fmt.Errorf("extract-key requires -file")
	}

	var key crypto.Key
	if filepath.Base(cfg.File) == "System.json" {
		text, err := os.ReadFile(cfg.File)
		if err != nil {
			return err
		}
		key, err = crypto.KeyFromSystemJSON(string(text))
		if err != nil {
			return err
		}
	} else {
		ext := strings.TrimPrefix(filepath.Ext(cfg.File), ".")
		kind, ok := assets.KindForObfuscated(ext)
		if !ok {
			return fmt.Errorf("key can only be extracted from a System.json file or an encrypted asset")
		}
		data, err := os.ReadFile(cfg.File)
		if err != nil {
			return err
		}
		key, err = crypto.RecoverKey(data, kind)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Encryption key: %s\n", key.Hex())
	return nil
}
