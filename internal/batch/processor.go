package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"rpgm-asset-tool/internal/assets"
	"rpgm-asset-tool/internal/crypto"
	"rpgm-asset-tool/internal/preview"
)

// Mode selects the transform direction for a batch run.
type Mode int

const (
	Encrypt Mode = iota
	Decrypt
)

// Config holds all shared resources for a batch run.
type Config struct {
	Mode      Mode
	OutputDir string
	Engine    assets.Engine
	Key       crypto.Key
	// HaveKey marks Key as explicitly supplied. When false, decryption
	// re-derives the key from each file's own bytes, which keeps
	// mixed-key directories working.
	HaveKey   bool
	Workers   int
	ThumbSize int // when > 0, write WebP thumbnails of decrypted PNGs
}

// Result holds the outcome of processing one file. A failed file never
// aborts the rest of the batch.
type Result struct {
	Source  string
	Output  string
	Key     string
	Success bool
	Error   string
}

// Run processes all files using a worker pool. Each file is an independent
// read-transform-write with no shared state beyond the read-only config,
// so workers need no locking.
func Run(cfg Config, files []string) []Result {
	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	fileChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				results[idx] = processFile(cfg, files[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range files {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)

	return results
}

func processFile(cfg Config, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Source: path, Error: err.Error()}
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if cfg.Mode == Decrypt {
		return decryptFile(cfg, path, ext, data)
	}
	return encryptFile(cfg, path, ext, data)
}

func decryptFile(cfg Config, path, ext string, data []byte) Result {
	kind, ok := assets.KindForObfuscated(ext)
	if !ok {
		return Result{Source: path, Error: fmt.Sprintf("extension %q is not decryptable", ext)}
	}

	key := cfg.Key
	if !cfg.HaveKey {
		var err error
		key, err = crypto.RecoverKey(data, kind)
		if err != nil {
			return Result{Source: path, Error: err.Error()}
		}
	}

	plain, err := crypto.Decrypt(data, key)
	if err != nil {
		return Result{Source: path, Key: key.Hex(), Error: err.Error()}
	}
	if err := crypto.ValidateSignature(plain, kind); err != nil {
		return Result{Source: path, Key: key.Hex(), Error: err.Error()}
	}

	out := outputPath(cfg.OutputDir, path, assets.PlainExt(kind))
	if err := writeFile(out, plain); err != nil {
		return Result{Source: path, Key: key.Hex(), Error: err.Error()}
	}

	if kind == crypto.PNG && cfg.ThumbSize > 0 {
		name := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out)) + ".webp"
		thumb := filepath.Join(cfg.OutputDir, "thumbs", name)
		if err := preview.WriteThumb(plain, thumb, cfg.ThumbSize); err != nil {
			return Result{Source: path, Output: out, Key: key.Hex(), Error: err.Error()}
		}
	}

	return Result{Source: path, Output: out, Key: key.Hex(), Success: true}
}

func encryptFile(cfg Config, path, ext string, data []byte) Result {
	kind, ok := assets.KindForPlain(ext)
	if !ok {
		return Result{Source: path, Error: fmt.Sprintf("extension %q is not encryptable", ext)}
	}

	obf := crypto.Encrypt(data, cfg.Key)
	out := outputPath(cfg.OutputDir, path, assets.ObfuscatedExt(kind, cfg.Engine))
	if err := writeFile(out, obf); err != nil {
		return Result{Source: path, Error: err.Error()}
	}

	return Result{Source: path, Output: out, Success: true}
}

func outputPath(dir, src, newExt string) string {
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + "." + newExt
	return filepath.Join(dir, base)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
