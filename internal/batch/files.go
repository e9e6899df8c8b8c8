package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Collect returns the regular files directly inside dir whose extension
// (without the dot) appears in exts. The scan is deliberately
// non-recursive: assets live flat inside img/ and audio/ folders, and
// callers point the tool at one folder at a time.
func Collect(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: read dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if slices.Contains(exts, ext) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
