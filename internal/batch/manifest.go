package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one processed file in the output manifest.
type ManifestEntry struct {
	Source string `json:"source"`
	Output string `json:"output,omitempty"`
	Key    string `json:"key,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json to the output directory.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		entries[i] = ManifestEntry{
			Source: r.Source,
			Output: r.Output,
			Key:    r.Key,
			Status: status,
			Error:  r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
