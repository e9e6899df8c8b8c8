package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds all configurable paths and processing settings.
type Config struct {
	// Paths
	InputDir   string `json:"input_dir"`
	OutputDir  string `json:"output_dir"`
	File       string `json:"file"`
	SystemJSON string `json:"system_json"`

	// Processing settings
	Key       string `json:"key"`
	Engine    string `json:"engine"`
	Workers   int    `json:"workers"`
	ThumbSize int    `json:"thumb_size"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir   string
	OutputDir  string
	File       string
	SystemJSON string
	Key        string
	Engine     string
	Workers    int
	ThumbSize  int
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.File != "" {
		c.File = flags.File
	}
	if flags.SystemJSON != "" {
		c.SystemJSON = flags.SystemJSON
	}
	if flags.Key != "" {
		c.Key = flags.Key
	}
	if flags.Engine != "" {
		c.Engine = flags.Engine
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.ThumbSize > 0 {
		c.ThumbSize = flags.ThumbSize
	}

	if c.InputDir == "" {
		c.InputDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = c.InputDir
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// FindSystemJSON locates the System.json shipped with a game, checking the
// explicitly configured path first and then the layouts MV and MZ actually
// use. Returns "" when none exists.
func (c *Config) FindSystemJSON() string {
	if c.SystemJSON != "" {
		if _, err := os.Stat(c.SystemJSON); err == nil {
			return c.SystemJSON
		}
		return ""
	}

	candidates := []string{
		filepath.Join(c.InputDir, "System.json"),
		filepath.Join(c.InputDir, "data", "System.json"),
		filepath.Join(c.InputDir, "www", "data", "System.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
