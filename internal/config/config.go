package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the application.
type Config struct {
	// DataDir is where local state (entries, prefs, mode) lives.
	DataDir string `yaml:"data_dir"`

	// CloudDB is the path to the shared ledger database. Empty means
	// cloud mode is not configured and only local mode is offered.
	CloudDB string `yaml:"cloud_db"`

	// UserID identifies this writer in the shared ledger.
	UserID string `yaml:"user_id"`

	// DebounceMS is how long a day edit settles before it syncs.
	DebounceMS int `yaml:"debounce_ms"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir:    filepath.Join(home, ".config", "wordsprint"),
		DebounceMS: 300,
	}
}

// Load reads the config file under the default data dir, if present,
// then applies environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(cfg.DataDir, "config.yaml")
	if p := os.Getenv("WORDSPRINT_CONFIG"); p != "" {
		path = p
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if v := os.Getenv("WORDSPRINT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("WORDSPRINT_CLOUD_DB"); v != "" {
		cfg.CloudDB = v
	}
	if v := os.Getenv("WORDSPRINT_USER"); v != "" {
		cfg.UserID = v
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 300
	}
	return cfg, nil
}

// CloudConfigured reports whether a shared ledger is reachable at all.
func (c *Config) CloudConfigured() bool {
	return c.CloudDB != ""
}

// TestConfig returns a configuration for testing.
func TestConfig(testDir string) *Config {
	return &Config{
		DataDir:    filepath.Join(testDir, "data"),
		CloudDB:    filepath.Join(testDir, "cloud.db"),
		UserID:     "test-user",
		DebounceMS: 10,
	}
}
