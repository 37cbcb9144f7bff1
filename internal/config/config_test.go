package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DataDir == "" {
		t.Fatal("data dir should always resolve")
	}
	if cfg.DebounceMS != 300 {
		t.Fatalf("debounce = %d, want 300", cfg.DebounceMS)
	}
	if cfg.CloudConfigured() {
		t.Fatal("cloud should be off by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "data_dir: /tmp/ws\ncloud_db: /tmp/ws/cloud.db\nuser_id: alex\ndebounce_ms: 150\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORDSPRINT_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/tmp/ws" || cfg.UserID != "alex" || cfg.DebounceMS != 150 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.CloudConfigured() {
		t.Fatal("cloud_db set, should be configured")
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	t.Setenv("WORDSPRINT_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DebounceMS != 300 {
		t.Fatal("defaults should survive a missing file")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("user_id: filed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORDSPRINT_CONFIG", path)
	t.Setenv("WORDSPRINT_USER", "enved")
	t.Setenv("WORDSPRINT_CLOUD_DB", "/elsewhere/cloud.db")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UserID != "enved" {
		t.Fatalf("user = %q, env should win", cfg.UserID)
	}
	if cfg.CloudDB != "/elsewhere/cloud.db" {
		t.Fatalf("cloud db = %q", cfg.CloudDB)
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORDSPRINT_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
