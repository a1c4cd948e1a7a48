package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != 8000 || cfg.ListenAddr != "0.0.0.0" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
}

func TestLoadConfigReadsExisting(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Port = 9001
	if err := cfg.Save(ConfigPath(dir)); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Port != 9001 {
		t.Fatalf("got port %d, want 9001", loaded.Port)
	}
}

func TestResolvePortEnvOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 8000

	t.Setenv("PORT", "9999")
	if got := cfg.ResolvePort(); got != 9999 {
		t.Fatalf("got %d, want 9999", got)
	}
}

func TestResolvePortFallsBackToConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 8123

	t.Setenv("PORT", "")
	if got := cfg.ResolvePort(); got != 8123 {
		t.Fatalf("got %d, want 8123", got)
	}
}
