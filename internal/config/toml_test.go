package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing config must not error: %v", err)
	}
	if cfg.Game.User != nil || cfg.Game.PuzzleDir != nil || cfg.Sync.ServerURL != nil {
		t.Fatalf("missing config must be zero, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[game]
user = "alice"
puzzle-dir = "/tmp/puzzles"

[sync]
server-url = "http://localhost:8787"
timeout-seconds = 9
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.User == nil || *cfg.Game.User != "alice" {
		t.Fatalf("user = %v", cfg.Game.User)
	}
	if cfg.Game.PuzzleDir == nil || *cfg.Game.PuzzleDir != "/tmp/puzzles" {
		t.Fatalf("puzzle dir = %v", cfg.Game.PuzzleDir)
	}
	if cfg.Sync.ServerURL == nil || *cfg.Sync.ServerURL != "http://localhost:8787" {
		t.Fatalf("server url = %v", cfg.Sync.ServerURL)
	}
	if cfg.Sync.TimeoutSeconds == nil || *cfg.Sync.TimeoutSeconds != 9 {
		t.Fatalf("timeout = %v", cfg.Sync.TimeoutSeconds)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[game]\nuser = \"bob\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.User == nil || *cfg.Game.User != "bob" {
		t.Fatalf("user = %v", cfg.Game.User)
	}
	if cfg.Game.PuzzleDir != nil || cfg.Sync.ServerURL != nil || cfg.Sync.TimeoutSeconds != nil {
		t.Fatalf("unset fields must stay nil, got %+v", cfg)
	}
}
