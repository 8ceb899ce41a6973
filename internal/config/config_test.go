package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.Backend != "gl41" {
		t.Errorf("expected backend gl41, got %s", cfg.Graphics.Backend)
	}
	if cfg.Graphics.Buffering != 3 {
		t.Errorf("expected buffering 3, got %d", cfg.Graphics.Buffering)
	}
	if cfg.Graphics.FenceTimeout != time.Second {
		t.Errorf("expected fence timeout 1s, got %v", cfg.Graphics.FenceTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
graphics:
  width: 1920
  height: 1080
  backend: gl33
  buffering: 2
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Backend != "gl33" {
		t.Errorf("expected backend gl33, got %s", cfg.Graphics.Backend)
	}
	if cfg.Graphics.Buffering != 2 {
		t.Errorf("expected buffering 2, got %d", cfg.Graphics.Buffering)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}
	// Values absent from the file keep their defaults.
	if !cfg.Graphics.VSync {
		t.Error("expected vsync default to survive partial file")
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	oldBackend, oldDebug, oldWidth := *flagBackend, *flagDebug, *flagWidth
	defer func() {
		*flagBackend, *flagDebug, *flagWidth = oldBackend, oldDebug, oldWidth
	}()

	cfg := Default()
	cfg.Graphics.Backend = "gl33"
	cfg.Logging.Level = "warn"

	*flagBackend = "null"
	*flagDebug = true
	*flagWidth = 640
	applyFlags(cfg)

	if cfg.Graphics.Backend != "null" {
		t.Errorf("expected flag backend null to win, got %s", cfg.Graphics.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected -debug to force level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Graphics.Width != 640 {
		t.Errorf("expected width 640, got %d", cfg.Graphics.Width)
	}
	// Unset flags leave file values alone.
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := Default()
	cfg.Graphics.Width = 800
	cfg.Graphics.Backend = "null"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if loaded.Graphics.Width != 800 {
		t.Errorf("expected width 800, got %d", loaded.Graphics.Width)
	}
	if loaded.Graphics.Backend != "null" {
		t.Errorf("expected backend null, got %s", loaded.Graphics.Backend)
	}
}
