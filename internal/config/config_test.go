package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Tiles.FetchTimeout != 15*time.Second {
		t.Errorf("expected fetch timeout 15s, got %v", cfg.Tiles.FetchTimeout)
	}
	if cfg.Render.GridWidth != 256 || cfg.Render.GridHeight != 256 {
		t.Errorf("expected 256x256 grid, got %dx%d", cfg.Render.GridWidth, cfg.Render.GridHeight)
	}
	if cfg.Render.Resolution != 64 {
		t.Errorf("expected resolution 64, got %d", cfg.Render.Resolution)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  addr: ":9090"
render:
  zoom: 14
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Render.Zoom != 14 {
		t.Errorf("expected zoom 14, got %d", cfg.Render.Zoom)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Untouched settings keep their defaults.
	if cfg.Render.Resolution != 64 {
		t.Errorf("expected default resolution 64, got %d", cfg.Render.Resolution)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STLMAPS_ADDR", ":7070")
	t.Setenv("STLMAPS_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("expected addr :7070, got %s", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("STLMAPS_LOG_LEVEL", "loud")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for a bad log level")
	}
}

func TestSaveTo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := Default()
	cfg.Server.Addr = ":6060"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Addr != ":6060" {
		t.Errorf("expected round-tripped addr :6060, got %s", loaded.Server.Addr)
	}
}
