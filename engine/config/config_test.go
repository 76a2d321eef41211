package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	body := `asset_base_path = "custom_assets"

[window]
title = "test window"
width = 800
height = 600

[render]
vsync = false
msaa_samples = 8
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed writing fixture: %s", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Window.Title != "test window" || cfg.Window.Width != 800 {
		t.Errorf("expecting parsed window config, got %+v", cfg.Window)
	}
	if cfg.Render.Vsync {
		t.Errorf("expecting vsync=false to survive parsing")
	}
	if cfg.AssetBasePath != "custom_assets" {
		t.Errorf("expecting asset_base_path to survive parsing, got %q", cfg.AssetBasePath)
	}
}

func TestLoadReturnsErrorOnMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/engine.toml"); err == nil {
		t.Errorf("expecting Load to error on a missing file")
	}
}

func TestDefaultIsUsableWithoutAFile(t *testing.T) {
	cfg := Default()
	if cfg.Window.Width == 0 || cfg.Window.Height == 0 {
		t.Errorf("expecting Default to provide non-zero window geometry")
	}
}
