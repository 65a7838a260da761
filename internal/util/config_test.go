package util

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "flux.toml", `
cps = 1.5
store_driver = "sqlite3"
store_dsn = ":memory:"
listen_addr = ":9999"
`)
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Cps != 1.5 || cfg.StoreDSN != ":memory:" || cfg.ListenAddr != ":9999" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "flux.yaml", `
cps: 2.0
n_cycles: 0.25
`)
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Cps != 2.0 || cfg.NCycles != 0.25 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	// untouched fields keep their defaults
	if cfg.StoreDriver != "sqlite3" {
		t.Errorf("default store driver lost: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadConfiguration("/does/not/exist.toml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
