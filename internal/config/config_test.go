package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesDelay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("delay: 250ms\ngrpc_addr: \":9191\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	d, err := cfg.DrainDelay()
	if err != nil {
		t.Fatalf("DrainDelay failed: %v", err)
	}
	if d != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", d)
	}
	if cfg.GRPCAddr != ":9191" {
		t.Fatalf("expected grpc_addr :9191, got %q", cfg.GRPCAddr)
	}
}

func TestDefaultIsImmediateMode(t *testing.T) {
	cfg := Default()
	d, err := cfg.DrainDelay()
	if err != nil {
		t.Fatalf("DrainDelay failed: %v", err)
	}
	if d != 0 {
		t.Fatalf("expected zero delay, got %s", d)
	}
}

func TestLoadRejectsInvalidDelay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("delay: not-a-duration\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid delay string")
	}
}
