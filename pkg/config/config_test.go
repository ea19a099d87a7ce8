package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bptreectl.yaml")
	cfg := DefaultConfig()
	cfg.DevicePath = "/var/lib/bptreedb/index.img"
	cfg.KeySize = 16
	cfg.Metrics.Enabled = true

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DevicePath != cfg.DevicePath {
		t.Fatalf("DevicePath = %q, want %q", got.DevicePath, cfg.DevicePath)
	}
	if got.KeySize != cfg.KeySize {
		t.Fatalf("KeySize = %d, want %d", got.KeySize, cfg.KeySize)
	}
	if !got.Metrics.Enabled {
		t.Fatalf("Metrics.Enabled = false, want true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateRejectsBadKeySize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeySize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero key_size")
	}
}

func TestValidateRejectsEmptyDevicePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DevicePath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty device_path")
	}
}
