package common

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Database.DSN != "sol-viewer.db" {
		t.Errorf("DSN = %q, want sqlite default", cfg.Database.DSN)
	}
	if cfg.Parser.MaxBytes != 1024*100 {
		t.Errorf("MaxBytes = %d, want %d", cfg.Parser.MaxBytes, 1024*100)
	}
	if cfg.Parser.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Parser.Timeout)
	}
	if cfg.Discovery.NameFilter != "ptd" {
		t.Errorf("NameFilter = %q, want %q", cfg.Discovery.NameFilter, "ptd")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SOL_MAX_BYTES", "2048")
	t.Setenv("PARSE_TIMEOUT", "250ms")
	t.Setenv("SOL_NAME_FILTER", "vault")
	t.Setenv("PARSE_WORKERS", "2")

	cfg := LoadConfig()
	if cfg.Parser.MaxBytes != 2048 {
		t.Errorf("MaxBytes = %d, want 2048", cfg.Parser.MaxBytes)
	}
	if cfg.Parser.Timeout != 250*time.Millisecond {
		t.Errorf("Timeout = %s, want 250ms", cfg.Parser.Timeout)
	}
	if cfg.Discovery.NameFilter != "vault" {
		t.Errorf("NameFilter = %q, want %q", cfg.Discovery.NameFilter, "vault")
	}
	if cfg.Workers.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers.Workers)
	}
}

func TestLoadConfigBadValuesFallBack(t *testing.T) {
	t.Setenv("SOL_MAX_BYTES", "not-a-number")
	t.Setenv("PARSE_TIMEOUT", "soon")

	cfg := LoadConfig()
	if cfg.Parser.MaxBytes != 1024*100 {
		t.Errorf("MaxBytes = %d, want default on parse failure", cfg.Parser.MaxBytes)
	}
	if cfg.Parser.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want default on parse failure", cfg.Parser.Timeout)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Database.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty DSN")
	}

	cfg = LoadConfig()
	cfg.Parser.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
}
