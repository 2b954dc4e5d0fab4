package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Chunking.Size != 1000 {
		t.Errorf("Chunking.Size = %d, want 1000", cfg.Chunking.Size)
	}
	if cfg.Chunking.Overlap != 200 {
		t.Errorf("Chunking.Overlap = %d, want 200", cfg.Chunking.Overlap)
	}
	if cfg.Tally.Port != 9000 {
		t.Errorf("Tally.Port = %d, want 9000", cfg.Tally.Port)
	}
	if cfg.LLM.Timeout != 2*time.Minute {
		t.Errorf("LLM.Timeout = %v, want 2m", cfg.LLM.Timeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "512")
	t.Setenv("TALLY_HOST", "tally.internal")
	t.Setenv("TALLY_TIMEOUT", "30s")
	t.Setenv("NEO4J_ENABLE", "true")

	cfg := Load()

	if cfg.Chunking.Size != 512 {
		t.Errorf("Chunking.Size = %d, want 512", cfg.Chunking.Size)
	}
	if cfg.Tally.Host != "tally.internal" {
		t.Errorf("Tally.Host = %q, want tally.internal", cfg.Tally.Host)
	}
	if cfg.Tally.Timeout != 30*time.Second {
		t.Errorf("Tally.Timeout = %v, want 30s", cfg.Tally.Timeout)
	}
	if !cfg.Neo4jEnable {
		t.Error("Neo4jEnable should be true")
	}
	if got := cfg.Tally.BaseURL(); got != "http://tally.internal:9000" {
		t.Errorf("BaseURL = %q", got)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Chunking.Size != 1000 {
		t.Errorf("invalid CHUNK_SIZE should fall back to 1000, got %d", cfg.Chunking.Size)
	}
	if cfg.LLM.Timeout != 2*time.Minute {
		t.Errorf("invalid LLM_TIMEOUT should fall back to 2m, got %v", cfg.LLM.Timeout)
	}
}
