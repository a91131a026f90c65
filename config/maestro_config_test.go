package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/mailmaestro")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Port)
	}
	if cfg.LLMResponseMode != "json" {
		t.Errorf("response mode = %s, want json", cfg.LLMResponseMode)
	}
	if cfg.AnalysisBatchSize != 5 {
		t.Errorf("batch size = %d, want 5", cfg.AnalysisBatchSize)
	}
	if cfg.AnalysisChunkDelay != 500*time.Millisecond {
		t.Errorf("chunk delay = %v, want 500ms", cfg.AnalysisChunkDelay)
	}
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/mailmaestro")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadRejectsUnknownResponseMode(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_RESPONSE_MODE", "xml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown response mode")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_RESPONSE_MODE", "tools")
	t.Setenv("ANALYSIS_BATCH_SIZE", "10")
	t.Setenv("ANALYSIS_CHUNK_DELAY_MS", "100")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLMResponseMode != "tools" {
		t.Errorf("response mode = %s, want tools", cfg.LLMResponseMode)
	}
	if cfg.AnalysisBatchSize != 10 {
		t.Errorf("batch size = %d, want 10", cfg.AnalysisBatchSize)
	}
	if cfg.AnalysisChunkDelay != 100*time.Millisecond {
		t.Errorf("chunk delay = %v, want 100ms", cfg.AnalysisChunkDelay)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("allowed origins = %v", cfg.AllowedOrigins)
	}
}
