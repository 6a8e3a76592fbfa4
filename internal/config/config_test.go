package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q", cfg.Server.Port)
	}
	if cfg.LLM.APIKey != "${OPENAI_API_KEY}" {
		t.Error("expected API key placeholder")
	}
	if cfg.Worker.Lease != 15*time.Minute {
		t.Errorf("Worker.Lease = %v", cfg.Worker.Lease)
	}
	if cfg.Worker.Count <= 0 || cfg.Worker.BatchSize <= 0 {
		t.Errorf("worker defaults = %+v", cfg.Worker)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# Tailor configuration") {
		t.Error("missing header comment")
	}
	for _, key := range []string{"server:", "google:", "llm:", "worker:"} {
		if !strings.Contains(content, key) {
			t.Errorf("missing %q section", key)
		}
	}
}

func TestManagerLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `server:
  host: 0.0.0.0
  port: "9090"
llm:
  model: gpt-4o
worker:
  count: 4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	cfg := cm.Get()
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != "9090" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Worker.Count != 4 {
		t.Errorf("Worker.Count = %d", cfg.Worker.Count)
	}
	// Unset keys fall back to defaults, even inside partially-set sections.
	if cfg.Worker.Lease != 15*time.Minute {
		t.Errorf("Worker.Lease = %v", cfg.Worker.Lease)
	}
	if cfg.Worker.PollInterval != 3*time.Second {
		t.Errorf("Worker.PollInterval = %v", cfg.Worker.PollInterval)
	}
	if cfg.LLM.RateLimit != 1.0 {
		t.Errorf("LLM.RateLimit = %v", cfg.LLM.RateLimit)
	}
}
