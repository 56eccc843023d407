package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if !cfg.Engine.SpellCheck || !cfg.Engine.GrammarCheck {
			t.Error("Both correction passes should be enabled by default")
		}
		if cfg.Limits.MaxTextLength != 2000 {
			t.Errorf("Expected max text length 2000, got %d", cfg.Limits.MaxTextLength)
		}
		if cfg.Limits.RateLimit.Requests != 10 || cfg.Limits.RateLimit.Window != time.Minute {
			t.Errorf("Unexpected rate limit defaults: %+v", cfg.Limits.RateLimit)
		}
		if cfg.Engine.DiffMode != "lockstep" {
			t.Errorf("Expected lockstep diff mode, got %s", cfg.Engine.DiffMode)
		}
	})

	t.Run("FileOverrides", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 9090
engine:
  grammar_check: false
  diff_mode: lcs
limits:
  max_text_length: 500
  rate_limit:
    requests: 3
    window: 10s
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Server.Port != 9090 {
			t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
		}
		if cfg.Engine.GrammarCheck {
			t.Error("Expected grammar check disabled")
		}
		if !cfg.Engine.SpellCheck {
			t.Error("Spell check default lost when section partially set")
		}
		if cfg.Engine.DiffMode != "lcs" {
			t.Errorf("Expected lcs, got %s", cfg.Engine.DiffMode)
		}
		if cfg.Limits.MaxTextLength != 500 || cfg.Limits.RateLimit.Requests != 3 {
			t.Errorf("Unexpected limits: %+v", cfg.Limits)
		}
		if cfg.Limits.RateLimit.Window != 10*time.Second {
			t.Errorf("Expected 10s window, got %s", cfg.Limits.RateLimit.Window)
		}
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("SENTINEL_LIMITS_MAX_TEXT_LENGTH", "1234")

		cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Limits.MaxTextLength != 1234 {
			t.Errorf("Expected env override 1234, got %d", cfg.Limits.MaxTextLength)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		invalid := []string{
			"server:\n  port: 70000\n",
			"engine:\n  diff_mode: myers\n",
			"limits:\n  max_text_length: 0\n",
			"logging:\n  level: verbose\n",
			"logging:\n  format: xml\n",
			"limits:\n  rate_limit:\n    requests: 0\n",
		}
		for _, content := range invalid {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Errorf("Expected validation error for %q", content)
			}
		}
	})

	t.Run("DiffModeAnyCase", func(t *testing.T) {
		for _, mode := range []string{"LCS", " Lockstep "} {
			if _, err := Load(writeConfig(t, "engine:\n  diff_mode: \""+mode+"\"\n")); err != nil {
				t.Errorf("Expected diff mode %q to load, got %v", mode, err)
			}
		}
	})

	t.Run("MalformedFile", func(t *testing.T) {
		if _, err := Load(writeConfig(t, "server: [unclosed\n")); err == nil {
			t.Error("Expected parse error")
		}
	})
}

func TestWatchRequiresFile(t *testing.T) {
	currentMu.Lock()
	current = nil
	currentMu.Unlock()

	if err := Watch(func(*Config) {}, nil); err == nil {
		t.Error("Expected error when nothing was loaded")
	}
}
