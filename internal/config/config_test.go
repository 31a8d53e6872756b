package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if cfg.LLM.BaseURL != defaultLLMBaseURL {
		t.Fatalf("unexpected base url %q", cfg.LLM.BaseURL)
	}
	if cfg.Narrative.Style != "bruno" || cfg.Narrative.MaxWorkers != 2 {
		t.Fatalf("unexpected narrative defaults: %+v", cfg.Narrative)
	}
	if cfg.Deck.SlideWidthEMU != defaultSlideWidthEMU || cfg.Deck.SlideHeightEMU != defaultSlideHeightEMU {
		t.Fatalf("unexpected deck defaults: %+v", cfg.Deck)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[paths]
output_dir = "/tmp/decks"
log_dir = "/tmp/logs"

[llm]
api_key = "secret"
model = "custom/model"

[narrative]
style = "GENERIC"
max_workers = 4

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: exists=%v path=%q", exists, resolved)
	}
	if cfg.LLM.APIKey != "secret" || cfg.LLM.Model != "custom/model" {
		t.Fatalf("llm section not parsed: %+v", cfg.LLM)
	}
	if cfg.Narrative.Style != "generic" {
		t.Fatalf("style not normalized: %q", cfg.Narrative.Style)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging section not parsed: %+v", cfg.Logging)
	}
}

func TestLoadEnvFallbackForAPIKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "from-env")
	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Fatalf("env fallback not applied: %q", cfg.LLM.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty output dir", func(c *Config) { c.Paths.OutputDir = "" }, "output_dir"},
		{"empty base url", func(c *Config) { c.LLM.BaseURL = "" }, "base_url"},
		{"empty model", func(c *Config) { c.LLM.Model = "" }, "model"},
		{"negative timeout", func(c *Config) { c.LLM.TimeoutSeconds = -1 }, "timeout"},
		{"zero workers", func(c *Config) { c.Narrative.MaxWorkers = 0 }, "max_workers"},
		{"too many workers", func(c *Config) { c.Narrative.MaxWorkers = 64 }, "max_workers"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(base, "decks")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s not created: %v", dir, err)
		}
	}
}

func TestWriteSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	expanded, err := ExpandPath("~/paperdeck")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if expanded != filepath.Join(home, "paperdeck") {
		t.Fatalf("unexpected expansion %q", expanded)
	}
}
