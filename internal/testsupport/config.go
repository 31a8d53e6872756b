package testsupport

import (
	"path/filepath"
	"testing"

	"paperdeck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "decks")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.LLM.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAPIKey sets the service API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.LLM.APIKey = key
	}
}

// WithStyle sets the default narrative style on the test config.
func WithStyle(style string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Narrative.Style = style
	}
}

// WithMaxWorkers bounds the enhancement worker pool on the test config.
func WithMaxWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Narrative.MaxWorkers = workers
	}
}
