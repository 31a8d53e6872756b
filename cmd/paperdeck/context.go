package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/config"
	"paperdeck/internal/ledger"
	"paperdeck/internal/logging"
	"paperdeck/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) store() (*checkpoint.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return checkpoint.NewStore(cfg.Paths.OutputDir), nil
}

// loadProject resolves the checkpoint for a project key and returns the store,
// the state, and a context carrying the project for log correlation.
func (c *commandContext) loadProject(ctx context.Context, projectKey string) (*checkpoint.Store, *checkpoint.PipelineState, context.Context, error) {
	store, err := c.store()
	if err != nil {
		return nil, nil, ctx, err
	}
	state, err := store.Load(projectKey)
	if err != nil {
		return nil, nil, ctx, err
	}
	return store, state, services.WithProject(ctx, projectKey), nil
}

// withLedger opens the run ledger, applies fn, and closes it. Ledger failures
// degrade to a warning: the audit trail must never block the pipeline.
func (c *commandContext) withLedger(fn func(*ledger.Ledger) error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	l, err := ledger.Open(cfg)
	if err != nil {
		c.ensureLogger().Warn("run ledger unavailable", logging.Error(err))
		return
	}
	defer l.Close()
	if err := fn(l); err != nil {
		c.ensureLogger().Warn("run ledger update failed", logging.Error(err))
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
