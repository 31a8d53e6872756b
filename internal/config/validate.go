package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. The LLM credential is not
// required here: only the enhance stage needs it, and that stage checks it
// explicitly so the rest of the pipeline works without one.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateNarrative(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.BaseURL == "" {
		return errors.New("llm.base_url must be set")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateNarrative() error {
	if c.Narrative.MaxWorkers < 1 {
		return errors.New("narrative.max_workers must be at least 1")
	}
	if c.Narrative.MaxWorkers > 16 {
		return fmt.Errorf("narrative.max_workers %d exceeds the supported maximum of 16", c.Narrative.MaxWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
