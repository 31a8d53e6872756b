package config

import (
	"os"
	"strings"
)

// normalize expands paths and applies environment fallbacks after decoding.
func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Narrative.StylesFile != "" {
		if c.Narrative.StylesFile, err = expandPath(c.Narrative.StylesFile); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.LLM.APIKey) == "" {
		c.LLM.APIKey = strings.TrimSpace(os.Getenv("LLM_API_KEY"))
	}
	if env := strings.TrimSpace(os.Getenv("LLM_BASE_URL")); env != "" && c.LLM.BaseURL == defaultLLMBaseURL {
		c.LLM.BaseURL = env
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Narrative.Style = strings.ToLower(strings.TrimSpace(c.Narrative.Style))
	if c.Narrative.Style == "" {
		c.Narrative.Style = defaultNarrativeStyle
	}
	if c.Narrative.MaxWorkers <= 0 {
		c.Narrative.MaxWorkers = defaultNarrativeWorkers
	}
	if c.Narrative.ContextChars <= 0 {
		c.Narrative.ContextChars = defaultContextChars
	}
	if c.Deck.SlideWidthEMU <= 0 {
		c.Deck.SlideWidthEMU = defaultSlideWidthEMU
	}
	if c.Deck.SlideHeightEMU <= 0 {
		c.Deck.SlideHeightEMU = defaultSlideHeightEMU
	}
	return nil
}
