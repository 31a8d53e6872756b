package config

const (
	defaultOutputDir          = "~/paperdeck/outputs"
	defaultLogDir             = "~/.local/share/paperdeck/logs"
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "openai/gpt-4o"
	defaultLLMReferer         = "https://github.com/paperdeck/paperdeck"
	defaultLLMTitle           = "Paperdeck Narrative Enhancer"
	defaultLLMTimeoutSeconds  = 120
	defaultNarrativeStyle     = "bruno"
	defaultNarrativeWorkers   = 2
	defaultContextChars       = 500
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultSlideWidthEMU      = 12192000 // 13.333in at 914400 EMU/in
	defaultSlideHeightEMU     = 6858000  // 7.5in
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Narrative: Narrative{
			Style:        defaultNarrativeStyle,
			MaxWorkers:   defaultNarrativeWorkers,
			ContextChars: defaultContextChars,
		},
		Deck: Deck{
			SlideWidthEMU:  defaultSlideWidthEMU,
			SlideHeightEMU: defaultSlideHeightEMU,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
