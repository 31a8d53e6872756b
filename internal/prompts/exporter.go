package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/logging"
	"paperdeck/internal/services"
	"paperdeck/internal/stage"
)

// Exporter writes one prompt artifact and one expected-image directory per
// section into a fresh run. Runs are isolated by their timestamp-derived
// directory, so re-exporting never mutates prior runs.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter constructs an exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logging.NewComponentLogger(logger, "prompts")}
}

// Result summarizes one export.
type Result struct {
	Run   stage.Run
	Count int
}

// Export derives each section's image prompt and materializes the run's
// prompt tree. It also records the prompt text on the section so the
// checkpoint stays the single source of truth; the caller persists the state.
func (e *Exporter) Export(ctx context.Context, state *checkpoint.PipelineState, run stage.Run, style *ProcessedStyle) (*Result, error) {
	if state == nil || len(state.Sections) == 0 {
		return nil, services.Wrap(services.ErrValidation, "export", "run", "pipeline state has no sections", nil)
	}

	promptsDir := run.PromptsDir()
	if err := os.MkdirAll(promptsDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "export", "create run directory", "", err)
	}

	total := len(state.Sections)
	deckContext := deckContextMarkdown(state)
	hints := styleHints(state.Meta.Style, style)

	for i := range state.Sections {
		index := i + 1
		section := &state.Sections[i]
		slideCtx := services.WithSlideIndex(ctx, index)

		prompt := buildSlidePrompt(section, index, total, hints, deckContext)
		section.ImagePrompt = prompt

		artifact := renderPromptArtifact(section, index, total, prompt)
		promptPath := filepath.Join(promptsDir, PromptFilename(index))
		if err := os.WriteFile(promptPath, []byte(artifact), 0o644); err != nil {
			return nil, services.Wrap(services.ErrTransient, "export", "write prompt artifact", promptPath, err)
		}
		if err := os.MkdirAll(filepath.Join(promptsDir, SlideDirName(index)), 0o755); err != nil {
			return nil, services.Wrap(services.ErrTransient, "export", "create image directory", "", err)
		}

		logging.WithContext(slideCtx, e.logger).Info("exported prompt",
			logging.String("file", PromptFilename(index)),
			logging.Int(logging.FieldSlideCount, total),
		)
	}

	if err := writeInstructions(promptsDir, state.ProjectKey, total); err != nil {
		return nil, err
	}

	state.MarkStage(checkpoint.StagePromptsExported)
	return &Result{Run: run, Count: total}, nil
}

func buildSlidePrompt(section *checkpoint.Section, index, total int, hints, deckContext string) string {
	parts := []string{
		"Create ONE presentation slide image.",
		hints,
		layoutRule(section.Type),
		commonStyleRules,
		consistencyHint,
		fmt.Sprintf("Slide %d of %d", index, total),
		"---\nFull presentation context:\n" + deckContext,
		"---\nThis slide content:\n" + sectionMarkdown(section),
	}
	return strings.Join(parts, "\n\n")
}

func sectionMarkdown(section *checkpoint.Section) string {
	lines := []string{"## " + section.Title}
	if body := strings.TrimSpace(section.Content); body != "" {
		lines = append(lines, "", body)
	}
	for _, point := range section.TalkingPoints {
		if strings.TrimSpace(point) == "" {
			continue
		}
		lines = append(lines, "- "+point)
	}
	if len(section.KeyTerms) > 0 {
		lines = append(lines, "", "Key terms: "+strings.Join(section.KeyTerms, ", "))
	}
	return strings.Join(lines, "\n")
}

func deckContextMarkdown(state *checkpoint.PipelineState) string {
	parts := make([]string, 0, len(state.Sections))
	for i := range state.Sections {
		parts = append(parts, sectionMarkdown(&state.Sections[i]))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func renderPromptArtifact(section *checkpoint.Section, index, total int, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Slide %02d of %d\n", index, total)
	if section.Title != "" {
		fmt.Fprintf(&b, "## %s\n", section.Title)
	}
	b.WriteString(referenceChainInstruction(index, total))
	b.WriteString("\n## RAW PROMPT\nCopy everything below this line into the image generation tool:\n\n---\n\n")
	b.WriteString(prompt)
	fmt.Fprintf(&b, "\n\n---\n\n## AFTER GENERATION\n1. Download the generated image\n2. Save as: %s/%s\n3. Continue to the next slide prompt\n",
		SlideDirName(index), ExpectedImageName)
	return b.String()
}

// referenceChainInstruction keeps the deck visually consistent across manual
// generations: slide 1 establishes the style, slide 2 becomes the reference
// for every later slide.
func referenceChainInstruction(index, total int) string {
	switch index {
	case 1:
		return "\n## REFERENCE CHAIN\nThis is SLIDE 1 - no reference image needed.\n" +
			"After generating this slide, keep it: it is the reference for slide 2.\n"
	case 2:
		return "\n## REFERENCE CHAIN\nUpload the generated image from SLIDE 1 as a reference attachment.\n" +
			"After generating this slide, keep it: it is the STYLE REFERENCE for ALL remaining slides.\n"
	default:
		return fmt.Sprintf("\n## REFERENCE CHAIN\nUpload the generated image from SLIDE 2 as a reference attachment.\n"+
			"This keeps the visual style consistent across all %d slides.\n", total)
	}
}
