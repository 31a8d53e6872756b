package deck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"paperdeck/internal/artifacts"
	"paperdeck/internal/checkpoint"
	"paperdeck/internal/logging"
	"paperdeck/internal/services"
	"paperdeck/internal/stage"
)

// Geometry defines the slide canvas in English Metric Units.
type Geometry struct {
	WidthEMU  int64
	HeightEMU int64
}

// Assembler builds the final presentation from a run's imported images and the
// checkpoint's narration. Every section yields exactly one slide, in section
// order; unresolved slides get a placeholder image so positions never shift.
type Assembler struct {
	logger   *slog.Logger
	geometry Geometry
}

// NewAssembler constructs an assembler.
func NewAssembler(logger *slog.Logger, geometry Geometry) *Assembler {
	return &Assembler{
		logger:   logging.NewComponentLogger(logger, "deck"),
		geometry: geometry,
	}
}

// Result summarizes one assembly.
type Result struct {
	DeckPath     string
	SlideCount   int
	Placeholders int
}

// Assemble writes the deck for a run. The caller persists the updated state.
func (a *Assembler) Assemble(ctx context.Context, state *checkpoint.PipelineState, run stage.Run) (*Result, error) {
	if state == nil || len(state.Sections) == 0 {
		return nil, services.Wrap(services.ErrValidation, "assemble", "run", "pipeline state has no sections", nil)
	}

	promptsDir := run.PromptsDir()
	result := &Result{DeckPath: run.DeckPath(), SlideCount: len(state.Sections)}
	slides := make([]slideAsset, 0, len(state.Sections))

	for i := range state.Sections {
		index := i + 1
		section := &state.Sections[i]
		slideCtx := services.WithSlideIndex(ctx, index)

		asset, placeholder, err := a.loadSlideImage(promptsDir, index)
		if err != nil {
			return nil, err
		}
		if placeholder {
			result.Placeholders++
			logging.WithContext(slideCtx, a.logger).Warn("no image imported, using placeholder",
				logging.String("section", section.Title))
		}
		asset.notes = speakerNotes(section)
		slides = append(slides, asset)
	}

	if err := writePPTX(result.DeckPath, slides, a.geometry.WidthEMU, a.geometry.HeightEMU); err != nil {
		return nil, err
	}

	state.MarkStage(checkpoint.StageAssembled)
	a.logger.Info("deck assembled",
		logging.String("path", result.DeckPath),
		logging.Int(logging.FieldSlideCount, result.SlideCount),
		logging.Int("placeholders", result.Placeholders),
	)
	return result, nil
}

func (a *Assembler) loadSlideImage(promptsDir string, index int) (slideAsset, bool, error) {
	path, found := artifacts.ResolveImage(promptsDir, index)
	if !found {
		data, err := placeholderImage()
		if err != nil {
			return slideAsset{}, false, err
		}
		return slideAsset{image: data, imageExt: "png"}, true, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return slideAsset{}, false, services.Wrap(services.ErrTransient, "assemble", "read slide image", path, err)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext != "png" && ext != "jpg" && ext != "jpeg" {
		ext = "png"
	}
	return slideAsset{image: data, imageExt: ext}, false, nil
}

// speakerNotes prefers the enhanced narrative and falls back to a readable
// flattening of the planned notes so a partially enhanced deck is still
// presentable.
func speakerNotes(section *checkpoint.Section) string {
	if narrative := strings.TrimSpace(section.Narrative); narrative != "" && section.NarrativeStatus == checkpoint.NarrativeEnhanced {
		return narrative
	}

	var b strings.Builder
	for _, point := range section.TalkingPoints {
		if strings.TrimSpace(point) == "" {
			continue
		}
		b.WriteString("- " + point + "\n")
	}
	if len(section.KeyTerms) > 0 {
		b.WriteString("\nKey terms: " + strings.Join(section.KeyTerms, ", ") + "\n")
	}
	if transition := strings.TrimSpace(section.Transition); transition != "" {
		b.WriteString("\nTransition: " + transition + "\n")
	}
	if section.DurationMinutes > 0 {
		fmt.Fprintf(&b, "\nDuration: %d minute(s)\n", section.DurationMinutes)
	}
	if b.Len() == 0 {
		return section.Title
	}
	return strings.TrimRight(b.String(), "\n")
}
