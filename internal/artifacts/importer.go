package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/logging"
	"paperdeck/internal/prompts"
	"paperdeck/internal/services"
	"paperdeck/internal/stage"
)

// Importer correlates manually generated slide images back to their sections.
// Correlation is purely positional: the two-digit index embedded in each
// artifact directory name is matched against the section's 1-based position,
// never against directory listing order.
type Importer struct {
	logger *slog.Logger
}

// NewImporter constructs an importer.
func NewImporter(logger *slog.Logger) *Importer {
	return &Importer{logger: logging.NewComponentLogger(logger, "artifacts")}
}

// Entry reports the import outcome for a single section.
type Entry struct {
	Index     int
	Title     string
	Status    checkpoint.ImportStatus
	ImagePath string
}

// Report summarizes a full scan of one run's artifact tree.
type Report struct {
	Run      stage.Run
	Entries  []Entry
	Warnings []string
	Resolved int
	Missing  int
}

// AllResolved reports whether every section found its image.
func (r *Report) AllResolved() bool {
	return r.Missing == 0 && r.Resolved == len(r.Entries)
}

// Scan walks the run's prompt tree and updates every section's import status.
// The scan is a full re-scan: previously missing sections whose images have
// since appeared are upgraded, and the operation is idempotent when nothing on
// disk changed. Entries that do not match the naming convention are reported
// as warnings and never imported. The caller persists the updated state.
func (im *Importer) Scan(ctx context.Context, state *checkpoint.PipelineState, run stage.Run) (*Report, error) {
	if state == nil || len(state.Sections) == 0 {
		return nil, services.Wrap(services.ErrValidation, "import", "scan", "pipeline state has no sections", nil)
	}

	promptsDir := run.PromptsDir()
	if _, err := os.Stat(promptsDir); err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrValidation, "import", "scan",
				fmt.Sprintf("run %s has no prompts directory; export prompts first", run.ID), nil)
		}
		return nil, services.Wrap(services.ErrTransient, "import", "scan", promptsDir, err)
	}

	report := &Report{Run: run}
	total := len(state.Sections)

	entries, err := os.ReadDir(promptsDir)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "import", "read prompts directory", promptsDir, err)
	}
	known := make(map[int]bool, total)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		index, ok := prompts.ParseSlideDir(entry.Name())
		if !ok {
			warning := fmt.Sprintf("ignoring %s: directory name does not match the slide_NN_images convention", entry.Name())
			report.Warnings = append(report.Warnings, warning)
			im.logger.Warn("skipping unrecognized artifact directory", logging.String("dir", entry.Name()))
			continue
		}
		if index > total {
			warning := fmt.Sprintf("ignoring %s: slide index %d exceeds the %d planned sections", entry.Name(), index, total)
			report.Warnings = append(report.Warnings, warning)
			im.logger.Warn("skipping out-of-range artifact directory",
				logging.String("dir", entry.Name()),
				logging.Int(logging.FieldSlideCount, total),
			)
			continue
		}
		known[index] = true
	}

	for i := range state.Sections {
		index := i + 1
		section := &state.Sections[i]
		slideCtx := services.WithSlideIndex(ctx, index)

		imagePath, found := ResolveImage(promptsDir, index)
		status := checkpoint.ImportMissing
		if found {
			status = checkpoint.ImportResolved
			report.Resolved++
		} else {
			report.Missing++
			if !known[index] {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("slide %02d has no %s directory", index, prompts.SlideDirName(index)))
			}
		}
		section.ImportStatus = status

		report.Entries = append(report.Entries, Entry{
			Index:     index,
			Title:     section.Title,
			Status:    status,
			ImagePath: imagePath,
		})
		logging.WithContext(slideCtx, im.logger).Info("scanned slide artifacts",
			logging.String("status", string(status)),
		)
	}

	if report.Missing == 0 {
		state.MarkStage(checkpoint.StageImagesResolved)
	} else {
		state.MarkStage(state.Stage)
	}
	return report, nil
}

// ResolveImage locates the image for a 1-based slide index inside a run's
// prompts directory. The expected filename wins; alternates are accepted in
// priority order so a slide is never resolved to two different files.
func ResolveImage(promptsDir string, index int) (string, bool) {
	slideDir := filepath.Join(promptsDir, prompts.SlideDirName(index))
	candidates := append([]string{prompts.ExpectedImageName}, prompts.AlternateImageNames...)
	for _, name := range candidates {
		path := filepath.Join(slideDir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() && info.Size() > 0 {
			return path, true
		}
	}
	return "", false
}
