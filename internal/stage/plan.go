package stage

import (
	"errors"
	"fmt"
	"os"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/services"
)

// Plan evaluates stage entry conditions for one project. Every condition is
// derived from checkpoint contents plus filesystem inspection; no wall-clock
// or process-lifetime assumptions are involved, which is what makes each
// stage independently re-invocable.
type Plan struct {
	state      *checkpoint.PipelineState
	projectDir string
}

// NewPlan binds a loaded state to its project directory.
func NewPlan(state *checkpoint.PipelineState, projectDir string) *Plan {
	return &Plan{state: state, projectDir: projectDir}
}

// CheckExport verifies prompts can be exported: a planned state with at least
// one section. Repeated export is always permitted; each run is isolated.
func (p *Plan) CheckExport() error {
	if p.state == nil {
		return services.Wrap(services.ErrValidation, "export", "check", "no pipeline state loaded", nil)
	}
	if len(p.state.Sections) == 0 {
		return services.Wrap(services.ErrValidation, "export", "check", "pipeline state has no sections", nil)
	}
	return nil
}

// CheckImport verifies image import can run against the given run: its prompt
// directory must exist. Whether images are present is the importer's business;
// the stage is entered explicitly by the operator because the process cannot
// detect "images are ready".
func (p *Plan) CheckImport(run Run) error {
	info, err := os.Stat(run.PromptsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrValidation, "import", "check",
				fmt.Sprintf("run %s has no prompts directory; run export-prompts first", run.ID), nil)
		}
		return services.Wrap(services.ErrTransient, "import", "check", "inspect prompts directory", err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrValidation, "import", "check",
			fmt.Sprintf("prompts path %s is not a directory", run.PromptsDir()), nil)
	}
	return nil
}

// CheckEnhance verifies narrative enhancement can run. Enhancement commutes
// with image import, so neither export nor import needs to have happened.
func (p *Plan) CheckEnhance() error {
	if p.state == nil {
		return services.Wrap(services.ErrValidation, "enhance", "check", "no pipeline state loaded", nil)
	}
	if len(p.state.Sections) == 0 {
		return services.Wrap(services.ErrValidation, "enhance", "check", "pipeline state has no sections", nil)
	}
	return nil
}

// CheckAssemble verifies deck assembly can run against the given run. At least
// one section must have a resolved image; sections still missing fall back to
// a placeholder during assembly rather than blocking the deck.
func (p *Plan) CheckAssemble(run Run) error {
	if err := p.CheckImport(run); err != nil {
		return err
	}
	resolved, _, _ := p.state.ImportCounts()
	if resolved == 0 {
		return services.Wrap(services.ErrValidation, "assemble", "check",
			"no resolved images; run import-images after placing generated files", nil)
	}
	return nil
}

// Status describes one stage's progress for operator-facing output.
type Status struct {
	Stage  checkpoint.Stage
	Done   bool
	Detail string
}

// Summary reports per-stage progress derived from the checkpoint and the run
// directories on disk.
func (p *Plan) Summary() ([]Status, error) {
	runs, err := ListRuns(p.projectDir)
	if err != nil {
		return nil, err
	}
	resolved, missing, unresolved := p.state.ImportCounts()

	enhanced, failed := 0, 0
	for i := range p.state.Sections {
		switch p.state.Sections[i].NarrativeStatus {
		case checkpoint.NarrativeEnhanced:
			enhanced++
		case checkpoint.NarrativeFailed:
			failed++
		}
	}

	assembledRuns := 0
	for _, run := range runs {
		if run.HasDeck() {
			assembledRuns++
		}
	}

	statuses := []Status{
		{
			Stage:  checkpoint.StagePlanned,
			Done:   true,
			Detail: fmt.Sprintf("%d sections", len(p.state.Sections)),
		},
		{
			Stage:  checkpoint.StagePromptsExported,
			Done:   len(runs) > 0,
			Detail: fmt.Sprintf("%d runs", len(runs)),
		},
		{
			Stage:  checkpoint.StageImagesResolved,
			Done:   resolved > 0 && missing == 0 && unresolved == 0,
			Detail: fmt.Sprintf("%d resolved, %d missing, %d unresolved", resolved, missing, unresolved),
		},
		{
			Stage:  checkpoint.StageNarrativeEnhanced,
			Done:   enhanced > 0 && failed == 0,
			Detail: fmt.Sprintf("%d enhanced, %d failed", enhanced, failed),
		},
		{
			Stage:  checkpoint.StageAssembled,
			Done:   assembledRuns > 0,
			Detail: fmt.Sprintf("%d assembled decks", assembledRuns),
		},
	}
	return statuses, nil
}
