package stage

import (
	"os"
	"testing"
	"time"

	"paperdeck/internal/checkpoint"
)

func planState(t *testing.T, sections int) *checkpoint.PipelineState {
	t.Helper()
	planned := make([]checkpoint.Section, 0, sections)
	for i := 0; i < sections; i++ {
		planned = append(planned, checkpoint.Section{Title: "Section"})
	}
	state, err := checkpoint.NewState("demo", "Demo", checkpoint.Metadata{}, planned)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return state
}

func TestCheckExport(t *testing.T) {
	projectDir := t.TempDir()
	if err := NewPlan(planState(t, 2), projectDir).CheckExport(); err != nil {
		t.Fatalf("CheckExport: %v", err)
	}
	if err := NewPlan(nil, projectDir).CheckExport(); err == nil {
		t.Fatal("expected nil state to fail")
	}
}

func TestCheckImportRequiresPromptsDir(t *testing.T) {
	projectDir := t.TempDir()
	plan := NewPlan(planState(t, 1), projectDir)
	run := NewRun(projectDir, time.Now())

	if err := plan.CheckImport(run); err == nil {
		t.Fatal("expected missing prompts dir to fail")
	}
	if err := os.MkdirAll(run.PromptsDir(), 0o755); err != nil {
		t.Fatalf("mkdir prompts: %v", err)
	}
	if err := plan.CheckImport(run); err != nil {
		t.Fatalf("CheckImport: %v", err)
	}
}

func TestCheckAssembleNeedsResolvedImage(t *testing.T) {
	projectDir := t.TempDir()
	state := planState(t, 2)
	plan := NewPlan(state, projectDir)
	run := NewRun(projectDir, time.Now())
	if err := os.MkdirAll(run.PromptsDir(), 0o755); err != nil {
		t.Fatalf("mkdir prompts: %v", err)
	}

	if err := plan.CheckAssemble(run); err == nil {
		t.Fatal("expected zero resolved images to fail")
	}
	state.Sections[0].ImportStatus = checkpoint.ImportResolved
	if err := plan.CheckAssemble(run); err != nil {
		t.Fatalf("CheckAssemble: %v", err)
	}
}

func TestSummary(t *testing.T) {
	projectDir := t.TempDir()
	state := planState(t, 3)
	state.Sections[0].ImportStatus = checkpoint.ImportResolved
	state.Sections[1].ImportStatus = checkpoint.ImportResolved
	state.Sections[2].ImportStatus = checkpoint.ImportResolved
	state.Sections[0].NarrativeStatus = checkpoint.NarrativeEnhanced

	run := NewRun(projectDir, time.Now())
	if err := os.MkdirAll(run.Dir, 0o755); err != nil {
		t.Fatalf("mkdir run: %v", err)
	}
	if err := os.WriteFile(run.DeckPath(), []byte("zip"), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}

	statuses, err := NewPlan(state, projectDir).Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(statuses) != len(checkpoint.Stages()) {
		t.Fatalf("expected %d statuses, got %d", len(checkpoint.Stages()), len(statuses))
	}

	byStage := make(map[checkpoint.Stage]Status, len(statuses))
	for _, status := range statuses {
		byStage[status.Stage] = status
	}
	if !byStage[checkpoint.StagePlanned].Done {
		t.Fatal("planned stage should always be done for a loaded state")
	}
	if !byStage[checkpoint.StagePromptsExported].Done {
		t.Fatal("prompts stage should be done with a run on disk")
	}
	if !byStage[checkpoint.StageImagesResolved].Done {
		t.Fatal("images stage should be done with all sections resolved")
	}
	if !byStage[checkpoint.StageNarrativeEnhanced].Done {
		t.Fatal("narrative stage should be done with enhancements and no failures")
	}
	if !byStage[checkpoint.StageAssembled].Done {
		t.Fatal("assembled stage should be done with a deck on disk")
	}
}
