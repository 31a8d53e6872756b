package prompts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/logging"
	"paperdeck/internal/stage"
)

func exportState(t *testing.T, sections int) *checkpoint.PipelineState {
	t.Helper()
	planned := make([]checkpoint.Section, 0, sections)
	for i := 0; i < sections; i++ {
		planned = append(planned, checkpoint.Section{
			Title:         "Topic",
			TalkingPoints: []string{"point"},
		})
	}
	state, err := checkpoint.NewState("demo", "Demo", checkpoint.Metadata{Style: "academic"}, planned)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return state
}

func TestExportCreatesArtifactTree(t *testing.T) {
	projectDir := t.TempDir()
	state := exportState(t, 3)
	run := stage.NewRun(projectDir, time.Now())

	exporter := NewExporter(logging.NewNop())
	result, err := exporter.Export(context.Background(), state, run, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.Count != 3 {
		t.Fatalf("expected 3 exported prompts, got %d", result.Count)
	}

	for i := 1; i <= 3; i++ {
		promptPath := filepath.Join(run.PromptsDir(), PromptFilename(i))
		if _, err := os.Stat(promptPath); err != nil {
			t.Fatalf("missing prompt %d: %v", i, err)
		}
		imageDir := filepath.Join(run.PromptsDir(), SlideDirName(i))
		info, err := os.Stat(imageDir)
		if err != nil || !info.IsDir() {
			t.Fatalf("missing image dir %d: %v", i, err)
		}
	}
	if _, err := os.Stat(filepath.Join(run.PromptsDir(), InstructionsFilename)); err != nil {
		t.Fatalf("missing instructions: %v", err)
	}
	if state.Stage != checkpoint.StagePromptsExported {
		t.Fatalf("stage not advanced, got %s", state.Stage)
	}
	for i := range state.Sections {
		if state.Sections[i].ImagePrompt == "" {
			t.Fatalf("section %d prompt not recorded on state", i+1)
		}
	}
}

func TestExportPromptContent(t *testing.T) {
	projectDir := t.TempDir()
	state := exportState(t, 3)
	state.Sections[0].Type = checkpoint.SectionTitle
	state.Sections[0].Title = "Grand Opening"
	run := stage.NewRun(projectDir, time.Now())

	if _, err := NewExporter(logging.NewNop()).Export(context.Background(), state, run, nil); err != nil {
		t.Fatalf("Export: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(run.PromptsDir(), PromptFilename(1)))
	if err != nil {
		t.Fatalf("read prompt 1: %v", err)
	}
	content := string(first)
	if !strings.Contains(content, "Grand Opening") {
		t.Fatalf("prompt missing section title: %s", content)
	}
	if !strings.Contains(content, "SLIDE 1 - no reference image needed") {
		t.Fatalf("prompt 1 missing reference chain opener: %s", content)
	}
	if !strings.Contains(content, "Slide 1 of 3") {
		t.Fatalf("prompt missing position marker: %s", content)
	}
	if !strings.Contains(content, SlideDirName(1)+"/"+ExpectedImageName) {
		t.Fatalf("prompt missing save destination: %s", content)
	}

	third, err := os.ReadFile(filepath.Join(run.PromptsDir(), PromptFilename(3)))
	if err != nil {
		t.Fatalf("read prompt 3: %v", err)
	}
	if !strings.Contains(string(third), "generated image from SLIDE 2") {
		t.Fatalf("prompt 3 missing style reference instruction: %s", third)
	}
}

func TestExportRunsAreIsolated(t *testing.T) {
	projectDir := t.TempDir()
	state := exportState(t, 1)
	exporter := NewExporter(logging.NewNop())

	first := stage.NewRun(projectDir, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if _, err := exporter.Export(context.Background(), state, first, nil); err != nil {
		t.Fatalf("first export: %v", err)
	}
	marker := filepath.Join(first.PromptsDir(), SlideDirName(1), ExpectedImageName)
	if err := os.WriteFile(marker, []byte("img"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	second := stage.NewRun(projectDir, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if _, err := exporter.Export(context.Background(), state, second, nil); err != nil {
		t.Fatalf("second export: %v", err)
	}

	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("prior run mutated by re-export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(second.PromptsDir(), SlideDirName(1), ExpectedImageName)); err == nil {
		t.Fatal("new run should start without images")
	}
}

func TestStyleHints(t *testing.T) {
	if hints := styleHints("doraemon", nil); !strings.Contains(hints, "robot-cat") {
		t.Fatalf("unexpected doraemon hints: %s", hints)
	}
	if hints := styleHints("unknown-style", nil); hints != slideStyleHints["academic"] {
		t.Fatalf("unknown style should fall back to academic, got %s", hints)
	}
	processed := &ProcessedStyle{StyleName: "vaporwave", ColorTone: "pink and teal", Valid: true}
	if hints := styleHints("academic", processed); !strings.Contains(hints, "vaporwave") {
		t.Fatalf("processed style should win: %s", hints)
	}
}
