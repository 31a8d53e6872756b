package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/logging"
	"paperdeck/internal/prompts"
	"paperdeck/internal/stage"
	"paperdeck/internal/testsupport"
)

func importFixture(t *testing.T, sections int) (*checkpoint.PipelineState, stage.Run) {
	t.Helper()
	state := testsupport.NewState(t, "demo", sections)
	run := stage.NewRun(t.TempDir(), time.Now())
	for i := 1; i <= sections; i++ {
		if err := os.MkdirAll(filepath.Join(run.PromptsDir(), prompts.SlideDirName(i)), 0o755); err != nil {
			t.Fatalf("mkdir slide dir %d: %v", i, err)
		}
	}
	return state, run
}

func placeImage(t *testing.T, run stage.Run, index int, name string) {
	t.Helper()
	testsupport.WriteSlideImage(t, run, index, name)
}

func TestScanCorrelatesByPosition(t *testing.T) {
	state, run := importFixture(t, 3)
	placeImage(t, run, 1, "")
	placeImage(t, run, 3, "")

	report, err := NewImporter(logging.NewNop()).Scan(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Resolved != 2 || report.Missing != 1 {
		t.Fatalf("report = %d resolved / %d missing, want 2/1", report.Resolved, report.Missing)
	}
	want := []checkpoint.ImportStatus{checkpoint.ImportResolved, checkpoint.ImportMissing, checkpoint.ImportResolved}
	for i, status := range want {
		if state.Sections[i].ImportStatus != status {
			t.Fatalf("section %d status = %q, want %q", i+1, state.Sections[i].ImportStatus, status)
		}
		if report.Entries[i].Status != status {
			t.Fatalf("entry %d status = %q, want %q", i+1, report.Entries[i].Status, status)
		}
	}
	if state.Stage == checkpoint.StageImagesResolved {
		t.Fatal("stage must not advance while images are missing")
	}
}

func TestScanRescanUpgradesMissing(t *testing.T) {
	state, run := importFixture(t, 3)
	placeImage(t, run, 1, "")
	placeImage(t, run, 3, "")
	importer := NewImporter(logging.NewNop())

	if _, err := importer.Scan(context.Background(), state, run); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	placeImage(t, run, 2, "")

	report, err := importer.Scan(context.Background(), state, run)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if !report.AllResolved() {
		t.Fatalf("expected full resolution, got %d/%d", report.Resolved, report.Missing)
	}
	if state.Stage != checkpoint.StageImagesResolved {
		t.Fatalf("stage = %s, want images_resolved", state.Stage)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	state, run := importFixture(t, 2)
	placeImage(t, run, 1, "")
	placeImage(t, run, 2, "")
	importer := NewImporter(logging.NewNop())

	first, err := importer.Scan(context.Background(), state, run)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := importer.Scan(context.Background(), state, run)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if first.Resolved != second.Resolved || first.Missing != second.Missing {
		t.Fatalf("rescan changed results: %+v vs %+v", first, second)
	}
	for i, entry := range second.Entries {
		if entry.Status != first.Entries[i].Status {
			t.Fatalf("entry %d changed status on rescan", i+1)
		}
	}
}

func TestScanAcceptsAlternateFilenames(t *testing.T) {
	state, run := importFixture(t, 2)
	placeImage(t, run, 1, "generated.jpg")
	placeImage(t, run, 2, "slide.png")

	report, err := NewImporter(logging.NewNop()).Scan(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !report.AllResolved() {
		t.Fatalf("alternates not accepted: %+v", report)
	}
	if !strings.HasSuffix(report.Entries[0].ImagePath, "generated.jpg") {
		t.Fatalf("unexpected image path %q", report.Entries[0].ImagePath)
	}
}

func TestScanPrefersExpectedName(t *testing.T) {
	state, run := importFixture(t, 1)
	placeImage(t, run, 1, "slide.png")
	placeImage(t, run, 1, "")

	report, err := NewImporter(logging.NewNop()).Scan(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !strings.HasSuffix(report.Entries[0].ImagePath, prompts.ExpectedImageName) {
		t.Fatalf("expected %s to win, got %q", prompts.ExpectedImageName, report.Entries[0].ImagePath)
	}
}

func TestScanIgnoresEmptyImages(t *testing.T) {
	state, run := importFixture(t, 1)
	path := filepath.Join(run.PromptsDir(), prompts.SlideDirName(1), prompts.ExpectedImageName)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write empty image: %v", err)
	}

	report, err := NewImporter(logging.NewNop()).Scan(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Missing != 1 {
		t.Fatal("zero-byte image should not resolve a slide")
	}
}

func TestScanWarnsOnConventionViolations(t *testing.T) {
	state, run := importFixture(t, 2)
	placeImage(t, run, 1, "")
	placeImage(t, run, 2, "")
	for _, stray := range []string{"slide_1_images", "extras", "slide_09_images"} {
		if err := os.MkdirAll(filepath.Join(run.PromptsDir(), stray), 0o755); err != nil {
			t.Fatalf("mkdir stray %s: %v", stray, err)
		}
	}

	report, err := NewImporter(logging.NewNop()).Scan(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !report.AllResolved() {
		t.Fatalf("stray directories must not affect resolution: %+v", report)
	}
	if len(report.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", report.Warnings)
	}
	joined := strings.Join(report.Warnings, "\n")
	for _, fragment := range []string{"slide_1_images", "extras", "slide_09_images"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("warnings missing %q: %s", fragment, joined)
		}
	}
}

func TestScanMissingPromptsDir(t *testing.T) {
	state, err := checkpoint.NewState("demo", "Demo", checkpoint.Metadata{}, []checkpoint.Section{{Title: "A"}})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	run := stage.NewRun(t.TempDir(), time.Now())
	if _, err := NewImporter(logging.NewNop()).Scan(context.Background(), state, run); err == nil {
		t.Fatal("expected scan without a prompts directory to fail")
	}
}
