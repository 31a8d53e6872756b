package deck

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/logging"
	"paperdeck/internal/prompts"
	"paperdeck/internal/stage"
)

func assembleFixture(t *testing.T, sections int) (*checkpoint.PipelineState, stage.Run) {
	t.Helper()
	planned := make([]checkpoint.Section, 0, sections)
	for i := 1; i <= sections; i++ {
		planned = append(planned, checkpoint.Section{
			Title:         fmt.Sprintf("Section %d", i),
			TalkingPoints: []string{fmt.Sprintf("point %d", i)},
		})
	}
	state, err := checkpoint.NewState("demo", "Demo", checkpoint.Metadata{}, planned)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	run := stage.NewRun(t.TempDir(), time.Now())
	if err := os.MkdirAll(run.PromptsDir(), 0o755); err != nil {
		t.Fatalf("mkdir prompts: %v", err)
	}
	return state, run
}

func placeImage(t *testing.T, run stage.Run, index int) {
	t.Helper()
	dir := filepath.Join(run.PromptsDir(), prompts.SlideDirName(index))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir slide dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, prompts.ExpectedImageName), []byte("image-bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
}

func readDeckPart(t *testing.T, deckPath, partName string) string {
	t.Helper()
	reader, err := zip.OpenReader(deckPath)
	if err != nil {
		t.Fatalf("open deck: %v", err)
	}
	defer reader.Close()
	for _, file := range reader.File {
		if file.Name != partName {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open part %s: %v", partName, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read part %s: %v", partName, err)
		}
		return string(data)
	}
	t.Fatalf("part %s not found in deck", partName)
	return ""
}

func defaultGeometry() Geometry {
	return Geometry{WidthEMU: 12192000, HeightEMU: 6858000}
}

func TestAssembleOneSlidePerSection(t *testing.T) {
	state, run := assembleFixture(t, 3)
	for i := 1; i <= 3; i++ {
		placeImage(t, run, i)
	}
	state.Sections[0].Narrative = "spoken opener"
	state.Sections[0].NarrativeStatus = checkpoint.NarrativeEnhanced

	result, err := NewAssembler(logging.NewNop(), defaultGeometry()).Assemble(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if result.SlideCount != 3 || result.Placeholders != 0 {
		t.Fatalf("result = %+v", result)
	}
	if state.Stage != checkpoint.StageAssembled {
		t.Fatalf("stage = %s, want assembled", state.Stage)
	}

	reader, err := zip.OpenReader(result.DeckPath)
	if err != nil {
		t.Fatalf("open deck: %v", err)
	}
	defer reader.Close()
	slideParts, notesParts, mediaParts := 0, 0, 0
	for _, file := range reader.File {
		switch {
		case strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml"):
			slideParts++
		case strings.HasPrefix(file.Name, "ppt/notesSlides/notesSlide") && strings.HasSuffix(file.Name, ".xml"):
			notesParts++
		case strings.HasPrefix(file.Name, "ppt/media/"):
			mediaParts++
		}
	}
	if slideParts != 3 || notesParts != 3 || mediaParts != 3 {
		t.Fatalf("parts = %d slides / %d notes / %d media, want 3/3/3", slideParts, notesParts, mediaParts)
	}
}

func TestAssembleNotesContent(t *testing.T) {
	state, run := assembleFixture(t, 2)
	placeImage(t, run, 1)
	placeImage(t, run, 2)
	state.Sections[0].Narrative = "enhanced spoken words"
	state.Sections[0].NarrativeStatus = checkpoint.NarrativeEnhanced

	result, err := NewAssembler(logging.NewNop(), defaultGeometry()).Assemble(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	first := readDeckPart(t, result.DeckPath, "ppt/notesSlides/notesSlide1.xml")
	if !strings.Contains(first, "enhanced spoken words") {
		t.Fatalf("notes 1 missing narrative: %s", first)
	}
	second := readDeckPart(t, result.DeckPath, "ppt/notesSlides/notesSlide2.xml")
	if !strings.Contains(second, "point 2") {
		t.Fatalf("notes 2 missing talking point fallback: %s", second)
	}
}

func TestAssembleUsesPlaceholderForMissingImages(t *testing.T) {
	state, run := assembleFixture(t, 3)
	placeImage(t, run, 1)
	placeImage(t, run, 3)

	result, err := NewAssembler(logging.NewNop(), defaultGeometry()).Assemble(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if result.SlideCount != 3 || result.Placeholders != 1 {
		t.Fatalf("result = %+v", result)
	}

	// Slide 2's media entry must exist and be a real PNG, keeping positions stable.
	placeholder := readDeckPart(t, result.DeckPath, "ppt/media/image2.png")
	if !strings.HasPrefix(placeholder, "\x89PNG") {
		t.Fatal("placeholder media is not a PNG")
	}
}

func TestAssembleEscapesNotesText(t *testing.T) {
	state, run := assembleFixture(t, 1)
	placeImage(t, run, 1)
	state.Sections[0].Narrative = `Mind the <angle> & "quote" cases`
	state.Sections[0].NarrativeStatus = checkpoint.NarrativeEnhanced

	result, err := NewAssembler(logging.NewNop(), defaultGeometry()).Assemble(context.Background(), state, run)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	notes := readDeckPart(t, result.DeckPath, "ppt/notesSlides/notesSlide1.xml")
	if strings.Contains(notes, "<angle>") {
		t.Fatalf("raw markup leaked into notes: %s", notes)
	}
	if !strings.Contains(notes, "&lt;angle&gt;") || !strings.Contains(notes, "&amp;") {
		t.Fatalf("notes not escaped: %s", notes)
	}
}

func TestSpeakerNotesFallbackOrder(t *testing.T) {
	section := &checkpoint.Section{
		Title:           "Topic",
		TalkingPoints:   []string{"alpha", "beta"},
		KeyTerms:        []string{"gamma"},
		Transition:      "next up",
		DurationMinutes: 2,
	}
	notes := speakerNotes(section)
	for _, want := range []string{"- alpha", "- beta", "Key terms: gamma", "Transition: next up", "2 minute"} {
		if !strings.Contains(notes, want) {
			t.Fatalf("notes missing %q: %s", want, notes)
		}
	}

	section.Narrative = "narrated"
	section.NarrativeStatus = checkpoint.NarrativeEnhanced
	if got := speakerNotes(section); got != "narrated" {
		t.Fatalf("enhanced narrative should win, got %q", got)
	}

	empty := &checkpoint.Section{Title: "Just a Title"}
	if got := speakerNotes(empty); got != "Just a Title" {
		t.Fatalf("empty section should fall back to title, got %q", got)
	}
}

func TestWritePPTXIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slides.pptx")
	slides := []slideAsset{{image: []byte("img"), imageExt: "png", notes: "n"}}
	if err := writePPTX(path, slides, 100, 100); err != nil {
		t.Fatalf("writePPTX: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "slides.pptx" {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("expected only the deck, got %v", names)
	}
}
