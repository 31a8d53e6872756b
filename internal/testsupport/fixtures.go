package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/prompts"
	"paperdeck/internal/stage"
)

// NewState builds a planned pipeline state with the given number of content
// sections. Section titles and talking points are deterministic so tests can
// assert against them.
func NewState(t testing.TB, projectKey string, sections int) *checkpoint.PipelineState {
	t.Helper()

	planned := make([]checkpoint.Section, 0, sections)
	for i := 1; i <= sections; i++ {
		planned = append(planned, checkpoint.Section{
			Title: fmt.Sprintf("Section %d", i),
			Type:  checkpoint.SectionContent,
			TalkingPoints: []string{
				fmt.Sprintf("Point %d.1", i),
				fmt.Sprintf("Point %d.2", i),
			},
			Transition: fmt.Sprintf("On to section %d", i+1),
		})
	}
	state, err := checkpoint.NewState(projectKey, "Test Presentation", checkpoint.Metadata{
		SourceDocument: "paper.pdf",
		Style:          "academic",
	}, planned)
	if err != nil {
		t.Fatalf("build state: %v", err)
	}
	return state
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteSlideImage places an image artifact for the given 1-based slide index
// inside a run's prompt tree, using the expected filename unless an alternate
// name is supplied.
func WriteSlideImage(t testing.TB, run stage.Run, index int, name string) string {
	t.Helper()

	if name == "" {
		name = prompts.ExpectedImageName
	}
	path := filepath.Join(run.PromptsDir(), prompts.SlideDirName(index), name)
	WriteFile(t, path, 64)
	return path
}
