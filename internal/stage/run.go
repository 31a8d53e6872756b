package stage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	runsDirName    = "runs"
	promptsDirName = "prompts"
	deckFilename   = "slides.pptx"
	runIDFormat    = "20060102-150405"
)

// Run locates one artifact-generation attempt on disk. The identifier is the
// creation timestamp; the directory is referenced by convention rather than by
// stored absolute path so the output tree stays portable.
type Run struct {
	ID  string
	Dir string
}

// PromptsDir returns the run's prompt artifact directory.
func (r Run) PromptsDir() string {
	return filepath.Join(r.Dir, promptsDirName)
}

// DeckPath returns where the run's assembled deck lives.
func (r Run) DeckPath() string {
	return filepath.Join(r.Dir, deckFilename)
}

// HasDeck reports whether the run has been assembled.
func (r Run) HasDeck() bool {
	info, err := os.Stat(r.DeckPath())
	return err == nil && !info.IsDir()
}

// NewRun names a fresh run under the project directory. Nothing is created on
// disk; the exporter owns directory creation.
func NewRun(projectDir string, now time.Time) Run {
	id := now.UTC().Format(runIDFormat)
	return Run{ID: id, Dir: filepath.Join(projectDir, runsDirName, id)}
}

// FindRun resolves a run by identifier. Returns an error when the run
// directory does not exist.
func FindRun(projectDir, id string) (Run, error) {
	run := Run{ID: id, Dir: filepath.Join(projectDir, runsDirName, id)}
	info, err := os.Stat(run.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Run{}, fmt.Errorf("run %s not found under %s", id, projectDir)
		}
		return Run{}, fmt.Errorf("stat run %s: %w", id, err)
	}
	if !info.IsDir() {
		return Run{}, fmt.Errorf("run path %s is not a directory", run.Dir)
	}
	return run, nil
}

// ListRuns enumerates runs for a project, oldest first. A project without a
// runs directory has no runs.
func ListRuns(projectDir string) ([]Run, error) {
	root := filepath.Join(projectDir, runsDirName)
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var runs []Run
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := time.Parse(runIDFormat, entry.Name()); err != nil {
			continue
		}
		runs = append(runs, Run{ID: entry.Name(), Dir: filepath.Join(root, entry.Name())})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

// LatestRun returns the most recent run, if any exist.
func LatestRun(projectDir string) (Run, bool, error) {
	runs, err := ListRuns(projectDir)
	if err != nil {
		return Run{}, false, err
	}
	if len(runs) == 0 {
		return Run{}, false, nil
	}
	return runs[len(runs)-1], true, nil
}
