package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckpointFilename is the canonical checkpoint document name inside a
// project directory.
const CheckpointFilename = "checkpoint_plan.json"

var (
	// ErrNotFound indicates no checkpoint exists for the project key.
	ErrNotFound = errors.New("checkpoint not found")
	// ErrCorrupt indicates the checkpoint document is unreadable. Downstream
	// correlation depends entirely on section ordering being trustworthy, so
	// no partial recovery is attempted.
	ErrCorrupt = errors.New("checkpoint corrupt")
)

// Store persists one PipelineState document per project under a root output
// directory. No cross-process locking is provided: the pipeline assumes
// single-writer, sequential invocation per project key.
type Store struct {
	root string
}

// NewStore returns a store rooted at the given output directory.
func NewStore(outputDir string) *Store {
	return &Store{root: outputDir}
}

// ProjectDir returns the directory owning a project's checkpoint and runs.
func (s *Store) ProjectDir(projectKey string) string {
	return filepath.Join(s.root, projectKey)
}

// Path returns the canonical checkpoint file path for a project.
func (s *Store) Path(projectKey string) string {
	return filepath.Join(s.ProjectDir(projectKey), CheckpointFilename)
}

// Exists reports whether a checkpoint document is present for the project.
func (s *Store) Exists(projectKey string) bool {
	info, err := os.Stat(s.Path(projectKey))
	return err == nil && !info.IsDir()
}

// Load reads and validates the project's checkpoint. Returns ErrNotFound when
// absent and ErrCorrupt when the document cannot be trusted.
func (s *Store) Load(projectKey string) (*PipelineState, error) {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return nil, errors.New("checkpoint load: project key required")
	}

	data, err := os.ReadFile(s.Path(projectKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectKey)
		}
		return nil, fmt.Errorf("checkpoint load: %w", err)
	}

	var state PipelineState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, projectKey, err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, projectKey, err)
	}
	if state.ProjectKey != projectKey {
		return nil, fmt.Errorf("%w: document claims project %q, loaded as %q", ErrCorrupt, state.ProjectKey, projectKey)
	}
	return &state, nil
}

// Save durably persists the state. The write is atomic with respect to partial
// writes: the document lands in a temporary file which replaces the canonical
// path only after a successful write and sync, so a crash mid-save leaves the
// previous checkpoint intact.
func (s *Store) Save(state *PipelineState) error {
	if state == nil {
		return errors.New("checkpoint save: state is nil")
	}
	if err := state.Validate(); err != nil {
		return fmt.Errorf("checkpoint save: %w", err)
	}

	dir := s.ProjectDir(state.ProjectKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint save: create project directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint save: encode: %w", err)
	}
	data = append(data, '\n')

	target := s.Path(state.ProjectKey)
	tmp, err := os.CreateTemp(dir, CheckpointFilename+".tmp-*")
	if err != nil {
		return fmt.Errorf("checkpoint save: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("checkpoint save: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("checkpoint save: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("checkpoint save: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("checkpoint save: replace checkpoint: %w", err)
	}
	return nil
}
