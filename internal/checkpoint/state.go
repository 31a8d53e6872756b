package checkpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is bumped when the checkpoint document gains fields. Older
// documents stay readable; fields are only ever added.
const SchemaVersion = 1

// Stage marks the furthest pipeline stage a checkpoint has completed.
type Stage string

const (
	StagePlanned           Stage = "planned"
	StagePromptsExported   Stage = "prompts_exported"
	StageImagesResolved    Stage = "images_resolved"
	StageNarrativeEnhanced Stage = "narrative_enhanced"
	StageAssembled         Stage = "assembled"
)

var stageOrder = []Stage{
	StagePlanned,
	StagePromptsExported,
	StageImagesResolved,
	StageNarrativeEnhanced,
	StageAssembled,
}

// Stages returns the ordered list of pipeline stages.
func Stages() []Stage {
	cp := make([]Stage, len(stageOrder))
	copy(cp, stageOrder)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range stageOrder {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// ImportStatus tracks whether a slide's manually generated image has been
// correlated back to its Section.
type ImportStatus string

const (
	ImportUnresolved ImportStatus = "unresolved"
	ImportResolved   ImportStatus = "resolved"
	ImportMissing    ImportStatus = "missing"
)

// NarrativeStatus records the outcome of the most recent enhancement attempt
// for a Section. Skipped (no talking points) and failed (service error) are
// deliberately distinct so assembly reporting can tell them apart.
type NarrativeStatus string

const (
	NarrativeNone     NarrativeStatus = ""
	NarrativeEnhanced NarrativeStatus = "enhanced"
	NarrativeSkipped  NarrativeStatus = "skipped"
	NarrativeFailed   NarrativeStatus = "failed"
)

// SectionType selects the layout rule used when building image prompts.
type SectionType string

const (
	SectionTitle   SectionType = "title"
	SectionContent SectionType = "content"
	SectionCloser  SectionType = "closer"
)

// Section holds one slide's worth of planned content. Sections are owned by
// their PipelineState and identified downstream purely by position.
type Section struct {
	Title           string          `json:"title"`
	Type            SectionType     `json:"type"`
	Content         string          `json:"content,omitempty"`
	TalkingPoints   []string        `json:"talking_points,omitempty"`
	KeyTerms        []string        `json:"key_terms,omitempty"`
	Transition      string          `json:"transition,omitempty"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	Narrative       string          `json:"narrative,omitempty"`
	NarrativeStatus NarrativeStatus `json:"narrative_status,omitempty"`
	ImagePrompt     string          `json:"image_prompt,omitempty"`
	ImportStatus    ImportStatus    `json:"import_status,omitempty"`
}

// HasTalkingPoints reports whether the section carries structured notes worth
// enhancing. Title and closer slides commonly have none.
func (s *Section) HasTalkingPoints() bool {
	for _, point := range s.TalkingPoints {
		if strings.TrimSpace(point) != "" {
			return true
		}
	}
	return false
}

// Metadata captures the source document identity and generation configuration
// chosen at planning time.
type Metadata struct {
	SourceDocument string `json:"source_document"`
	ContentMode    string `json:"content_mode,omitempty"`
	Style          string `json:"style,omitempty"`
	CustomStyle    string `json:"custom_style,omitempty"`
	Length         string `json:"length,omitempty"`
}

// PipelineState is the root persisted document threading every stage together.
// Section order is fixed for the lifetime of the state: artifact correlation
// relies on positional identity, so stages must never reorder or renumber.
type PipelineState struct {
	SchemaVersion int       `json:"schema_version"`
	ProjectKey    string    `json:"project_key"`
	Title         string    `json:"title"`
	Stage         Stage     `json:"stage"`
	Meta          Metadata  `json:"meta"`
	Sections      []Section `json:"sections"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewState builds a freshly planned PipelineState.
func NewState(projectKey, title string, meta Metadata, sections []Section) (*PipelineState, error) {
	state := &PipelineState{
		SchemaVersion: SchemaVersion,
		ProjectKey:    strings.TrimSpace(projectKey),
		Title:         strings.TrimSpace(title),
		Stage:         StagePlanned,
		Meta:          meta,
		Sections:      sections,
		CreatedAt:     time.Now().UTC(),
	}
	state.UpdatedAt = state.CreatedAt
	for i := range state.Sections {
		if state.Sections[i].Type == "" {
			state.Sections[i].Type = SectionContent
		}
		if state.Sections[i].ImportStatus == "" {
			state.Sections[i].ImportStatus = ImportUnresolved
		}
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

// Validate checks the structural invariants every stage depends on.
func (p *PipelineState) Validate() error {
	if p.ProjectKey == "" {
		return errors.New("pipeline state: project key required")
	}
	if len(p.Sections) == 0 {
		return errors.New("pipeline state: at least one section required")
	}
	if p.SchemaVersion > SchemaVersion {
		return fmt.Errorf("pipeline state: schema version %d is newer than supported %d", p.SchemaVersion, SchemaVersion)
	}
	for i := range p.Sections {
		if strings.TrimSpace(p.Sections[i].Title) == "" {
			return fmt.Errorf("pipeline state: section %d has no title", i+1)
		}
	}
	return nil
}

// MarkStage advances the high-water stage marker. Enhancement and image
// resolution commute, so the marker only ever moves forward.
func (p *PipelineState) MarkStage(stage Stage) {
	if stageRank(stage) > stageRank(p.Stage) {
		p.Stage = stage
	}
	p.UpdatedAt = time.Now().UTC()
}

func stageRank(stage Stage) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// ImportCounts tallies sections by import status.
func (p *PipelineState) ImportCounts() (resolved, missing, unresolved int) {
	for i := range p.Sections {
		switch p.Sections[i].ImportStatus {
		case ImportResolved:
			resolved++
		case ImportMissing:
			missing++
		default:
			unresolved++
		}
	}
	return resolved, missing, unresolved
}
