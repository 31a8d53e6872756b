package checkpoint

import (
	"strings"
	"testing"
)

func TestNewStateDefaults(t *testing.T) {
	state, err := NewState("demo", "Demo", Metadata{SourceDocument: "demo.pdf"}, []Section{
		{Title: "Intro"},
		{Title: "Body", Type: SectionContent},
	})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if state.Stage != StagePlanned {
		t.Fatalf("expected planned stage, got %s", state.Stage)
	}
	if state.SchemaVersion != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, state.SchemaVersion)
	}
	for i, section := range state.Sections {
		if section.Type != SectionContent {
			t.Fatalf("section %d type = %q, want content", i, section.Type)
		}
		if section.ImportStatus != ImportUnresolved {
			t.Fatalf("section %d import status = %q, want unresolved", i, section.ImportStatus)
		}
	}
	if state.CreatedAt.IsZero() || !state.CreatedAt.Equal(state.UpdatedAt) {
		t.Fatalf("expected created == updated, got %v / %v", state.CreatedAt, state.UpdatedAt)
	}
}

func TestNewStateValidation(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		sections []Section
		wantErr  string
	}{
		{name: "missing key", key: "", sections: []Section{{Title: "A"}}, wantErr: "project key"},
		{name: "no sections", key: "demo", sections: nil, wantErr: "at least one section"},
		{name: "untitled section", key: "demo", sections: []Section{{Title: "  "}}, wantErr: "no title"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewState(tc.key, "Demo", Metadata{}, tc.sections)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateRejectsNewerSchema(t *testing.T) {
	state, err := NewState("demo", "Demo", Metadata{}, []Section{{Title: "A"}})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	state.SchemaVersion = SchemaVersion + 1
	if err := state.Validate(); err == nil {
		t.Fatal("expected newer schema to be rejected")
	}
}

func TestMarkStageIsHighWater(t *testing.T) {
	state, err := NewState("demo", "Demo", Metadata{}, []Section{{Title: "A"}})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	state.MarkStage(StageNarrativeEnhanced)
	if state.Stage != StageNarrativeEnhanced {
		t.Fatalf("expected narrative_enhanced, got %s", state.Stage)
	}

	// Import completing after enhancement must not move the marker backward.
	state.MarkStage(StageImagesResolved)
	if state.Stage != StageNarrativeEnhanced {
		t.Fatalf("stage regressed to %s", state.Stage)
	}

	state.MarkStage(StageAssembled)
	if state.Stage != StageAssembled {
		t.Fatalf("expected assembled, got %s", state.Stage)
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		input string
		want  Stage
		ok    bool
	}{
		{"planned", StagePlanned, true},
		{" Prompts_Exported ", StagePromptsExported, true},
		{"assembled", StageAssembled, true},
		{"bogus", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseStage(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseStage(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHasTalkingPoints(t *testing.T) {
	section := Section{Title: "A", TalkingPoints: []string{"  ", ""}}
	if section.HasTalkingPoints() {
		t.Fatal("blank talking points should not count")
	}
	section.TalkingPoints = append(section.TalkingPoints, "real point")
	if !section.HasTalkingPoints() {
		t.Fatal("expected talking points to be detected")
	}
}

func TestImportCounts(t *testing.T) {
	state, err := NewState("demo", "Demo", Metadata{}, []Section{
		{Title: "A"}, {Title: "B"}, {Title: "C"},
	})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	state.Sections[0].ImportStatus = ImportResolved
	state.Sections[1].ImportStatus = ImportMissing

	resolved, missing, unresolved := state.ImportCounts()
	if resolved != 1 || missing != 1 || unresolved != 1 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/1", resolved, missing, unresolved)
	}
}
