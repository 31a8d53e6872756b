package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/logging"
	"paperdeck/internal/services"
)

type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, userPrompt string) (string, error)
}

func (f *fakeCompleter) CompleteText(_ context.Context, _, userPrompt string, _ float64) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(call, userPrompt)
}

func enhanceState(t *testing.T, sections int) *checkpoint.PipelineState {
	t.Helper()
	planned := make([]checkpoint.Section, 0, sections)
	for i := 1; i <= sections; i++ {
		planned = append(planned, checkpoint.Section{
			Title:         fmt.Sprintf("Section %d", i),
			TalkingPoints: []string{fmt.Sprintf("point %d-a", i), fmt.Sprintf("point %d-b", i)},
			KeyTerms:      []string{"gradient"},
			Transition:    "moving on",
		})
	}
	state, err := checkpoint.NewState("demo", "Demo", checkpoint.Metadata{}, planned)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return state
}

func testProfile() Profile {
	return Profile{Name: "generic", SystemPrompt: genericSystemPrompt}
}

func TestEnhanceAllSections(t *testing.T) {
	state := enhanceState(t, 4)
	client := &fakeCompleter{fn: func(call int, _ string) (string, error) {
		return fmt.Sprintf("narration %d", call), nil
	}}

	report, err := NewEnhancer(client, logging.NewNop(), 2, 500).Enhance(context.Background(), state, testProfile())
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if report.Enhanced != 4 || report.Failed != 0 || report.Skipped != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.Err() != nil {
		t.Fatalf("unexpected aggregate error: %v", report.Err())
	}
	for i := range state.Sections {
		if state.Sections[i].NarrativeStatus != checkpoint.NarrativeEnhanced {
			t.Fatalf("section %d status = %q", i+1, state.Sections[i].NarrativeStatus)
		}
		if state.Sections[i].Narrative == "" {
			t.Fatalf("section %d has no narrative", i+1)
		}
	}
	if state.Stage != checkpoint.StageNarrativeEnhanced {
		t.Fatalf("stage = %s, want narrative_enhanced", state.Stage)
	}
}

func TestEnhanceSkipsSectionsWithoutTalkingPoints(t *testing.T) {
	state := enhanceState(t, 2)
	state.Sections[1].TalkingPoints = nil
	client := &fakeCompleter{fn: func(int, string) (string, error) {
		return "narration", nil
	}}

	report, err := NewEnhancer(client, logging.NewNop(), 1, 500).Enhance(context.Background(), state, testProfile())
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if report.Enhanced != 1 || report.Skipped != 1 {
		t.Fatalf("report = %+v", report)
	}
	if state.Sections[1].NarrativeStatus != checkpoint.NarrativeSkipped {
		t.Fatalf("section 2 status = %q, want skipped", state.Sections[1].NarrativeStatus)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 service call, got %d", client.calls)
	}
}

func TestEnhanceIsolatesFailures(t *testing.T) {
	state := enhanceState(t, 3)
	client := &fakeCompleter{fn: func(_ int, userPrompt string) (string, error) {
		if strings.Contains(userPrompt, "Section 2") {
			return "", errors.New("boom")
		}
		return "narration", nil
	}}

	report, err := NewEnhancer(client, logging.NewNop(), 3, 500).Enhance(context.Background(), state, testProfile())
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if report.Enhanced != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if state.Sections[1].NarrativeStatus != checkpoint.NarrativeFailed {
		t.Fatalf("section 2 status = %q, want failed", state.Sections[1].NarrativeStatus)
	}
	if state.Sections[0].NarrativeStatus != checkpoint.NarrativeEnhanced {
		t.Fatal("sections around a failure must still be enhanced")
	}
	if state.Stage == checkpoint.StageNarrativeEnhanced {
		t.Fatal("stage must not advance while sections are failed")
	}
	aggErr := report.Err()
	if !errors.Is(aggErr, services.ErrExternalService) {
		t.Fatalf("expected external-service aggregate error, got %v", aggErr)
	}
	if !strings.Contains(aggErr.Error(), "1 of 3") {
		t.Fatalf("aggregate error missing counts: %v", aggErr)
	}
}

func TestEnhanceRejectsEmptyNarration(t *testing.T) {
	state := enhanceState(t, 1)
	client := &fakeCompleter{fn: func(int, string) (string, error) {
		return "   \n", nil
	}}

	report, err := NewEnhancer(client, logging.NewNop(), 1, 500).Enhance(context.Background(), state, testProfile())
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("blank narration should fail the section: %+v", report)
	}
}

func TestEnhanceNeverModifiesTalkingPoints(t *testing.T) {
	state := enhanceState(t, 2)
	before := make([][]string, len(state.Sections))
	for i := range state.Sections {
		before[i] = append([]string(nil), state.Sections[i].TalkingPoints...)
	}
	client := &fakeCompleter{fn: func(int, string) (string, error) {
		return "narration", nil
	}}

	if _, err := NewEnhancer(client, logging.NewNop(), 2, 500).Enhance(context.Background(), state, testProfile()); err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	for i := range state.Sections {
		if len(state.Sections[i].TalkingPoints) != len(before[i]) {
			t.Fatalf("section %d talking points changed length", i+1)
		}
		for j := range before[i] {
			if state.Sections[i].TalkingPoints[j] != before[i][j] {
				t.Fatalf("section %d talking point %d changed", i+1, j)
			}
		}
	}
}

func TestEnhanceReplacesNarrativeWholesale(t *testing.T) {
	state := enhanceState(t, 1)
	state.Sections[0].Narrative = "old narration from a prior pass"
	state.Sections[0].NarrativeStatus = checkpoint.NarrativeEnhanced
	client := &fakeCompleter{fn: func(int, string) (string, error) {
		return "fresh narration", nil
	}}

	if _, err := NewEnhancer(client, logging.NewNop(), 1, 500).Enhance(context.Background(), state, testProfile()); err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if state.Sections[0].Narrative != "fresh narration" {
		t.Fatalf("narrative = %q, want wholesale replacement", state.Sections[0].Narrative)
	}
}

func TestBuildUserPromptTruncatesContentOnly(t *testing.T) {
	state := enhanceState(t, 1)
	state.Sections[0].Content = strings.Repeat("x", 2000)
	enhancer := NewEnhancer(nil, logging.NewNop(), 1, 100)

	prompt := enhancer.buildUserPrompt(state, &state.Sections[0], 1, 1)
	if !strings.Contains(prompt, strings.Repeat("x", 100)+"...") {
		t.Fatalf("content not truncated: %q", prompt)
	}
	for _, point := range state.Sections[0].TalkingPoints {
		if !strings.Contains(prompt, point) {
			t.Fatalf("prompt missing talking point %q", point)
		}
	}
	if !strings.Contains(prompt, "gradient") || !strings.Contains(prompt, "moving on") {
		t.Fatalf("prompt missing key terms or transition: %q", prompt)
	}
}
