package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/logging"
	"paperdeck/internal/services"
	"paperdeck/internal/services/llm"
)

const narrativeTemperature = 0.7

// completer is the narrow slice of the service client the enhancer needs.
type completer interface {
	CompleteText(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

var _ completer = (*llm.Client)(nil)

// Enhancer rewrites each section's talking points into flowing narration.
// Sections are processed by a bounded worker pool; a failure on one section
// never blocks the others, and the checkpoint is only updated once every
// worker has finished.
type Enhancer struct {
	client       completer
	logger       *slog.Logger
	maxWorkers   int
	contextChars int
}

// NewEnhancer constructs an enhancer. maxWorkers and contextChars fall back to
// safe values when unset.
func NewEnhancer(client completer, logger *slog.Logger, maxWorkers, contextChars int) *Enhancer {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if contextChars < 1 {
		contextChars = 500
	}
	return &Enhancer{
		client:       client,
		logger:       logging.NewComponentLogger(logger, "narrative"),
		maxWorkers:   maxWorkers,
		contextChars: contextChars,
	}
}

// Outcome reports what happened to a single section.
type Outcome struct {
	Index  int
	Title  string
	Status checkpoint.NarrativeStatus
	Err    error
}

// Report summarizes one enhancement pass.
type Report struct {
	Outcomes []Outcome
	Enhanced int
	Skipped  int
	Failed   int
}

// Err returns an aggregate error when any section failed, nil otherwise.
func (r *Report) Err() error {
	if r.Failed == 0 {
		return nil
	}
	indexes := make([]string, 0, r.Failed)
	for _, outcome := range r.Outcomes {
		if outcome.Status == checkpoint.NarrativeFailed {
			indexes = append(indexes, fmt.Sprintf("%d", outcome.Index))
		}
	}
	return services.Wrap(services.ErrExternalService, "enhance", "run",
		fmt.Sprintf("%d of %d sections failed (slides %s)", r.Failed, len(r.Outcomes), strings.Join(indexes, ", ")), nil)
}

type sectionResult struct {
	index     int
	narrative string
	status    checkpoint.NarrativeStatus
	err       error
}

// Enhance rewrites every eligible section's notes in the given voice. It
// mutates the state in one pass after all workers complete; the caller
// persists it. Sections without talking points are skipped, not failed, and
// the talking points themselves are never modified.
func (e *Enhancer) Enhance(ctx context.Context, state *checkpoint.PipelineState, profile Profile) (*Report, error) {
	if state == nil || len(state.Sections) == 0 {
		return nil, services.Wrap(services.ErrValidation, "enhance", "run", "pipeline state has no sections", nil)
	}

	total := len(state.Sections)
	jobs := make(chan int)
	results := make(chan sectionResult, total)

	var wg sync.WaitGroup
	workers := e.maxWorkers
	if workers > total {
		workers = total
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- e.enhanceSection(ctx, state, i, total, profile)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := 0; i < total; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make(map[int]sectionResult, total)
	for result := range results {
		collected[result.index] = result
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "enhance", "run", "canceled", err)
	}

	report := &Report{}
	for i := 0; i < total; i++ {
		section := &state.Sections[i]
		result, ok := collected[i]
		if !ok {
			result = sectionResult{index: i, status: checkpoint.NarrativeFailed,
				err: services.Wrap(services.ErrTransient, "enhance", "section", "no result produced", nil)}
		}
		section.NarrativeStatus = result.status
		switch result.status {
		case checkpoint.NarrativeEnhanced:
			section.Narrative = result.narrative
			report.Enhanced++
		case checkpoint.NarrativeSkipped:
			report.Skipped++
		case checkpoint.NarrativeFailed:
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, Outcome{
			Index:  i + 1,
			Title:  section.Title,
			Status: result.status,
			Err:    result.err,
		})
	}

	if report.Failed == 0 {
		state.MarkStage(checkpoint.StageNarrativeEnhanced)
	} else {
		state.MarkStage(state.Stage)
	}
	return report, nil
}

func (e *Enhancer) enhanceSection(ctx context.Context, state *checkpoint.PipelineState, i, total int, profile Profile) sectionResult {
	section := &state.Sections[i]
	index := i + 1
	if !section.HasTalkingPoints() {
		return sectionResult{index: i, status: checkpoint.NarrativeSkipped}
	}

	requestID := uuid.NewString()
	slideCtx := services.WithRequestID(services.WithSlideIndex(ctx, index), requestID)
	logger := logging.WithContext(slideCtx, e.logger)

	prompt := e.buildUserPrompt(state, section, index, total)
	narration, err := e.client.CompleteText(slideCtx, profile.SystemPrompt, prompt, narrativeTemperature)
	if err != nil {
		logger.Warn("narrative enhancement failed", logging.Error(err))
		return sectionResult{index: i, status: checkpoint.NarrativeFailed,
			err: services.Wrap(services.ErrExternalService, "enhance", "section", section.Title, err)}
	}
	narration = strings.TrimSpace(narration)
	if narration == "" {
		logger.Warn("narrative enhancement returned empty narration")
		return sectionResult{index: i, status: checkpoint.NarrativeFailed,
			err: services.Wrap(services.ErrExternalService, "enhance", "section", "empty narration returned", nil)}
	}

	logger.Info("narrative enhanced", logging.Int("chars", len(narration)))
	return sectionResult{index: i, narrative: narration, status: checkpoint.NarrativeEnhanced}
}

// buildUserPrompt assembles the structured slide payload. Content is capped so
// large planning bodies cannot blow the request out; the talking points always
// go through in full.
func (e *Enhancer) buildUserPrompt(state *checkpoint.PipelineState, section *checkpoint.Section, index, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Presentation: %s\n", state.Title)
	fmt.Fprintf(&b, "Slide %d of %d: %s\n\n", index, total, section.Title)
	b.WriteString("Talking points:\n")
	for _, point := range section.TalkingPoints {
		if strings.TrimSpace(point) == "" {
			continue
		}
		b.WriteString("- " + point + "\n")
	}
	if len(section.KeyTerms) > 0 {
		b.WriteString("\nKey terms to define: " + strings.Join(section.KeyTerms, ", ") + "\n")
	}
	if transition := strings.TrimSpace(section.Transition); transition != "" {
		b.WriteString("\nTransition to next slide: " + transition + "\n")
	}
	if section.DurationMinutes > 0 {
		fmt.Fprintf(&b, "\nTarget speaking time: about %d minute(s)\n", section.DurationMinutes)
	}
	if body := strings.TrimSpace(section.Content); body != "" {
		b.WriteString("\nSlide body for context:\n" + truncate(body, e.contextChars) + "\n")
	}
	return b.String()
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
