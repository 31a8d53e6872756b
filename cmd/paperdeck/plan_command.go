package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/project"
	"paperdeck/internal/services"
)

// planDocument is the JSON contract produced by an external planning step.
type planDocument struct {
	Title          string        `json:"title"`
	SourceDocument string        `json:"source_document"`
	ContentMode    string        `json:"content_mode"`
	Style          string        `json:"style"`
	CustomStyle    string        `json:"custom_style"`
	Length         string        `json:"length"`
	Sections       []planSection `json:"sections"`
}

type planSection struct {
	Title           string   `json:"title"`
	Type            string   `json:"type"`
	Content         string   `json:"content"`
	TalkingPoints   []string `json:"talking_points"`
	KeyTerms        []string `json:"key_terms"`
	Transition      string   `json:"transition"`
	DurationMinutes int      `json:"duration_minutes"`
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var projectFlag string
	var titleFlag string
	var styleFlag string
	var customStyleFlag string
	var force bool

	cmd := &cobra.Command{
		Use:   "plan <plan.json>",
		Short: "Create a project checkpoint from a slide plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := strings.TrimSpace(args[0])
			data, err := os.ReadFile(planPath)
			if err != nil {
				return services.Wrap(services.ErrValidation, "plan", "read plan", planPath, err)
			}
			var doc planDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return services.Wrap(services.ErrValidation, "plan", "parse plan", planPath, err)
			}
			if len(doc.Sections) == 0 {
				return services.Wrap(services.ErrValidation, "plan", "parse plan", "plan has no sections", nil)
			}

			key := strings.TrimSpace(projectFlag)
			if key == "" {
				key = project.DeriveKey(doc.SourceDocument)
			}
			title := strings.TrimSpace(titleFlag)
			if title == "" {
				title = strings.TrimSpace(doc.Title)
			}
			if title == "" {
				title = project.DeriveTitle(doc.SourceDocument)
			}
			style := strings.TrimSpace(styleFlag)
			if style == "" {
				style = strings.TrimSpace(doc.Style)
			}
			customStyle := strings.TrimSpace(customStyleFlag)
			if customStyle == "" {
				customStyle = strings.TrimSpace(doc.CustomStyle)
			}

			sections := make([]checkpoint.Section, 0, len(doc.Sections))
			for _, planned := range doc.Sections {
				sectionType, ok := parseSectionType(planned.Type)
				if !ok {
					return services.Wrap(services.ErrValidation, "plan", "parse plan",
						fmt.Sprintf("section %q has unknown type %q", planned.Title, planned.Type), nil)
				}
				sections = append(sections, checkpoint.Section{
					Title:           planned.Title,
					Type:            sectionType,
					Content:         planned.Content,
					TalkingPoints:   planned.TalkingPoints,
					KeyTerms:        planned.KeyTerms,
					Transition:      planned.Transition,
					DurationMinutes: planned.DurationMinutes,
				})
			}

			state, err := checkpoint.NewState(key, title, checkpoint.Metadata{
				SourceDocument: doc.SourceDocument,
				ContentMode:    doc.ContentMode,
				Style:          style,
				CustomStyle:    customStyle,
				Length:         doc.Length,
			}, sections)
			if err != nil {
				return services.Wrap(services.ErrValidation, "plan", "build checkpoint", "", err)
			}

			store, err := ctx.store()
			if err != nil {
				return err
			}
			if store.Exists(key) && !force {
				return fmt.Errorf("project %s already has a checkpoint (use --force to replace it)", key)
			}
			if err := store.Save(state); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Planned project %s (%d sections)\n", key, len(state.Sections))
			fmt.Fprintf(out, "Checkpoint: %s\n", store.Path(key))
			fmt.Fprintf(out, "Next: paperdeck export-prompts %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectFlag, "project", "", "Project key (derived from the source document when unset)")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Presentation title (derived when unset)")
	cmd.Flags().StringVar(&styleFlag, "style", "", "Visual style hint for image prompts")
	cmd.Flags().StringVar(&customStyleFlag, "custom-style", "", "Free-text style description processed at export time")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing checkpoint")
	return cmd
}

func parseSectionType(value string) (checkpoint.SectionType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(checkpoint.SectionContent):
		return checkpoint.SectionContent, true
	case string(checkpoint.SectionTitle):
		return checkpoint.SectionTitle, true
	case string(checkpoint.SectionCloser):
		return checkpoint.SectionCloser, true
	default:
		return "", false
	}
}
