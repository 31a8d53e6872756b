package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/narrative"
	"paperdeck/internal/services"
	"paperdeck/internal/services/llm"
	"paperdeck/internal/stage"
)

func newEnhanceNotesCommand(ctx *commandContext) *cobra.Command {
	var styleFlag string

	cmd := &cobra.Command{
		Use:   "enhance-notes <project>",
		Short: "Rewrite planned talking points as spoken narration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectKey := strings.TrimSpace(args[0])
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.LLM.APIKey == "" {
				return services.Wrap(services.ErrConfiguration, "enhance", "preflight",
					"llm.api_key is required (set it in the config file or export LLM_API_KEY)", nil)
			}

			store, state, cmdCtx, err := ctx.loadProject(cmd.Context(), projectKey)
			if err != nil {
				return err
			}
			if err := stage.NewPlan(state, store.ProjectDir(projectKey)).CheckEnhance(); err != nil {
				return err
			}

			catalog, err := narrative.LoadCatalog(cfg.Narrative.StylesFile)
			if err != nil {
				return err
			}
			styleName := strings.TrimSpace(styleFlag)
			if styleName == "" {
				styleName = cfg.Narrative.Style
			}
			profile, err := catalog.Lookup(styleName)
			if err != nil {
				return err
			}

			client := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				Referer:        cfg.LLM.Referer,
				Title:          cfg.LLM.Title,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})
			enhancer := narrative.NewEnhancer(client, ctx.ensureLogger(),
				cfg.Narrative.MaxWorkers, cfg.Narrative.ContextChars)

			report, err := enhancer.Enhance(cmdCtx, state, profile)
			if err != nil {
				return err
			}
			if err := store.Save(state); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, outcome := range report.Outcomes {
				if outcome.Status == checkpoint.NarrativeFailed && outcome.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "slide %02d: %v\n", outcome.Index, outcome.Err)
				}
			}
			fmt.Fprintf(out, "Narration (%s): %d enhanced, %d skipped, %d failed\n",
				profile.Name, report.Enhanced, report.Skipped, report.Failed)
			// Per-section failures are partial gaps, not a command failure:
			// the structured notes remain usable and re-running retries them.
			if aggErr := report.Err(); aggErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", aggErr)
				fmt.Fprintf(out, "Re-run enhance-notes to retry the failed slides.\n")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&styleFlag, "style", "", "Narration style profile (defaults to narrative.style)")
	return cmd
}
