package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"paperdeck/internal/ledger"
	"paperdeck/internal/logging"
	"paperdeck/internal/prompts"
	"paperdeck/internal/services/llm"
	"paperdeck/internal/stage"
)

func newExportPromptsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-prompts <project>",
		Short: "Export per-slide image prompts into a new run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectKey := strings.TrimSpace(args[0])
			store, state, cmdCtx, err := ctx.loadProject(cmd.Context(), projectKey)
			if err != nil {
				return err
			}
			projectDir := store.ProjectDir(projectKey)
			if err := stage.NewPlan(state, projectDir).CheckExport(); err != nil {
				return err
			}

			style := resolveCustomStyle(cmdCtx, ctx, state.Meta.CustomStyle, cmd)

			run := stage.NewRun(projectDir, time.Now())
			exporter := prompts.NewExporter(ctx.ensureLogger())
			result, err := exporter.Export(cmdCtx, state, run, style)
			if err != nil {
				return err
			}
			if err := store.Save(state); err != nil {
				return err
			}
			ctx.withLedger(func(l *ledger.Ledger) error {
				return l.RecordExport(cmdCtx, projectKey, run.ID, result.Count)
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d prompts to %s\n", result.Count, run.PromptsDir())
			fmt.Fprintf(out, "Follow %s in that directory, then run: paperdeck import-images %s\n",
				prompts.InstructionsFilename, projectKey)
			return nil
		},
	}
	return cmd
}

// resolveCustomStyle normalizes a free-text style description into structured
// hints. Style processing is best effort: when the service is unavailable the
// export proceeds with the raw description dropped and a warning printed.
func resolveCustomStyle(cmdCtx context.Context, ctx *commandContext, description string, cmd *cobra.Command) *prompts.ProcessedStyle {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil || cfg.LLM.APIKey == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: custom style requires llm.api_key; using the default style hints")
		return nil
	}

	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	processed, err := prompts.ProcessCustomStyle(cmdCtx, client, description)
	if err != nil {
		ctx.ensureLogger().Warn("custom style processing failed", logging.Error(err))
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: custom style processing failed; using the default style hints")
		return nil
	}
	return &processed
}
