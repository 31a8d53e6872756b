package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/stage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <project>",
		Short: "Show per-stage progress for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectKey := strings.TrimSpace(args[0])
			store, state, _, err := ctx.loadProject(cmd.Context(), projectKey)
			if err != nil {
				return err
			}
			statuses, err := stage.NewPlan(state, store.ProjectDir(projectKey)).Summary()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader(fmt.Sprintf("%s (%s)", state.Title, projectKey), colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Source", statusInfo, state.Meta.SourceDocument, colorize))
			fmt.Fprintln(out, renderStatusLine("Stage", statusInfo, string(state.Stage), colorize))
			for _, status := range statuses {
				kind := statusWarn
				if status.Done {
					kind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine(stageLabel(status.Stage), kind, status.Detail, colorize))
			}
			return nil
		},
	}
	return cmd
}

func stageLabel(s checkpoint.Stage) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	if label == "" {
		return "unknown"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
