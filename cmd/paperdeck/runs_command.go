package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"paperdeck/internal/ledger"
	"paperdeck/internal/stage"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [project]",
		Short: "List recorded artifact runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectKey := ""
			if len(args) == 1 {
				projectKey = strings.TrimSpace(args[0])
			}

			var entries []ledger.Entry
			ctx.withLedger(func(l *ledger.Ledger) error {
				var err error
				entries, err = l.List(cmd.Context(), projectKey)
				return err
			})

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				if projectKey != "" {
					return listRunsFromDisk(ctx, projectKey, cmd)
				}
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				deckPath := entry.DeckPath
				if deckPath == "" {
					deckPath = "-"
				}
				rows = append(rows, []string{
					entry.ProjectKey,
					entry.RunID,
					fmt.Sprintf("%d", entry.SlideCount),
					fmt.Sprintf("%d/%d", entry.Resolved, entry.SlideCount),
					yesNo(deckPath != "-"),
					entry.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Project", "Run", "Slides", "Resolved", "Deck", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	return cmd
}

// listRunsFromDisk falls back to scanning the project's run directories when
// the ledger has no record, so pre-ledger projects still list correctly.
func listRunsFromDisk(ctx *commandContext, projectKey string, cmd *cobra.Command) error {
	store, err := ctx.store()
	if err != nil {
		return err
	}
	runs, err := stage.ListRuns(store.ProjectDir(projectKey))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs found for project %s.\n", projectKey)
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{run.ID, run.PromptsDir(), yesNo(run.HasDeck())})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Prompts", "Deck"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
	return nil
}
