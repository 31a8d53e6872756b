package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperdeck/internal/artifacts"
	"paperdeck/internal/ledger"
	"paperdeck/internal/stage"
)

func newImportImagesCommand(ctx *commandContext) *cobra.Command {
	var runFlag string

	cmd := &cobra.Command{
		Use:   "import-images <project>",
		Short: "Scan a run for generated images and correlate them to slides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectKey := strings.TrimSpace(args[0])
			store, state, cmdCtx, err := ctx.loadProject(cmd.Context(), projectKey)
			if err != nil {
				return err
			}
			projectDir := store.ProjectDir(projectKey)
			run, err := resolveRun(projectDir, runFlag)
			if err != nil {
				return err
			}
			if err := stage.NewPlan(state, projectDir).CheckImport(run); err != nil {
				return err
			}

			importer := artifacts.NewImporter(ctx.ensureLogger())
			report, err := importer.Scan(cmdCtx, state, run)
			if err != nil {
				return err
			}
			if err := store.Save(state); err != nil {
				return err
			}
			ctx.withLedger(func(l *ledger.Ledger) error {
				return l.RecordImport(cmdCtx, projectKey, run.ID, report.Resolved, report.Missing)
			})

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(report.Entries))
			for _, entry := range report.Entries {
				rows = append(rows, []string{
					fmt.Sprintf("%02d", entry.Index),
					truncateCell(entry.Title, 40),
					string(entry.Status),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Slide", "Title", "Status"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			for _, warning := range report.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
			}
			fmt.Fprintf(out, "%d resolved, %d missing (run %s)\n", report.Resolved, report.Missing, run.ID)
			if report.AllResolved() {
				fmt.Fprintf(out, "All images resolved. Next: paperdeck enhance-notes %s\n", projectKey)
			} else {
				fmt.Fprintln(out, "Re-run import-images after adding the missing images; the scan picks up new files.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runFlag, "run", "", "Run identifier (defaults to the latest run)")
	return cmd
}
