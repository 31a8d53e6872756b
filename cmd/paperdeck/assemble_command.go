package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperdeck/internal/deck"
	"paperdeck/internal/ledger"
	"paperdeck/internal/stage"
)

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	var runFlag string

	cmd := &cobra.Command{
		Use:   "assemble <project>",
		Short: "Assemble the presentation from a run's images and narration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectKey := strings.TrimSpace(args[0])
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, state, cmdCtx, err := ctx.loadProject(cmd.Context(), projectKey)
			if err != nil {
				return err
			}
			projectDir := store.ProjectDir(projectKey)
			run, err := resolveRun(projectDir, runFlag)
			if err != nil {
				return err
			}
			if err := stage.NewPlan(state, projectDir).CheckAssemble(run); err != nil {
				return err
			}

			assembler := deck.NewAssembler(ctx.ensureLogger(), deck.Geometry{
				WidthEMU:  cfg.Deck.SlideWidthEMU,
				HeightEMU: cfg.Deck.SlideHeightEMU,
			})
			result, err := assembler.Assemble(cmdCtx, state, run)
			if err != nil {
				return err
			}
			if err := store.Save(state); err != nil {
				return err
			}
			ctx.withLedger(func(l *ledger.Ledger) error {
				return l.RecordAssemble(cmdCtx, projectKey, run.ID, result.DeckPath)
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Assembled %d slides to %s\n", result.SlideCount, result.DeckPath)
			if result.Placeholders > 0 {
				fmt.Fprintf(out, "%d slide(s) used a placeholder image; import the missing images and assemble again.\n",
					result.Placeholders)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runFlag, "run", "", "Run identifier (defaults to the latest run)")
	return cmd
}
