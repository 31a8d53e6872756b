package main

import (
	"fmt"
	"strings"

	"paperdeck/internal/stage"
)

// resolveRun picks the run a command should operate on: the explicit --run
// value when given, otherwise the most recent run for the project.
func resolveRun(projectDir, runID string) (stage.Run, error) {
	runID = strings.TrimSpace(runID)
	if runID != "" {
		return stage.FindRun(projectDir, runID)
	}
	run, ok, err := stage.LatestRun(projectDir)
	if err != nil {
		return stage.Run{}, err
	}
	if !ok {
		return stage.Run{}, fmt.Errorf("no runs found under %s; run export-prompts first", projectDir)
	}
	return run, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func truncateCell(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
