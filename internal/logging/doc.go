// Package logging builds the slog loggers used across the pipeline.
//
// It supports a compact console format for interactive use and JSON for log
// shipping, fans output to stderr plus an optional log file, and standardizes
// the attribute keys (component, project, stage, slide_index) that stages
// attach via context so one slide's journey can be traced across stages.
package logging
