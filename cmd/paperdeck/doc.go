// Package main hosts the paperdeck CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into pipeline
// stage executions: planning a checkpoint, exporting image prompts, importing
// generated artifacts, enhancing speaker notes, and assembling the deck. It
// centralizes configuration resolution and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
