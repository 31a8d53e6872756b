// Package services provides shared helpers for the pipeline stages: sentinel
// errors that classify failures for exit-status decisions, and context
// annotation utilities for correlating logs across stage boundaries.
//
// Stages wrap their errors with services.Wrap so callers can distinguish
// configuration problems (fail fast, non-zero exit) from per-slide external
// service failures (recorded and reported, pipeline continues).
package services
