// Package checkpoint defines the durable pipeline state document and its
// file-backed store.
//
// PipelineState is the single source of truth threading every stage: planning
// creates it, prompt export and image import read and update it, narrative
// enhancement rewrites its speaker notes, and assembly consumes it. Saves are
// atomic (temp file plus rename) so a crash never corrupts the previous
// snapshot, and loads refuse malformed documents outright because slide
// correlation depends on section order being trustworthy.
//
// The store provides no cross-process locking. Concurrent invocations against
// one project key are a caller error, not a supported mode.
package checkpoint
