// Package stage models the pipeline state machine and run directory layout.
//
// The pipeline progresses planned -> prompts_exported -> images_resolved ->
// narrative_enhanced -> assembled, but not strictly linearly: enhancement and
// image resolution are independent, commutative stages that both write to the
// same checkpoint. Plan evaluates each stage's entry condition from checkpoint
// contents plus filesystem inspection so any stage can be re-entered safely.
//
// Runs are timestamp-named directories under <project>/runs; each export
// creates a new, fully isolated run that later stages reference by identifier.
package stage
