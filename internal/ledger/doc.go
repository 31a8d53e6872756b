// Package ledger keeps a SQLite audit log of artifact runs across projects.
// It records export, import, and assembly outcomes for reporting; the
// per-project checkpoint file remains the pipeline's source of truth.
package ledger
