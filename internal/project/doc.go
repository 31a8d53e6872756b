// Package project derives stable project keys and presentation titles from
// source document paths. The key anchors the checkpoint directory layout, so
// derivation is deterministic and lossy in only one direction.
package project
