// Package prompts exports per-slide image generation prompts and establishes
// the artifact naming convention the rest of the pipeline consumes.
//
// Each export creates one prompt text file and one empty expected-image
// directory per section, both named after the section's 1-based positional
// index. That index is the only correlation key: the importer and assembler
// match artifacts back to sections through it, never through listing order.
package prompts
