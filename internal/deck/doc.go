// Package deck assembles the final presentation: one full-bleed image slide
// per planned section with speaker notes, serialized as a minimal Office Open
// XML package.
package deck
