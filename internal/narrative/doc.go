// Package narrative turns planned talking points into spoken narration using
// an OpenAI-compatible completion service, with selectable voice profiles and
// per-section failure isolation.
package narrative
