// Package llm talks to the narrative-generation service through any
// OpenAI-compatible chat completion endpoint.
//
// CompleteText returns free-form prose for speaker-note enhancement;
// CompleteJSON returns structured payloads for custom style processing.
// Transient HTTP failures, rate limits, and empty responses are retried with
// capped exponential backoff; everything else surfaces immediately so the
// caller can record a per-slide failure and move on.
package llm
