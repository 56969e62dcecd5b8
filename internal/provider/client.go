// Package provider holds thin adapters over the LLM HTTP APIs used to
// generate docstrings. Each client surfaces provider errors directly;
// the only retry behavior is exponential backoff on rate limits.
package provider

import "context"

// Client is the interface every LLM provider implements.
type Client interface {
	// Complete sends a system and user prompt and returns the model's
	// text response.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// SetModel overrides the model used for completions.
	SetModel(model string)
	// Model returns the model currently in use.
	Model() string
}

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.1
)
