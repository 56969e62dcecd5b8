package provider

import (
	"context"
	"fmt"
	"os"
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// EnvKeys maps each provider to the environment variable carrying its
// API key.
var EnvKeys = map[Provider]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// New creates a client for the named provider, reading the API key from
// the environment. An empty model keeps the provider default.
func New(ctx context.Context, name, model string) (Client, error) {
	p := Provider(name)
	envKey, ok := EnvKeys[p]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (valid: openai, anthropic, gemini)", name)
	}

	apiKey := os.Getenv(envKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%s not set", envKey)
	}

	switch p {
	case ProviderOpenAI:
		client := NewOpenAIClient(apiKey)
		if model != "" {
			client.SetModel(model)
		}
		return client, nil

	case ProviderAnthropic:
		client := NewAnthropicClient(apiKey)
		if model != "" {
			client.SetModel(model)
		}
		return client, nil

	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey, model)
	}

	return nil, fmt.Errorf("unknown provider %q", name)
}
