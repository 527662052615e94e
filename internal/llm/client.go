package llm

import (
	"context"
	"fmt"
)

// Prompt is a system instruction plus the user message it applies to.
type Prompt struct {
	System string
	User   string
}

// Options tune a single generation call.
type Options struct {
	// JSON asks the provider for a JSON document and strips markdown fences from the reply.
	JSON bool
}

// Client is a generative-text provider. Generate issues exactly one upstream
// call; failures are returned as *APICallError.
type Client interface {
	Generate(ctx context.Context, prompt Prompt, opts Options) (string, error)
	Model() string
	Close() error
}

// NewClient creates the client for config.Provider. A nil config selects Gemini.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}
