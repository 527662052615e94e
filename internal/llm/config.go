// Package llm provides the generative-text client abstraction and its providers.
package llm

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
)

var defaultModels = map[Provider]string{
	ProviderGemini: "gemini-2.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
}

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
	// BaseURL overrides the provider endpoint. Only honored by OpenAI.
	BaseURL string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return ConfigFor(ProviderGemini, "")
}

// ConfigFor returns a configuration for provider, using its default model when
// model is empty.
func ConfigFor(provider Provider, model string) *Config {
	if model == "" {
		model = DefaultModel(provider)
	}
	return &Config{
		Provider:    provider,
		Model:       model,
		Temperature: 0.2,
	}
}

// DefaultModel returns the default model name for a provider, or "" if unknown.
func DefaultModel(provider Provider) string {
	return defaultModels[provider]
}

// WithModel returns a copy of the Config using model.
func (c *Config) WithModel(model string) *Config {
	next := *c
	next.Model = model
	return &next
}
