package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.Model)
}

func TestConfigFor(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", ConfigFor(ProviderOpenAI, "").Model)
	assert.Equal(t, "custom", ConfigFor(ProviderOpenAI, "custom").Model)
	assert.Equal(t, "", ConfigFor(Provider("unknown"), "").Model)
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel("custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-flash", config.Model)
	assert.Equal(t, "custom-model", newConfig.Model)
	assert.Equal(t, config.Provider, newConfig.Provider)
}

func TestProviderConstants(t *testing.T) {
	assert.Equal(t, Provider("gemini"), ProviderGemini)
	assert.Equal(t, Provider("openai"), ProviderOpenAI)
}

func TestAPICallError(t *testing.T) {
	err := &APICallError{Provider: ProviderGemini, StatusCode: 429, Message: "quota exceeded"}
	assert.Equal(t, "gemini generation call failed (status 429): quota exceeded", err.Error())
	assert.Nil(t, err.Unwrap())
}
