package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a Gemini client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// Generate runs one GenerateContent call with the prompt's system instruction.
func (c *GeminiClient) Generate(ctx context.Context, prompt Prompt, opts Options) (string, error) {
	if c.config.Model == "" {
		return "", &APICallError{Provider: ProviderGemini, Message: "no model configured"}
	}

	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(c.config.Temperature)
	if prompt.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(prompt.System))
	}
	if opts.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", geminiError(err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", &APICallError{Provider: ProviderGemini, Message: "empty response", Cause: err}
	}
	return strings.TrimSpace(text), nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.config.Model
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// geminiError maps SDK failures to *APICallError, keeping the HTTP status when
// the API reported one.
func geminiError(err error) *APICallError {
	apiErr := &APICallError{Provider: ProviderGemini, Message: "failed to generate content", Cause: err}

	var gerr *googleapi.Error
	var blocked *genai.BlockedError
	switch {
	case errors.As(err, &gerr):
		apiErr.StatusCode = gerr.Code
		if gerr.Message != "" {
			apiErr.Message = gerr.Message
		}
	case errors.As(err, &blocked):
		apiErr.Message = "response blocked by safety filters"
	}
	return apiErr
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("no content in response (finish reason %s)", candidate.FinishReason)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("no text parts in response")
	}
	return sb.String(), nil
}
