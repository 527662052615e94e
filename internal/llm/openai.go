package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIClient implements Client over the OpenAI Responses API.
type OpenAIClient struct {
	api    openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client. SDK retries are disabled so each
// Generate is a single upstream call.
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		api:    openai.NewClient(opts...),
		config: config,
	}, nil
}

// Generate sends the system and user messages as one Responses request.
func (c *OpenAIClient) Generate(ctx context.Context, prompt Prompt, opts Options) (string, error) {
	if c.config.Model == "" {
		return "", &APICallError{Provider: ProviderOpenAI, Message: "no model configured"}
	}

	items := make(responses.ResponseInputParam, 0, 2)
	if prompt.System != "" {
		items = append(items, responses.ResponseInputItemParamOfMessage(prompt.System, responses.EasyInputMessageRoleSystem))
	}
	items = append(items, responses.ResponseInputItemParamOfMessage(prompt.User, responses.EasyInputMessageRoleUser))

	params := responses.ResponseNewParams{
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: items},
		Model: shared.ResponsesModel(c.config.Model),
	}
	if c.config.Temperature > 0 {
		params.Temperature = openai.Float(float64(c.config.Temperature))
	}
	if opts.JSON {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
		}
	}

	resp, err := c.api.Responses.New(ctx, params)
	if err != nil {
		apiErr := &APICallError{Provider: ProviderOpenAI, Message: "failed to generate content", Cause: err}
		var oerr *openai.Error
		if errors.As(err, &oerr) {
			apiErr.StatusCode = oerr.StatusCode
			if oerr.Message != "" {
				apiErr.Message = oerr.Message
			}
		}
		return "", apiErr
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", &APICallError{Provider: ProviderOpenAI, Message: "empty response"}
	}
	return text, nil
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the SDK holds no long-lived resources.
func (c *OpenAIClient) Close() error {
	return nil
}
