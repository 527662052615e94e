package generation

import (
	"context"
	"errors"

	"github.com/neurolearn/lecture-pipeline/internal/llm"
	"github.com/neurolearn/lecture-pipeline/internal/logging"
)

// Orchestrator turns a Request into raw model text with exactly one upstream call.
type Orchestrator struct {
	client llm.Client
	logger *logging.Logger
}

// NewOrchestrator creates an Orchestrator. A nil logger discards output.
func NewOrchestrator(client llm.Client, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{client: client, logger: logger}
}

// Generate builds the prompt for req and calls the model once. There is no retry and
// no fallback model; failures surface as *llm.APICallError.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (string, error) {
	prompt := BuildPrompt(req)

	o.logger.Info("generation started",
		"mode", string(req.Mode()),
		"model", o.client.Model(),
		"context_chars", len(req.ContextText()),
	)

	text, err := o.client.Generate(ctx, prompt, llm.Options{JSON: req.Mode().Structured()})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var apiErr *llm.APICallError
		if !errors.As(err, &apiErr) {
			err = &llm.APICallError{Message: "generation failed", Cause: err}
		}
		o.logger.Error("generation failed", "mode", string(req.Mode()), "error", err)
		return "", err
	}

	o.logger.Debug("generation finished", "mode", string(req.Mode()), "output_chars", len(text))
	return text, nil
}
