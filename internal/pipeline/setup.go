package pipeline

import (
	"context"
	"fmt"

	"github.com/neurolearn/lecture-pipeline/internal/config"
	"github.com/neurolearn/lecture-pipeline/internal/generation"
	"github.com/neurolearn/lecture-pipeline/internal/ingestion"
	"github.com/neurolearn/lecture-pipeline/internal/llm"
	"github.com/neurolearn/lecture-pipeline/internal/logging"
	"github.com/neurolearn/lecture-pipeline/internal/tempstore"
	"github.com/neurolearn/lecture-pipeline/internal/transcription"
)

// NewFromConfig wires the production collaborators described by cfg. The
// returned close function releases the generation client.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Pipeline, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}

	transcriber, err := transcription.NewClient(transcription.Config{
		BaseURL:       cfg.TranscriptionBaseURL,
		APIKey:        cfg.TranscriptionAPIKey,
		PollInterval:  cfg.PollInterval(),
		PollTimeout:   cfg.PollTimeout(),
		LanguageCode:  cfg.LanguageCode,
		SpeakerLabels: cfg.SpeakerLabels,
	}, transcription.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create transcription client: %w", err)
	}

	llmConfig := llm.ConfigFor(llm.Provider(cfg.GenerationProvider), cfg.GenerationModel)
	llmClient, err := llm.NewClient(ctx, llmConfig, cfg.GenerationAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	logger.Info("pipeline configured",
		"provider", cfg.GenerationProvider,
		"model", llmClient.Model(),
		"poll_interval", cfg.PollInterval().String(),
		"poll_timeout", cfg.PollTimeout().String(),
	)

	p := New(
		tempstore.New(cfg.ScratchDir, cfg.MaxUploadBytes()),
		ingestion.NewExtractor(logger),
		transcriber,
		generation.NewOrchestrator(llmClient, logger),
		logger,
	)
	return p, llmClient.Close, nil
}
