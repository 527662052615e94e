package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/neurolearn/lecture-pipeline/internal/config"
	"github.com/neurolearn/lecture-pipeline/internal/logging"
	"github.com/neurolearn/lecture-pipeline/internal/pipeline"
	"github.com/neurolearn/lecture-pipeline/internal/types"
)

// runtime bundles what every command needs to run the pipeline.
type runtime struct {
	cfg      *config.Config
	logger   *logging.Logger
	pipeline *pipeline.Pipeline
	close    func() error
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	p, closeFn, err := pipeline.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	return &runtime{cfg: cfg, logger: logger, pipeline: p, close: closeFn}, nil
}

func (r *runtime) shutdown() {
	if err := r.close(); err != nil {
		r.logger.Warn("failed to close generation client", "error", err)
	}
	r.logger.Sync()
}

// openUpload opens a local file as a pipeline upload. The caller closes the file.
func openUpload(path string) (*pipeline.Upload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &pipeline.Upload{Name: filepath.Base(path), Content: f}, f, nil
}

// writeResult writes the result as indented JSON to path, or to w when path is empty.
func writeResult(w io.Writer, result *types.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
