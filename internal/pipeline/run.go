// Package pipeline provides the request-scoped orchestration of a lecture run:
// store uploads, extract document text, transcribe audio, generate once, and
// validate the output for the requested mode.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/neurolearn/lecture-pipeline/internal/generation"
	"github.com/neurolearn/lecture-pipeline/internal/ingestion"
	"github.com/neurolearn/lecture-pipeline/internal/logging"
	"github.com/neurolearn/lecture-pipeline/internal/tempstore"
	"github.com/neurolearn/lecture-pipeline/internal/transcription"
	"github.com/neurolearn/lecture-pipeline/internal/types"
	"github.com/neurolearn/lecture-pipeline/internal/validation"
)

// Transcriber runs a transcription job to a terminal state.
type Transcriber interface {
	Transcribe(ctx context.Context, src transcription.Source) (*transcription.Job, error)
}

// Generator issues the single generation call for a request.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (string, error)
}

// Upload is a file supplied by the caller.
type Upload struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Input holds one request's sources and parameters.
type Input struct {
	Mode        generation.Mode
	Audio       *Upload
	AudioURL    string
	Transcript  string
	SkipSummary bool
	Document    *Upload
	Params      generation.Params
	RunID       string
	OnProgress  ProgressCallback
}

// Pipeline holds the collaborators shared by all requests. It keeps no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	store       *tempstore.Store
	extractor   *ingestion.Extractor
	transcriber Transcriber
	generator   Generator
	logger      *logging.Logger
}

// New creates a Pipeline. A nil logger discards output.
func New(store *tempstore.Store, extractor *ingestion.Extractor, transcriber Transcriber, generator Generator, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Nop()
	}
	if extractor == nil {
		extractor = ingestion.NewExtractor(logger)
	}
	return &Pipeline{
		store:       store,
		extractor:   extractor,
		transcriber: transcriber,
		generator:   generator,
		logger:      logger,
	}
}

// progress serializes callback invocations from the concurrent branches.
type progress struct {
	mu    sync.Mutex
	cb    ProgressCallback
	runID string
}

func (p *progress) emit(step, category, message string, content any) {
	if p.cb == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cb(ProgressEvent{
		Step:     step,
		Category: category,
		Message:  message,
		RunID:    p.runID,
		Content:  content,
	})
}

// Run executes one request. Scratch files are removed before it returns.
//
// Errors are typed by category: *IngestionError for unusable input,
// *transcription.UpstreamError and *llm.APICallError for upstream failures,
// *transcription.TimeoutError when the job outlives its budget, and
// *validation.OutputShapeError when the model output cannot be coerced.
func (p *Pipeline) Run(ctx context.Context, in Input) (*types.Result, error) {
	if in.Mode == "" {
		in.Mode = generation.ModeSummarize
	}
	if err := checkSources(in); err != nil {
		return nil, err
	}

	logger := p.logger.With("mode", string(in.Mode), "run_id", in.RunID)
	prog := &progress{cb: in.OnProgress, runID: in.RunID}

	transcript := strings.TrimSpace(in.Transcript)
	needsTranscription := transcript == "" && (in.Audio != nil || in.AudioURL != "")

	var docFile, audioFile *tempstore.File
	if in.Document != nil {
		f, err := p.storeUpload(ctx, in.Document, "document")
		if err != nil {
			return nil, err
		}
		defer p.cleanup(f)
		docFile = f
		prog.emit(StepStored, CategoryIngestion, fmt.Sprintf("Stored document (%d bytes)", f.Size), nil)
	}
	if needsTranscription && in.AudioURL == "" {
		f, err := p.storeUpload(ctx, in.Audio, "audio")
		if err != nil {
			return nil, err
		}
		defer p.cleanup(f)
		audioFile = f
		prog.emit(StepStored, CategoryIngestion, fmt.Sprintf("Stored audio (%d bytes)", f.Size), nil)
	}

	var docText string
	g, gctx := errgroup.WithContext(ctx)

	if docFile != nil {
		kind := ingestion.DetectKind(in.Document.ContentType, in.Document.Name)
		g.Go(func() error {
			docText = p.extractor.Extract(gctx, docFile.Path, kind, in.Mode.TextLimit())
			logger.Debug("document extracted", "kind", string(kind), "chars", len(docText))
			prog.emit(StepDocumentExtracted, CategoryIngestion,
				fmt.Sprintf("Extracted %d characters from %s document", len(docText), kind), nil)
			return nil
		})
	}

	if needsTranscription {
		src := transcription.Source{URL: in.AudioURL}
		if audioFile != nil {
			src.Path = audioFile.Path
		}
		g.Go(func() error {
			prog.emit(StepTranscriptionStart, CategoryTranscription, "Transcription job started", nil)
			job, err := p.transcriber.Transcribe(gctx, src)
			if err != nil {
				return err
			}
			transcript = strings.TrimSpace(job.Text)
			prog.emit(StepTranscriptReady, CategoryTranscription,
				fmt.Sprintf("Transcript ready (%d characters)", len(transcript)), nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error("transcription failed", "error", err)
		return nil, err
	}

	if in.SkipSummary {
		logger.Info("returning transcript without generation")
		return &types.Result{Transcript: transcript}, nil
	}

	req, err := generation.NewRequest(in.Mode, contextText(in.Mode, transcript, docText), in.Params)
	if err != nil {
		return nil, &IngestionError{Message: "invalid request parameters", Cause: err}
	}

	prog.emit(StepGenerationStarted, CategoryGeneration, "Generating "+string(in.Mode)+" output", nil)
	text, err := p.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	prog.emit(StepGenerationFinished, CategoryGeneration, fmt.Sprintf("Model returned %d characters", len(text)), nil)

	result, err := buildResult(req, transcript, text)
	if err != nil {
		logger.Warn("model output rejected", "error", err)
		return nil, err
	}
	prog.emit(StepOutputValidated, CategoryValidation, "Output validated", result)
	return result, nil
}

// buildResult validates model text for the request's mode.
func buildResult(req generation.Request, transcript, text string) (*types.Result, error) {
	switch req.Mode() {
	case generation.ModeCurriculum:
		doc, err := validation.ParseCurriculum(text)
		if err != nil {
			return nil, err
		}
		return &types.Result{Curriculum: doc}, nil
	case generation.ModeQuiz:
		doc, err := validation.ParseQuiz(text, req.QuestionTotal())
		if err != nil {
			return nil, err
		}
		return &types.Result{Questions: doc.Questions}, nil
	default:
		return &types.Result{Transcript: transcript, Summary: strings.TrimSpace(text)}, nil
	}
}

// contextText joins the available sources, primary first. Documents lead for
// curriculum and quiz; the transcript leads otherwise.
func contextText(mode generation.Mode, transcript, docText string) string {
	primary, secondary := transcript, docText
	if mode.Structured() {
		primary, secondary = docText, transcript
	}
	switch {
	case primary == "":
		return secondary
	case secondary == "":
		return primary
	default:
		return primary + "\n\n" + secondary
	}
}

func checkSources(in Input) error {
	if in.Audio != nil && in.AudioURL != "" {
		return &IngestionError{Message: "supply either audio or audioUrl, not both"}
	}
	if in.AudioURL != "" {
		u, err := url.Parse(in.AudioURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &IngestionError{Message: "audioUrl must be an absolute http or https URL", Cause: err}
		}
	}

	hasSpeech := strings.TrimSpace(in.Transcript) != "" || in.Audio != nil || in.AudioURL != ""
	if in.SkipSummary && !hasSpeech {
		return &IngestionError{Message: "skipSummary requires audio, audioUrl or transcript"}
	}
	if !in.Mode.Structured() && !hasSpeech && in.Document == nil {
		return &IngestionError{Message: "no audio, audioUrl, transcript or document provided"}
	}
	return nil
}

func (p *Pipeline) storeUpload(ctx context.Context, u *Upload, label string) (*tempstore.File, error) {
	if u.Content == nil {
		return nil, &IngestionError{Message: label + " upload is empty"}
	}
	f, err := p.store.Store(ctx, u.Content, u.Name)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, tempstore.ErrTooLarge) {
			return nil, &IngestionError{Message: label + " upload exceeds size limit", Cause: err}
		}
		return nil, &IngestionError{Message: "failed to store " + label, Cause: err}
	}
	return f, nil
}

func (p *Pipeline) cleanup(f *tempstore.File) {
	if err := f.Remove(); err != nil {
		p.logger.Warn("failed to remove scratch directory", "dir", f.Dir, "error", err)
	}
}
