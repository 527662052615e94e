package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/neurolearn/lecture-pipeline/internal/generation"
	"github.com/neurolearn/lecture-pipeline/internal/observability"
	"github.com/neurolearn/lecture-pipeline/internal/pipeline"
	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [audio-file]",
	Short: "Transcribe a recording, optionally summarizing it",
	Long: `Transcribe a local audio file or a hosted recording (--url). With --summarize the
transcript is also summarized using --prompt or the default instruction.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranscribe,
}

var (
	transcribeURL       string
	transcribeSummarize bool
	transcribePrompt    string
	transcribeOut       string
	transcribeVerbose   bool
)

func init() {
	transcribeCmd.Flags().StringVar(&transcribeURL, "url", "", "URL of a hosted recording (instead of a local file)")
	transcribeCmd.Flags().BoolVarP(&transcribeSummarize, "summarize", "s", false, "Also summarize the transcript")
	transcribeCmd.Flags().StringVarP(&transcribePrompt, "prompt", "p", "", "Summary instruction (implies --summarize)")
	transcribeCmd.Flags().StringVarP(&transcribeOut, "out", "o", "", "Write the JSON result to this file instead of stdout")
	transcribeCmd.Flags().BoolVarP(&transcribeVerbose, "verbose", "v", false, "Print progress and a readable result")
	rootCmd.AddCommand(transcribeCmd)
}

// transcribeOptions is the flag state of one transcribe invocation.
type transcribeOptions struct {
	File      string
	URL       string
	Summarize bool
	Prompt    string
}

// buildTranscribeInput turns flags into a pipeline input. The returned closer
// releases any opened file.
func buildTranscribeInput(opts transcribeOptions) (pipeline.Input, func(), error) {
	noop := func() {}
	opts.URL = strings.TrimSpace(opts.URL)

	switch {
	case opts.File == "" && opts.URL == "":
		return pipeline.Input{}, noop, fmt.Errorf("an audio file argument or --url is required")
	case opts.File != "" && opts.URL != "":
		return pipeline.Input{}, noop, fmt.Errorf("provide either an audio file or --url, not both")
	}

	in := pipeline.Input{
		Mode:        generation.ModeSummarize,
		AudioURL:    opts.URL,
		SkipSummary: !opts.Summarize && opts.Prompt == "",
		Params:      generation.Params{Instruction: opts.Prompt},
		RunID:       uuid.NewString(),
	}
	if opts.File == "" {
		return in, noop, nil
	}

	upload, f, err := openUpload(opts.File)
	if err != nil {
		return pipeline.Input{}, noop, err
	}
	in.Audio = upload
	return in, func() { _ = f.Close() }, nil
}

func runTranscribe(_ *cobra.Command, args []string) error {
	opts := transcribeOptions{
		URL:       transcribeURL,
		Summarize: transcribeSummarize,
		Prompt:    transcribePrompt,
	}
	if len(args) == 1 {
		opts.File = args[0]
	}

	in, closeInput, err := buildTranscribeInput(opts)
	if err != nil {
		return err
	}
	defer closeInput()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	printer := observability.NewPrinter(os.Stderr)
	if transcribeVerbose {
		in.OnProgress = printer.PrintProgress
	}

	result, err := rt.pipeline.Run(ctx, in)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if transcribeVerbose {
		printer.PrintResult(result)
	}
	return writeResult(os.Stdout, result, transcribeOut)
}
