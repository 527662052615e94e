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
	"github.com/neurolearn/lecture-pipeline/internal/types"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a curriculum, quiz, summary, or answer from course material",
	Long: `Generate structured course content from a document (--file), a transcript file
(--transcript-file), a hosted recording (--url), or a combination of document and speech.

Examples:
  lecture_pipeline generate --mode curriculum --file syllabus.pdf --title "Intro to Biology" --topics Cells,Genetics
  lecture_pipeline generate --mode quiz --file notes.docx --topic "Cell Biology" --single-choice 3 --multiple-choice 2
  lecture_pipeline generate --mode qa --url https://cdn.example.com/lecture.mp3 --prompt "What is osmosis?"`,
	RunE: runGenerate,
}

var (
	genMode           string
	genFile           string
	genTranscriptFile string
	genURL            string
	genPrompt         string
	genTitle          string
	genSubtitle       string
	genDescription    string
	genOverview       string
	genTopics         []string
	genLevel          string
	genDuration       string
	genExamTitle      string
	genDifficulty     string
	genTopic          string
	genSingleChoice   int
	genMultipleChoice int
	genOut            string
	genVerbose        bool
)

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genMode, "mode", "m", string(generation.ModeCurriculum), "Output mode: curriculum, quiz, summarize, or qa")
	f.StringVarP(&genFile, "file", "f", "", "Document to use as context (PDF, DOCX, or text)")
	f.StringVar(&genTranscriptFile, "transcript-file", "", "Text file holding an existing transcript")
	f.StringVar(&genURL, "url", "", "URL of a hosted recording to transcribe first")
	f.StringVarP(&genPrompt, "prompt", "p", "", "Instruction for summarize, or the question for qa")

	f.StringVar(&genTitle, "title", "", "Course title (curriculum)")
	f.StringVar(&genSubtitle, "subtitle", "", "Course subtitle (curriculum)")
	f.StringVar(&genDescription, "description", "", "Course description (curriculum)")
	f.StringVar(&genOverview, "overview", "", "Course overview (curriculum)")
	f.StringSliceVar(&genTopics, "topics", nil, "Course topics, comma separated or repeated (curriculum)")
	f.StringVar(&genLevel, "level", "", "Course level (curriculum)")
	f.StringVar(&genDuration, "duration", "", "Course duration (curriculum)")

	f.StringVar(&genExamTitle, "exam-title", "", "Exam title (quiz)")
	f.StringVar(&genDifficulty, "difficulty", "", "Difficulty level (quiz)")
	f.StringVar(&genTopic, "topic", "", "Exam topic (quiz)")
	f.IntVar(&genSingleChoice, "single-choice", 0, "Number of single-choice questions (quiz)")
	f.IntVar(&genMultipleChoice, "multiple-choice", 0, "Number of multiple-choice questions (quiz)")

	f.StringVarP(&genOut, "out", "o", "", "Write the JSON result to this file instead of stdout")
	f.BoolVarP(&genVerbose, "verbose", "v", false, "Print progress and a readable result")
	rootCmd.AddCommand(generateCmd)
}

// generateOptions is the flag state of one generate invocation.
type generateOptions struct {
	Mode           string
	File           string
	TranscriptFile string
	URL            string
	Prompt         string
	Curriculum     generation.CurriculumParams
	Quiz           generation.QuizParams
	SingleChoice   int
	MultipleChoice int
}

// questionConfigs builds quiz configs from per-type counts. Zero counts are
// omitted; when both are zero the request falls back to the default mix.
func questionConfigs(single, multiple int) []types.QuestionConfig {
	var configs []types.QuestionConfig
	if single > 0 {
		configs = append(configs, types.QuestionConfig{Type: types.SingleChoice, Count: single})
	}
	if multiple > 0 {
		configs = append(configs, types.QuestionConfig{Type: types.MultipleChoice, Count: multiple})
	}
	return configs
}

// buildGenerateInput turns flags into a pipeline input. The returned closer
// releases any opened file.
func buildGenerateInput(opts generateOptions) (pipeline.Input, func(), error) {
	noop := func() {}
	if opts.SingleChoice < 0 || opts.MultipleChoice < 0 {
		return pipeline.Input{}, noop, fmt.Errorf("question counts must not be negative")
	}

	mode := generation.ParseMode(opts.Mode)
	if opts.Mode != "" && string(mode) != strings.ToLower(strings.TrimSpace(opts.Mode)) {
		return pipeline.Input{}, noop, fmt.Errorf("unknown mode %q (use curriculum, quiz, summarize, or qa)", opts.Mode)
	}

	in := pipeline.Input{
		Mode:     mode,
		AudioURL: strings.TrimSpace(opts.URL),
		RunID:    uuid.NewString(),
		Params: generation.Params{
			Instruction: opts.Prompt,
			Curriculum:  opts.Curriculum,
			Quiz:        opts.Quiz,
		},
	}
	in.Params.Quiz.QuestionConfigs = questionConfigs(opts.SingleChoice, opts.MultipleChoice)

	if opts.TranscriptFile != "" {
		data, err := os.ReadFile(opts.TranscriptFile)
		if err != nil {
			return pipeline.Input{}, noop, fmt.Errorf("failed to read transcript: %w", err)
		}
		in.Transcript = string(data)
	}

	if opts.File == "" {
		if !mode.Structured() && in.Transcript == "" && in.AudioURL == "" {
			return pipeline.Input{}, noop, fmt.Errorf("%s needs one of --file, --transcript-file, or --url", mode)
		}
		return in, noop, nil
	}

	upload, f, err := openUpload(opts.File)
	if err != nil {
		return pipeline.Input{}, noop, err
	}
	in.Document = upload
	return in, func() { _ = f.Close() }, nil
}

func runGenerate(_ *cobra.Command, _ []string) error {
	in, closeInput, err := buildGenerateInput(generateOptions{
		Mode:           genMode,
		File:           genFile,
		TranscriptFile: genTranscriptFile,
		URL:            genURL,
		Prompt:         genPrompt,
		Curriculum: generation.CurriculumParams{
			Title:       genTitle,
			Subtitle:    genSubtitle,
			Description: genDescription,
			Overview:    genOverview,
			Topics:      genTopics,
			Level:       genLevel,
			Duration:    genDuration,
		},
		Quiz: generation.QuizParams{
			ExamTitle:       genExamTitle,
			DifficultyLevel: genDifficulty,
			Topic:           genTopic,
		},
		SingleChoice:   genSingleChoice,
		MultipleChoice: genMultipleChoice,
	})
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
	if genVerbose {
		in.OnProgress = printer.PrintProgress
	}

	result, err := rt.pipeline.Run(ctx, in)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if genVerbose {
		printer.PrintResult(result)
	}
	return writeResult(os.Stdout, result, genOut)
}
