package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/neurolearn/lecture-pipeline/internal/pipeline"
	"github.com/neurolearn/lecture-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintTranscript(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTranscript("Today we cover the cell membrane and osmosis.")
	output := buf.String()

	assert.Contains(t, output, "TRANSCRIPT")
	assert.Contains(t, output, "Words:    8")
	assert.Contains(t, output, "cell membrane")
}

func TestPrintTranscript_LongIsTruncated(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTranscript(strings.Repeat("mitochondria produce energy ", 100))
	output := buf.String()

	assert.Contains(t, output, "more lines")
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}

func TestPrintTranscript_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTranscript("   ")

	assert.Empty(t, buf.String())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary("", "Cells regulate water through osmosis.")
	p.PrintSummary("answer", "Osmosis moves water across membranes.")
	output := buf.String()

	assert.Contains(t, output, "SUMMARY")
	assert.Contains(t, output, "ANSWER")
	assert.Contains(t, output, "through osmosis")
}

func TestPrintCurriculum(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	doc := &types.CurriculumDocument{
		Sections: []types.Section{
			{
				Title: "Foundations",
				Lessons: []types.Lesson{
					{Title: "What is a cell?", IsFree: true},
					{Title: "Membranes"},
					{Title: "Organelles"},
					{Title: "Cell cycle"},
				},
			},
			{
				Title:   "Genetics",
				Lessons: []types.Lesson{{Title: "DNA"}},
			},
		},
	}

	p.PrintCurriculum(doc)
	output := buf.String()

	assert.Contains(t, output, "CURRICULUM")
	assert.Contains(t, output, "2 sections, 5 lessons (1 free)")
	assert.Contains(t, output, "★ What is a cell?")
	assert.Contains(t, output, "• Membranes")
	assert.Contains(t, output, "... and 1 more")
	assert.NotContains(t, output, "Cell cycle")
	assert.Contains(t, output, "2. Genetics")
}

func TestPrintCurriculum_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCurriculum(nil)
	p.PrintCurriculum(&types.CurriculumDocument{})

	assert.Empty(t, buf.String())
}

func TestPrintQuiz(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	questions := []types.Question{
		{
			ID: "q1", QuestionNumber: 1, Title: "Powerhouse of the cell?",
			QuestionType:     types.SingleChoice,
			Options:          []types.Option{{ID: "o1", Text: "Mitochondria"}, {ID: "o2", Text: "Nucleus"}},
			CorrectAnswerIDs: []string{"o1"},
		},
		{
			ID: "q2", QuestionNumber: 2, Title: "Which are organelles?",
			QuestionType:     types.MultipleChoice,
			Options:          []types.Option{{ID: "o1", Text: "Ribosome"}, {ID: "o2", Text: "Golgi"}, {ID: "o3", Text: "Plasma"}},
			CorrectAnswerIDs: []string{"o1", "o2"},
		},
	}

	p.PrintQuiz(questions)
	output := buf.String()

	assert.Contains(t, output, "QUIZ")
	assert.Contains(t, output, "2 questions (1 single, 1 multiple)")
	assert.Contains(t, output, "Q1 [single-choice] Powerhouse of the cell?")
	assert.Contains(t, output, "✓ Mitochondria")
	assert.Contains(t, output, "  Nucleus")
	assert.Contains(t, output, "✓ Golgi")
}

func TestPrintQuiz_ManyQuestions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	questions := make([]types.Question, 7)
	for i := range questions {
		questions[i] = types.Question{QuestionNumber: i + 1, Title: "Q", QuestionType: types.SingleChoice}
	}

	p.PrintQuiz(questions)

	assert.Contains(t, buf.String(), "... and 2 more questions")
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(&types.Result{Transcript: "spoken words", Summary: "short version"})
	output := buf.String()

	assert.Contains(t, output, "TRANSCRIPT")
	assert.Contains(t, output, "SUMMARY")
	assert.NotContains(t, output, "CURRICULUM")
	assert.NotContains(t, output, "QUIZ")

	buf.Reset()
	p.PrintResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress(pipeline.ProgressEvent{
		Step:     pipeline.StepTranscriptReady,
		Category: pipeline.CategoryTranscription,
		Message:  "Transcript ready",
	})

	assert.Equal(t, "[transcription] Transcript ready\n", buf.String())
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcdefg...", clip("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", clip("éééééééé", 6))
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three four five", 9)
	assert.Equal(t, []string{"one two", "three", "four five"}, lines)
	assert.Empty(t, wrap("   ", 10))
}
