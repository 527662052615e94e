// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/neurolearn/lecture-pipeline/internal/pipeline"
	"github.com/neurolearn/lecture-pipeline/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewLines is how many wrapped lines of prose are shown
	previewLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// wrap breaks prose into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// preview wraps text and keeps the first previewLines lines.
func preview(text string) string {
	lines := wrap(text, boxWidth-4)
	if len(lines) > previewLines {
		more := len(lines) - previewLines
		lines = append(lines[:previewLines], fmt.Sprintf("... %d more lines", more))
	}
	return strings.Join(lines, "\n")
}

// PrintTranscript outputs the transcript size and its opening lines.
func (p *Printer) PrintTranscript(transcript string) {
	if strings.TrimSpace(transcript) == "" {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Words:    %d\n", len(strings.Fields(transcript))))
	sb.WriteString(fmt.Sprintf("Chars:    %d\n\n", len(transcript)))
	sb.WriteString(preview(transcript))

	p.printBox("TRANSCRIPT", sb.String())
}

// PrintSummary outputs the generated summary or answer.
func (p *Printer) PrintSummary(title, summary string) {
	if strings.TrimSpace(summary) == "" {
		return
	}
	if title == "" {
		title = "SUMMARY"
	}
	p.printBox(strings.ToUpper(title), preview(summary))
}

// PrintCurriculum outputs sections with their first lessons, marking free previews.
func (p *Printer) PrintCurriculum(doc *types.CurriculumDocument) {
	if doc == nil || len(doc.Sections) == 0 {
		return
	}

	lessons, free := 0, 0
	for _, s := range doc.Sections {
		lessons += len(s.Lessons)
		for _, l := range s.Lessons {
			if l.IsFree {
				free++
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d sections, %d lessons (%d free)\n\n", len(doc.Sections), lessons, free))

	count := min(len(doc.Sections), maxItemsToShow)
	for i := 0; i < count; i++ {
		section := doc.Sections[i]
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, section.Title))

		shown := min(len(section.Lessons), 3)
		for j := 0; j < shown; j++ {
			lesson := section.Lessons[j]
			marker := "•"
			if lesson.IsFree {
				marker = "★"
			}
			sb.WriteString(fmt.Sprintf("   %s %s\n", marker, lesson.Title))
		}
		if len(section.Lessons) > shown {
			sb.WriteString(fmt.Sprintf("   ... and %d more\n", len(section.Lessons)-shown))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(doc.Sections) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more sections", len(doc.Sections)-maxItemsToShow))
	}

	p.printBox("CURRICULUM", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQuiz outputs questions with their options, ticking the correct ones.
func (p *Printer) PrintQuiz(questions []types.Question) {
	if len(questions) == 0 {
		return
	}

	single, multiple := 0, 0
	for _, q := range questions {
		if q.QuestionType == types.MultipleChoice {
			multiple++
		} else {
			single++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d questions (%d single, %d multiple)\n\n", len(questions), single, multiple))

	count := min(len(questions), maxItemsToShow)
	for i := 0; i < count; i++ {
		q := questions[i]
		sb.WriteString(fmt.Sprintf("Q%d [%s] %s\n", q.QuestionNumber, q.QuestionType, q.Title))

		correct := make(map[string]bool, len(q.CorrectAnswerIDs))
		for _, id := range q.CorrectAnswerIDs {
			correct[id] = true
		}
		for _, o := range q.Options {
			mark := " "
			if correct[o.ID] {
				mark = "✓"
			}
			sb.WriteString(fmt.Sprintf("  %s %s\n", mark, o.Text))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(questions) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more questions", len(questions)-maxItemsToShow))
	}

	p.printBox("QUIZ", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult prints whichever parts of a pipeline result are present.
func (p *Printer) PrintResult(result *types.Result) {
	if result == nil {
		return
	}
	p.PrintTranscript(result.Transcript)
	p.PrintSummary("SUMMARY", result.Summary)
	p.PrintCurriculum(result.Curriculum)
	p.PrintQuiz(result.Questions)
}

// PrintProgress outputs one pipeline step as a single line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", event.Category, event.Message)
}
