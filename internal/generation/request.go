// Package generation builds mode-specific prompts and issues the single generation call
// for a pipeline request.
package generation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/neurolearn/lecture-pipeline/internal/ingestion"
	"github.com/neurolearn/lecture-pipeline/internal/types"
)

// Mode selects the output document and prompt templates.
type Mode string

const (
	ModeSummarize  Mode = "summarize"
	ModeCurriculum Mode = "curriculum"
	ModeQuiz       Mode = "quiz"
	// ModeQA answers the caller's question from the transcript. It shares the
	// summarize output shape.
	ModeQA Mode = "qa"
)

// Context text bounds per mode, in runes.
const (
	CurriculumTextLimit = 20000
	QuizTextLimit       = 12000
	SummaryTextLimit    = 20000
)

// DefaultInstruction is used when a summarize request carries no prompt.
const DefaultInstruction = "Summarize this lecture"

var validate = validator.New()

// ParseMode maps a form value to a Mode. Unknown or empty values select summarize.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCurriculum:
		return ModeCurriculum
	case ModeQuiz:
		return ModeQuiz
	case ModeQA:
		return ModeQA
	default:
		return ModeSummarize
	}
}

// Structured reports whether the mode produces a JSON document.
func (m Mode) Structured() bool {
	return m == ModeCurriculum || m == ModeQuiz
}

// TextLimit is the context bound for the mode.
func (m Mode) TextLimit() int {
	switch m {
	case ModeCurriculum:
		return CurriculumTextLimit
	case ModeQuiz:
		return QuizTextLimit
	default:
		return SummaryTextLimit
	}
}

// CurriculumParams are the caller's course fields.
type CurriculumParams struct {
	Title       string
	Subtitle    string
	Description string
	Overview    string
	Topics      []string
	Level       string
	Duration    string
}

// QuizParams are the caller's exam fields.
type QuizParams struct {
	ExamTitle       string
	DifficultyLevel string
	Topic           string
	QuestionConfigs []types.QuestionConfig `validate:"dive"`
}

// DefaultQuestionConfigs is used when a quiz request names no distribution.
func DefaultQuestionConfigs() []types.QuestionConfig {
	return []types.QuestionConfig{{Type: types.SingleChoice, Count: 5}}
}

// Params holds every mode's parameters; only the active mode's are read.
type Params struct {
	Instruction string
	Curriculum  CurriculumParams
	Quiz        QuizParams
}

// ParamError reports a request parameter that cannot be used.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Request is an immutable generation request.
type Request struct {
	mode        Mode
	contextText string
	params      Params
}

// NewRequest validates params for mode and bounds contextText to the mode's limit.
func NewRequest(mode Mode, contextText string, params Params) (Request, error) {
	params = cloneParams(params)
	contextText = strings.TrimSpace(contextText)

	switch mode {
	case ModeSummarize, ModeQA:
		if contextText == "" {
			return Request{}, &ParamError{Field: "transcript", Message: "no transcript to work from"}
		}
		if strings.TrimSpace(params.Instruction) == "" {
			if mode == ModeQA {
				return Request{}, &ParamError{Field: "prompt", Message: "a question is required"}
			}
			params.Instruction = DefaultInstruction
		}
	case ModeCurriculum:
		c := params.Curriculum
		if contextText == "" && strings.TrimSpace(c.Title) == "" && len(c.Topics) == 0 {
			return Request{}, &ParamError{Field: "title", Message: "a title, topics or source material is required"}
		}
	case ModeQuiz:
		q := &params.Quiz
		if len(q.QuestionConfigs) == 0 {
			q.QuestionConfigs = DefaultQuestionConfigs()
		}
		if err := validate.Struct(q); err != nil {
			return Request{}, &ParamError{Field: "questionConfigs", Message: describe(err)}
		}
		if contextText == "" && strings.TrimSpace(q.Topic) == "" && strings.TrimSpace(q.ExamTitle) == "" {
			return Request{}, &ParamError{Field: "topic", Message: "a topic, exam title or source material is required"}
		}
	default:
		return Request{}, &ParamError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", mode)}
	}

	return Request{
		mode:        mode,
		contextText: ingestion.Truncate(contextText, mode.TextLimit()),
		params:      params,
	}, nil
}

// Mode returns the request mode.
func (r Request) Mode() Mode { return r.mode }

// ContextText returns the bounded transcript or document text.
func (r Request) ContextText() string { return r.contextText }

// Params returns a copy of the request parameters.
func (r Request) Params() Params { return cloneParams(r.params) }

// QuestionTotal is the number of quiz questions requested.
func (r Request) QuestionTotal() int {
	return types.TotalQuestions(r.params.Quiz.QuestionConfigs)
}

func cloneParams(p Params) Params {
	p.Curriculum.Topics = append([]string(nil), p.Curriculum.Topics...)
	p.Quiz.QuestionConfigs = append([]types.QuestionConfig(nil), p.Quiz.QuestionConfigs...)
	return p
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if ve, ok := err.(validator.ValidationErrors); ok {
		verrs = ve
	}
	if len(verrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
