// Package types provides type definitions for the structured documents produced by the lecture pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// QuestionType is the answer cardinality of a quiz question.
type QuestionType string

const (
	// SingleChoice questions have exactly one correct option
	SingleChoice QuestionType = "single-choice"
	// MultipleChoice questions have two or more correct options
	MultipleChoice QuestionType = "multiple-choice"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	return t == SingleChoice || t == MultipleChoice
}

// QuizDocument is an ordered set of quiz questions.
type QuizDocument struct {
	Questions []Question `json:"questions"`
}

// Question is a single quiz item
type Question struct {
	ID               string       `json:"id"`
	QuestionNumber   int          `json:"questionNumber"`
	Title            string       `json:"title"`
	QuestionType     QuestionType `json:"questionType"`
	Options          []Option     `json:"options"`
	CorrectAnswerIDs []string     `json:"correctAnswerIds"`
	Points           string       `json:"points"`
	IsRequired       bool         `json:"isRequired"`
	QuestionImage    *string      `json:"questionImage"`
}

// Option is one answer choice
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// HasOption reports whether id names one of the question's options.
func (q *Question) HasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// QuestionConfig requests count questions of one type.
type QuestionConfig struct {
	Type  QuestionType `json:"type" validate:"required,oneof=single-choice multiple-choice"`
	Count int          `json:"count" validate:"gte=1,lte=50"`
}

// TotalQuestions sums the counts of all configs.
func TotalQuestions(configs []QuestionConfig) int {
	total := 0
	for _, c := range configs {
		total += c.Count
	}
	return total
}
