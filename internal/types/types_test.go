package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_JSONMarshaling(t *testing.T) {
	q := Question{
		ID:             "q1",
		QuestionNumber: 1,
		Title:          "Which organelle produces ATP?",
		QuestionType:   SingleChoice,
		Options: []Option{
			{ID: "o1", Text: "Mitochondrion"},
			{ID: "o2", Text: "Ribosome"},
		},
		CorrectAnswerIDs: []string{"o1"},
		Points:           "1",
		IsRequired:       true,
	}

	jsonBytes, err := json.MarshalIndent(q, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"questionNumber": 1`)
	assert.Contains(t, string(jsonBytes), `"questionType": "single-choice"`)
	assert.Contains(t, string(jsonBytes), `"correctAnswerIds": [`)
	assert.Contains(t, string(jsonBytes), `"points": "1"`)
	assert.Contains(t, string(jsonBytes), `"isRequired": true`)
	assert.Contains(t, string(jsonBytes), `"questionImage": null`)
}

func TestCurriculumDocument_JSONUnmarshaling(t *testing.T) {
	jsonInput := `{
		"sections": [
			{"title": "Foundations", "description": "Basics", "lessons": [{"title": "Cells", "isFree": true}, {"title": "Membranes"}]},
			{"title": "Genetics", "lessons": [{"title": "DNA"}]}
		]
	}`

	var doc CurriculumDocument
	require.NoError(t, json.Unmarshal([]byte(jsonInput), &doc))
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Basics", doc.Sections[0].Description)
	assert.True(t, doc.Sections[0].Lessons[0].IsFree)
	assert.False(t, doc.Sections[0].Lessons[1].IsFree)
	assert.Equal(t, 3, doc.LessonCount())

	out, err := json.Marshal(doc.Sections[1])
	require.NoError(t, err)
	assert.NotContains(t, string(out), "description")
}

func TestQuestionType_Valid(t *testing.T) {
	assert.True(t, SingleChoice.Valid())
	assert.True(t, MultipleChoice.Valid())
	assert.False(t, QuestionType("true-false").Valid())
	assert.False(t, QuestionType("").Valid())
}

func TestQuestion_HasOption(t *testing.T) {
	q := Question{Options: []Option{{ID: "o1"}, {ID: "o2"}}}
	assert.True(t, q.HasOption("o2"))
	assert.False(t, q.HasOption("o3"))
}

func TestTotalQuestions(t *testing.T) {
	configs := []QuestionConfig{
		{Type: SingleChoice, Count: 2},
		{Type: MultipleChoice, Count: 1},
	}
	assert.Equal(t, 3, TotalQuestions(configs))
	assert.Equal(t, 0, TotalQuestions(nil))
}

func TestResult_OmitsUnusedShapes(t *testing.T) {
	out, err := json.Marshal(Result{Transcript: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"transcript":"hello"}`, string(out))

	out, err = json.Marshal(Result{Curriculum: &CurriculumDocument{Sections: []Section{}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"curriculum":{"sections":[]}}`, string(out))
}
