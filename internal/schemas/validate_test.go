package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemas_ValidJSONSchema(t *testing.T) {
	for _, name := range []string{CurriculumSchema, QuizSchema} {
		t.Run(name, func(t *testing.T) {
			content, err := Load(name)
			require.NoError(t, err)

			var v map[string]any
			require.NoError(t, json.Unmarshal([]byte(content), &v))
			assert.Equal(t, "object", v["type"])

			_, err = compile(name)
			assert.NoError(t, err)
		})
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("missing.schema.json")
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "missing.schema.json", loadErr.Path)
}

func TestValidateDocument_Curriculum(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantError bool
	}{
		{
			name:      "valid",
			json:      `{"sections": [{"title": "Intro", "description": null, "lessons": [{"title": "Welcome", "isFree": true}]}]}`,
			wantError: false,
		},
		{
			name:      "sections is a string",
			json:      `{"sections": "Intro, Basics"}`,
			wantError: true,
		},
		{
			name:      "empty sections",
			json:      `{"sections": []}`,
			wantError: true,
		},
		{
			name:      "empty lessons",
			json:      `{"sections": [{"title": "Intro", "lessons": []}]}`,
			wantError: true,
		},
		{
			name:      "missing sections",
			json:      `{"modules": []}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(CurriculumSchema, tt.json)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateDocument_Quiz(t *testing.T) {
	valid := `{"questions": [{"id": 1, "title": "Q?", "options": [{"id": "a", "text": "A"}, {"text": "B"}], "correctAnswerIds": ["a"], "points": 2}]}`
	assert.NoError(t, ValidateDocument(QuizSchema, valid))

	err := ValidateDocument(QuizSchema, `{"questions": [{"title": "Q?", "options": "A or B"}]}`)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Summary(), "options")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	assert.Equal(t, "schema validation failed: name: is required; age: must be a number", err.Error())
	assert.Equal(t, "name: is required; age: must be a number", err.Summary())
}
