package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/neurolearn/lecture-pipeline/internal/generation"
	"github.com/neurolearn/lecture-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionConfigs(t *testing.T) {
	assert.Nil(t, questionConfigs(0, 0))
	assert.Equal(t, []types.QuestionConfig{{Type: types.SingleChoice, Count: 3}}, questionConfigs(3, 0))
	assert.Equal(t, []types.QuestionConfig{
		{Type: types.SingleChoice, Count: 2},
		{Type: types.MultipleChoice, Count: 1},
	}, questionConfigs(2, 1))
}

func TestBuildGenerateInput_CurriculumFromDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syllabus.txt")
	require.NoError(t, os.WriteFile(path, []byte("Week 1: cells"), 0644))

	in, closeInput, err := buildGenerateInput(generateOptions{
		Mode: "Curriculum",
		File: path,
		Curriculum: generation.CurriculumParams{
			Title:  "Intro to Biology",
			Topics: []string{"Cells", "Genetics"},
		},
	})
	require.NoError(t, err)
	defer closeInput()

	assert.Equal(t, generation.ModeCurriculum, in.Mode)
	require.NotNil(t, in.Document)
	assert.Equal(t, "syllabus.txt", in.Document.Name)
	assert.Equal(t, "Intro to Biology", in.Params.Curriculum.Title)
	assert.Equal(t, []string{"Cells", "Genetics"}, in.Params.Curriculum.Topics)
	assert.Nil(t, in.Audio)
}

func TestBuildGenerateInput_QuizWithoutSources(t *testing.T) {
	in, closeInput, err := buildGenerateInput(generateOptions{
		Mode:           "quiz",
		Quiz:           generation.QuizParams{Topic: "Cell Biology"},
		SingleChoice:   2,
		MultipleChoice: 1,
	})
	require.NoError(t, err)
	defer closeInput()

	assert.Equal(t, generation.ModeQuiz, in.Mode)
	assert.Equal(t, "Cell Biology", in.Params.Quiz.Topic)
	assert.Len(t, in.Params.Quiz.QuestionConfigs, 2)
}

func TestBuildGenerateInput_QAFromTranscriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.txt")
	require.NoError(t, os.WriteFile(path, []byte("Osmosis moves water."), 0644))

	in, closeInput, err := buildGenerateInput(generateOptions{
		Mode:           "qa",
		TranscriptFile: path,
		Prompt:         "What is osmosis?",
	})
	require.NoError(t, err)
	defer closeInput()

	assert.Equal(t, generation.ModeQA, in.Mode)
	assert.Equal(t, "Osmosis moves water.", in.Transcript)
	assert.Equal(t, "What is osmosis?", in.Params.Instruction)
}

func TestBuildGenerateInput_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opts generateOptions
		want string
	}{
		{"unknown mode", generateOptions{Mode: "essay", URL: "https://x/a.mp3"}, "unknown mode"},
		{"negative count", generateOptions{Mode: "quiz", SingleChoice: -1}, "must not be negative"},
		{"summary without source", generateOptions{Mode: "summarize"}, "summarize needs one of"},
		{"missing transcript file", generateOptions{Mode: "qa", TranscriptFile: filepath.Join(dir, "nope.txt")}, "failed to read transcript"},
		{"missing document", generateOptions{Mode: "curriculum", File: filepath.Join(dir, "nope.pdf")}, "failed to open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, closeInput, err := buildGenerateInput(tt.opts)
			closeInput()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteResult_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")

	err := writeResult(nil, &types.Result{Summary: "short"}, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"short"}`, string(data))
}

func TestGenerateCommand_UnknownMode(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "generate", "--mode", "essay", "--url", "https://cdn.example.com/a.mp3")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "unknown mode")
}
