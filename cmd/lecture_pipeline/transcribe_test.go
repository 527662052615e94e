package main

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neurolearn/lecture-pipeline/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTranscribeInput_URL(t *testing.T) {
	in, closeInput, err := buildTranscribeInput(transcribeOptions{URL: " https://cdn.example.com/a.mp3 "})
	require.NoError(t, err)
	defer closeInput()

	assert.Equal(t, generation.ModeSummarize, in.Mode)
	assert.Equal(t, "https://cdn.example.com/a.mp3", in.AudioURL)
	assert.Nil(t, in.Audio)
	assert.True(t, in.SkipSummary)
	assert.NotEmpty(t, in.RunID)
}

func TestBuildTranscribeInput_FileWithPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lecture.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3 audio"), 0644))

	in, closeInput, err := buildTranscribeInput(transcribeOptions{File: path, Prompt: "Two sentences"})
	require.NoError(t, err)
	defer closeInput()

	require.NotNil(t, in.Audio)
	assert.Equal(t, "lecture.mp3", in.Audio.Name)
	data, err := io.ReadAll(in.Audio.Content)
	require.NoError(t, err)
	assert.Equal(t, "ID3 audio", string(data))
	assert.False(t, in.SkipSummary, "a prompt implies a summary")
	assert.Equal(t, "Two sentences", in.Params.Instruction)
}

func TestBuildTranscribeInput_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts transcribeOptions
		want string
	}{
		{"no source", transcribeOptions{}, "audio file argument or --url is required"},
		{"both sources", transcribeOptions{File: "a.mp3", URL: "https://x/a.mp3"}, "not both"},
		{"missing file", transcribeOptions{File: filepath.Join(t.TempDir(), "nope.mp3")}, "failed to open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, closeInput, err := buildTranscribeInput(tt.opts)
			closeInput()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTranscribeCommand_MissingSource(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "transcribe")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "an audio file argument or --url is required")
}

func TestTranscribeCommand_MissingAPIKeys(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "transcribe", "--url", "https://cdn.example.com/a.mp3")
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "ASSEMBLYAI_API_KEY=") || strings.HasPrefix(e, "GEMINI_API_KEY=") || strings.HasPrefix(e, "OPENAI_API_KEY=") {
			continue
		}
		env = append(env, e)
	}
	cmd.Env = env
	cmd.Dir = t.TempDir()

	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "missing configuration")
	assert.Contains(t, string(output), "ASSEMBLYAI_API_KEY")
}
