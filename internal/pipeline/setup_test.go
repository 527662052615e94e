package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurolearn/lecture-pipeline/internal/config"
)

func TestNewFromConfig_RequiresConfig(t *testing.T) {
	_, _, err := NewFromConfig(context.Background(), nil, nil)
	assert.Error(t, err)

	cfg := config.Defaults()
	_, _, err = NewFromConfig(context.Background(), &cfg, nil)
	var missing *config.MissingConfigError
	assert.ErrorAs(t, err, &missing)
}

func TestNewFromConfig_SendsTranscriptionOptions(t *testing.T) {
	var (
		mu        sync.Mutex
		submitted map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			mu.Lock()
			defer mu.Unlock()
			require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
			_, _ = w.Write([]byte(`{"id":"job-9","status":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v2/transcript/job-9":
			_, _ = w.Write([]byte(`{"id":"job-9","status":"completed","text":"Osmosis moves water."}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.Config{
		TranscriptionAPIKey:  "aai",
		GenerationAPIKey:     "sk-test",
		TranscriptionBaseURL: srv.URL,
		GenerationProvider:   "openai",
		LanguageCode:         "en_us",
		SpeakerLabels:        true,
		ScratchDir:           t.TempDir(),
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	p, closeFn, err := NewFromConfig(context.Background(), &cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	result, err := p.Run(context.Background(), Input{
		AudioURL:    "https://cdn.example.com/lecture.mp3",
		SkipSummary: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Osmosis moves water.", result.Transcript)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "https://cdn.example.com/lecture.mp3", submitted["audio_url"])
	assert.Equal(t, true, submitted["speaker_labels"])
	assert.Equal(t, "en_us", submitted["language_code"])
}
