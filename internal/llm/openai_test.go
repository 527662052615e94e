package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := ConfigFor(ProviderOpenAI, "")
	cfg.BaseURL = srv.URL + "/v1/"
	client, err := NewOpenAIClient(cfg, "test-key")
	require.NoError(t, err)
	return client
}

// responseWithText builds a completed Responses API body whose only output is text.
func responseWithText(t *testing.T, text string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id": "resp_1", "object": "response", "created_at": 1700000000,
		"status": "completed", "model": "gpt-4o-mini",
		"output": []any{map[string]any{
			"type": "message", "id": "msg_1", "status": "completed", "role": "assistant",
			"content": []any{map[string]any{"type": "output_text", "text": text, "annotations": []any{}}},
		}},
	})
	require.NoError(t, err)
	return raw
}

func TestOpenAIClient_Generate(t *testing.T) {
	var body map[string]any
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"resp_1","object":"response","created_at":1700000000,"status":"completed","model":"gpt-4o-mini","output":[{"type":"message","id":"msg_1","status":"completed","role":"assistant","content":[{"type":"output_text","text":"The lecture covers cells.","annotations":[]}]}]}`))
	})

	text, err := client.Generate(context.Background(), Prompt{System: "Be brief.", User: "Summarize"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "The lecture covers cells.", text)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	input, ok := body["input"].([]any)
	require.True(t, ok)
	assert.Len(t, input, 2)
}

func TestOpenAIClient_GenerateJSONReturnsReplyUnmodified(t *testing.T) {
	reply := "Here is the outline [4 sections]:\n```json\n{\"sections\": []}\n```"
	var body map[string]any
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(responseWithText(t, "  "+reply+"\n"))
	})

	text, err := client.Generate(context.Background(), Prompt{User: "Return JSON"}, Options{JSON: true})
	require.NoError(t, err)
	assert.Equal(t, reply, text)

	format, ok := body["text"].(map[string]any)["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
}

func TestOpenAIClient_UpstreamErrorIsSingleCall(t *testing.T) {
	var calls int32
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})

	_, err := client.Generate(context.Background(), Prompt{User: "Summarize"}, Options{})
	require.Error(t, err)

	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ProviderOpenAI, apiErr.Provider)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewClient_Providers(t *testing.T) {
	_, err := NewClient(context.Background(), ConfigFor(ProviderOpenAI, ""), "")
	assert.Error(t, err)

	c, err := NewClient(context.Background(), ConfigFor(ProviderOpenAI, ""), "key")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.Model())
	assert.NoError(t, c.Close())

	_, err = NewClient(context.Background(), &Config{Provider: "anthropic"}, "key")
	assert.Error(t, err)
}
