// Package client is a caller-side SDK for the lecture pipeline HTTP API.
//
// Transcripts are cached by source URL for the life of the Client, so asking
// several questions about one recording transcribes it once. The cache is a
// caller convenience; the server itself keeps nothing between requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/neurolearn/lecture-pipeline/internal/types"
)

// DefaultTimeout covers a full transcription poll budget plus generation.
const DefaultTimeout = 15 * time.Minute

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// Error is a failed call to the pipeline API.
type Error struct {
	StatusCode int
	Message    string
	Details    string
	Cause      error
}

func (e *Error) Error() string {
	msg := "pipeline request failed"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the server gave up waiting for transcription.
func (e *Error) Timeout() bool {
	return e.StatusCode == http.StatusGatewayTimeout
}

// Options configures the client.
type Options struct {
	Timeout    time.Duration
	Headers    map[string]string
	HTTPClient *http.Client
	Cache      *TranscriptCache
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{Timeout: DefaultTimeout}
}

// Document is a file sent as generation context.
type Document struct {
	Name    string
	Content io.Reader
}

// CurriculumRequest describes a course to outline. AudioURL, when set, adds the
// recording's transcript as context.
type CurriculumRequest struct {
	Title       string
	Subtitle    string
	Description string
	Overview    string
	Topics      []string
	Level       string
	Duration    string
	AudioURL    string
	Document    *Document
}

// QuizRequest describes an exam to generate.
type QuizRequest struct {
	ExamTitle       string
	DifficultyLevel string
	Topic           string
	QuestionConfigs []types.QuestionConfig
	AudioURL        string
	Document        *Document
}

// Client calls a lecture pipeline server.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	headers  map[string]string
	cache    *TranscriptCache
	inflight singleflight.Group
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{Message: "invalid base URL " + strconv.Quote(baseURL), Cause: err}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewTranscriptCache(DefaultCacheEntries, 0)
	}

	return &Client{
		endpoint: strings.TrimRight(parsed.String(), "/") + "/transcribe",
		http:     hc,
		timeout:  timeout,
		headers:  opts.Headers,
		cache:    cache,
	}, nil
}

// Cache returns the client's transcript cache.
func (c *Client) Cache() *TranscriptCache {
	return c.cache
}

// Transcript returns the transcript of the recording at audioURL. A cached
// transcript is returned without a request, and concurrent calls for the same
// URL share one transcription.
//
// The shared request runs under the client timeout rather than any one
// caller's context. A caller whose ctx ends stops waiting with ctx.Err(), while
// the request carries on for the other callers and the cache.
func (c *Client) Transcript(ctx context.Context, audioURL string) (string, error) {
	key := cacheKey(audioURL)
	if key == "" {
		return "", &Error{Message: "audio URL is required"}
	}
	if transcript, ok := c.cache.Get(key); ok {
		return transcript, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ch := c.inflight.DoChan(key, func() (any, error) {
		if transcript, ok := c.cache.Get(key); ok {
			return transcript, nil
		}
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		result, err := c.post(shared, map[string]string{
			"audioUrl":    key,
			"skipSummary": "true",
		}, nil)
		if err != nil {
			return "", err
		}
		c.cache.Put(key, result.Transcript)
		return result.Transcript, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Summarize summarizes the recording at audioURL. An empty prompt uses the
// server's default instruction.
func (c *Client) Summarize(ctx context.Context, audioURL, prompt string) (*types.Result, error) {
	transcript, err := c.Transcript(ctx, audioURL)
	if err != nil {
		return nil, err
	}
	result, err := c.post(ctx, map[string]string{
		"mode":       "summarize",
		"transcript": transcript,
		"prompt":     prompt,
	}, nil)
	if err != nil {
		return nil, err
	}
	if result.Transcript == "" {
		result.Transcript = transcript
	}
	return result, nil
}

// Ask answers question from the recording at audioURL.
func (c *Client) Ask(ctx context.Context, audioURL, question string) (string, error) {
	transcript, err := c.Transcript(ctx, audioURL)
	if err != nil {
		return "", err
	}
	result, err := c.post(ctx, map[string]string{
		"mode":       "qa",
		"transcript": transcript,
		"prompt":     question,
	}, nil)
	if err != nil {
		return "", err
	}
	return result.Summary, nil
}

// Curriculum generates a course outline.
func (c *Client) Curriculum(ctx context.Context, req CurriculumRequest) (*types.CurriculumDocument, error) {
	fields := map[string]string{
		"mode":        "curriculum",
		"title":       req.Title,
		"subtitle":    req.Subtitle,
		"description": req.Description,
		"overview":    req.Overview,
		"level":       req.Level,
		"duration":    req.Duration,
	}
	if len(req.Topics) > 0 {
		topics, err := json.Marshal(req.Topics)
		if err != nil {
			return nil, &Error{Message: "failed to encode topics", Cause: err}
		}
		fields["topics"] = string(topics)
	}
	if err := c.addTranscript(ctx, fields, req.AudioURL); err != nil {
		return nil, err
	}

	result, err := c.post(ctx, fields, req.Document)
	if err != nil {
		return nil, err
	}
	if result.Curriculum == nil {
		return nil, &Error{Message: "response has no curriculum"}
	}
	return result.Curriculum, nil
}

// Quiz generates exam questions.
func (c *Client) Quiz(ctx context.Context, req QuizRequest) ([]types.Question, error) {
	fields := map[string]string{
		"mode":            "quiz",
		"examTitle":       req.ExamTitle,
		"difficultyLevel": req.DifficultyLevel,
		"topic":           req.Topic,
	}
	if len(req.QuestionConfigs) > 0 {
		configs, err := json.Marshal(req.QuestionConfigs)
		if err != nil {
			return nil, &Error{Message: "failed to encode question configs", Cause: err}
		}
		fields["questionConfigs"] = string(configs)
	}
	if err := c.addTranscript(ctx, fields, req.AudioURL); err != nil {
		return nil, err
	}

	result, err := c.post(ctx, fields, req.Document)
	if err != nil {
		return nil, err
	}
	return result.Questions, nil
}

func (c *Client) addTranscript(ctx context.Context, fields map[string]string, audioURL string) error {
	if cacheKey(audioURL) == "" {
		return nil
	}
	transcript, err := c.Transcript(ctx, audioURL)
	if err != nil {
		return err
	}
	fields["transcript"] = transcript
	return nil
}

// post sends one multipart request and decodes the result.
func (c *Client) post(ctx context.Context, fields map[string]string, doc *Document) (*types.Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, &Error{Message: "failed to encode form", Cause: err}
		}
	}
	if doc != nil && doc.Content != nil {
		part, err := mw.CreateFormFile("file", doc.Name)
		if err != nil {
			return nil, &Error{Message: "failed to encode document", Cause: err}
		}
		if _, err := io.Copy(part, doc.Content); err != nil {
			return nil, &Error{Message: "failed to read document", Cause: err}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Message: "failed to encode form", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, &Error{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{StatusCode: resp.StatusCode}
		var eb struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message, apiErr.Details = eb.Error, eb.Details
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return nil, apiErr
	}

	var result types.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "malformed response body", Cause: err}
	}
	return &result, nil
}
