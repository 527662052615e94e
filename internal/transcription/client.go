package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/neurolearn/lecture-pipeline/internal/logging"
)

const (
	// DefaultBaseURL is the AssemblyAI API root.
	DefaultBaseURL = "https://api.assemblyai.com"
	// DefaultPollInterval is the sleep between status fetches.
	DefaultPollInterval = 3 * time.Second
	// DefaultPollTimeout is the wall-clock budget for a job to finish.
	DefaultPollTimeout = 10 * time.Minute

	maxErrorBody = 64 << 10
)

// Config holds the service endpoint and polling policy.
type Config struct {
	BaseURL       string
	APIKey        string
	PollInterval  time.Duration
	PollTimeout   time.Duration
	LanguageCode  string
	SpeakerLabels bool
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces the wall clock used by Poll.
func WithClock(clock Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client talks to the transcription service. It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	clock  Clock
	logger *logging.Logger
}

// NewClient creates a Client, filling zero config values with defaults.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 5 * time.Minute},
		clock:  RealClock(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MaxPolls is the most status fetches Poll will make for one job.
func (c *Client) MaxPolls() int {
	return int(math.Ceil(float64(c.cfg.PollTimeout)/float64(c.cfg.PollInterval))) + 1
}

// Transcribe runs the full job lifecycle for src and returns the completed job.
func (c *Client) Transcribe(ctx context.Context, src Source) (*Job, error) {
	audioURL := src.URL
	if audioURL == "" {
		if src.Path == "" {
			return nil, fmt.Errorf("transcription source has neither URL nor path")
		}
		uploaded, err := c.Upload(ctx, src.Path)
		if err != nil {
			return nil, err
		}
		audioURL = uploaded
	}

	job, err := c.Submit(ctx, audioURL)
	if err != nil {
		return nil, err
	}
	if job.Status == StatusError {
		return nil, &UpstreamError{Stage: StageSubmit, Detail: job.Error}
	}

	return c.Poll(ctx, job.ID)
}

// Upload streams the file at path to the service and returns its hosted URL.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open audio: %w", err)
	}
	defer func() { _ = f.Close() }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/upload", f)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, StageUpload, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", &UpstreamError{Stage: StageUpload, Detail: "response has no upload_url"}
	}

	c.logger.Debug("audio uploaded", "path", path)
	return out.UploadURL, nil
}

// Submit creates a job for audioURL.
func (c *Client) Submit(ctx context.Context, audioURL string) (*Job, error) {
	body, err := json.Marshal(submitRequest{
		AudioURL:      audioURL,
		LanguageCode:  c.cfg.LanguageCode,
		SpeakerLabels: c.cfg.SpeakerLabels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var job Job
	if err := c.do(req, StageSubmit, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, &UpstreamError{Stage: StageSubmit, Detail: "response has no job id"}
	}

	c.logger.Info("transcription job submitted", "job_id", job.ID, "status", string(job.Status))
	return &job, nil
}

// Get fetches the current job snapshot.
func (c *Client) Get(ctx context.Context, id string) (*Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/transcript/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	var job Job
	if err := c.do(req, StagePoll, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Poll fetches the job status every PollInterval until it is completed or errored,
// or the PollTimeout budget elapses. It never fetches again after a terminal state.
func (c *Client) Poll(ctx context.Context, id string) (*Job, error) {
	start := c.clock.Now()
	maxPolls := c.MaxPolls()

	for polls := 1; ; polls++ {
		job, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case StatusCompleted:
			c.logger.Info("transcription completed", "job_id", id, "polls", polls)
			return job, nil
		case StatusError:
			return nil, &UpstreamError{Stage: StagePoll, Detail: job.Error}
		}

		if c.clock.Now().Sub(start) >= c.cfg.PollTimeout || polls >= maxPolls {
			return nil, &TimeoutError{JobID: id, LastStatus: job.Status, Polls: polls, Budget: c.cfg.PollTimeout}
		}

		c.logger.Debug("transcription pending", "job_id", id, "status", string(job.Status), "polls", polls)
		if err := c.clock.Sleep(ctx, c.cfg.PollInterval); err != nil {
			return nil, err
		}
	}
}

// do sends req with the API key and decodes a 2xx JSON body into out. Other
// statuses become an UpstreamError carrying the service's message.
func (c *Client) do(req *http.Request, stage string, out any) error {
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return &UpstreamError{Stage: stage, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{Stage: stage, StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Stage: stage, Detail: "malformed response body", Cause: err}
	}
	return nil
}

func errorDetail(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
