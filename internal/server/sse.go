package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// SSE event names.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

// DefaultHeartbeatInterval keeps idle streams open through proxies while a
// transcription job is polled.
const DefaultHeartbeatInterval = 15 * time.Second

// SSEWriter writes Server-Sent Events. It is safe for concurrent use.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sends the stream headers and returns a writer for the events.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one named event with a JSON payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.write(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload))
}

// WriteError sends the error body and the status the plain endpoint would use.
func (s *SSEWriter) WriteError(err error) error {
	return s.WriteEvent(EventError, streamError{ErrorBody: NewErrorBody(err), Status: HTTPStatus(err)})
}

// WriteComplete sends the final event of a stream.
func (s *SSEWriter) WriteComplete(runID, status string) error {
	return s.WriteEvent(EventComplete, map[string]string{
		"run_id": runID,
		"status": status,
	})
}

// StartHeartbeat writes a comment line every interval until ctx is done or the
// returned stop function is called. stop waits for the last write to finish.
func (s *SSEWriter) StartHeartbeat(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.write(": keepalive\n\n") != nil {
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (s *SSEWriter) write(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// streamError is the data of an error event. Status is the code the plain
// endpoint would have answered with.
type streamError struct {
	ErrorBody
	Status int `json:"status"`
}
