package transcription

import (
	"fmt"
	"time"
)

// Stages at which an UpstreamError can occur.
const (
	StageUpload = "upload"
	StageSubmit = "submit"
	StagePoll   = "poll"
)

// UpstreamError means the transcription service failed a request or marked the job
// as errored. Detail carries the service's message verbatim.
type UpstreamError struct {
	Stage      string
	StatusCode int
	Detail     string
	Cause      error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("transcription %s failed", e.Stage)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// TimeoutError means the job did not reach a terminal state within the poll budget.
type TimeoutError struct {
	JobID      string
	LastStatus Status
	Polls      int
	Budget     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transcription job %s still %s after %s (%d polls)", e.JobID, e.LastStatus, e.Budget, e.Polls)
}
