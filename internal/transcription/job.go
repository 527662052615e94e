// Package transcription drives asynchronous speech-to-text jobs against an
// AssemblyAI-compatible REST API: upload, submit, then poll until a terminal state.
package transcription

// Status is the lifecycle state of a transcription job as reported by the service.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Job is a transcription job snapshot. Text is set only when completed and Error
// only when the service rejected the job.
type Job struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Source selects the audio for a job. When URL is set the upload step is skipped.
type Source struct {
	URL  string
	Path string
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type submitRequest struct {
	AudioURL      string `json:"audio_url"`
	LanguageCode  string `json:"language_code,omitempty"`
	SpeakerLabels bool   `json:"speaker_labels,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}
