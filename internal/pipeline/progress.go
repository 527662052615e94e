package pipeline

// Step names reported through ProgressEvent.Step.
const (
	StepStored             = "upload_stored"
	StepDocumentExtracted  = "document_extracted"
	StepTranscriptionStart = "transcription_started"
	StepTranscriptReady    = "transcript_ready"
	StepGenerationStarted  = "generation_started"
	StepGenerationFinished = "generation_finished"
	StepOutputValidated    = "output_validated"
)

// Categories group steps by pipeline stage.
const (
	CategoryIngestion     = "ingestion"
	CategoryTranscription = "transcription"
	CategoryGeneration    = "generation"
	CategoryValidation    = "validation"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. It may be called from
// more than one goroutine.
type ProgressCallback func(event ProgressEvent)
