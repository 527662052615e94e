package pipeline

import "fmt"

// IngestionError reports a request whose inputs cannot be used: nothing to work
// from, conflicting sources, an unreadable upload, or bad mode parameters.
type IngestionError struct {
	Message string
	Cause   error
}

func (e *IngestionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ingestion error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("ingestion error: %s", e.Message)
}

func (e *IngestionError) Unwrap() error {
	return e.Cause
}
