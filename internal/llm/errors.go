package llm

import "fmt"

// APICallError represents a failed call to the generation provider.
// StatusCode is the upstream HTTP status when the provider reported one.
type APICallError struct {
	Provider   Provider
	StatusCode int
	Message    string
	Cause      error
}

func (e *APICallError) Error() string {
	prefix := "generation call failed"
	if e.Provider != "" {
		prefix = fmt.Sprintf("%s generation call failed", e.Provider)
	}
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("%s (status %d)", prefix, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
