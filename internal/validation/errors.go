// Package validation coerces generated model text into curriculum and quiz documents,
// repairing recoverable inconsistencies and rejecting unrecoverable shapes.
package validation

import "fmt"

// maxRawInError caps how much model text is echoed in Error().
const maxRawInError = 200

// OutputShapeError means the model output could not be coerced into the document
// required by Mode. Raw is the full offending text.
type OutputShapeError struct {
	Mode    string
	Message string
	Raw     string
	Cause   error
}

func (e *OutputShapeError) Error() string {
	msg := fmt.Sprintf("invalid %s output: %s", e.Mode, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *OutputShapeError) Unwrap() error {
	return e.Cause
}

// Excerpt returns the start of Raw for log lines.
func (e *OutputShapeError) Excerpt() string {
	r := []rune(e.Raw)
	if len(r) <= maxRawInError {
		return e.Raw
	}
	return string(r[:maxRawInError]) + "..."
}
