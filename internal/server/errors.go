package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/neurolearn/lecture-pipeline/internal/config"
	"github.com/neurolearn/lecture-pipeline/internal/llm"
	"github.com/neurolearn/lecture-pipeline/internal/pipeline"
	"github.com/neurolearn/lecture-pipeline/internal/transcription"
	"github.com/neurolearn/lecture-pipeline/internal/validation"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		ingestionErr  *pipeline.IngestionError
		missingErr    *config.MissingConfigError
		upstreamErr   *transcription.UpstreamError
		timeoutErr    *transcription.TimeoutError
		apiErr        *llm.APICallError
		shapeErr      *validation.OutputShapeError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &ingestionErr):
		return http.StatusBadRequest
	case errors.As(err, &missingErr):
		return http.StatusInternalServerError
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &upstreamErr), errors.As(err, &apiErr), errors.As(err, &shapeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorBody describes err for the caller. Upstream details and raw model
// output are carried verbatim.
func NewErrorBody(err error) ErrorBody {
	var (
		validationErr *ErrValidation
		ingestionErr  *pipeline.IngestionError
		missingErr    *config.MissingConfigError
		upstreamErr   *transcription.UpstreamError
		timeoutErr    *transcription.TimeoutError
		apiErr        *llm.APICallError
		shapeErr      *validation.OutputShapeError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &ingestionErr):
		return ErrorBody{Error: "invalid request", Details: err.Error()}
	case errors.As(err, &missingErr):
		return ErrorBody{Error: "server is missing configuration", Details: err.Error()}
	case errors.As(err, &timeoutErr):
		return ErrorBody{Error: "transcription timed out", Details: err.Error()}
	case errors.As(err, &upstreamErr):
		return ErrorBody{Error: "transcription service error", Details: orError(upstreamErr.Detail, err)}
	case errors.As(err, &apiErr):
		return ErrorBody{Error: "generation service error", Details: orError(apiErr.Message, err)}
	case errors.As(err, &shapeErr):
		return ErrorBody{Error: "invalid model output", Details: shapeErr.Raw}
	default:
		return ErrorBody{Error: "internal error", Details: err.Error()}
	}
}

// isClientAbort reports whether err is the caller going away.
func isClientAbort(err error) bool {
	return errors.Is(err, context.Canceled)
}

func orError(detail string, err error) string {
	if detail != "" {
		return detail
	}
	return err.Error()
}
