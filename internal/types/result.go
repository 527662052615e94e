// Package types provides type definitions for the structured documents produced by the lecture pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Result is the response body of a successful pipeline run. Exactly one shape is
// populated per mode: transcript and summary, transcript only, curriculum, or questions.
type Result struct {
	Transcript string              `json:"transcript,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Curriculum *CurriculumDocument `json:"curriculum,omitempty"`
	Questions  []Question          `json:"questions,omitempty"`
}
