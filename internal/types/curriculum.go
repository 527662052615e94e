// Package types provides type definitions for the structured documents produced by the lecture pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CurriculumDocument is an ordered course outline.
type CurriculumDocument struct {
	Sections []Section `json:"sections"`
}

// Section groups lessons under a heading
type Section struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Lessons     []Lesson `json:"lessons"`
}

// Lesson is a single unit within a section
type Lesson struct {
	Title  string `json:"title"`
	IsFree bool   `json:"isFree"`
}

// LessonCount returns the total number of lessons across all sections.
func (c *CurriculumDocument) LessonCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Lessons)
	}
	return n
}
