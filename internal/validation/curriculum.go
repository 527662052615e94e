package validation

import (
	"encoding/json"
	"strings"

	"github.com/neurolearn/lecture-pipeline/internal/schemas"
	"github.com/neurolearn/lecture-pipeline/internal/types"
)

// ModeCurriculum labels curriculum output errors.
const ModeCurriculum = "curriculum"

// ParseCurriculum coerces model text into a CurriculumDocument. The result always
// has at least one section and every section at least one lesson.
func ParseCurriculum(text string) (*types.CurriculumDocument, error) {
	value, err := decodeJSON(ModeCurriculum, text)
	if err != nil {
		return nil, err
	}

	root, err := rootObject(value, "sections", "curriculum")
	if err != nil {
		return nil, &OutputShapeError{Mode: ModeCurriculum, Message: "unexpected document shape", Raw: text, Cause: err}
	}

	if err := schemas.ValidateDocument(schemas.CurriculumSchema, string(root)); err != nil {
		return nil, &OutputShapeError{Mode: ModeCurriculum, Message: "document does not match curriculum shape", Raw: text, Cause: err}
	}

	var doc types.CurriculumDocument
	if err := json.Unmarshal(root, &doc); err != nil {
		return nil, &OutputShapeError{Mode: ModeCurriculum, Message: "document does not match curriculum shape", Raw: text, Cause: err}
	}

	RepairCurriculum(&doc)
	return &doc, nil
}

// RepairCurriculum trims titles and marks the first lesson as a free preview when
// no lesson is free.
func RepairCurriculum(doc *types.CurriculumDocument) {
	anyFree := false
	for i := range doc.Sections {
		s := &doc.Sections[i]
		s.Title = strings.TrimSpace(s.Title)
		s.Description = strings.TrimSpace(s.Description)
		for j := range s.Lessons {
			s.Lessons[j].Title = strings.TrimSpace(s.Lessons[j].Title)
			anyFree = anyFree || s.Lessons[j].IsFree
		}
	}

	if !anyFree && len(doc.Sections) > 0 && len(doc.Sections[0].Lessons) > 0 {
		doc.Sections[0].Lessons[0].IsFree = true
	}
}
