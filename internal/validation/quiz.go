package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neurolearn/lecture-pipeline/internal/schemas"
	"github.com/neurolearn/lecture-pipeline/internal/types"
)

// ModeQuiz labels quiz output errors.
const ModeQuiz = "quiz"

const defaultPoints = "1"

type rawQuiz struct {
	Questions []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	ID               json.RawMessage   `json:"id"`
	Title            string            `json:"title"`
	Options          []rawOption       `json:"options"`
	CorrectAnswerIDs []json.RawMessage `json:"correctAnswerIds"`
	Points           json.RawMessage   `json:"points"`
	QuestionImage    *string           `json:"questionImage"`
}

type rawOption struct {
	ID   json.RawMessage `json:"id"`
	Text string          `json:"text"`
}

// ParseQuiz coerces model text into a QuizDocument. When limit is positive, questions
// beyond it are dropped.
//
// Every returned question satisfies: correctAnswerIds is a non-empty subset of its
// option ids, and questionType is single-choice exactly when there is one answer.
func ParseQuiz(text string, limit int) (*types.QuizDocument, error) {
	value, err := decodeJSON(ModeQuiz, text)
	if err != nil {
		return nil, err
	}

	root, err := rootObject(value, "questions", "quiz")
	if err != nil {
		return nil, &OutputShapeError{Mode: ModeQuiz, Message: "unexpected document shape", Raw: text, Cause: err}
	}

	if err := schemas.ValidateDocument(schemas.QuizSchema, string(root)); err != nil {
		return nil, &OutputShapeError{Mode: ModeQuiz, Message: "document does not match quiz shape", Raw: text, Cause: err}
	}

	var raw rawQuiz
	if err := json.Unmarshal(root, &raw); err != nil {
		return nil, &OutputShapeError{Mode: ModeQuiz, Message: "document does not match quiz shape", Raw: text, Cause: err}
	}

	if limit > 0 && len(raw.Questions) > limit {
		raw.Questions = raw.Questions[:limit]
	}

	doc, err := repairQuiz(raw)
	if err != nil {
		return nil, &OutputShapeError{Mode: ModeQuiz, Message: "unrepairable question", Raw: text, Cause: err}
	}
	return doc, nil
}

func repairQuiz(raw rawQuiz) (*types.QuizDocument, error) {
	questionIDs := make([]string, len(raw.Questions))
	for i, q := range raw.Questions {
		questionIDs[i] = scalarString(q.ID)
	}
	questionIDs, _ = normalizeIDs(questionIDs, "q")

	doc := &types.QuizDocument{Questions: make([]types.Question, 0, len(raw.Questions))}
	for i, rq := range raw.Questions {
		q, err := repairQuestion(rq, questionIDs[i], i+1)
		if err != nil {
			return nil, err
		}
		doc.Questions = append(doc.Questions, q)
	}
	return doc, nil
}

func repairQuestion(rq rawQuestion, id string, number int) (types.Question, error) {
	optionIDs := make([]string, len(rq.Options))
	for i, o := range rq.Options {
		optionIDs[i] = scalarString(o.ID)
	}
	optionIDs, renamed := normalizeIDs(optionIDs, "o")

	q := types.Question{
		ID:             id,
		QuestionNumber: number,
		Title:          strings.TrimSpace(rq.Title),
		Options:        make([]types.Option, len(rq.Options)),
		Points:         scalarString(rq.Points),
		IsRequired:     true,
	}
	for i, o := range rq.Options {
		q.Options[i] = types.Option{ID: optionIDs[i], Text: strings.TrimSpace(o.Text)}
	}
	if q.Points == "" {
		q.Points = defaultPoints
	}
	if rq.QuestionImage != nil && strings.TrimSpace(*rq.QuestionImage) != "" {
		img := strings.TrimSpace(*rq.QuestionImage)
		q.QuestionImage = &img
	}

	seen := make(map[string]bool)
	for _, a := range rq.CorrectAnswerIDs {
		optID := resolveAnswer(scalarString(a), q.Options, renamed)
		if optID == "" || seen[optID] {
			continue
		}
		seen[optID] = true
		q.CorrectAnswerIDs = append(q.CorrectAnswerIDs, optID)
	}

	switch len(q.CorrectAnswerIDs) {
	case 0:
		return types.Question{}, fmt.Errorf("question %d has no correct answer matching its options", number)
	case 1:
		q.QuestionType = types.SingleChoice
	default:
		q.QuestionType = types.MultipleChoice
	}
	return q, nil
}

// normalizeIDs returns ids unchanged when all are present and unique. Otherwise every
// id is replaced with prefix{n}, and the returned map sends each original id to the
// replacement of its first occurrence.
func normalizeIDs(ids []string, prefix string) ([]string, map[string]string) {
	seen := make(map[string]bool, len(ids))
	clean := true
	for _, id := range ids {
		if id == "" || seen[id] {
			clean = false
			break
		}
		seen[id] = true
	}
	if clean {
		return ids, nil
	}

	out := make([]string, len(ids))
	renamed := make(map[string]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
		if _, ok := renamed[id]; id != "" && !ok {
			renamed[id] = out[i]
		}
	}
	return out, renamed
}

// resolveAnswer maps a model-supplied answer to an option id. It accepts the option
// id, an original id that was renamed, the option letter (A, B, ...) or the option text.
func resolveAnswer(answer string, options []types.Option, renamed map[string]string) string {
	if answer == "" {
		return ""
	}
	if newID, ok := renamed[answer]; ok {
		return newID
	}
	for _, o := range options {
		if o.ID == answer {
			return o.ID
		}
	}
	if len(answer) == 1 {
		idx := int(strings.ToUpper(answer)[0]) - 'A'
		if idx >= 0 && idx < len(options) {
			return options[idx].ID
		}
	}
	for _, o := range options {
		if strings.EqualFold(o.Text, answer) {
			return o.ID
		}
	}
	return ""
}
