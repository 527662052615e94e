package generation

import (
	"strconv"
	"strings"

	"github.com/neurolearn/lecture-pipeline/internal/llm"
	"github.com/neurolearn/lecture-pipeline/internal/prompts"
)

const (
	notSpecified    = "Not specified"
	noSourceMessage = "(no source material provided)"
)

// BuildPrompt composes the system instruction and user block for req.
func BuildPrompt(req Request) llm.Prompt {
	switch req.mode {
	case ModeCurriculum:
		return curriculumPrompt(req)
	case ModeQuiz:
		return quizPrompt(req)
	case ModeQA:
		return plainTextPrompt(req, "qa-system", "qa-user")
	default:
		return plainTextPrompt(req, "summarize-system", "summarize-user")
	}
}

// plainTextPrompt prepends the plain ASCII output policy to the mode's instruction.
func plainTextPrompt(req Request, systemKey, userKey string) llm.Prompt {
	system := prompts.MustGet("plain-text-policy") + "\n\n" + prompts.MustGet(systemKey)
	user := prompts.MustRender(userKey, map[string]string{
		"Instruction": strings.TrimSpace(req.params.Instruction),
		"Transcript":  req.contextText,
	})
	return llm.Prompt{System: system, User: user}
}

func curriculumPrompt(req Request) llm.Prompt {
	c := req.params.Curriculum
	user := prompts.MustRender("curriculum-user", map[string]string{
		"Title":       orNotSpecified(c.Title),
		"Subtitle":    orNotSpecified(c.Subtitle),
		"Description": orNotSpecified(c.Description),
		"Overview":    orNotSpecified(c.Overview),
		"Topics":      orNotSpecified(strings.Join(c.Topics, ", ")),
		"Level":       orNotSpecified(c.Level),
		"Duration":    orNotSpecified(c.Duration),
		"Context":     orNoSource(req.contextText),
	})
	return llm.Prompt{System: prompts.MustGet("curriculum-system"), User: user}
}

func quizPrompt(req Request) llm.Prompt {
	q := req.params.Quiz

	lines := make([]string, 0, len(q.QuestionConfigs))
	for _, cfg := range q.QuestionConfigs {
		lines = append(lines, prompts.MustRender("quiz-distribution-line", map[string]string{
			"Count": strconv.Itoa(cfg.Count),
			"Type":  string(cfg.Type),
		}))
	}
	system := prompts.MustRender("quiz-system", map[string]string{
		"Distribution": strings.Join(lines, "\n"),
	})

	user := prompts.MustRender("quiz-user", map[string]string{
		"ExamTitle":  orNotSpecified(q.ExamTitle),
		"Difficulty": orNotSpecified(q.DifficultyLevel),
		"Topic":      orNotSpecified(q.Topic),
		"Total":      strconv.Itoa(req.QuestionTotal()),
		"Context":    orNoSource(req.contextText),
	})
	return llm.Prompt{System: system, User: user}
}

func orNotSpecified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notSpecified
	}
	return s
}

func orNoSource(s string) string {
	if s == "" {
		return noSourceMessage
	}
	return s
}
