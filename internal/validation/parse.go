package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/neurolearn/lecture-pipeline/internal/llm"
)

// parseResult is the outcome of one rung of the parse ladder.
type parseResult struct {
	Value json.RawMessage
	Err   error
}

func (r parseResult) ok() bool { return r.Err == nil }

type parseStep func(text string) parseResult

var parseLadder = []parseStep{parseStrict, parseExtracted}

// parseStrict parses the whole trimmed reply as one JSON value. A markdown fence
// wrapping the entire reply is removed first; nothing else is cut away.
func parseStrict(text string) parseResult {
	return parseValue(llm.CleanJSONBlock(text))
}

// parseExtracted parses the first balanced {...} or [...] span found in text.
func parseExtracted(text string) parseResult {
	span := llm.ExtractJSON(text)
	if span == "" {
		return parseResult{Err: errors.New("no balanced JSON span found")}
	}
	return parseValue(span)
}

func parseValue(s string) parseResult {
	s = strings.TrimSpace(s)
	if s == "" {
		return parseResult{Err: errors.New("empty output")}
	}
	var v json.RawMessage
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return parseResult{Err: err}
	}
	return parseResult{Value: v}
}

// decodeJSON runs the parse ladder and returns the first successful value.
func decodeJSON(mode, text string) (json.RawMessage, error) {
	var last error
	for _, step := range parseLadder {
		res := step(text)
		if res.ok() {
			return res.Value, nil
		}
		last = res.Err
	}
	return nil, &OutputShapeError{Mode: mode, Message: "output is not valid JSON", Raw: text, Cause: last}
}

// rootObject returns value as an object holding key. A bare array becomes the value
// of key, and an object nesting the document under wrapper is unwrapped.
func rootObject(value json.RawMessage, key, wrapper string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Marshal(map[string]json.RawMessage{key: trimmed})
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, errors.New("top-level value is not an object or array")
	}
	if _, ok := obj[key]; ok {
		return trimmed, nil
	}
	if inner, ok := obj[wrapper]; ok {
		return rootObject(inner, key, "")
	}
	return trimmed, nil
}

// scalarString renders a JSON string or number as a trimmed string. Null, absent
// and composite values yield "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
