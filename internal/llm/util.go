package llm

import (
	"encoding/json"
	"regexp"
	"slices"
	"strings"
)

// fence matches a markdown code block wrapping the whole reply, with an
// optional single-word language tag.
var fence = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \t]*\n?(.*?)\n?```\\s*$")

// CleanJSONBlock trims a model reply and strips a markdown fence wrapping the
// whole of it. Prose around a JSON value is left in place.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if m := fence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	return text
}

// ExtractJSON returns the first balanced {...} or [...] span in text that is
// valid JSON, or "" when there is none. Candidates are ordered by where they
// start, and each byte of text is scanned once.
func ExtractJSON(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		spans, end := scanSpans(text, i)
		for _, sp := range spans {
			if candidate := text[sp[0]:sp[1]]; json.Valid([]byte(candidate)) {
				return candidate
			}
		}
		i = end
	}
	return ""
}

// balancedSpan returns the prefix of s that closes the bracket at s[0].
// Brackets inside JSON strings are ignored. Mismatched closers end the scan.
func balancedSpan(s string) string {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}
	spans, _ := scanSpans(s, 0)
	if len(spans) > 0 && spans[0][0] == 0 {
		return s[:spans[0][1]]
	}
	return ""
}

// scanSpans walks s from the opener at start until that opener closes, a
// closer mismatches, or s ends. It returns every balanced span closed along the
// way, sorted by start offset, and the offset of the last byte examined. An
// opener inside the walked region that is not among the spans cannot start a
// balanced span of its own.
func scanSpans(s string, start int) ([][2]int, int) {
	type open struct {
		pos    int
		closer byte
	}

	var (
		stack   []open
		spans   [][2]int
		end     = len(s) - 1
		escaped bool
		inStr   bool
	)

scan:
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			stack = append(stack, open{pos: i, closer: '}'})
		case '[':
			stack = append(stack, open{pos: i, closer: ']'})
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1].closer != c {
				end = i
				break scan
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			spans = append(spans, [2]int{top.pos, i + 1})
			if len(stack) == 0 {
				end = i
				break scan
			}
		}
	}

	slices.SortFunc(spans, func(a, b [2]int) int { return a[0] - b[0] })
	return spans, end
}
