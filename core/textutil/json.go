package textutil

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/siherrmann/herbrag/helper"
)

var (
	codeFenceStartRe = regexp.MustCompile("^\\s*```(?:json|JSON)?\\s*")
	codeFenceEndRe   = regexp.MustCompile("\\s*```\\s*$")
	controlCharRe    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	lineBreakRe      = regexp.MustCompile(`[\r\n\t]+`)
	whitespaceRunRe  = regexp.MustCompile(`\s+`)
	trailingCommaRe  = regexp.MustCompile(`,\s*([}\]])`)
)

// RepairJSON applies the textual repairs needed to parse typical model output:
// code fences, control characters, line breaks inside strings, single quotes,
// trailing commas and truncated brackets.
// Apostrophes inside values are turned into double quotes as well.
func RepairJSON(content string) string {
	s := strings.TrimSpace(content)
	s = codeFenceStartRe.ReplaceAllString(s, "")
	s = codeFenceEndRe.ReplaceAllString(s, "")
	s = controlCharRe.ReplaceAllString(s, "")
	s = lineBreakRe.ReplaceAllString(s, " ")
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "'", `"`)
	s = trailingCommaRe.ReplaceAllString(s, "$1")

	if start := strings.IndexAny(s, "{["); start > 0 {
		s = s[start:]
	}
	s = strings.TrimSpace(s)

	s += closingSequence(s)
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// ParseJSONResponse repairs content and decodes the first JSON value in it.
// It returns a *helper.ParseError if the repaired content is still not valid JSON.
func ParseJSONResponse(content string) (interface{}, error) {
	var value interface{}
	err := ParseJSONInto(content, &value)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// ParseJSONInto repairs content and decodes it into target.
func ParseJSONInto(content string, target interface{}) error {
	decoder := json.NewDecoder(strings.NewReader(RepairJSON(content)))
	err := decoder.Decode(target)
	if err != nil {
		return &helper.ParseError{Content: content, Err: err}
	}
	return nil
}

// closingSequence returns the quote, brackets and braces needed to close
// everything left open in s, innermost first.
func closingSequence(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var closing strings.Builder
	if inString {
		closing.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		closing.WriteByte(stack[i])
	}
	return closing.String()
}
