package perception

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrEmptyResponse is returned when the model reply is blank.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrMissingJSON is returned when no balanced JSON value is present.
	ErrMissingJSON = errors.New("no JSON object or array found in model response")
)

// ExtractJSON returns the first balanced JSON object or array in raw.
// Wrapper tokens around it (markdown fences, prose, trailing chatter) are
// ignored. Brackets inside JSON strings do not count towards nesting, and a
// span that is not valid JSON or never closes is skipped.
func ExtractJSON(raw string) (string, error) {
	return ExtractJSONFunc(raw, nil)
}

// ExtractJSONFunc is ExtractJSON with an extra filter: candidates for which
// accept returns false are skipped like invalid ones. A nil accept takes
// any valid JSON value.
func ExtractJSONFunc(raw string, accept func(candidate []byte) bool) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyResponse
	}

	for start := 0; start < len(s); start++ {
		if s[start] != '{' && s[start] != '[' {
			continue
		}
		end := balancedEnd(s, start)
		if end < 0 {
			continue
		}
		candidate := []byte(s[start : end+1])
		if json.Valid(candidate) && (accept == nil || accept(candidate)) {
			return string(candidate), nil
		}
	}

	return "", ErrMissingJSON
}

// balancedEnd returns the index of the bracket closing the one at start,
// or -1 when a closer mismatches or the input ends first.
//
// Byte iteration is safe for the ASCII delimiters involved because UTF-8
// never reuses ASCII bytes inside multi-byte sequences.
func balancedEnd(s string, start int) int {
	var (
		stack    []byte // expected closers
		inString bool
		escaped  bool
	)
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
