package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator checks a decoded value. A non-nil error rejects it.
type SchemaValidator[T any] func(T) error

// ExtractJSON pulls the first JSON object or array out of model output and
// decodes it into T. Code fences, prose around the value, comments,
// trailing commas and numbers written as .8 are tolerated. validator, when
// non-nil, runs on the decoded value.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero, result T

	block := firstJSONValue(stripCodeFences(raw))
	if block == "" {
		return zero, fmt.Errorf("%w: no JSON value found in response", ErrInvalidOutput)
	}
	if err := json.Unmarshal([]byte(tidyJSON(stripJSONComments(block))), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

// stripCodeFences drops Markdown fence lines and keeps what they enclose.
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "```") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// scanner follows JSON text one byte at a time and knows whether the byte
// belongs to a string literal.
type scanner struct {
	inString bool
	escaped  bool
}

// step consumes c and reports whether it is structural: outside every
// string literal and not a quote.
func (s *scanner) step(c byte) bool {
	switch {
	case s.escaped:
		s.escaped = false
	case s.inString && c == '\\':
		s.escaped = true
	case c == '"':
		s.inString = !s.inString
	case !s.inString:
		return true
	}
	return false
}

// firstJSONValue returns the first balanced object or array in s. Models
// asked for an object sometimes answer with the bare list.
func firstJSONValue(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}

	var sc scanner
	var closers []byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if !sc.step(c) {
			continue
		}
		switch c {
		case '{':
			closers = append(closers, '}')
		case '[':
			closers = append(closers, ']')
		case '}', ']':
			if len(closers) == 0 || closers[len(closers)-1] != c {
				return ""
			}
			closers = closers[:len(closers)-1]
			if len(closers) == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// stripJSONComments removes // and /* */ comments outside string literals.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var sc scanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.step(c) && c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i+1 < len(s) && s[i+1] != '\n' {
					i++
				}
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return b.String()
				}
				i += end + 3
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// tidyJSON drops trailing commas before a closing bracket and rewrites
// numbers like .8 or -.3 as 0.8 and -0.3.
func tidyJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var sc scanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.step(c) {
			switch {
			case c == ',' && isCloser(nextNonSpace(s, i+1)):
				continue
			case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumberStart(prevNonSpace(s, i-1)):
				b.WriteByte('0')
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func nextNonSpace(s string, i int) byte {
	for ; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func isCloser(c byte) bool { return c == '}' || c == ']' }

// isNumberStart reports whether a number may begin right after c.
func isNumberStart(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
