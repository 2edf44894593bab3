package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator checks a decoded value. A non-nil error rejects the output.
type SchemaValidator[T any] func(T) error

// ExtractJSONArray decodes the first JSON array found in raw model output.
// Markdown fences, surrounding prose, comments, trailing commas and numbers
// written as ".5" are tolerated.
func ExtractJSONArray[T any](raw string, validator SchemaValidator[[]T]) ([]T, error) {
	block := firstArray(dropFenceLines(raw))
	if block == "" {
		return nil, fmt.Errorf("%w: no JSON array found in response", ErrInvalidOutput)
	}

	var out []T
	if err := json.Unmarshal([]byte(repair(block)), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validator != nil {
		if err := validator(out); err != nil {
			return nil, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return out, nil
}

func dropFenceLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// scanner walks a JSON-ish text and tracks whether the cursor is inside a
// string literal.
type scanner struct {
	s        string
	inString bool
	escaped  bool
}

// step advances the string state over s[i] and reports whether the byte is
// structural, that is outside any string literal and not a quote.
func (sc *scanner) step(i int) bool {
	c := sc.s[i]
	switch {
	case sc.escaped:
		sc.escaped = false
	case sc.inString && c == '\\':
		sc.escaped = true
	case c == '"':
		sc.inString = !sc.inString
	case !sc.inString:
		return true
	}
	return false
}

// firstArray returns the first balanced [...] block outside string literals.
func firstArray(s string) string {
	sc := &scanner{s: s}
	start, depth := -1, 0
	for i := 0; i < len(s); i++ {
		if !sc.step(i) {
			continue
		}
		switch s[i] {
		case '[':
			if depth == 0 {
				start = i
			}
			depth++
		case ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// repair rewrites the common ways models break JSON syntax.
func repair(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	sc := &scanner{s: s}
	for i := 0; i < len(s); i++ {
		if !sc.step(i) {
			b.WriteByte(s[i])
			continue
		}
		c := s[i]
		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 3
			}
		case c == ',' && closesNext(s, i+1):
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(s, i-1):
			b.WriteString("0.")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// closesNext reports whether the next non-space byte at or after i ends a
// container.
func closesNext(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case ']', '}':
			return true
		default:
			return false
		}
	}
	return false
}

// startsNumber reports whether a number may begin after s[i].
func startsNumber(s string, i int) bool {
	for ; i >= 0; i-- {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case ':', ',', '[', '{', '-':
			return true
		default:
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
