// SPDX-License-Identifier: Apache-2.0

// Package fieldpath resolves dotted/bracketed paths such as "highlight.text[0]"
// against decoded JSON-like records (map[string]any, []any and scalars).
package fieldpath

import (
	"strconv"
	"strings"
)

// Step is a single path element: either a key lookup on a mapping or an
// index lookup on a sequence.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Parse splits path into steps. It never fails: a segment whose bracket
// syntax is not a well-formed non-negative index is kept as one literal key.
// The empty path has no steps.
func Parse(path string) []Step {
	if path == "" {
		return nil
	}
	var steps []Step
	for _, segment := range strings.Split(path, ".") {
		steps = append(steps, parseSegment(segment)...)
	}
	return steps
}

// parseSegment handles one dot-separated segment, e.g. "text[0][1]".
func parseSegment(segment string) []Step {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		return []Step{{Key: segment}}
	}

	var steps []Step
	if open > 0 {
		steps = append(steps, Step{Key: segment[:open]})
	}
	rest := segment[open:]
	for rest != "" {
		if rest[0] != '[' {
			return literal(segment)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return literal(segment)
		}
		n, ok := parseIndex(rest[1:end])
		if !ok {
			return literal(segment)
		}
		steps = append(steps, Step{Index: n, IsIndex: true})
		rest = rest[end+1:]
	}
	return steps
}

func literal(segment string) []Step {
	return []Step{{Key: segment}}
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Resolve walks record along path. The second return value is false when any
// step is missing, the value at a step has the wrong shape, an index is out
// of bounds, or the path is empty.
func Resolve(record any, path string) (any, bool) {
	steps := Parse(path)
	if len(steps) == 0 {
		return nil, false
	}
	return Walk(record, steps)
}

// Walk evaluates pre-parsed steps against record.
func Walk(record any, steps []Step) (any, bool) {
	current := record
	for _, step := range steps {
		next, ok := lookup(current, step)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func lookup(value any, step Step) (any, bool) {
	if step.IsIndex {
		switch seq := value.(type) {
		case []any:
			if step.Index >= len(seq) {
				return nil, false
			}
			return seq[step.Index], true
		case []string:
			if step.Index >= len(seq) {
				return nil, false
			}
			return seq[step.Index], true
		case []map[string]any:
			if step.Index >= len(seq) {
				return nil, false
			}
			return seq[step.Index], true
		}
		return nil, false
	}

	switch m := value.(type) {
	case map[string]any:
		v, ok := m[step.Key]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	case map[string]string:
		v, ok := m[step.Key]
		return v, ok
	}
	return nil, false
}

// String resolves path and returns the value as display text. Strings are
// returned as is, numbers and booleans are formatted; nested mappings and
// sequences are not text and report false, as does an empty string.
func String(record any, path string) (string, bool) {
	v, ok := Resolve(record, path)
	if !ok {
		return "", false
	}
	return Text(v)
}

// Text converts a resolved scalar value to text.
func Text(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case bool:
		s = strconv.FormatBool(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case uint64:
		s = strconv.FormatUint(t, 10)
	default:
		return "", false
	}
	if s == "" {
		return "", false
	}
	return s, true
}
