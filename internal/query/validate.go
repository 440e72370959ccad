// Package query validates and normalizes tool input against per-tool
// schemas before any fetch work begins.
package query

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports a bad input shape or range. It is always
// recoverable: the caller reports it verbatim and never retries.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Kind enumerates supported field types.
type Kind int

const (
	String Kind = iota
	Int
	Bool
	Enum
	// Usernames is a 2-20 element array of unique non-empty strings.
	Usernames
	// Subreddits is a comma-separated list; "" or "all" means no filter.
	Subreddits
	// Thresholds is an object of non-negative integer minimums, e.g.
	// {"score": 10, "comments": 5}.
	Thresholds
)

// Field describes one recognized input field.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Values   []string // Enum only
	Min, Max int      // Int only
	Default  any      // applied when an optional field is absent
}

// Schema is the full input contract of one tool.
type Schema struct {
	Tool   string
	Fields []Field
}

// Params holds validated, normalized input values.
type Params map[string]any

func (p Params) Str(name string) string { v, _ := p[name].(string); return v }
func (p Params) Int(name string) int    { v, _ := p[name].(int); return v }
func (p Params) Bool(name string) bool  { v, _ := p[name].(bool); return v }
func (p Params) Strs(name string) []string {
	v, _ := p[name].([]string)
	return v
}
func (p Params) Ints(name string) map[string]int {
	v, _ := p[name].(map[string]int)
	return v
}

// Validate checks raw input against the schema and returns normalized
// parameters. It is pure: no fetches, no mutation of raw.
func (s Schema) Validate(raw map[string]any) (Params, *ValidationError) {
	if raw == nil {
		return nil, errf("Invalid input - query must be an object")
	}
	out := Params{}
	for _, f := range s.Fields {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Required {
				return nil, errf("Missing required field: %s", f.Name)
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}
		norm, err := f.normalize(v)
		if err != nil {
			return nil, err
		}
		out[f.Name] = norm
	}
	return out, nil
}

func (f Field) normalize(v any) (any, *ValidationError) {
	switch f.Kind {
	case String:
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, errf("%s must be a non-empty string", f.Name)
		}
		return strings.TrimSpace(s), nil
	case Int:
		n, ok := asInt(v)
		if !ok {
			return nil, errf("%s must be an integer", f.Name)
		}
		if n < f.Min || n > f.Max {
			return nil, errf("%s must be between %d and %d", f.Name, f.Min, f.Max)
		}
		return n, nil
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, errf("%s must be a boolean", f.Name)
		}
		return b, nil
	case Enum:
		s, ok := v.(string)
		if !ok {
			return nil, errf("%s must be a string", f.Name)
		}
		s = strings.ToLower(strings.TrimSpace(s))
		for _, allowed := range f.Values {
			if s == allowed {
				return s, nil
			}
		}
		return nil, errf("%s must be one of: %s", f.Name, strings.Join(f.Values, ", "))
	case Usernames:
		return normalizeUsernames(f.Name, v)
	case Subreddits:
		s, ok := v.(string)
		if !ok {
			return nil, errf("%s must be a comma-separated string or 'all'", f.Name)
		}
		return NormalizeSubreddits(s), nil
	case Thresholds:
		return normalizeThresholds(f.Name, v)
	}
	return nil, errf("unrecognized field: %s", f.Name)
}

func normalizeUsernames(name string, v any) (any, *ValidationError) {
	var raw []string
	switch list := v.(type) {
	case []string:
		raw = list
	case []any:
		for _, el := range list {
			s, ok := el.(string)
			if !ok {
				return nil, errf("%s must contain only strings", name)
			}
			raw = append(raw, s)
		}
	default:
		return nil, errf("Missing required field: %s (must be an array)", name)
	}
	if len(raw) < 2 {
		return nil, errf("%s array must contain at least 2 users", name)
	}
	if len(raw) > 20 {
		return nil, errf("%s array must contain at most 20 users", name)
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, u := range raw {
		u = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(u), "u/"))
		if u == "" {
			return nil, errf("%s must not contain empty usernames", name)
		}
		key := strings.ToLower(u)
		if _, dup := seen[key]; dup {
			return nil, errf("%s contains duplicate username: %s", name, u)
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out, nil
}

// NormalizeSubreddits splits on commas, trims, lowercases, and strips
// r/ prefixes. "" and "all" collapse to nil, the no-filter wildcard.
func NormalizeSubreddits(s string) []string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), "r/")
		if part == "" || part == "all" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	sort.Strings(out)
	return out
}

func normalizeThresholds(name string, v any) (any, *ValidationError) {
	obj, ok := v.(map[string]any)
	if !ok {
		if typed, ok2 := v.(map[string]int); ok2 {
			obj = make(map[string]any, len(typed))
			for k, n := range typed {
				obj[k] = n
			}
		} else {
			return nil, errf(`%s must be an object like {"score": 10, "comments": 5}`, name)
		}
	}
	out := map[string]int{}
	for _, key := range []string{"score", "comments"} {
		raw, present := obj[key]
		if !present {
			continue
		}
		n, ok := asInt(raw)
		if !ok || n < 0 {
			return nil, errf("%s.%s must be a non-negative integer", name, key)
		}
		out[key] = n
	}
	return out, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
