// Package inputdeck parses dHybridR input files.
//
// The deck is a sequence of brace-delimited sections:
//
//	time
//	{
//	    niter = 2000,
//	    t0 = 0.0
//	}
//
// with "!" line comments and Fortran-style scalars (.true., 1.0d0, quoted
// strings, comma lists). Sections parse to ordered key → value-list maps.
package inputdeck

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Value is one parsed scalar: bool, int64, float64, or string.
type Value any

// Section is the key/value content of one deck section. Every key maps to
// the list of comma-separated values on its line; scalar keys carry a
// one-element list.
type Section map[string][]Value

// Deck is the parsed input file, preserving section order.
type Deck struct {
	sections map[string]Section
	order    []string
}

var sectionPattern = regexp.MustCompile(`(?s)(\w+)\s*\{([^}]*)\}`)

// ParseFile reads and parses a deck from disk.
func ParseFile(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, err
	}
	return Parse(string(data))
}

// Parse parses deck text. Unrecognized text outside sections is ignored;
// malformed parameter lines fail with the offending section and line.
func Parse(text string) (Deck, error) {
	d := Deck{sections: make(map[string]Section)}
	for _, m := range sectionPattern.FindAllStringSubmatch(text, -1) {
		name, body := m[1], m[2]
		sec, ok := d.sections[name]
		if !ok {
			sec = make(Section)
			d.sections[name] = sec
			d.order = append(d.order, name)
		}
		if err := parseBody(sec, body); err != nil {
			return Deck{}, fmt.Errorf("section %q: %w", name, err)
		}
	}
	return d, nil
}

func parseBody(sec Section, body string) error {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(stripComment(line))
		line = strings.TrimSuffix(line, ",")
		if line == "" {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return fmt.Errorf("parameter line %q has no '='", line)
		}
		key := strings.TrimSpace(line[:eq])
		if key == "" {
			return fmt.Errorf("parameter line %q has an empty key", line)
		}
		vals, err := parseValues(strings.TrimSpace(line[eq+1:]))
		if err != nil {
			return fmt.Errorf("parameter %q: %w", key, err)
		}
		sec[key] = vals
	}
	return nil
}

// stripComment drops everything after an unquoted "!".
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '!':
			return line[:i]
		}
	}
	return line
}

// parseValues splits a comma list outside quotes and parses each scalar.
func parseValues(s string) ([]Value, error) {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])

	vals := make([]Value, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		vals = append(vals, parseScalar(p))
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("no values")
	}
	return vals, nil
}

func parseScalar(s string) Value {
	switch strings.ToLower(s) {
	case ".true.", ".t.":
		return true
	case ".false.", ".f.":
		return false
	}
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	// Fortran double exponents use d/D where Go wants e.
	norm := strings.Map(func(r rune) rune {
		if r == 'd' || r == 'D' {
			return 'e'
		}
		return r
	}, s)
	if f, err := strconv.ParseFloat(norm, 64); err == nil {
		return f
	}
	return s
}

// Sections returns section names in file order.
func (d Deck) Sections() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Section returns one section's contents.
func (d Deck) Section(name string) (Section, bool) {
	sec, ok := d.sections[name]
	return sec, ok
}

// Map renders the deck as plain nested maps, for serialization. Single-value
// keys collapse to their scalar.
func (d Deck) Map() map[string]map[string]any {
	out := make(map[string]map[string]any, len(d.order))
	for name, sec := range d.sections {
		m := make(map[string]any, len(sec))
		for k, vals := range sec {
			if len(vals) == 1 {
				m[k] = vals[0]
			} else {
				m[k] = append([]Value(nil), vals...)
			}
		}
		out[name] = m
	}
	return out
}

// Float returns the first value of key coerced to float64.
func (s Section) Float(key string) (float64, bool) {
	vals, ok := s[key]
	if !ok || len(vals) == 0 {
		return 0, false
	}
	switch v := vals[0].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Int returns the first value of key as an integer.
func (s Section) Int(key string) (int64, bool) {
	vals, ok := s[key]
	if !ok || len(vals) == 0 {
		return 0, false
	}
	n, ok := vals[0].(int64)
	return n, ok
}

// Bool returns the first value of key as a logical.
func (s Section) Bool(key string) (bool, bool) {
	vals, ok := s[key]
	if !ok || len(vals) == 0 {
		return false, false
	}
	b, ok := vals[0].(bool)
	return b, ok
}

// Str returns the first value of key as a string.
func (s Section) Str(key string) (string, bool) {
	vals, ok := s[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	str, ok := vals[0].(string)
	return str, ok
}

// Floats coerces every value of key to float64, for grid-size style lists.
func (s Section) Floats(key string) ([]float64, bool) {
	vals, ok := s[key]
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		switch x := v.(type) {
		case float64:
			out = append(out, x)
		case int64:
			out = append(out, float64(x))
		default:
			return nil, false
		}
	}
	return out, true
}
