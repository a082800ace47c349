package predicate

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind discriminates the predicate variant.
type Kind string

const (
	// KindSubstrings matches lines containing any of a set of literal substrings.
	KindSubstrings Kind = "substrings"
	// KindRegex matches lines against a regular expression.
	KindRegex Kind = "regex"
)

var (
	// ErrNoSubstrings signals construction from an empty substring list.
	ErrNoSubstrings = errors.New("at least one substring is required")
	// ErrSubstringNewline signals a substring containing a newline character.
	ErrSubstringNewline = errors.New("substring must not contain a newline")
	// ErrBadFormat signals an unrecognized serialized predicate.
	ErrBadFormat = errors.New("invalid predicate format")
)

// Predicate is an immutable line matcher: a set of literal substrings or a
// regular expression. Predicates are value-comparable via Equal, safe for
// concurrent use, and serializable to the wire form
//
//	{"type": "substrings", "arguments": ["a", "b"]}
//	{"type": "regex",      "arguments": "pattern"}
type Predicate struct {
	kind       Kind
	substrings []string
	pattern    string
	re         *regexp.Regexp
}

// NewSubstrings validates and creates a literal substring predicate.
// The list order is kept: FirstMatchIn reports the first listed substring
// found in a line. Equality is order-independent.
func NewSubstrings(substrings []string) (Predicate, error) {
	if len(substrings) == 0 {
		return Predicate{}, ErrNoSubstrings
	}
	for _, s := range substrings {
		if strings.ContainsRune(s, '\n') {
			return Predicate{}, fmt.Errorf("%w: %q", ErrSubstringNewline, s)
		}
	}
	cp := make([]string, len(substrings))
	copy(cp, substrings)
	return Predicate{kind: KindSubstrings, substrings: cp}, nil
}

// NewRegex creates a regex predicate. Construction never fails: the pattern
// is kept verbatim and compiled here, once; a pattern that does not compile
// yields a predicate that never matches any line.
func NewRegex(pattern string) Predicate {
	re, _ := regexp.Compile(pattern)
	return Predicate{kind: KindRegex, pattern: pattern, re: re}
}

// Parse decodes a serialized predicate.
func Parse(data []byte) (Predicate, error) {
	var p Predicate
	if err := json.Unmarshal(data, &p); err != nil {
		return Predicate{}, err
	}
	return p, nil
}

// Kind returns the predicate variant.
func (p Predicate) Kind() Kind { return p.kind }

// Substrings returns the configured substrings in list order.
func (p Predicate) Substrings() []string { return p.substrings }

// Pattern returns the verbatim regex pattern.
func (p Predicate) Pattern() string { return p.pattern }

// Compiles reports whether the predicate can ever match: true for substring
// predicates, false for a regex whose pattern failed to compile.
func (p Predicate) Compiles() bool {
	return p.kind == KindSubstrings || p.re != nil
}

// MatchesLine reports whether one line of text matches the predicate.
func (p Predicate) MatchesLine(line string) bool {
	switch p.kind {
	case KindSubstrings:
		for _, s := range p.substrings {
			if strings.Contains(line, s) {
				return true
			}
		}
		return false
	case KindRegex:
		return p.re != nil && p.re.MatchString(line)
	}
	return false
}

// Match locates the first predicate hit within a text.
type Match struct {
	// Fragment is the narrow matched text: the first configured substring
	// (in list order) found in the line, or the first regex match span.
	Fragment string
	// Line is the full matching line.
	Line string
	// LineIndex is the zero-based line number within the scanned text.
	LineIndex int
}

// FirstMatchIn scans text line by line and returns the first match.
// Returns false when the text is empty or no line matches.
func (p Predicate) FirstMatchIn(text string) (Match, bool) {
	if text == "" {
		return Match{}, false
	}
	for i, line := range strings.Split(text, "\n") {
		fragment, ok := p.fragment(line)
		if !ok {
			continue
		}
		return Match{Fragment: fragment, Line: line, LineIndex: i}, true
	}
	return Match{}, false
}

func (p Predicate) fragment(line string) (string, bool) {
	switch p.kind {
	case KindSubstrings:
		for _, s := range p.substrings {
			if strings.Contains(line, s) {
				return s, true
			}
		}
	case KindRegex:
		if p.re == nil {
			return "", false
		}
		if loc := p.re.FindStringIndex(line); loc != nil {
			return line[loc[0]:loc[1]], true
		}
	}
	return "", false
}

// Equal reports whether both predicates have the same variant and payload.
// Substring payloads compare as sets; regex payloads compare the verbatim
// pattern string.
func (p Predicate) Equal(other Predicate) bool {
	if p.kind != other.kind {
		return false
	}
	switch p.kind {
	case KindSubstrings:
		return equalSets(p.substrings, other.substrings)
	case KindRegex:
		return p.pattern == other.pattern
	}
	return true
}

// IsZero reports whether the predicate is the uninitialized zero value.
func (p Predicate) IsZero() bool { return p.kind == "" }

func (p Predicate) String() string {
	switch p.kind {
	case KindSubstrings:
		quoted := make([]string, len(p.substrings))
		for i, s := range p.substrings {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "substrings(" + strings.Join(quoted, ", ") + ")"
	case KindRegex:
		return fmt.Sprintf("regex(%q)", p.pattern)
	}
	return "predicate(zero)"
}

func equalSets(a, b []string) bool {
	sa := make(map[string]struct{}, len(a))
	for _, s := range a {
		sa[s] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, s := range b {
		sb[s] = struct{}{}
	}
	if len(sa) != len(sb) {
		return false
	}
	for s := range sa {
		if _, ok := sb[s]; !ok {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the predicate in the wire form. A zero predicate is
// not serializable.
func (p Predicate) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case KindSubstrings:
		return json.Marshal(struct {
			Type      string   `json:"type"`
			Arguments []string `json:"arguments"`
		}{string(KindSubstrings), p.substrings})
	case KindRegex:
		return json.Marshal(struct {
			Type      string `json:"type"`
			Arguments string `json:"arguments"`
		}{string(KindRegex), p.pattern})
	}
	return nil, fmt.Errorf("%w: zero predicate", ErrBadFormat)
}

// UnmarshalJSON decodes the wire form, applying the same validation as the
// constructors.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type      string          `json:"type"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrBadFormat, err)
	}
	switch Kind(raw.Type) {
	case KindSubstrings:
		var substrings []string
		if err := json.Unmarshal(raw.Arguments, &substrings); err != nil {
			return fmt.Errorf("%w: substrings arguments must be an array of strings", ErrBadFormat)
		}
		decoded, err := NewSubstrings(substrings)
		if err != nil {
			return err
		}
		*p = decoded
	case KindRegex:
		var pattern string
		if err := json.Unmarshal(raw.Arguments, &pattern); err != nil {
			return fmt.Errorf("%w: regex arguments must be a string", ErrBadFormat)
		}
		*p = NewRegex(pattern)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrBadFormat, raw.Type)
	}
	return nil
}
