package logsift

import (
	"github.com/kailas-cloud/logsift/internal/domain/predicate"
)

// Predicate matches single lines of text, either by a set of literal
// substrings or by a regular expression. Predicates are immutable,
// value-comparable via Equal, and marshal to the wire form
//
//	{"type": "substrings", "arguments": ["a", "b"]}
//	{"type": "regex",      "arguments": "pattern"}
type Predicate = predicate.Predicate

// Match describes where a predicate first matched: the matched fragment, the
// full line it was found on, and that line's zero-based index.
type Match = predicate.Match

var (
	// ErrNoSubstrings is returned by Substrings for an empty member list.
	ErrNoSubstrings = predicate.ErrNoSubstrings
	// ErrSubstringNewline is returned by Substrings when a member contains a
	// newline character.
	ErrSubstringNewline = predicate.ErrSubstringNewline
	// ErrBadPredicate is returned by ParsePredicate for an unrecognized type
	// or a malformed arguments shape.
	ErrBadPredicate = predicate.ErrBadFormat
)

// Substrings builds a predicate matching lines that contain any of the given
// members as a literal, case-sensitive substring. The reported fragment is
// the first member, in argument order, found in the line.
func Substrings(members ...string) (Predicate, error) {
	return predicate.NewSubstrings(members)
}

// Regex builds a predicate matching lines against a regular expression.
// Construction always succeeds; a pattern that fails to compile matches
// nothing rather than aborting a search.
func Regex(pattern string) Predicate {
	return predicate.NewRegex(pattern)
}

// ParsePredicate decodes a predicate from its JSON wire form.
func ParsePredicate(data []byte) (Predicate, error) {
	return predicate.Parse(data)
}
