package logsift

import (
	"context"

	"github.com/kailas-cloud/logsift/internal/domain/match"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
	searchuc "github.com/kailas-cloud/logsift/internal/usecase/search"
)

// MatchResult maps a diagnostic name to its matched lines, ordered by first
// occurrence in the text and unique within each diagnostic. A diagnostic
// appears only if it has at least one match.
type MatchResult = match.Result

var (
	// ErrNoPredicates is returned for a mapping entry with an empty
	// predicate list.
	ErrNoPredicates = rule.ErrNoPredicates
	// ErrBadMapping is returned by ParseMapping for a structurally malformed
	// document.
	ErrBadMapping = rule.ErrBadMapping
)

// BatchSearch is an immutable, validated set of search rules. Each rule
// binds a set of diagnostic names to a predicate list; a rule with no names
// is a wildcard applying to every diagnostic. The zero value matches
// nothing.
type BatchSearch struct {
	set     rule.Set
	workers int
}

// FromMapping validates a raw mapping and builds a BatchSearch. Keys are
// comma-joined diagnostic names, the empty key being the wildcard; values
// are the predicates applied to those diagnostics. Construction fails with a
// descriptive error on an empty predicate list, a zero-value predicate, or a
// malformed key.
func FromMapping(mapping map[string][]Predicate) (BatchSearch, error) {
	set, err := rule.FromMapping(mapping)
	if err != nil {
		return BatchSearch{}, err
	}
	return BatchSearch{set: set}, nil
}

// ParseMapping decodes a JSON mapping of comma-joined names to predicate
// arrays and validates it like FromMapping:
//
//	{"": [{"type": "substrings", "arguments": ["ERROR"]}]}
func ParseMapping(data []byte) (BatchSearch, error) {
	set, err := rule.ParseMapping(data)
	if err != nil {
		return BatchSearch{}, err
	}
	return BatchSearch{set: set}, nil
}

// WithWorkers returns a copy with the concurrent scan limit set. Values
// below one keep the default of GOMAXPROCS.
func (b BatchSearch) WithWorkers(n int) BatchSearch {
	b.workers = n
	return b
}

// Len reports the number of rules.
func (b BatchSearch) Len() int { return b.set.Len() }

// Search scans the diagnostics concurrently and returns the matched lines
// per diagnostic. A diagnostic no rule applies to is skipped without reading
// its text, and one whose text cannot be fetched is simply absent from the
// result; Search itself never fails.
func (b BatchSearch) Search(ctx context.Context, diags []Diagnostic) MatchResult {
	return searchuc.New(nil).WithWorkers(b.workers).Batch(ctx, b.set, diags)
}

// SearchDiagnostics searches every diagnostic with a single predicate, the
// equivalent of a BatchSearch holding one wildcard rule.
func SearchDiagnostics(ctx context.Context, diags []Diagnostic, p Predicate) MatchResult {
	return searchuc.New(nil).All(ctx, diags, p)
}

// MarshalJSON encodes the rule set in the mapping wire form accepted by
// ParseMapping.
func (b BatchSearch) MarshalJSON() ([]byte, error) {
	return b.set.MarshalJSON()
}

// UnmarshalJSON decodes and validates a mapping, replacing the receiver.
func (b *BatchSearch) UnmarshalJSON(data []byte) error {
	return b.set.UnmarshalJSON(data)
}
