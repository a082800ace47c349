package rule

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/logsift/internal/domain/predicate"
)

var (
	// ErrNoPredicates signals a rule built with an empty predicate list.
	ErrNoPredicates = errors.New("at least one predicate is required")
	// ErrInvalidPredicate signals a zero-value predicate inside a rule.
	ErrInvalidPredicate = errors.New("invalid predicate")
	// ErrBadTargetName signals an empty target name or one that cannot be
	// encoded as part of a comma-joined mapping key.
	ErrBadTargetName = errors.New("invalid target name")
	// ErrBadMapping signals a structurally malformed serialized mapping.
	ErrBadMapping = errors.New("invalid search mapping")
)

// EntryError wraps a validation failure with the mapping key it occurred in.
type EntryError struct {
	Key string
	Err error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("mapping entry %q: %s", e.Key, e.Err.Error())
}

func (e *EntryError) Unwrap() error { return e.Err }

// NewEntryError annotates err with the offending mapping key.
func NewEntryError(key string, err error) error {
	return &EntryError{Key: key, Err: err}
}

// Rule assigns an ordered predicate list to a set of diagnostic names.
// An empty target list makes the rule a wildcard applying to every
// diagnostic.
type Rule struct {
	targets    []string
	predicates []predicate.Predicate
}

// New validates and creates a Rule. Targets may be empty (wildcard); each
// named target must be non-empty and contain neither a comma (the mapping
// key separator) nor a newline. The predicate list must be non-empty and
// hold no zero predicates.
func New(targets []string, predicates []predicate.Predicate) (Rule, error) {
	for _, name := range targets {
		if name == "" {
			return Rule{}, fmt.Errorf("%w: empty name", ErrBadTargetName)
		}
		if strings.ContainsAny(name, ",\n") {
			return Rule{}, fmt.Errorf("%w: %q", ErrBadTargetName, name)
		}
	}
	if len(predicates) == 0 {
		return Rule{}, ErrNoPredicates
	}
	for i, p := range predicates {
		if p.IsZero() {
			return Rule{}, fmt.Errorf("%w: predicate %d is a zero value", ErrInvalidPredicate, i)
		}
	}
	t := make([]string, len(targets))
	copy(t, targets)
	p := make([]predicate.Predicate, len(predicates))
	copy(p, predicates)
	return Rule{targets: t, predicates: p}, nil
}

// Targets returns the diagnostic names this rule is restricted to.
func (r Rule) Targets() []string { return r.targets }

// Predicates returns the rule's predicates in list order.
func (r Rule) Predicates() []predicate.Predicate { return r.predicates }

// IsWildcard reports whether the rule applies to every diagnostic.
func (r Rule) IsWildcard() bool { return len(r.targets) == 0 }

// AppliesTo reports whether the rule covers the named diagnostic.
func (r Rule) AppliesTo(name string) bool {
	if len(r.targets) == 0 {
		return true
	}
	for _, t := range r.targets {
		if t == name {
			return true
		}
	}
	return false
}

// key is the comma-joined mapping form of the target list ("" = wildcard).
func (r Rule) key() string { return strings.Join(r.targets, ",") }

// Set is an ordered, validated list of rules: the search plan of one batch
// search. Immutable after construction and safe for concurrent use.
type Set struct {
	rules []Rule
}

// FromRules creates a Set preserving the given rule order. Rules must come
// from New; a zero-value Rule is rejected.
func FromRules(rules []Rule) (Set, error) {
	for i, r := range rules {
		if len(r.predicates) == 0 {
			return Set{}, fmt.Errorf("rule %d: %w", i, ErrNoPredicates)
		}
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return Set{rules: cp}, nil
}

// FromMapping validates a raw mapping and flattens it into a Set. Keys are
// comma-joined diagnostic name lists; the empty key is the wildcard. Keys
// are processed in sorted order so construction is deterministic regardless
// of map iteration order. The input is never modified.
func FromMapping(mapping map[string][]predicate.Predicate) (Set, error) {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make([]Rule, 0, len(keys))
	for _, k := range keys {
		r, err := New(splitKey(k), mapping[k])
		if err != nil {
			return Set{}, NewEntryError(k, err)
		}
		rules = append(rules, r)
	}
	return Set{rules: rules}, nil
}

// ParseMapping decodes the JSON wire form of a mapping:
//
//	{"": [<predicate>, ...], "syslog,crash": [<predicate>, ...]}
func ParseMapping(data []byte) (Set, error) {
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Set{}, fmt.Errorf("%w: %s", ErrBadMapping, err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make([]Rule, 0, len(keys))
	for _, k := range keys {
		predicates := make([]predicate.Predicate, 0, len(raw[k]))
		for _, entry := range raw[k] {
			p, err := predicate.Parse(entry)
			if err != nil {
				return Set{}, NewEntryError(k, err)
			}
			predicates = append(predicates, p)
		}
		r, err := New(splitKey(k), predicates)
		if err != nil {
			return Set{}, NewEntryError(k, err)
		}
		rules = append(rules, r)
	}
	return Set{rules: rules}, nil
}

func splitKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ",")
}

// Rules returns the rules in plan order.
func (s Set) Rules() []Rule { return s.rules }

// Len returns the number of rules.
func (s Set) Len() int { return len(s.rules) }

// IsEmpty reports whether the set holds no rules.
func (s Set) IsEmpty() bool { return len(s.rules) == 0 }

// PredicatesFor resolves the effective predicate list for one diagnostic:
// the predicates of every wildcard or name-matching rule, concatenated in
// rule order, with duplicates (by predicate equality) removed. An empty
// result means the diagnostic must not be scanned at all.
func (s Set) PredicatesFor(name string) []predicate.Predicate {
	var out []predicate.Predicate
	for _, r := range s.rules {
		if !r.AppliesTo(name) {
			continue
		}
		for _, p := range r.predicates {
			if containsPredicate(out, p) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

func containsPredicate(list []predicate.Predicate, p predicate.Predicate) bool {
	for _, got := range list {
		if got.Equal(p) {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the Set in the mapping wire form. Rules sharing the
// same target list are merged under one key; key order in the output is
// lexicographic (encoding/json sorts map keys), so the form is stable.
func (s Set) MarshalJSON() ([]byte, error) {
	m := make(map[string][]predicate.Predicate, len(s.rules))
	for _, r := range s.rules {
		k := r.key()
		m[k] = append(m[k], r.predicates...)
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the mapping wire form, validating it.
func (s *Set) UnmarshalJSON(data []byte) error {
	parsed, err := ParseMapping(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
