// Package rulebundle serializes rule sets into a compact binary form so
// rule packs can be compiled once and shipped between hosts. Bundles are
// validated through the domain constructors on the way back in.
package rulebundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kailas-cloud/logsift/internal/domain/predicate"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
)

// SchemaVersion increments when the payload format changes.
const SchemaVersion uint16 = 1

// ErrSchema marks bundles written with an incompatible schema version.
var ErrSchema = errors.New("rulebundle: unsupported schema")

// payload is the wire form of a bundle.
type payload struct {
	Schema  uint16
	Entries []entry
}

// entry carries one rule: its target names plus its predicates.
type entry struct {
	Targets    []string
	Predicates []predicatePayload
}

type predicatePayload struct {
	Kind       string
	Substrings []string
	Pattern    string
}

// Encode serializes a rule set.
func Encode(set rule.Set) ([]byte, error) {
	p := payload{Schema: SchemaVersion}
	for _, r := range set.Rules() {
		e := entry{Targets: r.Targets()}
		for _, pr := range r.Predicates() {
			e.Predicates = append(e.Predicates, predicatePayload{
				Kind:       string(pr.Kind()),
				Substrings: pr.Substrings(),
				Pattern:    pr.Pattern(),
			})
		}
		p.Entries = append(p.Entries, e)
	}
	return msgpack.Marshal(p)
}

// Decode deserializes a bundle, rebuilding every predicate and rule
// through its constructor so malformed bundles are rejected.
func Decode(data []byte) (rule.Set, error) {
	var p payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return rule.Set{}, fmt.Errorf("rulebundle: decode: %w", err)
	}
	if p.Schema != SchemaVersion {
		return rule.Set{}, fmt.Errorf("%w: got %d, want %d", ErrSchema, p.Schema, SchemaVersion)
	}

	rules := make([]rule.Rule, 0, len(p.Entries))
	for i, e := range p.Entries {
		preds := make([]predicate.Predicate, 0, len(e.Predicates))
		for _, pp := range e.Predicates {
			switch predicate.Kind(pp.Kind) {
			case predicate.KindSubstrings:
				pr, err := predicate.NewSubstrings(pp.Substrings)
				if err != nil {
					return rule.Set{}, fmt.Errorf("rulebundle: entry %d: %w", i, err)
				}
				preds = append(preds, pr)
			case predicate.KindRegex:
				preds = append(preds, predicate.NewRegex(pp.Pattern))
			default:
				return rule.Set{}, fmt.Errorf("rulebundle: entry %d: unknown predicate kind %q", i, pp.Kind)
			}
		}
		r, err := rule.New(e.Targets, preds)
		if err != nil {
			return rule.Set{}, fmt.Errorf("rulebundle: entry %d: %w", i, err)
		}
		rules = append(rules, r)
	}
	return rule.FromRules(rules)
}

// WriteFile writes a bundle atomically, via temp file and rename.
func WriteFile(path string, set rule.Set) error {
	data, err := Encode(set)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "bundle-*")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile loads a bundle from disk.
func ReadFile(path string) (rule.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rule.Set{}, err
	}
	return Decode(data)
}
