package rulebundle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kailas-cloud/logsift/internal/domain/predicate"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
)

func makeSet(t *testing.T) rule.Set {
	t.Helper()
	errs, err := predicate.NewSubstrings([]string{"ERROR", "signal"})
	if err != nil {
		t.Fatalf("NewSubstrings: %v", err)
	}
	set, err := rule.FromMapping(map[string][]predicate.Predicate{
		"":             {errs},
		"syslog,crash": {predicate.NewRegex("ERR.*full")},
	})
	if err != nil {
		t.Fatalf("FromMapping: %v", err)
	}
	return set
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	set := makeSet(t)

	data, err := Encode(set)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Len() != set.Len() {
		t.Fatalf("decoded %d rules, want %d", got.Len(), set.Len())
	}
	for i, want := range set.Rules() {
		r := got.Rules()[i]
		if len(r.Predicates()) != len(want.Predicates()) {
			t.Fatalf("rule %d: %d predicates, want %d", i, len(r.Predicates()), len(want.Predicates()))
		}
		for j := range want.Predicates() {
			if !r.Predicates()[j].Equal(want.Predicates()[j]) {
				t.Errorf("rule %d predicate %d survived the round trip changed", i, j)
			}
		}
	}
}

func TestEncodeDecode_EmptySet(t *testing.T) {
	data, err := Encode(rule.Set{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("decoded set has %d rules, want none", got.Len())
	}
}

func TestDecode_SchemaMismatch(t *testing.T) {
	data, err := msgpack.Marshal(payload{Schema: SchemaVersion + 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, err = Decode(data)
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("error = %v, want ErrSchema", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("not msgpack at all")); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecode_UnknownPredicateKind(t *testing.T) {
	data, err := msgpack.Marshal(payload{
		Schema: SchemaVersion,
		Entries: []entry{{
			Targets:    nil,
			Predicates: []predicatePayload{{Kind: "glob", Pattern: "*"}},
		}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for unknown predicate kind")
	}
}

func TestDecode_RejectsEmptySubstrings(t *testing.T) {
	data, err := msgpack.Marshal(payload{
		Schema: SchemaVersion,
		Entries: []entry{{
			Predicates: []predicatePayload{{Kind: "substrings"}},
		}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, err = Decode(data)
	if !errors.Is(err, predicate.ErrNoSubstrings) {
		t.Fatalf("error = %v, want ErrNoSubstrings", err)
	}
}

func TestWriteFile_ReadFile(t *testing.T) {
	set := makeSet(t)
	path := filepath.Join(t.TempDir(), "nested", "rules.bundle")

	if err := WriteFile(path, set); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Len() != set.Len() {
		t.Errorf("read %d rules, want %d", got.Len(), set.Len())
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the bundle", len(entries))
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.bundle"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want ErrNotExist", err)
	}
}
