package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/logsift/internal/domain"
	"github.com/kailas-cloud/logsift/internal/domain/predicate"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
)

// --- Mocks ---

// fakeDiag counts text reads so tests can assert that uncovered diagnostics
// are never fetched.
type fakeDiag struct {
	name  string
	text  string
	err   error
	reads atomic.Int32
}

func (d *fakeDiag) Name() string { return d.name }

func (d *fakeDiag) Text(_ context.Context) (string, error) {
	d.reads.Add(1)
	if d.err != nil {
		return "", d.err
	}
	return d.text, nil
}

type fakeProvider struct {
	diags []domain.Diagnostic
	err   error
}

func (p *fakeProvider) List(_ context.Context) ([]domain.Diagnostic, error) {
	return p.diags, p.err
}

func mustSubstrings(t *testing.T, subs ...string) predicate.Predicate {
	t.Helper()
	p, err := predicate.NewSubstrings(subs)
	if err != nil {
		t.Fatalf("NewSubstrings(%q): %v", subs, err)
	}
	return p
}

func mustMapping(t *testing.T, mapping map[string][]predicate.Predicate) rule.Set {
	t.Helper()
	s, err := rule.FromMapping(mapping)
	if err != nil {
		t.Fatalf("FromMapping: %v", err)
	}
	return s
}

func sysAndCrash() (*fakeDiag, *fakeDiag) {
	return &fakeDiag{name: "syslog", text: "boot ok\nERROR disk full\nshutdown"},
		&fakeDiag{name: "crash", text: "signal 11"}
}

func assertLines(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lines = %q, want %q", got, want)
		}
	}
}

// --- Batch tests ---

func TestBatch_WildcardAppliesToAllDiagnostics(t *testing.T) {
	syslog, crash := sysAndCrash()
	set := mustMapping(t, map[string][]predicate.Predicate{
		"": {mustSubstrings(t, "ERROR", "signal")},
	})

	result := New(nil).Batch(context.Background(), set, []domain.Diagnostic{syslog, crash})

	if len(result) != 2 {
		t.Fatalf("result = %v, want 2 diagnostics", result)
	}
	assertLines(t, result.Lines("syslog"), "ERROR disk full")
	assertLines(t, result.Lines("crash"), "signal 11")
}

func TestBatch_NamedRuleLeavesOthersUntouched(t *testing.T) {
	syslog, crash := sysAndCrash()
	set := mustMapping(t, map[string][]predicate.Predicate{
		"syslog": {mustSubstrings(t, "shutdown")},
	})

	result := New(nil).Batch(context.Background(), set, []domain.Diagnostic{syslog, crash})

	if len(result) != 1 {
		t.Fatalf("result = %v, want only syslog", result)
	}
	assertLines(t, result.Lines("syslog"), "shutdown")
	if crash.reads.Load() != 0 {
		t.Errorf("crash was read %d times, want 0", crash.reads.Load())
	}
}

func TestBatch_UncoveredDiagnosticNeverRead(t *testing.T) {
	covered := &fakeDiag{name: "syslog", text: "ERROR"}
	uncovered := &fakeDiag{name: "other", text: "ERROR everywhere"}
	set := mustMapping(t, map[string][]predicate.Predicate{
		"syslog": {mustSubstrings(t, "ERROR")},
	})

	result := New(nil).Batch(context.Background(), set, []domain.Diagnostic{covered, uncovered})

	if _, ok := result["other"]; ok {
		t.Error("uncovered diagnostic appeared in the result")
	}
	if uncovered.reads.Load() != 0 {
		t.Errorf("uncovered diagnostic read %d times, want 0", uncovered.reads.Load())
	}
}

func TestBatch_DuplicateLinesRecordedOnce(t *testing.T) {
	d := &fakeDiag{name: "app", text: "ERROR one\nok\nERROR one\nERROR two"}
	set := mustMapping(t, map[string][]predicate.Predicate{
		// Two predicates match "ERROR one"; it must still appear once.
		"": {mustSubstrings(t, "ERROR"), mustSubstrings(t, "one")},
	})

	result := New(nil).Batch(context.Background(), set, []domain.Diagnostic{d})

	assertLines(t, result.Lines("app"), "ERROR one", "ERROR two")
}

func TestBatch_TextErrorSkipsDiagnostic(t *testing.T) {
	broken := &fakeDiag{name: "binary", err: domain.ErrNoTextContent}
	fine := &fakeDiag{name: "syslog", text: "ERROR disk full"}
	set := mustMapping(t, map[string][]predicate.Predicate{
		"": {mustSubstrings(t, "ERROR")},
	})

	result := New(nil).Batch(context.Background(), set, []domain.Diagnostic{broken, fine})

	if _, ok := result["binary"]; ok {
		t.Error("unreadable diagnostic appeared in the result")
	}
	assertLines(t, result.Lines("syslog"), "ERROR disk full")
}

func TestBatch_NoMatchMeansNoKey(t *testing.T) {
	d := &fakeDiag{name: "quiet", text: "all good\nstill good"}
	set := mustMapping(t, map[string][]predicate.Predicate{
		"": {mustSubstrings(t, "ERROR")},
	})

	result := New(nil).Batch(context.Background(), set, []domain.Diagnostic{d})

	if !result.IsEmpty() {
		t.Errorf("result = %v, want empty", result)
	}
}

func TestBatch_EmptySet(t *testing.T) {
	d := &fakeDiag{name: "syslog", text: "ERROR"}
	result := New(nil).Batch(context.Background(), rule.Set{}, []domain.Diagnostic{d})
	if !result.IsEmpty() {
		t.Errorf("result = %v, want empty", result)
	}
	if d.reads.Load() != 0 {
		t.Error("diagnostic read despite empty rule set")
	}
}

func TestBatch_ManyDiagnosticsBoundedWorkers(t *testing.T) {
	const n = 50
	diags := make([]domain.Diagnostic, 0, n)
	for i := 0; i < n; i++ {
		diags = append(diags, &fakeDiag{
			name: "diag-" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			text: "noise\nERROR here\nnoise",
		})
	}
	set := mustMapping(t, map[string][]predicate.Predicate{
		"": {mustSubstrings(t, "ERROR")},
	})

	result := New(nil).WithWorkers(4).Batch(context.Background(), set, diags)

	if len(result) != n {
		t.Fatalf("result has %d diagnostics, want %d", len(result), n)
	}
	for name, lines := range result {
		if len(lines) != 1 || lines[0] != "ERROR here" {
			t.Fatalf("lines for %s = %q", name, lines)
		}
	}
}

func TestAll_SingleWildcardPredicate(t *testing.T) {
	syslog, crash := sysAndCrash()

	result := New(nil).All(context.Background(), []domain.Diagnostic{syslog, crash}, predicate.NewRegex("ERR.*full"))

	if len(result) != 1 {
		t.Fatalf("result = %v, want only syslog", result)
	}
	assertLines(t, result.Lines("syslog"), "ERROR disk full")
}

// --- Provider-backed tests ---

func TestSearch_RestrictsToRequestedNames(t *testing.T) {
	syslog, crash := sysAndCrash()
	svc := New(&fakeProvider{diags: []domain.Diagnostic{syslog, crash}})
	set := mustMapping(t, map[string][]predicate.Predicate{
		"": {mustSubstrings(t, "ERROR", "signal")},
	})

	result, err := svc.Search(context.Background(), set, []string{"crash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("result = %v, want only crash", result)
	}
	if syslog.reads.Load() != 0 {
		t.Error("unrequested diagnostic was read")
	}
}

func TestSearch_ProviderError(t *testing.T) {
	wantErr := errors.New("redis down")
	svc := New(&fakeProvider{err: wantErr})
	set := mustMapping(t, map[string][]predicate.Predicate{
		"": {mustSubstrings(t, "ERROR")},
	})

	_, err := svc.Search(context.Background(), set, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped provider error", err)
	}
}

func TestFirst_Found(t *testing.T) {
	syslog, crash := sysAndCrash()
	svc := New(&fakeProvider{diags: []domain.Diagnostic{syslog, crash}})

	m, found, err := svc.First(context.Background(), "syslog", mustSubstrings(t, "disk", "ERROR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("found = false")
	}
	if m.Fragment != "disk" {
		t.Errorf("Fragment = %q, want first listed substring", m.Fragment)
	}
	if m.Line != "ERROR disk full" {
		t.Errorf("Line = %q", m.Line)
	}
}

func TestFirst_NoMatchIsNotAnError(t *testing.T) {
	syslog, _ := sysAndCrash()
	svc := New(&fakeProvider{diags: []domain.Diagnostic{syslog}})

	_, found, err := svc.First(context.Background(), "syslog", mustSubstrings(t, "panic"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("found = true for a predicate that matches nothing")
	}
}

func TestFirst_UnknownDiagnostic(t *testing.T) {
	svc := New(&fakeProvider{})
	_, _, err := svc.First(context.Background(), "nope", mustSubstrings(t, "x"))
	if !errors.Is(err, domain.ErrDiagnosticNotFound) {
		t.Fatalf("error = %v, want ErrDiagnosticNotFound", err)
	}
}

// --- Single tests ---

type mutableDiag struct {
	name string
	text string
}

func (d *mutableDiag) Name() string { return d.name }

func (d *mutableDiag) Text(_ context.Context) (string, error) { return d.text, nil }

func TestSingle_RefetchesTextEveryCall(t *testing.T) {
	d := &mutableDiag{name: "live", text: "nothing yet"}
	p := mustSubstrings(t, "ERROR")

	if _, ok := Single(context.Background(), d, p); ok {
		t.Fatal("matched before the content appeared")
	}

	d.text = "ERROR appeared"
	m, ok := Single(context.Background(), d, p)
	if !ok {
		t.Fatal("did not observe updated content")
	}
	if m.Line != "ERROR appeared" {
		t.Errorf("Line = %q", m.Line)
	}
}

func TestSingle_NoTextContent(t *testing.T) {
	d := &fakeDiag{name: "binary", err: domain.ErrNoTextContent}
	if _, ok := Single(context.Background(), d, mustSubstrings(t, "ERROR")); ok {
		t.Error("matched a diagnostic without text content")
	}
}
