package source

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/logsift/internal/domain"
)

// --- Mocks ---

type mockProvider struct {
	diags []domain.Diagnostic
	err   error
}

func (m *mockProvider) List(_ context.Context) ([]domain.Diagnostic, error) {
	return m.diags, m.err
}

// --- Tests ---

func TestStatic_ListsInNameOrder(t *testing.T) {
	s := NewStatic(map[string]string{
		"zeta":  "z",
		"alpha": "a",
		"mid":   "m",
	})

	diags, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"alpha", "mid", "zeta"}
	if len(diags) != len(want) {
		t.Fatalf("got %d diagnostics, want %d", len(diags), len(want))
	}
	for i, name := range want {
		if diags[i].Name() != name {
			t.Errorf("diags[%d] = %q, want %q", i, diags[i].Name(), name)
		}
	}
}

func TestStatic_TextRoundTrip(t *testing.T) {
	s := NewStatic(map[string]string{"syslog": "boot ok\nERROR disk full"})

	diags, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := diags[0].Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "boot ok\nERROR disk full" {
		t.Errorf("text = %q", text)
	}
}

func TestStatic_Ping(t *testing.T) {
	if err := NewStatic(nil).Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMulti_EarlierProviderWins(t *testing.T) {
	first := &mockProvider{diags: []domain.Diagnostic{
		domain.NewStaticDiagnostic("syslog", "from first"),
	}}
	second := &mockProvider{diags: []domain.Diagnostic{
		domain.NewStaticDiagnostic("syslog", "from second"),
		domain.NewStaticDiagnostic("crash", "signal 11"),
	}}

	diags, err := NewMulti(first, second).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(diags))
	}

	text, err := diags[0].Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "from first" {
		t.Errorf("duplicate name resolved to %q, want the first provider", text)
	}
}

func TestMulti_ProviderErrorFailsListing(t *testing.T) {
	wantErr := errors.New("backend down")
	m := NewMulti(
		&mockProvider{diags: []domain.Diagnostic{domain.NewStaticDiagnostic("a", "x")}},
		&mockProvider{err: wantErr},
	)

	_, err := m.List(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want provider error", err)
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("permission denied")
	err := &Error{Op: OpRead, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("Unwrap lost the inner error")
	}
	if err.Error() != "read: permission denied" {
		t.Errorf("Error() = %q", err.Error())
	}
}
