package source

import (
	"context"
	"sort"

	"github.com/kailas-cloud/logsift/internal/domain"
)

// Provider yields named diagnostics ready for searching.
type Provider interface {
	List(ctx context.Context) ([]domain.Diagnostic, error)
}

// Pinger checks source availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Static serves a fixed in-memory set of diagnostics. Used by the CLI
// for ad-hoc input and as a building block in tests.
type Static struct {
	diags []domain.Diagnostic
}

// NewStatic builds a Static provider from a name-to-text mapping.
// Diagnostics are listed in name order.
func NewStatic(texts map[string]string) *Static {
	names := make([]string, 0, len(texts))
	for name := range texts {
		names = append(names, name)
	}
	sort.Strings(names)

	diags := make([]domain.Diagnostic, 0, len(names))
	for _, name := range names {
		diags = append(diags, domain.NewStaticDiagnostic(name, texts[name]))
	}
	return &Static{diags: diags}
}

// List returns the fixed diagnostics.
func (s *Static) List(_ context.Context) ([]domain.Diagnostic, error) {
	out := make([]domain.Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out, nil
}

// Ping always succeeds; static content has no backing store.
func (s *Static) Ping(_ context.Context) error { return nil }

// Multi merges several providers into one namespace. When two providers
// expose the same diagnostic name, the earlier provider wins.
type Multi struct {
	providers []Provider
}

// NewMulti combines providers in precedence order.
func NewMulti(providers ...Provider) *Multi {
	return &Multi{providers: providers}
}

// List gathers diagnostics from every provider. A failing provider fails
// the whole listing; callers never see a partial view.
func (m *Multi) List(ctx context.Context) ([]domain.Diagnostic, error) {
	var out []domain.Diagnostic
	seen := make(map[string]struct{})

	for _, p := range m.providers {
		diags, err := p.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range diags {
			if _, dup := seen[d.Name()]; dup {
				continue
			}
			seen[d.Name()] = struct{}{}
			out = append(out, d)
		}
	}
	return out, nil
}
