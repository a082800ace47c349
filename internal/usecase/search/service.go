package search

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/logsift/internal/domain"
	"github.com/kailas-cloud/logsift/internal/domain/match"
	"github.com/kailas-cloud/logsift/internal/domain/predicate"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
)

// Service runs batch and single log searches. Batch searches fan out one
// goroutine per diagnostic, bounded by the worker limit, and merge results
// single-threaded after all scans finish.
type Service struct {
	sources Provider
	workers int
}

// New creates a search service. sources may be nil when only the
// diagnostic-list operations (Batch, All) are used.
func New(sources Provider) *Service {
	return &Service{
		sources: sources,
		workers: runtime.GOMAXPROCS(0),
	}
}

// WithWorkers configures the concurrent scan limit.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Batch searches the given diagnostics with a rule set and returns the
// matched lines per diagnostic. Diagnostics with no applicable predicate are
// skipped without reading their text. A diagnostic whose text cannot be
// fetched is absent from the result; Batch itself never fails.
func (s *Service) Batch(ctx context.Context, set rule.Set, diags []domain.Diagnostic) match.Result {
	result := match.Result{}
	if set.IsEmpty() || len(diags) == 0 {
		return result
	}

	type unit struct {
		diag  domain.Diagnostic
		preds []predicate.Predicate
	}
	units := make([]unit, 0, len(diags))
	for _, d := range diags {
		preds := set.PredicatesFor(d.Name())
		if len(preds) == 0 {
			continue
		}
		units = append(units, unit{diag: d, preds: preds})
	}
	if len(units) == 0 {
		return result
	}

	// Slots are per-unit, so scans run without shared state or locks.
	lines := make([][]string, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.workers, len(units)))

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			text, err := u.diag.Text(gctx)
			if err != nil {
				return nil
			}
			lines[i] = scanLines(text, u.preds)
			return nil
		})
	}
	_ = g.Wait()

	for i, u := range units {
		result.Add(u.diag.Name(), lines[i])
	}
	return result
}

// All searches every diagnostic with a single predicate, the equivalent of
// Batch with one wildcard rule.
func (s *Service) All(ctx context.Context, diags []domain.Diagnostic, p predicate.Predicate) match.Result {
	r, err := rule.New(nil, []predicate.Predicate{p})
	if err != nil {
		return match.Result{}
	}
	set, err := rule.FromRules([]rule.Rule{r})
	if err != nil {
		return match.Result{}
	}
	return s.Batch(ctx, set, diags)
}

// Search runs a batch search over the provider's diagnostics. A non-empty
// names list restricts the search to those diagnostics.
func (s *Service) Search(ctx context.Context, set rule.Set, names []string) (match.Result, error) {
	diags, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list diagnostics: %w", err)
	}
	if len(names) > 0 {
		keep := make(map[string]struct{}, len(names))
		for _, n := range names {
			keep[n] = struct{}{}
		}
		filtered := make([]domain.Diagnostic, 0, len(names))
		for _, d := range diags {
			if _, ok := keep[d.Name()]; ok {
				filtered = append(filtered, d)
			}
		}
		diags = filtered
	}
	return s.Batch(ctx, set, diags), nil
}

// First locates a diagnostic by name among the provider's diagnostics and
// reports the first predicate match in its current text. The boolean is
// false when the diagnostic has no text or nothing matches.
func (s *Service) First(ctx context.Context, name string, p predicate.Predicate) (predicate.Match, bool, error) {
	diags, err := s.sources.List(ctx)
	if err != nil {
		return predicate.Match{}, false, fmt.Errorf("list diagnostics: %w", err)
	}
	for _, d := range diags {
		if d.Name() != name {
			continue
		}
		m, ok := Single(ctx, d, p)
		return m, ok, nil
	}
	return predicate.Match{}, false, fmt.Errorf("%q: %w", name, domain.ErrDiagnosticNotFound)
}

// Single runs one predicate over one diagnostic and reports the first match.
// The diagnostic's text is fetched on every call, so repeated calls observe
// live content; a diagnostic without textual content never matches.
func Single(ctx context.Context, d domain.Diagnostic, p predicate.Predicate) (predicate.Match, bool) {
	text, err := d.Text(ctx)
	if err != nil {
		return predicate.Match{}, false
	}
	return p.FirstMatchIn(text)
}
