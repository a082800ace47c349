package logsift

import (
	"context"

	searchuc "github.com/kailas-cloud/logsift/internal/usecase/search"
)

// SingleSearch binds one diagnostic to one predicate and reports only the
// first match. Every call fetches the diagnostic's text anew, so repeated
// calls observe live content.
type SingleSearch struct {
	diag Diagnostic
	pred Predicate
}

// NewSingleSearch pairs a diagnostic with a predicate.
func NewSingleSearch(d Diagnostic, p Predicate) SingleSearch {
	return SingleSearch{diag: d, pred: p}
}

// First reports the first match in the diagnostic's current text. The
// boolean is false when nothing matches or the diagnostic has no textual
// content.
func (s SingleSearch) First(ctx context.Context) (Match, bool) {
	return searchuc.Single(ctx, s.diag, s.pred)
}

// FirstMatch returns the matched fragment of the first matching line: the
// first configured substring found there, or the regex match span.
func (s SingleSearch) FirstMatch(ctx context.Context) (string, bool) {
	m, ok := s.First(ctx)
	if !ok {
		return "", false
	}
	return m.Fragment, true
}

// FirstMatchingLine returns the full first matching line.
func (s SingleSearch) FirstMatchingLine(ctx context.Context) (string, bool) {
	m, ok := s.First(ctx)
	if !ok {
		return "", false
	}
	return m.Line, true
}
