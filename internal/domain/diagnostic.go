package domain

import "context"

// Diagnostic is the shared contract for one named piece of log content.
// Text returns the current full content and may return different content on
// repeated calls (live or file-backed diagnostics); callers must not cache
// across calls. A diagnostic without textual content reports an error from
// Text, which search layers treat as "skip", never as a search failure.
type Diagnostic interface {
	Name() string
	Text(ctx context.Context) (string, error)
}

// StaticDiagnostic is an immutable in-memory diagnostic.
type StaticDiagnostic struct {
	name string
	text string
}

// NewStaticDiagnostic creates a diagnostic with fixed content.
func NewStaticDiagnostic(name, text string) StaticDiagnostic {
	return StaticDiagnostic{name: name, text: text}
}

func (d StaticDiagnostic) Name() string { return d.name }

func (d StaticDiagnostic) Text(_ context.Context) (string, error) { return d.text, nil }
