package logsift

import (
	"github.com/kailas-cloud/logsift/internal/domain"
	sourcedir "github.com/kailas-cloud/logsift/internal/source/dir"
)

// Diagnostic is a named piece of text to search. Name is stable and serves
// as the result key and the rule target; Text returns the current content
// and may legitimately differ between calls for live diagnostics.
type Diagnostic = domain.Diagnostic

var (
	// ErrDiagnosticNotFound signals that no source knows the requested
	// diagnostic.
	ErrDiagnosticNotFound = domain.ErrDiagnosticNotFound
	// ErrNoTextContent signals a diagnostic whose content is not textual.
	ErrNoTextContent = domain.ErrNoTextContent
	// ErrSourceUnavailable signals that a diagnostic source cannot be
	// reached.
	ErrSourceUnavailable = domain.ErrSourceUnavailable
)

// StringDiagnostic serves a fixed text under the given name.
func StringDiagnostic(name, text string) Diagnostic {
	return domain.NewStaticDiagnostic(name, text)
}

// FileDiagnostic serves the file at path, re-read on every search so matches
// reflect the current content. An empty name defaults to the file's base
// name. Files containing NUL bytes are treated as non-textual and never
// match.
func FileDiagnostic(name, path string) Diagnostic {
	return sourcedir.NewFileDiagnostic(name, path, 0)
}
