package domain

import "errors"

var (
	// ErrDiagnosticNotFound signals that no source knows the requested diagnostic.
	ErrDiagnosticNotFound = errors.New("diagnostic not found")
	// ErrNoTextContent signals a diagnostic whose content is not textual.
	ErrNoTextContent = errors.New("diagnostic has no text content")
	// ErrSourceUnavailable signals that a diagnostic source cannot be reached.
	ErrSourceUnavailable = errors.New("diagnostic source unavailable")
)
