package dir

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/logsift/internal/domain"
	"github.com/kailas-cloud/logsift/internal/source"
)

// Compile-time check: Source implements source.Provider.
var _ source.Provider = (*Source)(nil)

// ErrTooLarge marks diagnostic files above the configured size cap.
var ErrTooLarge = errors.New("diagnostic file too large")

// Config holds parameters for a directory-backed source.
type Config struct {
	// Path is the directory holding diagnostic files.
	Path string
	// Pattern filters file names, filepath.Match syntax. Empty means all files.
	Pattern string
	// MaxBytes caps file size at read time. Zero or negative means no cap.
	MaxBytes int64
}

// Source serves every matching file in a directory as a diagnostic named
// after its base name. Listing is non-recursive.
type Source struct {
	path     string
	pattern  string
	maxBytes int64
}

// New creates a directory source.
func New(cfg Config) (*Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return &Source{
		path:     filepath.Clean(cfg.Path),
		pattern:  pattern,
		maxBytes: cfg.MaxBytes,
	}, nil
}

// Ping checks that the directory exists and is readable.
func (s *Source) Ping(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return &source.Error{Op: source.OpStat, Err: err}
	}
	if !info.IsDir() {
		return &source.Error{Op: source.OpStat, Err: fmt.Errorf("%s is not a directory", s.path)}
	}
	return nil
}

// List returns one diagnostic per matching file, in name order.
func (s *Source) List(ctx context.Context) ([]domain.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, &source.Error{Op: source.OpReadDir, Err: err}
	}

	diags := make([]domain.Diagnostic, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		ok, err := filepath.Match(s.pattern, ent.Name())
		if err != nil {
			return nil, &source.Error{Op: source.OpReadDir, Err: err}
		}
		if !ok {
			continue
		}
		diags = append(diags, &fileDiagnostic{
			name:     ent.Name(),
			path:     filepath.Join(s.path, ent.Name()),
			maxBytes: s.maxBytes,
		})
	}
	return diags, nil
}

// NewFileDiagnostic returns a diagnostic backed by a single file, read again
// on every Text call. An empty name defaults to the file's base name; a zero
// or negative maxBytes means no size cap.
func NewFileDiagnostic(name, path string, maxBytes int64) domain.Diagnostic {
	if name == "" {
		name = filepath.Base(path)
	}
	return &fileDiagnostic{name: name, path: path, maxBytes: maxBytes}
}

// fileDiagnostic reads its file on every Text call so searches always see
// the current content.
type fileDiagnostic struct {
	name     string
	path     string
	maxBytes int64
}

func (d *fileDiagnostic) Name() string { return d.name }

func (d *fileDiagnostic) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", d.name, domain.ErrDiagnosticNotFound)
		}
		return "", &source.Error{Op: source.OpStat, Err: err}
	}
	if d.maxBytes > 0 && info.Size() > d.maxBytes {
		return "", &source.Error{Op: source.OpRead, Err: ErrTooLarge}
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", d.name, domain.ErrDiagnosticNotFound)
		}
		return "", &source.Error{Op: source.OpRead, Err: err}
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%s: %w", d.name, domain.ErrNoTextContent)
	}
	return string(data), nil
}
