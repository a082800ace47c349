package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/logsift/internal/domain"
	"github.com/kailas-cloud/logsift/internal/source"
)

// List scans for keys under the configured prefix and returns one
// diagnostic per key.
func (s *Source) List(ctx context.Context) ([]domain.Diagnostic, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(s.prefix + "*").Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &source.Error{Op: source.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	diags := make([]domain.Diagnostic, 0, len(keys))
	for _, key := range keys {
		diags = append(diags, &keyDiagnostic{
			src:  s,
			key:  key,
			name: strings.TrimPrefix(key, s.prefix),
		})
	}
	return diags, nil
}

// keyDiagnostic reads its key on every Text call. A key deleted between
// listing and reading surfaces as ErrDiagnosticNotFound.
type keyDiagnostic struct {
	src  *Source
	key  string
	name string
}

func (d *keyDiagnostic) Name() string { return d.name }

func (d *keyDiagnostic) Text(ctx context.Context) (string, error) {
	cmd := d.src.b().Get().Key(d.key).Build()
	text, err := d.src.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", fmt.Errorf("%s: %w", d.name, domain.ErrDiagnosticNotFound)
		}
		return "", &source.Error{Op: source.OpGet, Err: err}
	}
	return text, nil
}
