package search

import (
	"context"

	"github.com/kailas-cloud/logsift/internal/domain"
)

// Provider enumerates the diagnostics visible to provider-backed search
// operations.
type Provider interface {
	List(ctx context.Context) ([]domain.Diagnostic, error)
}
