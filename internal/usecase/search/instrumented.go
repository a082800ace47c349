package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/logsift/internal/domain/match"
	"github.com/kailas-cloud/logsift/internal/domain/predicate"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
	"github.com/kailas-cloud/logsift/internal/metrics"
)

// Instrumented wraps Service with logging and search metrics. Search
// semantics are identical; the daemon wires this variant.
type Instrumented struct {
	inner  *Service
	logger *zap.Logger
}

// NewInstrumented wraps a search service with observability.
func NewInstrumented(inner *Service, logger *zap.Logger) *Instrumented {
	return &Instrumented{inner: inner, logger: logger}
}

// Search delegates to the inner service and records outcome metrics.
func (s *Instrumented) Search(ctx context.Context, set rule.Set, names []string) (match.Result, error) {
	start := time.Now()

	result, err := s.inner.Search(ctx, set, names)

	duration := time.Since(start)

	if err != nil {
		metrics.SearchesTotal.WithLabelValues("batch", "error").Inc()
		s.logger.Error("Batch search failed",
			zap.Int("rules", set.Len()),
			zap.Int("requested", len(names)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.SearchesTotal.WithLabelValues("batch", "ok").Inc()
	metrics.SearchDuration.WithLabelValues("batch").Observe(duration.Seconds())
	metrics.SearchMatchedDiagnostics.Add(float64(len(result)))
	metrics.SearchMatchedLines.Add(float64(result.TotalLines()))

	s.logger.Debug("Batch search completed",
		zap.Int("rules", set.Len()),
		zap.Int("requested", len(names)),
		zap.Int("diagnostics_matched", len(result)),
		zap.Int("lines_matched", result.TotalLines()),
		zap.Duration("duration", duration),
	)

	return result, nil
}

// First delegates to the inner service and records outcome metrics.
func (s *Instrumented) First(ctx context.Context, name string, p predicate.Predicate) (predicate.Match, bool, error) {
	start := time.Now()

	m, found, err := s.inner.First(ctx, name, p)

	duration := time.Since(start)

	if err != nil {
		metrics.SearchesTotal.WithLabelValues("single", "error").Inc()
		s.logger.Error("Single search failed",
			zap.String("diagnostic", name),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return predicate.Match{}, false, err
	}

	metrics.SearchesTotal.WithLabelValues("single", "ok").Inc()
	metrics.SearchDuration.WithLabelValues("single").Observe(duration.Seconds())

	s.logger.Debug("Single search completed",
		zap.String("diagnostic", name),
		zap.Bool("found", found),
		zap.Duration("duration", duration),
	)

	return m, found, nil
}
