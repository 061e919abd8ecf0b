package target

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
	"github.com/kailas-cloud/hoverpoint/internal/metrics"
)

// Instrumented wraps a Solver with Prometheus metrics and failure logging.
type Instrumented struct {
	inner  Solver
	logger *zap.Logger
}

// NewInstrumented wraps inner. metrics.RegisterTargetMetrics must have been called.
func NewInstrumented(inner Solver, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{inner: inner, logger: logger}
}

// Solve delegates to the inner solver and records the outcome.
func (i *Instrumented) Solve(ctx context.Context, corners Corners, opts ...Option) (Solution, error) {
	start := time.Now()

	sol, err := i.inner.Solve(ctx, corners, opts...)

	duration := time.Since(start)
	metrics.TargetComputationDuration.Observe(duration.Seconds())

	if err != nil {
		kind := ErrorKind(err)
		metrics.TargetComputationsTotal.WithLabelValues("error").Inc()
		metrics.TargetErrorsTotal.WithLabelValues(kind).Inc()
		i.logger.Warn("Hover target computation failed",
			zap.String("kind", kind),
			zap.Int("corners", len(corners)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return Solution{}, err
	}

	metrics.TargetComputationsTotal.WithLabelValues("ok").Inc()
	return sol, nil
}

// ErrorKind classifies a solver error into a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCorners):
		return "invalid_corners"
	case errors.Is(err, domain.ErrInvalidOffset):
		return "invalid_offset"
	case errors.Is(err, domain.ErrGeodesy):
		return "geodesy"
	case errors.Is(err, domain.ErrGeometry):
		return "geometry"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
