package target

import (
	"context"

	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
)

// FrameFactory builds local tangent frames on one ellipsoid.
type FrameFactory interface {
	NewFrame(origin geo.Geodetic) (*geo.Frame, error)
	Ellipsoid() geo.Ellipsoid
}

// Solver computes hover targets. Implemented by Service and its decorators.
type Solver interface {
	Solve(ctx context.Context, corners Corners, opts ...Option) (Solution, error)
}
