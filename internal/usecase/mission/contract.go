package mission

import (
	"context"

	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

// TargetSolver computes hover targets that become mission waypoints.
type TargetSolver interface {
	Solve(ctx context.Context, corners target.Corners, opts ...target.Option) (target.Solution, error)
}
