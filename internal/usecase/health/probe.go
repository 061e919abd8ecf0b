package health

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

// probeCorners is a 10 m square at height 100 on the equator and prime meridian.
var probeCorners = target.Corners{
	{Lat: -0.0000452, Lon: -0.0000452, Alt: 100},
	{Lat: -0.0000452, Lon: 0.0000452, Alt: 100},
	{Lat: 0.0000452, Lon: 0.0000452, Alt: 100},
	{Lat: 0.0000452, Lon: -0.0000452, Alt: 100},
}

// probeTolerance bounds the height error of the probe target, in metres.
const probeTolerance = 0.01

// SolverProbe solves a fixed horizontal square and checks the target height.
type SolverProbe struct {
	solver target.Solver
}

// NewSolverProbe wraps a solver. Pass the undecorated solver so probes skip cache and metrics.
func NewSolverProbe(solver target.Solver) *SolverProbe {
	return &SolverProbe{solver: solver}
}

// Probe implements Probe.
func (p *SolverProbe) Probe(ctx context.Context) error {
	sol, err := p.solver.Solve(ctx, probeCorners,
		target.WithBackDistance(10), target.WithUpDistance(5))
	if err != nil {
		return fmt.Errorf("solve probe: %w", err)
	}
	if !sol.Target.Valid() {
		return fmt.Errorf("probe target out of range: %+v", sol.Target)
	}
	// The plane is horizontal with a downward normal, so the target rises back+up.
	want := geo.MeanGeodetic(probeCorners).Alt + 15
	if d := math.Abs(sol.Target.Alt - want); d > probeTolerance {
		return fmt.Errorf("probe target height %.3f m, want %.3f m", sol.Target.Alt, want)
	}
	return nil
}
