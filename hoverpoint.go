package hoverpoint

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

// Solution is a computed hover target with the fit that produced it.
// Geodetic triples are (lat, lon, alt); ENU triples are (east, north, up) relative to Origin.
type Solution struct {
	Target       [3]float64
	Origin       [3]float64
	Centroid     [3]float64
	Normal       [3]float64
	TargetENU    [3]float64
	BackDistance float64
	UpDistance   float64
}

// Calculator holds an ellipsoid and default offsets. Safe for concurrent use.
type Calculator struct {
	svc *target.Service
}

// New creates a Calculator. It fails only for an unknown ellipsoid name.
func New(opts ...Option) (*Calculator, error) {
	cfg := defaultCalcConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}
	ell, err := geo.EllipsoidByName(cfg.ellipsoid)
	if err != nil {
		return nil, fmt.Errorf("hoverpoint: %w", err)
	}
	svc := target.New(geo.NewTransformer(ell), target.Config{BackDistance: cfg.back, UpDistance: cfg.up}, cfg.logger)
	return &Calculator{svc: svc}, nil
}

// ComputeTarget returns the hover target of four (lat, lon, alt) corners.
func (c *Calculator) ComputeTarget(ctx context.Context, corners [][]float64) ([3]float64, error) {
	sol, err := c.Solve(ctx, corners)
	if err != nil {
		return [3]float64{}, err
	}
	return sol.Target, nil
}

// Solve returns the hover target of four (lat, lon, alt) corners with its intermediates.
func (c *Calculator) Solve(ctx context.Context, corners [][]float64) (Solution, error) {
	cs, err := target.CornersFromTriples(corners)
	if err != nil {
		return Solution{}, err
	}
	sol, err := c.svc.Solve(ctx, cs)
	if err != nil {
		return Solution{}, err
	}
	return fromSolution(sol), nil
}

// ComputeTarget is a convenience wrapper that builds a Calculator for one call.
func ComputeTarget(corners [][]float64, opts ...Option) ([3]float64, error) {
	sol, err := Solve(corners, opts...)
	if err != nil {
		return [3]float64{}, err
	}
	return sol.Target, nil
}

// Solve is a convenience wrapper that builds a Calculator for one call.
func Solve(corners [][]float64, opts ...Option) (Solution, error) {
	c, err := New(opts...)
	if err != nil {
		return Solution{}, err
	}
	return c.Solve(context.Background(), corners)
}

func fromSolution(s target.Solution) Solution {
	n := s.Plane.Normal
	return Solution{
		Target:       s.Target.Triple(),
		Origin:       s.Origin.Triple(),
		Centroid:     [3]float64(s.Plane.Centroid.Values()),
		Normal:       [3]float64{n.X, n.Y, n.Z},
		TargetENU:    [3]float64(s.TargetENU.Values()),
		BackDistance: s.Params.BackDistance,
		UpDistance:   s.Params.UpDistance,
	}
}
