package plane

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
)

func enu(e, n, u float64) geo.ENU { return geo.ENU{East: e, North: n, Up: u} }

// pointsOn samples a grid centred on c in the plane with unit normal n.
// The grid is symmetric, so c is also the mean of the samples.
func pointsOn(c r3.Vector, n r3.Vector, as, bs []float64) []geo.ENU {
	u := n.Ortho()
	v := n.Cross(u).Normalize()
	var pts []geo.ENU
	for _, a := range as {
		for _, b := range bs {
			pts = append(pts, geo.ENUFromVec(c.Add(u.Mul(a)).Add(v.Mul(b))))
		}
	}
	return pts
}

func TestFit_ExactPlane(t *testing.T) {
	normals := []r3.Vector{
		{X: 1, Y: 2, Z: 3},
		{X: 0, Y: -1, Z: 0},
		{X: -0.3, Y: 0.9, Z: 0.1},
		{X: 5, Y: 0.01, Z: -2},
	}
	grids := []struct {
		name   string
		as, bs []float64
	}{
		{"four corners", []float64{-3, 3}, []float64{-2, 2}},
		{"three by three", []float64{-3, 0, 3}, []float64{-2, 0, 2}},
	}
	c := r3.Vector{X: 12, Y: -7, Z: 3}
	for _, g := range grids {
		for _, want := range normals {
			want = want.Normalize()
			pts := pointsOn(c, want, g.as, g.bs)
			p, err := Fit(pts, DefaultMinPoints)
			require.NoError(t, err, g.name)

			assert.InDelta(t, 1, p.Normal.Norm(), 1e-12, g.name)
			assert.LessOrEqual(t, p.Normal.Y, 0.0, g.name)
			assert.InDelta(t, 1, math.Abs(p.Normal.Dot(want)), 1e-9, "%s: normal %v vs %v", g.name, p.Normal, want)
			assert.InDelta(t, 0, p.Centroid.Vec().Distance(c), 1e-9, g.name)
			for _, pt := range pts {
				assert.InDelta(t, 0, p.Distance(pt), 1e-9, g.name)
			}
		}
	}
}

func TestFit_OrientationNorthNonPositive(t *testing.T) {
	// Plane facing north: the fitted normal must be flipped to face south.
	pts := []geo.ENU{enu(0, 5, 0), enu(10, 5, 0), enu(0, 5, 3), enu(10, 5, 3)}
	p, err := Fit(pts, DefaultMinPoints)
	require.NoError(t, err)
	assert.InDelta(t, -1, p.Normal.Y, 1e-12)
}

func TestFit_HorizontalPointsDown(t *testing.T) {
	pts := []geo.ENU{enu(-5, -5, 2), enu(5, -5, 2), enu(5, 5, 2), enu(-5, 5, 2)}
	p, err := Fit(pts, DefaultMinPoints)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Normal.Y)
	assert.InDelta(t, -1, p.Normal.Z, 1e-12)
	assert.InDelta(t, 2, p.Centroid.Up, 1e-12)
}

func TestFit_EastFacingPointsWest(t *testing.T) {
	pts := []geo.ENU{enu(1, 0, 0), enu(1, 4, 0), enu(1, 0, 4), enu(1, 4, 4)}
	p, err := Fit(pts, DefaultMinPoints)
	require.NoError(t, err)
	assert.InDelta(t, -1, p.Normal.X, 1e-12)
	assert.LessOrEqual(t, p.Normal.Y, 0.0)
}

func TestOrient(t *testing.T) {
	tests := []struct {
		name string
		in   r3.Vector
		want r3.Vector
	}{
		{"north positive is negated", r3.Vector{Y: 0.6, Z: 0.8}, r3.Vector{Y: -0.6, Z: -0.8}},
		{"north negative is kept", r3.Vector{Y: -0.6, Z: 0.8}, r3.Vector{Y: -0.6, Z: 0.8}},
		{"small north above tolerance is negated", r3.Vector{Y: 1e-6, Z: 1}, r3.Vector{Y: -1e-6, Z: -1}},
		{"noise north with up is pinned down", r3.Vector{Y: 5e-13, Z: 1}, r3.Vector{Z: -1}},
		{"noise north with down is kept down", r3.Vector{Y: 5e-13, Z: -1}, r3.Vector{Z: -1}},
		{"noise north facing east turns west", r3.Vector{X: 1, Y: 5e-13}, r3.Vector{X: -1}},
		{"west is kept", r3.Vector{X: -1}, r3.Vector{X: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orient(tt.in)
			assert.LessOrEqual(t, got.Y, 0.0)
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-12)
		})
	}
}

func TestFit_NoisyPoints(t *testing.T) {
	// Offsets alternate in sign so the best fit is still z=0.
	pts := []geo.ENU{
		enu(0, 0, 0.01), enu(10, 0, -0.01), enu(10, 10, 0.01), enu(0, 10, -0.01),
		enu(5, 5, 0), enu(0, 5, 0), enu(10, 5, 0),
	}
	p, err := Fit(pts, DefaultMinPoints)
	require.NoError(t, err)
	assert.InDelta(t, 1, math.Abs(p.Normal.Z), 1e-3)
}

func TestFit_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []geo.ENU
	}{
		{"empty", nil},
		{"two points", []geo.ENU{enu(0, 0, 0), enu(1, 1, 1)}},
		{"colinear", []geo.ENU{enu(0, 0, 0), enu(1, 1, 1), enu(2, 2, 2), enu(3, 3, 3)}},
		{"duplicates", []geo.ENU{enu(4, 4, 4), enu(4, 4, 4), enu(4, 4, 4), enu(4, 4, 4)}},
		{"non-finite", []geo.ENU{enu(0, 0, 0), enu(1, 0, 0), enu(math.NaN(), 1, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.pts, DefaultMinPoints)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrGeometry))

			var ge *domain.GeometryError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, len(tt.pts), ge.Points)
		})
	}
}

func TestFit_MinPoints(t *testing.T) {
	pts := []geo.ENU{enu(0, 0, 0), enu(1, 0, 0), enu(0, 1, 0)}

	_, err := Fit(pts, 4)
	assert.ErrorIs(t, err, domain.ErrGeometry)

	// Values below three are raised to three.
	_, err = Fit(pts, 1)
	assert.NoError(t, err)
}

func TestPlane_DistanceAndProject(t *testing.T) {
	p := Plane{Centroid: enu(0, 0, 2), Normal: r3.Vector{Z: -1}}

	assert.InDelta(t, -3, p.Distance(enu(7, 1, 5)), 1e-12)

	proj := p.Project(enu(7, 1, 5))
	assert.Equal(t, enu(7, 1, 2), proj)
	assert.InDelta(t, 0, p.Distance(proj), 1e-12)
}
