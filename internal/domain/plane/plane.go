// Package plane fits a least-squares plane to points of a local ENU frame.
package plane

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
)

const (
	// DefaultMinPoints is the smallest point count that defines a plane.
	DefaultMinPoints = 3

	// RankTolerance bounds the second singular value, relative to the first,
	// below which the centred points are treated as colinear.
	RankTolerance = 1e-9

	// axisTolerance is the magnitude under which a normal component is treated as zero
	// by the orientation rule.
	axisTolerance = 1e-12
)

// Plane is a fitted plane: a centroid and a unit normal, both in the ENU frame
// of the fitted points. Normal uses X=east, Y=north, Z=up.
type Plane struct {
	Centroid geo.ENU
	Normal   r3.Vector
}

// Distance returns the signed distance of p from the plane along the normal.
func (p Plane) Distance(pt geo.ENU) float64 {
	return p.Normal.Dot(pt.Vec().Sub(p.Centroid.Vec()))
}

// Project returns the orthogonal projection of pt onto the plane.
func (p Plane) Project(pt geo.ENU) geo.ENU {
	return geo.ENUFromVec(pt.Vec().Sub(p.Normal.Mul(p.Distance(pt))))
}

// Fit returns the least-squares plane through points.
//
// The normal is the right-singular vector of the centred N×3 point matrix with
// the smallest singular value. Its sign follows a fixed orientation policy:
// a normal with a positive north component is negated, so North <= 0 always.
// When the north component is within a small tolerance of zero (a horizontal
// or east-facing plane) north is pinned to 0 and the normal is made to point
// down, and failing that west. See orient.
//
// Fewer than minPoints points, non-finite input, or colinear/duplicate points
// fail with a *domain.GeometryError. A minPoints below DefaultMinPoints is raised to it.
func Fit(points []geo.ENU, minPoints int) (Plane, error) {
	if minPoints < DefaultMinPoints {
		minPoints = DefaultMinPoints
	}
	n := len(points)
	if n < minPoints {
		return Plane{}, domain.NewGeometryError(fmt.Sprintf("need at least %d points", minPoints), n)
	}

	var sum r3.Vector
	for _, p := range points {
		if !p.Finite() {
			return Plane{}, domain.NewGeometryError("non-finite point", n)
		}
		sum = sum.Add(p.Vec())
	}
	centroid := sum.Mul(1 / float64(n))

	data := make([]float64, 0, n*3)
	for _, p := range points {
		d := p.Vec().Sub(centroid)
		data = append(data, d.X, d.Y, d.Z)
	}

	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(n, 3, data), mat.SVDThin); !ok {
		return Plane{}, domain.NewGeometryError("singular value decomposition failed", n)
	}

	// Singular values come back in descending order.
	values := svd.Values(nil)
	if values[1] <= RankTolerance*math.Max(1, values[0]) {
		return Plane{}, domain.NewGeometryError("points are colinear or coincident", n)
	}

	var v mat.Dense
	svd.VTo(&v)
	normal := r3.Vector{X: v.At(0, 2), Y: v.At(1, 2), Z: v.At(2, 2)}.Normalize()

	return Plane{Centroid: geo.ENUFromVec(centroid), Normal: orient(normal)}, nil
}

// orient applies the orientation policy to a unit normal.
//
// The base rule negates a normal whose north component is positive. It is
// extended for normals whose north component is within axisTolerance of zero,
// including tiny positive values: north is pinned to exactly 0 and the sign is
// chosen by up (negate when up > 0), then by east (negate when east > 0).
// Without the extension rounding noise in a flattened, horizontal fit would
// decide between an upward and a downward normal.
func orient(n r3.Vector) r3.Vector {
	if math.Abs(n.Y) > axisTolerance {
		if n.Y > 0 {
			return n.Mul(-1)
		}
		return n
	}

	// North is numerically zero: pin it so the policy holds exactly.
	n = r3.Vector{X: n.X, Y: 0, Z: n.Z}.Normalize()
	switch {
	case math.Abs(n.Z) > axisTolerance:
		if n.Z > 0 {
			return n.Mul(-1)
		}
	case n.X > 0:
		return n.Mul(-1)
	}
	return n
}
