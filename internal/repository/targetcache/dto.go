package targetcache

import (
	"github.com/golang/geo/r3"

	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	"github.com/kailas-cloud/hoverpoint/internal/domain/plane"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

// dtoVersion is bumped whenever the stored layout changes.
const dtoVersion = 1

type solutionDTO struct {
	Version   int          `json:"v"`
	Origin    [3]float64   `json:"origin"`
	Flattened [][3]float64 `json:"flattened"`
	Centroid  [3]float64   `json:"centroid"`
	Normal    [3]float64   `json:"normal"`
	TargetENU [3]float64   `json:"target_enu"`
	Target    [3]float64   `json:"target"`
	Back      float64      `json:"back"`
	Up        float64      `json:"up"`
}

func toDTO(s target.Solution) solutionDTO {
	flat := make([][3]float64, len(s.Flattened))
	for i, p := range s.Flattened {
		flat[i] = enuArray(p)
	}
	n := s.Plane.Normal
	return solutionDTO{
		Version:   dtoVersion,
		Origin:    s.Origin.Triple(),
		Flattened: flat,
		Centroid:  enuArray(s.Plane.Centroid),
		Normal:    [3]float64{n.X, n.Y, n.Z},
		TargetENU: enuArray(s.TargetENU),
		Target:    s.Target.Triple(),
		Back:      s.Params.BackDistance,
		Up:        s.Params.UpDistance,
	}
}

func (d solutionDTO) toSolution() target.Solution {
	flat := make([]geo.ENU, len(d.Flattened))
	for i, p := range d.Flattened {
		flat[i] = enuFromArray(p)
	}
	return target.Solution{
		Origin:    geodeticFromArray(d.Origin),
		Flattened: flat,
		Plane: plane.Plane{
			Centroid: enuFromArray(d.Centroid),
			Normal:   r3.Vector{X: d.Normal[0], Y: d.Normal[1], Z: d.Normal[2]},
		},
		TargetENU: enuFromArray(d.TargetENU),
		Target:    geodeticFromArray(d.Target),
		Params:    target.Params{BackDistance: d.Back, UpDistance: d.Up},
	}
}

func enuArray(p geo.ENU) [3]float64 { return [3]float64{p.East, p.North, p.Up} }

func enuFromArray(a [3]float64) geo.ENU { return geo.ENU{East: a[0], North: a[1], Up: a[2]} }

func geodeticFromArray(a [3]float64) geo.Geodetic {
	return geo.Geodetic{Lat: a[0], Lon: a[1], Alt: a[2]}
}
