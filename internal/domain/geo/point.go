// Package geo converts points between geodetic, Earth-centred (ECEF) and
// local east-north-up (ENU) frames on a reference ellipsoid.
package geo

import (
	"math"

	"github.com/golang/geo/r3"
)

// Geodetic is a latitude/longitude in degrees and an ellipsoidal height in metres.
type Geodetic struct {
	Lat float64
	Lon float64
	Alt float64
}

// Values returns the point as a (lat, lon, alt) triple.
func (p Geodetic) Values() []float64 { return []float64{p.Lat, p.Lon, p.Alt} }

// Triple returns the point as a fixed-size (lat, lon, alt) array.
func (p Geodetic) Triple() [3]float64 { return [3]float64{p.Lat, p.Lon, p.Alt} }

// Finite reports whether every component is a finite number.
func (p Geodetic) Finite() bool { return finite(p.Lat, p.Lon, p.Alt) }

// Valid reports whether the point is finite and inside the latitude/longitude ranges.
func (p Geodetic) Valid() bool { return p.Finite() && ValidateCoordinates(p.Lat, p.Lon) }

// MeanGeodetic averages latitude, longitude and height independently.
// The result is a local-frame anchor, not a geodesic centroid.
func MeanGeodetic(points []Geodetic) Geodetic {
	if len(points) == 0 {
		return Geodetic{}
	}
	var m Geodetic
	for _, p := range points {
		m.Lat += p.Lat
		m.Lon += p.Lon
		m.Alt += p.Alt
	}
	n := float64(len(points))
	return Geodetic{Lat: m.Lat / n, Lon: m.Lon / n, Alt: m.Alt / n}
}

// ECEF is an Earth-centred, Earth-fixed position in metres.
type ECEF struct {
	X float64
	Y float64
	Z float64
}

// Values returns the point as an (x, y, z) triple.
func (p ECEF) Values() []float64 { return []float64{p.X, p.Y, p.Z} }

// Vec returns the point as an r3 vector.
func (p ECEF) Vec() r3.Vector { return r3.Vector{X: p.X, Y: p.Y, Z: p.Z} }

func ecefFromVec(v r3.Vector) ECEF { return ECEF{X: v.X, Y: v.Y, Z: v.Z} }

// ENU is a position in metres in the tangent plane of a Frame origin.
// Values from different origins are not comparable.
type ENU struct {
	East  float64
	North float64
	Up    float64
}

// Values returns the point as an (east, north, up) triple.
func (p ENU) Values() []float64 { return []float64{p.East, p.North, p.Up} }

// Vec returns the point as an r3 vector (X=east, Y=north, Z=up).
func (p ENU) Vec() r3.Vector { return r3.Vector{X: p.East, Y: p.North, Z: p.Up} }

// Finite reports whether every component is a finite number.
func (p ENU) Finite() bool { return finite(p.East, p.North, p.Up) }

// ENUFromVec converts an r3 vector (X=east, Y=north, Z=up) to an ENU point.
func ENUFromVec(v r3.Vector) ENU { return ENU{East: v.X, North: v.Y, Up: v.Z} }

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
