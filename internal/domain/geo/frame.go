package geo

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
)

// Frame is a local east-north-up tangent frame anchored at a geodetic origin.
// The rotation is computed once; a Frame is immutable and safe for concurrent use.
type Frame struct {
	t      *Transformer
	origin Geodetic
	o      r3.Vector // origin in ECEF
	// Rows of the ECEF-delta -> ENU rotation.
	east, north, up r3.Vector
}

// NewFrame builds the ENU frame at origin.
func (t *Transformer) NewFrame(origin Geodetic) (*Frame, error) {
	o, err := t.toECEF(origin)
	if err != nil {
		return nil, domain.NewGeodesyError("enu origin", err, origin.Values()...)
	}

	sinLat, cosLat := math.Sincos(origin.Lat * degToRad)
	sinLon, cosLon := math.Sincos(origin.Lon * degToRad)

	return &Frame{
		t:      t,
		origin: origin,
		o:      o,
		east:   r3.Vector{X: -sinLon, Y: cosLon, Z: 0},
		north:  r3.Vector{X: -sinLat * cosLon, Y: -sinLat * sinLon, Z: cosLat},
		up:     r3.Vector{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat},
	}, nil
}

// Origin returns the geodetic origin of the frame.
func (f *Frame) Origin() Geodetic { return f.origin }

// Rotation returns the ECEF-delta -> ENU rotation matrix, row-major.
func (f *Frame) Rotation() [3][3]float64 {
	return [3][3]float64{
		{f.east.X, f.east.Y, f.east.Z},
		{f.north.X, f.north.Y, f.north.Z},
		{f.up.X, f.up.Y, f.up.Z},
	}
}

// ToENU converts a geodetic point into the frame.
func (f *Frame) ToENU(p Geodetic) (ENU, error) {
	v, err := f.toENU(p)
	if err != nil {
		return ENU{}, domain.NewGeodesyError("geodetic to enu", err, p.Values()...)
	}
	return v, nil
}

// ToGeodetic converts a point of the frame back to geodetic coordinates.
func (f *Frame) ToGeodetic(p ENU) (Geodetic, error) {
	g, err := f.toGeodetic(p)
	if err != nil {
		return Geodetic{}, domain.NewGeodesyError("enu to geodetic", err, p.Values()...)
	}
	return g, nil
}

func (f *Frame) toENU(p Geodetic) (ENU, error) {
	v, err := f.t.toECEF(p)
	if err != nil {
		return ENU{}, err
	}
	d := v.Sub(f.o)
	return ENU{East: f.east.Dot(d), North: f.north.Dot(d), Up: f.up.Dot(d)}, nil
}

func (f *Frame) toGeodetic(p ENU) (Geodetic, error) {
	if !p.Finite() {
		return Geodetic{}, errNonFinite
	}
	// Transpose of the rotation: columns are the east/north/up unit vectors.
	d := f.east.Mul(p.East).Add(f.north.Mul(p.North)).Add(f.up.Mul(p.Up))
	return f.t.fromECEF(f.o.Add(d))
}

// GeodeticToENU converts points into the ENU frame at origin, preserving order.
// The first failing point aborts the batch; no partial result is returned.
func (t *Transformer) GeodeticToENU(points []Geodetic, origin Geodetic) ([]ENU, error) {
	f, err := t.NewFrame(origin)
	if err != nil {
		return nil, err
	}
	return f.ToENUBatch(points)
}

// ENUToGeodetic converts points of the ENU frame at origin back to geodetic, preserving order.
func (t *Transformer) ENUToGeodetic(points []ENU, origin Geodetic) ([]Geodetic, error) {
	f, err := t.NewFrame(origin)
	if err != nil {
		return nil, err
	}
	return f.ToGeodeticBatch(points)
}

// ToENUBatch converts points into the frame, preserving order.
func (f *Frame) ToENUBatch(points []Geodetic) ([]ENU, error) {
	out := make([]ENU, len(points))
	for i, p := range points {
		v, err := f.toENU(p)
		if err != nil {
			return nil, &domain.GeodesyError{Op: "geodetic to enu", Index: i, Values: p.Values(), Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// ToGeodeticBatch converts points of the frame to geodetic, preserving order.
func (f *Frame) ToGeodeticBatch(points []ENU) ([]Geodetic, error) {
	out := make([]Geodetic, len(points))
	for i, p := range points {
		g, err := f.toGeodetic(p)
		if err != nil {
			return nil, &domain.GeodesyError{Op: "enu to geodetic", Index: i, Values: p.Values(), Err: err}
		}
		out[i] = g
	}
	return out, nil
}
