package geo

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi

	// latitudeTolerance ends the iterative ECEF -> geodetic latitude solution (radians).
	latitudeTolerance = 1e-14
	maxIterations     = 10
)

var (
	errNonFinite   = errors.New("non-finite coordinate")
	errLatitude    = errors.New("latitude out of range [-90, 90]")
	errLongitude   = errors.New("longitude out of range [-180, 180]")
	errEarthCentre = errors.New("latitude undefined at the centre of the ellipsoid")
)

// Transformer converts between geodetic and ECEF coordinates on one ellipsoid.
// It is immutable and safe for concurrent use.
type Transformer struct {
	ellipsoid Ellipsoid
	e2        float64
	b         float64
	ep2       float64 // second eccentricity squared
}

var defaultTransformer = NewTransformer(WGS84())

// Default returns the shared WGS84 transformer.
func Default() *Transformer { return defaultTransformer }

// NewTransformer creates a transformer for the given ellipsoid.
func NewTransformer(e Ellipsoid) *Transformer {
	b := e.B()
	return &Transformer{
		ellipsoid: e,
		e2:        e.E2(),
		b:         b,
		ep2:       (e.A*e.A - b*b) / (b * b),
	}
}

// Ellipsoid returns the reference ellipsoid.
func (t *Transformer) Ellipsoid() Ellipsoid { return t.ellipsoid }

// GeodeticToECEF converts a geodetic point to ECEF.
func (t *Transformer) GeodeticToECEF(p Geodetic) (ECEF, error) {
	v, err := t.toECEF(p)
	if err != nil {
		return ECEF{}, domain.NewGeodesyError("geodetic to ecef", err, p.Values()...)
	}
	return ecefFromVec(v), nil
}

// ECEFToGeodetic converts an ECEF point to geodetic.
func (t *Transformer) ECEFToGeodetic(p ECEF) (Geodetic, error) {
	g, err := t.fromECEF(p.Vec())
	if err != nil {
		return Geodetic{}, domain.NewGeodesyError("ecef to geodetic", err, p.Values()...)
	}
	return g, nil
}

func (t *Transformer) toECEF(p Geodetic) (r3.Vector, error) {
	if !p.Finite() {
		return r3.Vector{}, errNonFinite
	}
	if p.Lat < -90 || p.Lat > 90 {
		return r3.Vector{}, errLatitude
	}
	if p.Lon < -180 || p.Lon > 180 {
		return r3.Vector{}, errLongitude
	}

	lat := p.Lat * degToRad
	lon := p.Lon * degToRad
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	// Radius of curvature in the prime vertical
	n := t.ellipsoid.A / math.Sqrt(1-t.e2*sinLat*sinLat)

	return r3.Vector{
		X: (n + p.Alt) * cosLat * cosLon,
		Y: (n + p.Alt) * cosLat * sinLon,
		Z: (n*(1-t.e2) + p.Alt) * sinLat,
	}, nil
}

func (t *Transformer) fromECEF(v r3.Vector) (Geodetic, error) {
	if !finite(v.X, v.Y, v.Z) {
		return Geodetic{}, errNonFinite
	}
	a := t.ellipsoid.A
	p := math.Hypot(v.X, v.Y)
	if p == 0 && v.Z == 0 {
		return Geodetic{}, errEarthCentre
	}

	lon := math.Atan2(v.Y, v.X)

	// Bowring's parametric latitude gives a start within micro-radians.
	theta := math.Atan2(v.Z*a, p*t.b)
	sinT, cosT := math.Sincos(theta)
	lat := math.Atan2(v.Z+t.ep2*t.b*sinT*sinT*sinT, p-t.e2*a*cosT*cosT*cosT)

	for i := 0; i < maxIterations; i++ {
		sinLat := math.Sin(lat)
		n := a / math.Sqrt(1-t.e2*sinLat*sinLat)
		next := math.Atan2(v.Z+t.e2*n*sinLat, p)
		done := math.Abs(next-lat) < latitudeTolerance
		lat = next
		if done {
			break
		}
	}

	// Height without dividing by cos(lat), valid at the poles.
	sinLat, cosLat := math.Sincos(lat)
	h := p*cosLat + v.Z*sinLat - a*math.Sqrt(1-t.e2*sinLat*sinLat)

	return Geodetic{Lat: lat * radToDeg, Lon: lon * radToDeg, Alt: h}, nil
}
