package target

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	"github.com/kailas-cloud/hoverpoint/internal/domain/plane"
)

// CornerCount is the number of corners of a target plane.
const CornerCount = 4

const (
	// DefaultBackDistance is the retreat from the plane along its normal, in metres.
	DefaultBackDistance = 10.0
	// DefaultUpDistance is the vertical rise after the retreat, in metres.
	DefaultUpDistance = 4.0
)

// Corners are the geodetic corners of the target plane. Order is kept but carries no meaning.
type Corners []geo.Geodetic

// CornersFromTriples converts (lat, lon, alt) triples into Corners.
// Any slice of length three is accepted per corner.
func CornersFromTriples(triples [][]float64) (Corners, error) {
	if len(triples) != CornerCount {
		return nil, fmt.Errorf("%w: got %d points, want %d", domain.ErrInvalidCorners, len(triples), CornerCount)
	}
	out := make(Corners, len(triples))
	for i, t := range triples {
		if len(t) != 3 {
			return nil, fmt.Errorf("%w: point %d has %d values, want 3", domain.ErrInvalidCorners, i, len(t))
		}
		out[i] = geo.Geodetic{Lat: t[0], Lon: t[1], Alt: t[2]}
	}
	return out, nil
}

// Config holds the default offsets of a Service.
type Config struct {
	BackDistance float64
	UpDistance   float64
}

// DefaultConfig returns back 10 m and up 4 m.
func DefaultConfig() Config {
	return Config{BackDistance: DefaultBackDistance, UpDistance: DefaultUpDistance}
}

// Params are the offsets in effect for one computation.
type Params struct {
	BackDistance float64
	UpDistance   float64
}

// Option overrides a Config value for one call.
type Option func(*Params)

// WithBackDistance sets the retreat distance along the plane normal.
func WithBackDistance(m float64) Option {
	return func(p *Params) { p.BackDistance = m }
}

// WithUpDistance sets the vertical rise applied after the retreat.
func WithUpDistance(m float64) Option {
	return func(p *Params) { p.UpDistance = m }
}

// Resolve applies opts on top of the config.
func (c Config) Resolve(opts ...Option) Params {
	p := Params(c)
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p Params) validate() error {
	if math.IsNaN(p.BackDistance) || math.IsInf(p.BackDistance, 0) {
		return fmt.Errorf("%w: back distance %v", domain.ErrInvalidOffset, p.BackDistance)
	}
	if math.IsNaN(p.UpDistance) || math.IsInf(p.UpDistance, 0) {
		return fmt.Errorf("%w: up distance %v", domain.ErrInvalidOffset, p.UpDistance)
	}
	return nil
}

// Solution is a computed hover target with the intermediates that produced it.
// ENU values are relative to Origin.
type Solution struct {
	Origin    geo.Geodetic
	Flattened []geo.ENU
	Plane     plane.Plane
	TargetENU geo.ENU
	Target    geo.Geodetic
	Params    Params
}
