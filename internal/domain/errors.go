package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrGeodesy signals a coordinate transform that cannot be evaluated.
	ErrGeodesy = errors.New("geodesy error")
	// ErrGeometry signals a degenerate plane fit.
	ErrGeometry = errors.New("geometry error")
	// ErrInvalidCorners signals a corner set that is not exactly four points.
	ErrInvalidCorners = errors.New("invalid corners")
	// ErrInvalidOffset signals a non-finite back or up distance.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrEmptyMission signals a mission without waypoints.
	ErrEmptyMission = errors.New("mission has no waypoints")
	// ErrInvalidMission signals bad mission-level settings such as speed or takeoff point.
	ErrInvalidMission = errors.New("invalid mission")
	// ErrInvalidWaypoint signals a waypoint with out-of-range or non-finite values.
	ErrInvalidWaypoint = errors.New("invalid waypoint")
	// ErrNoLocation signals an image without usable GPS metadata.
	ErrNoLocation = errors.New("no location metadata")
)

// GeodesyError wraps ErrGeodesy with the offending input and the underlying cause.
// Index is the position of the failing point inside a batch, or -1 for single-point calls.
type GeodesyError struct {
	Op     string
	Index  int
	Values []float64
	Err    error
}

func (e *GeodesyError) Error() string {
	var b strings.Builder
	b.WriteString(ErrGeodesy.Error())
	b.WriteString(": ")
	b.WriteString(e.Op)
	if e.Index >= 0 {
		b.WriteString(" point ")
		b.WriteString(strconv.Itoa(e.Index))
	}
	if len(e.Values) > 0 {
		b.WriteString(" (")
		for i, v := range e.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *GeodesyError) Unwrap() error { return e.Err }

// Is reports ErrGeodesy so callers can match on the sentinel.
func (e *GeodesyError) Is(target error) bool { return target == ErrGeodesy }

// NewGeodesyError creates a single-point geodesy error.
func NewGeodesyError(op string, cause error, values ...float64) error {
	return &GeodesyError{Op: op, Index: -1, Values: values, Err: cause}
}

// GeometryError wraps ErrGeometry with the reason the fit is ill-defined.
type GeometryError struct {
	Reason string
	Points int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: %s (%d points)", ErrGeometry.Error(), e.Reason, e.Points)
}

func (e *GeometryError) Unwrap() error { return ErrGeometry }

// NewGeometryError creates a geometry error.
func NewGeometryError(reason string, points int) error {
	return &GeometryError{Reason: reason, Points: points}
}
