package hoverpoint

import "github.com/kailas-cloud/hoverpoint/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidCorners = domain.ErrInvalidCorners
	ErrInvalidOffset  = domain.ErrInvalidOffset
	ErrGeodesy        = domain.ErrGeodesy
	ErrGeometry       = domain.ErrGeometry
)

// GeodesyError carries the failing transform and point. Use errors.As() to extract it.
type GeodesyError = domain.GeodesyError

// GeometryError carries the reason a plane could not be fitted.
type GeometryError = domain.GeometryError
