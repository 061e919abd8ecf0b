// Package hoverpoint computes a drone hover point in front of a roughly planar
// surface given by four geodetic corners.
//
// The corners are converted into a local east-north-up frame, their heights are
// levelled to the mean, a plane is fitted by SVD and the target is placed
// BackDistance metres behind the plane along a downward normal and UpDistance
// metres above that.
//
//	target, err := hoverpoint.ComputeTarget([][]float64{
//	    {52.00001, 13.00002, 45.3},
//	    {52.00002, 13.00050, 45.1},
//	    {52.00030, 13.00055, 45.4},
//	    {52.00029, 13.00007, 45.2},
//	}, hoverpoint.WithUpDistance(10))
//
// Errors match ErrInvalidCorners, ErrInvalidOffset, ErrGeodesy or ErrGeometry with errors.Is.
package hoverpoint
