package target

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	"github.com/kailas-cloud/hoverpoint/internal/domain/plane"
)

var errNonFinite = errors.New("non-finite coordinate")

// Service computes hover targets from four plane corners.
// It keeps no state between calls and is safe for concurrent use.
type Service struct {
	frames FrameFactory
	cfg    Config
	logger *zap.Logger
}

// New creates a target service. A nil logger disables logging.
func New(frames FrameFactory, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{frames: frames, cfg: cfg, logger: logger}
}

// Config returns the default offsets of the service.
func (s *Service) Config() Config { return s.cfg }

// Ellipsoid returns the reference ellipsoid used for every conversion.
func (s *Service) Ellipsoid() geo.Ellipsoid { return s.frames.Ellipsoid() }

// ComputeTarget returns the geodetic hover target for corners.
func (s *Service) ComputeTarget(ctx context.Context, corners Corners, opts ...Option) (geo.Geodetic, error) {
	sol, err := s.Solve(ctx, corners, opts...)
	if err != nil {
		return geo.Geodetic{}, err
	}
	return sol.Target, nil
}

// Solve runs the full computation:
// corners -> local ENU -> flattened heights -> plane fit -> offset -> geodetic.
func (s *Service) Solve(ctx context.Context, corners Corners, opts ...Option) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return Solution{}, fmt.Errorf("solve: %w", err)
	}

	params := s.cfg.Resolve(opts...)
	if err := params.validate(); err != nil {
		return Solution{}, err
	}
	if err := validateCorners(corners); err != nil {
		return Solution{}, err
	}

	origin := geo.MeanGeodetic(corners)
	frame, err := s.frames.NewFrame(origin)
	if err != nil {
		return Solution{}, fmt.Errorf("local frame: %w", err)
	}

	enu, err := frame.ToENUBatch(corners)
	if err != nil {
		return Solution{}, fmt.Errorf("corners to enu: %w", err)
	}
	flat := flatten(enu)

	fitted, err := plane.Fit(flat, plane.DefaultMinPoints)
	if err != nil {
		return Solution{}, fmt.Errorf("fit plane: %w", err)
	}

	offset := fitted.Centroid.Vec().Sub(fitted.Normal.Mul(params.BackDistance))
	offset.Z += params.UpDistance
	targetENU := geo.ENUFromVec(offset)

	target, err := frame.ToGeodetic(targetENU)
	if err != nil {
		return Solution{}, fmt.Errorf("target to geodetic: %w", err)
	}

	if ce := s.logger.Check(zap.DebugLevel, "Hover target computed"); ce != nil {
		ce.Write(
			zap.Float64s("origin", origin.Values()),
			zap.Any("flattened_enu", flat),
			zap.Float64s("centroid", fitted.Centroid.Values()),
			zap.Float64s("normal", []float64{fitted.Normal.X, fitted.Normal.Y, fitted.Normal.Z}),
			zap.Float64s("target_enu", targetENU.Values()),
			zap.Float64s("target", target.Values()),
		)
	}

	return Solution{
		Origin:    origin,
		Flattened: flat,
		Plane:     fitted,
		TargetENU: targetENU,
		Target:    target,
		Params:    params,
	}, nil
}

func validateCorners(corners Corners) error {
	if len(corners) != CornerCount {
		return fmt.Errorf("%w: got %d points, want %d", domain.ErrInvalidCorners, len(corners), CornerCount)
	}
	for i, c := range corners {
		if !c.Finite() {
			return &domain.GeodesyError{Op: "validate corners", Index: i, Values: c.Values(), Err: errNonFinite}
		}
	}
	return nil
}

// flatten replaces every height with the mean height.
func flatten(points []geo.ENU) []geo.ENU {
	var sum float64
	for _, p := range points {
		sum += p.Up
	}
	mean := sum / float64(len(points))

	out := make([]geo.ENU, len(points))
	for i, p := range points {
		out[i] = geo.ENU{East: p.East, North: p.North, Up: mean}
	}
	return out
}
