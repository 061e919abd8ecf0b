// Package mission plans waypoint missions and renders them as KMZ archives.
package mission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dommission "github.com/kailas-cloud/hoverpoint/internal/domain/mission"
	"github.com/kailas-cloud/hoverpoint/internal/metrics"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

var errNoSolver = errors.New("mission targets: no solver configured")

// Defaults are the mission settings used when a request leaves them empty.
type Defaults struct {
	Author     string
	TakeoffRef dommission.TakeoffRef
	Speed      float64
	OutputDir  string
	KMZName    string
}

// TargetRequest is a hover target to solve and append as a waypoint.
type TargetRequest struct {
	Corners target.Corners
	Options []target.Option
	Height  float64
}

// Request describes a mission. Explicit waypoints come first, then solved targets.
type Request struct {
	Author     string
	TakeoffRef *dommission.TakeoffRef
	Speed      float64
	Waypoints  []dommission.Waypoint
	Targets    []TargetRequest
}

// Service plans missions and renders them.
type Service struct {
	builder  *Builder
	solver   TargetSolver
	defaults Defaults
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a mission service. solver may be nil when requests carry no targets.
func New(builder *Builder, solver TargetSolver, defaults Defaults, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{builder: builder, solver: solver, defaults: defaults, logger: logger, now: time.Now}
}

// KMZName is the file name of exported archives.
func (s *Service) KMZName() string { return s.defaults.KMZName }

// Plan resolves defaults, solves targets and validates the resulting mission.
func (s *Service) Plan(ctx context.Context, req Request) (dommission.Mission, error) {
	author := req.Author
	if author == "" {
		author = s.defaults.Author
	}
	ref := s.defaults.TakeoffRef
	if req.TakeoffRef != nil {
		ref = *req.TakeoffRef
	}
	speed := req.Speed
	if speed == 0 {
		speed = s.defaults.Speed
	}

	waypoints := make([]dommission.Waypoint, 0, len(req.Waypoints)+len(req.Targets))
	waypoints = append(waypoints, req.Waypoints...)

	if len(req.Targets) > 0 && s.solver == nil {
		return dommission.Mission{}, errNoSolver
	}
	for i, t := range req.Targets {
		sol, err := s.solver.Solve(ctx, t.Corners, t.Options...)
		if err != nil {
			return dommission.Mission{}, fmt.Errorf("solve target %d: %w", i, err)
		}
		waypoints = append(waypoints, dommission.FromTarget(sol.Target, t.Height))
	}

	m := dommission.New(author, ref, speed, s.now(), waypoints...)
	if err := m.Validate(); err != nil {
		return dommission.Mission{}, fmt.Errorf("validate mission: %w", err)
	}
	return m, nil
}

// Archive plans the mission and returns it with its KMZ archive.
func (s *Service) Archive(ctx context.Context, req Request) (dommission.Mission, []byte, error) {
	m, err := s.Plan(ctx, req)
	if err != nil {
		metrics.MissionArchivesTotal.WithLabelValues("error").Inc()
		return dommission.Mission{}, nil, err
	}
	data, err := s.builder.KMZ(m)
	if err != nil {
		metrics.MissionArchivesTotal.WithLabelValues("error").Inc()
		return dommission.Mission{}, nil, fmt.Errorf("build kmz: %w", err)
	}
	metrics.MissionArchivesTotal.WithLabelValues("ok").Inc()

	s.logger.Debug("Mission archive built",
		zap.String("mission_id", m.ID.String()),
		zap.Int("waypoints", len(m.Waypoints)),
		zap.Int("bytes", len(data)),
	)
	return m, data, nil
}

// Export plans the mission and writes it to the configured output directory.
func (s *Service) Export(ctx context.Context, req Request) (string, error) {
	m, err := s.Plan(ctx, req)
	if err != nil {
		metrics.MissionArchivesTotal.WithLabelValues("error").Inc()
		return "", err
	}
	path, err := s.builder.WriteKMZ(m, s.defaults.OutputDir, s.defaults.KMZName)
	if err != nil {
		metrics.MissionArchivesTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("write kmz: %w", err)
	}
	metrics.MissionArchivesTotal.WithLabelValues("ok").Inc()
	return path, nil
}
