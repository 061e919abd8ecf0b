// Package chi exposes the hover target solver and mission builder over HTTP.
package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
	dommission "github.com/kailas-cloud/hoverpoint/internal/domain/mission"
	logpkg "github.com/kailas-cloud/hoverpoint/internal/logger"
	"github.com/kailas-cloud/hoverpoint/internal/transport/exif"
	healthuc "github.com/kailas-cloud/hoverpoint/internal/usecase/health"
	missionuc "github.com/kailas-cloud/hoverpoint/internal/usecase/mission"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

const (
	maxJSONBody  = 1 << 20
	maxImageBody = 32 << 20

	kmzContentType = "application/vnd.google-earth.kmz"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the hoverpoint HTTP API.
type Server struct {
	targets       target.Solver
	missions      *missionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	targets target.Solver,
	missions *missionuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		targets:  targets,
		missions: missions,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidCorners, http.StatusBadRequest, ErrorResponseCodeInvalidCorners),
		sentinelHandler(domain.ErrInvalidOffset, http.StatusBadRequest, ErrorResponseCodeInvalidOffset),
		sentinelHandler(domain.ErrGeodesy, http.StatusUnprocessableEntity, ErrorResponseCodeGeodesyError),
		sentinelHandler(domain.ErrGeometry, http.StatusUnprocessableEntity, ErrorResponseCodeGeometryError),
		sentinelHandler(domain.ErrEmptyMission, http.StatusBadRequest, ErrorResponseCodeInvalidMission),
		sentinelHandler(domain.ErrInvalidMission, http.StatusBadRequest, ErrorResponseCodeInvalidMission),
		sentinelHandler(domain.ErrInvalidWaypoint, http.StatusBadRequest, ErrorResponseCodeInvalidMission),
		sentinelHandler(domain.ErrNoLocation, http.StatusUnprocessableEntity, ErrorResponseCodeNoLocation),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r gochi.Router) {
		r.Post("/targets", s.ComputeTarget)
		r.Post("/missions", s.CreateMission)
		r.Post("/locate", s.LocateImage)
	})
}

// ComputeTarget handles POST /api/v1/targets.
func (s *Server) ComputeTarget(w http.ResponseWriter, r *http.Request) {
	var params ComputeTargetParams
	if err := bindTargetParams(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}

	var req TargetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if params.Back != nil {
		req.Back = params.Back
	}
	if params.Up != nil {
		req.Up = params.Up
	}

	corners, opts, err := targetFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sol, err := s.targets.Solve(r.Context(), corners, opts...)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, solutionToResponse(sol))
}

// CreateMission handles POST /api/v1/missions and returns a KMZ archive.
func (s *Server) CreateMission(w http.ResponseWriter, r *http.Request) {
	var req MissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	mreq, err := missionFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	m, data, err := s.missions.Archive(r.Context(), mreq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", kmzContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.missions.KMZName()))
	w.Header().Set("X-Mission-ID", m.ID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// LocateImage handles POST /api/v1/locate with a JPEG body.
func (s *Server) LocateImage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBody))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorResponseCodeBadRequest, "image too large")
			return
		}
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "read body: "+err.Error())
		return
	}

	p, err := exif.Locate(bytes.NewReader(data))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LocationResponse{Latitude: p.Lat, Longitude: p.Lon, Altitude: p.Alt})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func bindTargetParams(r *http.Request, params *ComputeTargetParams) error {
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "back", q, &params.Back); err != nil {
		return fmt.Errorf("invalid format for parameter back: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "up", q, &params.Up); err != nil {
		return fmt.Errorf("invalid format for parameter up: %w", err)
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the full message of a domain error and hides everything else.
// Domain errors only carry caller input, so they are safe to echo.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidCorners,
		domain.ErrInvalidOffset,
		domain.ErrGeodesy,
		domain.ErrGeometry,
		domain.ErrEmptyMission,
		domain.ErrInvalidMission,
		domain.ErrInvalidWaypoint,
		domain.ErrNoLocation,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func targetFromRequest(req TargetRequest) (target.Corners, []target.Option, error) {
	corners, err := target.CornersFromTriples(req.Corners)
	if err != nil {
		return nil, nil, err
	}
	var opts []target.Option
	if req.Back != nil {
		opts = append(opts, target.WithBackDistance(*req.Back))
	}
	if req.Up != nil {
		opts = append(opts, target.WithUpDistance(*req.Up))
	}
	return corners, opts, nil
}

func missionFromRequest(req MissionRequest) (missionuc.Request, error) {
	out := missionuc.Request{Author: req.Author}
	if req.Speed != nil {
		if *req.Speed <= 0 {
			return missionuc.Request{}, fmt.Errorf("%w: speed %v must be positive", domain.ErrInvalidMission, *req.Speed)
		}
		out.Speed = *req.Speed
	}
	if req.TakeoffRefPoint != "" {
		ref, err := dommission.ParseTakeoffRef(req.TakeoffRefPoint)
		if err != nil {
			return missionuc.Request{}, err
		}
		out.TakeoffRef = &ref
	}

	out.Waypoints = make([]dommission.Waypoint, len(req.Waypoints))
	for i, wp := range req.Waypoints {
		w := dommission.NewWaypoint(wp.Longitude, wp.Latitude, wp.Altitude)
		if wp.Height != nil {
			w.Height = *wp.Height
		}
		if wp.Heading != nil {
			w.Heading = *wp.Heading
		}
		if wp.Pitch != nil {
			w.Pitch = *wp.Pitch
		}
		out.Waypoints[i] = w
	}

	out.Targets = make([]missionuc.TargetRequest, len(req.Targets))
	for i, t := range req.Targets {
		corners, opts, err := targetFromRequest(t.TargetRequest)
		if err != nil {
			return missionuc.Request{}, fmt.Errorf("target %d: %w", i, err)
		}
		tr := missionuc.TargetRequest{Corners: corners, Options: opts}
		if t.Height != nil {
			tr.Height = *t.Height
		}
		out.Targets[i] = tr
	}
	return out, nil
}

func solutionToResponse(sol target.Solution) TargetResponse {
	n := sol.Plane.Normal
	c := sol.Plane.Centroid
	return TargetResponse{
		Target:    sol.Target.Triple(),
		Origin:    sol.Origin.Triple(),
		Centroid:  [3]float64{c.East, c.North, c.Up},
		Normal:    [3]float64{n.X, n.Y, n.Z},
		TargetENU: [3]float64{sol.TargetENU.East, sol.TargetENU.North, sol.TargetENU.Up},
		Back:      sol.Params.BackDistance,
		Up:        sol.Params.UpDistance,
	}
}
