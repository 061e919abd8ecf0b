// Package health aggregates readiness checks of the solver and its optional cache.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the cache is failing but targets can still be computed.
	Degraded Status = "degraded"
	// Unhealthy indicates the solver itself fails.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names reported in Report.Checks.
const (
	CheckSolver = "solver"
	CheckCache  = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	solver Probe
	cache  CachePinger
}

// New creates a Service. cache can be nil when no cache is configured.
func New(solver Probe, cache CachePinger) *Service {
	return &Service{solver: solver, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.solver.Probe(ctx); err != nil {
		checks[CheckSolver] = CheckError
		status = Unhealthy
	} else {
		checks[CheckSolver] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks[CheckCache] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[CheckCache] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
