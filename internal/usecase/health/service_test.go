package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

// --- Mocks ---

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

type mockProbe struct {
	err error
}

func (m *mockProbe) Probe(_ context.Context) error { return m.err }

type brokenSolver struct{}

func (brokenSolver) Solve(context.Context, target.Corners, ...target.Option) (target.Solution, error) {
	return target.Solution{Target: geo.Geodetic{Lat: 0, Lon: 0, Alt: 1}}, nil
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockProbe{}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[CheckSolver] != CheckOK {
		t.Errorf("expected solver %q, got %q", CheckOK, r.Checks[CheckSolver])
	}
	if r.Checks[CheckCache] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks[CheckCache])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockProbe{}, &mockCachePinger{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckCache] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks[CheckCache])
	}
}

func TestCheck_SolverError(t *testing.T) {
	svc := New(&mockProbe{err: errors.New("broken")}, &mockCachePinger{err: errors.New("down")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckSolver] != CheckError {
		t.Error("expected solver error")
	}
	if r.Checks[CheckCache] != CheckError {
		t.Error("expected cache error")
	}
}

func TestCheck_NoCache(t *testing.T) {
	svc := New(&mockProbe{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[CheckCache]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
}

func TestSolverProbe_RealSolver(t *testing.T) {
	p := NewSolverProbe(target.New(geo.Default(), target.DefaultConfig(), nil))
	if err := p.Probe(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSolverProbe_WrongHeight(t *testing.T) {
	p := NewSolverProbe(brokenSolver{})
	if err := p.Probe(context.Background()); err == nil {
		t.Fatal("expected error for wrong target height")
	}
}
