package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/hoverpoint/internal/db"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownEllipsoid(t *testing.T) {
	cfg := validConfig()
	cfg.Solver.Ellipsoid = "clarke1866"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown ellipsoid")
	}
}

func TestValidate_BadTakeoffRef(t *testing.T) {
	cfg := validConfig()
	cfg.Mission.TakeoffRefPoint = "49.1,12.2"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for takeoff ref with two values")
	}
}

func TestValidate_Cache(t *testing.T) {
	tests := []struct {
		name    string
		cache   CacheConfig
		wantErr bool
	}{
		{"disabled without addrs", CacheConfig{Driver: db.DriverValkey}, false},
		{"enabled valkey", CacheConfig{Enabled: true, Driver: db.DriverValkey, Addrs: []string{"localhost:6379"}}, false},
		{"enabled redis", CacheConfig{Enabled: true, Driver: db.DriverRedis, Addrs: []string{"localhost:6379"}}, false},
		{"enabled without addrs", CacheConfig{Enabled: true, Driver: db.DriverValkey}, true},
		{"unknown driver", CacheConfig{Enabled: true, Driver: "memcached", Addrs: []string{"localhost:11211"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cache = tt.cache

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if *cfg.Solver.BackDistance != 10 || *cfg.Solver.UpDistance != 4 {
		t.Errorf("expected back=10 up=4, got back=%v up=%v", *cfg.Solver.BackDistance, *cfg.Solver.UpDistance)
	}
	if cfg.Solver.Ellipsoid != "WGS84" {
		t.Errorf("expected Ellipsoid=WGS84, got %q", cfg.Solver.Ellipsoid)
	}
	if cfg.Mission.Author != DefaultAuthor {
		t.Errorf("expected Author=%q, got %q", DefaultAuthor, cfg.Mission.Author)
	}
	if cfg.Mission.TakeoffRefPoint != DefaultTakeoffRefPoint {
		t.Errorf("expected TakeoffRefPoint=%q, got %q", DefaultTakeoffRefPoint, cfg.Mission.TakeoffRefPoint)
	}
	if cfg.Mission.Speed != 10 {
		t.Errorf("expected Speed=10, got %v", cfg.Mission.Speed)
	}
	if cfg.Mission.KMZName != "mission.kmz" {
		t.Errorf("expected KMZName=mission.kmz, got %q", cfg.Mission.KMZName)
	}
	if cfg.Cache.Driver != db.DriverValkey {
		t.Errorf("expected Driver=valkey, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.TTLSec != 3600 {
		t.Errorf("expected TTLSec=3600, got %d", cfg.Cache.TTLSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0.0
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Solver:  SolverConfig{UpDistance: &zero, Ellipsoid: "GRS80"},
		Mission: MissionConfig{Author: "ops", Speed: 4},
		Cache:   CacheConfig{Driver: db.DriverRedis, TTLSec: 30},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if *cfg.Solver.UpDistance != 0 {
		t.Errorf("expected explicit UpDistance=0 to survive, got %v", *cfg.Solver.UpDistance)
	}
	if cfg.Solver.Ellipsoid != "GRS80" {
		t.Errorf("expected Ellipsoid=GRS80, got %q", cfg.Solver.Ellipsoid)
	}
	if cfg.Mission.Author != "ops" || cfg.Mission.Speed != 4 {
		t.Errorf("mission overridden: %+v", cfg.Mission)
	}
	if cfg.Cache.Driver != db.DriverRedis || cfg.Cache.TTLSec != 30 {
		t.Errorf("cache overridden: %+v", cfg.Cache)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("HOVERPOINT_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := []byte(`
http:
  port: ${HOVERPOINT_TEST_PORT}
solver:
  back_distance: 12.5
  ellipsoid: ${HOVERPOINT_TEST_ELLIPSOID:-GRS80}
cache:
  enabled: false
auth:
  api_keys: ["${HOVERPOINT_TEST_KEY:-local-key}"]
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected Port=9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Solver.Ellipsoid != "GRS80" {
		t.Errorf("expected Ellipsoid=GRS80, got %q", cfg.Solver.Ellipsoid)
	}
	tc := cfg.TargetConfig()
	if tc.BackDistance != 12.5 || tc.UpDistance != 4 {
		t.Errorf("unexpected target config: %+v", tc)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "local-key" {
		t.Errorf("unexpected api keys: %v", cfg.Auth.APIKeys)
	}

	md := cfg.MissionDefaults()
	if md.TakeoffRef.Height != 465.52 {
		t.Errorf("expected takeoff height 465.52, got %v", md.TakeoffRef.Height)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("HP_SET", "x")
	got := string(expandEnvVars([]byte("a=${HP_SET} b=${HP_UNSET:-dflt} c=${HP_UNSET}")))
	if got != "a=x b=dflt c=" {
		t.Errorf("unexpected expansion: %q", got)
	}
}
