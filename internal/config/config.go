// Package config loads the YAML service configuration by environment name.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hoverpoint/internal/db"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	"github.com/kailas-cloud/hoverpoint/internal/domain/mission"
	missionuc "github.com/kailas-cloud/hoverpoint/internal/usecase/mission"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

// Config holds the hoverpoint service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Solver  SolverConfig  `yaml:"solver"`
	Mission MissionConfig `yaml:"mission"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SolverConfig holds hover target defaults. Distances are in metres.
type SolverConfig struct {
	BackDistance *float64 `yaml:"back_distance"`
	UpDistance   *float64 `yaml:"up_distance"`
	Ellipsoid    string   `yaml:"ellipsoid"` // WGS84, GRS80 (default: WGS84)
}

// MissionConfig holds defaults for generated missions.
type MissionConfig struct {
	Author          string  `yaml:"author"`
	TakeoffRefPoint string  `yaml:"takeoff_ref_point"` // "lat,lon,height"
	Speed           float64 `yaml:"speed"`             // m/s
	OutputDir       string  `yaml:"output_dir"`
	KMZName         string  `yaml:"kmz_name"`
}

// CacheConfig holds the optional solution cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Defaults for the mission section.
const (
	DefaultAuthor          = "Peter Schiekofer"
	DefaultTakeoffRefPoint = "49.099386,12.181031,465.520000"
	DefaultSpeed           = 10.0
	DefaultOutputDir       = "output"
	DefaultKMZName         = "mission.kmz"
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
// Solver distances are pointers so an explicit 0 survives.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Solver.BackDistance == nil {
		v := target.DefaultBackDistance
		c.Solver.BackDistance = &v
	}
	if c.Solver.UpDistance == nil {
		v := target.DefaultUpDistance
		c.Solver.UpDistance = &v
	}
	if c.Solver.Ellipsoid == "" {
		c.Solver.Ellipsoid = geo.WGS84().Name
	}
	if c.Mission.Author == "" {
		c.Mission.Author = DefaultAuthor
	}
	if c.Mission.TakeoffRefPoint == "" {
		c.Mission.TakeoffRefPoint = DefaultTakeoffRefPoint
	}
	if c.Mission.Speed <= 0 {
		c.Mission.Speed = DefaultSpeed
	}
	if c.Mission.OutputDir == "" {
		c.Mission.OutputDir = DefaultOutputDir
	}
	if c.Mission.KMZName == "" {
		c.Mission.KMZName = DefaultKMZName
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = db.DriverValkey
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if _, err := geo.EllipsoidByName(c.Solver.Ellipsoid); err != nil {
		return fmt.Errorf("solver.ellipsoid: %w", err)
	}
	if v := c.Solver.BackDistance; v != nil && !isFinite(*v) {
		return fmt.Errorf("solver.back_distance must be finite, got %v", *v)
	}
	if v := c.Solver.UpDistance; v != nil && !isFinite(*v) {
		return fmt.Errorf("solver.up_distance must be finite, got %v", *v)
	}
	if _, err := mission.ParseTakeoffRef(c.Mission.TakeoffRefPoint); err != nil {
		return fmt.Errorf("mission.takeoff_ref_point: %w", err)
	}
	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case db.DriverValkey, db.DriverRedis:
			// ok
		default:
			return fmt.Errorf("cache.driver must be %q or %q, got %q", db.DriverValkey, db.DriverRedis, c.Cache.Driver)
		}
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required when cache is enabled")
		}
	}
	return nil
}

// TargetConfig returns the solver defaults. Call after ApplyDefaults.
func (c *Config) TargetConfig() target.Config {
	return target.Config{BackDistance: *c.Solver.BackDistance, UpDistance: *c.Solver.UpDistance}
}

// MissionDefaults returns the mission service defaults. Call after Validate.
func (c *Config) MissionDefaults() missionuc.Defaults {
	ref, _ := mission.ParseTakeoffRef(c.Mission.TakeoffRefPoint)
	return missionuc.Defaults{
		Author:     c.Mission.Author,
		TakeoffRef: ref,
		Speed:      c.Mission.Speed,
		OutputDir:  c.Mission.OutputDir,
		KMZName:    c.Mission.KMZName,
	}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
