package hoverpoint

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
)

// Option configures a Calculator or a single computation.
type Option interface {
	apply(*calcConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*calcConfig)

func (f optionFunc) apply(c *calcConfig) { f(c) }

type calcConfig struct {
	back      float64
	up        float64
	ellipsoid string
	logger    *zap.Logger
}

func defaultCalcConfig() calcConfig {
	return calcConfig{
		back:      target.DefaultBackDistance,
		up:        target.DefaultUpDistance,
		ellipsoid: geo.WGS84().Name,
	}
}

// WithBackDistance sets the retreat from the plane along its normal, in metres. Default 10.
func WithBackDistance(m float64) Option {
	return optionFunc(func(c *calcConfig) {
		c.back = m
	})
}

// WithUpDistance sets the vertical rise after the retreat, in metres. Default 4.
func WithUpDistance(m float64) Option {
	return optionFunc(func(c *calcConfig) {
		c.up = m
	})
}

// WithEllipsoid selects the reference ellipsoid by name ("WGS84", "GRS80"). Default WGS84.
func WithEllipsoid(name string) Option {
	return optionFunc(func(c *calcConfig) {
		c.ellipsoid = name
	})
}

// WithLogger enables debug logging of intermediate results.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *calcConfig) {
		c.logger = l
	})
}
