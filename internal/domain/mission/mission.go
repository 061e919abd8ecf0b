// Package mission models DJI waypoint missions built from hover targets.
package mission

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
)

// Waypoint defaults.
const (
	DefaultHeight  = 10.0
	DefaultHeading = 0.0
	DefaultPitch   = -90.0
)

// Waypoint is one stop of a mission.
type Waypoint struct {
	Longitude float64 // degrees
	Latitude  float64 // degrees
	Altitude  float64 // ellipsoid height, metres
	Height    float64 // above ground, metres
	Heading   float64 // aircraft yaw, degrees, 0 = north
	Pitch     float64 // gimbal pitch, degrees, -90 = straight down
}

// NewWaypoint creates a waypoint with default height, heading and pitch.
func NewWaypoint(lon, lat, alt float64) Waypoint {
	return Waypoint{
		Longitude: lon,
		Latitude:  lat,
		Altitude:  alt,
		Height:    DefaultHeight,
		Heading:   DefaultHeading,
		Pitch:     DefaultPitch,
	}
}

// FromTarget places a waypoint at a computed hover target.
// A height <= 0 falls back to DefaultHeight.
func FromTarget(target geo.Geodetic, height float64) Waypoint {
	w := NewWaypoint(target.Lon, target.Lat, target.Alt)
	if height > 0 {
		w.Height = height
	}
	return w
}

// Geodetic returns the waypoint position.
func (w Waypoint) Geodetic() geo.Geodetic {
	return geo.Geodetic{Lat: w.Latitude, Lon: w.Longitude, Alt: w.Altitude}
}

// Validate checks the position and the angles.
func (w Waypoint) Validate() error {
	if !w.Geodetic().Valid() {
		return fmt.Errorf("%w: position (%v, %v, %v)", domain.ErrInvalidWaypoint, w.Latitude, w.Longitude, w.Altitude)
	}
	for _, v := range []float64{w.Height, w.Heading, w.Pitch} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite height or angle", domain.ErrInvalidWaypoint)
		}
	}
	if w.Pitch < -90 || w.Pitch > 90 {
		return fmt.Errorf("%w: pitch %v out of range [-90, 90]", domain.ErrInvalidWaypoint, w.Pitch)
	}
	return nil
}

// TakeoffRef is the launch site as latitude, longitude and ellipsoid height.
type TakeoffRef struct {
	Lat    float64
	Lon    float64
	Height float64
}

// ParseTakeoffRef parses "lat,lon,height".
func ParseTakeoffRef(s string) (TakeoffRef, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return TakeoffRef{}, fmt.Errorf("%w: takeoff ref point %q: want lat,lon,height", domain.ErrInvalidMission, s)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return TakeoffRef{}, fmt.Errorf("%w: takeoff ref point %q: %w", domain.ErrInvalidMission, s, err)
		}
		vals[i] = v
	}
	ref := TakeoffRef{Lat: vals[0], Lon: vals[1], Height: vals[2]}
	if !(geo.Geodetic{Lat: ref.Lat, Lon: ref.Lon, Alt: ref.Height}).Valid() {
		return TakeoffRef{}, fmt.Errorf("%w: takeoff ref point %q out of range", domain.ErrInvalidMission, s)
	}
	return ref, nil
}

// String formats the point the way DJI Pilot writes it.
func (r TakeoffRef) String() string {
	return strconv.FormatFloat(r.Lat, 'f', 6, 64) + "," +
		strconv.FormatFloat(r.Lon, 'f', 6, 64) + "," +
		strconv.FormatFloat(r.Height, 'f', 6, 64)
}

// Mission is an ordered list of waypoints with flight settings.
type Mission struct {
	ID         uuid.UUID
	Author     string
	TakeoffRef TakeoffRef
	Speed      float64 // m/s
	Created    time.Time
	Waypoints  []Waypoint
}

// New creates a mission with a fresh ID.
func New(author string, ref TakeoffRef, speed float64, created time.Time, waypoints ...Waypoint) Mission {
	return Mission{
		ID:         uuid.New(),
		Author:     author,
		TakeoffRef: ref,
		Speed:      speed,
		Created:    created,
		Waypoints:  waypoints,
	}
}

// Validate checks the mission settings and every waypoint.
func (m Mission) Validate() error {
	if len(m.Waypoints) == 0 {
		return domain.ErrEmptyMission
	}
	if !(m.Speed > 0) || math.IsInf(m.Speed, 0) {
		return fmt.Errorf("%w: speed %v must be positive", domain.ErrInvalidMission, m.Speed)
	}
	for i, w := range m.Waypoints {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("waypoint %d: %w", i, err)
		}
	}
	return nil
}

// Distance is the great-circle length of the route in metres.
func (m Mission) Distance() float64 {
	pts := make([]geo.Geodetic, len(m.Waypoints))
	for i, w := range m.Waypoints {
		pts[i] = w.Geodetic()
	}
	return geo.PathLength(pts)
}

// Duration is the flight time of the route at the mission speed, in seconds.
func (m Mission) Duration() float64 {
	if m.Speed <= 0 {
		return 0
	}
	return m.Distance() / m.Speed
}
