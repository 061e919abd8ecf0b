package geo

import (
	"fmt"
	"strings"
)

// Ellipsoid is a reference ellipsoid given by its semi-major axis and flattening.
type Ellipsoid struct {
	Name string
	A    float64 // semi-major axis, metres
	F    float64 // flattening
}

const (
	wgs84A    = 6378137.0
	wgs84InvF = 298.257223563
	grs80A    = 6378137.0
	grs80InvF = 298.257222101
)

// WGS84 returns the GPS reference ellipsoid (EPSG:7030).
func WGS84() Ellipsoid { return Ellipsoid{Name: "WGS84", A: wgs84A, F: 1 / wgs84InvF} }

// GRS80 returns the ETRS89/NAD83 reference ellipsoid (EPSG:7019).
func GRS80() Ellipsoid { return Ellipsoid{Name: "GRS80", A: grs80A, F: 1 / grs80InvF} }

// B returns the semi-minor axis.
func (e Ellipsoid) B() float64 { return e.A * (1 - e.F) }

// E2 returns the first eccentricity squared.
func (e Ellipsoid) E2() float64 { return e.F * (2 - e.F) }

// EllipsoidByName looks up a built-in ellipsoid. Matching ignores case and dashes.
// An empty name selects WGS84.
func EllipsoidByName(name string) (Ellipsoid, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
	switch key {
	case "", "WGS84":
		return WGS84(), nil
	case "GRS80":
		return GRS80(), nil
	default:
		return Ellipsoid{}, fmt.Errorf("unknown ellipsoid %q", name)
	}
}
