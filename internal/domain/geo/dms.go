package geo

import (
	"fmt"
	"math"
)

// FormatDMS renders decimal degrees as degrees, minutes and seconds with a
// hemisphere letter, e.g. 48° 8' 24.840"N.
func FormatDMS(decimal float64, isLat bool) string {
	var hemisphere string
	switch {
	case isLat && decimal >= 0:
		hemisphere = "N"
	case isLat:
		hemisphere = "S"
	case decimal >= 0:
		hemisphere = "E"
	default:
		hemisphere = "W"
	}

	abs := math.Abs(decimal)
	degrees := math.Floor(abs)
	minutesFull := (abs - degrees) * 60
	minutes := math.Floor(minutesFull)
	seconds := (minutesFull - minutes) * 60

	return fmt.Sprintf("%d° %d' %.3f\"%s", int(degrees), int(minutes), seconds, hemisphere)
}

// FormatLonLatDMS renders a coordinate pair as "Lon: ..., Lat: ...".
func FormatLonLatDMS(lon, lat float64) string {
	return fmt.Sprintf("Lon: %s, Lat: %s", FormatDMS(lon, false), FormatDMS(lat, true))
}
