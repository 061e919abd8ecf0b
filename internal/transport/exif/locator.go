// Package exif reads camera positions from JPEG EXIF GPS tags.
package exif

import (
	"fmt"
	"io"
	"os"

	goexif "github.com/rwcarlsen/goexif/exif"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
)

// belowSeaLevel is the GPSAltitudeRef value for negative altitudes.
const belowSeaLevel = 1

// Locate decodes EXIF metadata from r and returns the GPS position.
// Altitude is 0 when the image carries no GPSAltitude tag.
func Locate(r io.Reader) (geo.Geodetic, error) {
	x, err := goexif.Decode(r)
	if err != nil {
		return geo.Geodetic{}, fmt.Errorf("%w: decode exif: %w", domain.ErrNoLocation, err)
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return geo.Geodetic{}, fmt.Errorf("%w: %w", domain.ErrNoLocation, err)
	}

	p := geo.Geodetic{Lat: lat, Lon: lon, Alt: altitude(x)}
	if !p.Valid() {
		return geo.Geodetic{}, fmt.Errorf("%w: position (%v, %v) out of range", domain.ErrNoLocation, lat, lon)
	}
	return p, nil
}

// LocateFile opens path and calls Locate.
func LocateFile(path string) (geo.Geodetic, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return geo.Geodetic{}, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	p, err := Locate(f)
	if err != nil {
		return geo.Geodetic{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func altitude(x *goexif.Exif) float64 {
	tag, err := x.Get(goexif.GPSAltitude)
	if err != nil {
		return 0
	}
	rat, err := tag.Rat(0)
	if err != nil {
		return 0
	}
	alt, _ := rat.Float64()

	if ref, err := x.Get(goexif.GPSAltitudeRef); err == nil {
		if v, err := ref.Int(0); err == nil && v == belowSeaLevel {
			alt = -alt
		}
	}
	return alt
}
