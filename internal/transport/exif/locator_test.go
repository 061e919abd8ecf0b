package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
)

type rational struct{ num, den uint32 }

type gpsFixture struct {
	latRef, lonRef string
	lat, lon       [3]rational
	altRef         byte
	alt            *rational
}

// tiffWithGPS encodes a little-endian TIFF whose IFD0 points at a GPS IFD.
func tiffWithGPS(f gpsFixture) []byte {
	const (
		gpsIFD   = 26
		dataBase = gpsIFD + 2 + 6*12 + 4
	)
	le := binary.LittleEndian
	var buf bytes.Buffer
	w := func(v any) { _ = binary.Write(&buf, le, v) }

	buf.WriteString("II")
	w(uint16(42))
	w(uint32(8))

	// IFD0: GPSInfo pointer only.
	w(uint16(1))
	w(uint16(0x8825))
	w(uint16(4))
	w(uint32(1))
	w(uint32(gpsIFD))
	w(uint32(0))

	entries := uint16(4)
	if f.alt != nil {
		entries = 6
	}
	ascii := func(tag uint16, s string) {
		w(tag)
		w(uint16(2))
		w(uint32(2))
		buf.WriteString(s)
		buf.Write([]byte{0, 0, 0})
	}
	rationals := func(tag uint16, count, offset uint32) {
		w(tag)
		w(uint16(5))
		w(count)
		w(offset)
	}

	w(entries)
	ascii(0x0001, f.latRef)
	rationals(0x0002, 3, dataBase)
	ascii(0x0003, f.lonRef)
	rationals(0x0004, 3, dataBase+24)
	if f.alt != nil {
		w(uint16(0x0005))
		w(uint16(1))
		w(uint32(1))
		buf.Write([]byte{f.altRef, 0, 0, 0})
		rationals(0x0006, 1, dataBase+48)
	}
	w(uint32(0))

	// Pad to the data area when the altitude entries are absent.
	for buf.Len() < dataBase {
		buf.WriteByte(0)
	}
	for _, r := range append(f.lat[:], f.lon[:]...) {
		w(r.num)
		w(r.den)
	}
	if f.alt != nil {
		w(f.alt.num)
		w(f.alt.den)
	}
	return buf.Bytes()
}

func fixture() gpsFixture {
	return gpsFixture{
		latRef: "N",
		lonRef: "E",
		lat:    [3]rational{{49, 1}, {5, 1}, {5779, 100}},
		lon:    [3]rational{{12, 1}, {10, 1}, {5212, 100}},
		alt:    &rational{46552, 100},
	}
}

func TestLocate(t *testing.T) {
	p, err := Locate(bytes.NewReader(tiffWithGPS(fixture())))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantLat := 49 + 5.0/60 + 57.79/3600
	wantLon := 12 + 10.0/60 + 52.12/3600
	if math.Abs(p.Lat-wantLat) > 1e-9 || math.Abs(p.Lon-wantLon) > 1e-9 {
		t.Errorf("position = (%f, %f), want (%f, %f)", p.Lat, p.Lon, wantLat, wantLon)
	}
	if math.Abs(p.Alt-465.52) > 1e-9 {
		t.Errorf("alt = %f, want 465.52", p.Alt)
	}
}

func TestLocate_SouthWestBelowSeaLevel(t *testing.T) {
	f := fixture()
	f.latRef, f.lonRef, f.altRef = "S", "W", belowSeaLevel
	p, err := Locate(bytes.NewReader(tiffWithGPS(f)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat >= 0 || p.Lon >= 0 || p.Alt >= 0 {
		t.Errorf("expected negative lat/lon/alt, got %+v", p)
	}
}

func TestLocate_NoAltitude(t *testing.T) {
	f := fixture()
	f.alt = nil
	p, err := Locate(bytes.NewReader(tiffWithGPS(f)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Alt != 0 {
		t.Errorf("alt = %f, want 0", p.Alt)
	}
}

func TestLocate_NoExif(t *testing.T) {
	_, err := Locate(bytes.NewReader([]byte("definitely not an image")))
	if !errors.Is(err, domain.ErrNoLocation) {
		t.Fatalf("expected ErrNoLocation, got %v", err)
	}
}

func TestLocateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.tif")
	if err := os.WriteFile(path, tiffWithGPS(fixture()), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LocateFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LocateFile(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
