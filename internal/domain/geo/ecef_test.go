package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/hoverpoint/internal/domain"
)

func almost(a, b, eps float64) bool {
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}

func TestGeodeticToECEF_Equator_PrimeMeridian(t *testing.T) {
	v, err := Default().GeodeticToECEF(Geodetic{Lat: 0, Lon: 0, Alt: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(v.X, WGS84().A, 1e-6) || !almost(v.Y, 0, 1e-6) || !almost(v.Z, 0, 1e-6) {
		t.Fatalf("want (a,0,0) got (%f,%f,%f)", v.X, v.Y, v.Z)
	}
}

func TestGeodeticToECEF_Equator_90E(t *testing.T) {
	v, err := Default().GeodeticToECEF(Geodetic{Lat: 0, Lon: 90, Alt: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(v.X, 0, 1e-6) || !almost(v.Y, WGS84().A+100, 1e-6) || !almost(v.Z, 0, 1e-6) {
		t.Fatalf("want (0,a+100,0) got (%f,%f,%f)", v.X, v.Y, v.Z)
	}
}

func TestGeodeticToECEF_NorthPole(t *testing.T) {
	v, err := Default().GeodeticToECEF(Geodetic{Lat: 90, Lon: 0, Alt: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(v.X, 0, 1e-6) || !almost(v.Y, 0, 1e-6) || !almost(v.Z, WGS84().B(), 1e-6) {
		t.Fatalf("want (0,0,b) got (%f,%f,%f)", v.X, v.Y, v.Z)
	}
}

func TestECEFToGeodetic_Poles(t *testing.T) {
	for _, z := range []float64{WGS84().B(), -WGS84().B()} {
		g, err := Default().ECEFToGeodetic(ECEF{X: 0, Y: 0, Z: z})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almost(math.Abs(g.Lat), 90, 1e-12) || !almost(g.Alt, 0, 1e-6) {
			t.Errorf("z=%f: want |lat|=90 h=0, got lat=%f h=%f", z, g.Lat, g.Alt)
		}
	}
}

func TestECEFRoundtrip(t *testing.T) {
	tests := []Geodetic{
		{0, 0, 0},
		{52.00001, 13.00002, 45.3},
		{55.7558, 37.6173, 156},
		{40.7128, -74.0060, -30.5},
		{-33.8688, 151.2093, 58},
		{0, 180, 0},
		{0, -180, 12},
		{89.9999, 179.99, 2500},
		{-89.5, -45, -100},
		{27.9881, 86.9250, 8848.86},
		{31.5, 35.5, -430},
	}
	tr := Default()
	for _, p := range tests {
		v, err := tr.GeodeticToECEF(p)
		if err != nil {
			t.Fatalf("%v: to ecef: %v", p, err)
		}
		got, err := tr.ECEFToGeodetic(v)
		if err != nil {
			t.Fatalf("%v: from ecef: %v", p, err)
		}
		if !almost(got.Lat, p.Lat, 1e-6) {
			t.Errorf("lat roundtrip %v: got %.10f", p, got.Lat)
		}
		// Longitude is ambiguous on the antimeridian.
		if math.Abs(p.Lon) != 180 && !almost(got.Lon, p.Lon, 1e-6) {
			t.Errorf("lon roundtrip %v: got %.10f", p, got.Lon)
		}
		if !almost(got.Alt, p.Alt, 1e-3) {
			t.Errorf("alt roundtrip %v: got %.6f", p, got.Alt)
		}
	}
}

func TestECEFRoundtrip_GRS80(t *testing.T) {
	tr := NewTransformer(GRS80())
	p := Geodetic{Lat: 48.137, Lon: 11.575, Alt: 519}
	v, err := tr.GeodeticToECEF(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := tr.ECEFToGeodetic(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(got.Lat, p.Lat, 1e-9) || !almost(got.Lon, p.Lon, 1e-9) || !almost(got.Alt, p.Alt, 1e-4) {
		t.Fatalf("roundtrip mismatch: want %v got %v", p, got)
	}
	if tr.Ellipsoid().Name != "GRS80" {
		t.Errorf("ellipsoid = %q, want GRS80", tr.Ellipsoid().Name)
	}
}

func TestGeodeticToECEF_Invalid(t *testing.T) {
	tests := []struct {
		name string
		p    Geodetic
	}{
		{"nan lat", Geodetic{Lat: math.NaN()}},
		{"inf alt", Geodetic{Alt: math.Inf(1)}},
		{"lat > 90", Geodetic{Lat: 91}},
		{"lon < -180", Geodetic{Lon: -181}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Default().GeodeticToECEF(tt.p)
			if !errors.Is(err, domain.ErrGeodesy) {
				t.Fatalf("expected ErrGeodesy, got %v", err)
			}
			var ge *domain.GeodesyError
			if !errors.As(err, &ge) {
				t.Fatalf("expected *GeodesyError, got %T", err)
			}
			if len(ge.Values) != 3 || ge.Index != -1 {
				t.Errorf("unexpected error payload: %+v", ge)
			}
		})
	}
}

func TestECEFToGeodetic_Invalid(t *testing.T) {
	if _, err := Default().ECEFToGeodetic(ECEF{}); !errors.Is(err, domain.ErrGeodesy) {
		t.Errorf("centre: expected ErrGeodesy, got %v", err)
	}
	if _, err := Default().ECEFToGeodetic(ECEF{X: math.NaN()}); !errors.Is(err, domain.ErrGeodesy) {
		t.Errorf("nan: expected ErrGeodesy, got %v", err)
	}
}

func TestEllipsoidByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "WGS84", false},
		{"wgs84", "WGS84", false},
		{"WGS-84", "WGS84", false},
		{"grs80", "GRS80", false},
		{"clarke1866", "", true},
	}
	for _, tt := range tests {
		e, err := EllipsoidByName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("EllipsoidByName(%q) err = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if e.Name != tt.want {
			t.Errorf("EllipsoidByName(%q) = %q, want %q", tt.name, e.Name, tt.want)
		}
	}
}

func TestEllipsoid_CallerCopyIsIsolated(t *testing.T) {
	e := WGS84()
	e.A = 1
	e.Name = "tampered"

	if got := WGS84(); got.A != 6378137.0 || got.Name != "WGS84" {
		t.Fatalf("WGS84() = %+v after mutating a copy", got)
	}
	byName, err := EllipsoidByName("WGS84")
	if err != nil {
		t.Fatal(err)
	}
	if byName != WGS84() {
		t.Errorf("EllipsoidByName(WGS84) = %+v, want %+v", byName, WGS84())
	}
	if f := GRS80().F; !almost(1/f, 298.257222101, 1e-9) {
		t.Errorf("GRS80 inverse flattening = %v", 1/f)
	}
}

func TestMeanGeodetic(t *testing.T) {
	m := MeanGeodetic([]Geodetic{{1, 2, 3}, {3, 4, 5}})
	if m != (Geodetic{2, 3, 4}) {
		t.Fatalf("want (2,3,4) got %v", m)
	}
	if MeanGeodetic(nil) != (Geodetic{}) {
		t.Fatal("mean of nothing should be zero")
	}
}
