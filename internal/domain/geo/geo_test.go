package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	d := Haversine(40.7128, -74.0060, 40.7128, -74.0060)
	if d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestHaversine_NewYork_London(t *testing.T) {
	d := Haversine(40.7128, -74.0060, 51.5074, -0.1278)
	// ~5570 km
	if !almost(d, 5_570_000, 20_000) {
		t.Fatalf("want ~5570km, got %.0f m", d)
	}
}

func TestDistanceMiles_SanFranciscoToOakland(t *testing.T) {
	sf := Point{Lat: 37.7749, Lng: -122.4194}
	oak := Point{Lat: 37.8044, Lng: -122.2712}
	d := DistanceMiles(sf, oak)
	// ~8.3 miles straight line
	if !almost(d, 8.3, 0.3) {
		t.Fatalf("want ~8.3 mi, got %f", d)
	}
}

func TestPoint_String(t *testing.T) {
	p := Point{Lat: 37.77, Lng: -122.41}
	if got := p.String(); got != "37.770000,-122.410000" {
		t.Fatalf("String() = %q", got)
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.1, 0, false},
		{0, -180.5, false},
	}
	for _, tc := range tests {
		if got := ValidateCoordinates(tc.lat, tc.lon); got != tc.want {
			t.Errorf("ValidateCoordinates(%f, %f) = %v, want %v", tc.lat, tc.lon, got, tc.want)
		}
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	center := Point{Lat: 37.77, Lng: -122.41}
	box := BoundingBox(center, 10)

	if box.MinLat >= center.Lat || box.MaxLat <= center.Lat {
		t.Fatalf("box does not contain center lat: %+v", box)
	}
	// Corners of the box are at least 10 miles from center along each axis.
	north := Point{Lat: box.MaxLat, Lng: center.Lng}
	east := Point{Lat: center.Lat, Lng: box.MaxLng}
	if d := DistanceMiles(center, north); !almost(d, 10, 0.05) {
		t.Errorf("north edge at %f mi, want 10", d)
	}
	if d := DistanceMiles(center, east); d < 9.9 {
		t.Errorf("east edge at %f mi, want >= 10", d)
	}
}

func TestBoundingBox_NearPoleSpansAllLongitudes(t *testing.T) {
	box := BoundingBox(Point{Lat: 89.99, Lng: 10}, 50)
	if box.MaxLat != 90 {
		t.Errorf("MaxLat = %f, want 90", box.MaxLat)
	}
	if box.MinLng != -180 || box.MaxLng != 180 {
		t.Errorf("expected full longitude span, got %+v", box)
	}
}
