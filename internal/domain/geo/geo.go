package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// MetersPerMile converts statute miles to meters.
const MetersPerMile = 1609.344

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// String formats the point the way distance APIs accept it ("lat,lng").
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// Valid reports whether the point lies within [-90,90] x [-180,180].
func (p Point) Valid() bool {
	return ValidateCoordinates(p.Lat, p.Lng)
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// DistanceMiles returns the great-circle distance between a and b in miles.
func DistanceMiles(a, b Point) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng) / MetersPerMile
}

// MilesToMeters converts miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Box is an axis-aligned lat/lng rectangle.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns the smallest lat/lng box containing the circle of radiusMiles
// around center. Near the poles the longitude span widens to the full range.
func BoundingBox(center Point, radiusMiles float64) Box {
	angular := MilesToMeters(radiusMiles) / EarthRadiusMeters
	dLat := angular * 180 / math.Pi

	box := Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	if cosLat > 1e-6 {
		dLng := dLat / cosLat
		if dLng < 180 {
			box.MinLng = math.Max(-180, center.Lng-dLng)
			box.MaxLng = math.Min(180, center.Lng+dLng)
		}
	}
	return box
}

// Leg is the travel distance and time from an origin to one destination.
// Known is false when the provider could not resolve the route.
type Leg struct {
	Miles   float64
	Minutes float64
	Known   bool
}
