package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies inside the latitude/longitude ranges.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// String encodes the point in the "(lat,lng)" form stored in the database.
func (p Point) String() string {
	return "(" + strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(p.Longitude, 'f', -1, 64) + ")"
}

var pointPattern = regexp.MustCompile(`^\(\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\)$`)

// ParsePoint decodes a "(lat,lng)" string.
func ParsePoint(s string) (Point, error) {
	m := pointPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Point{}, fmt.Errorf("invalid coordinate %q: expected (lat,lng)", s)
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}

	p := Point{Latitude: lat, Longitude: lng}
	if !p.Valid() {
		return Point{}, fmt.Errorf("coordinate %q out of range", s)
	}
	return p, nil
}

// ParsePointPtr is ParsePoint for nullable columns. A nil or empty input yields nil.
func ParsePointPtr(s *string) (*Point, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	p, err := ParsePoint(*s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FormatPointPtr is the inverse of ParsePointPtr.
func FormatPointPtr(p *Point) *string {
	if p == nil {
		return nil
	}
	s := p.String()
	return &s
}

// DistanceMeters returns the great-circle distance between a and b in meters.
func DistanceMeters(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c * 1000
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
