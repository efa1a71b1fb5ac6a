// Package geo computes great-circle distances and lot areas for map annotations.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// ErrInvalidCoordinate is returned when a latitude or longitude is outside its range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Polygon is an ordered list of vertices. The ring is implicitly closed,
// the first vertex does not need to be repeated at the end.
type Polygon []GeoPoint

// Validate reports whether the point lies within [-90, 90] x [-180, 180].
func (p GeoPoint) Validate() error {
	if !isFinite(p.Lat) || !isFinite(p.Lon) {
		return fmt.Errorf("%w: %v,%v is not a finite number", ErrInvalidCoordinate, p.Lat, p.Lon)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, p.Lon)
	}

	return nil
}

func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// Validate checks every vertex and reports the index of the first bad one.
func (poly Polygon) Validate() error {
	for i, p := range poly {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
	}

	return nil
}

// Closed drops a trailing vertex equal to the first one, as found in
// GeoJSON and WKT rings.
func (poly Polygon) Closed() Polygon {
	if n := len(poly); n > 1 && poly[0] == poly[n-1] {
		return poly[:n-1]
	}

	return poly
}

// ParsePoint parses "lat,lon" and validates the result.
func ParsePoint(s string) (GeoPoint, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return GeoPoint{}, fmt.Errorf("%w: %q, expected lat,lon", ErrInvalidCoordinate, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("%w: latitude %q: %w", ErrInvalidCoordinate, latStr, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("%w: longitude %q: %w", ErrInvalidCoordinate, lonStr, err)
	}

	p := GeoPoint{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
