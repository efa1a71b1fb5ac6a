package geo

import "math"

// metersPerDegree is the length of one degree of arc on the mean sphere.
const metersPerDegree = EarthRadius * math.Pi / 180

// Bounds is a latitude/longitude box.
type Bounds struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MinLon float64 `json:"min_lon" yaml:"min_lon"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
}

// Bounds returns the box enclosing all vertices. ok is false for an empty polygon.
func (poly Polygon) Bounds() (b Bounds, ok bool) {
	if len(poly) == 0 {
		return Bounds{}, false
	}

	b = Bounds{MinLat: poly[0].Lat, MinLon: poly[0].Lon, MaxLat: poly[0].Lat, MaxLon: poly[0].Lon}
	for _, p := range poly[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}

	return b, true
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Center returns the midpoint of the box.
func (b Bounds) Center() GeoPoint {
	return GeoPoint{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// BoundingBox returns a box around center that contains every point within
// radius meters. It is meant as a cheap pre-filter before Distance.
func BoundingBox(center GeoPoint, radius float64) Bounds {
	latDelta := radius / metersPerDegree

	b := Bounds{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
		MinLon: -180,
		MaxLon: 180,
	}

	// boxes touching a pole or crossing the antimeridian keep the full longitude range
	cos := math.Cos(toRad(math.Max(math.Abs(b.MinLat), math.Abs(b.MaxLat))))
	if b.MinLat > -90 && b.MaxLat < 90 && cos > 0 {
		lonDelta := radius / (metersPerDegree * cos)
		if center.Lon-lonDelta >= -180 && center.Lon+lonDelta <= 180 {
			b.MinLon = center.Lon - lonDelta
			b.MaxLon = center.Lon + lonDelta
		}
	}

	return b
}
