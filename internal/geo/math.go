package geo

import "math"

// Distance returns the great-circle distance between a and b in meters
// using the haversine formula.
func Distance(a, b GeoPoint) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := lat2 - lat1
	dLon := toRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// rounding can push h just past 1 for antipodal points
	h = math.Min(h, 1)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// Area returns the unsigned area of the polygon in square meters.
//
// Each edge contributes (lon2 - lon1) * (2 + sin(lat1) + sin(lat2)), the sum
// is scaled by R^2/2. Polygons with fewer than 3 vertices have no area.
// The sin(lat) term is the only curvature correction, so the figure is an
// approximation meant for lot-sized shapes.
func Area(poly Polygon) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}

	var sum float64
	for i := range n {
		p1, p2 := poly[i], poly[(i+1)%n]
		sum += (toRad(p2.Lon) - toRad(p1.Lon)) *
			(2 + math.Sin(toRad(p1.Lat)) + math.Sin(toRad(p2.Lat)))
	}

	return math.Abs(sum) * EarthRadius * EarthRadius / 2
}

// Perimeter returns the length of the implicitly closed ring in meters.
func Perimeter(poly Polygon) float64 {
	n := len(poly)
	if n < 2 {
		return 0
	}

	var total float64
	for i := range n {
		total += Distance(poly[i], poly[(i+1)%n])
	}

	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
