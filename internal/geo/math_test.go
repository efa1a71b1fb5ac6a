package geo

import (
	"math"
	"slices"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lotSquare = Polygon{
	{Lat: 0, Lon: 0},
	{Lat: 0, Lon: 0.001},
	{Lat: 0.001, Lon: 0.001},
	{Lat: 0.001, Lon: 0},
}

// a small irregular lot in Bilbao
var bilbaoLot = Polygon{
	{Lat: 43.26310, Lon: -2.93510},
	{Lat: 43.26330, Lon: -2.93460},
	{Lat: 43.26295, Lon: -2.93420},
	{Lat: 43.26270, Lon: -2.93445},
	{Lat: 43.26280, Lon: -2.93500},
}

func TestDistanceSamePoint(t *testing.T) {
	for _, p := range []GeoPoint{
		{},
		{Lat: 43.263, Lon: -2.935},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 90, Lon: 0},
		{Lat: -90, Lon: 180},
	} {
		assert.Equal(t, 0.0, Distance(p, p), "point %v", p)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]GeoPoint{
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}},
		{{Lat: 43.263, Lon: -2.935}, {Lat: 40.4168, Lon: -3.7038}},
		{{Lat: -36.8485, Lon: 174.7633}, {Lat: 51.5074, Lon: -0.1278}},
		{{Lat: 89.9, Lon: 10}, {Lat: -89.9, Lon: -170}},
	}

	for _, pair := range pairs {
		assert.Equal(t, Distance(pair[0], pair[1]), Distance(pair[1], pair[0]))
	}
}

func TestDistanceOneDegreeAtEquator(t *testing.T) {
	d := Distance(GeoPoint{Lat: 0, Lon: 0}, GeoPoint{Lat: 0, Lon: 1})
	assert.InDelta(t, 111195, d, 50)
}

func TestDistanceAntipodal(t *testing.T) {
	d := Distance(GeoPoint{Lat: 0, Lon: 0}, GeoPoint{Lat: 0, Lon: 180})
	require.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadius, d, 1e-6)

	d = Distance(GeoPoint{Lat: 90, Lon: 0}, GeoPoint{Lat: -90, Lon: 0})
	require.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadius, d, 1e-6)
}

func TestDistanceMatchesS2(t *testing.T) {
	pairs := [][2]GeoPoint{
		{{Lat: 43.263, Lon: -2.935}, {Lat: 43.2569, Lon: -2.9236}},
		{{Lat: 40.4168, Lon: -3.7038}, {Lat: 41.3874, Lon: 2.1686}},
		{{Lat: -36.8485, Lon: 174.7633}, {Lat: -41.2865, Lon: 174.7762}},
	}

	for _, pair := range pairs {
		a := s2.LatLngFromDegrees(pair[0].Lat, pair[0].Lon)
		b := s2.LatLngFromDegrees(pair[1].Lat, pair[1].Lon)
		want := a.Distance(b).Radians() * EarthRadius

		assert.InEpsilon(t, want, Distance(pair[0], pair[1]), 1e-9)
	}
}

func TestAreaTooFewVertices(t *testing.T) {
	p1 := GeoPoint{Lat: 43.263, Lon: -2.935}
	p2 := GeoPoint{Lat: 43.264, Lon: -2.934}

	assert.Equal(t, 0.0, Area(nil))
	assert.Equal(t, 0.0, Area(Polygon{}))
	assert.Equal(t, 0.0, Area(Polygon{p1}))
	assert.Equal(t, 0.0, Area(Polygon{p1, p2}))
}

func TestAreaSmallSquare(t *testing.T) {
	assert.InEpsilon(t, 12363, Area(lotSquare), 0.05)
}

func TestAreaWindingInvariant(t *testing.T) {
	for _, poly := range []Polygon{lotSquare, bilbaoLot} {
		reversed := slices.Clone(poly)
		slices.Reverse(reversed)

		assert.InEpsilon(t, Area(poly), Area(reversed), 1e-9)
	}
}

func TestAreaRotationInvariant(t *testing.T) {
	want := Area(bilbaoLot)
	require.Greater(t, want, 0.0)

	for k := 1; k < len(bilbaoLot); k++ {
		rotated := append(slices.Clone(bilbaoLot[k:]), bilbaoLot[:k]...)
		assert.InEpsilon(t, want, Area(rotated), 1e-9, "rotation %d", k)
	}
}

func TestAreaDuplicateVertices(t *testing.T) {
	dup := Polygon{lotSquare[0], lotSquare[0], lotSquare[1], lotSquare[2], lotSquare[2], lotSquare[3]}
	assert.InEpsilon(t, Area(lotSquare), Area(dup), 1e-12)

	// an explicitly closed ring adds a zero-length segment
	closed := append(slices.Clone(lotSquare), lotSquare[0])
	assert.InEpsilon(t, Area(lotSquare), Area(closed), 1e-12)
}

func TestAreaCollinear(t *testing.T) {
	line := Polygon{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.001},
		{Lat: 0, Lon: 0.002},
	}
	assert.InDelta(t, 0, Area(line), 1e-9)
}

func TestPerimeter(t *testing.T) {
	assert.Equal(t, 0.0, Perimeter(nil))
	assert.Equal(t, 0.0, Perimeter(Polygon{{Lat: 1, Lon: 1}}))

	a := GeoPoint{Lat: 0, Lon: 0}
	b := GeoPoint{Lat: 0, Lon: 1}
	assert.InDelta(t, 2*Distance(a, b), Perimeter(Polygon{a, b}), 1e-9)

	side := Distance(lotSquare[0], lotSquare[1])
	assert.InEpsilon(t, 4*side, Perimeter(lotSquare), 1e-6)
}
