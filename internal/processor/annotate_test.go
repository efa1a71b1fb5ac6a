package processor

import (
	"testing"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/geo"

	"github.com/stretchr/testify/assert"
)

var squareLot = geo.Polygon{
	{Lat: 0, Lon: 0},
	{Lat: 0, Lon: 0.001},
	{Lat: 0.001, Lon: 0.001},
	{Lat: 0.001, Lon: 0},
}

func listingAt(id string, p geo.GeoPoint, boundary geo.Polygon) config.Listing {
	return config.Listing{ID: id, Name: "Listing " + id, Location: &p, Boundary: boundary}
}

func TestAnnotatePointListing(t *testing.T) {
	a := Annotate(geo.GeoPoint{}, listingAt("a", geo.GeoPoint{Lat: 0, Lon: 1}, nil), config.UnitsMetric)

	assert.InDelta(t, 111195, a.DistanceM, 50)
	assert.Equal(t, "111.2 km", a.DistanceLabel)
	assert.Zero(t, a.AreaM2)
	assert.Empty(t, a.AreaLabel)
	assert.Empty(t, a.PerimeterLabel)
}

func TestAnnotateLotListing(t *testing.T) {
	a := Annotate(geo.GeoPoint{}, listingAt("lot", geo.GeoPoint{}, squareLot), config.UnitsMetric)

	assert.Equal(t, 0.0, a.DistanceM)
	assert.Equal(t, "0 m", a.DistanceLabel)
	assert.InEpsilon(t, 12363, a.AreaM2, 0.05)
	assert.Equal(t, "12,364 m²", a.AreaLabel)
	assert.InEpsilon(t, 4*111.195, a.PerimeterM, 0.001)
	assert.Equal(t, "445 m", a.PerimeterLabel)
}

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		units string
		want  string
		m     float64
	}{
		{config.UnitsMetric, "850 m", 850.2},
		{config.UnitsMetric, "1.5 km", 1500},
		{config.UnitsMetric, "1,234.6 km", 1234567},
		{config.UnitsImperial, "328 ft", 100},
		{config.UnitsImperial, "3.1 mi", 5000},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDistance(tc.m, tc.units), "%v %s", tc.m, tc.units)
	}
}

func TestFormatArea(t *testing.T) {
	cases := []struct {
		units string
		want  string
		m2    float64
	}{
		{config.UnitsMetric, "1,250 m²", 1250},
		{config.UnitsMetric, "10,000 m²", 10000},
		{config.UnitsMetric, "34,500 m²", 34500},
		{config.UnitsMetric, "99,999 m²", 99999.4},
		{config.UnitsMetric, "10 ha", 100000},
		{config.UnitsMetric, "12.35 ha", 123456},
		{config.UnitsImperial, "10,764 sq ft", 1000},
		{config.UnitsImperial, "2.47 ac", 10000},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatArea(tc.m2, tc.units), "%v %s", tc.m2, tc.units)
	}
}
