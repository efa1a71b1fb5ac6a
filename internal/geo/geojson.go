package geo

import (
	"errors"
	"fmt"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ErrUnsupportedGeometry is returned when a decoded geometry is not of the expected kind.
var ErrUnsupportedGeometry = errors.New("unsupported geometry")

// Geom converts the point into a go-geom point with [lon, lat] coordinates.
func (p GeoPoint) Geom() *geom.Point {
	return geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{p.Lon, p.Lat})
}

// Geom converts the polygon into a go-geom polygon with an explicitly closed outer ring.
func (poly Polygon) Geom() *geom.Polygon {
	ring := make([]geom.Coord, 0, len(poly)+1)
	for _, p := range poly {
		ring = append(ring, geom.Coord{p.Lon, p.Lat})
	}
	if len(poly) > 1 && poly[0] != poly[len(poly)-1] {
		ring = append(ring, geom.Coord{poly[0].Lon, poly[0].Lat})
	}

	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})
}

// PointFromGeom converts a go-geom point.
func PointFromGeom(g geom.T) (GeoPoint, error) {
	pt, ok := g.(*geom.Point)
	if !ok {
		return GeoPoint{}, fmt.Errorf("%w: %T, want point", ErrUnsupportedGeometry, g)
	}
	if pt.Empty() {
		return GeoPoint{}, fmt.Errorf("%w: empty point", ErrUnsupportedGeometry)
	}

	c := pt.Coords()
	return GeoPoint{Lat: c.Y(), Lon: c.X()}, nil
}

// PolygonFromGeom converts the outer ring of a go-geom polygon. Holes are ignored.
func PolygonFromGeom(g geom.T) (Polygon, error) {
	pg, ok := g.(*geom.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: %T, want polygon", ErrUnsupportedGeometry, g)
	}
	if pg.NumLinearRings() == 0 {
		return Polygon{}, nil
	}

	coords := pg.LinearRing(0).Coords()
	poly := make(Polygon, 0, len(coords))
	for _, c := range coords {
		poly = append(poly, GeoPoint{Lat: c.Y(), Lon: c.X()})
	}

	return poly.Closed(), nil
}

// ParseWKT decodes a WKT string such as "POLYGON((lon lat, ...))".
func ParseWKT(s string) (geom.T, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("parse wkt: %w", err)
	}

	return g, nil
}

// ParseGeoJSONGeometry decodes a GeoJSON geometry object.
func ParseGeoJSONGeometry(data []byte) (geom.T, error) {
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	return g, nil
}

// PolygonFromWKT is a shorthand for ParseWKT followed by PolygonFromGeom.
func PolygonFromWKT(s string) (Polygon, error) {
	g, err := ParseWKT(s)
	if err != nil {
		return nil, err
	}

	return PolygonFromGeom(g)
}
