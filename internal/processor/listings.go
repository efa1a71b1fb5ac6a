// Package processor fetches property listings, annotates them with
// distance and lot figures and renders GeoJSON and overlay images.
package processor

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// GeoJSONMediaType is the content type of listing collections.
const GeoJSONMediaType = "application/geo+json"

// FeatureCollection converts results into GeoJSON. Listings with a boundary
// become polygons, the rest points; annotations go into properties.
func FeatureCollection(results []Result) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(results))}

	for _, r := range results {
		props := make(map[string]interface{}, len(r.Listing.Properties)+10)
		for k, v := range r.Listing.Properties {
			props[k] = v
		}

		p := r.Listing.Point()
		props["name"] = r.Listing.Name
		props["source"] = r.Source
		props["lat"] = p.Lat
		props["lon"] = p.Lon
		props["distance_m"] = r.Annotation.DistanceM
		props["distance_label"] = r.Annotation.DistanceLabel

		feature := &geojson.Feature{ID: r.Listing.ID, Properties: props}
		if len(r.Listing.Boundary) >= 3 {
			feature.Geometry = r.Listing.Boundary.Geom()
			props["area_m2"] = r.Annotation.AreaM2
			props["area_label"] = r.Annotation.AreaLabel
			props["perimeter_m"] = r.Annotation.PerimeterM
			props["perimeter_label"] = r.Annotation.PerimeterLabel
		} else {
			feature.Geometry = p.Geom()
		}

		fc.Features = append(fc.Features, feature)
	}

	return fc
}

// MarshalGeoJSON encodes the collection, either indented or minified.
// Minification also shortens numbers, which matters for coordinate-heavy output.
func MarshalGeoJSON(fc *geojson.FeatureCollection, minified bool) ([]byte, error) {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, err
	}
	if !minified {
		return data, nil
	}

	m := minify.New()
	m.AddFunc(GeoJSONMediaType, mjson.Minify)

	return m.Bytes(GeoJSONMediaType, data)
}

// SaveGeoJSON marshals the feature collection and writes it to disk.
func SaveGeoJSON(dir, name string, fc *geojson.FeatureCollection, minified bool) error {
	data, err := MarshalGeoJSON(fc, minified)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	_, err = f.Write(data)
	return err
}
