package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/lotmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
origin: {lat: 43.263, lon: -2.935}
radius: 5000
sources:
  - name: backend
    url: https://api.example.com/v1/listings
    token_file: /var/run/lotmap/token
  - name: manual
    listings:
      - id: lot-1
        name: Riverside lot
        boundary_wkt: "POLYGON((-2.9351 43.2631, -2.9346 43.2633, -2.9342 43.26295, -2.93445 43.2627, -2.9351 43.2631))"
        properties:
          price: 420000
      - id: flat-2
        name: Abando flat
        location: {lat: 43.2614, lon: -2.9270}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, geo.GeoPoint{Lat: 43.263, Lon: -2.935}, cfg.Origin)
	assert.Equal(t, 5000.0, cfg.Radius)
	assert.Equal(t, UnitsMetric, cfg.Units)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultOverlaySize, cfg.Overlay.Size)
	assert.Equal(t, float32(DefaultOverlayQuality), cfg.Overlay.Quality)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "/var/run/lotmap/token", cfg.Sources[0].TokenFile)

	manual := cfg.Sources[1]
	require.Len(t, manual.Listings, 2)

	lot := manual.Listings[0]
	assert.Len(t, lot.Boundary, 4, "closing vertex is dropped")
	require.NotNil(t, lot.Location, "location derived from boundary")
	b, _ := lot.Boundary.Bounds()
	assert.Equal(t, b.Center(), lot.Point())
	assert.Equal(t, 420000, lot.Properties["price"])

	flat := manual.Listings[1]
	assert.Empty(t, flat.Boundary)
	assert.Equal(t, geo.GeoPoint{Lat: 43.2614, Lon: -2.9270}, flat.Point())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "sources: [\n"))
	assert.Error(t, err)
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Config{
		Origin: geo.GeoPoint{Lat: 120},
		Radius: -1,
		Units:  "furlongs",
		Sources: []Source{
			{Name: ""},
			{Name: "a", URL: "http://x", Listings: []Listing{{ID: "1", Location: &geo.GeoPoint{}}}},
			{Name: "a", Listings: []Listing{
				{ID: "dup", Location: &geo.GeoPoint{}},
				{ID: "dup", Location: &geo.GeoPoint{}},
				{ID: "bad", BoundaryWKT: "POLYGON((oops"},
				{ID: "nowhere"},
			}},
		},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"origin:",
		"radius must not be negative",
		"units must be",
		"sources[0]: name is required",
		"either url or listings is required",
		"mutually exclusive",
		`duplicate name "a"`,
		`duplicate listing id "dup"`,
		"parse wkt",
		"location or boundary is required",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestListingNormalize(t *testing.T) {
	l := Listing{ID: "x", Location: &geo.GeoPoint{Lat: 100}}
	assert.ErrorIs(t, l.Normalize(), geo.ErrInvalidCoordinate)

	l = Listing{Name: "anonymous", Location: &geo.GeoPoint{}}
	assert.ErrorContains(t, l.Normalize(), "id is required")

	l = Listing{ID: "y", Boundary: geo.Polygon{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 2}, {Lat: 2, Lon: 2}}}
	require.NoError(t, l.Normalize())
	assert.Equal(t, geo.GeoPoint{Lat: 1.5, Lon: 1.5}, l.Point())
}
