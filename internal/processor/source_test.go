package processor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingsArray = `[
	{"id": "lot-1", "name": "Riverside", "boundary": [
		{"lat": 0, "lon": 0}, {"lat": 0, "lon": 0.001}, {"lat": 0.001, "lon": 0.001}, {"lat": 0.001, "lon": 0}
	]},
	{"id": "flat-2", "name": "Centre", "location": {"lat": 0.01, "lon": 0.01}, "properties": {"price": 250000}},
	{"id": "broken", "location": {"lat": 123, "lon": 0}}
]`

func TestHTTPSourceFetchArray(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingsArray))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), "backend", srv.URL, StaticTokenStore("secret"))
	listings, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "backend", src.Name())
	require.Len(t, listings, 2, "invalid listing is dropped")

	assert.Equal(t, "lot-1", listings[0].ID)
	assert.NotNil(t, listings[0].Location, "location derived from boundary")
	assert.Equal(t, geo.GeoPoint{Lat: 0.01, Lon: 0.01}, listings[1].Point())
	assert.Equal(t, 250000.0, listings[1].Properties["price"])
}

func TestHTTPSourceFetchEnvelopeWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"listings": [{"id": "x", "location": {"lat": 1, "lon": 2}}]}`))
	}))
	defer srv.Close()

	tokens := FileTokenStore{Path: filepath.Join(t.TempDir(), "missing")}
	listings, err := NewHTTPSource(srv.Client(), "backend", srv.URL, tokens).Fetch(context.Background())
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
	require.Len(t, listings, 1)
	assert.Equal(t, "x", listings[0].ID)
}

func TestHTTPSourceStatusErrors(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), "backend", srv.URL, nil)

	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	status = http.StatusBadGateway
	_, err = src.Fetch(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPSourceBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"listings": "nope"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.Client(), "backend", srv.URL, nil).Fetch(context.Background())
	assert.ErrorContains(t, err, "decode listings")
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  abc123\n"), 0600))

	token, err := FileTokenStore{Path: path}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestNewSources(t *testing.T) {
	cfg := &config.Config{Sources: []config.Source{
		{Name: "api", URL: "http://example.invalid", TokenFile: "/tmp/token", Token: "ignored"},
		{Name: "inline", Listings: []config.Listing{listingAt("a", geo.GeoPoint{}, nil)}},
	}}

	sources := NewSources(cfg, nil)
	require.Len(t, sources, 2)

	api, ok := sources[0].(*HTTPSource)
	require.True(t, ok)
	assert.Equal(t, FileTokenStore{Path: "/tmp/token"}, api.tokens)

	inline, ok := sources[1].(*InlineSource)
	require.True(t, ok)
	listings, err := inline.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}
