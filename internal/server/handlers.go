// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/geo"
	"github.com/woozymasta/lotmap/internal/processor"

	"github.com/rs/zerolog/log"
)

// maxBodySize caps request bodies of the area endpoint.
const maxBodySize = 1 << 20

type distanceResponse struct {
	Label  string       `json:"label"`
	From   geo.GeoPoint `json:"from"`
	To     geo.GeoPoint `json:"to"`
	Meters float64      `json:"meters"`
}

type areaRequest struct {
	WKT    string      `json:"wkt,omitempty"`
	Points geo.Polygon `json:"points,omitempty"`
}

type areaResponse struct {
	AreaLabel       string  `json:"area_label"`
	PerimeterLabel  string  `json:"perimeter_label"`
	SquareMeters    float64 `json:"square_meters"`
	PerimeterMeters float64 `json:"perimeter_meters"`
	Vertices        int     `json:"vertices"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleDistance serves the great-circle distance between two points:
// GET /api/distance?from=lat,lon&to=lat,lon[&units=imperial]
func (s *ServerContext) HandleDistance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := geo.ParsePoint(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("from: %w", err))
		return
	}
	to, err := geo.ParsePoint(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("to: %w", err))
		return
	}

	units, err := s.units(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	meters := geo.Distance(from, to)
	writeJSON(w, http.StatusOK, distanceResponse{
		From:   from,
		To:     to,
		Meters: meters,
		Label:  processor.FormatDistance(meters, units),
	})
}

// HandleArea serves the area and perimeter of a polygon given either as
// a list of points or as WKT.
func (s *ServerContext) HandleArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}

	poly := req.Points
	switch {
	case req.WKT != "" && len(req.Points) > 0:
		writeError(w, http.StatusBadRequest, errors.New("points and wkt are mutually exclusive"))
		return
	case req.WKT != "":
		var err error
		if poly, err = geo.PolygonFromWKT(req.WKT); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if err := poly.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	units, err := s.units(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	area := geo.Area(poly)
	perimeter := geo.Perimeter(poly)
	writeJSON(w, http.StatusOK, areaResponse{
		SquareMeters:    area,
		PerimeterMeters: perimeter,
		Vertices:        len(poly),
		AreaLabel:       processor.FormatArea(area, units),
		PerimeterLabel:  processor.FormatDistance(perimeter, units),
	})
}

// HandleListings serves annotated listings as GeoJSON. The origin and
// radius from the configuration can be overridden with query parameters.
func (s *ServerContext) HandleListings(w http.ResponseWriter, r *http.Request) {
	opts := processor.OptionsFromConfig(s.Config, s.Concurrency)
	q := r.URL.Query()

	if v := q.Get("origin"); v != "" {
		origin, err := geo.ParsePoint(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("origin: %w", err))
			return
		}
		opts.Origin = origin
	}
	if v := q.Get("radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || radius < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("radius: invalid value %q", v))
			return
		}
		opts.Radius = radius
	}

	units, err := s.units(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts.Units = units

	results, err := processor.Process(r.Context(), s.Sources, opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to process listings")
		writeError(w, http.StatusBadGateway, errors.New("listings are unavailable"))
		return
	}
	s.metrics.listings.Set(float64(len(results)))

	data, err := processor.MarshalGeoJSON(processor.FeatureCollection(results), true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.serveBytes(w, r, data, processor.GeoJSONMediaType)
}

// HandleOverlay serves the rendered boundary of a listing: GET /overlays/{id}.webp
func (s *ServerContext) HandleOverlay(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	if !strings.HasSuffix(file, ".webp") {
		http.NotFound(w, r)
		return
	}

	opts := processor.OptionsFromConfig(s.Config, s.Concurrency)
	opts.Radius = 0

	results, err := processor.Process(r.Context(), s.Sources, opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to process listings")
		writeError(w, http.StatusBadGateway, errors.New("listings are unavailable"))
		return
	}

	for _, res := range results {
		if processor.OverlayFileName(res.Listing.ID) != file {
			continue
		}

		img, err := processor.Render(res.Listing.Boundary, s.Overlay)
		if errors.Is(err, processor.ErrDegenerate) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		var buf bytes.Buffer
		if err := processor.WriteWebP(&buf, img, s.Overlay.Quality); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		s.serveBytes(w, r, buf.Bytes(), "image/webp")
		return
	}

	http.NotFound(w, r)
}

func (s *ServerContext) units(r *http.Request) (string, error) {
	units := r.URL.Query().Get("units")
	switch units {
	case "":
		return s.Config.Units, nil
	case config.UnitsMetric, config.UnitsImperial:
		return units, nil
	default:
		return "", fmt.Errorf("units: unknown value %q", units)
	}
}

// serveBytes writes data with a content hash ETag and answers 304 on match.
func (s *ServerContext) serveBytes(w http.ResponseWriter, r *http.Request, data []byte, contentType string) {
	h := fnv.New64a()
	_, _ = h.Write(data)
	etag := fmt.Sprintf(`"%x"`, h.Sum64())

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
