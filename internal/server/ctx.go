package server

import (
	"net/http"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/processor"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config      *config.Config
	Sources     []processor.Source
	Overlay     processor.OverlayOptions
	Concurrency int

	registry *prometheus.Registry
	metrics  *Metrics
}

// NewServerContext validates overlay settings and registers metrics.
func NewServerContext(cfg *config.Config, sources []processor.Source, concurrency int) (*ServerContext, error) {
	log.Info().Int("sources_count", len(sources)).Msg("Initializing server context")

	overlay, err := processor.OverlayOptionsFromConfig(cfg.Overlay)
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		log.Debug().Str("source", src.Name()).Msg("Listing source registered")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	log.Info().
		Str("units", cfg.Units).
		Float64("radius", cfg.Radius).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:      cfg,
		Sources:     sources,
		Overlay:     overlay,
		Concurrency: concurrency,
		registry:    registry,
		metrics:     NewMetrics(registry),
	}, nil
}

// Handler returns the routed and logged HTTP handler.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/distance", s.HandleDistance)
	mux.HandleFunc("POST /api/area", s.HandleArea)
	mux.HandleFunc("GET /api/listings", s.HandleListings)
	mux.HandleFunc("GET /overlays/{file}", s.HandleOverlay)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return s.RequestLogger(mux)
}
