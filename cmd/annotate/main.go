package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/logger"
	"github.com/woozymasta/lotmap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile   string   `short:"c" long:"config"        env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Output       string   `short:"o" long:"output"        env:"OUTPUT_DIR"  description:"Output directory, overrides the config"`
	Limit        []string `short:"l" long:"limit"         env:"LIMIT_NAMES" description:"Limit processing to specific source names"`
	Concurrency  int      `short:"p" long:"concurrency"   env:"CONCURRENCY" description:"Concurrency" default:"8"`
	GeoJSONOnly  bool     `short:"g" long:"geojson-only"  description:"Generate GeoJSON only"`
	OverlaysOnly bool     `short:"r" long:"overlays-only" description:"Render overlays only"`
	Minify       bool     `short:"m" long:"minify"        description:"Minify GeoJSON output"`
	Force        bool     `short:"f" long:"force"         description:"Force overwrite of existing overlays"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	if err := run(opts); err != nil {
		log.Fatal().Err(err).Msg("Annotation failed")
	}
}

// run loads the config, annotates every source and writes the outputs.
func run(opts Options) error {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}

	processGeo := true
	processOverlays := true
	if opts.GeoJSONOnly && !opts.OverlaysOnly {
		processOverlays = false
	} else if opts.OverlaysOnly && !opts.GeoJSONOnly {
		processGeo = false
	}

	overlay, err := processor.OverlayOptionsFromConfig(cfg.Overlay)
	if err != nil {
		return fmt.Errorf("overlay configuration: %w", err)
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 15 * time.Second,
	}

	// Filter sources if limit is set
	if len(opts.Limit) > 0 {
		available := make(map[string]config.Source)
		for _, s := range cfg.Sources {
			available[s.Name] = s
		}

		seen := make(map[string]bool)
		limited := make([]config.Source, 0, len(opts.Limit))

		for _, name := range opts.Limit {
			if seen[name] {
				continue
			}
			seen[name] = true

			if s, ok := available[name]; ok {
				limited = append(limited, s)
			} else {
				log.Error().
					Str("name", name).
					Msg("Source specified in --limit not found in configuration")
			}
		}
		cfg.Sources = limited
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().
		Int("sources", len(cfg.Sources)).
		Str("output", cfg.Output).
		Float64("radius", cfg.Radius).
		Msg("Starting annotation")

	results, err := processor.Process(ctx, processor.NewSources(cfg, client), processor.OptionsFromConfig(cfg, opts.Concurrency))
	if err != nil {
		return fmt.Errorf("process listings: %w", err)
	}

	if processGeo {
		fc := processor.FeatureCollection(results)
		if err := processor.SaveGeoJSON(cfg.Output, "listings.geojson", fc, opts.Minify); err != nil {
			return fmt.Errorf("save GeoJSON: %w", err)
		}
		log.Info().
			Int("features", len(fc.Features)).
			Str("path", filepath.Join(cfg.Output, "listings.geojson")).
			Msg("GeoJSON written")
	}

	if processOverlays {
		processor.ProcessOverlays(filepath.Join(cfg.Output, "overlays"), results, overlay, opts.Concurrency, opts.Force)
	}

	log.Info().Int("listings", len(results)).Msg("Annotation finished successfully")
	return nil
}
