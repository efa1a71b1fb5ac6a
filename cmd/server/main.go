package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/logger"
	"github.com/woozymasta/lotmap/internal/processor"
	"github.com/woozymasta/lotmap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string        `short:"c" long:"config"      env:"CONFIG_FILE"    description:"Path to configuration file"        default:"config.yaml"`
	Addr        string        `short:"a" long:"addr"        env:"LISTEN_ADDRESS" description:"Address to listen on"              default:"0.0.0.0"`
	Port        int           `short:"p" long:"port"        env:"LISTEN_PORT"    description:"Port to listen on"                 default:"8080"`
	Concurrency int           `short:"j" long:"concurrency" env:"CONCURRENCY"    description:"Annotation workers per request"    default:"8"`
	Timeout     time.Duration `short:"t" long:"timeout"     env:"BACKEND_TIMEOUT" description:"Timeout for backend listing calls" default:"15s"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client := &http.Client{Timeout: opts.Timeout}

	srvCtx, err := server.NewServerContext(cfg, processor.NewSources(cfg, client), opts.Concurrency)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("sources", len(cfg.Sources)).
		Str("origin", cfg.Origin.String()).
		Msg("Web server started")

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
