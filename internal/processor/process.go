package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/geo"

	"github.com/rs/zerolog/log"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 8

// Options controls a processing run.
type Options struct {
	Units       string
	Origin      geo.GeoPoint
	Radius      float64 // meters, 0 disables the filter
	Concurrency int
}

// OptionsFromConfig returns processing options for cfg.
func OptionsFromConfig(cfg *config.Config, concurrency int) Options {
	return Options{
		Units:       cfg.Units,
		Origin:      cfg.Origin,
		Radius:      cfg.Radius,
		Concurrency: concurrency,
	}
}

type annotateJob struct {
	source  string
	listing config.Listing
}

// Process fetches listings from all sources, drops those outside the radius
// and annotates the rest. Results are ordered by distance, then by ID.
// A failing source is logged and skipped; an error is returned only when
// every source failed or ctx was cancelled.
func Process(ctx context.Context, sources []Source, opts Options) ([]Result, error) {
	var (
		jobs     []annotateJob
		fetchErr []error
	)

	var box geo.Bounds
	if opts.Radius > 0 {
		box = geo.BoundingBox(opts.Origin, opts.Radius)
	}

	for _, src := range sources {
		listings, err := src.Fetch(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			log.Error().
				Err(err).
				Str("source", src.Name()).
				Msg("Failed to fetch listings")
			fetchErr = append(fetchErr, fmt.Errorf("source %s: %w", src.Name(), err))
			continue
		}

		kept := 0
		for _, l := range listings {
			if opts.Radius > 0 {
				p := l.Point()
				if !box.Contains(p) || geo.Distance(opts.Origin, p) > opts.Radius {
					continue
				}
			}
			jobs = append(jobs, annotateJob{source: src.Name(), listing: l})
			kept++
		}

		log.Debug().
			Str("source", src.Name()).
			Int("fetched", len(listings)).
			Int("kept", kept).
			Msg("Listings fetched")
	}

	if len(sources) > 0 && len(fetchErr) == len(sources) {
		return nil, errors.Join(fetchErr...)
	}

	results, err := annotateBatch(ctx, jobs, opts)
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Annotation.DistanceM != results[j].Annotation.DistanceM {
			return results[i].Annotation.DistanceM < results[j].Annotation.DistanceM
		}
		return results[i].Listing.ID < results[j].Listing.ID
	})

	return results, nil
}

func annotateBatch(ctx context.Context, batch []annotateJob, opts Options) ([]Result, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	jobs := make(chan annotateJob, len(batch))
	results := make(chan Result, len(batch))

	for _, j := range batch {
		jobs <- j
	}
	close(jobs)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- Result{
					Source:     j.source,
					Listing:    j.listing,
					Annotation: Annotate(opts.Origin, j.listing, opts.Units),
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(batch))
	for res := range results {
		out = append(out, res)
	}

	return out, nil
}
