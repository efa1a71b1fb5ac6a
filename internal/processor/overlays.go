package processor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// OverlayFileName maps a listing ID to a file name. ASCII letters, digits
// and '-' are kept, every other byte becomes "_xx" (hex), so distinct IDs
// never share a file and no name can leave the output directory.
func OverlayFileName(id string) string {
	var b strings.Builder
	b.Grow(len(id) + len(".webp"))

	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02x", c)
		}
	}

	b.WriteString(".webp")
	return b.String()
}

// ProcessOverlays renders a WebP overlay for every result with a boundary
// into dir. Existing files are kept unless force is set. It returns the
// number of overlays written.
func ProcessOverlays(dir string, results []Result, opts OverlayOptions, concurrency int, force bool) int {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("Failed to create overlay dir")
		return 0
	}

	var (
		wg      sync.WaitGroup
		written atomic.Int64
	)
	// Simple semaphore to limit file I/O concurrency
	sem := make(chan struct{}, concurrency)

	for _, r := range results {
		if len(r.Listing.Boundary) < 3 {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(r Result) {
			defer wg.Done()
			defer func() { <-sem }()

			outPath := filepath.Join(dir, OverlayFileName(r.Listing.ID))
			if !force {
				if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
					return
				}
			}

			if err := writeOverlay(outPath, r, opts); err != nil {
				ev := log.Error()
				if errors.Is(err, ErrDegenerate) {
					ev = log.Warn()
				}
				ev.Err(err).Str("listing", r.Listing.ID).Msg("Failed to render overlay")
				return
			}
			written.Add(1)
		}(r)
	}
	wg.Wait()

	log.Info().
		Str("dir", dir).
		Int64("written", written.Load()).
		Msg("Overlays rendered")

	return int(written.Load())
}

func writeOverlay(path string, r Result, opts OverlayOptions) (err error) {
	img, err := Render(r.Listing.Boundary, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
		// a partial file would be skipped on the next run
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return WriteWebP(f, img, opts.Quality)
}
