package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/woozymasta/lotmap/internal/config"

	"github.com/rs/zerolog/log"
)

// maxResponseSize caps the listings payload read from the backend.
const maxResponseSize = 32 << 20

// ErrUnauthorized is returned when the backend rejects the bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// Source delivers property listings.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]config.Listing, error)
}

// NewSources builds the sources declared in the configuration.
func NewSources(cfg *config.Config, client *http.Client) []Source {
	sources := make([]Source, 0, len(cfg.Sources))

	for _, s := range cfg.Sources {
		if s.URL == "" {
			sources = append(sources, NewInlineSource(s.Name, s.Listings))
			continue
		}

		var tokens TokenStore
		switch {
		case s.TokenFile != "":
			tokens = FileTokenStore{Path: s.TokenFile}
		case s.Token != "":
			tokens = StaticTokenStore(s.Token)
		}

		sources = append(sources, NewHTTPSource(client, s.Name, s.URL, tokens))
	}

	return sources
}

// InlineSource serves listings defined directly in the configuration.
type InlineSource struct {
	name     string
	listings []config.Listing
}

// NewInlineSource returns a source over already normalized listings.
func NewInlineSource(name string, listings []config.Listing) *InlineSource {
	return &InlineSource{name: name, listings: listings}
}

// Name implements Source.
func (s *InlineSource) Name() string { return s.name }

// Fetch implements Source.
func (s *InlineSource) Fetch(ctx context.Context) ([]config.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return slices.Clone(s.listings), nil
}

// HTTPSource fetches listings from the backend REST API.
type HTTPSource struct {
	client *http.Client
	tokens TokenStore
	name   string
	url    string
}

// NewHTTPSource returns a backend source. tokens may be nil.
func NewHTTPSource(client *http.Client, name, url string, tokens TokenStore) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPSource{client: client, tokens: tokens, name: name, url: url}
}

// Name implements Source.
func (s *HTTPSource) Name() string { return s.name }

// Fetch implements Source. The backend may answer with a bare JSON array
// or with an object holding a "listings" array. Listings that fail
// normalization are logged and dropped.
func (s *HTTPSource) Fetch(ctx context.Context) ([]config.Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	if s.tokens != nil {
		token, err := s.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	raw, err := decodeListings(data)
	if err != nil {
		return nil, err
	}

	listings := make([]config.Listing, 0, len(raw))
	for _, l := range raw {
		if err := l.Normalize(); err != nil {
			log.Warn().
				Err(err).
				Str("source", s.name).
				Msg("Skipping invalid listing")
			continue
		}
		listings = append(listings, l)
	}

	return listings, nil
}

func decodeListings(data []byte) ([]config.Listing, error) {
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte("[")) {
		var listings []config.Listing
		if err := json.Unmarshal(data, &listings); err != nil {
			return nil, fmt.Errorf("decode listings: %w", err)
		}
		return listings, nil
	}

	var envelope struct {
		Listings []config.Listing `json:"listings"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	return envelope.Listings, nil
}
