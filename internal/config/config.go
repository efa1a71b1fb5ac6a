// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/woozymasta/lotmap/internal/geo"

	"gopkg.in/yaml.v3"
)

// Label units.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Defaults applied by Load.
const (
	DefaultOutput         = "out"
	DefaultOverlaySize    = 256
	DefaultOverlayQuality = 85
	DefaultOverlayFill    = "#2e7d3266"
	DefaultOverlayStroke  = "#1b5e20ff"
)

// Config represents the root configuration file structure.
type Config struct {
	Sources []Source     `yaml:"sources" json:"sources"`
	Overlay Overlay      `yaml:"overlay,omitempty" json:"overlay"`
	Output  string       `yaml:"output,omitempty" json:"-"`
	Units   string       `yaml:"units,omitempty" json:"units"`
	Origin  geo.GeoPoint `yaml:"origin" json:"origin"`
	Radius  float64      `yaml:"radius,omitempty" json:"radius,omitempty"` // meters, 0 disables
}

// Source is a place listings come from: the backend API or inline data.
type Source struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url,omitempty" json:"-"`

	// bearer token for URL sources, TokenFile wins when both are set
	Token     string `yaml:"token,omitempty" json:"-"`
	TokenFile string `yaml:"token_file,omitempty" json:"-"`

	Listings []Listing `yaml:"listings,omitempty" json:"-"`
}

// Listing is a single property as delivered by the backend.
type Listing struct {
	Properties  map[string]interface{} `yaml:"properties,omitempty" json:"properties,omitempty"`
	ID          string                 `yaml:"id" json:"id"`
	Name        string                 `yaml:"name" json:"name"`
	BoundaryWKT string                 `yaml:"boundary_wkt,omitempty" json:"boundary_wkt,omitempty"`
	Boundary    geo.Polygon            `yaml:"boundary,omitempty" json:"boundary,omitempty"`
	Location    *geo.GeoPoint          `yaml:"location,omitempty" json:"location,omitempty"`
}

// Overlay controls rendering of lot boundary images.
type Overlay struct {
	Fill    string  `yaml:"fill,omitempty" json:"fill"`
	Stroke  string  `yaml:"stroke,omitempty" json:"stroke"`
	Size    int     `yaml:"size,omitempty" json:"size"`
	Quality float32 `yaml:"quality,omitempty" json:"quality"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Units == "" {
		c.Units = UnitsMetric
	}
	if c.Overlay.Size <= 0 {
		c.Overlay.Size = DefaultOverlaySize
	}
	if c.Overlay.Quality <= 0 {
		c.Overlay.Quality = DefaultOverlayQuality
	}
	if c.Overlay.Fill == "" {
		c.Overlay.Fill = DefaultOverlayFill
	}
	if c.Overlay.Stroke == "" {
		c.Overlay.Stroke = DefaultOverlayStroke
	}
}

// Validate checks the configuration and reports every problem at once.
// Inline listings are normalized in place.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Origin.Validate(); err != nil {
		errs = append(errs, "origin: "+err.Error())
	}
	if c.Radius < 0 {
		errs = append(errs, fmt.Sprintf("radius must not be negative, got %v", c.Radius))
	}
	if c.Units != UnitsMetric && c.Units != UnitsImperial {
		errs = append(errs, fmt.Sprintf("units must be %q or %q, got %q", UnitsMetric, UnitsImperial, c.Units))
	}
	if c.Overlay.Quality > 100 {
		errs = append(errs, fmt.Sprintf("overlay.quality must be 1-100, got %v", c.Overlay.Quality))
	}

	names := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		src := &c.Sources[i]

		if src.Name == "" {
			errs = append(errs, fmt.Sprintf("sources[%d]: name is required", i))
		} else if names[src.Name] {
			errs = append(errs, fmt.Sprintf("sources[%d]: duplicate name %q", i, src.Name))
		}
		names[src.Name] = true

		switch {
		case src.URL == "" && len(src.Listings) == 0:
			errs = append(errs, fmt.Sprintf("source %q: either url or listings is required", src.Name))
		case src.URL != "" && len(src.Listings) > 0:
			errs = append(errs, fmt.Sprintf("source %q: url and listings are mutually exclusive", src.Name))
		}

		ids := make(map[string]bool, len(src.Listings))
		for j := range src.Listings {
			l := &src.Listings[j]
			if ids[l.ID] {
				errs = append(errs, fmt.Sprintf("source %q: duplicate listing id %q", src.Name, l.ID))
			}
			ids[l.ID] = true

			if err := l.Normalize(); err != nil {
				errs = append(errs, fmt.Sprintf("source %q: %v", src.Name, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Normalize decodes BoundaryWKT, derives a missing location from the
// boundary and validates all coordinates.
func (l *Listing) Normalize() error {
	if l.ID == "" {
		return fmt.Errorf("listing %q: id is required", l.Name)
	}

	if l.BoundaryWKT != "" && len(l.Boundary) == 0 {
		poly, err := geo.PolygonFromWKT(l.BoundaryWKT)
		if err != nil {
			return fmt.Errorf("listing %q: %w", l.ID, err)
		}
		l.Boundary = poly
	}
	l.Boundary = l.Boundary.Closed()

	if err := l.Boundary.Validate(); err != nil {
		return fmt.Errorf("listing %q boundary: %w", l.ID, err)
	}

	if l.Location == nil {
		b, ok := l.Boundary.Bounds()
		if !ok {
			return fmt.Errorf("listing %q: location or boundary is required", l.ID)
		}
		center := b.Center()
		l.Location = &center
	}

	if err := l.Location.Validate(); err != nil {
		return fmt.Errorf("listing %q location: %w", l.ID, err)
	}

	return nil
}

// Point returns the listing location; Normalize must have succeeded.
func (l *Listing) Point() geo.GeoPoint {
	if l.Location == nil {
		return geo.GeoPoint{}
	}

	return *l.Location
}
