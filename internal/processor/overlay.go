package processor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/geo"

	"github.com/chai2010/webp"
	"golang.org/x/image/vector"
)

// ErrDegenerate is returned for boundaries that enclose no drawable shape.
var ErrDegenerate = errors.New("degenerate polygon")

// OverlayOptions controls overlay rendering.
type OverlayOptions struct {
	Fill        color.NRGBA
	Stroke      color.NRGBA
	Size        int
	StrokeWidth float32
	Quality     float32
}

// OverlayOptionsFromConfig parses colors and fills rendering defaults.
func OverlayOptionsFromConfig(o config.Overlay) (OverlayOptions, error) {
	fill, err := ParseHexColor(o.Fill)
	if err != nil {
		return OverlayOptions{}, fmt.Errorf("overlay fill: %w", err)
	}
	stroke, err := ParseHexColor(o.Stroke)
	if err != nil {
		return OverlayOptions{}, fmt.Errorf("overlay stroke: %w", err)
	}

	size := o.Size
	if size <= 0 {
		size = config.DefaultOverlaySize
	}
	quality := o.Quality
	if quality <= 0 {
		quality = config.DefaultOverlayQuality
	}

	return OverlayOptions{
		Fill:        fill,
		Stroke:      stroke,
		Size:        size,
		StrokeWidth: float32(max(1, size/128)),
		Quality:     quality,
	}, nil
}

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Render rasterizes the lot boundary into a square transparent image.
// The shape is fitted to the image with a small margin; longitudes are
// scaled by the cosine of the middle latitude so lots keep their proportions.
func Render(poly geo.Polygon, opts OverlayOptions) (*image.RGBA, error) {
	poly = poly.Closed()
	if len(poly) < 3 {
		return nil, fmt.Errorf("%w: %d vertices", ErrDegenerate, len(poly))
	}
	if opts.Size <= 0 {
		return nil, fmt.Errorf("invalid overlay size %d", opts.Size)
	}

	b, _ := poly.Bounds()
	kx := math.Cos(b.Center().Lat * math.Pi / 180)
	width := (b.MaxLon - b.MinLon) * kx
	height := b.MaxLat - b.MinLat

	extent := math.Max(width, height)
	if extent <= 0 || math.IsNaN(extent) {
		return nil, fmt.Errorf("%w: zero extent", ErrDegenerate)
	}

	size := float64(opts.Size)
	margin := math.Max(1, size*0.05)
	scale := (size - 2*margin) / extent
	offX := (size - width*scale) / 2
	offY := (size - height*scale) / 2

	project := func(p geo.GeoPoint) (float32, float32) {
		x := offX + (p.Lon-b.MinLon)*kx*scale
		y := offY + (b.MaxLat-p.Lat)*scale
		return float32(x), float32(y)
	}

	dst := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	z := vector.NewRasterizer(opts.Size, opts.Size)
	z.DrawOp = draw.Over

	z.MoveTo(project(poly[0]))
	for _, p := range poly[1:] {
		z.LineTo(project(p))
	}
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.NewUniform(opts.Fill), image.Point{})

	if opts.StrokeWidth > 0 {
		z.Reset(opts.Size, opts.Size)
		z.DrawOp = draw.Over

		n := len(poly)
		for i := range n {
			x1, y1 := project(poly[i])
			x2, y2 := project(poly[(i+1)%n])
			strokeSegment(z, x1, y1, x2, y2, opts.StrokeWidth)
		}
		z.Draw(dst, dst.Bounds(), image.NewUniform(opts.Stroke), image.Point{})
	}

	return dst, nil
}

// strokeSegment adds the segment as a quad of the given width. All quads
// share the same orientation so overlapping joints do not cancel out.
func strokeSegment(z *vector.Rasterizer, x1, y1, x2, y2, width float32) {
	dx, dy := x2-x1, y2-y1
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}

	nx := -dy / length * width / 2
	ny := dx / length * width / 2

	z.MoveTo(x1+nx, y1+ny)
	z.LineTo(x2+nx, y2+ny)
	z.LineTo(x2-nx, y2-ny)
	z.LineTo(x1-nx, y1-ny)
	z.ClosePath()
}

// WriteWebP encodes the image as lossy WebP, quality is 0..100.
func WriteWebP(w io.Writer, img image.Image, quality float32) error {
	if quality < 0 || quality > 100 {
		return fmt.Errorf("webp quality %v out of range 0..100", quality)
	}
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality})
}
