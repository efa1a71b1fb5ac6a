package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woozymasta/lotmap/internal/geo"
	"github.com/woozymasta/lotmap/internal/processor"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Units  string `short:"u" long:"units"  description:"Label units" choice:"metric" choice:"imperial" default:"metric"`

	Distance DistanceCommand `command:"distance" description:"Great-circle distance between two points"`
	Area     AreaCommand     `command:"area"     description:"Area and perimeter of a polygon"`
}

type DistanceCommand struct {
	Args struct {
		From string `positional-arg-name:"FROM" description:"lat,lon, e.g. -33.8688,151.2093"`
		To   string `positional-arg-name:"TO"   description:"lat,lon, e.g. -36.8485,174.7633"`
	} `positional-args:"yes" required:"yes"`
}

type AreaCommand struct {
	WKT  string `short:"w" long:"wkt" description:"Polygon as WKT instead of vertices"`
	Args struct {
		Vertices []string `positional-arg-name:"LAT,LON" description:"polygon vertices in order, negative latitudes need no quoting"`
	} `positional-args:"yes"`
}

type distanceResult struct {
	Label  string       `json:"label" yaml:"label"`
	From   geo.GeoPoint `json:"from" yaml:"from"`
	To     geo.GeoPoint `json:"to" yaml:"to"`
	Meters float64      `json:"meters" yaml:"meters"`
}

type areaResult struct {
	AreaLabel       string  `json:"area_label" yaml:"area_label"`
	PerimeterLabel  string  `json:"perimeter_label" yaml:"perimeter_label"`
	SquareMeters    float64 `json:"square_meters" yaml:"square_meters"`
	PerimeterMeters float64 `json:"perimeter_meters" yaml:"perimeter_meters"`
	Vertices        int     `json:"vertices" yaml:"vertices"`
}

var (
	opts   Options
	stdout io.Writer = os.Stdout
)

// Execute implements flags.Commander.
func (c *DistanceCommand) Execute([]string) error {
	from, err := geo.ParsePoint(c.Args.From)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	to, err := geo.ParsePoint(c.Args.To)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}

	meters := geo.Distance(from, to)
	return output(distanceResult{
		From:   from,
		To:     to,
		Meters: meters,
		Label:  processor.FormatDistance(meters, opts.Units),
	})
}

// Execute implements flags.Commander.
func (c *AreaCommand) Execute([]string) error {
	var poly geo.Polygon

	switch {
	case c.WKT != "" && len(c.Args.Vertices) > 0:
		return errors.New("--wkt and vertices are mutually exclusive")
	case c.WKT != "":
		var err error
		if poly, err = geo.PolygonFromWKT(c.WKT); err != nil {
			return err
		}
	default:
		for i, v := range c.Args.Vertices {
			p, err := geo.ParsePoint(v)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}
			poly = append(poly, p)
		}
	}

	if err := poly.Validate(); err != nil {
		return err
	}

	area := geo.Area(poly)
	perimeter := geo.Perimeter(poly)
	return output(areaResult{
		SquareMeters:    area,
		PerimeterMeters: perimeter,
		Vertices:        len(poly),
		AreaLabel:       processor.FormatArea(area, opts.Units),
		PerimeterLabel:  processor.FormatDistance(perimeter, opts.Units),
	})
}

func output(v interface{}) error {
	var (
		data []byte
		err  error
	)

	if opts.Format == "yaml" {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	_, err = stdout.Write(data)
	return err
}

// coordinateArgs moves LAT,LON arguments behind "--" so go-flags does not
// read a negative latitude like -33.86,151.2 as a cluster of short flags.
// Options never take numeric values, so anything starting with a digit,
// '.' or '-' followed by one of those is a vertex. Order is preserved.
func coordinateArgs(args []string) []string {
	var rest, coords []string
	for _, a := range args {
		if a == "--" {
			return args
		}
		if isCoordinate(a) {
			coords = append(coords, a)
		} else {
			rest = append(rest, a)
		}
	}
	if len(coords) == 0 {
		return args
	}

	return append(append(rest, "--"), coords...)
}

func isCoordinate(a string) bool {
	a = strings.TrimPrefix(a, "-")
	if a == "" {
		return false
	}
	return a[0] == '.' || (a[0] >= '0' && a[0] <= '9')
}

func run(args []string) error {
	opts = Options{}
	parser := flags.NewParser(&opts, flags.Default)
	_, err := parser.ParseArgs(coordinateArgs(args))
	return err
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
