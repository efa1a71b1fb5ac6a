package processor

import (
	"math"

	"github.com/woozymasta/lotmap/internal/config"
	"github.com/woozymasta/lotmap/internal/geo"

	"github.com/dustin/go-humanize"
)

const (
	metersPerFoot          = 0.3048
	metersPerMile          = 1609.344
	squareMetersPerSqFt    = 0.09290304
	squareMetersPerAcre    = 4046.8564224
	squareMetersPerHectare = 10000
	hectareLabelThreshold  = 10 * squareMetersPerHectare
	squareFeetPerAcre      = squareMetersPerAcre / squareMetersPerSqFt
	feetLabelThreshold     = 0.1 * metersPerMile
)

// Annotation holds the figures shown on a listing card.
type Annotation struct {
	DistanceLabel  string  `json:"distance_label"`
	AreaLabel      string  `json:"area_label,omitempty"`
	PerimeterLabel string  `json:"perimeter_label,omitempty"`
	DistanceM      float64 `json:"distance_m"`
	AreaM2         float64 `json:"area_m2,omitempty"`
	PerimeterM     float64 `json:"perimeter_m,omitempty"`
}

// Result is an annotated listing.
type Result struct {
	Source     string
	Listing    config.Listing
	Annotation Annotation
}

// Annotate computes the distance from origin to the listing and, when the
// listing has a boundary, its area and perimeter.
func Annotate(origin geo.GeoPoint, l config.Listing, units string) Annotation {
	a := Annotation{DistanceM: geo.Distance(origin, l.Point())}
	a.DistanceLabel = FormatDistance(a.DistanceM, units)

	if len(l.Boundary) >= 3 {
		a.AreaM2 = geo.Area(l.Boundary)
		a.PerimeterM = geo.Perimeter(l.Boundary)
		a.AreaLabel = FormatArea(a.AreaM2, units)
		a.PerimeterLabel = FormatDistance(a.PerimeterM, units)
	}

	return a
}

// FormatDistance renders meters as "850 m" / "12.4 km" or "420 ft" / "3.1 mi".
func FormatDistance(m float64, units string) string {
	if units == config.UnitsImperial {
		if m < feetLabelThreshold {
			return humanize.Comma(int64(math.Round(m/metersPerFoot))) + " ft"
		}
		return commaf(m/metersPerMile, 1) + " mi"
	}

	if m < 1000 {
		return humanize.Comma(int64(math.Round(m))) + " m"
	}
	return commaf(m/1000, 1) + " km"
}

// FormatArea renders square meters as "12,364 m²" / "34.5 ha" or "9,800 sq ft" / "2.5 ac".
// Lots stay in square meters up to 10 ha.
func FormatArea(m2 float64, units string) string {
	if units == config.UnitsImperial {
		sqft := m2 / squareMetersPerSqFt
		if sqft < squareFeetPerAcre {
			return humanize.Comma(int64(math.Round(sqft))) + " sq ft"
		}
		return commaf(m2/squareMetersPerAcre, 2) + " ac"
	}

	if m2 < hectareLabelThreshold {
		return humanize.Comma(int64(math.Round(m2))) + " m²"
	}
	return commaf(m2/squareMetersPerHectare, 2) + " ha"
}

// commaf rounds before formatting, CommafWithDigits alone truncates.
func commaf(v float64, decimals int) string {
	p := math.Pow10(decimals)
	return humanize.CommafWithDigits(math.Round(v*p)/p, decimals)
}
