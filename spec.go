package xlsxchart

import (
	"fmt"

	"github.com/javajack/xlsxchart/internal/archive"
)

// ChartType names one of the supported chart families.
type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartColumn   ChartType = "column"
	ChartLine     ChartType = "line"
	ChartRadar    ChartType = "radar"
	ChartArea     ChartType = "area"
	ChartScatter  ChartType = "scatter"
	ChartPie      ChartType = "pie"
	ChartDoughnut ChartType = "doughnut"
)

// DefaultChartType is used when a chart spec does not name a type.
const DefaultChartType = ChartColumn

// Cartesian reports whether the type plots against a category/value axis pair.
func (t ChartType) Cartesian() bool {
	switch t {
	case ChartBar, ChartColumn, ChartLine, ChartArea, ChartScatter:
		return true
	}
	return false
}

// Grouping is the stacking mode of a bucket of series.
type Grouping string

const (
	GroupingDefault        Grouping = "" // resolved per chart type
	GroupingClustered      Grouping = "clustered"
	GroupingStacked        Grouping = "stacked"
	GroupingPercentStacked Grouping = "percentStacked"
	GroupingStandard       Grouping = "standard"
	GroupingNone           Grouping = "none" // no grouping element is emitted
)

func parseGrouping(s string) (Grouping, bool) {
	switch g := Grouping(s); g {
	case GroupingDefault, GroupingClustered, GroupingStacked, GroupingPercentStacked, GroupingStandard, GroupingNone:
		return g, true
	}
	return "", false
}

// LegendPosition places the chart legend. The zero value selects LegendRight.
type LegendPosition string

const (
	LegendDefault  LegendPosition = ""
	LegendRight    LegendPosition = "r"
	LegendLeft     LegendPosition = "l"
	LegendTop      LegendPosition = "t"
	LegendBottom   LegendPosition = "b"
	LegendTopRight LegendPosition = "tr"
	LegendHidden   LegendPosition = "none" // legend element omitted
)

func parseLegendPosition(s string) (LegendPosition, bool) {
	switch s {
	case "r", "right":
		return LegendRight, true
	case "l", "left":
		return LegendLeft, true
	case "t", "top":
		return LegendTop, true
	case "b", "bottom":
		return LegendBottom, true
	case "tr", "topRight":
		return LegendTopRight, true
	case "none":
		return LegendHidden, true
	}
	return "", false
}

// NoFill is the colour sentinel meaning "paint nothing". It is distinct from
// an empty colour, which means "no override".
const NoFill = "noFill"

// Colors is a fill/outline/marker override. Values are RGB hex strings
// ("FF0000") or NoFill.
type Colors struct {
	Fill   string
	Line   string
	Marker string
}

// IsZero reports whether no component is set.
func (c Colors) IsZero() bool {
	return c.Fill == "" && c.Line == "" && c.Marker == ""
}

// Complete reports whether every component is set.
func (c Colors) Complete() bool {
	return c.Fill != "" && c.Line != "" && c.Marker != ""
}

// Point is one series value for one category. Value is a float64, a string,
// or nil when the input had no value for the pair.
type Point struct {
	Value  any
	Colors Colors
}

// SeriesOverride replaces the chart-level type or grouping for one series.
type SeriesOverride struct {
	Type     ChartType
	Grouping Grouping
}

// Position overrides the drawing anchor of a chart. Nil fields keep their
// defaults.
type Position struct {
	FromColumn       *int
	FromColumnOffset *int
	FromRow          *int
	FromRowOffset    *int
	ToColumn         *int
	ToColumnOffset   *int
	ToRow            *int
	ToRowOffset      *int
}

// Rect is a manual layout rectangle in fractions of the chart area.
type Rect struct {
	X, Y, W, H float64
}

// Offset is a manual layout origin in fractions of the chart area.
type Offset struct {
	X, Y float64
}

// ManualLayout pins the plot area and the title.
type ManualLayout struct {
	PlotArea *Rect
	Title    *Offset
}

// ChartSpec is the canonical description of one chart. Points is dense:
// Points[s][c] holds series SeriesNames[s] at category CategoryNames[c].
type ChartSpec struct {
	Title           string
	Type            ChartType
	SeriesNames     []string
	CategoryNames   []string
	Points          [][]Point
	SeriesColors    map[string]Colors
	SeriesOverrides map[string]SeriesOverride
	Grouping        Grouping
	Position        Position
	ManualLayout    ManualLayout
	LegendPosition  LegendPosition
	HoleSize        *int
	FirstSliceAngle *int
}

// Point returns the point for a series/category index pair. Out-of-range
// indices yield an empty point.
func (s *ChartSpec) Point(series, category int) Point {
	if series < 0 || series >= len(s.Points) {
		return Point{}
	}
	row := s.Points[series]
	if category < 0 || category >= len(row) {
		return Point{}
	}
	return row[category]
}

// Validate checks the renderability invariants: unique, non-empty series and
// category names and a points matrix of finite values that matches them.
func (s *ChartSpec) Validate() error {
	if len(s.SeriesNames) == 0 {
		return fmt.Errorf("chart %q has no series", s.Title)
	}
	if len(s.CategoryNames) == 0 {
		return fmt.Errorf("chart %q has no categories", s.Title)
	}
	if dup, ok := firstDuplicate(s.SeriesNames); ok {
		return fmt.Errorf("chart %q: duplicate series name %q", s.Title, dup)
	}
	if dup, ok := firstDuplicate(s.CategoryNames); ok {
		return fmt.Errorf("chart %q: duplicate category name %q", s.Title, dup)
	}
	if len(s.Points) != len(s.SeriesNames) {
		return fmt.Errorf("chart %q: %d point rows for %d series", s.Title, len(s.Points), len(s.SeriesNames))
	}
	for i, row := range s.Points {
		if len(row) != len(s.CategoryNames) {
			return fmt.Errorf("chart %q: series %q has %d points for %d categories",
				s.Title, s.SeriesNames[i], len(row), len(s.CategoryNames))
		}
		for ci, p := range row {
			if f, ok := p.Value.(float64); ok && !finite(f) {
				return fmt.Errorf("chart %q: series %q has non-finite value %v at category %q",
					s.Title, s.SeriesNames[i], f, s.CategoryNames[ci])
			}
		}
	}
	return nil
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n, true
		}
		seen[n] = struct{}{}
	}
	return "", false
}

// Encoding selects the byte form Generate returns.
type Encoding = archive.Encoding

const (
	EncodingBuffer = archive.EncodingBuffer
	EncodingBase64 = archive.EncodingBase64
	EncodingText   = archive.EncodingText
)

// PackageOptions is the canonical input of one package-generation call.
type PackageOptions struct {
	OutputEncoding   Encoding
	ChartSpecs       []*ChartSpec
	OneSheetPerChart bool
}
