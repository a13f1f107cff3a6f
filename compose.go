package xlsxchart

import (
	"github.com/javajack/xlsxchart/internal/xmltree"
)

// chartTags maps a chart type to the plot-area element that hosts its series.
var chartTags = map[ChartType]string{
	ChartBar:      "c:barChart",
	ChartColumn:   "c:barChart",
	ChartLine:     "c:lineChart",
	ChartRadar:    "c:radarChart",
	ChartArea:     "c:areaChart",
	ChartScatter:  "c:scatterChart",
	ChartPie:      "c:pieChart",
	ChartDoughnut: "c:doughnutChart",
}

// axisIDBase is the first axis id handed out within a chart.
const axisIDBase = 10000001

// Schema bounds for c:firstSliceAng and c:holeSize.
const (
	minSliceAngle = 0
	maxSliceAngle = 360
	minHoleSize   = 1
	maxHoleSize   = 90
)

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func defaultGrouping(t ChartType) Grouping {
	switch t {
	case ChartBar, ChartColumn:
		return GroupingClustered
	case ChartLine, ChartArea:
		return GroupingStandard
	}
	return GroupingNone
}

// effectiveGrouping resolves the grouping a bucket of type t is keyed and
// rendered with. Radar, scatter, pie and doughnut never carry a grouping;
// line and area have no clustered grouping.
func effectiveGrouping(t ChartType, g Grouping) Grouping {
	def := defaultGrouping(t)
	switch {
	case def == GroupingNone:
		return GroupingNone
	case g == GroupingDefault, g == GroupingNone:
		return def
	case g == GroupingClustered && def == GroupingStandard:
		return def
	}
	return g
}

// groupingIgnored reports whether an explicit grouping g is replaced when
// rendering type t.
func groupingIgnored(t ChartType, g Grouping) bool {
	return g != GroupingDefault && g != GroupingNone && effectiveGrouping(t, g) != g
}

func markerCapable(t ChartType) bool {
	return t == ChartLine || t == ChartScatter || t == ChartRadar
}

type bucketKey struct {
	Type     ChartType
	Grouping Grouping
}

// bucket is a group of series rendered as one chart-type element.
type bucket struct {
	bucketKey
	Series []int // indices into ChartSpec.SeriesNames
}

// partition groups series by effective (type, grouping) in first-seen order.
func partition(spec *ChartSpec) []*bucket {
	var buckets []*bucket
	byKey := make(map[bucketKey]*bucket)
	for si, name := range spec.SeriesNames {
		typ, grouping := spec.Type, spec.Grouping
		if typ == "" {
			typ = DefaultChartType
		}
		if o, ok := spec.SeriesOverrides[name]; ok {
			if o.Type != "" {
				typ = o.Type
			}
			if o.Grouping != GroupingDefault {
				grouping = o.Grouping
			}
		}
		key := bucketKey{Type: typ, Grouping: effectiveGrouping(typ, grouping)}
		b, ok := byKey[key]
		if !ok {
			b = &bucket{bucketKey: key}
			byKey[key] = b
			buckets = append(buckets, b)
		}
		b.Series = append(b.Series, si)
	}
	return buckets
}

type axisPair struct {
	catID, valID int
	horizontal   bool
}

// composer builds the chart part of one ChartSpec whose data sits at table.
type composer struct {
	spec   *ChartSpec
	table  table
	axes   *axisPair
	nextID int
}

// composeChart builds the chart tree and returns it with the series buckets
// it was built from.
func composeChart(spec *ChartSpec, t table) (*xmltree.Node, []*bucket, error) {
	c := &composer{spec: spec, table: t, nextID: axisIDBase}
	buckets := partition(spec)

	plotArea := xmltree.New("c:plotArea", c.plotLayout())
	for _, b := range buckets {
		el, err := c.bucketElement(b)
		if err != nil {
			return nil, nil, err
		}
		plotArea.Append(el)
	}
	if c.axes != nil {
		plotArea.Append(c.categoryAxis(), c.valueAxis())
	}

	chart := xmltree.New("c:chart",
		c.title(),
		xmltree.Val("c:autoTitleDeleted", spec.Title == ""),
		plotArea,
		c.legend(),
		xmltree.Val("c:plotVisOnly", true),
		xmltree.Val("c:dispBlanksAs", "gap"),
	)
	root := xmltree.New("c:chartSpace",
		xmltree.Val("c:date1904", false),
		xmltree.Val("c:roundedCorners", false),
		chart,
	).Set("xmlns:c", nsChart).Set("xmlns:a", nsDrawingMain).Set("xmlns:r", nsRelationships)
	return root, buckets, nil
}

// sharedAxes returns the chart's category/value axis pair, allocating it on
// first use.
func (c *composer) sharedAxes(t ChartType) *axisPair {
	if c.axes == nil {
		c.axes = &axisPair{catID: c.nextID, valID: c.nextID + 1, horizontal: t == ChartBar}
		c.nextID += 2
	}
	return c.axes
}

func (c *composer) axisIDs(t ChartType) []*xmltree.Node {
	axes := c.sharedAxes(t)
	return []*xmltree.Node{xmltree.Val("c:axId", axes.catID), xmltree.Val("c:axId", axes.valID)}
}

func (c *composer) bucketElement(b *bucket) (*xmltree.Node, error) {
	tag, ok := chartTags[b.Type]
	if !ok {
		return nil, &UnsupportedChartTypeError{Chart: c.spec.Title, Type: b.Type}
	}
	el := xmltree.New(tag)

	var grouping *xmltree.Node
	if b.Grouping != GroupingNone {
		grouping = xmltree.Val("c:grouping", string(b.Grouping))
	}

	series := make([]*xmltree.Node, len(b.Series))
	for i, si := range b.Series {
		series[i] = c.seriesElement(b.Type, si)
	}

	switch b.Type {
	case ChartBar, ChartColumn:
		dir := "col"
		if b.Type == ChartBar {
			dir = "bar"
		}
		el.Append(xmltree.Val("c:barDir", dir), grouping, xmltree.Val("c:varyColors", false))
		el.Append(series...)
		el.Append(xmltree.Val("c:gapWidth", 150))
		if b.Grouping == GroupingStacked || b.Grouping == GroupingPercentStacked {
			el.Append(xmltree.Val("c:overlap", 100))
		}
		el.Append(c.axisIDs(b.Type)...)
	case ChartLine:
		el.Append(grouping, xmltree.Val("c:varyColors", false))
		el.Append(series...)
		el.Append(xmltree.Val("c:marker", true))
		el.Append(c.axisIDs(b.Type)...)
	case ChartArea:
		el.Append(grouping, xmltree.Val("c:varyColors", false))
		el.Append(series...)
		el.Append(c.axisIDs(b.Type)...)
	case ChartScatter:
		el.Append(xmltree.Val("c:scatterStyle", "lineMarker"), xmltree.Val("c:varyColors", false))
		el.Append(series...)
		el.Append(c.axisIDs(b.Type)...)
	case ChartRadar:
		el.Append(xmltree.Val("c:radarStyle", "marker"), xmltree.Val("c:varyColors", false))
		el.Append(series...)
	case ChartPie, ChartDoughnut:
		el.Append(xmltree.Val("c:varyColors", true))
		el.Append(series...)
		if c.spec.FirstSliceAngle != nil {
			el.Append(xmltree.Val("c:firstSliceAng", clampInt(*c.spec.FirstSliceAngle, minSliceAngle, maxSliceAngle)))
		}
		if b.Type == ChartDoughnut && c.spec.HoleSize != nil {
			el.Append(xmltree.Val("c:holeSize", clampInt(*c.spec.HoleSize, minHoleSize, maxHoleSize)))
		}
	}
	return el, nil
}

func (c *composer) seriesElement(t ChartType, si int) *xmltree.Node {
	name := c.spec.SeriesNames[si]
	colors := c.spec.SeriesColors[name]

	ser := xmltree.New("c:ser",
		xmltree.Val("c:idx", si),
		xmltree.Val("c:order", si),
		c.seriesText(si),
		seriesShape(t, colors),
	)
	if markerCapable(t) && colors.Marker != "" {
		ser.Append(xmltree.New("c:marker", xmltree.New("c:spPr", paint(colors.Marker))))
	}
	if t == ChartBar || t == ChartColumn {
		ser.Append(xmltree.Val("c:invertIfNegative", false))
	}
	for ci := range c.spec.CategoryNames {
		ser.Append(dataPoint(t, ci, c.spec.Point(si, ci).Colors))
	}

	categories, values := c.categoryData(), c.valueData(si)
	if t == ChartScatter {
		ser.Append(xmltree.New("c:xVal", categories), xmltree.New("c:yVal", values))
	} else {
		ser.Append(xmltree.New("c:cat", categories), xmltree.New("c:val", values))
	}
	if t == ChartLine || t == ChartScatter {
		ser.Append(xmltree.Val("c:smooth", false))
	}
	return ser
}

func (c *composer) seriesText(si int) *xmltree.Node {
	ref := c.table.nameRef(si)
	return xmltree.New("c:tx", xmltree.New("c:strRef",
		xmltree.Text("c:f", ref.Formula()),
		xmltree.New("c:strCache",
			xmltree.Val("c:ptCount", ref.Len()),
			xmltree.New("c:pt", xmltree.Text("c:v", c.spec.SeriesNames[si])).Set("idx", 0),
		),
	))
}

func (c *composer) categoryData() *xmltree.Node {
	ref := c.table.categoryRef()
	cache := xmltree.New("c:strCache", xmltree.Val("c:ptCount", ref.Len()))
	for ci, name := range c.spec.CategoryNames {
		cache.Append(xmltree.New("c:pt", xmltree.Text("c:v", name)).Set("idx", ci))
	}
	return xmltree.New("c:strRef", xmltree.Text("c:f", ref.Formula()), cache)
}

// valueData references a series' data column. Non-numeric values keep their
// slot in ptCount but get no cached point.
func (c *composer) valueData(si int) *xmltree.Node {
	ref := c.table.valueRef(si)
	cache := xmltree.New("c:numCache",
		xmltree.Text("c:formatCode", "General"),
		xmltree.Val("c:ptCount", ref.Len()),
	)
	for ci := range c.spec.CategoryNames {
		if f, ok := c.spec.Point(si, ci).Value.(float64); ok {
			cache.Append(xmltree.New("c:pt", xmltree.Text("c:v", formatNumber(f))).Set("idx", ci))
		}
	}
	return xmltree.New("c:numRef", xmltree.Text("c:f", ref.Formula()), cache)
}

// paint renders a colour as a fill element; NoFill paints nothing.
func paint(color string) *xmltree.Node {
	if color == NoFill {
		return xmltree.New("a:noFill")
	}
	return xmltree.New("a:solidFill", xmltree.Val("a:srgbClr", color))
}

// seriesShape renders the series-level shape properties. Scatter series always
// get a hidden connecting line.
func seriesShape(t ChartType, colors Colors) *xmltree.Node {
	sp := xmltree.New("c:spPr")
	if colors.Fill != "" {
		sp.Append(paint(colors.Fill))
	}
	switch {
	case t == ChartScatter:
		sp.Append(xmltree.New("a:ln", xmltree.New("a:noFill")).Set("w", 28575))
	case colors.Line != "":
		sp.Append(xmltree.New("a:ln", paint(colors.Line)))
	}
	if len(sp.Children) == 0 {
		return nil
	}
	return sp
}

// dataPoint renders a per-point override, or nil unless fill, line and
// marker are all set.
func dataPoint(t ChartType, ci int, colors Colors) *xmltree.Node {
	if !colors.Complete() {
		return nil
	}
	dpt := xmltree.New("c:dPt", xmltree.Val("c:idx", ci))
	if t == ChartBar || t == ChartColumn {
		dpt.Append(xmltree.Val("c:invertIfNegative", false))
	}
	if markerCapable(t) {
		dpt.Append(xmltree.New("c:marker", xmltree.New("c:spPr", paint(colors.Marker))))
	}
	return dpt.Append(xmltree.New("c:spPr", paint(colors.Fill), xmltree.New("a:ln", paint(colors.Line))))
}

func (c *composer) categoryAxis() *xmltree.Node {
	pos := "b"
	if c.axes.horizontal {
		pos = "l"
	}
	return xmltree.New("c:catAx",
		xmltree.Val("c:axId", c.axes.catID),
		xmltree.New("c:scaling", xmltree.Val("c:orientation", "minMax")),
		xmltree.Val("c:delete", false),
		xmltree.Val("c:axPos", pos),
		xmltree.New("c:numFmt").Set("formatCode", "General").Set("sourceLinked", true),
		xmltree.Val("c:majorTickMark", "out"),
		xmltree.Val("c:minorTickMark", "none"),
		xmltree.Val("c:tickLblPos", "nextTo"),
		xmltree.Val("c:crossAx", c.axes.valID),
		xmltree.Val("c:crosses", "autoZero"),
		xmltree.Val("c:auto", true),
		xmltree.Val("c:lblAlgn", "ctr"),
		xmltree.Val("c:lblOffset", 100),
		xmltree.Val("c:noMultiLvlLbl", false),
	)
}

func (c *composer) valueAxis() *xmltree.Node {
	pos := "l"
	if c.axes.horizontal {
		pos = "b"
	}
	return xmltree.New("c:valAx",
		xmltree.Val("c:axId", c.axes.valID),
		xmltree.New("c:scaling", xmltree.Val("c:orientation", "minMax")),
		xmltree.Val("c:delete", false),
		xmltree.Val("c:axPos", pos),
		xmltree.New("c:majorGridlines"),
		xmltree.New("c:numFmt").Set("formatCode", "General").Set("sourceLinked", true),
		xmltree.Val("c:majorTickMark", "out"),
		xmltree.Val("c:minorTickMark", "none"),
		xmltree.Val("c:tickLblPos", "nextTo"),
		xmltree.Val("c:crossAx", c.axes.catID),
		xmltree.Val("c:crosses", "autoZero"),
		xmltree.Val("c:crossBetween", "between"),
	)
}

func (c *composer) title() *xmltree.Node {
	if c.spec.Title == "" {
		return nil
	}
	layout := xmltree.New("c:layout")
	if t := c.spec.ManualLayout.Title; t != nil {
		layout.Append(xmltree.New("c:manualLayout",
			xmltree.Val("c:xMode", "edge"),
			xmltree.Val("c:yMode", "edge"),
			xmltree.Val("c:x", t.X),
			xmltree.Val("c:y", t.Y),
		))
	}
	return xmltree.New("c:title",
		xmltree.New("c:tx", xmltree.New("c:rich",
			xmltree.New("a:bodyPr"),
			xmltree.New("a:lstStyle"),
			xmltree.New("a:p",
				xmltree.New("a:pPr", xmltree.New("a:defRPr")),
				xmltree.New("a:r", xmltree.New("a:rPr").Set("lang", "en-US"), xmltree.Text("a:t", c.spec.Title)),
			),
		)),
		layout,
		xmltree.Val("c:overlay", false),
	)
}

func (c *composer) plotLayout() *xmltree.Node {
	layout := xmltree.New("c:layout")
	if r := c.spec.ManualLayout.PlotArea; r != nil {
		layout.Append(xmltree.New("c:manualLayout",
			xmltree.Val("c:layoutTarget", "inner"),
			xmltree.Val("c:xMode", "edge"),
			xmltree.Val("c:yMode", "edge"),
			xmltree.Val("c:x", r.X),
			xmltree.Val("c:y", r.Y),
			xmltree.Val("c:w", r.W),
			xmltree.Val("c:h", r.H),
		))
	}
	return layout
}

func (c *composer) legend() *xmltree.Node {
	pos := c.spec.LegendPosition
	switch pos {
	case LegendHidden:
		return nil
	case LegendDefault:
		pos = LegendRight
	}
	return xmltree.New("c:legend",
		xmltree.Val("c:legendPos", string(pos)),
		xmltree.Val("c:overlay", false),
	)
}
