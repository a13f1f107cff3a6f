package xlsxchart

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/xlsxchart/internal/xmltree"
)

func compose(t *testing.T, spec *ChartSpec) (*xmltree.Node, []*bucket) {
	t.Helper()
	require.NoError(t, spec.Validate())
	tree, buckets, err := composeChart(spec, table{
		sheet:         "Table",
		seriesCount:   len(spec.SeriesNames),
		categoryCount: len(spec.CategoryNames),
	})
	require.NoError(t, err)
	return tree, buckets
}

func childNames(n *xmltree.Node) []string {
	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Name
	}
	return names
}

func attr(t *testing.T, n *xmltree.Node, name string) string {
	t.Helper()
	require.NotNil(t, n)
	v, ok := n.Get(name)
	require.True(t, ok, "%s has no attribute %s", n.Name, name)
	return v
}

func TestPartition_GroupsByEffectiveTypeAndGrouping(t *testing.T) {
	spec := matrixSpec("mixed", ChartColumn, []string{"a", "b", "c", "d", "e", "f"}, []string{"x"})
	spec.SeriesOverrides = map[string]SeriesOverride{
		"b": {Type: ChartLine},
		"c": {Grouping: GroupingStacked},
		"d": {Type: ChartLine},
		"e": {Type: ChartRadar, Grouping: GroupingStacked},
		"f": {Grouping: GroupingClustered},
	}

	buckets := partition(spec)
	require.Len(t, buckets, 4)
	assert.Equal(t, bucketKey{ChartColumn, GroupingClustered}, buckets[0].bucketKey)
	assert.Equal(t, []int{0, 5}, buckets[0].Series)
	assert.Equal(t, bucketKey{ChartLine, GroupingStandard}, buckets[1].bucketKey)
	assert.Equal(t, []int{1, 3}, buckets[1].Series)
	assert.Equal(t, bucketKey{ChartColumn, GroupingStacked}, buckets[2].bucketKey)
	assert.Equal(t, []int{2}, buckets[2].Series)
	assert.Equal(t, bucketKey{ChartRadar, GroupingNone}, buckets[3].bucketKey)
	assert.Equal(t, []int{4}, buckets[3].Series)
}

func TestEffectiveGrouping(t *testing.T) {
	tests := []struct {
		typ  ChartType
		in   Grouping
		want Grouping
	}{
		{ChartBar, GroupingDefault, GroupingClustered},
		{ChartColumn, GroupingPercentStacked, GroupingPercentStacked},
		{ChartLine, GroupingDefault, GroupingStandard},
		{ChartArea, GroupingStacked, GroupingStacked},
		{ChartArea, GroupingNone, GroupingStandard},
		{ChartLine, GroupingClustered, GroupingStandard},
		{ChartArea, GroupingClustered, GroupingStandard},
		{ChartColumn, GroupingStandard, GroupingStandard},
		{ChartRadar, GroupingDefault, GroupingNone},
		{ChartScatter, GroupingStacked, GroupingNone},
		{ChartPie, GroupingClustered, GroupingNone},
		{ChartDoughnut, GroupingDefault, GroupingNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, effectiveGrouping(tt.typ, tt.in), "%s/%q", tt.typ, tt.in)
	}
}

func TestCompose_ClusteredLineRendersStandard(t *testing.T) {
	spec := matrixSpec("trend", ChartLine, []string{"a", "b"}, []string{"x", "y"})
	spec.Grouping = GroupingClustered
	spec.SeriesOverrides = map[string]SeriesOverride{"b": {Type: ChartArea, Grouping: GroupingClustered}}
	tree, buckets := compose(t, spec)

	require.Len(t, buckets, 2)
	assert.Equal(t, bucketKey{ChartLine, GroupingStandard}, buckets[0].bucketKey)
	assert.Equal(t, bucketKey{ChartArea, GroupingStandard}, buckets[1].bucketKey)
	for _, tag := range []string{"c:lineChart", "c:areaChart"} {
		el := tree.Find("c:chart/c:plotArea/" + tag)
		require.NotNil(t, el, tag)
		assert.Equal(t, "standard", attr(t, el.Child("c:grouping"), "val"), tag)
	}
}

func TestCompose_BarChartStructure(t *testing.T) {
	spec := matrixSpec("Sales", ChartBar, []string{"S1", "S2", "S3"}, []string{"a", "b", "c", "d"})
	tree, _ := compose(t, spec)

	plot := tree.Find("c:chart/c:plotArea")
	require.NotNil(t, plot)
	assert.Equal(t, []string{"c:layout", "c:barChart", "c:catAx", "c:valAx"}, childNames(plot))

	bar := plot.Child("c:barChart")
	assert.Equal(t, []string{
		"c:barDir", "c:grouping", "c:varyColors",
		"c:ser", "c:ser", "c:ser",
		"c:gapWidth", "c:axId", "c:axId",
	}, childNames(bar))
	assert.Equal(t, "bar", attr(t, bar.Child("c:barDir"), "val"))
	assert.Equal(t, "clustered", attr(t, bar.Child("c:grouping"), "val"))

	ser := bar.ChildrenNamed("c:ser")[1]
	assert.Equal(t, []string{"c:idx", "c:order", "c:tx", "c:invertIfNegative", "c:cat", "c:val"}, childNames(ser))
	assert.Equal(t, "1", attr(t, ser.Child("c:idx"), "val"))
	assert.Equal(t, "'Table'!$C$1", ser.Find("c:tx/c:strRef/c:f").Text)
	assert.Equal(t, "S2", ser.Find("c:tx/c:strRef/c:strCache/c:pt/c:v").Text)
	assert.Equal(t, "'Table'!$A$2:$A$5", ser.Find("c:cat/c:strRef/c:f").Text)
	assert.Equal(t, "'Table'!$C$2:$C$5", ser.Find("c:val/c:numRef/c:f").Text)
	assert.Equal(t, "11", ser.Find("c:val/c:numRef/c:numCache/c:pt/c:v").Text)

	// horizontal bars put the category axis on the left
	assert.Equal(t, "l", attr(t, plot.Find("c:catAx/c:axPos"), "val"))
	assert.Equal(t, "b", attr(t, plot.Find("c:valAx/c:axPos"), "val"))

	assert.Equal(t, "Sales", tree.Find("c:chart/c:title/c:tx/c:rich/a:p/a:r/a:t").Text)
	assert.Equal(t, "r", attr(t, tree.Find("c:chart/c:legend/c:legendPos"), "val"))
}

func TestCompose_CacheMatchesRanges(t *testing.T) {
	for _, typ := range []ChartType{ChartBar, ChartColumn, ChartLine, ChartArea, ChartRadar, ChartScatter, ChartPie, ChartDoughnut} {
		t.Run(string(typ), func(t *testing.T) {
			spec := matrixSpec("c", typ, []string{"A", "B"}, []string{"p", "q", "r", "s", "t"})
			spec.Points[1][3] = Point{}
			tree, _ := compose(t, spec)

			sers := tree.FindAll("c:ser")
			require.Len(t, sers, 2)
			for si, ser := range sers {
				catSlot, valSlot := "c:cat", "c:val"
				if typ == ChartScatter {
					catSlot, valSlot = "c:xVal", "c:yVal"
				}
				catCount := attr(t, ser.Find(catSlot+"/c:strRef/c:strCache/c:ptCount"), "val")
				valCount := attr(t, ser.Find(valSlot+"/c:numRef/c:numCache/c:ptCount"), "val")
				assert.Equal(t, "5", catCount)
				assert.Equal(t, "5", valCount)
				assert.Len(t, ser.Find(catSlot+"/c:strRef/c:strCache").ChildrenNamed("c:pt"), 5)

				valRange := ser.Find(valSlot + "/c:numRef/c:f").Text
				assert.Equal(t, "'Table'!$"+ColumnName(si+2)+"$2:$"+ColumnName(si+2)+"$6", valRange)
			}
			valSlot := "c:val"
			if typ == ChartScatter {
				valSlot = "c:yVal"
			}
			pts := sers[1].Find(valSlot + "/c:numRef/c:numCache").ChildrenNamed("c:pt")
			assert.Len(t, pts, 4, "empty value keeps its slot but has no cached point")
			assert.Equal(t, "4", attr(t, pts[3], "idx"))
		})
	}
}

func TestCompose_SharedAxesAcrossBuckets(t *testing.T) {
	spec := matrixSpec("combo", ChartColumn, []string{"a", "b", "c", "d"}, []string{"x", "y"})
	spec.SeriesOverrides = map[string]SeriesOverride{
		"b": {Type: ChartLine},
		"c": {Type: ChartArea},
		"d": {Grouping: GroupingStacked},
	}
	tree, buckets := compose(t, spec)
	require.Len(t, buckets, 4)

	plot := tree.Find("c:chart/c:plotArea")
	catAxes := plot.ChildrenNamed("c:catAx")
	valAxes := plot.ChildrenNamed("c:valAx")
	require.Len(t, catAxes, 1)
	require.Len(t, valAxes, 1)
	catID := attr(t, catAxes[0].Child("c:axId"), "val")
	valID := attr(t, valAxes[0].Child("c:axId"), "val")
	assert.Equal(t, strconv.Itoa(axisIDBase), catID)
	assert.Equal(t, strconv.Itoa(axisIDBase+1), valID)
	assert.Equal(t, valID, attr(t, catAxes[0].Child("c:crossAx"), "val"))
	assert.Equal(t, catID, attr(t, valAxes[0].Child("c:crossAx"), "val"))

	for _, name := range []string{"c:barChart", "c:lineChart", "c:areaChart"} {
		for _, el := range plot.ChildrenNamed(name) {
			ids := el.ChildrenNamed("c:axId")
			require.Len(t, ids, 2, name)
			assert.Equal(t, catID, attr(t, ids[0], "val"))
			assert.Equal(t, valID, attr(t, ids[1], "val"))
		}
	}
	assert.Len(t, plot.ChildrenNamed("c:barChart"), 2)
	assert.Equal(t, "b", attr(t, catAxes[0].Child("c:axPos"), "val"))
}

func TestCompose_NoAxesForPieAndRadar(t *testing.T) {
	for _, typ := range []ChartType{ChartPie, ChartDoughnut, ChartRadar} {
		spec := matrixSpec("round", typ, []string{"a"}, []string{"x", "y"})
		tree, _ := compose(t, spec)
		assert.Empty(t, tree.FindAll("c:catAx"), typ)
		assert.Empty(t, tree.FindAll("c:valAx"), typ)
		assert.Empty(t, tree.FindAll("c:axId"), typ)
		assert.Empty(t, tree.FindAll("c:grouping"), typ)
	}
}

func TestCompose_Scatter(t *testing.T) {
	spec := matrixSpec("xy", ChartScatter, []string{"a", "b"}, []string{"1", "2", "3", "4", "5"})
	spec.Grouping = GroupingStacked
	tree, _ := compose(t, spec)

	scatter := tree.Find("c:chart/c:plotArea/c:scatterChart")
	require.NotNil(t, scatter)
	assert.Equal(t, "lineMarker", attr(t, scatter.Child("c:scatterStyle"), "val"))
	assert.Nil(t, scatter.Child("c:grouping"))
	assert.Empty(t, tree.FindAll("c:cat"))
	assert.Empty(t, tree.FindAll("c:val"))
	assert.Len(t, tree.FindAll("c:xVal"), 2)
	assert.Len(t, tree.FindAll("c:yVal"), 2)

	for _, ser := range scatter.ChildrenNamed("c:ser") {
		ln := ser.Find("c:spPr/a:ln")
		require.NotNil(t, ln)
		assert.Equal(t, "28575", attr(t, ln, "w"))
		assert.NotNil(t, ln.Child("a:noFill"))
		assert.Equal(t, []string{"c:idx", "c:order", "c:tx", "c:spPr", "c:xVal", "c:yVal", "c:smooth"}, childNames(ser))
	}
	assert.Len(t, tree.FindAll("c:catAx"), 1)
	assert.Len(t, tree.FindAll("c:valAx"), 1)
}

func TestCompose_NoFillPoint(t *testing.T) {
	spec := matrixSpec("nf", ChartColumn, []string{"a"}, []string{"x", "y", "z"})
	spec.Points[0][1].Colors = Colors{Fill: NoFill, Line: NoFill, Marker: NoFill}
	spec.Points[0][2].Colors = Colors{Fill: "FF0000", Line: "00FF00"}
	tree, _ := compose(t, spec)

	dpts := tree.FindAll("c:dPt")
	require.Len(t, dpts, 1, "incomplete point colours are skipped")
	assert.Equal(t, "1", attr(t, dpts[0].Child("c:idx"), "val"))
	sp := dpts[0].Child("c:spPr")
	assert.NotNil(t, sp.Child("a:noFill"))
	assert.NotNil(t, sp.Find("a:ln/a:noFill"))
	assert.Nil(t, sp.Child("a:solidFill"))
	for _, clr := range tree.FindAll("a:srgbClr") {
		v, _ := clr.Get("val")
		assert.NotEqual(t, NoFill, v)
	}
}

func TestCompose_SeriesAndPointColors(t *testing.T) {
	spec := matrixSpec("colors", ChartLine, []string{"a", "b"}, []string{"x", "y"})
	spec.SeriesColors = map[string]Colors{"a": {Fill: "111111", Line: "222222", Marker: "333333"}}
	spec.Points[1][0].Colors = Colors{Fill: "AA0000", Line: "00AA00", Marker: "0000AA"}
	tree, _ := compose(t, spec)

	sers := tree.FindAll("c:ser")
	require.Len(t, sers, 2)
	a := sers[0]
	assert.Equal(t, []string{"c:idx", "c:order", "c:tx", "c:spPr", "c:marker", "c:cat", "c:val", "c:smooth"}, childNames(a))
	assert.Equal(t, "111111", attr(t, a.Find("c:spPr/a:solidFill/a:srgbClr"), "val"))
	assert.Equal(t, "222222", attr(t, a.Find("c:spPr/a:ln/a:solidFill/a:srgbClr"), "val"))
	assert.Equal(t, "333333", attr(t, a.Find("c:marker/c:spPr/a:solidFill/a:srgbClr"), "val"))

	dpt := sers[1].Child("c:dPt")
	require.NotNil(t, dpt)
	assert.Equal(t, []string{"c:idx", "c:marker", "c:spPr"}, childNames(dpt))
	assert.Equal(t, "0000AA", attr(t, dpt.Find("c:marker/c:spPr/a:solidFill/a:srgbClr"), "val"))
	assert.Equal(t, "AA0000", attr(t, dpt.Find("c:spPr/a:solidFill/a:srgbClr"), "val"))
	assert.Equal(t, "00AA00", attr(t, dpt.Find("c:spPr/a:ln/a:solidFill/a:srgbClr"), "val"))
}

func TestCompose_NoMarkersOnBars(t *testing.T) {
	spec := matrixSpec("bars", ChartColumn, []string{"a"}, []string{"x"})
	spec.SeriesColors = map[string]Colors{"a": {Fill: "111111", Line: "222222", Marker: "333333"}}
	spec.Points[0][0].Colors = Colors{Fill: "1", Line: "2", Marker: "3"}
	tree, _ := compose(t, spec)
	assert.Empty(t, tree.FindAll("c:marker"))
	assert.Equal(t, []string{"c:idx", "c:invertIfNegative", "c:spPr"}, childNames(tree.FindAll("c:dPt")[0]))
}

func TestCompose_StackedOverlap(t *testing.T) {
	spec := matrixSpec("stack", ChartColumn, []string{"a", "b"}, []string{"x"})
	spec.Grouping = GroupingStacked
	tree, _ := compose(t, spec)
	bar := tree.Find("c:chart/c:plotArea/c:barChart")
	assert.Equal(t, "stacked", attr(t, bar.Child("c:grouping"), "val"))
	assert.Equal(t, "100", attr(t, bar.Child("c:overlap"), "val"))
	names := childNames(bar)
	assert.Equal(t, []string{"c:gapWidth", "c:overlap", "c:axId", "c:axId"}, names[len(names)-4:])

	spec.Grouping = GroupingClustered
	tree, _ = compose(t, spec)
	assert.Nil(t, tree.Find("c:chart/c:plotArea/c:barChart/c:overlap"))

	spec.Type = ChartLine
	spec.Grouping = GroupingStacked
	tree, _ = compose(t, spec)
	assert.Empty(t, tree.FindAll("c:overlap"))
}

func TestCompose_PieOptions(t *testing.T) {
	hole, angle := 55, 90
	spec := matrixSpec("pie", ChartDoughnut, []string{"a"}, []string{"x", "y"})
	spec.HoleSize, spec.FirstSliceAngle = &hole, &angle
	tree, _ := compose(t, spec)
	doughnut := tree.Find("c:chart/c:plotArea/c:doughnutChart")
	assert.Equal(t, []string{"c:varyColors", "c:ser", "c:firstSliceAng", "c:holeSize"}, childNames(doughnut))
	assert.Equal(t, "1", attr(t, doughnut.Child("c:varyColors"), "val"))
	assert.Equal(t, "55", attr(t, doughnut.Child("c:holeSize"), "val"))

	spec.Type = ChartPie
	tree, _ = compose(t, spec)
	pie := tree.Find("c:chart/c:plotArea/c:pieChart")
	assert.Equal(t, []string{"c:varyColors", "c:ser", "c:firstSliceAng"}, childNames(pie))
	assert.Equal(t, "90", attr(t, pie.Child("c:firstSliceAng"), "val"))
}

func TestCompose_PieOptionsClamped(t *testing.T) {
	hole, angle := 95, -30
	spec := matrixSpec("pie", ChartDoughnut, []string{"a"}, []string{"x"})
	spec.HoleSize, spec.FirstSliceAngle = &hole, &angle
	tree, _ := compose(t, spec)
	doughnut := tree.Find("c:chart/c:plotArea/c:doughnutChart")
	assert.Equal(t, "90", attr(t, doughnut.Child("c:holeSize"), "val"))
	assert.Equal(t, "0", attr(t, doughnut.Child("c:firstSliceAng"), "val"))

	hole, angle = 0, 400
	tree, _ = compose(t, spec)
	doughnut = tree.Find("c:chart/c:plotArea/c:doughnutChart")
	assert.Equal(t, "1", attr(t, doughnut.Child("c:holeSize"), "val"))
	assert.Equal(t, "360", attr(t, doughnut.Child("c:firstSliceAng"), "val"))
}

func TestCompose_LegendAndLayout(t *testing.T) {
	spec := matrixSpec("deco", ChartArea, []string{"a"}, []string{"x"})
	spec.LegendPosition = LegendHidden
	spec.ManualLayout = ManualLayout{
		PlotArea: &Rect{X: 0.1, Y: 0.15, W: 0.8, H: 0.7},
		Title:    &Offset{X: 0.25, Y: 0.05},
	}
	tree, _ := compose(t, spec)
	assert.Nil(t, tree.Find("c:chart/c:legend"))

	ml := tree.Find("c:chart/c:plotArea/c:layout/c:manualLayout")
	require.NotNil(t, ml)
	assert.Equal(t, "0.8", attr(t, ml.Child("c:w"), "val"))
	assert.Equal(t, "edge", attr(t, ml.Child("c:xMode"), "val"))
	assert.Equal(t, "0.25", attr(t, tree.Find("c:chart/c:title/c:layout/c:manualLayout/c:x"), "val"))

	spec.LegendPosition = LegendBottom
	tree, _ = compose(t, spec)
	assert.Equal(t, "b", attr(t, tree.Find("c:chart/c:legend/c:legendPos"), "val"))

	spec.Title = ""
	tree, _ = compose(t, spec)
	assert.Nil(t, tree.Find("c:chart/c:title"))
	assert.Equal(t, "1", attr(t, tree.Find("c:chart/c:autoTitleDeleted"), "val"))
}

func TestCompose_UnsupportedChartType(t *testing.T) {
	spec := matrixSpec("odd", ChartColumn, []string{"a", "b"}, []string{"x"})
	spec.SeriesOverrides = map[string]SeriesOverride{"b": {Type: "bubble"}}
	_, _, err := composeChart(spec, table{sheet: "Table", seriesCount: 2, categoryCount: 1})
	var unsupported *UnsupportedChartTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ChartType("bubble"), unsupported.Type)
	assert.Equal(t, "odd", unsupported.Chart)
}

func TestCompose_Renders(t *testing.T) {
	spec := matrixSpec("R&D <2024>", ChartColumn, []string{"a"}, []string{"x"})
	tree, _ := compose(t, spec)
	out, err := xmltree.Render(tree)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<c:chartSpace xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart"`)
	assert.Contains(t, string(out), "<a:t>R&amp;D &lt;2024&gt;</a:t>")
}
