package xlsxchart

import (
	"fmt"
	"maps"
	"math"

	"github.com/javajack/xlsxchart/internal/archive"
)

// normalizer turns the loosely-typed input into PackageOptions, collecting
// every problem it finds instead of stopping at the first.
type normalizer struct {
	opts   *Options
	eval   ExpressionEvaluator
	titles *titleContext
	issues ValidationErrors
}

func (n *normalizer) addf(path, format string, args ...any) {
	n.issues = append(n.issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (n *normalizer) normalize(raw any) (*PackageOptions, error) {
	root, ok := asRecord(raw)
	if !ok {
		n.addf("options", "should be a record, got %s", typeName(raw))
		return nil, n.issues
	}

	out := &PackageOptions{OutputEncoding: n.encoding(root)}

	if v, key, ok := root.lookup("oneSheetPerChart", "dataPerSheet"); ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			n.addf(key, "should be a boolean, got %s", typeName(v))
		}
		out.OneSheetPerChart = b
	}
	if n.opts.oneSheet != nil {
		out.OneSheetPerChart = *n.opts.oneSheet
	}

	vars := make(map[string]any, len(n.opts.vars))
	maps.Copy(vars, n.opts.vars)
	n.titles = newTitleContext(vars, n.eval, n.opts.notationBegin, n.opts.notationEnd)
	if v, ok := root.Get("vars"); ok && v != nil {
		rec, isRecord := asRecord(v)
		if !isRecord {
			n.addf("vars", "should be a record, got %s", typeName(v))
		}
		for _, f := range rec {
			n.titles.putVar(f.Key, plain(f.Value))
		}
	}

	var specs []any
	if v, ok := root.Get("data"); ok {
		n.opts.logger.Warn("single chart config using options.data is deprecated, use options.chartSpecs[] instead")
		legacy := Record{{Key: "data", Value: v}}
		for _, key := range []string{"title", "chartTitle", "chart", "grouping"} {
			if tv, ok := root.Get(key); ok {
				legacy = legacy.set(key, tv)
			}
		}
		specs = append(specs, legacy)
	}
	if v, key, ok := root.lookup("chartSpecs", "charts"); ok {
		list, isList := asList(v)
		if !isList {
			n.addf(key, "should be a sequence, got %s", typeName(v))
		}
		specs = append(specs, list...)
	} else if len(specs) == 0 {
		n.addf("chartSpecs", "is required")
	}
	if len(specs) == 0 && len(n.issues) == 0 {
		n.addf("chartSpecs", "should not be empty")
	}

	for i, s := range specs {
		if spec := n.chartSpec(fmt.Sprintf("chartSpecs[%d]", i), i, s); spec != nil {
			out.ChartSpecs = append(out.ChartSpecs, spec)
		}
	}

	if len(n.issues) > 0 {
		return nil, n.issues
	}
	return out, nil
}

func (n *normalizer) encoding(root Record) Encoding {
	if n.opts.encoding != "" {
		enc, err := archive.ParseEncoding(string(n.opts.encoding))
		if err != nil {
			n.addf("outputEncoding", "%v", err)
		}
		return enc
	}
	v, key, ok := root.lookup("outputEncoding", "type")
	if !ok || v == nil {
		return EncodingBuffer
	}
	s, isString := v.(string)
	if !isString {
		n.addf(key, "should be a string, got %s", typeName(v))
		return EncodingBuffer
	}
	switch s {
	case "nodebuffer":
		return EncodingBuffer
	case "binarystring":
		return EncodingText
	}
	enc, err := archive.ParseEncoding(s)
	if err != nil {
		n.addf(key, "%v", err)
	}
	return enc
}

func (n *normalizer) chartSpec(path string, index int, raw any) *ChartSpec {
	rec, ok := asRecord(raw)
	if !ok {
		n.addf(path, "should be a record, got %s", typeName(raw))
		return nil
	}
	before := len(n.issues)

	spec := &ChartSpec{Type: DefaultChartType}
	if s, ok := n.optionalString(path, rec, "type", "chart"); ok && s != "" {
		spec.Type = ChartType(s)
	}
	if s, ok := n.optionalString(path, rec, "grouping"); ok {
		g, valid := parseGrouping(s)
		if !valid {
			n.addf(path+".grouping", "unknown grouping %q", s)
		}
		spec.Grouping = g
	}

	seriesOrder, hasSeriesOrder := n.stringList(path, rec, "seriesOrder", "titles")
	categoryOrder, hasCategoryOrder := n.stringList(path, rec, "categoryOrder", "fields")

	dataValue, _ := rec.Get("data")
	data, ok := asRecord(dataValue)
	if !ok {
		n.addf(path+".data", "should be a record of records, got %s", typeName(dataValue))
		return nil
	}

	var seriesSeen, categorySeen []string
	seenCategory := make(map[string]struct{})
	pointsBySeries := make(map[string]Record, len(data))
	for _, f := range data {
		inner, ok := asRecord(f.Value)
		if !ok {
			n.addf(fmt.Sprintf("%s.data[%q]", path, f.Key), "should be a record, got %s", typeName(f.Value))
			continue
		}
		seriesSeen = append(seriesSeen, f.Key)
		pointsBySeries[f.Key] = inner
		for _, pf := range inner {
			if _, dup := seenCategory[pf.Key]; !dup {
				seenCategory[pf.Key] = struct{}{}
				categorySeen = append(categorySeen, pf.Key)
			}
		}
	}
	spec.SeriesNames = pickOrder(seriesOrder, hasSeriesOrder, seriesSeen)
	spec.CategoryNames = pickOrder(categoryOrder, hasCategoryOrder, categorySeen)

	var customColors Record
	if v, ok := rec.Get("customColors"); ok && v != nil {
		if customColors, ok = asRecord(v); !ok {
			n.addf(path+".customColors", "should be a record, got %s", typeName(v))
		}
	}
	pointColors := n.pointColors(path, rec, customColors)
	spec.SeriesColors = n.seriesColors(path, rec, customColors)

	spec.Points = make([][]Point, len(spec.SeriesNames))
	for si, series := range spec.SeriesNames {
		row := make([]Point, len(spec.CategoryNames))
		inner := pointsBySeries[series]
		for ci, category := range spec.CategoryNames {
			var p Point
			if v, ok := inner.Get(category); ok {
				p = n.point(fmt.Sprintf("%s.data[%q][%q]", path, series, category), v)
			}
			if p.Colors.IsZero() {
				p.Colors = pointColors[series][category]
			}
			row[ci] = p
		}
		spec.Points[si] = row
	}

	spec.SeriesOverrides = n.seriesOverrides(path, rec)
	spec.Position = n.position(path, rec)
	spec.ManualLayout = n.manualLayout(path, rec)
	spec.LegendPosition = n.legend(path, rec)
	spec.HoleSize = n.optionalInt(path, rec, "holeSize")
	spec.FirstSliceAngle = n.optionalInt(path, rec, "firstSliceAngle", "firstSliceAng")

	title := fmt.Sprintf("Chart %d", index+1)
	if s, ok := n.optionalString(path, rec, "title", "chartTitle"); ok && s != "" {
		title = s
	}
	n.titles.enterChart(index, len(spec.SeriesNames), len(spec.CategoryNames))
	rendered, err := n.titles.render(title)
	if err != nil {
		n.addf(path+".title", "%v", err)
	}
	spec.Title = rendered

	if len(n.issues) > before {
		return nil
	}
	if err := spec.Validate(); err != nil {
		n.addf(path, "%v", err)
		return nil
	}
	return spec
}

// pickOrder returns the explicit order when one was given, otherwise the
// first-seen order.
func pickOrder(explicit []string, hasExplicit bool, seen []string) []string {
	if hasExplicit {
		return explicit
	}
	return seen
}

func (n *normalizer) point(path string, v any) Point {
	rec, ok := asRecord(v)
	if !ok {
		return Point{Value: n.scalar(path, v)}
	}
	var p Point
	if val, ok := rec.Get("value"); ok {
		p.Value = n.scalar(path+".value", val)
	}
	p.Colors.Fill, _ = n.optionalString(path, rec, "fillColor")
	p.Colors.Line, _ = n.optionalString(path, rec, "lineColor")
	p.Colors.Marker, _ = n.optionalString(path, rec, "markerColor")
	return p
}

func (n *normalizer) scalar(path string, v any) any {
	if v == nil {
		return nil
	}
	if f, ok := toFloat(v); ok {
		if !finite(f) {
			n.addf(path, "should be a finite number, got %v", f)
			return nil
		}
		return f
	}
	if s, ok := v.(string); ok {
		return s
	}
	n.addf(path, "should be a number or string, got %s", typeName(v))
	return nil
}

// colors parses a colour override: a single string applies to fill, line and
// marker; a record sets them individually.
func (n *normalizer) colors(path string, v any) Colors {
	if v == nil {
		return Colors{}
	}
	if s, ok := v.(string); ok {
		return Colors{Fill: s, Line: s, Marker: s}
	}
	rec, ok := asRecord(v)
	if !ok {
		n.addf(path, "should be a colour string or record, got %s", typeName(v))
		return Colors{}
	}
	var c Colors
	c.Fill, _ = n.optionalString(path, rec, "fill")
	c.Line, _ = n.optionalString(path, rec, "line")
	c.Marker, _ = n.optionalString(path, rec, "marker")
	return c
}

func (n *normalizer) pointColors(path string, rec, custom Record) map[string]map[string]Colors {
	v, key, ok := rec.lookup("pointColors")
	if !ok {
		if v, ok = custom.Get("points"); !ok {
			return nil
		}
		key = "customColors.points"
	}
	if v == nil {
		return nil
	}
	outer, ok := asRecord(v)
	if !ok {
		n.addf(path+"."+key, "should be a record of records, got %s", typeName(v))
		return nil
	}
	out := make(map[string]map[string]Colors, len(outer))
	for _, sf := range outer {
		inner, ok := asRecord(sf.Value)
		if !ok {
			n.addf(fmt.Sprintf("%s.%s[%q]", path, key, sf.Key), "should be a record, got %s", typeName(sf.Value))
			continue
		}
		byCategory := make(map[string]Colors, len(inner))
		for _, cf := range inner {
			byCategory[cf.Key] = n.colors(fmt.Sprintf("%s.%s[%q][%q]", path, key, sf.Key, cf.Key), cf.Value)
		}
		out[sf.Key] = byCategory
	}
	return out
}

func (n *normalizer) seriesColors(path string, rec, custom Record) map[string]Colors {
	v, key, ok := rec.lookup("seriesColors")
	if !ok {
		if v, ok = custom.Get("series"); !ok {
			return nil
		}
		key = "customColors.series"
	}
	if v == nil {
		return nil
	}
	outer, ok := asRecord(v)
	if !ok {
		n.addf(path+"."+key, "should be a record, got %s", typeName(v))
		return nil
	}
	out := make(map[string]Colors, len(outer))
	for _, f := range outer {
		out[f.Key] = n.colors(fmt.Sprintf("%s.%s[%q]", path, key, f.Key), f.Value)
	}
	return out
}

func (n *normalizer) seriesOverrides(path string, rec Record) map[string]SeriesOverride {
	v, ok := rec.Get("seriesOverrides")
	if !ok || v == nil {
		return nil
	}
	outer, ok := asRecord(v)
	if !ok {
		n.addf(path+".seriesOverrides", "should be a record, got %s", typeName(v))
		return nil
	}
	out := make(map[string]SeriesOverride, len(outer))
	for _, f := range outer {
		p := fmt.Sprintf("%s.seriesOverrides[%q]", path, f.Key)
		inner, ok := asRecord(f.Value)
		if !ok {
			n.addf(p, "should be a record, got %s", typeName(f.Value))
			continue
		}
		var o SeriesOverride
		if s, ok := n.optionalString(p, inner, "type"); ok {
			o.Type = ChartType(s)
		}
		if s, ok := n.optionalString(p, inner, "grouping"); ok {
			g, valid := parseGrouping(s)
			if !valid {
				n.addf(p+".grouping", "unknown grouping %q", s)
			}
			o.Grouping = g
		}
		out[f.Key] = o
	}
	return out
}

func (n *normalizer) position(path string, rec Record) Position {
	v, ok := rec.Get("position")
	if !ok || v == nil {
		return Position{}
	}
	pos, ok := asRecord(v)
	if !ok {
		n.addf(path+".position", "should be a record, got %s", typeName(v))
		return Position{}
	}
	p := path + ".position"
	return Position{
		FromColumn:       n.optionalInt(p, pos, "fromColumn"),
		FromColumnOffset: n.optionalInt(p, pos, "fromColumnOffset"),
		FromRow:          n.optionalInt(p, pos, "fromRow"),
		FromRowOffset:    n.optionalInt(p, pos, "fromRowOffset"),
		ToColumn:         n.optionalInt(p, pos, "toColumn"),
		ToColumnOffset:   n.optionalInt(p, pos, "toColumnOffset"),
		ToRow:            n.optionalInt(p, pos, "toRow"),
		ToRowOffset:      n.optionalInt(p, pos, "toRowOffset"),
	}
}

func (n *normalizer) manualLayout(path string, rec Record) ManualLayout {
	v, ok := rec.Get("manualLayout")
	if !ok || v == nil {
		return ManualLayout{}
	}
	layout, ok := asRecord(v)
	if !ok {
		n.addf(path+".manualLayout", "should be a record, got %s", typeName(v))
		return ManualLayout{}
	}
	var out ManualLayout
	if pa, ok := layout.Get("plotArea"); ok && pa != nil {
		p := path + ".manualLayout.plotArea"
		if r, ok := asRecord(pa); ok {
			out.PlotArea = &Rect{
				X: n.number(p, r, "x"),
				Y: n.number(p, r, "y"),
				W: n.number(p, r, "w"),
				H: n.number(p, r, "h"),
			}
		} else {
			n.addf(p, "should be a record, got %s", typeName(pa))
		}
	}
	if t, ok := layout.Get("title"); ok && t != nil {
		p := path + ".manualLayout.title"
		if r, ok := asRecord(t); ok {
			out.Title = &Offset{X: n.number(p, r, "x"), Y: n.number(p, r, "y")}
		} else {
			n.addf(p, "should be a record, got %s", typeName(t))
		}
	}
	return out
}

// legend maps the legendPosition key: absent selects the default, an explicit
// null (or false) hides the legend.
func (n *normalizer) legend(path string, rec Record) LegendPosition {
	v, key, ok := rec.lookup("legendPosition", "legendPos")
	if !ok {
		return LegendDefault
	}
	switch x := v.(type) {
	case nil:
		return LegendHidden
	case bool:
		if !x {
			return LegendHidden
		}
		return LegendDefault
	case string:
		pos, valid := parseLegendPosition(x)
		if !valid {
			n.addf(path+"."+key, "unknown legend position %q", x)
		}
		return pos
	}
	n.addf(path+"."+key, "should be a string or null, got %s", typeName(v))
	return LegendDefault
}

func (n *normalizer) optionalString(path string, rec Record, keys ...string) (string, bool) {
	v, key, ok := rec.lookup(keys...)
	if !ok || v == nil {
		return "", false
	}
	s, isString := v.(string)
	if !isString {
		n.addf(path+"."+key, "should be a string, got %s", typeName(v))
		return "", false
	}
	return s, true
}

func (n *normalizer) optionalInt(path string, rec Record, keys ...string) *int {
	v, key, ok := rec.lookup(keys...)
	if !ok || v == nil {
		return nil
	}
	f, isNumber := toFloat(v)
	if !isNumber {
		n.addf(path+"."+key, "should be a number, got %s", typeName(v))
		return nil
	}
	if !finite(f) {
		n.addf(path+"."+key, "should be a finite number, got %v", f)
		return nil
	}
	i := int(f)
	return &i
}

func (n *normalizer) number(path string, rec Record, key string) float64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	f, isNumber := toFloat(v)
	if !isNumber {
		n.addf(path+"."+key, "should be a number, got %s", typeName(v))
	} else if !finite(f) {
		n.addf(path+"."+key, "should be a finite number, got %v", f)
		return 0
	}
	return f
}

func (n *normalizer) stringList(path string, rec Record, keys ...string) ([]string, bool) {
	v, key, ok := rec.lookup(keys...)
	if !ok || v == nil {
		return nil, false
	}
	list, isList := asList(v)
	if !isList {
		n.addf(path+"."+key, "should be a sequence of strings, got %s", typeName(v))
		return nil, false
	}
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for i, item := range list {
		s, isString := item.(string)
		if !isString {
			n.addf(fmt.Sprintf("%s.%s[%d]", path, key, i), "should be a string, got %s", typeName(item))
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// plain converts Records to maps so expressions can index into them.
func plain(v any) any {
	switch x := v.(type) {
	case Record:
		m := make(map[string]any, len(x))
		for _, f := range x {
			m[f.Key] = plain(f.Value)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case Record, map[string]any:
		return "record"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
