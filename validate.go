package xlsxchart

import (
	"errors"
	"fmt"
	"slices"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // generation will fail
	SeverityWarning                 // generation succeeds but ignores or drops something
)

// ValidationIssue is one problem found in the input options.
type ValidationIssue struct {
	Severity Severity
	Path     string // e.g. chartSpecs[0].data["Sales"]
	Message  string
}

// String formats the issue as "[ERROR] path: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	if v.Path == "" {
		return fmt.Sprintf("[%s] %s", sev, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.Path, v.Message)
}

// Validate checks raw input without building a package. It returns the
// normalization errors, errors that would abort composition, and warnings
// about settings generation would ignore.
func Validate(raw any, opts ...Option) []ValidationIssue {
	return NewGenerator(opts...).Validate(raw)
}

// Validate checks raw input without building a package.
func (g *Generator) Validate(raw any) []ValidationIssue {
	opts, err := g.resolve(raw)
	if err != nil {
		var issues ValidationErrors
		if errors.As(err, &issues) {
			return issues
		}
		return []ValidationIssue{{Message: err.Error()}}
	}

	var issues []ValidationIssue
	for i, spec := range opts.ChartSpecs {
		path := fmt.Sprintf("chartSpecs[%d]", i)
		issues = append(issues, validateChartTypes(path, spec)...)
		issues = append(issues, validateReferences(path, spec)...)
		issues = append(issues, validatePointColors(path, spec)...)
		issues = append(issues, validateDisplay(path, spec)...)
	}
	return issues
}

// validateChartTypes reports buckets whose type has no chart element, and
// groupings that the bucket type does not render.
func validateChartTypes(path string, spec *ChartSpec) []ValidationIssue {
	var issues []ValidationIssue
	for _, b := range partition(spec) {
		if _, ok := chartTags[b.Type]; !ok {
			issues = append(issues, ValidationIssue{
				Path:    path + ".type",
				Message: fmt.Sprintf("chart type %q is not supported (series %s)", b.Type, seriesList(spec, b)),
			})
		}
	}
	if groupingIgnored(spec.Type, spec.Grouping) {
		issues = append(issues, ignoredGrouping(path+".grouping", spec.Type, spec.Grouping))
	}
	for _, name := range sortedKeys(spec.SeriesOverrides) {
		o := spec.SeriesOverrides[name]
		typ := o.Type
		if typ == "" {
			typ = spec.Type
		}
		if groupingIgnored(typ, o.Grouping) {
			issues = append(issues, ignoredGrouping(fmt.Sprintf("%s.seriesOverrides[%q].grouping", path, name), typ, o.Grouping))
		}
	}
	return issues
}

func ignoredGrouping(path string, t ChartType, g Grouping) ValidationIssue {
	msg := fmt.Sprintf("%s charts have no grouping; %q is ignored", t, g)
	if eff := effectiveGrouping(t, g); eff != GroupingNone {
		msg = fmt.Sprintf("%s charts have no %q grouping; %q is used", t, g, eff)
	}
	return ValidationIssue{Severity: SeverityWarning, Path: path, Message: msg}
}

// validateReferences warns about overrides that name no series of the chart.
func validateReferences(path string, spec *ChartSpec) []ValidationIssue {
	var issues []ValidationIssue
	check := func(key string, names []string) {
		for _, name := range names {
			if !slices.Contains(spec.SeriesNames, name) {
				issues = append(issues, ValidationIssue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("%s.%s[%q]", path, key, name),
					Message:  "names no series of this chart",
				})
			}
		}
	}
	check("seriesColors", sortedKeys(spec.SeriesColors))
	check("seriesOverrides", sortedKeys(spec.SeriesOverrides))
	return issues
}

// validatePointColors warns about point overrides that will be dropped
// because fill, line or marker is missing.
func validatePointColors(path string, spec *ChartSpec) []ValidationIssue {
	var issues []ValidationIssue
	for si, series := range spec.SeriesNames {
		for ci, category := range spec.CategoryNames {
			c := spec.Point(si, ci).Colors
			if c.IsZero() || c.Complete() {
				continue
			}
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("%s.pointColors[%q][%q]", path, series, category),
				Message:  "point colours need fill, line and marker; override skipped",
			})
		}
	}
	return issues
}

// validateDisplay warns about pie options on charts without pie buckets and
// manual layout fractions outside the chart area.
func validateDisplay(path string, spec *ChartSpec) []ValidationIssue {
	var issues []ValidationIssue
	var hasPie, hasDoughnut bool
	for _, b := range partition(spec) {
		hasPie = hasPie || b.Type == ChartPie || b.Type == ChartDoughnut
		hasDoughnut = hasDoughnut || b.Type == ChartDoughnut
	}
	if spec.FirstSliceAngle != nil && !hasPie {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Path:     path + ".firstSliceAngle",
			Message:  "only pie and doughnut charts use firstSliceAngle",
		})
	} else if spec.FirstSliceAngle != nil {
		issues = append(issues, rangeIssue(path+".firstSliceAngle", *spec.FirstSliceAngle, minSliceAngle, maxSliceAngle)...)
	}
	if spec.HoleSize != nil && !hasDoughnut {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Path:     path + ".holeSize",
			Message:  "only doughnut charts use holeSize",
		})
	} else if spec.HoleSize != nil {
		issues = append(issues, rangeIssue(path+".holeSize", *spec.HoleSize, minHoleSize, maxHoleSize)...)
	}
	if r := spec.ManualLayout.PlotArea; r != nil {
		for _, f := range []struct {
			name  string
			value float64
		}{{"x", r.X}, {"y", r.Y}, {"w", r.W}, {"h", r.H}} {
			if f.value < 0 || f.value > 1 {
				issues = append(issues, ValidationIssue{
					Severity: SeverityWarning,
					Path:     path + ".manualLayout.plotArea." + f.name,
					Message:  fmt.Sprintf("%v is outside the chart area (0..1)", f.value),
				})
			}
		}
	}
	return issues
}

func rangeIssue(path string, v, lo, hi int) []ValidationIssue {
	if v >= lo && v <= hi {
		return nil
	}
	return []ValidationIssue{{
		Severity: SeverityWarning,
		Path:     path,
		Message:  fmt.Sprintf("%d is outside %d..%d and will be clamped to %d", v, lo, hi, clampInt(v, lo, hi)),
	}}
}

func seriesList(spec *ChartSpec, b *bucket) string {
	names := make([]string, len(b.Series))
	for i, si := range b.Series {
		names[i] = fmt.Sprintf("%q", spec.SeriesNames[si])
	}
	return fmt.Sprint(names)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
