package xlsxchart

import "maps"

// titleContext holds the variables visible to ${...} title templates: the
// caller's variables plus per-chart run variables (index, seriesCount,
// categoryCount) that shadow them.
type titleContext struct {
	vars          map[string]any
	runVars       map[string]any
	evaluator     ExpressionEvaluator
	notationBegin string
	notationEnd   string

	// Merged map for evaluation. Reset whenever runVars change.
	cachedMap map[string]any
}

func newTitleContext(vars map[string]any, ev ExpressionEvaluator, begin, end string) *titleContext {
	if vars == nil {
		vars = make(map[string]any)
	}
	return &titleContext{
		vars:          vars,
		runVars:       make(map[string]any, 3),
		evaluator:     ev,
		notationBegin: begin,
		notationEnd:   end,
	}
}

// putVar sets a caller variable.
func (c *titleContext) putVar(name string, value any) {
	c.vars[name] = value
	c.cachedMap = nil
}

// enterChart sets the run variables of the chart at the 0-based index.
func (c *titleContext) enterChart(index, seriesCount, categoryCount int) {
	c.runVars["index"] = index + 1
	c.runVars["seriesCount"] = seriesCount
	c.runVars["categoryCount"] = categoryCount
	c.cachedMap = nil
}

// toMap merges vars and runVars; runVars win.
func (c *titleContext) toMap() map[string]any {
	if c.cachedMap != nil {
		return c.cachedMap
	}
	m := make(map[string]any, len(c.vars)+len(c.runVars))
	maps.Copy(m, c.vars)
	maps.Copy(m, c.runVars)
	c.cachedMap = m
	return m
}

// render evaluates every expression embedded in value.
func (c *titleContext) render(value string) (string, error) {
	return renderTemplate(c.evaluator, value, c.notationBegin, c.notationEnd, c.toMap())
}
