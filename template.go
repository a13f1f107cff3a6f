package xlsxchart

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExpressionEvaluator evaluates ${...} segments of chart titles.
type ExpressionEvaluator interface {
	Evaluate(expression string, data map[string]any) (any, error)
}

// exprEvaluator implements ExpressionEvaluator using expr-lang/expr.
type exprEvaluator struct {
	cache sync.Map // expression string → compiled *vm.Program
}

// NewExpressionEvaluator creates a new expression evaluator backed by expr-lang/expr.
func NewExpressionEvaluator() ExpressionEvaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) Evaluate(expression string, data map[string]any) (any, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}
	program, err := e.compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", expression, err)
	}
	result, err := expr.Run(program, data)
	if err != nil {
		return nil, fmt.Errorf("evaluate expression %q: %w", expression, err)
	}
	return result, nil
}

func (e *exprEvaluator) compile(expression string) (*vm.Program, error) {
	if cached, ok := e.cache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.cache.Store(expression, program)
	return program, nil
}

// ExpressionSegment is a part of a template: literal text or an expression.
type ExpressionSegment struct {
	IsExpression bool
	Text         string // literal text or expression content (without delimiters)
}

// ParseExpressions splits a template into segments of literal text and expressions.
// For example, "Sales ${year}" → [{false, "Sales "}, {true, "year"}]
func ParseExpressions(value string, begin, end string) []ExpressionSegment {
	if begin == "" || end == "" {
		begin = "${"
		end = "}"
	}

	var segments []ExpressionSegment
	remaining := value

	for {
		startIdx := strings.Index(remaining, begin)
		if startIdx < 0 {
			break
		}

		searchFrom := startIdx + len(begin)
		endIdx := findMatchingEnd(remaining[searchFrom:], begin, end)
		if endIdx < 0 {
			break
		}
		endIdx += searchFrom

		if startIdx > 0 {
			segments = append(segments, ExpressionSegment{Text: remaining[:startIdx]})
		}
		segments = append(segments, ExpressionSegment{
			IsExpression: true,
			Text:         remaining[startIdx+len(begin) : endIdx],
		})

		remaining = remaining[endIdx+len(end):]
	}

	if remaining != "" {
		segments = append(segments, ExpressionSegment{Text: remaining})
	}
	return segments
}

// findMatchingEnd finds the position of the matching end delimiter,
// handling nested begin/end pairs.
func findMatchingEnd(s string, begin, end string) int {
	depth := 0
	for i := 0; i <= len(s)-len(end); i++ {
		if strings.HasPrefix(s[i:], begin) {
			depth++
		} else if strings.HasPrefix(s[i:], end) {
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// renderTemplate evaluates every expression segment of value against data
// and concatenates the results. Values without expressions are returned as is.
func renderTemplate(ev ExpressionEvaluator, value, begin, end string, data map[string]any) (string, error) {
	if !strings.Contains(value, begin) {
		return value, nil
	}
	var b strings.Builder
	for _, seg := range ParseExpressions(value, begin, end) {
		if !seg.IsExpression {
			b.WriteString(seg.Text)
			continue
		}
		v, err := ev.Evaluate(seg.Text, data)
		if err != nil {
			return "", err
		}
		if v != nil {
			fmt.Fprintf(&b, "%v", v)
		}
	}
	return b.String(), nil
}
