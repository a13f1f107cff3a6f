package xlsxchart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ExpressionSegment
	}{
		{"plain", "Sales", []ExpressionSegment{{Text: "Sales"}}},
		{"single", "${year}", []ExpressionSegment{{IsExpression: true, Text: "year"}}},
		{"mixed", "Sales ${year} (${unit})", []ExpressionSegment{
			{Text: "Sales "},
			{IsExpression: true, Text: "year"},
			{Text: " ("},
			{IsExpression: true, Text: "unit"},
			{Text: ")"},
		}},
		{"nested delimiters", "${a${b}c}", []ExpressionSegment{{IsExpression: true, Text: "a${b}c"}}},
		{"unterminated", "Total ${x", []ExpressionSegment{{Text: "Total ${x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExpressions(tt.input, "${", "}"))
		})
	}
}

func TestParseExpressions_CustomNotation(t *testing.T) {
	segs := ParseExpressions("Q{{q}} report", "{{", "}}")
	assert.Equal(t, []ExpressionSegment{
		{Text: "Q"},
		{IsExpression: true, Text: "q"},
		{Text: " report"},
	}, segs)
}

func TestExpressionEvaluator(t *testing.T) {
	ev := NewExpressionEvaluator()

	v, err := ev.Evaluate("a + b", map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = ev.Evaluate("  ", nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ev.Evaluate("missing", map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ev.Evaluate("a +", map[string]any{"a": 1})
	assert.ErrorContains(t, err, "compile expression")

	// compiled programs are cached per expression
	_, err = ev.Evaluate("a * 2", map[string]any{"a": 2})
	require.NoError(t, err)
	v, err = ev.Evaluate("a * 2", map[string]any{"a": 5})
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestTitleContext(t *testing.T) {
	ctx := newTitleContext(map[string]any{"region": "EMEA", "index": "shadowed"}, NewExpressionEvaluator(), "${", "}")
	ctx.enterChart(1, 3, 4)

	out, err := ctx.render("${region} #${index}: ${seriesCount}x${categoryCount}")
	require.NoError(t, err)
	assert.Equal(t, "EMEA #2: 3x4", out)

	ctx.putVar("region", "APAC")
	out, err = ctx.render("${region}")
	require.NoError(t, err)
	assert.Equal(t, "APAC", out)

	out, err = ctx.render("no templates here")
	require.NoError(t, err)
	assert.Equal(t, "no templates here", out)

	out, err = ctx.render("${unknown}!")
	require.NoError(t, err)
	assert.Equal(t, "!", out)
}
