package xlsxchart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 5, displayWidth("North"))
	assert.Equal(t, 4, displayWidth("東京"))
	assert.Equal(t, 0, displayWidth(""))
}

func TestFitColumns(t *testing.T) {
	ws := &worksheetPart{name: "Table"}
	spec := matrixSpec("c", ChartBar, []string{"A fairly long series name", "S2"}, []string{"a"})
	_, err := layoutTable(ws, spec, 0, 0)
	require.NoError(t, err)

	cols := fitColumns(ws.cells.rows())
	require.NotNil(t, cols)
	require.Len(t, cols.Children, 1)
	col := cols.Children[0]
	assert.Equal(t, "2", attr(t, col, "min"))
	assert.Equal(t, "2", attr(t, col, "max"))
	assert.Equal(t, "27", attr(t, col, "width"))

	// cols sits between sheetFormatPr and sheetData
	assert.Equal(t, []string{"dimension", "sheetViews", "sheetFormatPr", "cols", "sheetData", "pageMargins"}, childNames(ws.tree()))
}

func TestFitColumns_Bounds(t *testing.T) {
	ws := &worksheetPart{name: "Table"}
	long := make([]rune, 100)
	for i := range long {
		long[i] = 'x'
	}
	spec := matrixSpec("c", ChartBar, []string{string(long)}, []string{"a"})
	_, err := layoutTable(ws, spec, 0, 0)
	require.NoError(t, err)
	cols := fitColumns(ws.cells.rows())
	require.NotNil(t, cols)
	assert.Equal(t, "60", attr(t, cols.Children[0], "width"))

	short := &worksheetPart{name: "Short"}
	_, err = layoutTable(short, matrixSpec("c", ChartBar, []string{"S"}, []string{"a"}), 0, 0)
	require.NoError(t, err)
	assert.Nil(t, fitColumns(short.cells.rows()))
	assert.Nil(t, short.tree().Child("cols"))
}
