package xlsxchart

import (
	"strconv"

	"golang.org/x/text/width"

	"github.com/javajack/xlsxchart/internal/xmltree"
)

// Column width bounds in character units.
const (
	minColumnWidth = 8.43
	maxColumnWidth = 60
)

// displayWidth counts wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func (c cell) display() string {
	if c.isText {
		return c.text
	}
	return formatNumber(c.number)
}

// fitColumns sizes every written column to its widest cell. Columns that fit
// the default width are left out; nil means no column needs widening.
func fitColumns(rows [][]cell) *xmltree.Node {
	widest := make(map[int]int)
	maxCol := 0
	for _, row := range rows {
		for _, c := range row {
			widest[c.ref.Col] = max(widest[c.ref.Col], displayWidth(c.display()))
			maxCol = max(maxCol, c.ref.Col)
		}
	}

	cols := xmltree.New("cols")
	for col := 1; col <= maxCol; col++ {
		w := float64(widest[col] + 2)
		if w <= minColumnWidth {
			continue
		}
		w = min(w, maxColumnWidth)
		cols.Append(xmltree.New("col").
			Set("min", col).
			Set("max", col).
			Set("width", strconv.FormatFloat(w, 'f', -1, 64)).
			Set("customWidth", 1))
	}
	if len(cols.Children) == 0 {
		return nil
	}
	return cols
}
