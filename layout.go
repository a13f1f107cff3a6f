package xlsxchart

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/javajack/xlsxchart/internal/xmltree"
)

// cell is one written worksheet cell. Exactly one of text and number is used;
// isText selects which.
type cell struct {
	ref    CellRef
	isText bool
	text   string
	number float64
}

// cellGrid stores the cells of one worksheet and rejects a second write to
// any address.
type cellGrid struct {
	cells map[CellRef]cell
}

func (g *cellGrid) put(sheet string, c cell) error {
	if g.cells == nil {
		g.cells = make(map[CellRef]cell)
	}
	if _, dup := g.cells[c.ref]; dup {
		return &PackagingInvariantError{
			Parent: PartWorksheet,
			Reason: fmt.Sprintf("cell %s of sheet %q written twice", c.ref, sheet),
		}
	}
	g.cells[c.ref] = c
	return nil
}

func (g *cellGrid) get(ref CellRef) (cell, bool) {
	c, ok := g.cells[ref]
	return c, ok
}

// rows returns the cells grouped by row, rows ascending and cells ascending
// by column within a row.
func (g *cellGrid) rows() [][]cell {
	sorted := make([]cell, 0, len(g.cells))
	for _, c := range g.cells {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ref.Row != sorted[j].ref.Row {
			return sorted[i].ref.Row < sorted[j].ref.Row
		}
		return sorted[i].ref.Col < sorted[j].ref.Col
	})
	var out [][]cell
	for _, c := range sorted {
		if n := len(out); n > 0 && out[n-1][0].ref.Row == c.ref.Row {
			out[n-1] = append(out[n-1], c)
			continue
		}
		out = append(out, []cell{c})
	}
	return out
}

// table is the placement of one chart's data on a worksheet. The header row
// holds series names from column 2, column 1 holds category labels, offsets
// shift the whole block.
type table struct {
	sheet         string
	rowOffset     int
	columnOffset  int
	seriesCount   int
	categoryCount int
}

func (t table) headerRow() int      { return 1 + t.rowOffset }
func (t table) firstDataRow() int   { return 2 + t.rowOffset }
func (t table) lastDataRow() int    { return 1 + t.categoryCount + t.rowOffset }
func (t table) categoryColumn() int { return 1 + t.columnOffset }

func (t table) seriesColumn(series int) int { return series + 2 + t.columnOffset }

// nameRef is the header cell holding the name of a series.
func (t table) nameRef(series int) RangeRef {
	c := Cell(t.headerRow(), t.seriesColumn(series))
	return RangeRef{Sheet: t.sheet, First: c, Last: c}
}

// categoryRef is the column of category labels.
func (t table) categoryRef() RangeRef {
	col := t.categoryColumn()
	return RangeRef{Sheet: t.sheet, First: Cell(t.firstDataRow(), col), Last: Cell(t.lastDataRow(), col)}
}

// valueRef is the data column of a series.
func (t table) valueRef(series int) RangeRef {
	col := t.seriesColumn(series)
	return RangeRef{Sheet: t.sheet, First: Cell(t.firstDataRow(), col), Last: Cell(t.lastDataRow(), col)}
}

// rowSpan is the number of worksheet rows a table occupies, including the
// blank separator row that follows it in shared mode.
func (t table) rowSpan() int { return t.categoryCount + 2 }

// layoutTable writes spec's header row and one row per category to ws.
// Empty values leave their cell unwritten.
func layoutTable(ws *worksheetPart, spec *ChartSpec, rowOffset, columnOffset int) (table, error) {
	t := table{
		sheet:         ws.name,
		rowOffset:     rowOffset,
		columnOffset:  columnOffset,
		seriesCount:   len(spec.SeriesNames),
		categoryCount: len(spec.CategoryNames),
	}

	for si, name := range spec.SeriesNames {
		ref := Cell(t.headerRow(), t.seriesColumn(si))
		if err := ws.cells.put(ws.name, cell{ref: ref, isText: true, text: name}); err != nil {
			return table{}, err
		}
	}
	for ci, category := range spec.CategoryNames {
		row := t.firstDataRow() + ci
		if err := ws.cells.put(ws.name, cell{ref: Cell(row, t.categoryColumn()), isText: true, text: category}); err != nil {
			return table{}, err
		}
		for si := range spec.SeriesNames {
			c := cell{ref: Cell(row, t.seriesColumn(si))}
			switch v := spec.Point(si, ci).Value.(type) {
			case float64:
				c.number = v
			case string:
				c.isText, c.text = true, v
			default:
				continue
			}
			if err := ws.cells.put(ws.name, c); err != nil {
				return table{}, err
			}
		}
	}
	return t, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (w *worksheetPart) tree() *xmltree.Node {
	rows := w.cells.rows()

	dimension := "A1"
	if len(rows) > 0 {
		first, last := rows[0][0].ref, rows[0][0].ref
		for _, row := range rows {
			for _, c := range row {
				first.Row, first.Col = min(first.Row, c.ref.Row), min(first.Col, c.ref.Col)
				last.Row, last.Col = max(last.Row, c.ref.Row), max(last.Col, c.ref.Col)
			}
		}
		if first != last {
			dimension = first.String() + ":" + last.String()
		} else {
			dimension = first.String()
		}
	}

	sheetData := xmltree.New("sheetData")
	for _, row := range rows {
		r := xmltree.New("row").Set("r", row[0].ref.Row)
		for _, c := range row {
			el := xmltree.New("c").Set("r", c.ref.String())
			if c.isText {
				el.Set("t", "inlineStr").Append(xmltree.New("is", xmltree.Text("t", c.text)))
			} else {
				el.Append(xmltree.Text("v", formatNumber(c.number)))
			}
			r.Append(el)
		}
		sheetData.Append(r)
	}

	root := xmltree.New("worksheet",
		xmltree.New("dimension").Set("ref", dimension),
		xmltree.New("sheetViews", xmltree.New("sheetView").Set("workbookViewId", 0)),
		xmltree.New("sheetFormatPr").Set("defaultRowHeight", 15),
	).Set("xmlns", nsMain).Set("xmlns:r", nsRelationships)
	if cols := fitColumns(rows); cols != nil {
		root.Append(cols)
	}
	root.Append(
		sheetData,
		xmltree.New("pageMargins").
			Set("left", 0.7).Set("right", 0.7).
			Set("top", 0.75).Set("bottom", 0.75).
			Set("header", 0.3).Set("footer", 0.3),
	)
	if w.drawing != nil {
		root.Append(xmltree.New("drawing").Set("r:id", w.drawRel))
	}
	return root
}
