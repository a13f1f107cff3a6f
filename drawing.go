package xlsxchart

import (
	"fmt"

	"github.com/javajack/xlsxchart/internal/xmltree"
)

// Default anchor size in grid cells.
const (
	anchorRows    = 20
	anchorColumns = 10
)

// anchorBox is a two-cell anchor in zero-based grid coordinates.
type anchorBox struct {
	FromCol, FromColOff, FromRow, FromRowOff int
	ToCol, ToColOff, ToRow, ToRowOff         int
}

// anchorFor places the k-th chart of a drawing: rows [20k, 20k+20) and
// columns [column, column+10), with any Position field taking precedence.
func anchorFor(k, column int, p Position) anchorBox {
	box := anchorBox{
		FromCol: column,
		FromRow: k * anchorRows,
		ToCol:   column + anchorColumns,
		ToRow:   (k + 1) * anchorRows,
	}
	overrides := []struct {
		dst *int
		src *int
	}{
		{&box.FromCol, p.FromColumn},
		{&box.FromColOff, p.FromColumnOffset},
		{&box.FromRow, p.FromRow},
		{&box.FromRowOff, p.FromRowOffset},
		{&box.ToCol, p.ToColumn},
		{&box.ToColOff, p.ToColumnOffset},
		{&box.ToRow, p.ToRow},
		{&box.ToRowOff, p.ToRowOffset},
	}
	for _, o := range overrides {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	return box
}

func markerNode(name string, col, colOff, row, rowOff int) *xmltree.Node {
	return xmltree.New(name,
		xmltree.Text("xdr:col", fmt.Sprint(col)),
		xmltree.Text("xdr:colOff", fmt.Sprint(colOff)),
		xmltree.Text("xdr:row", fmt.Sprint(row)),
		xmltree.Text("xdr:rowOff", fmt.Sprint(rowOff)),
	)
}

func (d *drawingPart) tree() *xmltree.Node {
	root := xmltree.New("xdr:wsDr").Set("xmlns:xdr", nsDrawing).Set("xmlns:a", nsDrawingMain)
	for k, a := range d.anchors {
		box := anchorFor(k, a.chart.anchorColumn, a.chart.spec.Position)
		frame := xmltree.New("xdr:graphicFrame",
			xmltree.New("xdr:nvGraphicFramePr",
				xmltree.New("xdr:cNvPr").Set("id", k+2).Set("name", fmt.Sprintf("Chart %d", k+1)),
				xmltree.New("xdr:cNvGraphicFramePr"),
			),
			xmltree.New("xdr:xfrm",
				xmltree.New("a:off").Set("x", 0).Set("y", 0),
				xmltree.New("a:ext").Set("cx", 0).Set("cy", 0),
			),
			xmltree.New("a:graphic",
				xmltree.New("a:graphicData",
					xmltree.New("c:chart").
						Set("xmlns:c", nsChart).
						Set("xmlns:r", nsRelationships).
						Set("r:id", a.relID),
				).Set("uri", nsChart),
			),
		).Set("macro", "")
		root.Append(xmltree.New("xdr:twoCellAnchor",
			markerNode("xdr:from", box.FromCol, box.FromColOff, box.FromRow, box.FromRowOff),
			markerNode("xdr:to", box.ToCol, box.ToColOff, box.ToRow, box.ToRowOff),
			frame,
			xmltree.New("xdr:clientData"),
		))
	}
	return root
}
