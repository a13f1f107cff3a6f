package xlsxchart

import (
	"fmt"
	"path"
	"strings"

	"github.com/javajack/xlsxchart/internal/xmltree"
)

// PartKind discriminates the document parts tracked by the part graph.
type PartKind int

const (
	partNone PartKind = iota
	PartWorkbook
	PartWorksheet
	PartDrawing
	PartChart
)

func (k PartKind) String() string {
	switch k {
	case PartWorkbook:
		return "workbook"
	case PartWorksheet:
		return "worksheet"
	case PartDrawing:
		return "drawing"
	case PartChart:
		return "chart"
	}
	return fmt.Sprintf("PartKind(%d)", int(k))
}

const (
	nsMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	nsDrawingMain   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsChart         = "http://schemas.openxmlformats.org/drawingml/2006/chart"
)

const (
	ctRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML           = "application/xml"
	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctDrawing       = "application/vnd.openxmlformats-officedocument.drawing+xml"
	ctChart         = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctCore          = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp           = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

const (
	relOfficeDocument = nsRelationships + "/officeDocument"
	relWorksheet      = nsRelationships + "/worksheet"
	relDrawing        = nsRelationships + "/drawing"
	relChart          = nsRelationships + "/chart"
	relStyles         = nsRelationships + "/styles"
	relCore           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relApp            = nsRelationships + "/extended-properties"
)

// Part is a document part owned by the part graph.
type Part interface {
	Kind() PartKind
	// Seq is the 1-based sequence number of the part among parts of its kind.
	Seq() int
	// Path is the part's location inside the package, without a leading slash.
	Path() string
}

// relationship is one edge of a parent's relationship scope.
type relationship struct {
	ID     string
	Type   string
	Target string
}

// relScope allocates relationship ids for a single parent part.
type relScope struct {
	next int
	rels []relationship
}

func (s *relScope) add(relType, target string) string {
	if s.next == 0 {
		s.next = 1
	}
	id := fmt.Sprintf("rId%d", s.next)
	s.next++
	s.rels = append(s.rels, relationship{ID: id, Type: relType, Target: target})
	return id
}

func (s *relScope) tree() *xmltree.Node {
	root := xmltree.New("Relationships").Set("xmlns", nsPackageRels)
	for _, r := range s.rels {
		root.Append(xmltree.New("Relationship").
			Set("Id", r.ID).
			Set("Type", r.Type).
			Set("Target", r.Target))
	}
	return root
}

// relsPath returns the relationship part that belongs to partPath.
func relsPath(partPath string) string {
	dir, file := path.Split(partPath)
	return dir + "_rels/" + file + ".rels"
}

type sheetEntry struct {
	name    string
	sheetID int
	relID   string
}

type workbookPart struct {
	rels   relScope
	sheets []sheetEntry
}

func (*workbookPart) Kind() PartKind { return PartWorkbook }
func (*workbookPart) Seq() int       { return 1 }
func (*workbookPart) Path() string   { return "xl/workbook.xml" }

type worksheetPart struct {
	seq      int
	name     string
	rels     relScope
	attached bool
	cells    cellGrid
	drawing  *drawingPart
	drawRel  string
}

func (w *worksheetPart) Kind() PartKind { return PartWorksheet }
func (w *worksheetPart) Seq() int       { return w.seq }
func (w *worksheetPart) Path() string   { return fmt.Sprintf("xl/worksheets/sheet%d.xml", w.seq) }

// Name is the worksheet's display name.
func (w *worksheetPart) Name() string { return w.name }

type anchorEntry struct {
	relID string
	chart *chartPart
}

type drawingPart struct {
	seq      int
	rels     relScope
	attached bool
	anchors  []anchorEntry
}

func (d *drawingPart) Kind() PartKind { return PartDrawing }
func (d *drawingPart) Seq() int       { return d.seq }
func (d *drawingPart) Path() string   { return fmt.Sprintf("xl/drawings/drawing%d.xml", d.seq) }

type chartPart struct {
	seq      int
	attached bool
	spec     *ChartSpec
	table    table
	// anchorColumn is the default first column of the chart's drawing anchor.
	anchorColumn int
	buckets      []*bucket
	tree         *xmltree.Node
}

func (c *chartPart) Kind() PartKind { return PartChart }
func (c *chartPart) Seq() int       { return c.seq }
func (c *chartPart) Path() string   { return fmt.Sprintf("xl/charts/chart%d.xml", c.seq) }

type contentType struct {
	partName string
	mimeType string
}

// partGraph owns every counter and registry of one package-generation call.
type partGraph struct {
	seq          map[PartKind]int
	workbook     *workbookPart
	worksheets   []*worksheetPart
	drawings     []*drawingPart
	charts       []*chartPart
	contentTypes []contentType
}

func newPartGraph() *partGraph {
	g := &partGraph{
		seq:      make(map[PartKind]int),
		workbook: &workbookPart{},
	}
	g.workbook.rels.add(relStyles, "styles.xml")
	g.declare(g.workbook.Path(), ctWorkbook)
	g.declare("xl/styles.xml", ctStyles)
	g.declare("docProps/core.xml", ctCore)
	g.declare("docProps/app.xml", ctApp)
	return g
}

func (g *partGraph) next(kind PartKind) int {
	g.seq[kind]++
	return g.seq[kind]
}

func (g *partGraph) declare(partPath, mimeType string) {
	g.contentTypes = append(g.contentTypes, contentType{partName: "/" + partPath, mimeType: mimeType})
}

func (g *partGraph) newWorksheet(name string) *worksheetPart {
	w := &worksheetPart{seq: g.next(PartWorksheet), name: name}
	g.worksheets = append(g.worksheets, w)
	return w
}

func (g *partGraph) newDrawing() *drawingPart {
	d := &drawingPart{seq: g.next(PartDrawing)}
	g.drawings = append(g.drawings, d)
	return d
}

func (g *partGraph) newChart(spec *ChartSpec) *chartPart {
	c := &chartPart{seq: g.next(PartChart), spec: spec}
	g.charts = append(g.charts, c)
	return c
}

// attach registers child under parent: it declares the child's content type,
// adds a relationship edge in the parent's scope, and records the parent's
// reference to that edge. All checks run before any registry is touched, so a
// failed attach leaves the graph unchanged.
func (g *partGraph) attach(child, parent Part) error {
	invariant := func(format string, args ...any) error {
		return &PackagingInvariantError{Parent: parent.Kind(), Child: child.Kind(), Reason: fmt.Sprintf(format, args...)}
	}

	switch p := parent.(type) {
	case *workbookPart:
		w, ok := child.(*worksheetPart)
		if !ok {
			return invariant("workbook accepts only worksheets")
		}
		if w.attached {
			return invariant("%s is already attached", w.Path())
		}
		for _, s := range p.sheets {
			if strings.EqualFold(s.name, w.name) {
				return invariant("duplicate sheet name %q", w.name)
			}
		}
		if w.name == "" {
			return invariant("%s has no name", w.Path())
		}
		g.declare(w.Path(), ctWorksheet)
		id := p.rels.add(relWorksheet, "worksheets/"+path.Base(w.Path()))
		p.sheets = append(p.sheets, sheetEntry{name: w.name, sheetID: w.seq, relID: id})
		w.attached = true

	case *worksheetPart:
		d, ok := child.(*drawingPart)
		if !ok {
			return invariant("worksheet accepts only drawings")
		}
		if !p.attached {
			return invariant("%s is not attached to the workbook", p.Path())
		}
		if p.drawing != nil {
			return invariant("%s already holds %s", p.Path(), p.drawing.Path())
		}
		if d.attached {
			return invariant("%s is already attached", d.Path())
		}
		g.declare(d.Path(), ctDrawing)
		p.drawRel = p.rels.add(relDrawing, "../drawings/"+path.Base(d.Path()))
		p.drawing = d
		d.attached = true

	case *drawingPart:
		c, ok := child.(*chartPart)
		if !ok {
			return invariant("drawing accepts only charts")
		}
		if !p.attached {
			return invariant("%s is not attached to a worksheet", p.Path())
		}
		if c.attached {
			return invariant("%s is already attached", c.Path())
		}
		g.declare(c.Path(), ctChart)
		id := p.rels.add(relChart, "../charts/"+path.Base(c.Path()))
		p.anchors = append(p.anchors, anchorEntry{relID: id, chart: c})
		c.attached = true

	default:
		return invariant("%s parts cannot hold children", parent.Kind())
	}
	return nil
}

func (g *partGraph) contentTypesTree() *xmltree.Node {
	root := xmltree.New("Types").Set("xmlns", nsContentTypes)
	root.Append(
		xmltree.New("Default").Set("Extension", "rels").Set("ContentType", ctRelationships),
		xmltree.New("Default").Set("Extension", "xml").Set("ContentType", ctXML),
	)
	for _, ct := range g.contentTypes {
		root.Append(xmltree.New("Override").Set("PartName", ct.partName).Set("ContentType", ct.mimeType))
	}
	return root
}

func (g *partGraph) workbookTree() *xmltree.Node {
	sheets := xmltree.New("sheets")
	for _, s := range g.workbook.sheets {
		sheets.Append(xmltree.New("sheet").
			Set("name", s.name).
			Set("sheetId", s.sheetID).
			Set("r:id", s.relID))
	}
	return xmltree.New("workbook",
		xmltree.New("bookViews", xmltree.New("workbookView").Set("activeTab", 0)),
		sheets,
	).Set("xmlns", nsMain).Set("xmlns:r", nsRelationships)
}
