package xlsxchart

import (
	"fmt"
	"strings"
	"time"

	"github.com/javajack/xlsxchart/internal/archive"
	"github.com/javajack/xlsxchart/internal/xmltree"
)

// Worksheet names used in shared mode.
const (
	ChartsSheetName = "Charts"
	TableSheetName  = "Table"
)

type packagePart struct {
	path string
	tree *xmltree.Node
}

// Package is the assembled, not yet serialized, set of parts of one workbook.
type Package struct {
	parts  []packagePart
	byPath map[string]*xmltree.Node
	graph  *partGraph
}

// Paths lists the part paths in archive order.
func (p *Package) Paths() []string {
	out := make([]string, len(p.parts))
	for i, part := range p.parts {
		out[i] = part.path
	}
	return out
}

// SheetNames lists the worksheet names in workbook order.
func (p *Package) SheetNames() []string {
	out := make([]string, len(p.graph.worksheets))
	for i, w := range p.graph.worksheets {
		out[i] = w.name
	}
	return out
}

// Counts reports how many worksheets, drawings and charts the package holds.
func (p *Package) Counts() (worksheets, drawings, charts int) {
	return len(p.graph.worksheets), len(p.graph.drawings), len(p.graph.charts)
}

// Render serializes a single part.
func (p *Package) Render(path string) ([]byte, error) {
	tree, ok := p.byPath[path]
	if !ok {
		return nil, fmt.Errorf("package has no part %q", path)
	}
	return xmltree.Render(tree)
}

func (p *Package) tree(path string) *xmltree.Node {
	return p.byPath[path]
}

func (p *Package) add(path string, tree *xmltree.Node) {
	p.parts = append(p.parts, packagePart{path: path, tree: tree})
	p.byPath[path] = tree
}

// Archive renders every part and packs them in the requested encoding.
func (p *Package) Archive(enc Encoding, modified time.Time) ([]byte, error) {
	b := archive.NewBuilder(modified)
	for _, part := range p.parts {
		data, err := xmltree.Render(part.tree)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArchive, part.path, err)
		}
		if err := b.AddPart(part.path, data); err != nil {
			return nil, err
		}
	}
	return b.Finalize(enc)
}

// Assemble builds the part graph for opts: worksheets, drawings and charts,
// their relationships and content types, and the fixed workbook scaffolding.
func (g *Generator) Assemble(opts *PackageOptions) (*Package, error) {
	if opts == nil || len(opts.ChartSpecs) == 0 {
		return nil, ValidationErrors{{Path: "chartSpecs", Message: "should not be empty"}}
	}
	graph := newPartGraph()

	var err error
	if opts.OneSheetPerChart {
		err = assemblePerChart(graph, opts.ChartSpecs)
	} else {
		err = assembleShared(graph, opts.ChartSpecs)
	}
	if err != nil {
		return nil, err
	}

	pkg := buildPackage(graph)
	g.opts.logger.Debug("assembled package",
		"worksheets", len(graph.worksheets),
		"drawings", len(graph.drawings),
		"charts", len(graph.charts),
		"parts", len(pkg.parts),
		"oneSheetPerChart", opts.OneSheetPerChart,
	)
	return pkg, nil
}

// assembleShared lays every table on one data sheet and anchors every chart
// in one drawing on a separate charts sheet.
func assembleShared(graph *partGraph, specs []*ChartSpec) error {
	holder := graph.newWorksheet(ChartsSheetName)
	if err := graph.attach(holder, graph.workbook); err != nil {
		return err
	}
	drawing := graph.newDrawing()
	if err := graph.attach(drawing, holder); err != nil {
		return err
	}
	data := graph.newWorksheet(TableSheetName)
	if err := graph.attach(data, graph.workbook); err != nil {
		return err
	}

	rowOffset := 0
	for _, spec := range specs {
		t, err := layoutTable(data, spec, rowOffset, 0)
		if err != nil {
			return err
		}
		if err := addChart(graph, drawing, spec, t, 0); err != nil {
			return err
		}
		rowOffset += t.rowSpan()
	}
	return nil
}

// assemblePerChart gives every spec its own worksheet and drawing, named
// after the chart title.
func assemblePerChart(graph *partGraph, specs []*ChartSpec) error {
	used := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		ws := graph.newWorksheet(uniqueSheetName(spec.Title, used))
		if err := graph.attach(ws, graph.workbook); err != nil {
			return err
		}
		drawing := graph.newDrawing()
		if err := graph.attach(drawing, ws); err != nil {
			return err
		}
		t, err := layoutTable(ws, spec, 0, 0)
		if err != nil {
			return err
		}
		if err := addChart(graph, drawing, spec, t, len(spec.SeriesNames)+2); err != nil {
			return err
		}
	}
	return nil
}

func addChart(graph *partGraph, drawing *drawingPart, spec *ChartSpec, t table, anchorColumn int) error {
	tree, buckets, err := composeChart(spec, t)
	if err != nil {
		return err
	}
	chart := graph.newChart(spec)
	chart.table = t
	chart.tree = tree
	chart.buckets = buckets
	chart.anchorColumn = anchorColumn
	return graph.attach(chart, drawing)
}

// uniqueSheetName derives a valid worksheet name from title that is not yet
// in used (compared case-insensitively) and records it.
func uniqueSheetName(title string, used map[string]struct{}) string {
	base := SafeSheetName(title)
	if base == "" {
		base = "Sheet"
	}
	name := base
	for n := 2; ; n++ {
		if _, taken := used[strings.ToLower(name)]; !taken {
			break
		}
		suffix := fmt.Sprintf(" (%d)", n)
		runes := []rune(base)
		if limit := 31 - len(suffix); len(runes) > limit {
			runes = runes[:limit]
		}
		name = string(runes) + suffix
	}
	used[strings.ToLower(name)] = struct{}{}
	return name
}

func buildPackage(graph *partGraph) *Package {
	pkg := &Package{byPath: make(map[string]*xmltree.Node), graph: graph}

	pkg.add("[Content_Types].xml", graph.contentTypesTree())
	pkg.add("_rels/.rels", rootRels().tree())
	pkg.add("docProps/app.xml", appProps(graph))
	pkg.add("docProps/core.xml", coreProps())
	pkg.add(graph.workbook.Path(), graph.workbookTree())
	pkg.add(relsPath(graph.workbook.Path()), graph.workbook.rels.tree())
	pkg.add("xl/styles.xml", styles())
	for _, w := range graph.worksheets {
		pkg.add(w.Path(), w.tree())
		pkg.add(relsPath(w.Path()), w.rels.tree())
	}
	for _, d := range graph.drawings {
		pkg.add(d.Path(), d.tree())
		pkg.add(relsPath(d.Path()), d.rels.tree())
	}
	for _, c := range graph.charts {
		pkg.add(c.Path(), c.tree)
	}
	return pkg
}

func rootRels() *relScope {
	var rels relScope
	rels.add(relOfficeDocument, "xl/workbook.xml")
	rels.add(relCore, "docProps/core.xml")
	rels.add(relApp, "docProps/app.xml")
	return &rels
}

func appProps(graph *partGraph) *xmltree.Node {
	titles := xmltree.New("vt:vector").Set("size", len(graph.worksheets)).Set("baseType", "lpstr")
	for _, w := range graph.worksheets {
		titles.Append(xmltree.Text("vt:lpstr", w.name))
	}
	return xmltree.New("Properties",
		xmltree.Text("Application", "xlsxchart"),
		xmltree.Text("DocSecurity", "0"),
		xmltree.Text("ScaleCrop", "false"),
		xmltree.New("HeadingPairs", xmltree.New("vt:vector",
			xmltree.New("vt:variant", xmltree.Text("vt:lpstr", "Worksheets")),
			xmltree.New("vt:variant", xmltree.Text("vt:i4", fmt.Sprint(len(graph.worksheets)))),
		).Set("size", 2).Set("baseType", "variant")),
		xmltree.New("TitlesOfParts", titles),
	).
		Set("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties").
		Set("xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes")
}

// coreProps carries no timestamps so that output stays reproducible.
func coreProps() *xmltree.Node {
	return xmltree.New("cp:coreProperties",
		xmltree.Text("dc:creator", "xlsxchart"),
		xmltree.Text("cp:lastModifiedBy", "xlsxchart"),
	).
		Set("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties").
		Set("xmlns:dc", "http://purl.org/dc/elements/1.1/").
		Set("xmlns:dcterms", "http://purl.org/dc/terms/").
		Set("xmlns:dcmitype", "http://purl.org/dc/dcmitype/").
		Set("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
}

func styles() *xmltree.Node {
	return xmltree.New("styleSheet",
		xmltree.New("fonts", xmltree.New("font",
			xmltree.Val("sz", 11),
			xmltree.Val("name", "Calibri"),
			xmltree.Val("family", 2),
		)).Set("count", 1),
		xmltree.New("fills",
			xmltree.New("fill", xmltree.New("patternFill").Set("patternType", "none")),
			xmltree.New("fill", xmltree.New("patternFill").Set("patternType", "gray125")),
		).Set("count", 2),
		xmltree.New("borders", xmltree.New("border",
			xmltree.New("left"), xmltree.New("right"), xmltree.New("top"), xmltree.New("bottom"), xmltree.New("diagonal"),
		)).Set("count", 1),
		xmltree.New("cellStyleXfs", xmltree.New("xf").
			Set("numFmtId", 0).Set("fontId", 0).Set("fillId", 0).Set("borderId", 0),
		).Set("count", 1),
		xmltree.New("cellXfs", xmltree.New("xf").
			Set("numFmtId", 0).Set("fontId", 0).Set("fillId", 0).Set("borderId", 0).Set("xfId", 0),
		).Set("count", 1),
		xmltree.New("cellStyles", xmltree.New("cellStyle").
			Set("name", "Normal").Set("xfId", 0).Set("builtinId", 0),
		).Set("count", 1),
	).Set("xmlns", nsMain)
}
