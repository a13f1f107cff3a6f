// Package xlsxchart builds .xlsx workbooks that hold data tables and native
// charts from a declarative description of series over categories.
package xlsxchart

import (
	"fmt"
	"io"
	"os"

	"github.com/javajack/xlsxchart/internal/archive"
)

// Generator turns chart specifications into workbook packages. A Generator
// holds configuration only; every call builds its own part graph, so one
// Generator may be used from several goroutines.
type Generator struct {
	opts *Options
	eval ExpressionEvaluator
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Generator{opts: o, eval: NewExpressionEvaluator()}
}

// Normalize canonicalizes loosely-typed input (a Record, a map[string]any or
// anything LoadSpec returns) into PackageOptions. All problems are collected
// and returned together as ValidationErrors.
func (g *Generator) Normalize(raw any) (*PackageOptions, error) {
	n := &normalizer{opts: g.opts, eval: g.eval}
	return n.normalize(raw)
}

// resolve accepts either typed PackageOptions or raw input.
func (g *Generator) resolve(raw any) (*PackageOptions, error) {
	var opts *PackageOptions
	switch v := raw.(type) {
	case *PackageOptions:
		opts = v
	case PackageOptions:
		opts = &v
	default:
		return g.Normalize(raw)
	}
	if opts == nil {
		return nil, ValidationErrors{{Path: "options", Message: "should be a record, got null"}}
	}

	var issues ValidationErrors
	if len(opts.ChartSpecs) == 0 {
		issues = append(issues, ValidationIssue{Path: "chartSpecs", Message: "should not be empty"})
	}
	for i, spec := range opts.ChartSpecs {
		path := fmt.Sprintf("chartSpecs[%d]", i)
		if spec == nil {
			issues = append(issues, ValidationIssue{Path: path, Message: "should be a record, got null"})
			continue
		}
		if err := spec.Validate(); err != nil {
			issues = append(issues, ValidationIssue{Path: path, Message: err.Error()})
		}
	}
	out := *opts
	if g.opts.encoding != "" {
		out.OutputEncoding = g.opts.encoding
	}
	if g.opts.oneSheet != nil {
		out.OneSheetPerChart = *g.opts.oneSheet
	}
	if _, err := ParseEncoding(string(out.OutputEncoding)); err != nil {
		issues = append(issues, ValidationIssue{Path: "outputEncoding", Message: err.Error()})
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return &out, nil
}

// Generate normalizes raw, assembles the package and returns the archive in
// the requested output encoding.
func (g *Generator) Generate(raw any) ([]byte, error) {
	opts, err := g.resolve(raw)
	if err != nil {
		return nil, err
	}
	pkg, err := g.Assemble(opts)
	if err != nil {
		return nil, err
	}
	return pkg.Archive(opts.OutputEncoding, g.opts.modified)
}

// Write generates the archive and writes it to w.
func (g *Generator) Write(w io.Writer, raw any) error {
	data, err := g.Generate(raw)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	return nil
}

// WriteFile generates the archive and saves it to path. Nothing is written
// when generation fails.
func (g *Generator) WriteFile(path string, raw any) error {
	data, err := g.Generate(raw)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w %q: %w", ErrWriteFile, path, err)
	}
	return nil
}

// ParseEncoding validates an output encoding name. The empty string selects
// EncodingBuffer.
func ParseEncoding(s string) (Encoding, error) {
	return archive.ParseEncoding(s)
}

// Generate is a convenience wrapper around NewGenerator(opts...).Generate.
func Generate(raw any, opts ...Option) ([]byte, error) {
	return NewGenerator(opts...).Generate(raw)
}

// WriteFile is a convenience wrapper around NewGenerator(opts...).WriteFile.
func WriteFile(path string, raw any, opts ...Option) error {
	return NewGenerator(opts...).WriteFile(path, raw)
}

// Normalize is a convenience wrapper around NewGenerator(opts...).Normalize.
func Normalize(raw any, opts ...Option) (*PackageOptions, error) {
	return NewGenerator(opts...).Normalize(raw)
}
