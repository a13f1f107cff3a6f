package xlsxchart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javajack/xlsxchart/internal/archive"
)

// ErrArchive is wrapped by every failure of the archive-packing step.
var ErrArchive = archive.ErrArchive

// ErrWriteFile is wrapped when the generated package cannot be persisted.
var ErrWriteFile = errors.New("xlsxchart: write file failed")

// ValidationErrors is the collected list of input problems. Generation does
// not start while any exist.
type ValidationErrors []ValidationIssue

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, issue := range e {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("invalid options (%d issues): %s", len(e), strings.Join(parts, "; "))
}

// UnsupportedChartTypeError aborts composition of a chart whose bucket type
// has no chart element.
type UnsupportedChartTypeError struct {
	Chart string
	Type  ChartType
}

func (e *UnsupportedChartTypeError) Error() string {
	return fmt.Sprintf("chart %q: chart type %q is not supported", e.Chart, e.Type)
}

// PackagingInvariantError reports a violation of the part graph or of a
// worksheet's cell layout. Valid input never produces one. Child is unset when
// the violation concerns the parent alone.
type PackagingInvariantError struct {
	Parent PartKind
	Child  PartKind
	Reason string
}

func (e *PackagingInvariantError) Error() string {
	if e.Child == partNone {
		return fmt.Sprintf("packaging invariant: %s: %s", e.Parent, e.Reason)
	}
	return fmt.Sprintf("packaging invariant: %s -> %s: %s", e.Parent, e.Child, e.Reason)
}
