package xlsxchart

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DescribeFile opens a workbook on disk and describes it; see Describe.
func DescribeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()
	return Describe(f)
}

// Describe opens a workbook and returns a human-readable listing of its
// sheets with their non-empty rows, followed by the chart parts it contains.
// Useful for checking generated output without a spreadsheet application.
func Describe(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		fmt.Fprintf(&b, "Sheet %q (%d rows)\n", sheet, len(rows))
		for i, row := range rows {
			if len(row) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %d: %s\n", i+1, strings.Join(row, " | "))
		}
	}

	charts := chartParts(f)
	fmt.Fprintf(&b, "Charts (%d)\n", len(charts))
	for _, c := range charts {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	return b.String(), nil
}

// chartParts lists the chart part paths of an opened workbook, sorted.
func chartParts(f *excelize.File) []string {
	var out []string
	f.Pkg.Range(func(k, _ any) bool {
		if name, ok := k.(string); ok && strings.HasPrefix(name, "xl/charts/chart") {
			out = append(out, name)
		}
		return true
	})
	sort.Strings(out)
	return out
}
