package xlsxchart

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnName converts a 1-based column number to its letter address.
// 1→"A", 26→"Z", 27→"AA", 702→"ZZ", 703→"AAA". Non-positive input yields "".
func ColumnName(n int) string {
	if n <= 0 {
		return ""
	}
	n--
	letter := string(rune('A' + n%26))
	if n < 26 {
		return letter
	}
	return ColumnName(n/26) + letter
}

// ColumnNumber converts a column letter address to its 1-based number.
// "A"→1, "Z"→26, "AA"→27.
func ColumnNumber(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col, nil
}

// CellRef is a 1-based grid coordinate.
type CellRef struct {
	Row int
	Col int
}

// Cell builds a CellRef from 1-based row and column numbers.
func Cell(row, col int) CellRef {
	return CellRef{Row: row, Col: col}
}

// ParseCellRef parses "B7" or "$B$7".
func ParseCellRef(s string) (CellRef, error) {
	name := strings.ReplaceAll(strings.TrimSpace(s), "$", "")
	i := 0
	for i < len(name) && isAlpha(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return CellRef{}, fmt.Errorf("invalid cell reference: %q", s)
	}
	col, err := ColumnNumber(name[:i])
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	row, err := strconv.Atoi(name[i:])
	if err != nil || row < 1 {
		return CellRef{}, fmt.Errorf("invalid row in cell reference: %q", s)
	}
	return CellRef{Row: row, Col: col}, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// String formats the reference as "B7".
func (c CellRef) String() string {
	return ColumnName(c.Col) + strconv.Itoa(c.Row)
}

// Absolute formats the reference as "$B$7".
func (c CellRef) Absolute() string {
	return "$" + ColumnName(c.Col) + "$" + strconv.Itoa(c.Row)
}

// RangeRef is a rectangular block on a named sheet.
type RangeRef struct {
	Sheet string
	First CellRef
	Last  CellRef
}

// Formula renders the range as an absolute sheet-qualified formula:
// 'Table'!$B$2:$B$5, or 'Table'!$B$1 when the range is a single cell.
func (r RangeRef) Formula() string {
	var b strings.Builder
	b.WriteString(QuoteSheetName(r.Sheet))
	b.WriteByte('!')
	b.WriteString(r.First.Absolute())
	if r.Last != r.First {
		b.WriteByte(':')
		b.WriteString(r.Last.Absolute())
	}
	return b.String()
}

// Len is the number of cells in the range.
func (r RangeRef) Len() int {
	return (r.Last.Row - r.First.Row + 1) * (r.Last.Col - r.First.Col + 1)
}

// QuoteSheetName wraps a sheet name in apostrophes, doubling embedded ones.
func QuoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// SafeSheetName sanitizes a string for use as a worksheet name.
// It replaces forbidden characters ([]*?/\:) with underscore and truncates to 31 chars.
func SafeSheetName(name string) string {
	runes := []rune(name)
	for i, r := range runes {
		if strings.ContainsRune(`/\:*?[]`, r) {
			runes[i] = '_'
		}
	}
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return strings.Trim(string(runes), "'")
}
