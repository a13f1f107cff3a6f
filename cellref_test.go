package xlsxchart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestColumnName_KnownValues(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
		{16384, "XFD"},
		{0, ""},
		{-3, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnName(tt.n), "ColumnName(%d)", tt.n)
	}
}

func TestColumnName_RoundTrip(t *testing.T) {
	for n := 1; n <= 100000; n++ {
		name := ColumnName(n)
		got, err := ColumnNumber(name)
		require.NoError(t, err, name)
		if got != n {
			t.Fatalf("ColumnNumber(ColumnName(%d)) = %d (%q)", n, got, name)
		}
	}
}

func TestColumnName_MatchesExcelize(t *testing.T) {
	for n := 1; n <= 16384; n++ {
		want, err := excelize.ColumnNumberToName(n)
		require.NoError(t, err)
		if got := ColumnName(n); got != want {
			t.Fatalf("ColumnName(%d) = %q, excelize says %q", n, got, want)
		}
	}
}

func TestColumnNumber_Invalid(t *testing.T) {
	for _, s := range []string{"", "A1", "$A", "é"} {
		_, err := ColumnNumber(s)
		assert.Error(t, err, s)
	}
	n, err := ColumnNumber("ab")
	require.NoError(t, err)
	assert.Equal(t, 28, n)
}

func TestParseCellRef(t *testing.T) {
	ref, err := ParseCellRef("$B$7")
	require.NoError(t, err)
	assert.Equal(t, Cell(7, 2), ref)
	assert.Equal(t, "B7", ref.String())
	assert.Equal(t, "$B$7", ref.Absolute())

	for _, s := range []string{"", "7", "B", "B0", "B-1", "1B"} {
		_, err := ParseCellRef(s)
		assert.Error(t, err, s)
	}
}

func TestRangeRef_Formula(t *testing.T) {
	r := RangeRef{Sheet: "Table", First: Cell(2, 2), Last: Cell(5, 2)}
	assert.Equal(t, "'Table'!$B$2:$B$5", r.Formula())
	assert.Equal(t, 4, r.Len())

	single := RangeRef{Sheet: "Bob's data", First: Cell(1, 3), Last: Cell(1, 3)}
	assert.Equal(t, "'Bob''s data'!$C$1", single.Formula())
	assert.Equal(t, 1, single.Len())
}

func TestSafeSheetName(t *testing.T) {
	assert.Equal(t, "Q1_Q2 _draft_", SafeSheetName("Q1/Q2 [draft]"))
	assert.Equal(t, "quoted", SafeSheetName("'quoted'"))
	long := SafeSheetName("A very long chart title that exceeds the limit")
	assert.Len(t, []rune(long), 31)
}
