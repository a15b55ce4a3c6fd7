package worklist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return &Table{
		Instrument: "Test",
		Columns:    []Column{{Name: "Sample Name"}, {Name: "Position"}, {Name: "Data File"}},
		Rows: [][]string{
			{"QC1", "1", `D:\data\QC1`},
			{"Sample1", "2", `D:\data\Sample1`},
			{"QC1", "1", `D:\data\QC1`},
			{"Blank1", "", "a,b"},
			{"Blank2", "", ""},
		},
		PositionColumn: "Position",
		NameColumn:     "Sample Name",
	}
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name   string
		header bool
		first  string
		lines  int
	}{
		{"without header", false, `QC1,1,D:\data\QC1`, 5},
		{"with header", true, "Sample Name,Position,Data File", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, testTable(), tt.header))

			lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			require.Len(t, lines, tt.lines)
			require.Equal(t, tt.first, lines[0])
			// Cells containing the delimiter are quoted.
			require.Equal(t, `Blank1,,"a,b"`, lines[len(lines)-2])
		})
	}
}

func TestWriteCSV_RaggedRow(t *testing.T) {
	table := testTable()
	table.Rows = append(table.Rows, []string{"short"})

	var buf bytes.Buffer
	err := WriteCSV(&buf, table, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 6")
}

func TestDuplicatePositions(t *testing.T) {
	dups := DuplicatePositions(testTable())
	require.Equal(t, []Duplicate{{Position: "1", Names: []string{"QC1", "QC1"}}}, dups)
}

func TestDuplicatePositions_NoPositionColumn(t *testing.T) {
	table := testTable()
	table.PositionColumn = ""
	require.Nil(t, DuplicatePositions(table))
}

func TestCell(t *testing.T) {
	table := testTable()
	require.Equal(t, "Sample1", table.Cell(1, "Sample Name"))
	require.Equal(t, "", table.Cell(1, "Nope"))
	require.Equal(t, "", table.Cell(99, "Sample Name"))
}

func TestMarkdown(t *testing.T) {
	table := &Table{
		Columns: []Column{{Name: "Name"}, {Name: "Note"}},
		Rows:    [][]string{{"QC1", "a|b"}},
	}
	want := "| Name | Note |\n| --- | --- |\n| QC1 | a\\|b |\n"
	require.Equal(t, want, Markdown(table))
}
