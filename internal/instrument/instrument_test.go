package instrument

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/worklist"
)

func seqOf(n int) ([]sequence.Entry, []string) {
	seq := []sequence.Entry{
		{Category: sequence.QC, Index: 1},
		{Category: sequence.Standard, Index: 1},
		{Category: sequence.Blank, Index: 1},
	}
	for i := 1; i <= n; i++ {
		seq = append(seq, sequence.Entry{Category: sequence.Sample, Index: i})
	}
	names := make([]string, len(seq))
	for i, e := range seq {
		names[i] = e.Category.String() + string(rune('0'+e.Index%10))
	}
	return seq, names
}

func mustLookup(t *testing.T, name string) Profile {
	t.Helper()
	p, ok := Lookup(name)
	require.True(t, ok, name)
	return p
}

func requireRectangular(t *testing.T, table *worklist.Table, rows int) {
	t.Helper()
	require.Len(t, table.Rows, rows)
	for i, row := range table.Rows {
		require.Len(t, row, len(table.Columns), "row %d", i)
	}
}

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{"AgilentQQQ", "HFX-2", "Sciex7500"}, Names())

	p, ok := Lookup("hfx-2")
	require.True(t, ok)
	require.Equal(t, "HFX-2", p.Name())

	_, ok = Lookup("Orbitrap")
	require.False(t, ok)
}

func TestSciex7500_Render(t *testing.T) {
	p := mustLookup(t, "Sciex7500")
	seq, names := seqOf(2)
	s := Settings{MSMethod: "ms.dam", LCMethod: "lc.lcm", DataFolder: `D:\Data\Proj`}

	table := p.Render(seq, names, s)
	requireRectangular(t, table, len(seq))

	require.Equal(t, []string{"Sample Name", "MS Method", "LC Method", "Rack Type", "Plate Type",
		"Plate Number", "Vial Position", "Injection Volume", "Data File"}, table.Header())
	require.Equal(t, []string{"QC1", "ms.dam", "lc.lcm", "SIL-40 Drawer", PlateVT54, "1", "1", "1.0", `D:\Data\Proj\QC1`}, table.Rows[0])
	require.Equal(t, "4", table.Cell(3, "Vial Position"))
}

func TestSciex7500_VialCapacity(t *testing.T) {
	p := mustLookup(t, "Sciex7500")
	seq, names := seqOf(60) // 63 rows

	table := p.Render(seq, names, Settings{})
	require.Equal(t, "54", table.Cell(53, "Vial Position"))
	require.Equal(t, "", table.Cell(54, "Vial Position"))
	require.Equal(t, "QC1", table.Cell(0, "Data File"), "no folder, bare name")

	table = p.Render(seq, names, Settings{PlateType: PlateMTP96})
	require.Equal(t, "63", table.Cell(62, "Vial Position"))

	advisories := p.Check(Settings{}, 63)
	require.Len(t, advisories, 1)
	require.Contains(t, advisories[0], "54-vial capacity")
}

func TestSciex7500_Check(t *testing.T) {
	p := mustLookup(t, "Sciex7500")

	require.Empty(t, p.Check(Settings{PlateNumber: 2, InjectionVolume: 5}, 10))

	advisories := p.Check(Settings{PlateType: "Deep well", PlateNumber: 4, InjectionVolume: 150}, 10)
	require.Len(t, advisories, 3)
	require.Contains(t, advisories[0], "unknown plate type")
	require.Contains(t, advisories[1], "plate number 4")
	require.Contains(t, advisories[2], "outside 0.01-100.0")
}

func TestAgilentQQQ_Render(t *testing.T) {
	p := mustLookup(t, "AgilentQQQ")
	seq, names := seqOf(1)

	table := p.Render(seq, names, Settings{MSMethod: "m.m", DataFolder: `D:\Data`})
	requireRectangular(t, table, len(seq))

	types := make([]string, len(seq))
	for i := range seq {
		types[i] = table.Cell(i, "Sample Type")
	}
	require.Equal(t, []string{"QC", "Sample", "Blank", "Sample"}, types)
	require.Equal(t, []string{"QC1", "", "m.m", `D:\Data`, "QC1", "QC", "As method"}, table.Rows[0])
}

func TestAgilentQQQ_Check(t *testing.T) {
	p := mustLookup(t, "AgilentQQQ")
	require.Empty(t, p.Check(Settings{DataFolder: `d:\data`}, 1))
	require.Empty(t, p.Check(Settings{}, 1))
	require.Len(t, p.Check(Settings{DataFolder: `C:\data`}, 1), 1)
}

func TestHFX2_Render(t *testing.T) {
	p := mustLookup(t, "HFX-2")
	seq, names := seqOf(1)

	table := p.Render(seq, names, Settings{MSMethod: "x.meth", DataFolder: `D:\Data`, InjectionVolume: 2.5})
	requireRectangular(t, table, len(seq))
	require.Len(t, table.Columns, 21)

	qc := table.Rows[0]
	require.Equal(t, "QC", qc[0])
	require.Equal(t, "QC1.raw", table.Cell(0, "File Name"))
	require.Equal(t, "2.5", table.Cell(0, "Inj Vol"))
	require.Equal(t, "1", table.Cell(0, "Level"))
	require.Equal(t, "0.0", table.Cell(0, "Sample Wt"))
	require.Equal(t, "1", table.Cell(0, "Dil Factor"))
	require.Equal(t, "QC1", table.Cell(0, "Sample Name"))

	require.Equal(t, "Std Bracket", table.Cell(1, "Sample Type"))
	require.Equal(t, "Blank", table.Cell(2, "Sample Type"))
	require.Equal(t, "", table.Cell(2, "Level"))
	require.Equal(t, "Unknown", table.Cell(3, "Sample Type"))
	require.Equal(t, "", table.Cell(3, "Sample Wt"))
}

func TestHFX2_Check(t *testing.T) {
	p := mustLookup(t, "HFX-2")
	require.Empty(t, p.Check(Settings{MSMethod: `D:\m.meth`}, 1))

	advisories := p.Check(Settings{MSMethod: `D:\m.method`}, 1)
	require.Len(t, advisories, 1)
	require.True(t, strings.Contains(advisories[0], ".meth"))
}

func TestRender_ShortNamesFallBack(t *testing.T) {
	seq, _ := seqOf(1)
	for _, name := range Names() {
		table := mustLookup(t, name).Render(seq, []string{"only"}, Settings{})
		require.Equal(t, "only", table.Cell(0, "Sample Name"), name)
		require.Equal(t, "Sample1", table.Cell(3, "Sample Name"), name)
	}
}

func TestFormatVolume(t *testing.T) {
	tests := map[float64]string{1: "1.0", 0.5: "0.5", 2.25: "2.25", 100: "100.0", 0.01: "0.01"}
	for in, want := range tests {
		require.Equal(t, want, formatVolume(in))
	}
}
