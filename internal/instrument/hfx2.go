package instrument

import (
	"strings"

	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/worklist"
)

var hfxSampleTypes = []string{"Blank", "Unknown", "QC", "Std Bracket", "Std Update", "Std Clear", "Start Bracket"}

var hfxTypeMap = map[sequence.Category]string{
	sequence.Sample:   "Unknown",
	sequence.Standard: "Std Bracket",
	sequence.QC:       "QC",
	sequence.Blank:    "Blank",
}

// Sample types that carry a calibration level and sample weight.
var hfxLevelTypes = map[string]bool{
	"QC":          true,
	"Std Bracket": true,
	"Std Clear":   true,
	"Std Update":  true,
}

func init() { Register(hfx2{}) }

type hfx2 struct{}

func (hfx2) Name() string { return "HFX-2" }

func (hfx2) PlateTypes() []string { return []string{"96-well plate"} }

func (hfx2) Columns(Settings) []worklist.Column {
	cols := columns("Sample Type", "File Name", "Sample ID", "Path", "Instrument Method",
		"Process Method", "Calibration File", "Position", "Inj Vol", "Level",
		"Sample Wt", "Sample Vol", "ISTD Amt", "Dil Factor", "L1 Study",
		"L2 Client", "L3 Laboratory", "L4 Company", "L5 Phone", "Comment", "Sample Name")
	setColumn(cols, "Sample Type", hfxSampleTypes, "")
	setColumn(cols, "Position", nil, "Format: G:A1 to G:H12")
	return cols
}

func (p hfx2) Render(seq []sequence.Entry, names []string, s Settings) *worklist.Table {
	s = s.WithDefaults()
	t := &worklist.Table{
		Instrument:     p.Name(),
		Columns:        p.Columns(s),
		PositionColumn: "Position",
		NameColumn:     "Sample Name",
	}
	for i, e := range seq {
		name := nameAt(seq, names, i)
		sampleType, ok := hfxTypeMap[e.Category]
		if !ok {
			sampleType = "Unknown"
		}
		level, weight := "", ""
		if hfxLevelTypes[sampleType] {
			level, weight = "1", "0.0"
		}
		t.Rows = append(t.Rows, []string{
			sampleType,
			name + ".raw",
			name,
			s.DataFolder,
			s.MSMethod,
			"", // Process Method
			"", // Calibration File
			"", // Position
			formatVolume(s.InjectionVolume),
			level,
			weight,
			"", // Sample Vol
			"", // ISTD Amt
			"1",
			"", "", "", "", "", // L1-L5
			"", // Comment
			name,
		})
	}
	return t
}

func (p hfx2) Check(s Settings, _ int) []string {
	s = s.WithDefaults()
	var out []string
	if s.MSMethod != "" && !strings.HasSuffix(s.MSMethod, ".meth") {
		out = append(out, "method file should have .meth extension")
	}
	return append(out, checkVolume(s)...)
}
