package instrument

import (
	"strings"

	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/worklist"
)

var (
	agilentSampleTypes = []string{"No injection", "Blank", "Sample", "QC"}
	agilentInjOptions  = []string{"No injection", "As method"}
)

// Standards run as ordinary samples on the Agilent.
var agilentTypeMap = map[sequence.Category]string{
	sequence.Sample:   "Sample",
	sequence.Standard: "Sample",
	sequence.QC:       "QC",
	sequence.Blank:    "Blank",
}

func init() { Register(agilentQQQ{}) }

type agilentQQQ struct{}

func (agilentQQQ) Name() string { return "AgilentQQQ" }

func (agilentQQQ) PlateTypes() []string { return []string{"96-well plate"} }

func (agilentQQQ) Columns(Settings) []worklist.Column {
	cols := columns("Sample Name", "Sample Position", "Method", "Data Folder",
		"Data File", "Sample Type", "Injection Volume")
	setColumn(cols, "Sample Position", nil, "Format: P1-A1")
	setColumn(cols, "Sample Type", agilentSampleTypes, "")
	setColumn(cols, "Injection Volume", agilentInjOptions, "")
	return cols
}

// Render leaves sample positions blank; the volume comes from the method.
func (p agilentQQQ) Render(seq []sequence.Entry, names []string, s Settings) *worklist.Table {
	t := &worklist.Table{
		Instrument:     p.Name(),
		Columns:        p.Columns(s),
		PositionColumn: "Sample Position",
		NameColumn:     "Sample Name",
	}
	for i, e := range seq {
		name := nameAt(seq, names, i)
		sampleType, ok := agilentTypeMap[e.Category]
		if !ok {
			sampleType = "Sample"
		}
		t.Rows = append(t.Rows, []string{
			name,
			"",
			s.MSMethod,
			s.DataFolder,
			name,
			sampleType,
			"As method",
		})
	}
	return t
}

func (p agilentQQQ) Check(s Settings, _ int) []string {
	if s.DataFolder != "" && !strings.HasPrefix(strings.ToUpper(s.DataFolder), "D:") {
		return []string{p.Name() + " requires the data folder on the D: drive"}
	}
	return nil
}
