package instrument

import (
	"fmt"
	"strconv"

	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/worklist"
)

// Sciex 7500 plate types and their vial capacity.
const (
	PlateVT54  = "1.5mL VT54 (54 vial)"
	PlateMTP96 = "MTP 96"

	sciexRack     = "SIL-40 Drawer"
	sciexMaxPlate = 3
)

var sciexCapacity = map[string]int{
	PlateVT54:  54,
	PlateMTP96: 96,
}

func init() { Register(sciex7500{}) }

type sciex7500 struct{}

func (sciex7500) Name() string { return "Sciex7500" }

func (sciex7500) PlateTypes() []string { return []string{PlateVT54, PlateMTP96} }

func (p sciex7500) Columns(s Settings) []worklist.Column {
	cols := columns("Sample Name", "MS Method", "LC Method", "Rack Type", "Plate Type",
		"Plate Number", "Vial Position", "Injection Volume", "Data File")
	setColumn(cols, "Plate Type", p.PlateTypes(), "")
	setColumn(cols, "Plate Number", []string{"1", "2", "3"}, "")
	setColumn(cols, "Vial Position", nil, fmt.Sprintf("Valid range: 1-%d", plateCapacity(s.plateType())))
	return cols
}

func (s Settings) plateType() string {
	if s.PlateType == "" {
		return PlateVT54
	}
	return s.PlateType
}

// plateCapacity is 54 for the VT54 rack and 96 for anything else.
func plateCapacity(plateType string) int {
	if n, ok := sciexCapacity[plateType]; ok {
		return n
	}
	return sciexCapacity[PlateMTP96]
}

// Render numbers vials in injection order. Rows beyond the plate's
// capacity get a blank vial position for the operator to assign.
func (p sciex7500) Render(seq []sequence.Entry, names []string, s Settings) *worklist.Table {
	s = s.WithDefaults()
	plateType := s.plateType()
	capacity := plateCapacity(plateType)

	t := &worklist.Table{
		Instrument:     p.Name(),
		Columns:        p.Columns(s),
		PositionColumn: "Vial Position",
		NameColumn:     "Sample Name",
	}
	for i := range seq {
		name := nameAt(seq, names, i)
		vial := ""
		if i+1 <= capacity {
			vial = strconv.Itoa(i + 1)
		}
		dataFile := name
		if s.DataFolder != "" {
			dataFile = s.DataFolder + `\` + name
		}
		t.Rows = append(t.Rows, []string{
			name,
			s.MSMethod,
			s.LCMethod,
			sciexRack,
			plateType,
			strconv.Itoa(s.PlateNumber),
			vial,
			formatVolume(s.InjectionVolume),
			dataFile,
		})
	}
	return t
}

func (p sciex7500) Check(s Settings, rows int) []string {
	s = s.WithDefaults()
	var out []string
	plateType := s.plateType()
	if _, ok := sciexCapacity[plateType]; !ok {
		out = append(out, fmt.Sprintf("unknown plate type %q for %s (expected %q or %q)", plateType, p.Name(), PlateVT54, PlateMTP96))
	}
	if capacity := plateCapacity(plateType); rows > capacity {
		out = append(out, fmt.Sprintf("%d injections exceed the %d-vial capacity of %s; vial positions after %d are left blank",
			rows, capacity, plateType, capacity))
	}
	if s.PlateNumber < 1 || s.PlateNumber > sciexMaxPlate {
		out = append(out, fmt.Sprintf("plate number %d is outside 1-%d", s.PlateNumber, sciexMaxPlate))
	}
	return append(out, checkVolume(s)...)
}
