// Package instrument renders sequences into the column layouts expected by
// each supported mass spectrometer's acquisition software.
package instrument

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/worklist"
)

// Injection volume limits in µL.
const (
	MinInjectionVolume = 0.01
	MaxInjectionVolume = 100.0
)

// Settings are the instrument-side values shared by every row.
type Settings struct {
	MSMethod        string  `json:"ms_method,omitempty" yaml:"ms_method"`
	LCMethod        string  `json:"lc_method,omitempty" yaml:"lc_method"`
	PlateType       string  `json:"plate_type,omitempty" yaml:"plate_type"`
	PlateNumber     int     `json:"plate_number,omitempty" yaml:"plate_number"`
	InjectionVolume float64 `json:"injection_volume,omitempty" yaml:"injection_volume"`
	DataFolder      string  `json:"data_folder,omitempty" yaml:"data_folder"`
}

// WithDefaults fills unset fields: plate number 1 and 1.0 µL.
func (s Settings) WithDefaults() Settings {
	if s.PlateNumber == 0 {
		s.PlateNumber = 1
	}
	if s.InjectionVolume == 0 {
		s.InjectionVolume = 1.0
	}
	return s
}

// Profile renders one instrument's worklist layout.
type Profile interface {
	// Name is the registry key ("Sciex7500").
	Name() string
	// Columns describes the table columns in output order.
	Columns(s Settings) []worklist.Column
	// PlateTypes lists the plate types the instrument accepts.
	PlateTypes() []string
	// Render builds one row per entry. names[i] is the sample name of seq[i].
	Render(seq []sequence.Entry, names []string, s Settings) *worklist.Table
	// Check returns advisories about s for a batch of rows injections.
	Check(s Settings, rows int) []string
}

var profiles = map[string]Profile{}

// Register adds p to the registry, replacing any profile of the same name.
func Register(p Profile) { profiles[p.Name()] = p }

// Lookup finds a profile by name, case-insensitively.
func Lookup(name string) (Profile, bool) {
	if p, ok := profiles[name]; ok {
		return p, true
	}
	for key, p := range profiles {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return nil, false
}

// Names returns the registered instrument names, sorted.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkVolume is shared by profiles that write an injection volume.
func checkVolume(s Settings) []string {
	v := s.InjectionVolume
	if v < MinInjectionVolume || v > MaxInjectionVolume {
		return []string{fmt.Sprintf("injection volume %s µL is outside %s-%s µL",
			formatVolume(v), formatVolume(MinInjectionVolume), formatVolume(MaxInjectionVolume))}
	}
	return nil
}

// formatVolume prints a volume the way acquisition software imports it:
// shortest decimal form, always with a fractional part ("1.0", "2.25").
func formatVolume(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func columns(names ...string) []worklist.Column {
	cols := make([]worklist.Column, len(names))
	for i, n := range names {
		cols[i] = worklist.Column{Name: n}
	}
	return cols
}

func setColumn(cols []worklist.Column, name string, options []string, help string) {
	for i := range cols {
		if cols[i].Name == name {
			cols[i].Options = options
			cols[i].Help = help
			return
		}
	}
}

// nameAt tolerates a names slice shorter than the sequence.
func nameAt(seq []sequence.Entry, names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return seq[i].Category.String() + strconv.Itoa(seq[i].Index)
}
