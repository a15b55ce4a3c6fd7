package ops

import (
	"github.com/hpungsan/msbatch/internal/instrument"
	"github.com/hpungsan/msbatch/internal/worklist"
)

// InstrumentInfo describes one registered instrument profile.
type InstrumentInfo struct {
	Name       string            `json:"name"`
	PlateTypes []string          `json:"plate_types,omitempty"`
	Columns    []worklist.Column `json:"columns"`
}

// ListInstrumentsOutput contains the result of the ListInstruments operation.
type ListInstrumentsOutput struct {
	Instruments []InstrumentInfo `json:"instruments"`
}

// ListInstruments describes every registered profile, sorted by name.
// Columns are those produced with default settings.
func ListInstruments() *ListInstrumentsOutput {
	names := instrument.Names()
	out := &ListInstrumentsOutput{Instruments: make([]InstrumentInfo, 0, len(names))}
	for _, name := range names {
		p, _ := instrument.Lookup(name)
		out.Instruments = append(out.Instruments, InstrumentInfo{
			Name:       p.Name(),
			PlateTypes: p.PlateTypes(),
			Columns:    p.Columns(instrument.Settings{}.WithDefaults()),
		})
	}
	return out
}
