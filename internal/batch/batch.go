// Package batch describes one worklist generation pass and resolves it,
// together with an optional stored template, into builder and renderer
// inputs.
package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/msbatch/internal/instrument"
	"github.com/hpungsan/msbatch/internal/naming"
	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/template"
)

// Batch is a generation request as written in a batch file or sent by an
// MCP client. Inline values override the named template.
type Batch struct {
	Project            string                         `json:"project,omitempty" yaml:"project"`
	Instrument         string                         `json:"instrument,omitempty" yaml:"instrument"`
	DataFolder         string                         `json:"data_folder,omitempty" yaml:"data_folder"`
	Template           string                         `json:"template,omitempty" yaml:"template"`
	SampleTypes        map[string]template.SampleType `json:"sample_types,omitempty" yaml:"sample_types"`
	CategoryOrder      []string                       `json:"category_order,omitempty" yaml:"category_order"`
	Naming             *Naming                        `json:"naming,omitempty" yaml:"naming"`
	InstrumentSettings instrument.Settings            `json:"instrument_settings,omitempty" yaml:"instrument_settings"`
}

// Naming is the naming section of a batch.
type Naming struct {
	Mode       string                  `json:"mode,omitempty" yaml:"mode"`
	Affixes    map[string]naming.Affix `json:"affixes,omitempty" yaml:"affixes"`
	Components []string                `json:"components,omitempty" yaml:"components"`
	// Names is an inline imported list; Import reads one from a file.
	Names  []string `json:"names,omitempty" yaml:"names"`
	Import *Import  `json:"import,omitempty" yaml:"import"`
}

// Import points at a CSV file of sample names.
type Import struct {
	Path   string `json:"path" yaml:"path"`
	Column string `json:"column,omitempty" yaml:"column"`
}

// Plan is a resolved batch: everything the builder, resolver and renderer
// need.
type Plan struct {
	Settings           sequence.Settings
	Order              sequence.Order
	Naming             naming.Config
	Instrument         string
	InstrumentSettings instrument.Settings
}

// projectPattern is the recommended project name form, e.g. MPG_25-12_GaIEMA.
var projectPattern = regexp.MustCompile(`^[A-Za-z]{2,3}_\d{2}-\d{2}_\w+$`)

// ValidProjectName reports whether name follows the initials_YY-MM_Code form.
func ValidProjectName(name string) bool {
	return projectPattern.MatchString(name)
}

// Load reads a batch file. YAML and JSON are both accepted; unknown fields
// are rejected.
func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a single YAML or JSON batch document.
func Decode(data []byte) (*Batch, error) {
	var b Batch
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return &b, nil
		}
		return nil, fmt.Errorf("parsing batch: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, fmt.Errorf("parsing batch: multiple YAML documents are not supported")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing batch: %w", err)
	}
	return &b, nil
}

// Check validates the inline values of b. Stored templates are lenient
// (unknown labels fall back) but a batch written by hand is not.
func (b *Batch) Check() error {
	if err := checkCategoryKeys(sortedKeys(b.SampleTypes)); err != nil {
		return fmt.Errorf("sample_types: %w", err)
	}
	for _, key := range sortedKeys(b.SampleTypes) {
		st := b.SampleTypes[key]
		c, _ := sequence.ParseCategory(key)
		if st.Count < 0 {
			return fmt.Errorf("sample_types.%s: count must be non-negative", key)
		}
		if st.Interval < 0 {
			return fmt.Errorf("sample_types.%s: interval must be non-negative", key)
		}
		if st.StartCount != nil && *st.StartCount < 0 {
			return fmt.Errorf("sample_types.%s: start_count must be non-negative", key)
		}
		if c != sequence.Sample && st.Rule != "" {
			if _, ok := template.ParseRule(st.Rule); !ok {
				return fmt.Errorf("sample_types.%s: unknown rule %q", key, st.Rule)
			}
		}
	}
	if len(b.CategoryOrder) > 0 {
		if _, err := sequence.ParseOrder(b.CategoryOrder); err != nil {
			return fmt.Errorf("category_order: %w", err)
		}
	}
	if b.Naming != nil {
		if _, err := naming.ParseMode(b.Naming.Mode); err != nil {
			return fmt.Errorf("naming: %w", err)
		}
		if _, err := naming.ParseComponents(b.Naming.Components); err != nil {
			return fmt.Errorf("naming: %w", err)
		}
		if err := checkCategoryKeys(sortedKeys(b.Naming.Affixes)); err != nil {
			return fmt.Errorf("naming.affixes: %w", err)
		}
		if b.Naming.Import != nil && b.Naming.Import.Path == "" {
			return fmt.Errorf("naming.import: path is required")
		}
	}
	if s := b.InstrumentSettings; s.PlateNumber < 0 || s.InjectionVolume < 0 {
		return fmt.Errorf("instrument_settings: plate_number and injection_volume must be non-negative")
	}
	return nil
}

// checkCategoryKeys requires every key to name a category and no category
// to appear under two spellings ("qc" and "QC").
func checkCategoryKeys(keys []string) error {
	seen := make(map[sequence.Category]string, len(keys))
	for _, key := range keys {
		c, err := sequence.ParseCategory(key)
		if err != nil {
			return err
		}
		if prev, ok := seen[c]; ok {
			return fmt.Errorf("category %s listed twice (%q and %q)", c, prev, key)
		}
		seen[c] = key
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge overlays the inline values of b on base, which may be nil, and
// returns the combined template. Category keys of both sides are
// canonicalized so "QC" overrides a stored "qc".
func (b *Batch) Merge(base *template.Template) template.Template {
	var merged template.Template
	if base != nil {
		merged = base.Canonical()
	}
	if merged.SampleTypes == nil {
		merged.SampleTypes = make(map[string]template.SampleType)
	}

	overlay := template.Template{SampleTypes: b.SampleTypes, CategoryOrder: b.CategoryOrder}
	if b.Naming != nil {
		overlay.Naming = &template.Naming{Affixes: b.Naming.Affixes}
	}
	overlay = overlay.Canonical()

	for key, st := range overlay.SampleTypes {
		merged.SampleTypes[key] = st
	}
	if len(overlay.CategoryOrder) > 0 {
		merged.CategoryOrder = overlay.CategoryOrder
	}
	if n := b.Naming; n != nil {
		if n.Mode != "" {
			merged.NamingMode = n.Mode
		}
		if len(n.Affixes) > 0 || len(n.Components) > 0 {
			out := &template.Naming{Affixes: make(map[string]naming.Affix)}
			if merged.Naming != nil {
				out.Components = merged.Naming.Components
				for k, v := range merged.Naming.Affixes {
					out.Affixes[k] = v
				}
			}
			for key, a := range overlay.Naming.Affixes {
				out.Affixes[key] = a
			}
			if len(n.Components) > 0 {
				out.Components = n.Components
			}
			merged.Naming = out
		}
	}
	return merged
}

// Resolve combines b with its template (nil when the batch names none) into
// a plan. defaultInstrument is used when the batch names no instrument.
// Imported names from a file are not read here; the caller fills
// Plan.Naming.Imported.
func (b *Batch) Resolve(base *template.Template, defaultInstrument string) (*Plan, error) {
	if err := b.Check(); err != nil {
		return nil, err
	}
	merged := b.Merge(base)

	plan := &Plan{
		Settings:           merged.Settings(),
		Order:              merged.Order(),
		Naming:             merged.NamingConfig(),
		Instrument:         b.Instrument,
		InstrumentSettings: b.InstrumentSettings,
	}
	if plan.Instrument == "" {
		plan.Instrument = defaultInstrument
	}
	if plan.InstrumentSettings.DataFolder == "" {
		plan.InstrumentSettings.DataFolder = b.DataFolder
	}
	if b.Naming != nil && len(b.Naming.Names) > 0 {
		plan.Naming.Imported = b.Naming.Names
	}
	return plan, nil
}

// Advisories returns non-fatal findings about b and its plan. None of them
// stop a generation pass.
func Advisories(b *Batch, plan *Plan) []string {
	var out []string
	if b.Project != "" && !ValidProjectName(b.Project) {
		out = append(out, fmt.Sprintf("project name %q doesn't match recommended format (e.g., MPG_25-12_GaIEMA)", b.Project))
	}
	if !plan.Settings[sequence.QC].Enabled && !plan.Settings[sequence.Blank].Enabled {
		out = append(out, "consider adding QC or Blank samples for quality assurance")
	}
	if plan.Naming.Mode == naming.ModeManualEntry {
		out = append(out, "manual naming is not stored; entries use default names")
	}
	if plan.Naming.Mode == naming.ModeImportedList && len(plan.Naming.Imported) == 0 {
		out = append(out, "imported naming selected but no names were supplied; entries use default names")
	}
	return out
}
