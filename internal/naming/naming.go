// Package naming derives display names for sequence entries.
package naming

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hpungsan/msbatch/internal/sequence"
)

// Mode selects how names are derived.
type Mode string

const (
	ModeNone         Mode = "none"
	ModeAutoBuild    Mode = "auto_build"
	ModeManualEntry  Mode = "manual"
	ModeImportedList Mode = "imported"
)

// Labels as stored in templates by the batch generator.
var modeLabels = map[Mode]string{
	ModeNone:         "None",
	ModeAutoBuild:    "Auto-build (Prefix + Index + Suffix)",
	ModeManualEntry:  "Enter each name manually",
	ModeImportedList: "Import from CSV/Excel",
}

// Label returns the stored label of m.
func (m Mode) Label() string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return modeLabels[ModeNone]
}

// ParseMode accepts a short mode name or a stored label.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ModeNone, nil
	}
	for m, label := range modeLabels {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, label) {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("unknown naming mode %q", s)
}

// Component is one part of an auto-built name.
type Component string

const (
	ComponentPrefix Component = "prefix"
	ComponentIndex  Component = "index"
	ComponentSuffix Component = "suffix"
)

// DefaultComponents is prefix, index, suffix.
func DefaultComponents() []Component {
	return []Component{ComponentPrefix, ComponentIndex, ComponentSuffix}
}

// ParseComponents parses component names, rejecting unknown or repeated ones.
func ParseComponents(names []string) ([]Component, error) {
	out := make([]Component, 0, len(names))
	seen := make(map[Component]bool, len(names))
	for _, n := range names {
		c := Component(strings.ToLower(strings.TrimSpace(n)))
		switch c {
		case ComponentPrefix, ComponentIndex, ComponentSuffix:
		default:
			return nil, fmt.Errorf("unknown name component %q", n)
		}
		if seen[c] {
			return nil, fmt.Errorf("name component %q listed twice", n)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// Affix configures auto-built names for one category.
type Affix struct {
	Prefix     string `json:"prefix" yaml:"prefix"`
	Suffix     string `json:"suffix,omitempty" yaml:"suffix"`
	IndexStart int    `json:"index_start,omitempty" yaml:"index_start"`
}

var defaultPrefixes = map[sequence.Category]string{
	sequence.Standard: "STA",
	sequence.Sample:   "SAM",
	sequence.QC:       "QC",
	sequence.Blank:    "BLA",
}

// DefaultAffix returns the affix used when none is configured for c.
func DefaultAffix(c sequence.Category) Affix {
	return Affix{Prefix: defaultPrefixes[c], IndexStart: 1}
}

// Config is the naming configuration of a batch.
type Config struct {
	Mode       Mode
	Affixes    map[sequence.Category]Affix
	Components []Component
	Imported   []string
}

// Affix returns the configured affix for c, filling defaults. An IndexStart
// of 0 means 1.
func (c Config) Affix(cat sequence.Category) Affix {
	a, ok := c.Affixes[cat]
	if !ok {
		return DefaultAffix(cat)
	}
	if a.IndexStart == 0 {
		a.IndexStart = 1
	}
	return a
}

// plain is the name used by ModeNone and every fallback.
func plain(e sequence.Entry) string {
	return e.Category.String() + strconv.Itoa(e.Index)
}

func isDefaultOrder(components []Component) bool {
	if len(components) == 0 {
		return true
	}
	def := DefaultComponents()
	if len(components) != len(def) {
		return false
	}
	for i := range def {
		if components[i] != def[i] {
			return false
		}
	}
	return true
}

func autoBuild(e sequence.Entry, cfg Config) string {
	a := cfg.Affix(e.Category)
	index := strconv.Itoa(a.IndexStart + e.Index - 1)

	if isDefaultOrder(cfg.Components) {
		name := a.Prefix + "_" + index
		if a.Suffix != "" {
			name += "_" + a.Suffix
		}
		return name
	}

	parts := make([]string, 0, len(cfg.Components))
	for _, comp := range cfg.Components {
		var p string
		switch comp {
		case ComponentPrefix:
			p = a.Prefix
		case ComponentIndex:
			p = index
		case ComponentSuffix:
			p = a.Suffix
		}
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}
