// Package template persists named batch configurations.
//
// A template stores the per-category sample types, the naming mode and,
// optionally, the category order and auto-build naming affixes. The stored
// form keeps the labels operators see ("At fixed interval", "None") so that
// files written by earlier tools load unchanged.
package template

import (
	"sort"
	"strings"

	"github.com/hpungsan/msbatch/internal/naming"
	"github.com/hpungsan/msbatch/internal/sequence"
)

// SampleType is the stored configuration of one category.
type SampleType struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Count      int    `json:"count" yaml:"count"`
	Rule       string `json:"rule" yaml:"rule"`
	Interval   int    `json:"interval" yaml:"interval"`
	StartCount *int   `json:"start_count,omitempty" yaml:"start_count,omitempty"`
}

// Naming holds the optional auto-build naming settings of a template.
// Affixes are keyed by category key ("standards", "qc").
type Naming struct {
	Affixes    map[string]naming.Affix `json:"affixes,omitempty" yaml:"affixes,omitempty"`
	Components []string                `json:"components,omitempty" yaml:"components,omitempty"`
}

// Template is a named snapshot of batch configuration.
type Template struct {
	SampleTypes   map[string]SampleType `json:"sample_types" yaml:"sample_types"`
	NamingMode    string                `json:"naming_mode" yaml:"naming_mode"`
	CategoryOrder []string              `json:"category_order,omitempty" yaml:"category_order,omitempty"`
	Naming        *Naming               `json:"naming,omitempty" yaml:"naming,omitempty"`
}

var ruleLabels = map[sequence.Rule]string{
	sequence.RuleStartOnly:              "At the start only",
	sequence.RuleEndOnly:                "At the end only",
	sequence.RuleFixedInterval:          "At fixed interval",
	sequence.RuleStartPlusFixedInterval: "At start + fixed interval",
}

// RuleLabel returns the stored label of r, or "" for an unknown rule.
func RuleLabel(r sequence.Rule) string {
	return ruleLabels[r]
}

// ParseRule accepts a stored label or a short rule name.
func ParseRule(s string) (sequence.Rule, bool) {
	s = strings.TrimSpace(s)
	for r, label := range ruleLabels {
		if strings.EqualFold(s, label) || strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Placement converts the stored rule into a placement. Unknown rules yield
// nil, which makes the category a main-sequence member.
func (st SampleType) Placement() sequence.Placement {
	r, ok := ParseRule(st.Rule)
	if !ok {
		return nil
	}
	switch r {
	case sequence.RuleStartOnly:
		return sequence.StartOnly{}
	case sequence.RuleEndOnly:
		return sequence.EndOnly{}
	case sequence.RuleFixedInterval:
		return sequence.FixedInterval{Interval: st.Interval}
	default:
		p := sequence.StartPlusFixedInterval{Interval: st.Interval}
		if st.StartCount != nil {
			p.StartCount = *st.StartCount
		}
		return p
	}
}

// canonicalKeys maps each category to the key of m it is read from. Keys
// that parse to no category are skipped. When several keys name the same
// category, the canonical key wins, then the first in sorted order.
func canonicalKeys[V any](m map[string]V) map[sequence.Category]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[sequence.Category]string, len(keys))
	for _, k := range keys {
		c, err := sequence.ParseCategory(k)
		if err != nil {
			continue
		}
		if prev, ok := out[c]; ok && (prev == c.Key() || k != c.Key()) {
			continue
		}
		out[c] = k
	}
	return out
}

// Canonical returns a copy of t with sample types, affixes and the category
// order keyed by category key ("qc", "standards"). "QC" and "Sample" are
// accepted on input; unknown keys are dropped.
func (t Template) Canonical() Template {
	out := Template{NamingMode: t.NamingMode}
	if t.SampleTypes != nil {
		out.SampleTypes = make(map[string]SampleType, len(t.SampleTypes))
		for c, k := range canonicalKeys(t.SampleTypes) {
			out.SampleTypes[c.Key()] = t.SampleTypes[k]
		}
	}
	for _, key := range t.CategoryOrder {
		if c, err := sequence.ParseCategory(key); err == nil {
			out.CategoryOrder = append(out.CategoryOrder, c.Key())
		} else {
			out.CategoryOrder = append(out.CategoryOrder, key)
		}
	}
	if t.Naming != nil {
		n := &Naming{Components: t.Naming.Components}
		if t.Naming.Affixes != nil {
			n.Affixes = make(map[string]naming.Affix, len(t.Naming.Affixes))
			for c, k := range canonicalKeys(t.Naming.Affixes) {
				n.Affixes[c.Key()] = t.Naming.Affixes[k]
			}
		}
		out.Naming = n
	}
	return out
}

// Settings converts the stored sample types. Categories missing from the
// template keep their built-in defaults.
func (t Template) Settings() sequence.Settings {
	s := sequence.DefaultSettings()
	keys := canonicalKeys(t.SampleTypes)
	for _, c := range sequence.Categories {
		k, ok := keys[c]
		if !ok {
			continue
		}
		st := t.SampleTypes[k]
		cfg := sequence.CategoryConfig{Enabled: st.Enabled, Count: st.Count}
		if c != sequence.Sample {
			cfg.Placement = st.Placement()
		}
		s = s.With(c, cfg)
	}
	return s
}

// Order returns the stored category order, normalized to a full permutation.
func (t Template) Order() sequence.Order {
	var order sequence.Order
	for _, key := range t.CategoryOrder {
		if c, err := sequence.ParseCategory(key); err == nil {
			order = append(order, c)
		}
	}
	return order.Normalize()
}

// NamingConfig returns the naming configuration of the template. Unknown
// modes fall back to none. Imported names are never stored.
func (t Template) NamingConfig() naming.Config {
	mode, err := naming.ParseMode(t.NamingMode)
	if err != nil {
		mode = naming.ModeNone
	}
	cfg := naming.Config{Mode: mode}
	if t.Naming == nil {
		return cfg
	}
	for c, key := range canonicalKeys(t.Naming.Affixes) {
		if cfg.Affixes == nil {
			cfg.Affixes = make(map[sequence.Category]naming.Affix)
		}
		cfg.Affixes[c] = t.Naming.Affixes[key]
	}
	if comps, err := naming.ParseComponents(t.Naming.Components); err == nil && len(comps) > 0 {
		cfg.Components = comps
	}
	return cfg
}

// SampleTypeFrom converts one category configuration into its stored form.
func SampleTypeFrom(c sequence.Category, cfg sequence.CategoryConfig) SampleType {
	st := SampleType{Enabled: cfg.Enabled, Count: cfg.Count, Interval: 1}
	switch p := cfg.Placement.(type) {
	case sequence.StartOnly:
		st.Rule = RuleLabel(sequence.RuleStartOnly)
	case sequence.EndOnly:
		st.Rule = RuleLabel(sequence.RuleEndOnly)
	case sequence.FixedInterval:
		st.Rule = RuleLabel(sequence.RuleFixedInterval)
		st.Interval = p.Interval
	case sequence.StartPlusFixedInterval:
		st.Rule = RuleLabel(sequence.RuleStartPlusFixedInterval)
		st.Interval = p.Interval
		if p.StartCount > 0 {
			n := p.StartCount
			st.StartCount = &n
		}
	default:
		if c == sequence.Sample {
			// Sample's rule is never read; keep the label older files carry.
			st.Rule = RuleLabel(sequence.RuleStartOnly)
		}
	}
	return st
}

// FromSettings builds a template from in-memory configuration.
func FromSettings(s sequence.Settings, order sequence.Order, cfg naming.Config) Template {
	t := Template{
		SampleTypes: make(map[string]SampleType, len(sequence.Categories)),
		NamingMode:  cfg.Mode.Label(),
	}
	for _, c := range sequence.Categories {
		t.SampleTypes[c.Key()] = SampleTypeFrom(c, s.Get(c))
	}
	if len(order) > 0 {
		t.CategoryOrder = order.Normalize().Keys()
	}
	if len(cfg.Affixes) > 0 || len(cfg.Components) > 0 {
		n := &Naming{}
		for c, a := range cfg.Affixes {
			if n.Affixes == nil {
				n.Affixes = make(map[string]naming.Affix)
			}
			n.Affixes[c.Key()] = a
		}
		for _, comp := range cfg.Components {
			n.Components = append(n.Components, string(comp))
		}
		t.Naming = n
	}
	return t
}
