package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/msbatch/internal/naming"
	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/template"
)

const yamlBatch = `
project: MPG_25-12_GaIEMA
instrument: Sciex7500
data_folder: D:\Data\GaIEMA
sample_types:
  samples: {enabled: true, count: 10}
  qc: {enabled: true, count: 1, rule: At fixed interval, interval: 5}
naming:
  mode: auto_build
  affixes:
    qc: {prefix: Pool, index_start: 1}
instrument_settings:
  ms_method: D:\Methods\ms.dam
  injection_volume: 2
`

func TestDecode_YAML(t *testing.T) {
	b, err := Decode([]byte(yamlBatch))
	require.NoError(t, err)

	require.Equal(t, "MPG_25-12_GaIEMA", b.Project)
	require.Equal(t, `D:\Data\GaIEMA`, b.DataFolder)
	require.Equal(t, 10, b.SampleTypes["samples"].Count)
	require.Equal(t, "At fixed interval", b.SampleTypes["qc"].Rule)
	require.Equal(t, "Pool", b.Naming.Affixes["qc"].Prefix)
	require.Equal(t, 2.0, b.InstrumentSettings.InjectionVolume)
}

func TestDecode_JSON(t *testing.T) {
	b, err := Decode([]byte(`{"instrument": "HFX-2", "category_order": ["qc", "samples", "standards", "blanks"]}`))
	require.NoError(t, err)
	require.Equal(t, "HFX-2", b.Instrument)
	require.Len(t, b.CategoryOrder, 4)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("instrument: HFX-2\nflavour: mint\n"))
	require.Error(t, err, "unknown field")

	_, err = Decode([]byte("instrument: a\n---\ninstrument: b\n"))
	require.Error(t, err, "multiple documents")

	b, err := Decode(nil)
	require.NoError(t, err)
	require.Empty(t, b.Instrument)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBatch), 0600))

	b, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Sciex7500", b.Instrument)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve_EndToEnd(t *testing.T) {
	b, err := Decode([]byte(yamlBatch))
	require.NoError(t, err)

	plan, err := b.Resolve(nil, "HFX-2")
	require.NoError(t, err)

	require.Equal(t, "Sciex7500", plan.Instrument)
	require.Equal(t, `D:\Data\GaIEMA`, plan.InstrumentSettings.DataFolder)
	require.Equal(t, naming.ModeAutoBuild, plan.Naming.Mode)

	seq := sequence.Build(plan.Settings, plan.Order)
	require.Len(t, seq, 12)
	require.Equal(t, "Pool_1", naming.Resolve(seq, 0, plan.Naming))
	require.Equal(t, "SAM_1", naming.Resolve(seq, 1, plan.Naming))
}

func TestResolve_DefaultInstrument(t *testing.T) {
	plan, err := (&Batch{}).Resolve(nil, "AgilentQQQ")
	require.NoError(t, err)
	require.Equal(t, "AgilentQQQ", plan.Instrument)
	require.Equal(t, sequence.DefaultSettings(), plan.Settings)
}

func TestMerge_InlineOverridesTemplate(t *testing.T) {
	base := &template.Template{
		SampleTypes: map[string]template.SampleType{
			"samples":   {Enabled: true, Count: 40},
			"standards": {Enabled: true, Count: 3, Rule: "At the start only"},
		},
		NamingMode:    "None",
		CategoryOrder: []string{"blanks", "standards", "samples", "qc"},
		Naming: &template.Naming{
			Affixes: map[string]naming.Affix{"standards": {Prefix: "STD"}},
		},
	}
	b := &Batch{
		SampleTypes: map[string]template.SampleType{"Sample": {Enabled: true, Count: 8}},
		Naming: &Naming{
			Mode:    "Auto-build (Prefix + Index + Suffix)",
			Affixes: map[string]naming.Affix{"samples": {Prefix: "Liver"}},
		},
	}

	merged := b.Merge(base)

	require.Equal(t, 8, merged.SampleTypes["samples"].Count)
	require.Equal(t, 3, merged.SampleTypes["standards"].Count)
	require.Equal(t, "Auto-build (Prefix + Index + Suffix)", merged.NamingMode)
	require.Equal(t, base.CategoryOrder, merged.CategoryOrder)
	require.Equal(t, "STD", merged.Naming.Affixes["standards"].Prefix)
	require.Equal(t, "Liver", merged.Naming.Affixes["samples"].Prefix)

	// The stored template is untouched.
	require.Equal(t, 40, base.SampleTypes["samples"].Count)
	require.Len(t, base.Naming.Affixes, 1)
}

func TestMerge_DisplayKeysInStoredTemplate(t *testing.T) {
	base := &template.Template{
		SampleTypes: map[string]template.SampleType{
			"Sample": {Enabled: true, Count: 10},
			"QC":     {Enabled: true, Count: 1, Rule: "At fixed interval", Interval: 5},
		},
		CategoryOrder: []string{"QC", "Sample", "Standard", "Blank"},
	}
	b := &Batch{SampleTypes: map[string]template.SampleType{"qc": {Enabled: true, Count: 2, Rule: "At fixed interval", Interval: 5}}}

	merged := b.Merge(base)

	require.Len(t, merged.SampleTypes, 2)
	require.Equal(t, 10, merged.SampleTypes["samples"].Count)
	require.Equal(t, 2, merged.SampleTypes["qc"].Count)
	require.Equal(t, []string{"qc", "samples", "standards", "blanks"}, merged.CategoryOrder)

	plan, err := b.Resolve(base, "")
	require.NoError(t, err)
	require.Equal(t, 10, plan.Settings[sequence.Sample].Count)
	require.Equal(t, 2, plan.Settings[sequence.QC].Count)
}

func TestCheck_DuplicateCategory(t *testing.T) {
	b := Batch{SampleTypes: map[string]template.SampleType{
		"qc": {Enabled: true, Count: 20},
		"QC": {Enabled: true, Count: 180},
	}}
	err := b.Check()
	require.Error(t, err)
	require.Contains(t, err.Error(), "sample_types: category QC listed twice")

	b = Batch{Naming: &Naming{Affixes: map[string]naming.Affix{
		"Standard":  {Prefix: "STD"},
		"standards": {Prefix: "CAL"},
	}}}
	err = b.Check()
	require.Error(t, err)
	require.Contains(t, err.Error(), "naming.affixes: category Standard listed twice")

	_, err = b.Resolve(nil, "")
	require.Error(t, err)
}

func TestResolve_InlineNames(t *testing.T) {
	b := &Batch{Naming: &Naming{Mode: "imported", Names: []string{"liver-a", "liver-b"}}}
	plan, err := b.Resolve(nil, "")
	require.NoError(t, err)
	require.Equal(t, naming.ModeImportedList, plan.Naming.Mode)
	require.Equal(t, []string{"liver-a", "liver-b"}, plan.Naming.Imported)
}

func TestCheck(t *testing.T) {
	neg := -1
	tests := []struct {
		name  string
		batch Batch
	}{
		{"unknown category", Batch{SampleTypes: map[string]template.SampleType{"solvent": {}}}},
		{"negative count", Batch{SampleTypes: map[string]template.SampleType{"qc": {Count: -2}}}},
		{"negative start count", Batch{SampleTypes: map[string]template.SampleType{"qc": {StartCount: &neg}}}},
		{"unknown rule", Batch{SampleTypes: map[string]template.SampleType{"qc": {Rule: "Whenever"}}}},
		{"short order", Batch{CategoryOrder: []string{"qc"}}},
		{"unknown mode", Batch{Naming: &Naming{Mode: "telepathy"}}},
		{"bad component", Batch{Naming: &Naming{Components: []string{"date"}}}},
		{"import without path", Batch{Naming: &Naming{Import: &Import{Column: "Name"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.batch.Check())
			_, err := tt.batch.Resolve(nil, "")
			require.Error(t, err)
		})
	}

	// Sample's rule is never read, so any label is accepted.
	ok := Batch{SampleTypes: map[string]template.SampleType{"samples": {Rule: "anything"}}}
	require.NoError(t, ok.Check())
}

func TestValidProjectName(t *testing.T) {
	valid := []string{"MPG_25-12_GaIEMA", "ab_01-02_x", "ABC_99-99_Proj_2"}
	invalid := []string{"", "M_25-12_X", "ABCD_25-12_X", "MPG_2512_X", "MPG_25-12_", "MPG_25-12_Ga-IEMA"}
	for _, name := range valid {
		require.True(t, ValidProjectName(name), name)
	}
	for _, name := range invalid {
		require.False(t, ValidProjectName(name), name)
	}
}

func TestAdvisories(t *testing.T) {
	b := &Batch{Project: "bad name"}
	plan, err := b.Resolve(nil, "")
	require.NoError(t, err)

	advisories := Advisories(b, plan)
	require.Len(t, advisories, 2)
	require.Contains(t, advisories[0], "bad name")
	require.Contains(t, advisories[1], "QC or Blank")

	b = &Batch{
		Project:     "MPG_25-12_GaIEMA",
		SampleTypes: map[string]template.SampleType{"blanks": {Enabled: true, Count: 1, Rule: "At the end only"}},
		Naming:      &Naming{Mode: "imported"},
	}
	plan, err = b.Resolve(nil, "")
	require.NoError(t, err)
	advisories = Advisories(b, plan)
	require.Len(t, advisories, 1)
	require.Contains(t, advisories[0], "no names were supplied")
}
