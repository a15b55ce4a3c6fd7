package sequence

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// render formats a sequence as "QC1,Sample1,..." for compact comparisons.
func render(seq []Entry) string {
	parts := make([]string, len(seq))
	for i, e := range seq {
		parts[i] = fmt.Sprintf("%s%d", e.Category, e.Index)
	}
	return strings.Join(parts, ",")
}

func samplesRange(from, to int) string {
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		parts = append(parts, fmt.Sprintf("Sample%d", i))
	}
	return strings.Join(parts, ",")
}

func onlySamples(n int) Settings {
	var s Settings
	s[Sample] = CategoryConfig{Enabled: true, Count: n}
	return s
}

func TestBuild_IntervalBrackets(t *testing.T) {
	s := onlySamples(20).With(QC, CategoryConfig{Enabled: true, Count: 2, Placement: FixedInterval{Interval: 5}})

	got := render(Build(s, DefaultOrder()))
	want := strings.Join([]string{
		"QC1,QC2",
		samplesRange(1, 5), "QC1,QC2",
		samplesRange(6, 10), "QC1,QC2",
		samplesRange(11, 15), "QC1,QC2",
		samplesRange(16, 20),
	}, ",")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EndToEndScenario(t *testing.T) {
	var s Settings
	s[Standard] = CategoryConfig{Enabled: false, Count: 3, Placement: StartOnly{}}
	s[Sample] = CategoryConfig{Enabled: true, Count: 10, Placement: StartOnly{}}
	s[QC] = CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 5}}
	s[Blank] = CategoryConfig{Enabled: false, Count: 2, Placement: EndOnly{}}

	seq := Build(s, DefaultOrder())
	require.Len(t, seq, 12)
	require.Equal(t, "QC1,"+samplesRange(1, 5)+",QC1,"+samplesRange(6, 10), render(seq))
}

func TestBuild_Phases(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		order    Order
		want     string
	}{
		{
			name:     "samples only",
			settings: onlySamples(3),
			want:     "Sample1,Sample2,Sample3",
		},
		{
			name: "start only standards",
			settings: onlySamples(2).
				With(Standard, CategoryConfig{Enabled: true, Count: 3, Placement: StartOnly{}}),
			want: "Standard1,Standard2,Standard3,Sample1,Sample2",
		},
		{
			name: "end only blanks",
			settings: onlySamples(2).
				With(Blank, CategoryConfig{Enabled: true, Count: 2, Placement: EndOnly{}}),
			want: "Sample1,Sample2,Blank1,Blank2",
		},
		{
			name: "start plus interval uses start count first",
			settings: onlySamples(4).
				With(QC, CategoryConfig{Enabled: true, Count: 3, Placement: StartPlusFixedInterval{Interval: 2, StartCount: 1}}),
			want: "QC1,Sample1,Sample2,QC1,QC2,QC3,Sample3,Sample4",
		},
		{
			name: "start count zero defaults to count",
			settings: onlySamples(1).
				With(QC, CategoryConfig{Enabled: true, Count: 2, Placement: StartPlusFixedInterval{Interval: 5}}),
			want: "QC1,QC2,Sample1",
		},
		{
			name: "start count capped at count",
			settings: onlySamples(1).
				With(QC, CategoryConfig{Enabled: true, Count: 2, Placement: StartPlusFixedInterval{Interval: 5, StartCount: 9}}),
			want: "QC1,QC2,Sample1",
		},
		{
			name: "custom order moves start blocks",
			settings: onlySamples(1).
				With(Standard, CategoryConfig{Enabled: true, Count: 1, Placement: StartOnly{}}).
				With(Blank, CategoryConfig{Enabled: true, Count: 1, Placement: StartOnly{}}),
			order: Order{Blank, Standard, Sample, QC},
			want:  "Blank1,Standard1,Sample1",
		},
		{
			name: "simultaneous intervals follow order",
			settings: onlySamples(4).
				With(QC, CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 2}}).
				With(Blank, CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 2}}),
			order: Order{Sample, Blank, QC, Standard},
			want:  "Blank1,QC1,Sample1,Sample2,Blank1,QC1,Sample3,Sample4",
		},
		{
			name: "intervals checked independently",
			settings: onlySamples(7).
				With(QC, CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 3}}).
				With(Blank, CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 2}}),
			want: "QC1,Blank1,Sample1,Sample2,Blank1,Sample3,QC1,Sample4,Blank1,Sample5,Sample6,QC1,Blank1,Sample7",
		},
		{
			name: "zero interval never repeats",
			settings: onlySamples(3).
				With(QC, CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 0}}),
			want: "QC1,Sample1,Sample2,Sample3",
		},
		{
			name: "disabled sample keeps start and end blocks",
			settings: onlySamples(5).
				With(Sample, CategoryConfig{Enabled: false, Count: 5}).
				With(QC, CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 1}}).
				With(Blank, CategoryConfig{Enabled: true, Count: 1, Placement: EndOnly{}}),
			want: "QC1,Blank1",
		},
		{
			name: "category without rule joins main sequence",
			settings: onlySamples(2).
				With(Standard, CategoryConfig{Enabled: true, Count: 2}),
			want: "Standard1,Standard2,Sample1,Sample2",
		},
		{
			name: "sample rule is ignored",
			settings: onlySamples(2).
				With(Sample, CategoryConfig{Enabled: true, Count: 2, Placement: EndOnly{}}),
			want: "Sample1,Sample2",
		},
		{
			name: "zero count contributes nothing",
			settings: onlySamples(2).
				With(Standard, CategoryConfig{Enabled: true, Count: 0, Placement: StartOnly{}}),
			want: "Sample1,Sample2",
		},
		{
			name: "negative values clamp to zero",
			settings: onlySamples(-4).
				With(QC, CategoryConfig{Enabled: true, Count: -1, Placement: FixedInterval{Interval: -2}}),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tt.order
			if order == nil {
				order = DefaultOrder()
			}
			got := render(Build(tt.settings, order))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Build() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	s := onlySamples(30).
		With(QC, CategoryConfig{Enabled: true, Count: 2, Placement: FixedInterval{Interval: 4}}).
		With(Blank, CategoryConfig{Enabled: true, Count: 1, Placement: StartPlusFixedInterval{Interval: 7, StartCount: 1}})

	first := Build(s, DefaultOrder())
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Build(s, DefaultOrder()))
	}
}

func TestBuild_BlockLocalIndices(t *testing.T) {
	s := onlySamples(25).
		With(Standard, CategoryConfig{Enabled: true, Count: 4, Placement: StartOnly{}}).
		With(QC, CategoryConfig{Enabled: true, Count: 3, Placement: FixedInterval{Interval: 6}}).
		With(Blank, CategoryConfig{Enabled: true, Count: 2, Placement: EndOnly{}})

	seq := Build(s, DefaultOrder())
	for i := 0; i < len(seq); {
		j := i
		for j < len(seq) && seq[j].Category == seq[i].Category {
			// Samples keep their running number across brackets.
			if seq[i].Category != Sample {
				require.Equal(t, j-i+1, seq[j].Index, "entry %d", j)
			}
			j++
		}
		i = j
	}

	var sampleIdx []int
	for _, e := range seq {
		if e.Category == Sample {
			sampleIdx = append(sampleIdx, e.Index)
		}
	}
	for i, idx := range sampleIdx {
		require.Equal(t, i+1, idx)
	}
}

func TestBuild_CountConservation(t *testing.T) {
	configs := []Settings{
		onlySamples(20).With(QC, CategoryConfig{Enabled: true, Count: 2, Placement: FixedInterval{Interval: 5}}),
		onlySamples(7).
			With(QC, CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 3}}).
			With(Blank, CategoryConfig{Enabled: true, Count: 2, Placement: StartPlusFixedInterval{Interval: 2, StartCount: 1}}).
			With(Standard, CategoryConfig{Enabled: true, Count: 5, Placement: EndOnly{}}),
		onlySamples(0).With(QC, CategoryConfig{Enabled: true, Count: 3, Placement: FixedInterval{Interval: 1}}),
		onlySamples(4).With(Standard, CategoryConfig{Enabled: true, Count: 2}),
		DefaultSettings(),
	}
	orders := []Order{DefaultOrder(), {Blank, QC, Sample, Standard}}

	for i, s := range configs {
		for _, o := range orders {
			require.Equal(t, Expected(s, o), Tally(Build(s, o)), "config %d order %v", i, o)
		}
	}
}

func TestBuild_DisablingCategoryKeepsOthers(t *testing.T) {
	base := onlySamples(12).
		With(Standard, CategoryConfig{Enabled: true, Count: 2, Placement: StartOnly{}}).
		With(QC, CategoryConfig{Enabled: true, Count: 1, Placement: FixedInterval{Interval: 4}}).
		With(Blank, CategoryConfig{Enabled: true, Count: 1, Placement: EndOnly{}})

	full := Build(base, DefaultOrder())

	for _, c := range []Category{Standard, QC, Blank} {
		cfg := base[c]
		cfg.Enabled = false
		reduced := Build(base.With(c, cfg), DefaultOrder())

		var want []Entry
		for _, e := range full {
			if e.Category != c {
				want = append(want, e)
			}
		}
		if diff := cmp.Diff(want, reduced); diff != "" {
			t.Errorf("disabling %s changed other entries (-want +got):\n%s", c, diff)
		}
	}
}

func TestBuild_SettingsPassedByValue(t *testing.T) {
	s := onlySamples(2)
	seq := Build(s, DefaultOrder())
	s[Sample] = CategoryConfig{Enabled: true, Count: 9}
	require.Len(t, seq, 2)
}
