package sequence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "Standard", want: Standard},
		{input: "standards", want: Standard},
		{input: "SAMPLE", want: Sample},
		{input: " samples ", want: Sample},
		{input: "qc", want: QC},
		{input: "blanks", want: Blank},
		{input: "Blank", want: Blank},
		{input: "solvent", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCategory_StringAndKey(t *testing.T) {
	require.Equal(t, "QC", QC.String())
	require.Equal(t, "qc", QC.Key())
	require.Equal(t, "standards", Standard.Key())
	require.Equal(t, "Category(7)", Category(7).String())
	require.Equal(t, "", Category(-1).Key())
}

func TestEntry_JSON(t *testing.T) {
	b, err := json.Marshal(Entry{Category: QC, Index: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"QC","index":2}`, string(b))

	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"type":"blanks","index":1}`), &e))
	require.Equal(t, Entry{Category: Blank, Index: 1}, e)
}

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder([]string{"qc", "samples", "Blank", "standards"})
	require.NoError(t, err)
	require.Equal(t, Order{QC, Sample, Blank, Standard}, order)

	_, err = ParseOrder([]string{"qc", "qc", "blanks", "samples"})
	require.Error(t, err)

	_, err = ParseOrder([]string{"qc"})
	require.Error(t, err)
}

func TestOrder_Normalize(t *testing.T) {
	require.Equal(t, DefaultOrder(), Order(nil).Normalize())
	require.Equal(t, Order{Blank, QC, Standard, Sample}, Order{Blank, QC, Blank, Category(9)}.Normalize())
	require.Equal(t, []string{"standards", "samples", "qc", "blanks"}, DefaultOrder().Keys())
}
