package hydrotable_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []hydrotable.Row {
	return []hydrotable.Row{
		{HUC: "1209301", BranchID: 0, HydroID: 12090001, FeatureID: 5000, Stage: 0, DischargeCMS: 0, LakeID: -999},
		{HUC: "1209301", BranchID: 0, HydroID: 12090001, FeatureID: 5000, Stage: 0.5, DischargeCMS: 1.25, LakeID: -999, DefaultDischargeCMS: 1.25},
	}
}

func TestPadHUC(t *testing.T) {
	assert.Equal(t, "01209301", hydrotable.PadHUC("1209301"))
	assert.Equal(t, "12090301", hydrotable.PadHUC(" 12090301 "))
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, hydrotable.Write(&buf, sample()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "HUC,BranchID,HydroID,feature_id,stage,discharge_cms,LakeID,default_discharge_cms", lines[0])
	assert.Equal(t, "01209301,0,12090001,5000,0.5,1.25,-999,1.25", lines[2])

	rows, err := hydrotable.Read(&buf)
	require.NoError(t, err)
	want := sample()
	for i := range want {
		want[i].HUC = "01209301"
	}
	assert.Equal(t, want, rows)
}

func TestReadErrors(t *testing.T) {
	_, err := hydrotable.Read(strings.NewReader("HUC,HydroID\n1,2\n"))
	assert.Error(t, err)

	rows, err := hydrotable.Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)

	bad := strings.Join(hydrotable.Header, ",") + "\n01,0,x,1,0,0,-999,0\n"
	_, err = hydrotable.Read(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestAggregate(t *testing.T) {
	b1 := sample()
	b2 := []hydrotable.Row{
		{HUC: "01209301", BranchID: 3, HydroID: 12090001, FeatureID: 5001, Stage: 0},
	}
	agg := hydrotable.Aggregate(b2, b1)
	require.Len(t, agg, 3)
	assert.Equal(t, 0, agg[0].BranchID)
	assert.Equal(t, 3, agg[2].BranchID)

	assert.Equal(t, agg, hydrotable.Aggregate(agg), "aggregating an aggregate is a no-op")
	assert.Equal(t, agg, hydrotable.Aggregate(agg, b1))

	stages, flows := hydrotable.Curve(b1, 12090001)
	assert.Equal(t, []float64{0, 0.5}, stages)
	assert.Equal(t, []float64{0, 1.25}, flows)
}
