package inundate_test

import (
	"strings"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/inundate"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadForecast(t *testing.T) {
	fc, err := inundate.ReadForecast(strings.NewReader("feature_id,discharge\n5000,12.5\n5001,0\n"))
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{5000: 12.5, 5001: 0}, fc)

	_, err = inundate.ReadForecast(strings.NewReader("id,q\n1,2\n"))
	assert.Error(t, err)
	_, err = inundate.ReadForecast(strings.NewReader(""))
	assert.Error(t, err)
}

func TestInterpolate(t *testing.T) {
	stages := []float64{0, 1, 2, 3}
	flows := []float64{0, 10, 10, 30}
	tests := []struct {
		q, want float64
	}{
		{-1, 0},
		{0, 0},
		{5, 0.5},
		{10, 1},
		{20, 2.5},
		{100, 3},
	}
	for _, v := range tests {
		assert.InDelta(t, v.want, inundate.Interpolate(stages, flows, v.q), 1e-12, "q=%v", v.q)
	}
	assert.Equal(t, 0.0, inundate.Interpolate(nil, nil, 5))
}

func TestDepth(t *testing.T) {
	rows := []hydrotable.Row{
		{HydroID: 100, FeatureID: 5000, Stage: 1, DischargeCMS: 10},
		{HydroID: 100, FeatureID: 5000, Stage: 0, DischargeCMS: 0},
		{HydroID: 200, FeatureID: 6000, Stage: 0, DischargeCMS: 0},
	}
	stages := inundate.Stages(rows, map[int64]float64{5000: 5})
	assert.Equal(t, map[int]float64{100: 0.5}, stages)

	g := raster.NewGrid(3, 1, 0, 1, 1, 5070)
	rem := raster.NewMem(g)
	copy(rem.Data, []float64{0, 0.2, 0.8})
	cg := g
	cg.NoData = 0
	catch := raster.NewMem(cg)
	catch.Fill(100)

	out := raster.NewMem(g)
	require.NoError(t, inundate.Depth(rem, catch, stages, out, 0))
	assert.InDelta(t, 0.5, out.At(0, 0), 1e-12)
	assert.InDelta(t, 0.3, out.At(1, 0), 1e-12)
	assert.False(t, out.Valid(2, 0), "dry pixel")
}
