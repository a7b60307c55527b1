package ratingcurve_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydraulics"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/ratingcurve"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/rem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleReach builds rating curves of a 10x10 catchment with a DEM
// ramp from 100 to 109 along flow.
func singleReach(t *testing.T) []ratingcurve.Row {
	g := raster.NewGrid(10, 10, 0, 1000, 100, 5070)
	dem := raster.NewMem(g)
	for row := range 10 {
		for col := range 10 {
			dem.Set(col, row, 109-float64(col))
		}
	}
	cg := g
	cg.NoData = 0
	cg.DataType = raster.Int32
	catch := raster.NewMem(cg)
	catch.Fill(100)

	hand := raster.NewMem(g)
	require.NoError(t, rem.Compute(dem, catch, hand, 4))

	stages := hydraulics.Stages(0, 10, 0.5)
	acc, err := hydraulics.Integrate(hand, catch, nil, stages, 4)
	require.NoError(t, err)

	reaches := []network.Reach{{
		HydroID:   100,
		FeatureID: 5000,
		Order:     1,
		LengthKm:  1.0,
		S0:        0.01,
		LakeID:    network.NoLake,
	}}
	props := hydraulics.Properties(acc, stages, reaches, map[int]float64{100: 1})
	n := ratingcurve.Roughness{Default: 0.06}
	return ratingcurve.Compute(props, reaches, n, "1209301", 0)
}

func TestSingleReachRatingCurve(t *testing.T) {
	rows := singleReach(t)
	require.Len(t, rows, 21)

	assert.Equal(t, 0.0, rows[0].Stage)
	assert.Equal(t, 0.0, rows[0].Discharge)
	assert.Equal(t, 10.0, rows[20].Stage)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i].Discharge, rows[i-1].Discharge)
	}
	assert.Greater(t, rows[20].Discharge, 0.0)
	assert.Empty(t, ratingcurve.CheckMonotone(rows))

	r := rows[2] // stage 1.0, two columns of cells are wet
	assert.Equal(t, 20, r.NumCells)
	assert.InDelta(t, 200, r.TopWidth, 1e-9)
	assert.InDelta(t, 200, r.WettedPerimeter, 1e-9)
	assert.InDelta(t, 100, r.WetArea, 1e-9)
	assert.InDelta(t, 0.5, r.HydraulicRadius, 1e-9)
	assert.Equal(t, "01209301", r.HUC)
	assert.Equal(t, int64(5000), r.FeatureID)

	ht := ratingcurve.HydroTable(rows)
	require.Len(t, ht, 21)
	assert.Equal(t, ht[5].DischargeCMS, ht[5].DefaultDischargeCMS)
	assert.Equal(t, network.NoLake, ht[5].LakeID)
}

func TestCheckMonotone(t *testing.T) {
	mk := func(id int, stage, q float64) ratingcurve.Row {
		var r ratingcurve.Row
		r.HydroID, r.Stage, r.Discharge = id, stage, q
		return r
	}
	rows := []ratingcurve.Row{
		mk(1, 0, 0), mk(1, 1, 5), mk(1, 2, 4), mk(1, 3, 3),
		mk(2, 0, 0), mk(2, 1, 1),
	}
	assert.Equal(t, []int{1}, ratingcurve.CheckMonotone(rows))
}

func TestRoughness(t *testing.T) {
	tbl, err := ratingcurve.ReadRoughness(strings.NewReader("feature_id,ManningN\n5000,0.12\n"))
	require.NoError(t, err)
	n := ratingcurve.Roughness{Default: 0.06, ByFeature: tbl}
	assert.Equal(t, 0.12, n.For(5000))
	assert.Equal(t, 0.06, n.For(1))

	_, err = ratingcurve.ReadRoughness(strings.NewReader("id,n\n1,2\n"))
	assert.Error(t, err)
}

func TestWriteSRC(t *testing.T) {
	rows := singleReach(t)
	var buf bytes.Buffer
	require.NoError(t, ratingcurve.WriteSRC(&buf, rows))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 22)
	assert.Equal(t, ratingcurve.SRCHeader, recs[0])
	assert.Equal(t, "100", recs[1][0])
	assert.Equal(t, "0.06", recs[1][13])
}
