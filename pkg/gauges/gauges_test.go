package gauges_test

import (
	"bytes"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/delineate"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/gauges"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	g := raster.NewGrid(4, 2, 0, 2, 1, 5070)
	dem := raster.NewMem(g)
	copy(dem.Data, []float64{10, 11, 12, 13, 10, 11, 12, g.NoData})
	catch := raster.NewMem(delineate.LabelGrid(g))
	copy(catch.Data, []float64{100, 100, 200, 200, 100, 100, 0, 200})

	reaches := []network.Reach{
		{HydroID: 100, FeatureID: 5000, LevelPathID: 1},
		{HydroID: 200, FeatureID: 6000, LevelPathID: 2},
	}
	mins := map[int]float64{100: 10, 200: 12}
	gs := []gauges.Gauge{
		{LocationID: "02", Point: geom.Point{X: 2.5, Y: 1.5}},
		{LocationID: "01", Point: geom.Point{X: 1.5, Y: 0.5}},
		{LocationID: "03", Point: geom.Point{X: 2.5, Y: 0.5}}, // nodata catchment
		{LocationID: "04", Point: geom.Point{X: 3.5, Y: 0.5}}, // nodata DEM
		{LocationID: "05", Point: geom.Point{X: 30, Y: 30}},   // outside
	}
	rows := gauges.Table(gs, dem, catch, mins, reaches, "1209301")
	gauges.Sort(rows)
	require.Len(t, rows, 2)
	assert.Equal(t, gauges.Row{
		LocationID: "01", HydroID: 100, FeatureID: 5000, LevPaID: 1,
		HUC: "01209301", DEMElevation: 11, DEMAdjElevation: 10,
	}, rows[0])
	assert.Equal(t, 200, rows[1].HydroID)
	assert.Equal(t, 12.0, rows[1].DEMAdjElevation)

	var buf bytes.Buffer
	require.NoError(t, gauges.Write(&buf, rows))
	got, err := gauges.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = gauges.Read(bytes.NewBufferString("a,b\n"))
	assert.Error(t, err)
}
