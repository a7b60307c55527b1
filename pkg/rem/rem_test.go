package rem_test

import (
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/rem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ramp returns a 10x10 DEM rising from 100 at the outlet (east) to 109 and
// a catchment raster covering it with one HydroID.
func ramp() (*raster.Mem, *raster.Mem) {
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
	return dem, catch
}

func TestSingleReachREM(t *testing.T) {
	dem, catch := ramp()
	out := raster.NewMem(dem.Grid())
	// tiles smaller than the raster exercise the windowed passes
	require.NoError(t, rem.Compute(dem, catch, out, 3))
	for row := range 10 {
		for col := range 10 {
			assert.Equal(t, float64(9-col), out.At(col, row))
		}
	}
}

func TestREMInvariants(t *testing.T) {
	dem, catch := ramp()
	for row := range 10 {
		for col := 5; col < 10; col++ {
			catch.Set(col, row, 200)
		}
	}
	dem.Set(2, 2, dem.Grid().NoData)
	catch.Set(3, 3, 0)

	mins, err := rem.MinElevations(dem, catch, 4)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{100: 105, 200: 100}, mins)

	out := raster.NewMem(dem.Grid())
	require.NoError(t, rem.Compute(dem, catch, out, 4))
	assert.False(t, out.Valid(2, 2), "dem nodata")
	assert.False(t, out.Valid(3, 3), "catchment nodata")

	minByCatch := map[float64]float64{}
	for i, v := range out.Data {
		if !out.Valid(i%10, i/10) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
		id := catch.Data[i]
		if m, ok := minByCatch[id]; !ok || v < m {
			minByCatch[id] = v
		}
	}
	for id, m := range minByCatch {
		assert.Equal(t, 0.0, m, "catchment %v has a zero minimum", id)
	}
}

func TestZeroMasked(t *testing.T) {
	g := raster.NewGrid(3, 1, 0, 1, 1, 5070)
	src := raster.NewMem(g)
	copy(src.Data, []float64{-0.5, 2, g.NoData})
	mg := g
	mg.NoData = 0
	mask := raster.NewMem(mg)
	copy(mask.Data, []float64{1, 0, 1})

	out := raster.NewMem(g)
	require.NoError(t, rem.ZeroMasked(src, nil, out, 0))
	assert.Equal(t, []float64{0, 2, g.NoData}, out.Data)

	require.NoError(t, rem.ZeroMasked(src, mask, out, 0))
	assert.Equal(t, []float64{0, g.NoData, g.NoData}, out.Data)
}

func TestGridMismatch(t *testing.T) {
	dem, _ := ramp()
	other := raster.NewMem(raster.NewGrid(5, 5, 0, 1000, 100, 5070))
	assert.Error(t, rem.Compute(dem, other, raster.NewMem(dem.Grid()), 4))
}
