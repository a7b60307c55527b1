package hydraulics_test

import (
	"math"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydraulics"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStages(t *testing.T) {
	s := hydraulics.Stages(0, 10, 0.5)
	require.Len(t, s, 21)
	assert.Equal(t, 0.0, s[0])
	assert.Equal(t, 10.0, s[20])
	assert.Equal(t, 3.5, s[7])

	assert.Equal(t, []float64{1}, hydraulics.Stages(1, 0, 0.5))
	assert.Len(t, hydraulics.Stages(0, 25, 0.3048), 83)
}

func TestIntegrate(t *testing.T) {
	g := raster.NewGrid(2, 2, 0, 20, 10, 5070)
	rem := raster.NewMem(g)
	copy(rem.Data, []float64{0, 1, 2, g.NoData})
	cg := g
	cg.NoData = 0
	catch := raster.NewMem(cg)
	catch.Fill(7)
	slopes := raster.NewMem(g)
	copy(slopes.Data, []float64{0, 0.75, 0, 0})

	stages := []float64{0, 1, 2}
	acc, err := hydraulics.Integrate(rem, catch, slopes, stages, 1)
	require.NoError(t, err)
	a := acc[7]
	require.NotNil(t, a)
	assert.Equal(t, []int{1, 2, 3}, a.NumCells)
	assert.Equal(t, []float64{100, 200, 300}, a.SurfaceArea)
	// the second cell has slope 0.75, sqrt(1+0.5625) = 1.25
	assert.InDeltaSlice(t, []float64{100, 225, 325}, a.BedArea, 1e-9)
	assert.InDeltaSlice(t, []float64{0, 100, 300}, a.Volume, 1e-9)

	t.Run("no slopes", func(t *testing.T) {
		acc, err := hydraulics.Integrate(rem, catch, nil, stages, 0)
		require.NoError(t, err)
		assert.Equal(t, []float64{100, 200, 300}, acc[7].BedArea)
	})

	t.Run("grid mismatch", func(t *testing.T) {
		other := raster.NewMem(raster.NewGrid(3, 2, 0, 20, 10, 5070))
		_, err := hydraulics.Integrate(rem, other, nil, stages, 0)
		assert.Error(t, err)
	})
}

func TestProperties(t *testing.T) {
	stages := []float64{0, 1}
	acc := map[int]*hydraulics.Accum{
		20: {
			NumCells:    []int{1, 2},
			SurfaceArea: []float64{1, 2},
			BedArea:     []float64{1, 2},
			Volume:      []float64{0, 1},
		},
	}
	reaches := []network.Reach{
		{HydroID: 20, S0: 0.01, LengthKm: 1},
		{HydroID: 10, S0: 0.02, LengthKm: 2},
	}
	rows := hydraulics.Properties(acc, stages, reaches, map[int]float64{20: 0.5})
	require.Len(t, rows, 4)
	assert.Equal(t, 10, rows[0].HydroID)
	assert.Equal(t, 0, rows[1].NumCells, "reach without pixels has zero sums")
	assert.Equal(t, 20, rows[3].HydroID)
	assert.Equal(t, 1.0, rows[3].Stage)
	assert.Equal(t, 2, rows[3].NumCells)
	assert.Equal(t, 0.5, rows[3].AreaSqKm)
	assert.Equal(t, 0.01, rows[3].Slope)
	assert.False(t, math.IsNaN(rows[0].Volume))
}
