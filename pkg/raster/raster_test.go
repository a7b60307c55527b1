package raster_test

import (
	"math"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform(t *testing.T) {
	g := raster.NewGrid(10, 5, 1000, 2000, 10, 5070)

	x, y := g.Center(0, 0)
	assert.Equal(t, 1005.0, x)
	assert.Equal(t, 1995.0, y)

	col, row := g.PixelAt(1095, 1951)
	assert.Equal(t, 9, col)
	assert.Equal(t, 4, row)

	assert.Equal(t, 100.0, g.Transform.CellArea())

	b := g.Bounds()
	assert.Equal(t, 1000.0, b.Min.X)
	assert.Equal(t, 1950.0, b.Min.Y)
	assert.Equal(t, 1100.0, b.Max.X)
	assert.Equal(t, 2000.0, b.Max.Y)
}

func TestWindows(t *testing.T) {
	g := raster.NewGrid(5, 3, 0, 0, 1, 5070)
	var ws []raster.Window
	total := 0
	for w := range g.Windows(2) {
		ws = append(ws, w)
		total += w.Len()
	}
	assert.Len(t, ws, 6)
	assert.Equal(t, g.Len(), total)
	assert.Equal(t, raster.Window{Col: 4, Row: 2, Width: 1, Height: 1}, ws[5])

	w := raster.Window{Col: 0, Row: 1, Width: 2, Height: 2}.Expand(1, g)
	assert.Equal(t, raster.Window{Col: 0, Row: 0, Width: 3, Height: 3}, w)

	_, ok := raster.Window{Width: 2, Height: 2}.
		Intersect(raster.Window{Col: 2, Row: 0, Width: 2, Height: 2})
	assert.False(t, ok)
}

func TestMemReadWrite(t *testing.T) {
	g := raster.NewGrid(4, 4, 0, 4, 1, 5070)
	m := raster.NewMem(g)
	assert.False(t, m.Valid(0, 0))

	w := raster.Window{Col: 1, Row: 1, Width: 2, Height: 2}
	require.NoError(t, m.Write(w, []float64{1, 2, 3, 4}))
	assert.Equal(t, 4.0, m.At(2, 2))
	assert.True(t, m.Valid(1, 1))
	assert.Equal(t, g.NoData, m.At(9, 9))

	buf := make([]float64, 4)
	require.NoError(t, m.Read(w, buf))
	assert.Equal(t, []float64{1, 2, 3, 4}, buf)

	err := m.Read(raster.Window{Col: 3, Row: 3, Width: 2, Height: 2}, buf)
	assert.Error(t, err)

	m.Set(0, 0, math.NaN())
	assert.False(t, m.Valid(0, 0))
}

func TestWriteAll(t *testing.T) {
	g := raster.NewGrid(7, 5, 0, 5, 1, 5070)
	src := raster.NewMem(g)
	for i := range src.Data {
		src.Data[i] = float64(i)
	}
	store := raster.NewMemStore()
	ds, err := store.Create("a.tif", g)
	require.NoError(t, err)
	require.NoError(t, raster.WriteAll(ds, src, 3))

	ds, err = store.Open("a.tif")
	require.NoError(t, err)
	res, err := raster.ReadAll(ds)
	require.NoError(t, err)
	assert.Equal(t, src.Data, res.Data)

	_, err = store.Open("missing.tif")
	assert.Error(t, err)
}

func TestSub(t *testing.T) {
	g := raster.NewGrid(10, 10, 100, 200, 2, 5070)
	s := g.Sub(raster.Window{Col: 2, Row: 3, Width: 4, Height: 5})
	assert.Equal(t, 4, s.Width)
	assert.Equal(t, 104.0, s.Transform[0])
	assert.Equal(t, 194.0, s.Transform[3])
}

func TestBoundsWindow(t *testing.T) {
	g := raster.NewGrid(10, 10, 100, 200, 2, 5070)
	tests := []struct {
		msg      string
		min, max geom.Point
		ok       bool
		want     raster.Window
	}{
		{"inside", geom.Point{X: 104, Y: 190}, geom.Point{X: 108, Y: 196}, true,
			raster.Window{Col: 2, Row: 2, Width: 3, Height: 4}},
		{"clipped", geom.Point{X: 110, Y: 170}, geom.Point{X: 130, Y: 185}, true,
			raster.Window{Col: 5, Row: 7, Width: 5, Height: 3}},
		{"outside", geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10}, false,
			raster.Window{}},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			w, ok := g.BoundsWindow(&geom.Bounds{Min: v.min, Max: v.max})
			assert.Equal(t, v.ok, ok)
			if ok {
				assert.Equal(t, v.want, w)
			}
		})
	}
}
