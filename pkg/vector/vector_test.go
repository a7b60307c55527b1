package vector_test

import (
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}}
}

func TestPointInPolygon(t *testing.T) {
	p := square(0, 0, 10, 10)
	p = append(p, square(4, 4, 6, 6)[0])

	tests := []struct {
		msg string
		pt  geom.Point
		res bool
	}{
		{"inside", geom.Point{X: 1, Y: 1}, true},
		{"outside", geom.Point{X: 11, Y: 1}, false},
		{"in hole", geom.Point{X: 5, Y: 5}, false},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, vector.PointInPolygon(v.pt, p), v.msg)
	}
	assert.Equal(t, 96.0, vector.PolygonArea(p))
}

func TestSegments(t *testing.T) {
	a, b := geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10}
	c, d := geom.Point{X: 0, Y: 10}, geom.Point{X: 10, Y: 0}
	assert.True(t, vector.SegmentsIntersect(a, b, c, d))
	assert.False(t, vector.SegmentsIntersect(a, c, b, d))
	assert.True(t, vector.SegmentsIntersect(a, b, b, d), "shared endpoint")

	assert.Equal(t, 5.0, vector.DistToSegment(geom.Point{X: 5, Y: 5}, a, geom.Point{X: 10, Y: 0}))
	ls := geom.LineString{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}}
	assert.Equal(t, 11.0, vector.LineLength(ls))
	assert.Equal(t, geom.Point{X: 3, Y: 10}, vector.ReverseLine(ls)[0])
}

func TestBurnAndClip(t *testing.T) {
	g := raster.NewGrid(10, 10, 0, 10, 1, 5070)
	m := raster.NewMem(g)
	vector.BurnPolygon(m, square(2, 2, 5, 5), 7, false)
	count := 0
	for _, v := range m.Data {
		if v == 7 {
			count++
		}
	}
	assert.Equal(t, 9, count)

	ln := raster.NewMem(g)
	vector.BurnLine(ln, geom.LineString{{X: 0.5, Y: 9.5}, {X: 9.5, Y: 9.5}}, 1)
	for col := range 10 {
		assert.Equal(t, 1.0, ln.At(col, 0))
	}
	assert.False(t, ln.Valid(0, 1))

	full := raster.NewMem(g)
	full.Fill(3)
	vector.Clip(full, []geom.Polygon{square(0, 0, 5, 10)}, false)
	assert.True(t, full.Valid(0, 0))
	assert.False(t, full.Valid(9, 0))

	inv := raster.NewMem(g)
	inv.Fill(3)
	vector.Clip(inv, []geom.Polygon{square(0, 0, 5, 10)}, true)
	assert.False(t, inv.Valid(0, 0))
	assert.True(t, inv.Valid(9, 0))
}

func TestTracePolygons(t *testing.T) {
	g := raster.NewGrid(6, 4, 0, 40, 10, 5070)
	m := raster.NewMem(g)
	// value 1: 2x2 block plus a detached pixel
	for _, p := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {5, 3}} {
		m.Set(p[0], p[1], 1)
	}
	// value 2: ring of 3x3 with a hole in the middle
	for c := 2; c <= 4; c++ {
		for r := 0; r <= 2; r++ {
			if c == 3 && r == 1 {
				continue
			}
			m.Set(c, r, 2)
		}
	}

	regions := vector.TracePolygons(m)
	require.Len(t, regions, 3)

	assert.Equal(t, 1.0, regions[0].Value)
	assert.Equal(t, 4, regions[0].Cells)
	assert.ElementsMatch(t, []int{0, 1, 6, 7}, regions[0].Pixels)
	assert.InDelta(t, 400.0, vector.PolygonArea(regions[0].Polygon), 1e-9)

	assert.Equal(t, 1.0, regions[1].Value)
	assert.Equal(t, []int{23}, regions[1].Pixels)
	assert.InDelta(t, 100.0, vector.PolygonArea(regions[1].Polygon), 1e-9)

	assert.Equal(t, 2.0, regions[2].Value)
	require.Len(t, regions[2].Polygon, 2, "shell and hole")
	assert.InDelta(t, 800.0, vector.PolygonArea(regions[2].Polygon), 1e-9)
	x, y := g.Center(3, 1)
	assert.False(t, vector.PointInPolygon(geom.Point{X: x, Y: y}, regions[2].Polygon))
	x, y = g.Center(2, 0)
	assert.True(t, vector.PointInPolygon(geom.Point{X: x, Y: y}, regions[2].Polygon))
}

func TestFeatureAttributes(t *testing.T) {
	f := vector.Feature{Props: map[string]any{
		"feature_id": int64(42), "S0": 0.01, "name": "x", "order_": 2.0,
	}}
	assert.Equal(t, int64(42), f.Int("feature_id", 0))
	assert.Equal(t, int64(2), f.Int("order_", 0))
	assert.Equal(t, int64(-1), f.Int("missing", -1))
	assert.Equal(t, 0.01, f.Float("S0", 0))
	assert.Equal(t, "x", f.String("name", ""))
}
