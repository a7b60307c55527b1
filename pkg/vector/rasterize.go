package vector

import (
	"math"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/ctessum/geom"
)

// BurnPolygon sets val to pixels whose centers lie inside the polygon.
// With allTouched every pixel crossed by the polygon boundary is burned
// as well.
func BurnPolygon(m *raster.Mem, poly geom.Polygon, val float64, allTouched bool) {
	if len(poly) == 0 {
		return
	}
	g := m.Grid()
	c0, r0, c1, r1, ok := pixelRange(g, poly.Bounds())
	if !ok {
		return
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			x, y := g.Center(col, row)
			if PointInPolygon(geom.Point{X: x, Y: y}, poly) {
				m.Set(col, row, val)
			}
		}
	}
	if allTouched {
		for _, ring := range poly {
			closed := append(geom.LineString(nil), ring...)
			if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
				closed = append(closed, ring[0])
			}
			BurnLine(m, closed, val)
		}
	}
}

// BurnLine sets val to every pixel touched by the line string.
func BurnLine(m *raster.Mem, ls geom.LineString, val float64) {
	WalkLine(m.Grid(), ls, func(col, row int) {
		m.Set(col, row, val)
	})
}

// WalkLine calls fn for every pixel the line string passes through.
// Consecutive duplicates are skipped.
func WalkLine(g raster.Grid, ls geom.LineString, fn func(col, row int)) {
	if len(ls) == 0 {
		return
	}
	step := math.Min(g.Transform.CellWidth(), g.Transform.CellHeight()) / 4
	lastC, lastR := math.MinInt, math.MinInt
	visit := func(p geom.Point) {
		c, r := g.PixelAt(p.X, p.Y)
		if c == lastC && r == lastR {
			return
		}
		lastC, lastR = c, r
		if g.Contains(c, r) {
			fn(c, r)
		}
	}
	visit(ls[0])
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		d := math.Hypot(b.X-a.X, b.Y-a.Y)
		n := int(math.Ceil(d / step))
		for k := 1; k <= n; k++ {
			t := float64(k) / float64(n)
			visit(geom.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)})
		}
	}
}

// Mask returns a 0/1 raster where 1 marks pixels inside any polygon.
func Mask(g raster.Grid, polys []geom.Polygon, allTouched bool) *raster.Mem {
	mg := g
	mg.NoData = 0
	mg.DataType = raster.Byte
	res := raster.NewMem(mg)
	for _, p := range polys {
		BurnPolygon(res, p, 1, allTouched)
	}
	return res
}

// Clip sets nodata to pixels of m outside of the polygons. When invert
// is true pixels inside of the polygons are set to nodata instead.
func Clip(m *raster.Mem, polys []geom.Polygon, invert bool) {
	g := m.Grid()
	mask := Mask(g, polys, false)
	for i, v := range mask.Data {
		inside := v == 1
		if inside == invert {
			m.Data[i] = g.NoData
		}
	}
}

func pixelRange(g raster.Grid, b *geom.Bounds) (int, int, int, int, bool) {
	c0, r0 := g.PixelAt(b.Min.X, b.Max.Y)
	c1, r1 := g.PixelAt(b.Max.X, b.Min.Y)
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, g.Width-1), min(r1, g.Height-1)
	return c0, r0, c1, r1, c0 <= c1 && r0 <= r1
}
