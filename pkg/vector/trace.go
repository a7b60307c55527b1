package vector

import (
	"math"
	"slices"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/ctessum/geom"
)

// Region is a 4-connected group of pixels sharing one value.
type Region struct {
	Value float64
	Cells int
	// Pixels are raster indices of the region in discovery order.
	Pixels  []int
	Polygon geom.Polygon
}

// TracePolygons converts every 4-connected region of equal valued pixels
// into a polygon. Regions are returned ordered by value and then by
// their first pixel in row-major order. One value can produce several
// regions when its pixels are disconnected.
func TracePolygons(m *raster.Mem) []Region {
	g := m.Grid()
	comp := make([]int32, g.Len())
	for i := range comp {
		comp[i] = -1
	}

	var res []Region
	var queue []int
	for start := range g.Len() {
		if comp[start] >= 0 || g.IsNoData(m.Data[start]) {
			continue
		}
		id := int32(len(res))
		val := m.Data[start]
		cells := []int{start}
		comp[start] = id
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			col, row := i%g.Width, i/g.Width
			for _, d := range dirs4 {
				c, r := col+d[0], row+d[1]
				if !g.Contains(c, r) {
					continue
				}
				j := g.Index(c, r)
				if comp[j] < 0 && m.Data[j] == val {
					comp[j] = id
					cells = append(cells, j)
					queue = append(queue, j)
				}
			}
		}
		poly := traceComponent(g, comp, id, cells)
		res = append(res, Region{
			Value:   val,
			Cells:   len(cells),
			Pixels:  cells,
			Polygon: poly,
		})
	}

	slices.SortStableFunc(res, func(a, b Region) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	})
	return res
}

var dirs4 = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

type vertex struct{ c, r int }

type edge struct {
	from vertex
	dx   int
	dy   int
	used bool
}

// traceComponent walks boundary edges of a component keeping the
// interior on the right in pixel space. At pinch vertices the walk turns
// right so diagonally touching pixels produce separate rings.
func traceComponent(g raster.Grid, comp []int32, id int32, cells []int) geom.Polygon {
	in := func(c, r int) bool {
		return g.Contains(c, r) && comp[g.Index(c, r)] == id
	}
	var edges []edge
	out := make(map[vertex][]int)
	add := func(c, r, dx, dy int) {
		v := vertex{c, r}
		out[v] = append(out[v], len(edges))
		edges = append(edges, edge{from: v, dx: dx, dy: dy})
	}
	for _, i := range cells {
		c, r := i%g.Width, i/g.Width
		if !in(c, r-1) {
			add(c, r, 1, 0)
		}
		if !in(c+1, r) {
			add(c+1, r, 0, 1)
		}
		if !in(c, r+1) {
			add(c+1, r+1, -1, 0)
		}
		if !in(c-1, r) {
			add(c, r+1, 0, -1)
		}
	}

	var rings [][]geom.Point
	for k := range edges {
		if edges[k].used {
			continue
		}
		var pts []vertex
		cur := k
		for {
			e := &edges[cur]
			e.used = true
			pts = append(pts, e.from)
			next := vertex{e.from.c + e.dx, e.from.r + e.dy}
			cur = pickEdge(edges, out[next], e.dx, e.dy, k)
			if cur < 0 {
				break
			}
		}
		rings = append(rings, toRing(g, pts))
	}
	return assemble(rings)
}

// pickEdge chooses the outgoing edge preferring a right turn, then
// straight, then a left turn. It returns -1 when the ring is closed,
// that is when the preferred edge is the first edge of the ring.
func pickEdge(edges []edge, cand []int, dx, dy, first int) int {
	prefs := [3][2]int{{-dy, dx}, {dx, dy}, {dy, -dx}}
	for _, p := range prefs {
		for _, k := range cand {
			e := edges[k]
			if e.dx != p[0] || e.dy != p[1] {
				continue
			}
			if k == first {
				return -1
			}
			if !e.used {
				return k
			}
		}
	}
	return -1
}

// toRing drops collinear vertices, converts to map coordinates and
// closes the ring.
func toRing(g raster.Grid, pts []vertex) []geom.Point {
	n := len(pts)
	var res []geom.Point
	for i := range n {
		p, a, b := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
		if (a.c-p.c)*(b.r-a.r) == (a.r-p.r)*(b.c-a.c) {
			continue
		}
		x, y := g.Transform.PixelToWorld(float64(a.c), float64(a.r))
		res = append(res, geom.Point{X: x, Y: y})
	}
	if len(res) > 0 {
		res = append(res, res[0])
	}
	return res
}

// assemble makes a polygon from traced rings. The largest ring with the
// orientation of outer boundaries is the shell, rings inside it are
// holes.
func assemble(rings [][]geom.Point) geom.Polygon {
	if len(rings) == 0 {
		return nil
	}
	shell := -1
	best := math.Inf(-1)
	// y-up grids flip the orientation of pixel space
	sign := orientationSign(rings)
	for i, r := range rings {
		a := sign * SignedArea(r)
		if a > best {
			best = a
			shell = i
		}
	}
	res := geom.Polygon{rings[shell]}
	for i, r := range rings {
		if i == shell || sign*SignedArea(r) > 0 {
			continue
		}
		res = append(res, r)
	}
	return res
}

// orientationSign returns the sign of the signed area of outer rings.
// The ring with the largest absolute area is always an outer ring.
func orientationSign(rings [][]geom.Point) float64 {
	var big float64
	for _, r := range rings {
		a := SignedArea(r)
		if math.Abs(a) > math.Abs(big) {
			big = a
		}
	}
	if big < 0 {
		return -1
	}
	return 1
}
