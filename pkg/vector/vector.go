// Package vector holds CRS-tagged feature collections and the planar
// geometry helpers used to move between vectors and rasters.
package vector

import (
	"math"
	"slices"

	"github.com/ctessum/geom"
)

// Feature is a geometry with attributes. Attribute values are int64,
// float64 or string.
type Feature struct {
	Geometry geom.Geom
	Props    map[string]any
}

// Int returns an integer attribute. Floats are truncated, missing or
// non-numeric values return def.
func (f Feature) Int(key string, def int64) int64 {
	switch v := f.Props[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return def
	}
}

// Float returns a float attribute or def.
func (f Feature) Float(key string, def float64) float64 {
	switch v := f.Props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return def
	}
}

// String returns a string attribute or def.
func (f Feature) String(key, def string) string {
	if v, ok := f.Props[key].(string); ok {
		return v
	}
	return def
}

// Column describes an attribute of a layer.
type Column struct {
	Name string
	// Type is one of INTEGER, REAL, TEXT.
	Type string
}

// Layer is a named feature collection in one CRS.
type Layer struct {
	Name string
	// CRS is an EPSG code.
	CRS      int
	Columns  []Column
	Features []Feature
}

// Bounds returns the extent of all features, or nil for an empty layer.
func (l *Layer) Bounds() *geom.Bounds {
	var res *geom.Bounds
	for _, f := range l.Features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bounds()
		if res == nil {
			res = geom.NewBounds()
		}
		res.Extend(b)
	}
	return res
}

// Polygons returns polygons of the layer with their feature indices.
// Multipolygons are flattened.
func (l *Layer) Polygons() ([]geom.Polygon, []int) {
	var polys []geom.Polygon
	var idx []int
	for i, f := range l.Features {
		switch g := f.Geometry.(type) {
		case geom.Polygon:
			polys = append(polys, g)
			idx = append(idx, i)
		case geom.MultiPolygon:
			for _, p := range g {
				polys = append(polys, p)
				idx = append(idx, i)
			}
		}
	}
	return polys, idx
}

// Lines returns line strings of the layer with their feature indices.
// Multilinestrings are flattened.
func (l *Layer) Lines() ([]geom.LineString, []int) {
	var lines []geom.LineString
	var idx []int
	for i, f := range l.Features {
		switch g := f.Geometry.(type) {
		case geom.LineString:
			lines = append(lines, g)
			idx = append(idx, i)
		case geom.MultiLineString:
			for _, ls := range g {
				lines = append(lines, ls)
				idx = append(idx, i)
			}
		}
	}
	return lines, idx
}

// PointInRing reports if p lies inside a closed ring (even-odd rule).
func PointInRing(p geom.Point, ring []geom.Point) bool {
	in := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// PointInPolygon reports if p lies inside the polygon, holes excluded.
func PointInPolygon(p geom.Point, poly geom.Polygon) bool {
	if len(poly) == 0 || !PointInRing(p, poly[0]) {
		return false
	}
	for _, hole := range poly[1:] {
		if PointInRing(p, hole) {
			return false
		}
	}
	return true
}

// SignedArea returns the shoelace area of a ring. Counter-clockwise
// rings are positive in a y-up coordinate system.
func SignedArea(ring []geom.Point) float64 {
	var s float64
	n := len(ring)
	for i := range n {
		a, b := ring[i], ring[(i+1)%n]
		s += a.X*b.Y - b.X*a.Y
	}
	return s / 2
}

// PolygonArea returns the area of a polygon with holes subtracted.
func PolygonArea(poly geom.Polygon) float64 {
	if len(poly) == 0 {
		return 0
	}
	res := math.Abs(SignedArea(poly[0]))
	for _, h := range poly[1:] {
		res -= math.Abs(SignedArea(h))
	}
	return res
}

// SegmentsIntersect reports if segments ab and cd share a point.
func SegmentsIntersect(a, b, c, d geom.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(c, d, a):
		return true
	case d2 == 0 && onSegment(c, d, b):
		return true
	case d3 == 0 && onSegment(a, b, c):
		return true
	case d4 == 0 && onSegment(a, b, d):
		return true
	}
	return false
}

// DistToSegment returns the distance from p to segment ab.
func DistToSegment(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// DistToLine returns the distance from p to a line string.
func DistToLine(p geom.Point, ls geom.LineString) float64 {
	if len(ls) == 1 {
		return math.Hypot(p.X-ls[0].X, p.Y-ls[0].Y)
	}
	res := math.Inf(1)
	for i := 1; i < len(ls); i++ {
		res = math.Min(res, DistToSegment(p, ls[i-1], ls[i]))
	}
	return res
}

// LineLength returns the planar length of a line string.
func LineLength(ls geom.LineString) float64 {
	var res float64
	for i := 1; i < len(ls); i++ {
		res += math.Hypot(ls[i].X-ls[i-1].X, ls[i].Y-ls[i-1].Y)
	}
	return res
}

// ReverseLine returns a reversed copy of a line string.
func ReverseLine(ls geom.LineString) geom.LineString {
	res := slices.Clone(ls)
	slices.Reverse(res)
	return res
}

func cross(o, a, b geom.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func onSegment(a, b, p geom.Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
