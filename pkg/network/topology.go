package network

import (
	"math"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
)

// DeriveTopology assigns FromNode and ToNode by snapping line end points
// to a grid of tol map units. Geometries are expected to be digitized
// in the direction of flow.
func DeriveTopology(reaches []Reach, tol float64) {
	if tol <= 0 {
		tol = 1
	}
	nodes := make(map[[2]int64]int64)
	nodeID := func(p geom.Point) int64 {
		k := [2]int64{
			int64(math.Round(p.X / tol)),
			int64(math.Round(p.Y / tol)),
		}
		id, ok := nodes[k]
		if !ok {
			id = int64(len(nodes) + 1)
			nodes[k] = id
		}
		return id
	}
	for i := range reaches {
		ls := reaches[i].Geometry
		if len(ls) == 0 {
			continue
		}
		reaches[i].FromNode = nodeID(ls[0])
		reaches[i].ToNode = nodeID(ls[len(ls)-1])
	}
}

// FillLengths sets LengthKm from geometry where it is missing.
func FillLengths(reaches []Reach) {
	for i := range reaches {
		if reaches[i].LengthKm <= 0 {
			reaches[i].LengthKm = vector.LineLength(reaches[i].Geometry) / 1000
		}
	}
}

// Clip keeps reaches with at least one vertex inside of the polygon.
func Clip(reaches []Reach, poly geom.Polygon) []Reach {
	var res []Reach
	b := poly.Bounds()
	for _, r := range reaches {
		if !b.Overlaps(r.Geometry.Bounds()) {
			continue
		}
		for _, p := range r.Geometry {
			if vector.PointInPolygon(p, poly) {
				res = append(res, r)
				break
			}
		}
	}
	return res
}
