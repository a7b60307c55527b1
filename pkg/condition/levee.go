// Package condition prepares a DEM for drainage derivation: levee and
// thalweg burn-in, levee-protected area masking, depression filling,
// D8 flow direction and slopes.
package condition

import (
	"math"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
)

// Levee is a levee centerline with its crest elevation in meters.
type Levee struct {
	SystemID  int64
	Elevation float64
	Line      geom.LineString
}

// ProtectedArea is a polygon protected by a levee system.
type ProtectedArea struct {
	SystemID int64
	Polygon  geom.Polygon
}

// LeveeRaster rasterizes levee crests onto the grid. Where levees
// overlap the highest crest wins. Untouched pixels are nodata.
func LeveeRaster(g raster.Grid, levees []Levee) *raster.Mem {
	res := raster.NewMem(g)
	for _, l := range levees {
		vector.WalkLine(g, l.Line, func(col, row int) {
			if !res.Valid(col, row) || res.At(col, row) < l.Elevation {
				res.Set(col, row, l.Elevation)
			}
		})
	}
	return res
}

// BurnLevees writes max(DEM, NLD) window by window. Nodata of NLD is
// ignored, nodata of DEM stays nodata.
func BurnLevees(dem, nld raster.Reader, out raster.Writer, tile int) error {
	g, ng := dem.Grid(), nld.Grid()
	if !g.SameShape(ng) || !g.SameShape(out.Grid()) {
		return GridMismatchError("levee burn")
	}
	og := out.Grid()
	for w := range g.Windows(tile) {
		d := make([]float64, w.Len())
		n := make([]float64, w.Len())
		if err := dem.Read(w, d); err != nil {
			return err
		}
		if err := nld.Read(w, n); err != nil {
			return err
		}
		for i := range d {
			switch {
			case g.IsNoData(d[i]):
				d[i] = og.NoData
			case !ng.IsNoData(n[i]):
				d[i] = math.Max(d[i], n[i])
			}
		}
		if err := out.Write(w, d); err != nil {
			return err
		}
	}
	return nil
}

// BurnThalweg lowers DEM pixels under the stream lines by drop meters.
// Nodata pixels are left untouched.
func BurnThalweg(dem *raster.Mem, lines []geom.LineString, drop float64) {
	if drop <= 0 {
		return
	}
	g := dem.Grid()
	burned := make(map[int]struct{})
	for _, ls := range lines {
		vector.WalkLine(g, ls, func(col, row int) {
			i := g.Index(col, row)
			if _, ok := burned[i]; ok || g.IsNoData(dem.Data[i]) {
				return
			}
			burned[i] = struct{}{}
			dem.Data[i] -= drop
		})
	}
}

// AssociateLevees returns systems whose levee lines cross the level path
// or come closer to it than dist.
func AssociateLevees(levees []Levee, path geom.MultiLineString, dist float64) map[int64]bool {
	res := make(map[int64]bool)
	for _, l := range levees {
		if res[l.SystemID] {
			continue
		}
		if linesNear(l.Line, path, dist) {
			res[l.SystemID] = true
		}
	}
	return res
}

// MaskProtected sets nodata inside protected areas of the given systems.
// An empty set of systems leaves the DEM untouched. It returns the
// number of masked pixels.
func MaskProtected(dem *raster.Mem, areas []ProtectedArea, systems map[int64]bool) int {
	if len(systems) == 0 {
		return 0
	}
	var polys []geom.Polygon
	for _, a := range areas {
		if systems[a.SystemID] {
			polys = append(polys, a.Polygon)
		}
	}
	if len(polys) == 0 {
		return 0
	}
	g := dem.Grid()
	mask := vector.Mask(g, polys, false)
	var count int
	for i, v := range mask.Data {
		if v == 1 && !g.IsNoData(dem.Data[i]) {
			dem.Data[i] = g.NoData
			count++
		}
	}
	return count
}

func linesNear(ls geom.LineString, path geom.MultiLineString, dist float64) bool {
	lb := ls.Bounds()
	for _, pl := range path {
		pb := pl.Bounds()
		pb = &geom.Bounds{
			Min: geom.Point{X: pb.Min.X - dist, Y: pb.Min.Y - dist},
			Max: geom.Point{X: pb.Max.X + dist, Y: pb.Max.Y + dist},
		}
		if !pb.Overlaps(lb) {
			continue
		}
		for i := 1; i < len(ls); i++ {
			for j := 1; j < len(pl); j++ {
				if vector.SegmentsIntersect(ls[i-1], ls[i], pl[j-1], pl[j]) {
					return true
				}
			}
		}
		for _, p := range ls {
			if vector.DistToLine(p, pl) <= dist {
				return true
			}
		}
	}
	return false
}
