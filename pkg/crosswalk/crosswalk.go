// Package crosswalk associates derived reaches and their catchments with
// features of the reference stream network.
package crosswalk

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/delineate"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Catchment is the polygon draining to one derived reach.
type Catchment struct {
	HydroID  int
	Polygon  geom.Polygon
	AreaSqKm float64
	// Pixels are catchment raster indices covered by Polygon.
	Pixels []int
}

// Match is the best reference feature for a derived reach.
type Match struct {
	HydroID   int
	FeatureID int64
	// Count is the number of shared points of both lines.
	Count int
	// SharedLength is the derived length running along the reference.
	SharedLength float64
}

// Options of a cross-walk.
type Options struct {
	HUC    string
	Branch int
	// Tolerance is the snap distance in map units.
	Tolerance float64
}

// Result holds cross-walked reaches and catchments of a branch.
type Result struct {
	Reaches    []network.Reach
	Catchments []Catchment
	Matches    map[int]Match
}

type refLine struct {
	geom.LineString
	idx int
}

// Catchments traces catchment polygons from a pixel catchment raster.
func Catchments(labels *raster.Mem) []Catchment {
	regions := vector.TracePolygons(labels)
	res := make([]Catchment, 0, len(regions))
	for _, r := range regions {
		res = append(res, Catchment{
			HydroID:  int(r.Value),
			Polygon:  r.Polygon,
			AreaSqKm: vector.PolygonArea(r.Polygon) / 1e6,
			Pixels:   r.Pixels,
		})
	}
	return res
}

// Run cross-walks derived reaches of a branch. Reaches are filtered by HUC
// prefix, each surviving reach takes feature_id and LakeID of its best
// match, catchments are deduplicated and kept only when their reach
// survives. No match at all returns a NO_VALID_CROSSWALKS error.
func Run(
	derived []network.Reach,
	catchments []Catchment,
	refs []network.Reach,
	opts Options,
) (*Result, error) {
	derived = FilterHUC(derived, opts.HUC)
	matches := Matches(derived, refs, opts.Tolerance)
	if len(matches) == 0 {
		return nil, NoValidCrosswalksError(opts.HUC, opts.Branch)
	}
	refByID := make(map[int64]network.Reach, len(refs))
	for _, r := range refs {
		refByID[r.FeatureID] = r
	}

	res := &Result{Matches: matches}
	keep := make(map[int]bool, len(matches))
	for _, r := range derived {
		m, ok := matches[r.HydroID]
		if !ok {
			slog.Debug("Reach has no reference match",
				"huc", opts.HUC, "branch", opts.Branch, "hydro_id", r.HydroID)
			continue
		}
		ref := refByID[m.FeatureID]
		r.FeatureID = m.FeatureID
		r.LakeID = ref.LakeID
		if r.Order == 0 {
			r.Order = ref.Order
		}
		res.Reaches = append(res.Reaches, r)
		keep[r.HydroID] = true
	}
	for _, c := range Dedupe(catchments) {
		if keep[c.HydroID] {
			res.Catchments = append(res.Catchments, c)
		}
	}
	return res, nil
}

// FilterHUC keeps reaches whose HydroID prefix matches the HUC.
func FilterHUC(reaches []network.Reach, huc string) []network.Reach {
	prefix := delineate.HUCPrefix(huc)
	var res []network.Reach
	for _, r := range reaches {
		if r.HydroID/(delineate.MaxSequence+1) == prefix {
			res = append(res, r)
		}
	}
	return res
}

// Dedupe keeps the largest polygon of every HydroID. The result is
// ordered by HydroID. Pixels of dropped polygons are not part of any
// returned catchment.
func Dedupe(catchments []Catchment) []Catchment {
	best := make(map[int]Catchment, len(catchments))
	for _, c := range catchments {
		if b, ok := best[c.HydroID]; !ok || c.AreaSqKm > b.AreaSqKm {
			best[c.HydroID] = c
		}
	}
	res := make([]Catchment, 0, len(best))
	for _, c := range best {
		res = append(res, c)
	}
	slices.SortFunc(res, func(a, b Catchment) int {
		return cmp.Compare(a.HydroID, b.HydroID)
	})
	return res
}

// Matches finds the best reference feature of every derived reach. The
// best has the most shared points, ties go to the longest shared length
// and then to the smallest feature_id. Reaches without shared points get
// no match.
func Matches(derived, refs []network.Reach, tol float64) map[int]Match {
	tree := rtree.NewTree(25, 50)
	for i, r := range refs {
		if len(r.Geometry) == 0 {
			continue
		}
		tree.Insert(&refLine{LineString: r.Geometry, idx: i})
	}

	res := make(map[int]Match)
	for _, d := range derived {
		if len(d.Geometry) == 0 {
			continue
		}
		b := d.Geometry.Bounds()
		box := &geom.Bounds{
			Min: geom.Point{X: b.Min.X - tol, Y: b.Min.Y - tol},
			Max: geom.Point{X: b.Max.X + tol, Y: b.Max.Y + tol},
		}
		var best Match
		found := false
		for _, item := range tree.SearchIntersect(box) {
			ref := refs[item.(*refLine).idx]
			count, shared := compare(d.Geometry, ref.Geometry, tol)
			if count == 0 {
				continue
			}
			m := Match{
				HydroID:      d.HydroID,
				FeatureID:    ref.FeatureID,
				Count:        count,
				SharedLength: shared,
			}
			if !found || better(m, best) {
				best, found = m, true
			}
		}
		if found {
			res[d.HydroID] = best
		}
	}
	return res
}

func better(a, b Match) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	if a.SharedLength != b.SharedLength {
		return a.SharedLength > b.SharedLength
	}
	return a.FeatureID < b.FeatureID
}

// compare counts vertices of d lying within tol of ref plus proper
// crossings of d segments away from such vertices, and sums the length of
// d segments with both ends within tol.
func compare(d, ref geom.LineString, tol float64) (int, float64) {
	near := make([]bool, len(d))
	var count int
	for i, p := range d {
		if vector.DistToLine(p, ref) <= tol {
			near[i] = true
			count++
		}
	}
	var shared float64
	for i := 1; i < len(d); i++ {
		if near[i-1] && near[i] {
			shared += vector.LineLength(geom.LineString{d[i-1], d[i]})
			continue
		}
		if near[i-1] || near[i] {
			continue
		}
		for k := 1; k < len(ref); k++ {
			if vector.SegmentsIntersect(d[i-1], d[i], ref[k-1], ref[k]) {
				count++
			}
		}
	}
	return count, shared
}
