// Package hydraulics integrates channel geometry of every catchment over
// a range of stages from REM, pixel catchment and slope rasters.
package hydraulics

import (
	"cmp"
	"math"
	"slices"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/condition"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
)

// Row holds hydraulic properties of one catchment at one stage.
type Row struct {
	HydroID     int
	Stage       float64
	NumCells    int
	SurfaceArea float64
	BedArea     float64
	Volume      float64
	Slope       float64
	LengthKm    float64
	AreaSqKm    float64
}

// Stages returns the progression min, min+step, ..., max.
func Stages(minStage, maxStage, step float64) []float64 {
	if step <= 0 || maxStage < minStage {
		return []float64{minStage}
	}
	n := int((maxStage-minStage)/step+1e-9) + 1
	res := make([]float64, n)
	for i := range res {
		res[i] = minStage + float64(i)*step
	}
	return res
}

// Accum keeps per-stage sums of one catchment.
type Accum struct {
	NumCells    []int
	SurfaceArea []float64
	BedArea     []float64
	Volume      []float64
}

func newAccum(n int) *Accum {
	return &Accum{
		NumCells:    make([]int, n),
		SurfaceArea: make([]float64, n),
		BedArea:     make([]float64, n),
		Volume:      make([]float64, n),
	}
}

// Integrate walks the rasters tile by tile. For every valued pixel and
// every stage h with REM <= h the pixel adds one cell, its area, its bed
// area (area scaled by sqrt(1+slope^2)) and its depth volume (h-REM)*area.
// A nil slope raster counts as flat.
func Integrate(
	rem, catchments, slopes raster.Reader,
	stages []float64,
	tile int,
) (map[int]*Accum, error) {
	if tile <= 0 {
		tile = 256
	}
	g, cg := rem.Grid(), catchments.Grid()
	if !g.SameShape(cg) || (slopes != nil && !g.SameShape(slopes.Grid())) {
		return nil, condition.GridMismatchError("hydraulic properties")
	}
	cellArea := g.Transform.CellArea()
	res := make(map[int]*Accum)
	r := make([]float64, 0, tile*tile)
	c := make([]float64, 0, tile*tile)
	s := make([]float64, 0, tile*tile)
	for w := range g.Windows(tile) {
		r, c, s = r[:w.Len()], c[:w.Len()], s[:w.Len()]
		if err := rem.Read(w, r); err != nil {
			return nil, err
		}
		if err := catchments.Read(w, c); err != nil {
			return nil, err
		}
		if slopes != nil {
			if err := slopes.Read(w, s); err != nil {
				return nil, err
			}
		} else {
			clear(s)
		}
		for i := range r {
			if g.IsNoData(r[i]) || cg.IsNoData(c[i]) {
				continue
			}
			id := int(c[i])
			acc, ok := res[id]
			if !ok {
				acc = newAccum(len(stages))
				res[id] = acc
			}
			slope := s[i]
			if slopes != nil && slopes.Grid().IsNoData(slope) {
				slope = 0
			}
			bed := cellArea * math.Sqrt(1+slope*slope)
			for k, h := range stages {
				if r[i] > h {
					continue
				}
				acc.NumCells[k]++
				acc.SurfaceArea[k] += cellArea
				acc.BedArea[k] += bed
				acc.Volume[k] += (h - r[i]) * cellArea
			}
		}
	}
	return res, nil
}

// Properties joins integrated sums with reach slope and length and the
// catchment area. Every reach gets one row per stage, reaches without
// pixels get zero sums. Rows are ordered by HydroID and stage.
func Properties(
	acc map[int]*Accum,
	stages []float64,
	reaches []network.Reach,
	areas map[int]float64,
) []Row {
	sorted := slices.Clone(reaches)
	slices.SortFunc(sorted, func(a, b network.Reach) int {
		return cmp.Compare(a.HydroID, b.HydroID)
	})
	res := make([]Row, 0, len(sorted)*len(stages))
	for _, r := range sorted {
		a := acc[r.HydroID]
		for k, h := range stages {
			row := Row{
				HydroID:  r.HydroID,
				Stage:    h,
				Slope:    r.S0,
				LengthKm: r.LengthKm,
				AreaSqKm: areas[r.HydroID],
			}
			if a != nil {
				row.NumCells = a.NumCells[k]
				row.SurfaceArea = a.SurfaceArea[k]
				row.BedArea = a.BedArea[k]
				row.Volume = a.Volume[k]
			}
			res = append(res, row)
		}
	}
	return res
}
