// Package rem computes the relative elevation model (height above nearest
// drainage) of a branch. Both passes stream the rasters tile by tile so
// the working set is two tiles plus one entry per catchment.
package rem

import (
	"math"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/condition"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
)

// MinElevations is the first pass. It returns the lowest DEM value of every
// catchment. Pixels where the DEM or the catchment is nodata are skipped.
func MinElevations(dem, catchments raster.Reader, tile int) (map[int]float64, error) {
	if tile <= 0 {
		tile = 256
	}
	g, cg := dem.Grid(), catchments.Grid()
	if !g.SameShape(cg) {
		return nil, condition.GridMismatchError("rem")
	}
	res := make(map[int]float64)
	z := make([]float64, 0, tile*tile)
	c := make([]float64, 0, tile*tile)
	for w := range g.Windows(tile) {
		z, c = z[:w.Len()], c[:w.Len()]
		if err := dem.Read(w, z); err != nil {
			return nil, err
		}
		if err := catchments.Read(w, c); err != nil {
			return nil, err
		}
		for i := range z {
			if g.IsNoData(z[i]) || cg.IsNoData(c[i]) {
				continue
			}
			id := int(c[i])
			if v, ok := res[id]; !ok || z[i] < v {
				res[id] = z[i]
			}
		}
	}
	return res, nil
}

// Compute writes REM = DEM - min_elev[catchment] to out. The result is
// nodata where the DEM or the catchment is nodata.
func Compute(dem, catchments raster.Reader, out raster.Writer, tile int) error {
	if tile <= 0 {
		tile = 256
	}
	mins, err := MinElevations(dem, catchments, tile)
	if err != nil {
		return err
	}
	g, cg := dem.Grid(), catchments.Grid()
	if !g.SameShape(out.Grid()) {
		return condition.GridMismatchError("rem")
	}
	nodata := out.Grid().NoData
	z := make([]float64, 0, tile*tile)
	c := make([]float64, 0, tile*tile)
	for w := range g.Windows(tile) {
		z, c = z[:w.Len()], c[:w.Len()]
		if err = dem.Read(w, z); err != nil {
			return err
		}
		if err = catchments.Read(w, c); err != nil {
			return err
		}
		for i := range z {
			if g.IsNoData(z[i]) || cg.IsNoData(c[i]) {
				z[i] = nodata
				continue
			}
			z[i] -= mins[int(c[i])]
		}
		if err = out.Write(w, z); err != nil {
			return err
		}
	}
	return nil
}

// ZeroMasked clamps negative REM values to 0 and sets nodata where mask
// is not 1. A nil mask only clamps.
func ZeroMasked(src raster.Reader, mask raster.Reader, out raster.Writer, tile int) error {
	if tile <= 0 {
		tile = 256
	}
	g := src.Grid()
	if !g.SameShape(out.Grid()) || (mask != nil && !g.SameShape(mask.Grid())) {
		return condition.GridMismatchError("zeroed masked rem")
	}
	nodata := out.Grid().NoData
	v := make([]float64, 0, tile*tile)
	m := make([]float64, 0, tile*tile)
	for w := range g.Windows(tile) {
		v = v[:w.Len()]
		if err := src.Read(w, v); err != nil {
			return err
		}
		if mask != nil {
			m = m[:w.Len()]
			if err := mask.Read(w, m); err != nil {
				return err
			}
		}
		for i := range v {
			switch {
			case g.IsNoData(v[i]):
				v[i] = nodata
			case mask != nil && m[i] != 1:
				v[i] = nodata
			default:
				v[i] = math.Max(0, v[i])
			}
		}
		if err := out.Write(w, v); err != nil {
			return err
		}
	}
	return nil
}
