package condition

import (
	"math"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
)

// D8 direction codes. NoFlow marks pits and cells without a downslope
// neighbor inside the domain.
const (
	NoFlow    = 0
	East      = 1
	NorthEast = 2
	North     = 3
	NorthWest = 4
	West      = 5
	SouthWest = 6
	South     = 7
	SouthEast = 8
)

// D8Offsets holds column and row offsets indexed by direction code - 1.
var D8Offsets = [8][2]int{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

// Offset returns column and row offsets of a direction code.
func Offset(dir int) (int, int, bool) {
	if dir < East || dir > SouthEast {
		return 0, 0, false
	}
	d := D8Offsets[dir-1]
	return d[0], d[1], true
}

// FlowDirGrid returns the grid of a flow direction raster for a DEM grid.
func FlowDirGrid(g raster.Grid) raster.Grid {
	res := g
	res.NoData = raster.NoDataInt
	res.DataType = raster.Int16
	return res
}

// FlowDirection computes D8 steepest descent directions window by window
// using a one pixel halo. When no neighbor is lower a cell on the edge
// of the data points out of the domain, other cells get NoFlow.
func FlowDirection(dem raster.Reader, out raster.Writer, tile int) error {
	g := dem.Grid()
	if !g.SameShape(out.Grid()) {
		return GridMismatchError("flow direction")
	}
	nodata := out.Grid().NoData
	dist := neighborDistances(g)
	for w := range g.Windows(tile) {
		hw := w.Expand(1, g)
		buf := make([]float64, hw.Len())
		if err := dem.Read(hw, buf); err != nil {
			return err
		}
		at := func(col, row int) (float64, bool) {
			if !g.Contains(col, row) {
				return 0, false
			}
			v := buf[(row-hw.Row)*hw.Width+(col-hw.Col)]
			return v, !g.IsNoData(v)
		}
		res := make([]float64, w.Len())
		for r := range w.Height {
			for c := range w.Width {
				col, row := w.Col+c, w.Row+r
				z, ok := at(col, row)
				if !ok {
					res[r*w.Width+c] = nodata
					continue
				}
				best, dir, exit := 0.0, NoFlow, NoFlow
				for k, d := range D8Offsets {
					nz, ok := at(col+d[0], row+d[1])
					if !ok {
						if exit == NoFlow {
							exit = k + 1
						}
						continue
					}
					s := (z - nz) / dist[k]
					if s > best {
						best, dir = s, k+1
					}
				}
				if dir == NoFlow {
					dir = exit
				}
				res[r*w.Width+c] = float64(dir)
			}
		}
		if err := out.Write(w, res); err != nil {
			return err
		}
	}
	return nil
}

// Slopes computes the dimensionless drop along the D8 direction of every
// cell. Cells draining out of the domain or without flow get 0.
func Slopes(dem, fdir raster.Reader, out raster.Writer, tile int) error {
	g := dem.Grid()
	if !g.SameShape(fdir.Grid()) || !g.SameShape(out.Grid()) {
		return GridMismatchError("slopes")
	}
	fg := fdir.Grid()
	nodata := out.Grid().NoData
	dist := neighborDistances(g)
	for w := range g.Windows(tile) {
		hw := w.Expand(1, g)
		z := make([]float64, hw.Len())
		if err := dem.Read(hw, z); err != nil {
			return err
		}
		fd := make([]float64, w.Len())
		if err := fdir.Read(w, fd); err != nil {
			return err
		}
		res := make([]float64, w.Len())
		for r := range w.Height {
			for c := range w.Width {
				k := r*w.Width + c
				zi := (w.Row+r-hw.Row)*hw.Width + (w.Col + c - hw.Col)
				if g.IsNoData(z[zi]) || fg.IsNoData(fd[k]) {
					res[k] = nodata
					continue
				}
				dc, dr, ok := Offset(int(fd[k]))
				nc, nr := w.Col+c+dc, w.Row+r+dr
				if !ok || !g.Contains(nc, nr) {
					continue
				}
				nz := z[(nr-hw.Row)*hw.Width+(nc-hw.Col)]
				if g.IsNoData(nz) {
					continue
				}
				res[k] = math.Max(0, (z[zi]-nz)/dist[int(fd[k])-1])
			}
		}
		if err := out.Write(w, res); err != nil {
			return err
		}
	}
	return nil
}

func neighborDistances(g raster.Grid) [8]float64 {
	cw, ch := g.Transform.CellWidth(), g.Transform.CellHeight()
	diag := math.Hypot(cw, ch)
	return [8]float64{cw, diag, ch, diag, cw, diag, ch, diag}
}
