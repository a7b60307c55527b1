// Package mosaic merges overlapping branch rasters into one raster keeping
// the largest valid value of every pixel.
package mosaic

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
	"golang.org/x/sync/errgroup"
)

// Options of a mosaic.
type Options struct {
	// Resolution is the output cell size, 0 takes the finest input.
	Resolution float64
	// Tile is the edge of output tiles in pixels.
	Tile int
	// Workers limits concurrently processed tiles.
	Workers int
	// Mask keeps only pixels with centers inside the polygons, nil keeps
	// all.
	Mask []geom.Polygon
}

// Footprint returns the output grid covering all inputs. Inputs must
// share a CRS.
func Footprint(inputs []raster.Reader, res float64) (raster.Grid, error) {
	if len(inputs) == 0 {
		return raster.Grid{}, fmt.Errorf("mosaic needs at least one input")
	}
	crs := inputs[0].Grid().CRS
	bounds := geom.NewBounds()
	finest := math.Inf(1)
	for _, in := range inputs {
		g := in.Grid()
		if g.CRS != crs {
			return raster.Grid{}, fmt.Errorf("mosaic inputs have CRS %d and %d", crs, g.CRS)
		}
		bounds.Extend(g.Bounds())
		finest = math.Min(finest, g.Transform.CellWidth())
	}
	if res <= 0 {
		res = finest
	}
	w := int(math.Ceil((bounds.Max.X-bounds.Min.X)/res - 1e-9))
	h := int(math.Ceil((bounds.Max.Y-bounds.Min.Y)/res - 1e-9))
	g := raster.NewGrid(max(w, 1), max(h, 1), bounds.Min.X, bounds.Max.Y, res, crs)
	g.NoData = raster.NoDataFloat
	g.DataType = raster.Float32
	return g, nil
}

// Merge writes the mosaic of inputs to out, whose grid is usually made by
// Footprint. Every output pixel takes the largest valid input value
// sampled at its center, or nodata when no input is valid there. Tiles
// are computed concurrently, reads and writes are serialized.
func Merge(ctx context.Context, inputs []raster.Reader, out raster.Writer, opts Options) error {
	og := out.Grid()
	tile := opts.Tile
	if tile <= 0 {
		tile = 256
	}
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for w := range og.Windows(tile) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := mergeTile(inputs, og, w, &mu)
			if err != nil {
				return err
			}
			if opts.Mask != nil {
				mask(og, w, buf, opts.Mask)
			}
			mu.Lock()
			defer mu.Unlock()
			return out.Write(w, buf)
		})
	}
	return g.Wait()
}

func mergeTile(inputs []raster.Reader, og raster.Grid, w raster.Window, mu *sync.Mutex) ([]float64, error) {
	res := make([]float64, w.Len())
	for i := range res {
		res[i] = math.Inf(-1)
	}
	tb := og.WindowBounds(w)
	for _, in := range inputs {
		ig := in.Grid()
		iw, ok := ig.BoundsWindow(tb)
		if !ok {
			continue
		}
		data := make([]float64, iw.Len())
		mu.Lock()
		err := in.Read(iw, data)
		mu.Unlock()
		if err != nil {
			return nil, err
		}
		for r := range w.Height {
			for c := range w.Width {
				x, y := og.Center(w.Col+c, w.Row+r)
				col, row := ig.PixelAt(x, y)
				col, row = col-iw.Col, row-iw.Row
				if col < 0 || row < 0 || col >= iw.Width || row >= iw.Height {
					continue
				}
				v := data[row*iw.Width+col]
				if ig.IsNoData(v) {
					continue
				}
				k := r*w.Width + c
				res[k] = math.Max(res[k], v)
			}
		}
	}
	for i, v := range res {
		if math.IsInf(v, -1) {
			res[i] = og.NoData
		}
	}
	return res, nil
}

func mask(g raster.Grid, w raster.Window, buf []float64, polys []geom.Polygon) {
	for r := range w.Height {
		for c := range w.Width {
			k := r*w.Width + c
			if g.IsNoData(buf[k]) {
				continue
			}
			x, y := g.Center(w.Col+c, w.Row+r)
			p := geom.Point{X: x, Y: y}
			inside := false
			for _, poly := range polys {
				if vector.PointInPolygon(p, poly) {
					inside = true
					break
				}
			}
			if !inside {
				buf[k] = g.NoData
			}
		}
	}
}
