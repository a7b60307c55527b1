// Package raster describes single band rasters and windowed access to them.
//
// Whole-raster algorithms use the in-memory Mem band, windowed algorithms
// read and write through Reader and Writer, so they do not need the full
// raster in memory. File backed implementations live in internal/iogeotiff.
package raster

import (
	"iter"
	"math"

	"github.com/ctessum/geom"
)

// DataType is the storage type of a raster band.
type DataType int

const (
	Float32 DataType = iota
	Int32
	Int16
	Byte
)

// String returns the name of the data type.
func (d DataType) String() string {
	switch d {
	case Int32:
		return "Int32"
	case Int16:
		return "Int16"
	case Byte:
		return "Byte"
	default:
		return "Float32"
	}
}

// Default nodata values for categorical and continuous rasters.
const (
	NoDataFloat = -9999.0
	NoDataInt   = -1.0
)

// Transform is an affine geo-transform in GDAL order: origin x,
// pixel width, row rotation, origin y, column rotation, pixel height.
// Pixel height is negative for north-up rasters.
type Transform [6]float64

// PixelToWorld returns map coordinates of a fractional pixel position.
func (t Transform) PixelToWorld(col, row float64) (float64, float64) {
	x := t[0] + col*t[1] + row*t[2]
	y := t[3] + col*t[4] + row*t[5]
	return x, y
}

// WorldToPixel returns the fractional pixel position of map coordinates.
// Rotated transforms are not supported.
func (t Transform) WorldToPixel(x, y float64) (float64, float64) {
	return (x - t[0]) / t[1], (y - t[3]) / t[5]
}

// CellWidth returns the pixel width in map units.
func (t Transform) CellWidth() float64 {
	return math.Abs(t[1])
}

// CellHeight returns the pixel height in map units.
func (t Transform) CellHeight() float64 {
	return math.Abs(t[5])
}

// CellArea returns the area of one pixel in square map units.
func (t Transform) CellArea() float64 {
	return t.CellWidth() * t.CellHeight()
}

// Grid describes the shape, georeference and nodata of a raster band.
type Grid struct {
	Width     int
	Height    int
	Transform Transform
	// CRS is an EPSG code.
	CRS      int
	NoData   float64
	DataType DataType
}

// NewGrid creates a north-up grid from its upper-left corner and
// square cell size.
func NewGrid(width, height int, x0, y0, cell float64, crs int) Grid {
	return Grid{
		Width:     width,
		Height:    height,
		Transform: Transform{x0, cell, 0, y0, 0, -cell},
		CRS:       crs,
		NoData:    NoDataFloat,
		DataType:  Float32,
	}
}

// Len returns the number of pixels.
func (g Grid) Len() int {
	return g.Width * g.Height
}

// Index returns the offset of a pixel in a row-major buffer.
func (g Grid) Index(col, row int) int {
	return row*g.Width + col
}

// Contains reports if the pixel position is inside the grid.
func (g Grid) Contains(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.Width && row < g.Height
}

// Center returns map coordinates of the pixel center.
func (g Grid) Center(col, row int) (float64, float64) {
	return g.Transform.PixelToWorld(float64(col)+0.5, float64(row)+0.5)
}

// PixelAt returns the pixel containing map coordinates. The result can
// lie outside of the grid.
func (g Grid) PixelAt(x, y float64) (int, int) {
	c, r := g.Transform.WorldToPixel(x, y)
	return int(math.Floor(c)), int(math.Floor(r))
}

// Bounds returns the map extent of the grid.
func (g Grid) Bounds() *geom.Bounds {
	x0, y0 := g.Transform.PixelToWorld(0, 0)
	x1, y1 := g.Transform.PixelToWorld(float64(g.Width), float64(g.Height))
	return &geom.Bounds{
		Min: geom.Point{X: math.Min(x0, x1), Y: math.Min(y0, y1)},
		Max: geom.Point{X: math.Max(x0, x1), Y: math.Max(y0, y1)},
	}
}

// WindowBounds returns the map extent of a window.
func (g Grid) WindowBounds(w Window) *geom.Bounds {
	x0, y0 := g.Transform.PixelToWorld(float64(w.Col), float64(w.Row))
	x1, y1 := g.Transform.PixelToWorld(
		float64(w.Col+w.Width), float64(w.Row+w.Height),
	)
	return &geom.Bounds{
		Min: geom.Point{X: math.Min(x0, x1), Y: math.Min(y0, y1)},
		Max: geom.Point{X: math.Max(x0, x1), Y: math.Max(y0, y1)},
	}
}

// BoundsWindow returns the window of pixels overlapping bounds b, clipped
// to the grid.
func (g Grid) BoundsWindow(b *geom.Bounds) (Window, bool) {
	if !g.Bounds().Overlaps(b) {
		return Window{}, false
	}
	c0, r0 := g.PixelAt(b.Min.X, b.Max.Y)
	c1, r1 := g.PixelAt(b.Max.X, b.Min.Y)
	c0, c1 = min(c0, c1), max(c0, c1)
	r0, r1 = min(r0, r1), max(r0, r1)
	w := Window{Col: c0, Row: r0, Width: c1 - c0 + 1, Height: r1 - r0 + 1}
	return w.Intersect(g.Full())
}

// SameShape reports if two grids share size and georeference.
func (g Grid) SameShape(o Grid) bool {
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i := range g.Transform {
		if math.Abs(g.Transform[i]-o.Transform[i]) > 1e-6 {
			return false
		}
	}
	return true
}

// IsNoData reports if v is nodata for the grid. NaN is always nodata.
func (g Grid) IsNoData(v float64) bool {
	return math.IsNaN(v) || v == g.NoData
}

// Full returns the window covering the whole grid.
func (g Grid) Full() Window {
	return Window{Width: g.Width, Height: g.Height}
}

// Windows yields tiles of the given edge covering the grid in row-major
// order. Tiles at the right and bottom edges can be smaller.
func (g Grid) Windows(tile int) iter.Seq[Window] {
	if tile <= 0 {
		tile = 256
	}
	return func(yield func(Window) bool) {
		for row := 0; row < g.Height; row += tile {
			for col := 0; col < g.Width; col += tile {
				w := Window{
					Col:    col,
					Row:    row,
					Width:  min(tile, g.Width-col),
					Height: min(tile, g.Height-row),
				}
				if !yield(w) {
					return
				}
			}
		}
	}
}

// Sub returns a grid covering the window of g.
func (g Grid) Sub(w Window) Grid {
	res := g
	res.Width = w.Width
	res.Height = w.Height
	x, y := g.Transform.PixelToWorld(float64(w.Col), float64(w.Row))
	res.Transform[0] = x
	res.Transform[3] = y
	return res
}

// Window is a rectangular block of pixels.
type Window struct {
	Col    int
	Row    int
	Width  int
	Height int
}

// Len returns the number of pixels in the window.
func (w Window) Len() int {
	return w.Width * w.Height
}

// Expand grows the window by halo pixels on every side and clips the
// result to the grid.
func (w Window) Expand(halo int, g Grid) Window {
	c0 := max(w.Col-halo, 0)
	r0 := max(w.Row-halo, 0)
	c1 := min(w.Col+w.Width+halo, g.Width)
	r1 := min(w.Row+w.Height+halo, g.Height)
	return Window{Col: c0, Row: r0, Width: c1 - c0, Height: r1 - r0}
}

// Intersect returns the overlap of two windows and false if they do not
// overlap.
func (w Window) Intersect(o Window) (Window, bool) {
	c0 := max(w.Col, o.Col)
	r0 := max(w.Row, o.Row)
	c1 := min(w.Col+w.Width, o.Col+o.Width)
	r1 := min(w.Row+w.Height, o.Row+o.Height)
	if c1 <= c0 || r1 <= r0 {
		return Window{}, false
	}
	return Window{Col: c0, Row: r0, Width: c1 - c0, Height: r1 - r0}, true
}

// Reader reads windows of a raster band into row-major buffers.
type Reader interface {
	Grid() Grid
	// Read fills buf (len >= w.Len()) with the values of the window.
	Read(w Window, buf []float64) error
}

// Writer writes row-major buffers into windows of a raster band.
type Writer interface {
	Grid() Grid
	// Write stores the first w.Len() values of buf into the window.
	Write(w Window, buf []float64) error
}

// Dataset is an open raster band.
type Dataset interface {
	Reader
	Writer
	Close() error
}

// Store opens and creates rasters by path.
type Store interface {
	// Open opens an existing raster for reading and writing.
	Open(path string) (Dataset, error)
	// Create creates a new raster filled with nodata.
	Create(path string, g Grid) (Dataset, error)
}
