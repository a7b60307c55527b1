// Package iogeotiff stores rasters as tiled, LZW compressed GeoTIFF files
// through GDAL.
package iogeotiff

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/airbusgeo/godal"
)

var registerOnce sync.Once

// Store opens and creates GeoTIFF files. It implements raster.Store.
type Store struct {
	// Tile is the edge of GeoTIFF blocks in pixels.
	Tile int
}

var _ raster.Store = (*Store)(nil)

// New creates a Store writing blocks of tile x tile pixels.
func New(tile int) *Store {
	registerOnce.Do(godal.RegisterAll)
	if tile <= 0 {
		tile = 256
	}
	return &Store{Tile: tile}
}

// Open opens the first band of an existing raster in update mode.
func (s *Store) Open(path string) (raster.Dataset, error) {
	registerOnce.Do(godal.RegisterAll)
	ds, err := godal.Open(path, godal.Update())
	if err != nil {
		return nil, OpenError(path, err)
	}
	d, err := wrap(path, ds)
	if err != nil {
		_ = ds.Close()
		return nil, OpenError(path, err)
	}
	return d, nil
}

// OpenRead opens the first band of a raster read-only.
func (s *Store) OpenRead(path string) (raster.Dataset, error) {
	registerOnce.Do(godal.RegisterAll)
	ds, err := godal.Open(path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	d, err := wrap(path, ds)
	if err != nil {
		_ = ds.Close()
		return nil, OpenError(path, err)
	}
	return d, nil
}

// Create creates a single band GeoTIFF with the grid's shape, data type,
// georeference and nodata. All pixels start as nodata.
func (s *Store) Create(path string, g raster.Grid) (raster.Dataset, error) {
	registerOnce.Do(godal.RegisterAll)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, CreateError(path, err)
	}
	opts := godal.CreationOption(
		"TILED=YES",
		"COMPRESS=LZW",
		"BIGTIFF=IF_SAFER",
		"BLOCKXSIZE="+strconv.Itoa(s.Tile),
		"BLOCKYSIZE="+strconv.Itoa(s.Tile),
	)
	ds, err := godal.Create(godal.GTiff, path, 1, dataType(g.DataType),
		g.Width, g.Height, opts)
	if err != nil {
		return nil, CreateError(path, err)
	}
	if err = setGeoref(ds, g); err != nil {
		_ = ds.Close()
		return nil, CreateError(path, err)
	}
	band := ds.Bands()[0]
	if err = band.SetNoData(g.NoData); err != nil {
		_ = ds.Close()
		return nil, CreateError(path, err)
	}
	if err = band.Fill(g.NoData, 0); err != nil {
		_ = ds.Close()
		return nil, CreateError(path, err)
	}
	return &dataset{path: path, ds: ds, band: band, grid: g}, nil
}

// ReadMem reads a whole raster file into memory.
func (s *Store) ReadMem(path string) (*raster.Mem, error) {
	d, err := s.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return raster.ReadAll(d)
}

// WriteMem writes an in-memory raster to a new file.
func (s *Store) WriteMem(path string, m *raster.Mem) error {
	d, err := s.Create(path, m.Grid())
	if err != nil {
		return err
	}
	if err = raster.WriteAll(d, m, s.Tile); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}

// dataset serializes access to a GDAL dataset, which is not safe for
// concurrent use.
type dataset struct {
	mu   sync.Mutex
	path string
	ds   *godal.Dataset
	band godal.Band
	grid raster.Grid
}

func wrap(path string, ds *godal.Dataset) (*dataset, error) {
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("raster has no bands")
	}
	band := bands[0]
	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, err
	}
	g := raster.Grid{
		Width:     st.SizeX,
		Height:    st.SizeY,
		Transform: raster.Transform(gt),
		CRS:       epsg(ds),
		NoData:    raster.NoDataFloat,
		DataType:  gridType(band.Structure().DataType),
	}
	if nd, ok := band.NoData(); ok {
		g.NoData = nd
	}
	return &dataset{path: path, ds: ds, band: band, grid: g}, nil
}

func (d *dataset) Grid() raster.Grid {
	return d.grid
}

func (d *dataset) Read(w raster.Window, buf []float64) error {
	if len(buf) < w.Len() {
		return ReadError(d.path, fmt.Errorf("buffer of %d for window of %d", len(buf), w.Len()))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.band.Read(w.Col, w.Row, buf[:w.Len()], w.Width, w.Height)
	if err != nil {
		return ReadError(d.path, err)
	}
	return nil
}

func (d *dataset) Write(w raster.Window, buf []float64) error {
	if len(buf) < w.Len() {
		return WriteError(d.path, fmt.Errorf("buffer of %d for window of %d", len(buf), w.Len()))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.band.Write(w.Col, w.Row, buf[:w.Len()], w.Width, w.Height)
	if err != nil {
		return WriteError(d.path, err)
	}
	return nil
}

func (d *dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ds == nil {
		return nil
	}
	err := d.ds.Close()
	d.ds = nil
	if err != nil {
		return WriteError(d.path, err)
	}
	return nil
}

func setGeoref(ds *godal.Dataset, g raster.Grid) error {
	if err := ds.SetGeoTransform([6]float64(g.Transform)); err != nil {
		return err
	}
	if g.CRS == 0 {
		return nil
	}
	sr, err := godal.NewSpatialRefFromEPSG(g.CRS)
	if err != nil {
		return err
	}
	defer sr.Close()
	return ds.SetSpatialRef(sr)
}

func epsg(ds *godal.Dataset) int {
	sr := ds.SpatialRef()
	if sr == nil {
		return 0
	}
	defer sr.Close()
	code, err := strconv.Atoi(sr.AuthorityCode(""))
	if err != nil {
		return 0
	}
	return code
}

func dataType(t raster.DataType) godal.DataType {
	switch t {
	case raster.Int32:
		return godal.Int32
	case raster.Int16:
		return godal.Int16
	case raster.Byte:
		return godal.Byte
	default:
		return godal.Float32
	}
}

func gridType(t godal.DataType) raster.DataType {
	switch t {
	case godal.Int32, godal.UInt32:
		return raster.Int32
	case godal.Int16, godal.UInt16:
		return raster.Int16
	case godal.Byte:
		return raster.Byte
	default:
		return raster.Float32
	}
}
