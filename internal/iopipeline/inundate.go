package iopipeline

import (
	"context"
	"log/slog"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iogpkg"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branchlist"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/inundate"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/mosaic"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/ctessum/geom"
)

// Inundate writes the depth raster of every listed branch of a HUC for a
// forecast, then their mosaic masked by the HUC boundary. It returns the
// path of the mosaic.
func (p *Pipeline) Inundate(ctx context.Context, huc string, forecast map[int64]float64) (string, error) {
	l := p.layout
	entries, err := ReadBranchList(l, huc)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", NotPreparedError(huc)
	}

	var depths []raster.Reader
	for _, id := range branchlist.Branches(entries) {
		if err = ctx.Err(); err != nil {
			return "", CancelledError(err)
		}
		d, err := p.inundateBranch(huc, id, forecast)
		if err != nil {
			return "", err
		}
		depths = append(depths, d)
	}

	var mask []geom.Polygon
	wbd, err := iogpkg.Read(ctx, l.HUCFile(huc, iofs.WBD), "", p.cfg.Inputs.CRS)
	if err == nil {
		mask, _ = wbd.Polygons()
	} else {
		slog.Warn("HUC boundary is not available, mosaic is not masked",
			"huc", huc, "error", err)
	}

	out := l.HUCFile(huc, iofs.InundationMosaic)
	opts := mosaic.Options{
		Tile:    p.cfg.Branch.TileSize,
		Workers: p.cfg.BranchJobsNumber,
		Mask:    mask,
	}
	if err = MosaicRasters(ctx, p.store, depths, out, opts); err != nil {
		return "", err
	}
	slog.Info("Inundation mosaic written",
		"huc", huc, "branches", len(depths), "path", out)
	return out, nil
}

// inundateBranch computes and writes the depth raster of one branch.
func (p *Pipeline) inundateBranch(huc string, id int, forecast map[int64]float64) (*raster.Mem, error) {
	l := p.layout
	rows, err := readTable(l.BranchFile(huc, id, iofs.BranchHydroTable), hydrotable.Read)
	if err != nil {
		return nil, err
	}
	rem, err := p.readRaster(l.BranchFile(huc, id, iofs.BranchREM))
	if err != nil {
		return nil, err
	}
	catchments, err := p.readRaster(l.BranchFile(huc, id, iofs.BranchCatchments))
	if err != nil {
		return nil, err
	}

	stages := inundate.Stages(rows, forecast)
	g := rem.Grid()
	g.NoData = raster.NoDataFloat
	g.DataType = raster.Float32
	depth := raster.NewMem(g)
	if err = inundate.Depth(rem, catchments, stages, depth, p.cfg.Branch.TileSize); err != nil {
		return nil, err
	}
	if err = p.writeRaster(l.BranchFile(huc, id, iofs.BranchInundation), depth); err != nil {
		return nil, err
	}
	slog.Debug("Branch inundated", "huc", huc, "branch", id, "catchments", len(stages))
	return depth, nil
}

// MosaicRasters merges inputs into a new raster at out.
func MosaicRasters(
	ctx context.Context,
	store raster.Store,
	inputs []raster.Reader,
	out string,
	opts mosaic.Options,
) error {
	g, err := mosaic.Footprint(inputs, opts.Resolution)
	if err != nil {
		return err
	}
	ds, err := store.Create(out, g)
	if err != nil {
		return err
	}
	if err = mosaic.Merge(ctx, inputs, ds, opts); err != nil {
		_ = ds.Close()
		return err
	}
	return ds.Close()
}

// MosaicFiles merges raster files into a new raster at out.
func MosaicFiles(
	ctx context.Context,
	store raster.Store,
	paths []string,
	out string,
	opts mosaic.Options,
) error {
	if len(paths) == 0 {
		return MissingInputError("mosaic inputs")
	}
	inputs := make([]raster.Reader, 0, len(paths))
	for _, path := range paths {
		ds, err := store.Open(path)
		if err != nil {
			return InputError("raster", path, err)
		}
		defer ds.Close()
		inputs = append(inputs, ds)
	}
	return MosaicRasters(ctx, store, inputs, out, opts)
}
