package iopipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iogpkg"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iometrics"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iounit"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branch"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/condition"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/crosswalk"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/delineate"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/gauges"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydraulics"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/ratingcurve"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/rem"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/gnames/gnfmt"
)

// branchTask runs one branch. A failed branch is logged to the unit
// errors directory and its directory is removed. The error is returned
// for reporting only, it never cancels sibling branches.
func (p *Pipeline) branchTask(ctx context.Context, hr *hucRun, b branch.Branch) error {
	start := p.metrics.Now()
	err := p.runBranch(ctx, hr, b)
	if err == nil {
		dur := p.metrics.BranchDone(start, iometrics.OutcomeOK)
		slog.Info("Branch done", "huc", hr.huc, "branch", b.ID,
			"duration", gnfmt.TimeString(dur.Seconds()))
		return nil
	}

	rec := iounit.NewRecord(hr.huc, b.ID, err)
	outcome := iometrics.OutcomeFailed
	if rec.Quarantined() {
		outcome = iometrics.OutcomeQuarantined
	}
	p.metrics.BranchDone(start, outcome)
	slog.Warn("Branch dropped",
		"huc", hr.huc, "branch", b.ID, "code", rec.Code, "error", err)
	if lerr := iounit.Log(p.layout, rec); lerr != nil {
		slog.Error("Cannot write unit error log",
			"huc", hr.huc, "branch", b.ID, "error", lerr)
	}
	if rerr := p.layout.RemoveBranchDir(hr.huc, b.ID); rerr != nil {
		slog.Error("Cannot remove branch directory",
			"huc", hr.huc, "branch", b.ID, "error", rerr)
	}
	p.addRemoved(hr.huc, b.ID)
	return err
}

// runBranch conditions the branch DEM, delineates reaches and
// catchments, computes the REM, cross-walks reaches to the reference
// network and derives rating curves.
func (p *Pipeline) runBranch(ctx context.Context, hr *hucRun, b branch.Branch) error {
	if err := ctx.Err(); err != nil {
		return CancelledError(err)
	}
	huc, id := hr.huc, b.ID
	l, tile := p.layout, p.cfg.Branch.TileSize
	file := func(tmpl string) string {
		return l.BranchFile(huc, id, tmpl)
	}
	if err := l.MakeBranchDir(huc, id); err != nil {
		return err
	}

	dem, err := branch.Clip(hr.burned, b)
	if err != nil {
		return err
	}
	if len(hr.areas) > 0 {
		systems := leveeSystems(hr.levees)
		if !b.IsZero() {
			systems = condition.AssociateLevees(hr.levees, b.Path,
				p.cfg.Crosswalk.SnapDistance)
		}
		if n := condition.MaskProtected(dem, hr.areas, systems); n > 0 {
			slog.Debug("Masked levee protected pixels",
				"huc", huc, "branch", id, "pixels", n)
		}
	}
	if err = p.writeRaster(file(iofs.BranchDEM), dem); err != nil {
		return err
	}

	g := dem.Grid()
	filled := dem.Clone()
	if err = condition.Fill(filled); err != nil {
		return err
	}
	fdir := raster.NewMem(condition.FlowDirGrid(g))
	if err = condition.FlowDirection(filled, fdir, tile); err != nil {
		return err
	}
	if err = p.writeRaster(file(iofs.BranchFlowDir), fdir); err != nil {
		return err
	}
	slopes := raster.NewMem(g)
	if err = condition.Slopes(filled, fdir, slopes, tile); err != nil {
		return err
	}
	if err = p.writeRaster(file(iofs.BranchSlopes), slopes); err != nil {
		return err
	}

	res, err := delineate.Run(filled, fdir, b.Mask, b.Sources, delineate.Options{
		HUC:            huc,
		LevelPathID:    id,
		MaxReachLength: p.cfg.Branch.MaxReachLength,
		MinSlope:       p.cfg.Branch.MinSlope,
		Seq:            hr.seq,
	})
	if err != nil {
		return err
	}
	if err = p.writeRaster(file(iofs.BranchStreams), res.Streams); err != nil {
		return err
	}

	cw, err := crosswalk.Run(res.Reaches, crosswalk.Catchments(res.Catchments),
		hr.net.Reaches, crosswalk.Options{
			HUC:       huc,
			Branch:    id,
			Tolerance: p.cfg.Crosswalk.SnapDistance,
		})
	if err != nil {
		return err
	}
	catchments := keepLabels(res.Catchments, cw.Catchments)
	if err = p.writeRaster(file(iofs.BranchCatchments), catchments); err != nil {
		return err
	}

	raw := raster.NewMem(g)
	if err = rem.Compute(filled, catchments, raw, tile); err != nil {
		return err
	}
	if err = p.writeRaster(file(iofs.BranchRawREM), raw); err != nil {
		return err
	}
	zeroed := raster.NewMem(g)
	if err = rem.ZeroMasked(raw, b.Mask, zeroed, tile); err != nil {
		return err
	}
	if err = p.writeRaster(file(iofs.BranchREM), zeroed); err != nil {
		return err
	}

	crs := p.cfg.Inputs.CRS
	err = iogpkg.Write(ctx, file(iofs.BranchCatchmentsGPKG),
		catchmentLayer(fmt.Sprintf("catchments_%d", id), crs, cw))
	if err != nil {
		return err
	}
	err = iogpkg.Write(ctx, file(iofs.BranchReaches),
		reachLayer(fmt.Sprintf("reaches_%d", id), crs, cw.Reaches, true))
	if err != nil {
		return err
	}

	stages := hydraulics.Stages(p.cfg.Rating.StageMin, p.cfg.Rating.StageMax,
		p.cfg.Rating.StageInterval)
	acc, err := hydraulics.Integrate(zeroed, catchments, slopes, stages, tile)
	if err != nil {
		return err
	}
	areas := make(map[int]float64, len(cw.Catchments))
	for _, c := range cw.Catchments {
		areas[c.HydroID] = c.AreaSqKm
	}
	props := hydraulics.Properties(acc, stages, cw.Reaches, areas)
	rows := ratingcurve.Compute(props, cw.Reaches, hr.roughness, huc, id)
	ratingcurve.CheckMonotone(rows)
	if err = writeFile(file(iofs.BranchSRC), func(f *os.File) error {
		return ratingcurve.WriteSRC(f, rows)
	}); err != nil {
		return err
	}
	if err = writeFile(file(iofs.BranchHydroTable), func(f *os.File) error {
		return hydrotable.Write(f, ratingcurve.HydroTable(rows))
	}); err != nil {
		return err
	}

	if len(hr.gauges) > 0 {
		mins, err := rem.MinElevations(filled, catchments, tile)
		if err != nil {
			return err
		}
		gs := gauges.Table(hr.gauges, dem, catchments, mins, cw.Reaches, huc)
		if len(gs) > 0 {
			err = writeFile(file(iofs.BranchElevTable), func(f *os.File) error {
				return gauges.Write(f, gs)
			})
			if err != nil {
				return err
			}
		}
	}
	p.metrics.Reaches.Add(float64(len(cw.Reaches)))
	return nil
}

// keepLabels returns a catchment raster holding only the pixels of kept
// catchments. Labels of dropped reaches and of duplicate polygons lost to
// Dedupe become nodata.
func keepLabels(labels *raster.Mem, kept []crosswalk.Catchment) *raster.Mem {
	res := raster.NewMem(labels.Grid())
	for _, c := range kept {
		for _, i := range c.Pixels {
			res.Data[i] = float64(c.HydroID)
		}
	}
	return res
}

func catchmentLayer(name string, crs int, cw *crosswalk.Result) *vector.Layer {
	byID := make(map[int]network.Reach, len(cw.Reaches))
	for _, r := range cw.Reaches {
		byID[r.HydroID] = r
	}
	res := &vector.Layer{
		Name: name,
		CRS:  crs,
		Columns: []vector.Column{
			{Name: "HydroID", Type: "INTEGER"},
			{Name: "feature_id", Type: "INTEGER"},
			{Name: "areasqkm", Type: "REAL"},
			{Name: "LakeID", Type: "INTEGER"},
			{Name: "levpa_id", Type: "INTEGER"},
		},
	}
	for _, c := range cw.Catchments {
		r := byID[c.HydroID]
		res.Features = append(res.Features, vector.Feature{
			Geometry: c.Polygon,
			Props: map[string]any{
				"HydroID":    int64(c.HydroID),
				"feature_id": r.FeatureID,
				"areasqkm":   c.AreaSqKm,
				"LakeID":     int64(r.LakeID),
				"levpa_id":   int64(r.LevelPathID),
			},
		})
	}
	return res
}

// writeFile creates path and writes it with fn.
func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return iofs.WriteFileError(path, err)
	}
	if err = fn(f); err != nil {
		_ = f.Close()
		return iofs.WriteFileError(path, err)
	}
	return f.Close()
}
