package iopipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iocache"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iogpkg"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iounit"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branch"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/condition"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/delineate"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/gauges"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/ratingcurve"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
	"golang.org/x/sync/errgroup"
)

// hucRun holds the prepared state of one HUC shared by its branches.
type hucRun struct {
	huc string
	// burned is the conditioned but unfilled HUC DEM.
	burned    *raster.Mem
	net       *network.Network
	levees    []condition.Levee
	areas     []condition.ProtectedArea
	gauges    []gauges.Gauge
	roughness ratingcurve.Roughness
	// seq numbers reaches of all branches of the HUC.
	seq *delineate.Sequence
}

func (p *Pipeline) runHUC(ctx context.Context, in *inputs, huc string) error {
	polys, ok := in.wbd[huc]
	if !ok {
		return HUCNotFoundError(huc)
	}
	l := p.layout
	if err := l.MakeHUCDir(huc); err != nil {
		return err
	}
	crs := p.cfg.Inputs.CRS

	bounds := geom.NewBounds()
	for _, poly := range polys {
		bounds.Extend(poly.Bounds())
	}
	buffered := expand(bounds, p.cfg.Branch.BufferDistance)
	bufPoly := rectangle(buffered)
	err := iogpkg.Write(ctx, l.HUCFile(huc, iofs.WBD), wbdLayer("wbd", huc, crs, polys))
	if err != nil {
		return err
	}
	err = iogpkg.Write(ctx, l.HUCFile(huc, iofs.WBDBuffered),
		wbdLayer("wbd_buffered", huc, crs, []geom.Polygon{bufPoly}))
	if err != nil {
		return err
	}

	dem, err := p.readDEM(huc, buffered)
	if err != nil {
		return err
	}
	if err = p.writeRaster(l.HUCFile(huc, iofs.DEMMeters), dem); err != nil {
		return err
	}

	net, err := p.decorate(ctx, huc, network.Clip(in.streams, bufPoly))
	if err != nil {
		return err
	}

	hr := &hucRun{
		huc:       huc,
		net:       net,
		levees:    clipLevees(in.levees, buffered),
		areas:     clipAreas(in.areas, buffered),
		gauges:    clipGauges(in.gauges, buffered),
		roughness: in.roughness,
		seq:       delineate.NewSequence(0),
	}
	if hr.burned, err = p.condition(huc, dem, hr); err != nil {
		return err
	}
	return p.runBranches(ctx, hr)
}

// decorate builds the HUC network, derives its level paths, writes the
// stream layers and caches the result.
func (p *Pipeline) decorate(ctx context.Context, huc string, reaches []network.Reach) (*network.Network, error) {
	if len(reaches) == 0 {
		return nil, UnitNoBranchesError(huc)
	}
	net, err := network.New(reaches)
	if errors.Is(err, network.ErrNetworkCyclic) {
		return nil, network.CyclicError(huc)
	}
	if err != nil {
		return nil, err
	}
	if net.Len() == 0 {
		return nil, UnitNoBranchesError(huc)
	}
	if slices.ContainsFunc(net.Reaches, func(r network.Reach) bool { return r.Order == 0 }) {
		net.StrahlerOrder()
	}
	l, crs := p.layout, p.cfg.Inputs.CRS
	err = iogpkg.Write(ctx, l.HUCFile(huc, iofs.StreamsSubset),
		reachLayer("nwm_subset_streams", crs, net.Reaches, false))
	if err != nil {
		return nil, err
	}
	net.DeriveLevelPaths()
	err = iogpkg.Write(ctx, l.HUCFile(huc, iofs.StreamsLevelPaths),
		reachLayer("nwm_subset_streams_levelPaths", crs, net.Reaches, true))
	if err != nil {
		return nil, err
	}
	slog.Info("Derived level paths", "huc", huc,
		"reaches", net.Len(), "level_paths", len(net.LevelPaths()))

	if p.cache != nil {
		e := iocache.Entry{
			HUC:      huc,
			CRS:      crs,
			Reaches:  net.Reaches,
			StoredAt: p.metrics.Now(),
		}
		if err = p.cache.Store(e); err != nil {
			slog.Warn("Cannot cache network", "huc", huc, "error", err)
		}
	}
	return net, nil
}

// condition burns levees and thalwegs, fills depressions and derives D8
// flow directions and slopes of the HUC. It returns the burned DEM.
func (p *Pipeline) condition(huc string, dem *raster.Mem, hr *hucRun) (*raster.Mem, error) {
	l, tile := p.layout, p.cfg.Branch.TileSize
	g := dem.Grid()
	burned := dem.Clone()
	if p.cfg.Branch.LeveeBurn && len(hr.levees) > 0 {
		nld := condition.LeveeRaster(g, hr.levees)
		out := raster.NewMem(g)
		if err := condition.BurnLevees(dem, nld, out, tile); err != nil {
			return nil, err
		}
		burned = out
	}
	if drop := p.cfg.Branch.ThalwegDrop; drop > 0 {
		lines := make([]geom.LineString, 0, hr.net.Len())
		for _, r := range hr.net.Reaches {
			lines = append(lines, r.Geometry)
		}
		condition.BurnThalweg(burned, lines, drop)
	}
	if err := p.writeRaster(l.HUCFile(huc, iofs.DEMBurned), burned); err != nil {
		return nil, err
	}

	filled := burned.Clone()
	if err := condition.Fill(filled); err != nil {
		return nil, err
	}
	if err := p.writeRaster(l.HUCFile(huc, iofs.DEMBurnedFilled), filled); err != nil {
		return nil, err
	}
	fdir := raster.NewMem(condition.FlowDirGrid(g))
	if err := condition.FlowDirection(filled, fdir, tile); err != nil {
		return nil, err
	}
	if err := p.writeRaster(l.HUCFile(huc, iofs.FlowDirD8), fdir); err != nil {
		return nil, err
	}
	slopes := raster.NewMem(g)
	if err := condition.Slopes(filled, fdir, slopes, tile); err != nil {
		return nil, err
	}
	if err := p.writeRaster(l.HUCFile(huc, iofs.Slopes), slopes); err != nil {
		return nil, err
	}
	return burned, nil
}

// runBranches processes branch zero, then all level path branches, and
// writes the HUC aggregates.
func (p *Pipeline) runBranches(ctx context.Context, hr *hucRun) error {
	huc := hr.huc
	zero := branch.Zero(hr.burned, hr.net)
	levels, err := branch.Generate(hr.burned, hr.net, hr.net.LevelPaths(),
		p.cfg.Branch.BufferDistance)
	if err != nil {
		if errcode.Code(err) != errcode.NoBranchLevelpathsExist {
			return err
		}
		rec := p.quarantine(huc, err)
		slog.Warn("No level path branches", "huc", huc, "code", rec.Code)
	}
	if err = p.writeBranchPolygons(ctx, huc, levels); err != nil {
		return err
	}

	var ok []int
	if p.branchTask(ctx, hr, zero) == nil {
		ok = append(ok, zero.ID)
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(max(p.cfg.BranchJobsNumber, 1))
	for _, b := range levels {
		if ctx.Err() != nil || p.layout.Stopped(p.cfg.StopFile) {
			slog.Warn("Run stopped, skipping remaining branches",
				"huc", huc, "branch", b.ID)
			break
		}
		g.Go(func() error {
			if p.branchTask(ctx, hr, b) == nil {
				mu.Lock()
				ok = append(ok, b.ID)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(ok) == 0 {
		return UnitNoBranchesError(huc)
	}
	if err = p.writeBranchList(huc, ok); err != nil {
		return err
	}
	_, err = Aggregate(p.layout, huc)
	return err
}

// quarantine logs a HUC-level failure that only drops branches.
func (p *Pipeline) quarantine(huc string, err error) iounit.Record {
	rec := iounit.NewRecord(huc, iounit.HUCBranch, err)
	if lerr := iounit.Log(p.layout, rec); lerr != nil {
		slog.Error("Cannot write unit error log", "huc", huc, "error", lerr)
	}
	return rec
}

func (p *Pipeline) writeBranchPolygons(ctx context.Context, huc string, bs []branch.Branch) error {
	l := &vector.Layer{
		Name:    "branch_polygons",
		CRS:     p.cfg.Inputs.CRS,
		Columns: []vector.Column{{Name: "levpa_id", Type: "INTEGER"}},
	}
	for _, b := range bs {
		for _, poly := range b.Polygons() {
			l.Features = append(l.Features, vector.Feature{
				Geometry: poly,
				Props:    map[string]any{"levpa_id": int64(b.ID)},
			})
		}
	}
	return iogpkg.Write(ctx, p.layout.HUCFile(huc, iofs.BranchPolygons), l)
}

// readDEM reads the DEM window covering bounds.
func (p *Pipeline) readDEM(huc string, bounds *geom.Bounds) (*raster.Mem, error) {
	path := p.cfg.Inputs.DEM
	ds, err := p.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	g := ds.Grid()
	if g.CRS != 0 && g.CRS != p.cfg.Inputs.CRS {
		return nil, CRSMismatchError(path, g.CRS, p.cfg.Inputs.CRS)
	}
	w, ok := g.BoundsWindow(bounds)
	if !ok {
		return nil, DEMCoverageError(huc)
	}
	res := raster.NewMem(g.Sub(w))
	if err = ds.Read(w, res.Data); err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(res.Data, func(v float64) bool { return !g.IsNoData(v) }) {
		return nil, DEMCoverageError(huc)
	}
	return res, nil
}

func expand(b *geom.Bounds, d float64) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: geom.Point{X: b.Max.X + d, Y: b.Max.Y + d},
	}
}

func rectangle(b *geom.Bounds) geom.Polygon {
	return geom.Polygon{{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Min.Y},
	}}
}

func clipLevees(ls []condition.Levee, b *geom.Bounds) []condition.Levee {
	var res []condition.Levee
	for _, l := range ls {
		if b.Overlaps(l.Line.Bounds()) {
			res = append(res, l)
		}
	}
	return res
}

func clipAreas(as []condition.ProtectedArea, b *geom.Bounds) []condition.ProtectedArea {
	var res []condition.ProtectedArea
	for _, a := range as {
		if b.Overlaps(a.Polygon.Bounds()) {
			res = append(res, a)
		}
	}
	return res
}

func clipGauges(gs []gauges.Gauge, b *geom.Bounds) []gauges.Gauge {
	var res []gauges.Gauge
	for _, g := range gs {
		if b.Overlaps(g.Point.Bounds()) {
			res = append(res, g)
		}
	}
	return res
}

func wbdLayer(name, huc string, crs int, polys []geom.Polygon) *vector.Layer {
	res := &vector.Layer{
		Name:    name,
		CRS:     crs,
		Columns: []vector.Column{{Name: "HUC8", Type: "TEXT"}},
	}
	for _, poly := range polys {
		res.Features = append(res.Features, vector.Feature{
			Geometry: poly,
			Props:    map[string]any{"HUC8": huc},
		})
	}
	return res
}

// reachLayer converts reaches to features. Level path attributes are
// added when withPaths is true.
func reachLayer(name string, crs int, reaches []network.Reach, withPaths bool) *vector.Layer {
	res := &vector.Layer{
		Name: name,
		CRS:  crs,
		Columns: []vector.Column{
			{Name: "HydroID", Type: "INTEGER"},
			{Name: "feature_id", Type: "INTEGER"},
			{Name: "From_Node", Type: "INTEGER"},
			{Name: "To_Node", Type: "INTEGER"},
			{Name: "LengthKm", Type: "REAL"},
			{Name: "S0", Type: "REAL"},
			{Name: "order_", Type: "INTEGER"},
			{Name: "LakeID", Type: "INTEGER"},
		},
	}
	if withPaths {
		res.Columns = append(res.Columns,
			vector.Column{Name: "levpa_id", Type: "INTEGER"},
			vector.Column{Name: "arbolate_sum", Type: "REAL"},
		)
	}
	for _, r := range reaches {
		props := map[string]any{
			"HydroID":    int64(r.HydroID),
			"feature_id": r.FeatureID,
			"From_Node":  r.FromNode,
			"To_Node":    r.ToNode,
			"LengthKm":   r.LengthKm,
			"S0":         r.S0,
			"order_":     int64(r.Order),
			"LakeID":     int64(r.LakeID),
		}
		if withPaths {
			props["levpa_id"] = int64(r.LevelPathID)
			props["arbolate_sum"] = r.ArbolateSum
		}
		res.Features = append(res.Features, vector.Feature{
			Geometry: r.Geometry,
			Props:    props,
		})
	}
	return res
}
