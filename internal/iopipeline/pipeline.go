// Package iopipeline drives the per-HUC hydrofabric pipeline: input
// clipping, network decoration, hydro-conditioning, branch fan-out,
// aggregation, the unit error threshold and deny list cleanup.
// This is an impure I/O package, all algorithms live in pkg/.
package iopipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iocache"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iometrics"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iounit"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branchlist"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/lifecycle"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

// Pipeline implements lifecycle.Pipeline.
type Pipeline struct {
	cfg      *config.Config
	store    raster.Store
	layout   iofs.Layout
	cache    *iocache.NetworkCache
	metrics  *iometrics.Metrics
	progress bool

	mu      sync.Mutex
	removed []branchlist.Entry
}

var _ lifecycle.Pipeline = (*Pipeline)(nil)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache stores decorated networks of HUCs, RunBranch needs it.
func WithCache(c *iocache.NetworkCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithMetrics replaces the default metrics, mostly to inject a fake clock.
func WithMetrics(m *iometrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithProgress shows a progress bar of processed HUCs.
func WithProgress(b bool) Option {
	return func(p *Pipeline) {
		p.progress = b
	}
}

// New creates a Pipeline reading and writing rasters through store.
func New(cfg *config.Config, store raster.Store, opts ...Option) *Pipeline {
	res := &Pipeline{
		cfg:    cfg,
		store:  store,
		layout: iofs.Layout{Root: cfg.OutputDir},
	}
	for _, opt := range opts {
		opt(res)
	}
	if res.metrics == nil {
		res.metrics = iometrics.New(nil)
	}
	return res
}

// Metrics returns metrics of the run.
func (p *Pipeline) Metrics() *iometrics.Metrics {
	return p.metrics
}

// Run processes all HUCs of the configuration. Failures of single HUCs or
// branches are recorded in the unit errors directory and do not stop the
// run. The returned error carries the most severe outcome.
func (p *Pipeline) Run(ctx context.Context) error {
	start := p.metrics.Now()
	hucs := slices.Clone(p.cfg.HUCs)
	slices.Sort(hucs)
	hucs = slices.Compact(hucs)
	if len(hucs) == 0 {
		return NoHUCsError()
	}
	if err := p.layout.MakeUnitErrorsDir(); err != nil {
		return err
	}
	cfgPath := filepath.Join(p.layout.Root, iofs.RunConfigFile)
	if err := iofs.WriteRunConfig(cfgPath, p.cfg); err != nil {
		return err
	}
	if p.cfg.Inputs.DEM == "" {
		return MissingInputError("dem")
	}
	in, err := p.loadInputs(ctx, true)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Processing <em>%s</em> HUCs, %d at a time",
		humanize.Comma(int64(len(hucs))), max(p.cfg.JobsNumber, 1))
	gn.Info(msg)

	var bar *pb.ProgressBar
	if p.progress {
		bar = pb.Full.Start(len(hucs))
		bar.Set("prefix", "Processing HUCs: ")
		bar.Set(pb.CleanOnFinish, true)
	}

	var g errgroup.Group
	g.SetLimit(max(p.cfg.JobsNumber, 1))
	var stopErr error
	for _, huc := range hucs {
		if err = ctx.Err(); err != nil {
			stopErr = CancelledError(err)
			break
		}
		if p.layout.Stopped(p.cfg.StopFile) {
			stopErr = StoppedError(p.layout.StopFile(p.cfg.StopFile))
			slog.Warn("Stop file found, no more HUCs are dispatched", "huc", huc)
			break
		}
		g.Go(func() error {
			p.hucTask(ctx, in, huc)
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		bar.Finish()
	}

	err = p.finalize(hucs)
	dur := p.metrics.Since(start)
	slog.Info("Run finished",
		"hucs", len(hucs),
		"duration", gnfmt.TimeString(dur.Seconds()),
		"exit_code", errcode.ExitCode(err),
	)
	gn.Info(fmt.Sprintf("Run finished in <em>%s</em>", gnfmt.TimeString(dur.Seconds())))
	if stopErr != nil {
		return stopErr
	}
	return err
}

// hucTask runs one HUC and records its failure.
func (p *Pipeline) hucTask(ctx context.Context, in *inputs, huc string) {
	start := p.metrics.Now()
	slog.Info("Processing HUC", "huc", huc)
	err := p.runHUC(ctx, in, huc)
	dur := p.metrics.HUCDone(start, err == nil)
	if err == nil {
		slog.Info("HUC done", "huc", huc,
			"duration", gnfmt.TimeString(dur.Seconds()))
		return
	}
	rec := iounit.NewRecord(huc, iounit.HUCBranch, err)
	slog.Error("HUC failed", "huc", huc, "code", rec.Code, "error", err)
	if lerr := iounit.Log(p.layout, rec); lerr != nil {
		slog.Error("Cannot write unit error log", "huc", huc, "error", lerr)
	}
}

// finalize writes run-level outputs and enforces the unit error
// threshold.
func (p *Pipeline) finalize(hucs []string) error {
	recs, err := iounit.WriteSummary(p.layout)
	if err != nil {
		return err
	}
	failed := iounit.FailedUnits(recs)
	p.metrics.UnitErrors.Set(float64(len(failed)))

	p.mu.Lock()
	removed := slices.Clone(p.removed)
	p.mu.Unlock()
	path := filepath.Join(p.layout.Root, iofs.InputsRemoved)
	if err = iounit.WriteRemoved(path, removed); err != nil {
		return err
	}

	if _, err = Cleanup(p.layout, p.cfg.Cleanup, hucs); err != nil {
		slog.Error("Deny list cleanup failed", "error", err)
	}

	path = filepath.Join(p.layout.Root, iofs.MetricsFile)
	if err = p.metrics.WriteFile(path); err != nil {
		slog.Error("Cannot write metrics", "path", path, "error", err)
	}

	if len(failed) > 0 {
		slog.Warn("Failed units", "count", len(failed), "hucs", failed)
	}
	if err = iounit.Check(len(failed), len(hucs), p.cfg.Errors); err != nil {
		return err
	}
	worst := 0
	for _, r := range recs {
		if errcode.Severity(r.Code) > errcode.Severity(worst) {
			worst = r.Code
		}
	}
	if worst != 0 {
		return OutcomeError(worst, len(recs))
	}
	return nil
}

func (p *Pipeline) addRemoved(huc string, branch int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, branchlist.Entry{HUC: huc, Branch: branch})
}

// Removed returns branches dropped so far.
func (p *Pipeline) Removed() []branchlist.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.removed)
}

// writeRaster stores an in-memory raster through the store.
func (p *Pipeline) writeRaster(path string, m *raster.Mem) error {
	ds, err := p.store.Create(path, m.Grid())
	if err != nil {
		return err
	}
	if err = raster.WriteAll(ds, m, p.cfg.Branch.TileSize); err != nil {
		_ = ds.Close()
		return err
	}
	return ds.Close()
}

// readRaster loads a whole raster.
func (p *Pipeline) readRaster(path string) (*raster.Mem, error) {
	ds, err := p.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	return raster.ReadAll(ds)
}
