package iopipeline

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branch"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branchlist"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/delineate"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
)

// RunBranch re-runs one branch of a HUC prepared by Run. The decorated
// network comes from the cache, the burned DEM from the HUC directory.
// The branch list and the HUC aggregates are updated with the outcome.
func (p *Pipeline) RunBranch(ctx context.Context, huc string, id int) error {
	if p.cache == nil {
		return CacheMissError(huc)
	}
	e, err := p.cache.Get(huc)
	if err != nil {
		return err
	}
	if e == nil {
		return CacheMissError(huc)
	}
	if e.CRS != p.cfg.Inputs.CRS {
		return CRSMismatchError("network cache", e.CRS, p.cfg.Inputs.CRS)
	}
	net, err := network.New(e.Reaches)
	if err != nil {
		return err
	}
	burned, err := p.readRaster(p.layout.HUCFile(huc, iofs.DEMBurned))
	if err != nil {
		return err
	}
	in, err := p.loadInputs(ctx, false)
	if err != nil {
		return err
	}
	taken, err := takenSequence(p.layout, huc, id)
	if err != nil {
		return err
	}
	bounds := burned.Grid().Bounds()
	hr := &hucRun{
		huc:       huc,
		burned:    burned,
		net:       net,
		levees:    clipLevees(in.levees, bounds),
		areas:     clipAreas(in.areas, bounds),
		gauges:    clipGauges(in.gauges, bounds),
		roughness: in.roughness,
		seq:       delineate.NewSequence(taken),
	}

	b, err := p.findBranch(hr, id)
	if err != nil {
		return err
	}
	berr := p.branchTask(ctx, hr, b)

	entries, err := ReadBranchList(p.layout, huc)
	if err != nil {
		return err
	}
	entries = branchlist.Remove(entries, huc, id)
	if berr == nil {
		entries = append(entries, branchlist.Entry{HUC: huc, Branch: id})
	}
	sortEntries(entries)
	if err = WriteBranchList(p.layout, huc, entries); err != nil {
		return err
	}
	if _, err = Aggregate(p.layout, huc); err != nil {
		return err
	}
	if berr != nil {
		slog.Warn("Branch re-run failed", "huc", huc, "branch", id)
	}
	return berr
}

// takenSequence returns the largest HydroID sequence number used by the
// listed branches of a HUC other than skip.
func takenSequence(l iofs.Layout, huc string, skip int) (int, error) {
	entries, err := ReadBranchList(l, huc)
	if err != nil {
		return 0, err
	}
	var res int
	for _, id := range branchlist.Branches(entries) {
		if id == skip {
			continue
		}
		rows, err := readTable(l.BranchFile(huc, id, iofs.BranchHydroTable),
			hydrotable.Read)
		if err != nil {
			return 0, err
		}
		for _, r := range rows {
			res = max(res, r.HydroID%(delineate.MaxSequence+1))
		}
	}
	return res, nil
}

func (p *Pipeline) findBranch(hr *hucRun, id int) (branch.Branch, error) {
	if id == branch.ZeroID {
		return branch.Zero(hr.burned, hr.net), nil
	}
	for _, lp := range hr.net.LevelPaths() {
		if lp.ID != id {
			continue
		}
		bs, err := branch.Generate(hr.burned, hr.net, []network.LevelPath{lp},
			p.cfg.Branch.BufferDistance)
		if err != nil {
			return branch.Branch{}, err
		}
		return bs[0], nil
	}
	return branch.Branch{}, BranchNotFoundError(hr.huc, id)
}

// sortEntries orders level path branches by ID with branch zero last.
func sortEntries(es []branchlist.Entry) {
	last := func(e branchlist.Entry) int {
		if e.Branch == branch.ZeroID {
			return 1
		}
		return 0
	}
	slices.SortFunc(es, func(a, b branchlist.Entry) int {
		return cmp.Or(
			cmp.Compare(a.HUC, b.HUC),
			cmp.Compare(last(a), last(b)),
			cmp.Compare(a.Branch, b.Branch),
		)
	})
}
