package iopipeline

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branchlist"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/denylist"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/gauges"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
)

// writeBranchList writes branch_ids.csv and branch_ids.lst of the
// successful branches of a HUC.
func (p *Pipeline) writeBranchList(huc string, ok []int) error {
	entries := branchlist.Build(huc, ok)
	if !slices.Contains(ok, 0) {
		entries = branchlist.Remove(entries, huc, 0)
	}
	return WriteBranchList(p.layout, huc, entries)
}

// WriteBranchList writes both branch list files of a HUC.
func WriteBranchList(l iofs.Layout, huc string, entries []branchlist.Entry) error {
	err := writeFile(l.HUCFile(huc, iofs.BranchListCSV), func(f *os.File) error {
		return branchlist.Write(f, entries)
	})
	if err != nil {
		return err
	}
	return writeFile(l.HUCFile(huc, iofs.BranchList), func(f *os.File) error {
		return branchlist.WriteList(f, entries)
	})
}

// ReadBranchList reads branch_ids.csv of a HUC. A missing file gives an
// empty list.
func ReadBranchList(l iofs.Layout, huc string) ([]branchlist.Entry, error) {
	path := l.HUCFile(huc, iofs.BranchListCSV)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	defer f.Close()
	res, err := branchlist.Read(f)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	return res, nil
}

// Aggregate merges hydro-tables and gauge tables of the branches listed
// in branch_ids.csv into the HUC files. Running it again gives the same
// files. It returns the number of hydro-table rows.
func Aggregate(l iofs.Layout, huc string) (int, error) {
	entries, err := ReadBranchList(l, huc)
	if err != nil {
		return 0, err
	}
	var tables [][]hydrotable.Row
	var elev []gauges.Row
	for _, id := range branchlist.Branches(entries) {
		path := l.BranchFile(huc, id, iofs.BranchHydroTable)
		rows, err := readTable(path, hydrotable.Read)
		if err != nil {
			return 0, err
		}
		tables = append(tables, rows)

		path = l.BranchFile(huc, id, iofs.BranchElevTable)
		if _, err = os.Stat(path); err != nil {
			continue
		}
		gs, err := readTable(path, gauges.Read)
		if err != nil {
			return 0, err
		}
		elev = append(elev, gs...)
	}

	rows := hydrotable.Aggregate(tables...)
	err = writeFile(l.HUCFile(huc, iofs.HydroTable), func(f *os.File) error {
		return hydrotable.Write(f, rows)
	})
	if err != nil {
		return 0, err
	}
	if len(elev) > 0 {
		gauges.Sort(elev)
		err = writeFile(l.HUCFile(huc, iofs.USGSElevTable), func(f *os.File) error {
			return gauges.Write(f, elev)
		})
		if err != nil {
			return 0, err
		}
	}
	slog.Info("Aggregated hydro-tables",
		"huc", huc, "branches", len(entries), "rows", len(rows))
	return len(rows), nil
}

func readTable[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	defer f.Close()
	res, err := read(f)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	return res, nil
}

// Cleanup applies deny lists to HUC directories, level path branch
// directories and branch zero directories. It returns the number of
// removed files.
func Cleanup(l iofs.Layout, cfg config.CleanupConfig, hucs []string) (int, error) {
	units, err := denylist.Load(cfg.DenyUnits)
	if err != nil {
		return 0, iofs.ReadFileError(cfg.DenyUnits, err)
	}
	branches, err := denylist.Load(cfg.DenyBranches)
	if err != nil {
		return 0, iofs.ReadFileError(cfg.DenyBranches, err)
	}
	zero, err := denylist.Load(cfg.DenyBranchZero)
	if err != nil {
		return 0, iofs.ReadFileError(cfg.DenyBranchZero, err)
	}
	if len(units.Patterns)+len(branches.Patterns)+len(zero.Patterns) == 0 {
		return 0, nil
	}

	var count int
	for _, huc := range hucs {
		dir := l.HUCDir(huc)
		if _, err = os.Stat(dir); err != nil {
			continue
		}
		removed, err := units.Apply(dir, huc)
		if err != nil {
			return count, err
		}
		count += len(removed)

		ids, err := l.BranchDirs(huc)
		if err != nil {
			return count, err
		}
		for _, id := range ids {
			list := branches
			if id == 0 {
				list = zero
			}
			removed, err = list.Apply(l.BranchDir(huc, id), strconv.Itoa(id))
			if err != nil {
				return count, err
			}
			count += len(removed)
		}
	}
	slog.Info("Deny list cleanup", "files", count)
	return count, nil
}
