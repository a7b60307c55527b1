package iofs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/gnames/gnsys"
)

// Files of a HUC directory.
const (
	WBD                = "wbd.gpkg"
	WBDBuffered        = "wbd_buffered.gpkg"
	DEMMeters          = "dem_meters.tif"
	DEMBurned          = "dem_burned.tif"
	DEMBurnedFilled    = "dem_burned_filled.tif"
	FlowDirD8          = "flowdir_d8_burned_filled.tif"
	Slopes             = "slopes.tif"
	StreamsSubset      = "nwm_subset_streams.gpkg"
	StreamsLevelPaths  = "nwm_subset_streams_levelPaths.gpkg"
	BranchPolygons     = "branch_polygons.gpkg"
	BranchList         = "branch_ids.lst"
	BranchListCSV      = "branch_ids.csv"
	HydroTable         = "hydroTable.csv"
	USGSElevTable      = "usgs_elev_table.csv"
	InputsRemoved      = "gms_inputs_removed.csv"
	UnitErrorsDir      = "unit_errors"
	UnitErrorsSummary  = "non_zero_exit_codes.log"
	MetricsFile        = "metrics.prom"
	InundationMosaic   = "inundation.tif"
	branchesDir        = "branches"
	unitErrorLogSuffix = "_non_zero_exit_codes.log"
)

// Templates of branch files, %d is the branch id.
const (
	BranchREM            = "rem_zeroed_masked_%d.tif"
	BranchCatchments     = "gw_catchments_reaches_filtered_addedAttributes_%d.tif"
	BranchCatchmentsGPKG = "gw_catchments_reaches_filtered_addedAttributes_crosswalked_%d.gpkg"
	BranchReaches        = "demDerived_reaches_split_filtered_addedAttributes_crosswalked_%d.gpkg"
	BranchSRC            = "src_full_crosswalked_%d.csv"
	BranchHydroTable     = "hydroTable_%d.csv"
	BranchDEM            = "dem_%d.tif"
	BranchFlowDir        = "flowdir_%d.tif"
	BranchSlopes         = "slopes_%d.tif"
	BranchStreams        = "streams_%d.tif"
	BranchRawREM         = "rem_%d.tif"
	BranchInundation     = "inundation_%d.tif"
	BranchElevTable      = "usgs_elev_table_%d.csv"
)

// Layout resolves paths of outputs under the output root.
type Layout struct {
	Root string
}

// HUCDir returns the directory of a HUC.
func (l Layout) HUCDir(huc string) string {
	return filepath.Join(l.Root, huc)
}

// HUCFile returns the path of a file of a HUC directory.
func (l Layout) HUCFile(huc, name string) string {
	return filepath.Join(l.HUCDir(huc), name)
}

// BranchesDir returns the parent directory of all branches of a HUC.
func (l Layout) BranchesDir(huc string) string {
	return filepath.Join(l.HUCDir(huc), branchesDir)
}

// BranchDir returns the directory of a branch.
func (l Layout) BranchDir(huc string, branch int) string {
	return filepath.Join(l.BranchesDir(huc), strconv.Itoa(branch))
}

// BranchFile returns the path of a branch file made from a template.
func (l Layout) BranchFile(huc string, branch int, tmpl string) string {
	return filepath.Join(l.BranchDir(huc, branch), fmt.Sprintf(tmpl, branch))
}

// UnitErrorsDir returns the directory of per HUC and per branch error logs.
func (l Layout) UnitErrorsDir() string {
	return filepath.Join(l.Root, UnitErrorsDir)
}

// UnitErrorLog returns the error log of a branch.
func (l Layout) UnitErrorLog(huc string, branch int) string {
	name := fmt.Sprintf("%s_%d%s", huc, branch, unitErrorLogSuffix)
	return filepath.Join(l.UnitErrorsDir(), name)
}

// StopFile returns the path of the cancellation sentinel.
func (l Layout) StopFile(name string) string {
	return filepath.Join(l.Root, name)
}

// Stopped reports if the cancellation sentinel exists.
func (l Layout) Stopped(name string) bool {
	if name == "" {
		return false
	}
	_, err := os.Stat(l.StopFile(name))
	return err == nil
}

// MakeBranchDir creates an empty branch directory, removing leftovers of
// a previous run.
func (l Layout) MakeBranchDir(huc string, branch int) error {
	dir := l.BranchDir(huc, branch)
	if err := gnsys.MakeDir(dir); err != nil {
		return CreateDirError(dir, err)
	}
	if err := gnsys.CleanDir(dir); err != nil {
		return CreateDirError(dir, err)
	}
	return nil
}

// MakeHUCDir creates the HUC directory and its branches directory.
func (l Layout) MakeHUCDir(huc string) error {
	for _, dir := range []string{l.HUCDir(huc), l.BranchesDir(huc)} {
		if err := touchDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// MakeUnitErrorsDir creates the unit errors directory.
func (l Layout) MakeUnitErrorsDir() error {
	return touchDir(l.UnitErrorsDir())
}

// RemoveBranchDir deletes a branch directory with its content.
func (l Layout) RemoveBranchDir(huc string, branch int) error {
	return os.RemoveAll(l.BranchDir(huc, branch))
}

// BranchDirs returns branch ids that have a directory under a HUC.
func (l Layout) BranchDirs(huc string) ([]int, error) {
	entries, err := os.ReadDir(l.BranchesDir(huc))
	if err != nil {
		return nil, ReadFileError(l.BranchesDir(huc), err)
	}
	var res []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		res = append(res, id)
	}
	slices.Sort(res)
	return res, nil
}
