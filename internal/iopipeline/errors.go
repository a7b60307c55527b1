package iopipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func UnitNoBranchesError(huc string) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.UnitNoBranches,
		Msg:  "HUC <em>%s</em> produced no branches",
		Vars: []any{huc},
		Err:  fmt.Errorf("from %s: no branches in HUC %s", fn.Name(), huc),
	}
}

func MissingInputError(name string) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineInputError,
		Msg:  "Input <em>%s</em> is not configured",
		Vars: []any{name},
		Err:  fmt.Errorf("from %s: input %s is empty", fn.Name(), name),
	}
}

func InputError(name, path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineInputError,
		Msg:  "Cannot load %s input from <em>%s</em>",
		Vars: []any{name, path},
		Err:  fmt.Errorf("from %s: %s %s: %w", fn.Name(), name, path, err),
	}
}

func NoHUCsError() error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineInputError,
		Msg:  "No HUCs to process",
		Err:  fmt.Errorf("from %s: empty HUC list", fn.Name()),
	}
}

func HUCNotFoundError(huc string) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineHUCError,
		Msg:  "HUC <em>%s</em> is not in the WBD layer",
		Vars: []any{huc},
		Err:  fmt.Errorf("from %s: HUC %s has no boundary", fn.Name(), huc),
	}
}

func DEMCoverageError(huc string) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineHUCError,
		Msg:  "DEM does not cover HUC <em>%s</em>",
		Vars: []any{huc},
		Err:  fmt.Errorf("from %s: no DEM pixels for HUC %s", fn.Name(), huc),
	}
}

func CRSMismatchError(path string, got, want int) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RasterGridMismatchError,
		Msg:  "Raster <em>%s</em> is in EPSG:%d, the run uses EPSG:%d",
		Vars: []any{path, got, want},
		Err: fmt.Errorf("from %s: %s has CRS %d, want %d",
			fn.Name(), path, got, want),
	}
}

func CacheMissError(huc string) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineHUCError,
		Msg:  "No cached network for HUC <em>%s</em>, run the HUC first",
		Vars: []any{huc},
		Err:  fmt.Errorf("from %s: cache miss for HUC %s", fn.Name(), huc),
	}
}

func BranchNotFoundError(huc string, branch int) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineBranchError,
		Msg:  "HUC <em>%s</em> has no level path %d",
		Vars: []any{huc, branch},
		Err: fmt.Errorf("from %s: level path %d not in HUC %s",
			fn.Name(), branch, huc),
	}
}

func CancelledError(err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineCancelledError,
		Msg:  "Run was cancelled",
		Err:  fmt.Errorf("from %s: %w", fn.Name(), err),
	}
}

// StoppedError reports a run interrupted by the stop file.
func StoppedError(path string) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineCancelledError,
		Msg:  "Stop file <em>%s</em> found, pending work was not dispatched",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: %w", fn.Name(), context.Canceled),
	}
}

// OutcomeError carries the most severe unit outcome of a run.
func OutcomeError(code, units int) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	c := gn.ErrorCode(code)
	if !errcode.IsExitStatus(c) {
		c = errcode.PipelineHUCError
	}
	return &gn.Error{
		Code: c,
		Msg:  "Run finished with %d unit errors, the worst is %s",
		Vars: []any{units, errcode.Name(c)},
		Err: fmt.Errorf("from %s: %d unit errors, worst code %d",
			fn.Name(), units, code),
	}
}

// NotPreparedError reports a HUC without branch outputs.
func NotPreparedError(huc string) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineHUCError,
		Msg:  "HUC <em>%s</em> has no branches, run it first",
		Vars: []any{huc},
		Err:  fmt.Errorf("from %s: empty branch list of HUC %s", fn.Name(), huc),
	}
}
