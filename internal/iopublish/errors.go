package iopublish

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Publishing attempted without database connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

func NoHUCsError() error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PipelineInputError,
		Msg:  "No HUCs to publish",
		Err:  fmt.Errorf("from %s: empty HUC list", fn.Name()),
	}
}

func ReplaceHUCError(huc string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Cannot replace hydro-table rows of HUC <em>%s</em>",
		Vars: []any{huc},
		Err:  fmt.Errorf("from %s: huc %s: %w", fn.Name(), huc, err),
	}
}

func CopyError(huc string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBCopyError,
		Msg:  "Cannot copy hydro-table rows of HUC <em>%s</em>",
		Vars: []any{huc},
		Err:  fmt.Errorf("from %s: copy huc %s: %w", fn.Name(), huc, err),
	}
}

func RecordRunError(runID string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Cannot record publish run <em>%s</em>",
		Vars: []any{runID},
		Err:  fmt.Errorf("from %s: run %s: %w", fn.Name(), runID, err),
	}
}

func VacuumError(err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Cannot vacuum hydro_tables",
		Err:  fmt.Errorf("from %s: vacuum: %w", fn.Name(), err),
	}
}
