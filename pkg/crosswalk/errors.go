package crosswalk

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func NoValidCrosswalksError(huc string, branch int) error {
	msg := "No derived reach of HUC %s branch %d matches the reference network"
	vars := []any{huc, branch}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.NoValidCrosswalks,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"from %s: no valid crosswalks for %s/%d", fn.Name(), huc, branch,
		),
	}
}
