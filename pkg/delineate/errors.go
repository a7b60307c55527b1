package delineate

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func NoFlowlinesError(branch int) error {
	msg := "Branch <em>%d</em> has no stream pixels"
	vars := []any{branch}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.NoFlowlinesExist,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no flowlines in branch %d", fn.Name(), branch),
	}
}

func HydroIDRangeError(taken, n int) error {
	msg := "HydroID sequence exhausted: <em>%d</em> taken, <em>%d</em> requested"
	vars := []any{taken, n}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.HydroIDRangeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %d sequence numbers taken, %d more exceed %d",
			fn.Name(), taken, n, MaxSequence),
	}
}
