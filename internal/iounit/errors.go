package iounit

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func ExcessUnitErrorsError(failed, submitted int, percent float64) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ExcessUnitErrors,
		Msg:  "%d of %d HUCs failed (%.1f%%), aborting",
		Vars: []any{failed, submitted, percent},
		Err: fmt.Errorf("from %s: %d of %d units failed",
			fn.Name(), failed, submitted),
	}
}
