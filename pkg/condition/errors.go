package condition

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func FillError(reason string) error {
	msg := "Depression fill failed: %s"
	vars := []any{reason}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.FillError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: fill failed: %s", fn.Name(), reason),
	}
}

func GridMismatchError(op string) error {
	msg := "Rasters of <em>%s</em> do not share the same grid"
	vars := []any{op}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RasterGridMismatchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: grid mismatch in %s", fn.Name(), op),
	}
}
