package branch

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func NoLevelPathsError(reason string) error {
	msg := "Branch generator produced no branches: %s"
	vars := []any{reason}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.NoBranchLevelpathsExist,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no branch level paths: %s", fn.Name(), reason),
	}
}
