package network

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func DuplicateIDError(hydroID int) error {
	msg := "HydroID <em>%d</em> is used by more than one reach"
	vars := []any{hydroID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.NetworkDuplicateIDError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: duplicate HydroID %d", fn.Name(), hydroID),
	}
}

func CyclicError(huc string) error {
	msg := "Stream network of HUC <em>%s</em> contains a cycle"
	vars := []any{huc}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.NetworkCyclicError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), ErrNetworkCyclic),
	}
}
