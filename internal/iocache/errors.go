package iocache

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func OpenError(dir string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CacheOpenError,
		Msg:  "Cannot open network cache at <em>%s</em>",
		Vars: []any{dir},
		Err:  fmt.Errorf("from %s: cannot open cache %s: %w", fn.Name(), dir, err),
	}
}

func StoreError(huc string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CacheStoreError,
		Msg:  "Cannot cache network of HUC %s",
		Vars: []any{huc},
		Err:  fmt.Errorf("from %s: cache %s: %w", fn.Name(), huc, err),
	}
}

func NotOpenError() error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CacheNotOpenError,
		Msg:  "Network cache is not open",
		Err:  fmt.Errorf("from %s: cache is not open", fn.Name()),
	}
}
