package iogpkg

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func OpenError(path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.VectorOpenError,
		Msg:  "Cannot open GeoPackage <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: cannot open %s: %w", fn.Name(), path, err),
	}
}

func ReadError(path, layer string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.VectorReadError,
		Msg:  "Cannot read layer <em>%s</em> of %s",
		Vars: []any{layer, path},
		Err: fmt.Errorf("from %s: cannot read %s of %s: %w",
			fn.Name(), layer, path, err),
	}
}

func WriteError(path, layer string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.VectorWriteError,
		Msg:  "Cannot write layer <em>%s</em> to %s",
		Vars: []any{layer, path},
		Err: fmt.Errorf("from %s: cannot write %s to %s: %w",
			fn.Name(), layer, path, err),
	}
}

func ReprojectError(from, to int, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.VectorReprojectError,
		Msg:  "Cannot reproject from EPSG:%d to EPSG:%d",
		Vars: []any{from, to},
		Err: fmt.Errorf("from %s: reproject %d to %d: %w",
			fn.Name(), from, to, err),
	}
}
