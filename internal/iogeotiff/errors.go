package iogeotiff

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func OpenError(path string, err error) error {
	msg := "Cannot open raster <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RasterOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot open %s: %w", fn.Name(), path, err),
	}
}

func CreateError(path string, err error) error {
	msg := "Cannot create raster <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RasterCreateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot create %s: %w", fn.Name(), path, err),
	}
}

func ReadError(path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RasterReadError,
		Msg:  "Cannot read raster <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: read %s: %w", fn.Name(), path, err),
	}
}

func WriteError(path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RasterWriteError,
		Msg:  "Cannot write raster <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: write %s: %w", fn.Name(), path, err),
	}
}
