package iofs

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func CreateDirError(dir string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  "Cannot create directory <em>%s</em>",
		Vars: []any{dir},
		Err:  fmt.Errorf("from %s: mkdir %s: %w", fn.Name(), dir, err),
	}
}

func CopyFileError(file string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyFileError,
		Msg:  "Cannot write the default config to <em>%s</em>",
		Vars: []any{file},
		Err:  fmt.Errorf("from %s: copy %s: %w", fn.Name(), file, err),
	}
}

func ReadFileError(path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  "Cannot read <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: read %s: %w", fn.Name(), path, err),
	}
}

func WriteFileError(path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WriteFileError,
		Msg:  "Cannot write <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: write %s: %w", fn.Name(), path, err),
	}
}
