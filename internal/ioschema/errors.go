package ioschema

import (
	"fmt"
	"runtime"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

func NotConnectedError() error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Publishing schema needs a database connection",
		Err:  fmt.Errorf("from %s: not connected", fn.Name()),
	}
}

func GORMConnectionError(err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  "Cannot open GORM session on the publishing database",
		Err:  fmt.Errorf("from %s: gorm: %w", fn.Name(), err),
	}
}

// CreateSchemaError suggests re-creating tables, AutoMigrate cannot change
// incompatible column types.
func CreateSchemaError(err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg: `Cannot create hydro_tables and publish_runs
   Check the CREATE permission of the database user or drop old tables
   with <em>fim publish schema --force</em>`,
		Err: fmt.Errorf("from %s: create schema: %w", fn.Name(), err),
	}
}

func MigrateSchemaError(err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg: `Cannot migrate the publishing schema
   Re-create it with <em>fim publish schema --force</em> and publish HUCs again`,
		Err: fmt.Errorf("from %s: migrate schema: %w", fn.Name(), err),
	}
}

func CollationError(table, column string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaCollationError,
		Msg:  "Cannot set collation of <em>%s.%s</em>",
		Vars: []any{table, column},
		Err: fmt.Errorf("from %s: collation of %s.%s: %w",
			fn.Name(), table, column, err),
	}
}

func DropTablesError(err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  "Cannot drop existing tables of the publishing database",
		Err:  fmt.Errorf("from %s: drop tables: %w", fn.Name(), err),
	}
}
