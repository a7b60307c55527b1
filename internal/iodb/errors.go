package iodb

import (
	"fmt"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
)

// ConnectionError is returned when a database connection fails.
func ConnectionError(host string, port int, database, user string, err error) error {
	msg := `Cannot connect to PostgreSQL

<em>Possible causes:</em>
  - PostgreSQL is not running
  - Database configuration is incorrect
  - Network connectivity issues

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>
  2. Verify the database <em>%s</em> exists and user <em>%s</em> can
     access it
  3. Review the database section of ~/.config/fim/config.yaml
     or FIM_DATABASE_* environment variables (database: %s)`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{host, port, database, user, database},
		Err:  fmt.Errorf("connect to %s:%d/%s: %w", host, port, database, err),
	}
}

// NotConnectedError is returned when an operation needs a connection
// pool that was not created.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database operation attempted without a connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

func TableExistsCheckError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Cannot check if table <em>%s</em> exists",
		Vars: []any{table},
		Err:  fmt.Errorf("table exists check %s: %w", table, err),
	}
}

func TableCheckError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Cannot check database tables",
		Err:  fmt.Errorf("table check: %w", err),
	}
}

func QueryTablesError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Cannot list database tables",
		Err:  fmt.Errorf("query tables: %w", err),
	}
}

func ScanTableError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Cannot read table names",
		Err:  fmt.Errorf("scan table name: %w", err),
	}
}

func DropTableError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Cannot drop table <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("drop table %s: %w", table, err),
	}
}
