package ioschema

import (
	"errors"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("permission denied for schema public")
	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
	}{
		{"gorm", GORMConnectionError(cause), errcode.SchemaGORMConnectionError},
		{"create", CreateSchemaError(cause), errcode.SchemaCreateError},
		{"migrate", MigrateSchemaError(cause), errcode.SchemaMigrateError},
		{"drop", DropTablesError(cause), errcode.SchemaCreateError},
		{"collation", CollationError("hydro_tables", "huc", cause), errcode.SchemaCollationError},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var gnErr *gn.Error
			require.ErrorAs(t, v.err, &gnErr)
			assert.Equal(t, v.code, gnErr.Code)
			assert.NotEmpty(t, gnErr.Msg)
			assert.ErrorIs(t, gnErr.Err, cause)
			assert.Contains(t, gnErr.Err.Error(), "ioschema.TestErrors")
		})
	}
}

func TestCollationErrorVars(t *testing.T) {
	err := CollationError("hydro_tables", "huc", errors.New("boom"))
	gnErr := err.(*gn.Error)
	assert.Equal(t, []any{"hydro_tables", "huc"}, gnErr.Vars)
	assert.Contains(t, gnErr.Err.Error(), "hydro_tables.huc")
}

func TestNotConnectedError(t *testing.T) {
	err := NotConnectedError()
	assert.Equal(t, errcode.DBNotConnectedError, errcode.Code(err))
	assert.Contains(t, err.Error(), "not connected")
}

func TestCreateSchemaErrorHint(t *testing.T) {
	gnErr := CreateSchemaError(errors.New("boom")).(*gn.Error)
	assert.Contains(t, gnErr.Msg, "fim publish schema --force")
}
