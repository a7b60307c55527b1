package iodb

import (
	"errors"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConnectionError_Structure verifies error structure.
func TestConnectionError_Structure(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := ConnectionError("localhost", 5432, "fim", "postgres", originalErr)
	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")
	assert.Equal(t, errcode.DBConnectionError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 5)
	assert.ErrorIs(t, gnErr.Err, originalErr)
}

// TestNotConnectedError_Structure verifies error structure.
func TestNotConnectedError_Structure(t *testing.T) {
	gnErr, ok := NotConnectedError().(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")
	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
}

// TestAllErrors_ErrorWrapping verifies proper error wrapping.
func TestAllErrors_ErrorWrapping(t *testing.T) {
	originalErr := errors.New("root cause")

	tests := []struct {
		name  string
		error error
		vars  int
	}{
		{"TableCheckError", TableCheckError(originalErr), 0},
		{"TableExistsCheckError", TableExistsCheckError("table", originalErr), 1},
		{"QueryTablesError", QueryTablesError(originalErr), 0},
		{"ScanTableError", ScanTableError(originalErr), 0},
		{"DropTableError", DropTableError("table", originalErr), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gnErr := tt.error.(*gn.Error)
			assert.Equal(t, errcode.DBQueryError, gnErr.Code)
			assert.Len(t, gnErr.Vars, tt.vars)
			assert.ErrorIs(t, gnErr.Err, originalErr,
				"Should wrap original error")
		})
	}
}
