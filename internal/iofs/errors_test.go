package iofs

import (
	"errors"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("permission denied")
	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		path string
	}{
		{"create dir", CreateDirError("/out/12090301", cause), errcode.CreateDirError, "/out/12090301"},
		{"copy config", CopyFileError("/home/config.yaml", cause), errcode.CopyFileError, "/home/config.yaml"},
		{"read", ReadFileError("hydroTable.csv", cause), errcode.ReadFileError, "hydroTable.csv"},
		{"write", WriteFileError("branch_ids.csv", cause), errcode.WriteFileError, "branch_ids.csv"},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var gnErr *gn.Error
			require.ErrorAs(t, v.err, &gnErr)
			assert.Equal(t, v.code, gnErr.Code)
			assert.Contains(t, gnErr.Msg, "<em>%s</em>")
			assert.Equal(t, []any{v.path}, gnErr.Vars)
			assert.ErrorIs(t, gnErr.Err, cause)
			assert.Contains(t, gnErr.Err.Error(), "TestErrors",
				"Error should name the calling function")
			assert.Contains(t, gnErr.Err.Error(), v.path)
		})
	}
}
