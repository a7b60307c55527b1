package iopipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeError(t *testing.T) {
	tests := []struct {
		msg  string
		code int
		want gn.ErrorCode
	}{
		{"exit status", int(errcode.NoValidCrosswalks), errcode.NoValidCrosswalks},
		{"no branches", int(errcode.UnitNoBranches), errcode.UnitNoBranches},
		{"generic", 1, errcode.PipelineHUCError},
	}
	for _, v := range tests {
		var gnErr *gn.Error
		require.ErrorAs(t, OutcomeError(v.code, 2), &gnErr, v.msg)
		assert.Equal(t, v.want, gnErr.Code, v.msg)
	}
}

func TestStoppedError(t *testing.T) {
	err := StoppedError("/out/STOP")
	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.ErrorIs(t, gnErr.Err, context.Canceled)
	assert.Equal(t, errcode.PipelineCancelledError, gnErr.Code)
	assert.Equal(t, []any{"/out/STOP"}, gnErr.Vars)
}

func TestUnitNoBranchesError(t *testing.T) {
	err := UnitNoBranchesError(testHUC)
	assert.Equal(t, 60, errcode.ExitCode(err))
	assert.Equal(t, 1, errcode.ExitCode(InputError("dem", "dem.tif", errors.New("boom"))))
}
