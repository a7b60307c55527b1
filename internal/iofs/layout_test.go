package iofs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutPaths(t *testing.T) {
	l := iofs.Layout{Root: "/out"}
	assert.Equal(t, "/out/12090301", l.HUCDir("12090301"))
	assert.Equal(t, "/out/12090301/hydroTable.csv",
		l.HUCFile("12090301", iofs.HydroTable))
	assert.Equal(t, "/out/12090301/branches/3", l.BranchDir("12090301", 3))
	assert.Equal(t,
		"/out/12090301/branches/3/rem_zeroed_masked_3.tif",
		l.BranchFile("12090301", 3, iofs.BranchREM))
	assert.Equal(t,
		"/out/unit_errors/12090301_3_non_zero_exit_codes.log",
		l.UnitErrorLog("12090301", 3))
	assert.Equal(t, "/out/STOP", l.StopFile("STOP"))
}

func TestLayoutDirs(t *testing.T) {
	l := iofs.Layout{Root: t.TempDir()}
	huc := "12090301"
	require.NoError(t, l.MakeHUCDir(huc))
	for _, b := range []int{10, 2, 0} {
		require.NoError(t, l.MakeBranchDir(huc, b))
	}
	require.NoError(t, os.WriteFile(
		filepath.Join(l.BranchesDir(huc), "notes.txt"), []byte("x"), 0644))

	ids, err := l.BranchDirs(huc)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 10}, ids)

	leftover := l.BranchFile(huc, 2, iofs.BranchDEM)
	require.NoError(t, os.WriteFile(leftover, []byte("x"), 0644))
	require.NoError(t, l.MakeBranchDir(huc, 2))
	_, err = os.Stat(leftover)
	assert.True(t, os.IsNotExist(err), "branch dir is emptied")

	require.NoError(t, l.RemoveBranchDir(huc, 2))
	ids, err = l.BranchDirs(huc)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10}, ids)
}

func TestStopped(t *testing.T) {
	l := iofs.Layout{Root: t.TempDir()}
	assert.False(t, l.Stopped("STOP"))
	assert.False(t, l.Stopped(""))
	require.NoError(t, os.WriteFile(l.StopFile("STOP"), nil, 0644))
	assert.True(t, l.Stopped("STOP"))
}
