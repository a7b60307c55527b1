package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetAggregateCmd verifies the aggregate command.
func TestGetAggregateCmd(t *testing.T) {
	cmd := getAggregateCmd()
	assert.Equal(t, "aggregate [HUC8...]", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("hucs-file"))
	assert.NotNil(t, cmd.Flags().Lookup("output"))
	assert.Contains(t, cmd.Long, "hydroTable.csv")
}

// TestRunAggregate_NoHUCs verifies an empty HUC list is an input error.
func TestRunAggregate_NoHUCs(t *testing.T) {
	useConfig(t)
	err := runAggregate(nil)
	require.Error(t, err)
	assert.Equal(t, errcode.PipelineInputError, errcode.Code(err))
}

// TestRunAggregate_EmptyBranchList verifies a HUC without branches
// gets an empty hydro-table.
func TestRunAggregate_EmptyBranchList(t *testing.T) {
	useConfig(t)
	root := t.TempDir()
	cfg.Update([]config.Option{config.OptOutputDir(root)})
	l := iofs.Layout{Root: root}
	require.NoError(t, os.MkdirAll(l.HUCDir("12090301"), 0o755))

	err := runAggregate([]string{"12090301"})
	require.NoError(t, err)
	assert.FileExists(t, l.HUCFile("12090301", iofs.HydroTable))
}

// TestGetCleanupCmd verifies deny list flags of the cleanup command.
func TestGetCleanupCmd(t *testing.T) {
	cmd := getCleanupCmd()
	assert.Equal(t, "cleanup [HUC8...]", cmd.Use)
	for _, name := range []string{
		"deny-units", "deny-branches", "deny-branch-zero", "hucs-file", "output",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "Should have %s flag", name)
	}
}

// TestCleanupCmd verifies deny lists from flags remove matching files.
func TestCleanupCmd(t *testing.T) {
	useConfig(t)
	root := t.TempDir()
	l := iofs.Layout{Root: root}
	require.NoError(t, l.MakeBranchDir("12090301", 3))
	burned := l.HUCFile("12090301", iofs.DEMBurned)
	table := l.HUCFile("12090301", iofs.HydroTable)
	for _, path := range []string{burned, table} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	deny := filepath.Join(t.TempDir(), "deny_unit.lst")
	require.NoError(t, os.WriteFile(deny, []byte("dem_burned.tif\n"), 0o644))

	cmd := getCleanupCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-o", root, "--deny-units", deny}))
	require.NoError(t, cmd.RunE(cmd, []string{"12090301"}))

	assert.NoFileExists(t, burned)
	assert.FileExists(t, table)
	assert.Equal(t, deny, cfg.Cleanup.DenyUnits)
}
