package iopublish

import (
	"context"
	"os"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iodb"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/ioschema"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iotesting"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHydroTable(t *testing.T, l iofs.Layout, huc string, rows []hydrotable.Row) {
	t.Helper()
	require.NoError(t, l.MakeHUCDir(huc))
	f, err := os.Create(l.HUCFile(huc, iofs.HydroTable))
	require.NoError(t, err)
	require.NoError(t, hydrotable.Write(f, rows))
	require.NoError(t, f.Close())
}

func testRows(huc string) []hydrotable.Row {
	return []hydrotable.Row{
		{HUC: huc, BranchID: 0, HydroID: 1, FeatureID: 5000, Stage: 0, LakeID: -999},
		{HUC: huc, BranchID: 0, HydroID: 1, FeatureID: 5000, Stage: 0.3048,
			DischargeCMS: 2.5, LakeID: -999, DefaultDischargeCMS: 2.5},
		{HUC: huc, BranchID: 7, HydroID: 1, FeatureID: 5000, Stage: 0.3048,
			DischargeCMS: 3, LakeID: -999, DefaultDischargeCMS: 3},
	}
}

func TestReadHUC(t *testing.T) {
	l := iofs.Layout{Root: t.TempDir()}
	writeHydroTable(t, l, "01020004", testRows("01020004"))

	rows, err := readHUC(l, "01020004", "run")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "01020004", r.HUC)
		assert.Equal(t, "run", r.RunID)
	}
	assert.NotEqual(t, rows[1].ID, rows[2].ID, "branches get distinct ids")

	_, err = readHUC(l, "01020005", "run")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPublishNotConnected(t *testing.T) {
	p := New(config.New(), iodb.NewPgxOperator())
	_, err := p.Publish(context.Background(), []string{"01020004"})
	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	op := iodb.NewPgxOperator()
	iotesting.ConnectOrSkip(t, op)
	require.NoError(t, ioschema.NewManager(op).Create(ctx, true))

	dir := t.TempDir()
	cfg := iotesting.GetTestConfig()
	cfg.Update([]config.Option{
		config.OptOutputDir(dir),
		config.OptDatabaseBatchSize(2),
	})
	l := iofs.Layout{Root: dir}
	writeHydroTable(t, l, "01020004", testRows("01020004"))

	p := New(cfg, op)
	n, err := p.Publish(ctx, []string{"01020004", "01020005"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// re-publishing replaces rows of the HUC
	n, err = p.Publish(ctx, []string{"1020004"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var count, runs int
	err = op.Pool().QueryRow(ctx,
		"SELECT count(*) FROM hydro_tables WHERE huc = $1", "01020004").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	err = op.Pool().QueryRow(ctx, "SELECT count(*) FROM publish_runs").Scan(&runs)
	require.NoError(t, err)
	assert.Equal(t, 2, runs)

	_, err = p.Publish(ctx, nil)
	assert.Error(t, err, "no HUCs configured")
}
