package iocache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iocache"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(huc string) iocache.Entry {
	return iocache.Entry{
		HUC: huc,
		CRS: 5070,
		Reaches: []network.Reach{
			{
				HydroID: 10, FeatureID: 5000, FromNode: 1, ToNode: 3,
				LengthKm: 1, Order: 1, LevelPathID: 20, LakeID: network.NoLake,
				Geometry: geom.LineString{{X: 0, Y: 10}, {X: 5, Y: 5}},
			},
			{
				HydroID: 30, FeatureID: 5002, FromNode: 3, ToNode: 4,
				LengthKm: 1, Order: 2, LevelPathID: 20, LakeID: network.NoLake,
				Geometry: geom.LineString{{X: 5, Y: 5}, {X: 5, Y: 0}},
			},
		},
		StoredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestStoreGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "network")
	c, err := iocache.New(dir)
	require.NoError(t, err)

	_, err = c.Get("12090301")
	assert.Error(t, err, "cache is not open")

	require.NoError(t, c.Open())
	defer c.Close()

	got, err := c.Get("12090301")
	require.NoError(t, err)
	assert.Nil(t, got)

	e := entry("12090301")
	require.NoError(t, c.Store(e))
	require.NoError(t, c.Store(entry("12090302")))

	got, err = c.Get("12090301")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.Reaches, got.Reaches)
	assert.True(t, e.StoredAt.Equal(got.StoredAt))

	hucs, err := c.HUCs()
	require.NoError(t, err)
	assert.Equal(t, []string{"12090301", "12090302"}, hucs)

	require.NoError(t, c.Delete("12090302"))
	got, err = c.Get("12090302")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "network")
	c, err := iocache.New(dir)
	require.NoError(t, err)
	require.NoError(t, c.Open())
	require.NoError(t, c.Store(entry("12090301")))
	require.NoError(t, c.Close())

	c2, err := iocache.New(dir)
	require.NoError(t, err)
	require.NoError(t, c2.Open())
	got, err := c2.Get("12090301")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Reaches, 2)

	require.NoError(t, c2.Cleanup())
	require.NoError(t, c2.Open())
	defer c2.Close()
	got, err = c2.Get("12090301")
	require.NoError(t, err)
	assert.Nil(t, got)
}
