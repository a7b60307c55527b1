package iogpkg

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeomCodec(t *testing.T) {
	ls := geom.LineString{{X: 0, Y: 0}, {X: 10, Y: 5}, {X: 20, Y: -3}}
	blob, err := encodeGeom(ls, 5070)
	require.NoError(t, err)
	assert.Equal(t, "GP", string(blob[:2]))
	assert.Equal(t, byte(0x03), blob[3], "little endian with xy envelope")

	g, err := decodeGeom(blob)
	require.NoError(t, err)
	assert.Equal(t, ls, g)

	_, err = decodeGeom([]byte("nope"))
	assert.Error(t, err)
}

func TestWriteRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reaches.gpkg")
	reaches := &vector.Layer{
		Name: "reaches",
		CRS:  5070,
		Columns: []vector.Column{
			{Name: "HydroID", Type: "INTEGER"},
			{Name: "feature_id", Type: "INTEGER"},
			{Name: "S0", Type: "REAL"},
			{Name: "name", Type: "TEXT"},
		},
		Features: []vector.Feature{
			{
				Geometry: geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}},
				Props: map[string]any{
					"HydroID": int64(12090001), "feature_id": int64(5000),
					"S0": 0.01, "name": "main",
				},
			},
			{
				Geometry: geom.LineString{{X: 100, Y: 0}, {X: 200, Y: 50}},
				Props:    map[string]any{"HydroID": int64(12090002), "S0": 0.02},
			},
		},
	}
	poly := geom.Polygon{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}}}
	areas := &vector.Layer{
		Name: "catchments",
		CRS:  5070,
		Features: []vector.Feature{
			{Geometry: poly, Props: map[string]any{"HydroID": 12090001, "areasqkm": 0.0001}},
		},
	}
	require.NoError(t, Write(ctx, path, reaches, areas))

	names, err := Layers(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"catchments", "reaches"}, names)

	got, err := Read(ctx, path, "reaches", 0)
	require.NoError(t, err)
	assert.Equal(t, 5070, got.CRS)
	assert.Equal(t, reaches.Columns, got.Columns)
	require.Len(t, got.Features, 2)
	f := got.Features[0]
	assert.Equal(t, reaches.Features[0].Geometry, f.Geometry)
	assert.Equal(t, int64(12090001), f.Int("HydroID", 0))
	assert.Equal(t, int64(5000), f.Int("feature_id", 0))
	assert.Equal(t, 0.01, f.Float("S0", 0))
	assert.Equal(t, "main", f.String("name", ""))
	assert.Equal(t, int64(-1), got.Features[1].Int("feature_id", -1), "null attribute")

	c, err := Read(ctx, path, "catchments", 5070)
	require.NoError(t, err)
	require.Len(t, c.Features, 1)
	assert.Equal(t, poly, c.Features[0].Geometry)
	assert.Equal(t, []vector.Column{
		{Name: "HydroID", Type: "INTEGER"},
		{Name: "areasqkm", Type: "REAL"},
	}, c.Columns)

	first, err := Read(ctx, path, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "catchments", first.Name)

	_, err = Read(ctx, path, "missing", 0)
	assert.Error(t, err)
	_, err = Read(ctx, filepath.Join(t.TempDir(), "none.gpkg"), "", 0)
	assert.Error(t, err)
}

func TestReproject(t *testing.T) {
	l := &vector.Layer{
		Name: "gauges",
		CRS:  4326,
		Features: []vector.Feature{
			{Geometry: geom.Point{X: -96, Y: 23}},
			{Geometry: geom.Point{X: -90, Y: 35}},
		},
	}
	require.NoError(t, Reproject(l, 5070))
	assert.Equal(t, 5070, l.CRS)
	p := l.Features[0].Geometry.(geom.Point)
	assert.InDelta(t, 0, p.X, 1e-3)
	assert.InDelta(t, 0, p.Y, 1e-3)
	q := l.Features[1].Geometry.(geom.Point)
	assert.Greater(t, q.X, 0.0, "east of the central meridian")
	assert.Greater(t, q.Y, 0.0, "north of the origin latitude")

	l.CRS = 9999
	assert.Error(t, Reproject(l, 5070))
}
