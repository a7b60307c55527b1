package iopipeline

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iogpkg"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/condition"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/gauges"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/ratingcurve"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
	"github.com/dustin/go-humanize"
)

// inputs are the national datasets shared by all HUCs of a run.
type inputs struct {
	wbd       map[string][]geom.Polygon
	streams   []network.Reach
	levees    []condition.Levee
	areas     []condition.ProtectedArea
	gauges    []gauges.Gauge
	roughness ratingcurve.Roughness
}

// loadInputs reads vector inputs in the run CRS. With base false only the
// datasets needed to re-run a single branch are read.
func (p *Pipeline) loadInputs(ctx context.Context, base bool) (*inputs, error) {
	in := p.cfg.Inputs
	res := &inputs{
		roughness: ratingcurve.Roughness{Default: p.cfg.Rating.ManningN},
	}
	if base {
		if in.WBD == "" {
			return nil, MissingInputError("wbd")
		}
		if in.Streams == "" {
			return nil, MissingInputError("streams")
		}
		l, err := iogpkg.Read(ctx, in.WBD, "", in.CRS)
		if err != nil {
			return nil, InputError("wbd", in.WBD, err)
		}
		res.wbd = hucPolygons(l)

		if l, err = iogpkg.Read(ctx, in.Streams, "", in.CRS); err != nil {
			return nil, InputError("streams", in.Streams, err)
		}
		res.streams = referenceReaches(l, p.cfg.Crosswalk.SnapDistance)
		slog.Info("Loaded reference streams",
			"reaches", len(res.streams), "hucs", len(res.wbd))
	}

	if in.Levees != "" {
		l, err := iogpkg.Read(ctx, in.Levees, "", in.CRS)
		if err != nil {
			return nil, InputError("levees", in.Levees, err)
		}
		res.levees = levees(l)
	}
	if in.LeveeProtectedAreas != "" {
		l, err := iogpkg.Read(ctx, in.LeveeProtectedAreas, "", in.CRS)
		if err != nil {
			return nil, InputError("levee protected areas", in.LeveeProtectedAreas, err)
		}
		res.areas = protectedAreas(l)
	}
	if in.Gauges != "" {
		l, err := iogpkg.Read(ctx, in.Gauges, "", in.CRS)
		if err != nil {
			return nil, InputError("gauges", in.Gauges, err)
		}
		res.gauges = gaugePoints(l)
	}
	if in.ManningTable != "" {
		f, err := os.Open(in.ManningTable)
		if err != nil {
			return nil, InputError("manning table", in.ManningTable, err)
		}
		res.roughness.ByFeature, err = ratingcurve.ReadRoughness(f)
		_ = f.Close()
		if err != nil {
			return nil, InputError("manning table", in.ManningTable, err)
		}
	}
	slog.Debug("Loaded ancillary inputs",
		"levees", humanize.Comma(int64(len(res.levees))),
		"protected_areas", humanize.Comma(int64(len(res.areas))),
		"gauges", humanize.Comma(int64(len(res.gauges))),
		"manning_overrides", len(res.roughness.ByFeature),
	)
	return res, nil
}

// hucPolygons groups WBD polygons by their HUC8 code.
func hucPolygons(l *vector.Layer) map[string][]geom.Polygon {
	res := make(map[string][]geom.Polygon)
	polys, idx := l.Polygons()
	for i, poly := range polys {
		huc := hucCode(l.Features[idx[i]])
		if huc == "" {
			continue
		}
		res[huc] = append(res[huc], poly)
	}
	return res
}

func hucCode(f vector.Feature) string {
	for _, k := range []string{"HUC8", "huc8"} {
		switch v := f.Props[k].(type) {
		case string:
			return v
		case int64:
			return fmt.Sprintf("%08d", v)
		case float64:
			return fmt.Sprintf("%08d", int64(v))
		}
	}
	return ""
}

// referenceReaches converts NWM flowlines to reaches. Topology comes from
// the `to` attribute, or from line end points when it is absent. HydroIDs
// are assigned in feature_id order.
func referenceReaches(l *vector.Layer, tol float64) []network.Reach {
	var res []network.Reach
	hasTo := false
	for _, f := range l.Features {
		ls := flatten(f.Geometry)
		if len(ls) < 2 {
			continue
		}
		id := f.Int("feature_id", f.Int("ID", 0))
		if id == 0 {
			continue
		}
		to, ok := f.Props["to"]
		if ok && to != nil {
			hasTo = true
		}
		res = append(res, network.Reach{
			FeatureID: id,
			FromNode:  id,
			ToNode:    f.Int("to", 0),
			Order:     int(f.Int("order_", 0)),
			LakeID:    int(f.Int("Lake", network.NoLake)),
			S0:        f.Float("S0", 0),
			Geometry:  ls,
		})
	}
	if !hasTo {
		network.DeriveTopology(res, tol)
	}
	slices.SortFunc(res, func(a, b network.Reach) int {
		return cmp.Compare(a.FeatureID, b.FeatureID)
	})
	for i := range res {
		res[i].HydroID = i + 1
	}
	network.FillLengths(res)
	return res
}

// flatten joins the parts of a multilinestring end to end.
func flatten(g geom.Geom) geom.LineString {
	switch v := g.(type) {
	case geom.LineString:
		return v
	case geom.MultiLineString:
		var res geom.LineString
		for _, ls := range v {
			if len(res) > 0 && len(ls) > 0 && res[len(res)-1] == ls[0] {
				ls = ls[1:]
			}
			res = append(res, ls...)
		}
		return res
	}
	return nil
}

func levees(l *vector.Layer) []condition.Levee {
	lines, idx := l.Lines()
	res := make([]condition.Levee, 0, len(lines))
	for i, ls := range lines {
		f := l.Features[idx[i]]
		res = append(res, condition.Levee{
			SystemID:  f.Int("SYSTEM_ID", 0),
			Elevation: f.Float("elevation", 0),
			Line:      ls,
		})
	}
	return res
}

func protectedAreas(l *vector.Layer) []condition.ProtectedArea {
	polys, idx := l.Polygons()
	res := make([]condition.ProtectedArea, 0, len(polys))
	for i, poly := range polys {
		res = append(res, condition.ProtectedArea{
			SystemID: l.Features[idx[i]].Int("SYSTEM_ID", 0),
			Polygon:  poly,
		})
	}
	return res
}

func gaugePoints(l *vector.Layer) []gauges.Gauge {
	var res []gauges.Gauge
	for _, f := range l.Features {
		pt, ok := f.Geometry.(geom.Point)
		if !ok {
			continue
		}
		id := f.String("location_id", "")
		if id == "" {
			if n := f.Int("location_id", 0); n != 0 {
				id = fmt.Sprintf("%08d", n)
			}
		}
		if id == "" {
			continue
		}
		res = append(res, gauges.Gauge{LocationID: id, Point: pt})
	}
	return res
}

// leveeSystems returns all levee system ids.
func leveeSystems(ls []condition.Levee) map[int64]bool {
	res := make(map[int64]bool, len(ls))
	for _, l := range ls {
		res[l.SystemID] = true
	}
	return res
}
