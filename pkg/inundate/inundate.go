// Package inundate converts forecast discharges into inundation depth
// rasters of a branch using its hydro-table and REM.
package inundate

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/condition"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
)

// ReadForecast parses a `feature_id,discharge` table, discharge in m3/s.
func ReadForecast(r io.Reader) (map[int64]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("forecast header: %w", err)
	}
	fi, qi := -1, -1
	for i, h := range head {
		switch strings.TrimSpace(h) {
		case "feature_id":
			fi = i
		case "discharge":
			qi = i
		}
	}
	if fi < 0 || qi < 0 {
		return nil, fmt.Errorf("forecast needs feature_id and discharge columns")
	}
	res := make(map[int64]float64)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if max(fi, qi) >= len(rec) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[fi]), 10, 64)
		if err != nil {
			return nil, err
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(rec[qi]), 64)
		if err != nil {
			return nil, err
		}
		res[id] = q
	}
	return res, nil
}

// Interpolate returns the stage of discharge q on a rating curve.
// Discharges below the curve give the first stage, above it the last one.
func Interpolate(stages, flows []float64, q float64) float64 {
	if len(stages) == 0 {
		return 0
	}
	if q <= flows[0] {
		return stages[0]
	}
	for i := 1; i < len(flows); i++ {
		if q > flows[i] {
			continue
		}
		dq := flows[i] - flows[i-1]
		if dq <= 0 {
			return stages[i]
		}
		f := (q - flows[i-1]) / dq
		return stages[i-1] + f*(stages[i]-stages[i-1])
	}
	return stages[len(stages)-1]
}

// Stages returns the forecast stage of every HydroID whose feature_id has
// a forecast.
func Stages(rows []hydrotable.Row, forecast map[int64]float64) map[int]float64 {
	type curve struct {
		featureID int64
		rows      []hydrotable.Row
	}
	curves := make(map[int]*curve)
	for _, r := range rows {
		c, ok := curves[r.HydroID]
		if !ok {
			c = &curve{featureID: r.FeatureID}
			curves[r.HydroID] = c
		}
		c.rows = append(c.rows, r)
	}
	res := make(map[int]float64)
	for id, c := range curves {
		q, ok := forecast[c.featureID]
		if !ok {
			continue
		}
		slices.SortFunc(c.rows, func(a, b hydrotable.Row) int {
			return cmp.Compare(a.Stage, b.Stage)
		})
		stages, flows := hydrotable.Curve(c.rows, id)
		res[id] = Interpolate(stages, flows, q)
	}
	return res
}

// Depth writes stage - REM for pixels of catchments with a stage. Pixels
// with a non-positive depth or without stage are nodata.
func Depth(rem, catchments raster.Reader, stages map[int]float64, out raster.Writer, tile int) error {
	if tile <= 0 {
		tile = 256
	}
	g, cg := rem.Grid(), catchments.Grid()
	if !g.SameShape(cg) || !g.SameShape(out.Grid()) {
		return condition.GridMismatchError("inundation depth")
	}
	nodata := out.Grid().NoData
	r := make([]float64, 0, tile*tile)
	c := make([]float64, 0, tile*tile)
	for w := range g.Windows(tile) {
		r, c = r[:w.Len()], c[:w.Len()]
		if err := rem.Read(w, r); err != nil {
			return err
		}
		if err := catchments.Read(w, c); err != nil {
			return err
		}
		for i := range r {
			v := nodata
			if !g.IsNoData(r[i]) && !cg.IsNoData(c[i]) {
				if h, ok := stages[int(c[i])]; ok && h-r[i] > 0 {
					v = h - r[i]
				}
			}
			r[i] = v
		}
		if err := out.Write(w, r); err != nil {
			return err
		}
	}
	return nil
}
