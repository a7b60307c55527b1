// Package ratingcurve turns hydraulic properties into synthetic rating
// curves with Manning's equation.
package ratingcurve

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydraulics"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
)

// Row is one stage of a synthetic rating curve with all derived columns.
type Row struct {
	hydraulics.Row
	HUC             string
	BranchID        int
	FeatureID       int64
	LakeID          int
	ManningN        float64
	TopWidth        float64
	WettedPerimeter float64
	WetArea         float64
	HydraulicRadius float64
	Discharge       float64
}

// Roughness provides Manning's n of reference features.
type Roughness struct {
	Default   float64
	ByFeature map[int64]float64
}

// For returns n of a feature_id, falling back to the default.
func (r Roughness) For(featureID int64) float64 {
	if n, ok := r.ByFeature[featureID]; ok {
		return n
	}
	return r.Default
}

// Compute derives rating curves from hydraulic properties. Reaches supply
// feature_id and LakeID by HydroID. Discharge is 0 at stage 0.
func Compute(
	props []hydraulics.Row,
	reaches []network.Reach,
	n Roughness,
	huc string,
	branch int,
) []Row {
	byID := make(map[int]network.Reach, len(reaches))
	for _, r := range reaches {
		byID[r.HydroID] = r
	}
	res := make([]Row, 0, len(props))
	for _, p := range props {
		reach := byID[p.HydroID]
		row := Row{
			Row:       p,
			HUC:       hydrotable.PadHUC(huc),
			BranchID:  branch,
			FeatureID: reach.FeatureID,
			LakeID:    reach.LakeID,
			ManningN:  n.For(reach.FeatureID),
		}
		derive(&row)
		res = append(res, row)
	}
	return res
}

func derive(r *Row) {
	length := r.LengthKm * 1000
	if length > 0 {
		r.TopWidth = r.SurfaceArea / length
		r.WettedPerimeter = r.BedArea / length
		r.WetArea = r.Volume / length
	}
	if r.WettedPerimeter > 0 {
		r.HydraulicRadius = r.WetArea / r.WettedPerimeter
	}
	if r.Stage == 0 || r.ManningN <= 0 || r.Slope < 0 {
		return
	}
	r.Discharge = r.WetArea * math.Pow(r.HydraulicRadius, 2.0/3.0) *
		math.Sqrt(r.Slope) / r.ManningN
}

// CheckMonotone returns HydroIDs whose discharge decreases with stage and
// logs a warning for each of them. Rows of a HydroID must be in stage
// order.
func CheckMonotone(rows []Row) []int {
	var res []int
	flagged := make(map[int]bool)
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if prev.HydroID != cur.HydroID || cur.Discharge >= prev.Discharge {
			continue
		}
		if flagged[cur.HydroID] {
			continue
		}
		flagged[cur.HydroID] = true
		res = append(res, cur.HydroID)
		slog.Warn("Discharge decreases with stage",
			"huc", cur.HUC,
			"branch", cur.BranchID,
			"hydro_id", cur.HydroID,
			"stage", cur.Stage,
		)
	}
	return res
}

// HydroTable selects forecast lookup columns of rating curves.
func HydroTable(rows []Row) []hydrotable.Row {
	res := make([]hydrotable.Row, 0, len(rows))
	for _, r := range rows {
		res = append(res, hydrotable.Row{
			HUC:                 r.HUC,
			BranchID:            r.BranchID,
			HydroID:             r.HydroID,
			FeatureID:           r.FeatureID,
			Stage:               r.Stage,
			DischargeCMS:        r.Discharge,
			LakeID:              r.LakeID,
			DefaultDischargeCMS: r.Discharge,
		})
	}
	return res
}

// SRCHeader is the column layout of src_full_crosswalked files.
var SRCHeader = []string{
	"HydroID", "feature_id", "HUC", "BranchID", "LakeID", "Stage",
	"Number of Cells", "SurfaceArea (m2)", "BedArea (m2)", "Volume (m3)",
	"SLOPE", "LENGTHKM", "AREASQKM", "ManningN",
	"TopWidth (m)", "WettedPerimeter (m)", "WetArea (m2)",
	"HydraulicRadius (m)", "Discharge (m3s-1)",
}

// WriteSRC writes full rating curves.
func WriteSRC(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SRCHeader); err != nil {
		return err
	}
	f := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.HydroID),
			strconv.FormatInt(r.FeatureID, 10),
			r.HUC,
			strconv.Itoa(r.BranchID),
			strconv.Itoa(r.LakeID),
			f(r.Stage),
			strconv.Itoa(r.NumCells),
			f(r.SurfaceArea),
			f(r.BedArea),
			f(r.Volume),
			f(r.Slope),
			f(r.LengthKm),
			f(r.AreaSqKm),
			f(r.ManningN),
			f(r.TopWidth),
			f(r.WettedPerimeter),
			f(r.WetArea),
			f(r.HydraulicRadius),
			f(r.Discharge),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRoughness parses a `feature_id,ManningN` table.
func ReadRoughness(r io.Reader) (map[int64]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return map[int64]float64{}, nil
	}
	if err != nil {
		return nil, err
	}
	fi, ni := -1, -1
	for i, h := range head {
		switch strings.TrimSpace(h) {
		case "feature_id":
			fi = i
		case "ManningN":
			ni = i
		}
	}
	if fi < 0 || ni < 0 {
		return nil, fmt.Errorf("roughness table needs feature_id and ManningN columns")
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
		if max(fi, ni) >= len(rec) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[fi]), 10, 64)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(rec[ni]), 64)
		if err != nil {
			return nil, err
		}
		res[id] = n
	}
	return res, nil
}
