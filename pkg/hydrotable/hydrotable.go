// Package hydrotable reads, writes and aggregates hydro-tables, the
// stage-discharge lookup tables keyed by HydroID and feature_id.
package hydrotable

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Header is the column layout of hydro-table CSV files.
var Header = []string{
	"HUC", "BranchID", "HydroID", "feature_id", "stage",
	"discharge_cms", "LakeID", "default_discharge_cms",
}

// Row is one stage of one HydroID.
type Row struct {
	HUC                 string
	BranchID            int
	HydroID             int
	FeatureID           int64
	Stage               float64
	DischargeCMS        float64
	LakeID              int
	DefaultDischargeCMS float64
}

// PadHUC left pads a HUC code with zeros to 8 characters.
func PadHUC(huc string) string {
	huc = strings.TrimSpace(huc)
	if len(huc) >= 8 {
		return huc
	}
	return strings.Repeat("0", 8-len(huc)) + huc
}

// Write writes rows with a header.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			PadHUC(r.HUC),
			strconv.Itoa(r.BranchID),
			strconv.Itoa(r.HydroID),
			strconv.FormatInt(r.FeatureID, 10),
			formatFloat(r.Stage),
			formatFloat(r.DischargeCMS),
			strconv.Itoa(r.LakeID),
			formatFloat(r.DefaultDischargeCMS),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses a hydro-table. Columns are located by header name, extra
// columns are ignored.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(head))
	for i, h := range head {
		idx[strings.TrimSpace(h)] = i
	}
	for _, h := range Header {
		if _, ok := idx[h]; !ok {
			return nil, fmt.Errorf("hydro-table misses column %q", h)
		}
	}

	var res []Row
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		row, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("hydro-table line %d: %w", line, err)
		}
		res = append(res, row)
	}
	return res, nil
}

func parseRow(rec []string, idx map[string]int) (Row, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	var res Row
	var err error
	res.HUC = PadHUC(get("HUC"))
	if res.BranchID, err = strconv.Atoi(get("BranchID")); err != nil {
		return res, err
	}
	if res.HydroID, err = strconv.Atoi(get("HydroID")); err != nil {
		return res, err
	}
	if res.FeatureID, err = strconv.ParseInt(get("feature_id"), 10, 64); err != nil {
		return res, err
	}
	if res.Stage, err = strconv.ParseFloat(get("stage"), 64); err != nil {
		return res, err
	}
	if res.DischargeCMS, err = strconv.ParseFloat(get("discharge_cms"), 64); err != nil {
		return res, err
	}
	if res.LakeID, err = strconv.Atoi(get("LakeID")); err != nil {
		return res, err
	}
	if res.DefaultDischargeCMS, err = strconv.ParseFloat(get("default_discharge_cms"), 64); err != nil {
		return res, err
	}
	return res, nil
}

// Aggregate merges tables into one. Rows repeating a (HUC, BranchID,
// HydroID, stage) key are kept once, the result is ordered by that key,
// so aggregating an aggregate returns it unchanged.
func Aggregate(tables ...[]Row) []Row {
	type key struct {
		huc     string
		branch  int
		hydroID int
		stage   float64
	}
	seen := make(map[key]struct{})
	var res []Row
	for _, t := range tables {
		for _, r := range t {
			r.HUC = PadHUC(r.HUC)
			k := key{r.HUC, r.BranchID, r.HydroID, r.Stage}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			res = append(res, r)
		}
	}
	slices.SortStableFunc(res, Compare)
	return res
}

// Compare orders rows by HUC, BranchID, HydroID and stage.
func Compare(a, b Row) int {
	if c := cmp.Compare(a.HUC, b.HUC); c != 0 {
		return c
	}
	if c := cmp.Compare(a.BranchID, b.BranchID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.HydroID, b.HydroID); c != 0 {
		return c
	}
	return cmp.Compare(a.Stage, b.Stage)
}

// Curve returns stages and discharges of one HydroID in row order.
func Curve(rows []Row, hydroID int) ([]float64, []float64) {
	var stages, flows []float64
	for _, r := range rows {
		if r.HydroID == hydroID {
			stages = append(stages, r.Stage)
			flows = append(flows, r.DischargeCMS)
		}
	}
	return stages, flows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
