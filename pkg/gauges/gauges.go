// Package gauges builds the usgs_elev_table: for every gauge the reach
// draining its pixel and the DEM elevations there.
package gauges

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/ctessum/geom"
)

// Header of the usgs_elev_table.
var Header = []string{
	"location_id", "HydroID", "feature_id", "levpa_id", "HUC8",
	"dem_elevation", "dem_adj_elevation",
}

// Gauge is a gauging station.
type Gauge struct {
	LocationID string
	Point      geom.Point
}

// Row is one gauge snapped to a reach.
type Row struct {
	LocationID string
	HydroID    int
	FeatureID  int64
	LevPaID    int
	HUC        string
	// DEMElevation is the DEM value at the gauge.
	DEMElevation float64
	// DEMAdjElevation is the thalweg elevation of the gauge catchment.
	DEMAdjElevation float64
}

// Table snaps gauges to the catchment containing them. Gauges outside of
// valid catchments or over nodata DEM pixels are skipped. mins holds the
// lowest DEM value of every catchment.
func Table(
	gauges []Gauge,
	dem, catchments *raster.Mem,
	mins map[int]float64,
	reaches []network.Reach,
	huc string,
) []Row {
	g, cg := dem.Grid(), catchments.Grid()
	byID := make(map[int]network.Reach, len(reaches))
	for _, r := range reaches {
		byID[r.HydroID] = r
	}
	var res []Row
	for _, gauge := range gauges {
		col, row := g.PixelAt(gauge.Point.X, gauge.Point.Y)
		if !g.Contains(col, row) {
			continue
		}
		label := catchments.At(col, row)
		z := dem.At(col, row)
		if cg.IsNoData(label) || g.IsNoData(z) {
			continue
		}
		id := int(label)
		reach, ok := byID[id]
		if !ok {
			continue
		}
		res = append(res, Row{
			LocationID:      gauge.LocationID,
			HydroID:         id,
			FeatureID:       reach.FeatureID,
			LevPaID:         reach.LevelPathID,
			HUC:             hydrotable.PadHUC(huc),
			DEMElevation:    z,
			DEMAdjElevation: mins[id],
		})
	}
	return res
}

// Sort orders rows by location, HUC and level path.
func Sort(rows []Row) {
	slices.SortFunc(rows, func(a, b Row) int {
		return cmp.Or(
			cmp.Compare(a.LocationID, b.LocationID),
			cmp.Compare(a.HUC, b.HUC),
			cmp.Compare(a.LevPaID, b.LevPaID),
			cmp.Compare(a.HydroID, b.HydroID),
		)
	})
}

// Write writes rows with a header.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		err := cw.Write([]string{
			r.LocationID,
			strconv.Itoa(r.HydroID),
			strconv.FormatInt(r.FeatureID, 10),
			strconv.Itoa(r.LevPaID),
			r.HUC,
			strconv.FormatFloat(r.DEMElevation, 'f', -1, 64),
			strconv.FormatFloat(r.DEMAdjElevation, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses a table written by Write.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("usgs_elev_table header: %w", err)
	}
	if !slices.Equal(head, Header) {
		return nil, fmt.Errorf("unexpected usgs_elev_table header %v", head)
	}
	var res []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := parse(rec)
		if err != nil {
			return nil, err
		}
		res = append(res, row)
	}
}

func parse(rec []string) (Row, error) {
	var res Row
	var err error
	res.LocationID = rec[0]
	if res.HydroID, err = strconv.Atoi(rec[1]); err != nil {
		return res, err
	}
	if res.FeatureID, err = strconv.ParseInt(rec[2], 10, 64); err != nil {
		return res, err
	}
	if res.LevPaID, err = strconv.Atoi(rec[3]); err != nil {
		return res, err
	}
	res.HUC = rec[4]
	if res.DEMElevation, err = strconv.ParseFloat(rec[5], 64); err != nil {
		return res, err
	}
	if res.DEMAdjElevation, err = strconv.ParseFloat(rec[6], 64); err != nil {
		return res, err
	}
	return res, nil
}
