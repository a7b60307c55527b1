// Package schema provides database models of published hydro-tables.
// Forecast lookup services query hydro_tables by feature_id and stage.
package schema

import (
	"fmt"
	"time"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/gnames/gnuuid"
)

// HydroTable is one stage of one HydroID of a published HUC.
type HydroTable struct {
	// ID is a UUIDv5 of HUC, branch, HydroID and stage, stable across
	// re-publishing.
	ID string `gorm:"type:uuid;primaryKey"`

	// RunID is the publish run that loaded the row.
	RunID string `gorm:"type:uuid;not null;index"`

	// HUC is the zero padded HUC8 code.
	HUC string `gorm:"type:varchar(8);not null;index:idx_hydro_tables_huc_branch"`

	// BranchID is the level path branch, 0 for the branch zero.
	BranchID int `gorm:"not null;index:idx_hydro_tables_huc_branch"`

	HydroID int `gorm:"not null"`

	// FeatureID is the reference (NWM) stream the catchment crosswalks to.
	FeatureID int64 `gorm:"not null;index:idx_hydro_tables_feature_stage"`

	Stage float64 `gorm:"not null;index:idx_hydro_tables_feature_stage"`

	DischargeCMS float64 `gorm:"column:discharge_cms;not null"`

	LakeID int `gorm:"not null;default:-999"`

	DefaultDischargeCMS float64 `gorm:"column:default_discharge_cms;not null"`
}

// TableName returns the PostgreSQL table name.
func (HydroTable) TableName() string {
	return "hydro_tables"
}

// HydroTableColumns are the columns of hydro_tables in the order of
// HydroTable.Values.
var HydroTableColumns = []string{
	"id", "run_id", "huc", "branch_id", "hydro_id", "feature_id",
	"stage", "discharge_cms", "lake_id", "default_discharge_cms",
}

// NewHydroTable converts a hydro-table row of a publish run.
func NewHydroTable(runID string, r hydrotable.Row) HydroTable {
	huc := hydrotable.PadHUC(r.HUC)
	key := fmt.Sprintf("%s|%d|%d|%g", huc, r.BranchID, r.HydroID, r.Stage)
	return HydroTable{
		ID:                  gnuuid.New(key).String(),
		RunID:               runID,
		HUC:                 huc,
		BranchID:            r.BranchID,
		HydroID:             r.HydroID,
		FeatureID:           r.FeatureID,
		Stage:               r.Stage,
		DischargeCMS:        r.DischargeCMS,
		LakeID:              r.LakeID,
		DefaultDischargeCMS: r.DefaultDischargeCMS,
	}
}

// Values returns fields in the order of HydroTableColumns.
func (h HydroTable) Values() []any {
	return []any{
		h.ID, h.RunID, h.HUC, h.BranchID, h.HydroID, h.FeatureID,
		h.Stage, h.DischargeCMS, h.LakeID, h.DefaultDischargeCMS,
	}
}

// PublishRun records one publish of a set of HUCs.
type PublishRun struct {
	ID string `gorm:"type:uuid;primaryKey"`

	// Version of the program that published the run.
	Version string `gorm:"type:varchar(50)"`

	// HUCs is the number of published HUCs.
	HUCs int `gorm:"column:hucs;not null"`

	// Rows is the number of loaded hydro-table rows.
	Rows int `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the PostgreSQL table name.
func (PublishRun) TableName() string {
	return "publish_runs"
}
