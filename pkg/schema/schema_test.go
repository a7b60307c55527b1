package schema_test

import (
	"sync"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gschema "gorm.io/gorm/schema"
)

func TestNewHydroTable(t *testing.T) {
	row := hydrotable.Row{
		HUC: "1020004", BranchID: 3, HydroID: 12, FeatureID: 5000,
		Stage: 0.3048, DischargeCMS: 1.5, LakeID: -999,
		DefaultDischargeCMS: 1.5,
	}
	ht := schema.NewHydroTable("run", row)
	assert.Equal(t, "01020004", ht.HUC)
	assert.Len(t, ht.ID, 36)

	again := schema.NewHydroTable("other-run", row)
	assert.Equal(t, ht.ID, again.ID, "row id does not depend on the run")

	row.Stage = 0.6096
	assert.NotEqual(t, ht.ID, schema.NewHydroTable("run", row).ID)

	vals := ht.Values()
	require.Len(t, vals, len(schema.HydroTableColumns))
	assert.Equal(t, ht.ID, vals[0])
	assert.Equal(t, int64(5000), vals[5])
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, []string{"hydro_tables", "publish_runs"}, schema.TableNames())
	assert.Len(t, schema.AllModels(), len(schema.TableNames()))
}

// TestHydroTableColumns checks that GORM maps HydroTable to the columns
// used by bulk copies.
func TestHydroTableColumns(t *testing.T) {
	s, err := gschema.Parse(&schema.HydroTable{}, &sync.Map{}, gschema.NamingStrategy{})
	require.NoError(t, err)
	assert.Equal(t, "hydro_tables", s.Table)
	assert.Equal(t, schema.HydroTableColumns, s.DBNames)
	require.NotNil(t, s.PrioritizedPrimaryField)
	assert.Equal(t, "id", s.PrioritizedPrimaryField.DBName)
}
