package iounit_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iounit"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branchlist"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/crosswalk"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAndSummary(t *testing.T) {
	l := iofs.Layout{Root: t.TempDir()}

	r1 := iounit.NewRecord("12090301", 3, crosswalk.NoValidCrosswalksError("12090301", 3))
	assert.Equal(t, int(errcode.NoValidCrosswalks), r1.Code)
	assert.True(t, r1.Quarantined())
	assert.NotContains(t, r1.Msg, "<em>")

	r2 := iounit.NewRecord("12090302", iounit.HUCBranch, errors.New("dem, missing"))
	assert.Equal(t, 1, r2.Code)
	assert.False(t, r2.Quarantined())

	require.NoError(t, iounit.Log(l, r1))
	require.NoError(t, iounit.Log(l, r2))
	_, err := os.Stat(l.UnitErrorLog("12090301", 3))
	require.NoError(t, err)

	recs, err := iounit.WriteSummary(l)
	require.NoError(t, err)
	assert.Equal(t, []iounit.Record{r1, r2}, recs)

	// summary is not counted again
	recs, err = iounit.Records(l)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	_, err = os.Stat(filepath.Join(l.UnitErrorsDir(), iofs.UnitErrorsSummary))
	require.NoError(t, err)

	assert.Equal(t, []string{"12090302"}, iounit.FailedUnits(recs))
}

func TestFailedUnits(t *testing.T) {
	tests := []struct {
		name string
		recs []iounit.Record
		want []string
	}{
		{"none", nil, nil},
		{"quarantines only", []iounit.Record{
			{HUC: "12090301", Branch: 3, Code: 61},
			{HUC: "12090301", Branch: 5, Code: 64},
			{HUC: "12090302", Branch: iounit.HUCBranch, Code: 63},
		}, nil},
		{"one unit with several files", []iounit.Record{
			{HUC: "12090303", Branch: 2, Code: 1},
			{HUC: "12090303", Branch: 4, Code: 1},
			{HUC: "12090303", Branch: iounit.HUCBranch, Code: 60},
		}, []string{"12090303"}},
		{"mixed", []iounit.Record{
			{HUC: "12090305", Branch: iounit.HUCBranch, Code: 60},
			{HUC: "12090301", Branch: 3, Code: 61},
			{HUC: "12090304", Branch: 1, Code: 1},
		}, []string{"12090304", "12090305"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, iounit.FailedUnits(tt.recs))
		})
	}
}

func TestRecordsEmpty(t *testing.T) {
	l := iofs.Layout{Root: t.TempDir()}
	recs, err := iounit.Records(l)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCheck(t *testing.T) {
	cfg := config.ErrorsConfig{MinUnitErrors: 3, MaxUnitErrorsPercent: 10}
	tests := []struct {
		name              string
		failed, submitted int
		fail              bool
	}{
		{"none", 0, 10, false},
		{"count below", 2, 4, false},
		{"percent below", 3, 100, false},
		{"both reached", 3, 30, true},
		{"both above", 5, 10, true},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			err := iounit.Check(v.failed, v.submitted, cfg)
			if !v.fail {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, 62, errcode.ExitCode(err))
		})
	}
}

func TestWriteRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), iofs.InputsRemoved)
	removed := []branchlist.Entry{{HUC: "12090302", Branch: 5}, {HUC: "12090301", Branch: 7}}
	require.NoError(t, iounit.WriteRemoved(path, removed))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "12090301,7\n12090302,5\n", string(data))
}
