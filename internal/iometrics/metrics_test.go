package iometrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iometrics"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchDone(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 4, 26, 15, 10, 0, 0, time.UTC))
	m := iometrics.New(clock)

	start := m.Now()
	clock.Advance(90 * time.Second)
	d := m.BranchDone(start, iometrics.OutcomeOK)
	assert.Equal(t, 90*time.Second, d)
	m.BranchDone(start, iometrics.OutcomeQuarantined)
	m.HUCDone(start, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Branches.WithLabelValues(iometrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Branches.WithLabelValues(iometrics.OutcomeQuarantined)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HUCs.WithLabelValues(iometrics.OutcomeFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BranchDuration))
}

func TestWriteFile(t *testing.T) {
	m := iometrics.New(nil)
	m.Reaches.Add(12)
	m.UnitErrors.Set(3)
	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fim_reaches_total 12")
	assert.Contains(t, string(data), "fim_unit_errors 3")

	// independent registries
	m2 := iometrics.New(nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.Reaches))
}
