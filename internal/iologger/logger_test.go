package iologger

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, v := range tests {
		assert.Equal(t, v.want, parseLevel(v.in), v.in)
	}
}

func TestInitFile(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	dir := t.TempDir()
	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	require.NoError(t, Init(dir, cfg, false))
	slog.Info("branch done", "huc", "12090301", "branch", 3)
	slog.Debug("hidden")

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(data, &rec), "one json record")
	assert.Equal(t, "branch done", rec["msg"])
	assert.Equal(t, "12090301", rec["huc"])

	require.NoError(t, Init(dir, cfg, true))
	slog.Info("again")
	data2, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	assert.Greater(t, len(data2), len(data), "append keeps old records")
}

func TestInitBadDir(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	cfg := config.LogConfig{Format: "text", Destination: "file"}
	err := Init(filepath.Join(t.TempDir(), "missing"), cfg, false)
	assert.Error(t, err)
}

func TestInitStdout(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	dir := t.TempDir()
	cfg := config.LogConfig{Format: "tint", Level: "debug", Destination: "stdout"}
	require.NoError(t, Init(dir, cfg, false))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	assert.NoFileExists(t, filepath.Join(dir, LogFile))
}
