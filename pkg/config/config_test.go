package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "fim"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "fim"),
		},
		{
			msg: "network cache dir",
			fn:  config.NetworkCacheDir,
			res: filepath.Join(tempHome, ".cache", "fim", "network"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "fim", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "fim", "config.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		assert.Equal(t, 5070, cfg.Inputs.CRS)
		assert.Equal(t, 7000.0, cfg.Branch.BufferDistance)
		assert.Equal(t, 1500.0, cfg.Branch.MaxReachLength)
		assert.Equal(t, 0.001, cfg.Branch.MinSlope)
		assert.True(t, cfg.Branch.LeveeBurn)
		assert.Equal(t, 256, cfg.Branch.TileSize)

		assert.Equal(t, 0.0, cfg.Rating.StageMin)
		assert.Equal(t, 25.0, cfg.Rating.StageMax)
		assert.Equal(t, 0.3048, cfg.Rating.StageInterval)
		assert.Equal(t, 0.06, cfg.Rating.ManningN)

		assert.Equal(t, "NONE", cfg.Cleanup.DenyBranches)
		assert.Equal(t, 10, cfg.Errors.MinUnitErrors)

		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "fim", cfg.Database.Database)
		assert.Equal(t, 50_000, cfg.Database.BatchSize)

		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		assert.Equal(t, 1, cfg.JobsNumber)
		assert.Equal(t, runtime.NumCPU(), cfg.BranchJobsNumber)
		assert.Equal(t, "STOP", cfg.StopFile)
	})
}

func TestOptionStrings(t *testing.T) {
	tests := []struct {
		name     string
		opt      func(string) config.Option
		get      func(*config.Config) string
		input    string
		expected string
	}{
		{
			name:     "sets dem",
			opt:      config.OptInputsDEM,
			get:      func(c *config.Config) string { return c.Inputs.DEM },
			input:    " /data/dem.tif ",
			expected: "/data/dem.tif",
		},
		{
			name:     "ignores empty streams",
			opt:      config.OptInputsStreams,
			get:      func(c *config.Config) string { return c.Inputs.Streams },
			input:    "   ",
			expected: "",
		},
		{
			name:     "sets deny list",
			opt:      config.OptCleanupDenyBranches,
			get:      func(c *config.Config) string { return c.Cleanup.DenyBranches },
			input:    "deny_branches.lst",
			expected: "deny_branches.lst",
		},
		{
			name:     "ignores empty host",
			opt:      config.OptDatabaseHost,
			get:      func(c *config.Config) string { return c.Database.Host },
			input:    "",
			expected: "localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt(tt.input)})
			assert.Equal(t, tt.expected, tt.get(cfg))
		})
	}
}

func TestOptionNumbers(t *testing.T) {
	t.Run("rejects non-positive", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptBranchBufferDistance(-1),
			config.OptRatingManningN(0),
			config.OptJobsNumber(0),
			config.OptRatingStageMin(-0.5),
		})
		assert.Equal(t, 7000.0, cfg.Branch.BufferDistance)
		assert.Equal(t, 0.06, cfg.Rating.ManningN)
		assert.Equal(t, 1, cfg.JobsNumber)
		assert.Equal(t, 0.0, cfg.Rating.StageMin)
	})

	t.Run("accepts valid", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptBranchBufferDistance(3000),
			config.OptRatingStageMax(10),
			config.OptRatingStageInterval(0.5),
			config.OptBranchThalwegDrop(0),
			config.OptErrorsMaxUnitErrorsPercent(25),
		})
		assert.Equal(t, 3000.0, cfg.Branch.BufferDistance)
		assert.Equal(t, 21, cfg.StageCount())
		assert.Equal(t, 25.0, cfg.Errors.MaxUnitErrorsPercent)
	})
}

func TestOptionEnums(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptLogLevel("DEBUG"),
		config.OptLogFormat("xml"),
		config.OptLogDestination("stderr"),
		config.OptDatabaseSSLMode("require"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Destination)
	assert.Equal(t, "require", cfg.Database.SSLMode)
}

func TestOptHUCs(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptHUCs([]string{"12090301", "1020004", "abc", "123456789"}),
	})
	assert.Equal(t, []string{"12090301", "01020004"}, cfg.HUCs)
}

func TestToOptionsRoundTrip(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptInputsDEM("/data/dem.tif"),
		config.OptBranchLeveeBurn(false),
		config.OptRatingStageMin(0.5),
		config.OptCrosswalkSnapDistance(30),
		config.OptHomeDir("/home/user"),
		config.OptHUCs([]string{"12090301"}),
	})

	res := config.New()
	res.Update(src.ToOptions())

	assert.Equal(t, "/data/dem.tif", res.Inputs.DEM)
	assert.False(t, res.Branch.LeveeBurn)
	assert.Equal(t, 0.5, res.Rating.StageMin)
	assert.Equal(t, 30.0, res.Crosswalk.SnapDistance)
	assert.Empty(t, res.HomeDir, "runtime fields are not persistent")
	assert.Empty(t, res.HUCs, "runtime fields are not persistent")
}
