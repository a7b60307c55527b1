/*
Copyright © 2026 NOAA Office of Water Prediction (NOAA-OWP)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iologger"
	fim "github.com/NOAA-OWP/inundation-mapping-sub004/pkg"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd returns the root command with all subcommands registered.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", fim.Version, fim.Build),
		Use:     "fim",
		Short:   "Flood Inundation Mapping hydrofabric pipeline",
		Long: `fim produces Flood Inundation Mapping hydrofabrics for HUC8
hydrologic units: a hydro-conditioned DEM, a derived stream network split
into level path branches, relative elevation (HAND) rasters and synthetic
rating curves of every branch.

Commands:
  - run: process HUCs from national inputs
  - branch: re-run one branch of a processed HUC
  - aggregate: merge branch hydro-tables of HUCs
  - cleanup: apply deny lists to HUC outputs
  - inundate: map forecast depths of HUCs
  - mosaic: merge overlapping rasters
  - publish: load hydro-tables into PostgreSQL

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (FIM_*)
  3. Config file (~/.config/fim/config.yaml)
  4. Built-in defaults

Environment Variables:
  Nested fields use underscores (branch.buffer_distance ->
  FIM_BRANCH_BUFFER_DISTANCE).

  Examples:
    FIM_INPUTS_DEM                  National DEM GeoTIFF
    FIM_OUTPUT_DIR                  Root of HUC outputs
    FIM_JOBS_NUMBER                 HUCs processed concurrently
    FIM_DATABASE_HOST               PostgreSQL host for publishing
    FIM_LOG_LEVEL                   Log level (debug/info/warn/error)

Exit status of runs:
  60 UNIT_NO_BRANCHES, 61 NO_FLOWLINES_EXIST, 62 EXCESS_UNIT_ERRORS,
  63 NO_BRANCH_LEVELPATHS_EXIST, 64 NO_VALID_CROSSWALKS, 1 other errors.`,
		PersistentPreRunE: bootstrap,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "fim version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for fim")

	rootCmd.AddCommand(
		getRunCmd(),
		getBranchCmd(),
		getAggregateCmd(),
		getCleanupCmd(),
		getInundateCmd(),
		getMosaicCmd(),
		getPublishCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings and proper log file location
	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"command", cmd.Name(),
	)
	return nil
}

// reconfigureLogging reinitializes the logger with the loaded configuration.
func reconfigureLogging(cfg *config.Config) error {
	logDir := config.LogDir(cfg.HomeDir)
	return iologger.Init(logDir, cfg.Log, true)
}

// Execute runs the command line and returns the process exit status.
// This is called by main.main().
func Execute() int {
	err := getRootCmd().Execute()
	if err != nil {
		slog.Error("Command failed", "error", err, "code", errcode.Code(err))
	}
	return errcode.ExitCode(err)
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix("FIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Inputs
	v.BindEnv("inputs.dem", "FIM_INPUTS_DEM")
	v.BindEnv("inputs.streams", "FIM_INPUTS_STREAMS")
	v.BindEnv("inputs.wbd", "FIM_INPUTS_WBD")
	v.BindEnv("inputs.levees", "FIM_INPUTS_LEVEES")
	v.BindEnv("inputs.levee_protected_areas", "FIM_INPUTS_LEVEE_PROTECTED_AREAS")
	v.BindEnv("inputs.gauges", "FIM_INPUTS_GAUGES")
	v.BindEnv("inputs.manning_table", "FIM_INPUTS_MANNING_TABLE")
	v.BindEnv("inputs.crs", "FIM_INPUTS_CRS")

	// Branches
	v.BindEnv("branch.buffer_distance", "FIM_BRANCH_BUFFER_DISTANCE")
	v.BindEnv("branch.max_reach_length", "FIM_BRANCH_MAX_REACH_LENGTH")
	v.BindEnv("branch.min_slope", "FIM_BRANCH_MIN_SLOPE")
	v.BindEnv("branch.thalweg_drop", "FIM_BRANCH_THALWEG_DROP")
	v.BindEnv("branch.levee_burn", "FIM_BRANCH_LEVEE_BURN")
	v.BindEnv("branch.tile_size", "FIM_BRANCH_TILE_SIZE")

	// Rating curves
	v.BindEnv("rating.stage_min", "FIM_RATING_STAGE_MIN")
	v.BindEnv("rating.stage_max", "FIM_RATING_STAGE_MAX")
	v.BindEnv("rating.stage_interval", "FIM_RATING_STAGE_INTERVAL")
	v.BindEnv("rating.manning_n", "FIM_RATING_MANNING_N")

	v.BindEnv("crosswalk.snap_distance", "FIM_CROSSWALK_SNAP_DISTANCE")

	// Unit errors and cleanup
	v.BindEnv("errors.min_unit_errors", "FIM_ERRORS_MIN_UNIT_ERRORS")
	v.BindEnv("errors.max_unit_errors_percent", "FIM_ERRORS_MAX_UNIT_ERRORS_PERCENT")
	v.BindEnv("cleanup.deny_units", "FIM_CLEANUP_DENY_UNITS")
	v.BindEnv("cleanup.deny_branches", "FIM_CLEANUP_DENY_BRANCHES")
	v.BindEnv("cleanup.deny_branch_zero", "FIM_CLEANUP_DENY_BRANCH_ZERO")

	// Database configuration
	v.BindEnv("database.host", "FIM_DATABASE_HOST")
	v.BindEnv("database.port", "FIM_DATABASE_PORT")
	v.BindEnv("database.user", "FIM_DATABASE_USER")
	v.BindEnv("database.password", "FIM_DATABASE_PASSWORD")
	v.BindEnv("database.database", "FIM_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "FIM_DATABASE_SSL_MODE")
	v.BindEnv("database.batch_size", "FIM_DATABASE_BATCH_SIZE")

	// Log configuration
	v.BindEnv("log.level", "FIM_LOG_LEVEL")
	v.BindEnv("log.format", "FIM_LOG_FORMAT")
	v.BindEnv("log.destination", "FIM_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "FIM_JOBS_NUMBER")
	v.BindEnv("branch_jobs_number", "FIM_BRANCH_JOBS_NUMBER")
	v.BindEnv("output_dir", "FIM_OUTPUT_DIR")
	v.BindEnv("stop_file", "FIM_STOP_FILE")

	v.AutomaticEnv()
}
