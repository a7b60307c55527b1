// Package config provides configuration management for fim.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Inputs: dem, streams, wbd, levees, levee_protected_areas, gauges,
//     manning_table, crs
//   - Branch: buffer_distance, max_reach_length, min_slope, thalweg_drop,
//     levee_burn, tile_size
//   - Rating: stage_min, stage_max, stage_interval, manning_n
//   - Crosswalk: snap_distance
//   - Errors: min_unit_errors, max_unit_errors_percent
//   - Cleanup: deny_units, deny_branches, deny_branch_zero
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Log: level, format, destination
//   - General: jobs_number, branch_jobs_number, output_dir, stop_file
//
// Runtime-only fields (CLI flags only):
//   - HUCs (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use FIM_ prefix with underscores for nesting:
//
//	FIM_INPUTS_DEM=/data/dem.tif
//	FIM_BRANCH_BUFFER_DISTANCE=7000
//	FIM_LOG_LEVEL=info
//	FIM_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete fim configuration.
type Config struct {
	// Inputs contains locations of the national input datasets.
	Inputs InputsConfig `mapstructure:"inputs" yaml:"inputs"`

	// Branch contains settings of hydro-conditioning and branch generation.
	Branch BranchConfig `mapstructure:"branch" yaml:"branch"`

	// Rating contains settings of synthetic rating curves.
	Rating RatingConfig `mapstructure:"rating" yaml:"rating"`

	// Crosswalk contains settings of the derived to reference stream match.
	Crosswalk CrosswalkConfig `mapstructure:"crosswalk" yaml:"crosswalk"`

	// Errors contains the unit error threshold.
	Errors ErrorsConfig `mapstructure:"errors" yaml:"errors"`

	// Cleanup contains deny lists of intermediate files.
	Cleanup CleanupConfig `mapstructure:"cleanup" yaml:"cleanup"`

	// Database contains PostgreSQL connection settings for publishing
	// hydro-tables.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of HUCs processed concurrently.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// BranchJobsNumber is the number of branches of one HUC processed
	// concurrently.
	BranchJobsNumber int `mapstructure:"branch_jobs_number" yaml:"branch_jobs_number"`

	// OutputDir is the root of all per-HUC output directories.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// StopFile is the name of a sentinel file inside OutputDir. When it
	// exists no new HUC or branch tasks are dispatched.
	StopFile string `mapstructure:"stop_file" yaml:"stop_file"`

	// HUCs is the list of HUC8 codes to process.
	HUCs []string `yaml:"hucs,omitempty"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `yaml:"-"`
}

// InputsConfig contains paths to input datasets.
type InputsConfig struct {
	// DEM is a GeoTIFF with elevations in meters covering all HUCs.
	DEM string `mapstructure:"dem" yaml:"dem"`

	// Streams is a GeoPackage with the reference (NWM) stream network.
	Streams string `mapstructure:"streams" yaml:"streams"`

	// WBD is a GeoPackage with HUC8 watershed boundaries.
	WBD string `mapstructure:"wbd" yaml:"wbd"`

	// Levees is a GeoPackage with levee centerlines carrying crest
	// elevations. Empty disables levee burn-in.
	Levees string `mapstructure:"levees" yaml:"levees"`

	// LeveeProtectedAreas is a GeoPackage with levee-protected polygons.
	// Empty disables masking.
	LeveeProtectedAreas string `mapstructure:"levee_protected_areas" yaml:"levee_protected_areas"`

	// Gauges is a GeoPackage with USGS gauge points. Empty disables the
	// usgs_elev_table.
	Gauges string `mapstructure:"gauges" yaml:"gauges"`

	// ManningTable is a CSV with per feature_id roughness overrides.
	ManningTable string `mapstructure:"manning_table" yaml:"manning_table"`

	// CRS is the EPSG code shared by all outputs of a run.
	CRS int `mapstructure:"crs" yaml:"crs"`
}

// BranchConfig contains settings of conditioning and branch generation.
type BranchConfig struct {
	// BufferDistance in meters around a level path that defines its branch.
	BufferDistance float64 `mapstructure:"buffer_distance" yaml:"buffer_distance"`

	// MaxReachLength in meters. Longer derived reaches are split.
	MaxReachLength float64 `mapstructure:"max_reach_length" yaml:"max_reach_length"`

	// MinSlope is the floor for reach slopes used by Manning's equation.
	MinSlope float64 `mapstructure:"min_slope" yaml:"min_slope"`

	// ThalwegDrop in meters lowers reference stream pixels before filling.
	// Zero disables the burn.
	ThalwegDrop float64 `mapstructure:"thalweg_drop" yaml:"thalweg_drop"`

	// LeveeBurn enables burning levee crests into the DEM.
	LeveeBurn bool `mapstructure:"levee_burn" yaml:"levee_burn"`

	// TileSize is the edge in pixels of windows used by windowed operations.
	TileSize int `mapstructure:"tile_size" yaml:"tile_size"`
}

// RatingConfig contains settings of synthetic rating curves.
type RatingConfig struct {
	StageMin      float64 `mapstructure:"stage_min"      yaml:"stage_min"`
	StageMax      float64 `mapstructure:"stage_max"      yaml:"stage_max"`
	StageInterval float64 `mapstructure:"stage_interval" yaml:"stage_interval"`
	// ManningN is the default roughness coefficient.
	ManningN float64 `mapstructure:"manning_n" yaml:"manning_n"`
}

// CrosswalkConfig contains settings of the cross-walker.
type CrosswalkConfig struct {
	// SnapDistance in meters under which a derived vertex is considered
	// to lie on a reference line.
	SnapDistance float64 `mapstructure:"snap_distance" yaml:"snap_distance"`
}

// ErrorsConfig contains the unit error threshold. A run fails with
// EXCESS_UNIT_ERRORS when the number of failed units reaches
// MinUnitErrors and their share of submitted HUCs reaches
// MaxUnitErrorsPercent.
type ErrorsConfig struct {
	MinUnitErrors        int     `mapstructure:"min_unit_errors"         yaml:"min_unit_errors"`
	MaxUnitErrorsPercent float64 `mapstructure:"max_unit_errors_percent" yaml:"max_unit_errors_percent"`
}

// CleanupConfig contains paths to deny list files. The value "NONE"
// disables the corresponding cleanup.
type CleanupConfig struct {
	DenyUnits      string `mapstructure:"deny_units"       yaml:"deny_units"`
	DenyBranches   string `mapstructure:"deny_branches"    yaml:"deny_branches"`
	DenyBranchZero string `mapstructure:"deny_branch_zero" yaml:"deny_branch_zero"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of hydro-table rows sent per CopyFrom.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Inputs: InputsConfig{
			CRS: DefaultCRS,
		},
		Branch: BranchConfig{
			BufferDistance: 7000,
			MaxReachLength: 1500,
			MinSlope:       0.001,
			ThalwegDrop:    0,
			LeveeBurn:      true,
			TileSize:       256,
		},
		Rating: RatingConfig{
			StageMin:      0,
			StageMax:      25,
			StageInterval: 0.3048,
			ManningN:      0.06,
		},
		Crosswalk: CrosswalkConfig{
			SnapDistance: 15,
		},
		Errors: ErrorsConfig{
			MinUnitErrors:        10,
			MaxUnitErrorsPercent: 10,
		},
		Cleanup: CleanupConfig{
			DenyUnits:      "NONE",
			DenyBranches:   "NONE",
			DenyBranchZero: "NONE",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "fim",
			SSLMode:   "disable",
			BatchSize: 50_000,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber:       1,
		BranchJobsNumber: runtime.NumCPU(),
		OutputDir:        "fim_output",
		StopFile:         "STOP",
	}

	return res
}
