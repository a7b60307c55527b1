package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptInputsDEM sets the path to the national DEM.
func OptInputsDEM(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Inputs DEM", s) {
			c.Inputs.DEM = s
		}
	}
}

// OptInputsStreams sets the path to the reference stream network.
func OptInputsStreams(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Inputs Streams", s) {
			c.Inputs.Streams = s
		}
	}
}

// OptInputsWBD sets the path to the watershed boundaries.
func OptInputsWBD(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Inputs WBD", s) {
			c.Inputs.WBD = s
		}
	}
}

// OptInputsLevees sets the path to levee centerlines.
func OptInputsLevees(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Inputs Levees", s) {
			c.Inputs.Levees = s
		}
	}
}

// OptInputsLeveeProtectedAreas sets the path to levee-protected polygons.
func OptInputsLeveeProtectedAreas(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Inputs Levee Protected Areas", s) {
			c.Inputs.LeveeProtectedAreas = s
		}
	}
}

// OptInputsGauges sets the path to USGS gauge points.
func OptInputsGauges(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Inputs Gauges", s) {
			c.Inputs.Gauges = s
		}
	}
}

// OptInputsManningTable sets the path to roughness overrides.
func OptInputsManningTable(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Inputs Manning Table", s) {
			c.Inputs.ManningTable = s
		}
	}
}

// OptInputsCRS sets the EPSG code of the run projection.
func OptInputsCRS(i int) Option {
	return func(c *Config) {
		if isValidInt("Inputs CRS", i) {
			c.Inputs.CRS = i
		}
	}
}

// OptBranchBufferDistance sets the level path buffer in meters.
func OptBranchBufferDistance(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Branch Buffer Distance", f) {
			c.Branch.BufferDistance = f
		}
	}
}

// OptBranchMaxReachLength sets the length in meters at which derived
// reaches are split.
func OptBranchMaxReachLength(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Branch Max Reach Length", f) {
			c.Branch.MaxReachLength = f
		}
	}
}

// OptBranchMinSlope sets the floor of reach slopes.
func OptBranchMinSlope(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Branch Min Slope", f) {
			c.Branch.MinSlope = f
		}
	}
}

// OptBranchThalwegDrop sets how deep reference streams are burned.
// Zero disables the burn.
func OptBranchThalwegDrop(f float64) Option {
	return func(c *Config) {
		if isValidNonNegative("Branch Thalweg Drop", f) {
			c.Branch.ThalwegDrop = f
		}
	}
}

// OptBranchLeveeBurn enables or disables levee burn-in.
func OptBranchLeveeBurn(b bool) Option {
	return func(c *Config) {
		c.Branch.LeveeBurn = b
	}
}

// OptBranchTileSize sets the edge of raster windows in pixels.
func OptBranchTileSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Branch Tile Size", i) {
			c.Branch.TileSize = i
		}
	}
}

// OptRatingStageMin sets the first stage of rating curves.
func OptRatingStageMin(f float64) Option {
	return func(c *Config) {
		if isValidNonNegative("Rating Stage Min", f) {
			c.Rating.StageMin = f
		}
	}
}

// OptRatingStageMax sets the last stage of rating curves.
func OptRatingStageMax(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Rating Stage Max", f) {
			c.Rating.StageMax = f
		}
	}
}

// OptRatingStageInterval sets the stage step of rating curves.
func OptRatingStageInterval(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Rating Stage Interval", f) {
			c.Rating.StageInterval = f
		}
	}
}

// OptRatingManningN sets the default roughness coefficient.
func OptRatingManningN(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Rating Manning N", f) {
			c.Rating.ManningN = f
		}
	}
}

// OptCrosswalkSnapDistance sets the cross-walk snapping tolerance in meters.
func OptCrosswalkSnapDistance(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Crosswalk Snap Distance", f) {
			c.Crosswalk.SnapDistance = f
		}
	}
}

// OptErrorsMinUnitErrors sets the least number of failed units that
// aborts a run.
func OptErrorsMinUnitErrors(i int) Option {
	return func(c *Config) {
		if isValidInt("Errors Min Unit Errors", i) {
			c.Errors.MinUnitErrors = i
		}
	}
}

// OptErrorsMaxUnitErrorsPercent sets the least percentage of failed
// units that aborts a run.
func OptErrorsMaxUnitErrorsPercent(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Errors Max Unit Errors Percent", f) {
			c.Errors.MaxUnitErrorsPercent = f
		}
	}
}

// OptCleanupDenyUnits sets the deny list applied to HUC directories.
func OptCleanupDenyUnits(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Cleanup Deny Units", s) {
			c.Cleanup.DenyUnits = s
		}
	}
}

// OptCleanupDenyBranches sets the deny list applied to level path branches.
func OptCleanupDenyBranches(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Cleanup Deny Branches", s) {
			c.Cleanup.DenyBranches = s
		}
	}
}

// OptCleanupDenyBranchZero sets the deny list applied to branch zero.
func OptCleanupDenyBranchZero(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Cleanup Deny Branch Zero", s) {
			c.Cleanup.DenyBranchZero = s
		}
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of rows sent per bulk copy.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of HUCs processed concurrently.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptBranchJobsNumber sets the number of branches processed concurrently.
// Default is runtime.NumCPU().
func OptBranchJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Branch Jobs Number", i) {
			c.BranchJobsNumber = i
		}
	}
}

// OptOutputDir sets the root of output directories.
func OptOutputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Output Directory", s) {
			c.OutputDir = s
		}
	}
}

// OptStopFile sets the name of the cancellation sentinel file.
func OptStopFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Stop File", s) {
			c.StopFile = s
		}
	}
}

// OptHUCs sets HUC8 codes to process. Codes shorter than 8 digits are
// zero-padded. Non-numeric codes are rejected.
// Runtime-only field - not in ToOptions().
func OptHUCs(ss []string) Option {
	var hucs []string
	for _, v := range ss {
		if huc, ok := isValidHUC(v); ok {
			hucs = append(hucs, huc)
		}
	}
	return func(c *Config) {
		if len(hucs) > 0 {
			c.HUCs = hucs
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
