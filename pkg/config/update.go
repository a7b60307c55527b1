package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, HUCs).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	addString := func(s string, fn func(string) Option) {
		if s != "" {
			res = append(res, fn(s))
		}
	}
	addInt := func(i int, fn func(int) Option) {
		if i > 0 {
			res = append(res, fn(i))
		}
	}
	addFloat := func(f float64, fn func(float64) Option) {
		if f > 0 {
			res = append(res, fn(f))
		}
	}

	addString(c.Inputs.DEM, OptInputsDEM)
	addString(c.Inputs.Streams, OptInputsStreams)
	addString(c.Inputs.WBD, OptInputsWBD)
	addString(c.Inputs.Levees, OptInputsLevees)
	addString(c.Inputs.LeveeProtectedAreas, OptInputsLeveeProtectedAreas)
	addString(c.Inputs.Gauges, OptInputsGauges)
	addString(c.Inputs.ManningTable, OptInputsManningTable)
	addInt(c.Inputs.CRS, OptInputsCRS)

	addFloat(c.Branch.BufferDistance, OptBranchBufferDistance)
	addFloat(c.Branch.MaxReachLength, OptBranchMaxReachLength)
	addFloat(c.Branch.MinSlope, OptBranchMinSlope)
	addFloat(c.Branch.ThalwegDrop, OptBranchThalwegDrop)
	res = append(res, OptBranchLeveeBurn(c.Branch.LeveeBurn))
	addInt(c.Branch.TileSize, OptBranchTileSize)

	// zero is a valid first stage
	res = append(res, OptRatingStageMin(c.Rating.StageMin))
	addFloat(c.Rating.StageMax, OptRatingStageMax)
	addFloat(c.Rating.StageInterval, OptRatingStageInterval)
	addFloat(c.Rating.ManningN, OptRatingManningN)

	addFloat(c.Crosswalk.SnapDistance, OptCrosswalkSnapDistance)

	addInt(c.Errors.MinUnitErrors, OptErrorsMinUnitErrors)
	addFloat(c.Errors.MaxUnitErrorsPercent, OptErrorsMaxUnitErrorsPercent)

	addString(c.Cleanup.DenyUnits, OptCleanupDenyUnits)
	addString(c.Cleanup.DenyBranches, OptCleanupDenyBranches)
	addString(c.Cleanup.DenyBranchZero, OptCleanupDenyBranchZero)

	addString(c.Database.Host, OptDatabaseHost)
	addInt(c.Database.Port, OptDatabasePort)
	addString(c.Database.User, OptDatabaseUser)
	addString(c.Database.Password, OptDatabasePassword)
	addString(c.Database.Database, OptDatabaseDatabase)
	addString(c.Database.SSLMode, OptDatabaseSSLMode)
	addInt(c.Database.BatchSize, OptDatabaseBatchSize)

	addString(c.Log.Format, OptLogFormat)
	addString(c.Log.Level, OptLogLevel)
	addString(c.Log.Destination, OptLogDestination)

	addInt(c.JobsNumber, OptJobsNumber)
	addInt(c.BranchJobsNumber, OptBranchJobsNumber)
	addString(c.OutputDir, OptOutputDir)
	addString(c.StopFile, OptStopFile)
	return res
}

// StageCount returns the number of stages of rating curves.
func (c *Config) StageCount() int {
	r := c.Rating
	return int((r.StageMax-r.StageMin)/r.StageInterval+1e-9) + 1
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidFloat(name string, f float64) bool {
	res := f > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %v", name, f)
	}
	return res
}

func isValidNonNegative(name string, f float64) bool {
	res := f >= 0
	if !res {
		gn.Warn("<em>%s</em> cannot be negative, ignoring %v", name, f)
	}
	return res
}

func isValidHUC(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, err := strconv.Atoi(s); err != nil || len(s) > 8 {
		gn.Warn("<em>%s</em> is not a valid HUC8 code, ignoring", s)
		return "", false
	}
	return strings.Repeat("0", 8-len(s)) + s, true
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Database.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	} else {
		gn.Warn(
			"<em>%s</em> does not support '%s' as a value. "+
				"Valid values are: \n%s\nIgnoring...",
			[]string{name, val, strings.Join(lines, "\n")},
		)
		return false
	}
}
