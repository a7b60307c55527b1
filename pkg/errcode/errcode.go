package errcode

import (
	"errors"

	"github.com/gnames/gn"
)

// Exit status codes. Their numeric values are used as process exit codes,
// so they are pinned and must not change.
const (
	// UnitNoBranches means a HUC produced no branches.
	UnitNoBranches gn.ErrorCode = 60
	// NoFlowlinesExist means a branch has no reaches after filtering.
	NoFlowlinesExist gn.ErrorCode = 61
	// ExcessUnitErrors means too many HUCs failed.
	ExcessUnitErrors gn.ErrorCode = 62
	// NoBranchLevelpathsExist means the branch generator produced no polygons.
	NoBranchLevelpathsExist gn.ErrorCode = 63
	// NoValidCrosswalks means no derived reach matched the reference network.
	NoValidCrosswalks gn.ErrorCode = 64
)

const (
	UnknownError gn.ErrorCode = iota + 100

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Raster errors
	RasterOpenError
	RasterCreateError
	RasterReadError
	RasterWriteError
	RasterGridMismatchError

	// Vector errors
	VectorOpenError
	VectorReadError
	VectorWriteError
	VectorReprojectError

	// Network errors
	NetworkCyclicError
	NetworkDuplicateIDError
	NetworkEmptyError

	// Conditioning errors
	FillError

	// Rating curve errors
	RatingStageError

	// Table errors
	TableParseError

	// Cache errors
	CacheOpenError
	CacheStoreError
	CacheNotOpenError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBQueryError
	DBCopyError
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError

	// Pipeline errors
	PipelineCancelledError
	PipelineInputError
	PipelineHUCError
	PipelineBranchError

	// Delineation errors
	HydroIDRangeError
)

// ExitCode converts an error to a process exit status.
// Nil is success, errors carrying one of the pinned exit status codes
// return that code, anything else is a generic failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var gnErr *gn.Error
	if errors.As(err, &gnErr) && IsExitStatus(gnErr.Code) {
		return int(gnErr.Code)
	}
	return 1
}

// IsExitStatus returns true if the code is one of the pinned exit codes.
func IsExitStatus(code gn.ErrorCode) bool {
	return code >= UnitNoBranches && code <= NoValidCrosswalks
}

// Code returns the gn.ErrorCode carried by err, or UnknownError.
func Code(err error) gn.ErrorCode {
	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		return gnErr.Code
	}
	return UnknownError
}

// Name returns the conventional upper-case name of an exit status code.
func Name(code gn.ErrorCode) string {
	switch code {
	case UnitNoBranches:
		return "UNIT_NO_BRANCHES"
	case NoFlowlinesExist:
		return "NO_FLOWLINES_EXIST"
	case ExcessUnitErrors:
		return "EXCESS_UNIT_ERRORS"
	case NoBranchLevelpathsExist:
		return "NO_BRANCH_LEVELPATHS_EXIST"
	case NoValidCrosswalks:
		return "NO_VALID_CROSSWALKS"
	default:
		return "UNKNOWN"
	}
}

// Severity orders exit statuses so the most severe outcome of a run
// can be reported. Higher is more severe.
func Severity(code int) int {
	switch code {
	case 0:
		return 0
	case int(NoFlowlinesExist), int(NoBranchLevelpathsExist),
		int(NoValidCrosswalks):
		return 1
	case int(UnitNoBranches):
		return 2
	case int(ExcessUnitErrors):
		return 4
	default:
		return 3
	}
}
