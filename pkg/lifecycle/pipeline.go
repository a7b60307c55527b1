package lifecycle

import (
	"context"
)

// Pipeline turns national inputs into per-HUC hydrofabric outputs.
// Configuration is provided during construction.
//
// Failures of single HUCs and branches are recorded in the unit errors
// directory of the output and do not stop the run. The error returned by
// Run carries the exit status of the most severe outcome.
type Pipeline interface {
	// Run processes all configured HUCs, then aggregates their outputs,
	// enforces the unit error threshold and applies deny lists.
	Run(ctx context.Context) error

	// RunBranch re-runs one branch of a HUC already prepared by Run and
	// refreshes the HUC aggregates.
	RunBranch(ctx context.Context, huc string, branch int) error
}
