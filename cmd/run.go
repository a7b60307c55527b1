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
	"strconv"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iopipeline"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getRunCmd returns the run command.
func getRunCmd() *cobra.Command {
	var (
		in         inputFlags
		hucsFile   string
		output     string
		jobs       int
		branchJobs int
		quiet      bool
	)

	runCmd := &cobra.Command{
		Use:   "run [HUC8...]",
		Short: "Produce hydrofabrics of HUCs",
		Long: `Produce the hydrofabric of every given HUC8.

For each HUC this command:
  1. Clips national inputs to the buffered HUC boundary
  2. Decorates the reference network with level paths
  3. Hydro-conditions the DEM and derives the stream network
  4. Splits the network into level path branches plus branch zero
  5. Computes HAND, catchments and synthetic rating curves per branch
  6. Aggregates branch hydro-tables of the HUC

Failed HUCs and branches are logged to <output>/unit_errors. The run
stops dispatching work when the stop file appears in the output
directory. The exit status tells the most severe outcome.

Examples:
  fim run 12090301 12090302
  fim run -f hucs.lst -j 4 -b 2 -o /data/outputs
  fim run 12090301 --dem dem.tif --streams streams.gpkg --wbd wbd.gpkg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hucs, err := hucList(args, hucsFile)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			opts := in.options(cmd)
			opts = append(opts, config.OptHUCs(hucs))
			if cmd.Flags().Changed("jobs") {
				opts = append(opts, config.OptJobsNumber(jobs))
			}
			if cmd.Flags().Changed("branch-jobs") {
				opts = append(opts, config.OptBranchJobsNumber(branchJobs))
			}
			cfg.Update(opts)
			setOutput(cmd, output)

			err = runRun(quiet)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	in.register(runCmd)
	runCmd.Flags().StringVarP(&hucsFile, "hucs-file", "f", "",
		"file with HUC8 codes, one per line")
	runCmd.Flags().StringVarP(&output, "output", "o", "",
		"root directory of HUC outputs")
	runCmd.Flags().IntVarP(&jobs, "jobs", "j", 0,
		"number of HUCs processed concurrently")
	runCmd.Flags().IntVarP(&branchJobs, "branch-jobs", "b", 0,
		"number of branches processed concurrently per HUC")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"do not show the progress bar")

	return runCmd
}

func runRun(quiet bool) error {
	ctx, stop := signalContext()
	defer stop()

	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	p := iopipeline.New(cfg, rasterStore(),
		iopipeline.WithCache(cache),
		iopipeline.WithProgress(!quiet),
	)
	return p.Run(ctx)
}

// getBranchCmd returns the branch command.
func getBranchCmd() *cobra.Command {
	var (
		in     inputFlags
		output string
	)

	branchCmd := &cobra.Command{
		Use:   "branch <HUC8> <branch-id>",
		Short: "Re-run one branch of a processed HUC",
		Long: `Re-run one branch of a HUC processed by 'fim run'.

The decorated network of the HUC comes from the network cache, the
burned DEM from the HUC directory. Branch zero has id 0. The branch
list and the HUC hydro-table are updated with the outcome.

Examples:
  fim branch 12090301 3
  fim branch 12090301 0 -o /data/outputs`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[1])
			if err != nil {
				err = fmt.Errorf("branch id %q is not a number", args[1])
				gn.PrintErrorMessage(err)
				return err
			}
			cfg.Update(in.options(cmd))
			setOutput(cmd, output)

			err = runBranch(args[0], id)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	in.register(branchCmd)
	branchCmd.Flags().StringVarP(&output, "output", "o", "",
		"root directory of HUC outputs")

	return branchCmd
}

func runBranch(huc string, id int) error {
	ctx, stop := signalContext()
	defer stop()

	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	p := iopipeline.New(cfg, rasterStore(), iopipeline.WithCache(cache))
	if err = p.RunBranch(ctx, hydrotable.PadHUC(huc), id); err != nil {
		return err
	}
	gn.Info("Branch <em>%d</em> of HUC <em>%s</em> is done", id, huc)
	return nil
}
