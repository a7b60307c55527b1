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
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iopipeline"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getAggregateCmd returns the aggregate command.
func getAggregateCmd() *cobra.Command {
	var (
		hucsFile string
		output   string
	)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate [HUC8...]",
		Short: "Merge branch hydro-tables of HUCs",
		Long: `Merge hydro-tables and gauge elevation tables of the branches
listed in branch_ids.csv into the HUC hydroTable.csv and
usgs_elev_table.csv. Running it again gives the same files.

Examples:
  fim aggregate 12090301
  fim aggregate -f hucs.lst -o /data/outputs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hucs, err := hucList(args, hucsFile)
			if err == nil {
				setOutput(cmd, output)
				err = runAggregate(hucs)
			}
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	aggregateCmd.Flags().StringVarP(&hucsFile, "hucs-file", "f", "",
		"file with HUC8 codes, one per line")
	aggregateCmd.Flags().StringVarP(&output, "output", "o", "",
		"root directory of HUC outputs")

	return aggregateCmd
}

func runAggregate(hucs []string) error {
	if len(hucs) == 0 {
		return iopipeline.NoHUCsError()
	}
	l := iofs.Layout{Root: cfg.OutputDir}
	var total int
	for _, huc := range hucs {
		n, err := iopipeline.Aggregate(l, hydrotable.PadHUC(huc))
		if err != nil {
			return err
		}
		total += n
	}
	gn.Info("Aggregated <em>%s</em> hydro-table rows of %d HUCs",
		humanize.Comma(int64(total)), len(hucs))
	return nil
}

// getCleanupCmd returns the cleanup command.
func getCleanupCmd() *cobra.Command {
	var (
		hucsFile   string
		output     string
		units      string
		branches   string
		branchZero string
	)

	cleanupCmd := &cobra.Command{
		Use:   "cleanup [HUC8...]",
		Short: "Apply deny lists to HUC outputs",
		Long: `Remove intermediate files of HUCs matching deny lists.

A deny list is a text file of file name patterns, one per line, '#'
starts a comment. Patterns may use '{}' for the HUC or branch id and
shell wildcards. Separate lists apply to HUC directories, level path
branch directories and branch zero directories.

Examples:
  fim cleanup 12090301 --deny-units deny_unit.lst
  fim cleanup -f hucs.lst --deny-branches deny_branch.lst`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hucs, err := hucList(args, hucsFile)
			if err == nil {
				var opts []config.Option
				if cmd.Flags().Changed("deny-units") {
					opts = append(opts, config.OptCleanupDenyUnits(units))
				}
				if cmd.Flags().Changed("deny-branches") {
					opts = append(opts, config.OptCleanupDenyBranches(branches))
				}
				if cmd.Flags().Changed("deny-branch-zero") {
					opts = append(opts, config.OptCleanupDenyBranchZero(branchZero))
				}
				cfg.Update(opts)
				setOutput(cmd, output)
				err = runCleanup(hucs)
			}
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	cleanupCmd.Flags().StringVarP(&hucsFile, "hucs-file", "f", "",
		"file with HUC8 codes, one per line")
	cleanupCmd.Flags().StringVarP(&output, "output", "o", "",
		"root directory of HUC outputs")
	cleanupCmd.Flags().StringVar(&units, "deny-units", "",
		"deny list of HUC directories")
	cleanupCmd.Flags().StringVar(&branches, "deny-branches", "",
		"deny list of level path branch directories")
	cleanupCmd.Flags().StringVar(&branchZero, "deny-branch-zero", "",
		"deny list of branch zero directories")

	return cleanupCmd
}

func runCleanup(hucs []string) error {
	if len(hucs) == 0 {
		return iopipeline.NoHUCsError()
	}
	padded := make([]string, len(hucs))
	for i, huc := range hucs {
		padded[i] = hydrotable.PadHUC(huc)
	}
	l := iofs.Layout{Root: cfg.OutputDir}
	n, err := iopipeline.Cleanup(l, cfg.Cleanup, padded)
	if err != nil {
		return err
	}
	gn.Info("Removed <em>%s</em> files", humanize.Comma(int64(n)))
	return nil
}
