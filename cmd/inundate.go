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
	"context"
	"os"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iogpkg"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iopipeline"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/inundate"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/mosaic"
	"github.com/ctessum/geom"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getInundateCmd returns the inundate command.
func getInundateCmd() *cobra.Command {
	var (
		forecast string
		hucsFile string
		output   string
	)

	inundateCmd := &cobra.Command{
		Use:   "inundate --forecast <flows.csv> [HUC8...]",
		Short: "Map forecast depths of HUCs",
		Long: `Map flood depths of processed HUCs for a flow forecast.

The forecast is a CSV with 'feature_id' and 'discharge' columns in
cubic meters per second. Every branch gets an inundation raster from
its rating curves and HAND, then branches are merged into
inundation.tif of the HUC, masked by the HUC boundary.

Examples:
  fim inundate --forecast flows.csv 12090301
  fim inundate -F flows.csv -f hucs.lst -o /data/outputs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hucs, err := hucList(args, hucsFile)
			if err == nil {
				setOutput(cmd, output)
				err = runInundate(forecast, hucs)
			}
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	inundateCmd.Flags().StringVarP(&forecast, "forecast", "F", "",
		"CSV of forecast flows by feature_id")
	inundateCmd.Flags().StringVarP(&hucsFile, "hucs-file", "f", "",
		"file with HUC8 codes, one per line")
	inundateCmd.Flags().StringVarP(&output, "output", "o", "",
		"root directory of HUC outputs")
	_ = inundateCmd.MarkFlagRequired("forecast")

	return inundateCmd
}

func runInundate(path string, hucs []string) error {
	if len(hucs) == 0 {
		return iopipeline.NoHUCsError()
	}
	f, err := os.Open(path)
	if err != nil {
		return iofs.ReadFileError(path, err)
	}
	flows, err := inundate.ReadForecast(f)
	f.Close()
	if err != nil {
		return iofs.ReadFileError(path, err)
	}

	ctx, stop := signalContext()
	defer stop()

	p := iopipeline.New(cfg, rasterStore())
	for _, huc := range hucs {
		out, err := p.Inundate(ctx, hydrotable.PadHUC(huc), flows)
		if err != nil {
			return err
		}
		gn.Info("Inundation of HUC <em>%s</em>: %s", huc, out)
	}
	return nil
}

// getMosaicCmd returns the mosaic command.
func getMosaicCmd() *cobra.Command {
	var (
		output     string
		resolution float64
		maskPath   string
		maskLayer  string
	)

	mosaicCmd := &cobra.Command{
		Use:   "mosaic -o <out.tif> <raster>...",
		Short: "Merge overlapping rasters",
		Long: `Merge rasters of the same CRS into one GeoTIFF. Every output
pixel keeps the largest valid value of inputs. An optional GeoPackage
of polygons masks the result.

Examples:
  fim mosaic -o huc.tif branches/*/inundation_*.tif
  fim mosaic -o huc.tif -r 10 --mask wbd.gpkg a.tif b.tif`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runMosaic(args, output, resolution, maskPath, maskLayer)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	mosaicCmd.Flags().StringVarP(&output, "output", "o", "",
		"output GeoTIFF")
	mosaicCmd.Flags().Float64VarP(&resolution, "resolution", "r", 0,
		"output cell size, 0 takes the finest input")
	mosaicCmd.Flags().StringVar(&maskPath, "mask", "",
		"GeoPackage with mask polygons")
	mosaicCmd.Flags().StringVar(&maskLayer, "mask-layer", "",
		"layer of the mask GeoPackage, empty takes the first one")
	_ = mosaicCmd.MarkFlagRequired("output")

	return mosaicCmd
}

func runMosaic(inputs []string, out string, res float64, maskPath, maskLayer string) error {
	ctx, stop := signalContext()
	defer stop()

	mask, err := readMask(ctx, maskPath, maskLayer)
	if err != nil {
		return err
	}
	opts := mosaic.Options{
		Resolution: res,
		Tile:       cfg.Branch.TileSize,
		Workers:    cfg.BranchJobsNumber,
		Mask:       mask,
	}
	if err = iopipeline.MosaicFiles(ctx, rasterStore(), inputs, out, opts); err != nil {
		return err
	}
	gn.Info("Mosaic of %d rasters: <em>%s</em>", len(inputs), out)
	return nil
}

func readMask(ctx context.Context, path, layer string) ([]geom.Polygon, error) {
	if path == "" {
		return nil, nil
	}
	l, err := iogpkg.Read(ctx, path, layer, cfg.Inputs.CRS)
	if err != nil {
		return nil, err
	}
	polys, _ := l.Polygons()
	return polys, nil
}
