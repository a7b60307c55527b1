package cmd

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iocache"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iogeotiff"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/spf13/cobra"
)

// inputFlags are paths of national inputs shared by run and branch.
type inputFlags struct {
	dem, streams, wbd, levees, leveeAreas, gauges, manning string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.dem, "dem", "", "national DEM GeoTIFF")
	fs.StringVar(&f.streams, "streams", "", "reference flowlines GeoPackage")
	fs.StringVar(&f.wbd, "wbd", "", "WBD HUC8 boundaries GeoPackage")
	fs.StringVar(&f.levees, "levees", "", "levee lines GeoPackage")
	fs.StringVar(&f.leveeAreas, "levee-areas", "", "levee protected areas GeoPackage")
	fs.StringVar(&f.gauges, "gauges", "", "gauge points GeoPackage")
	fs.StringVar(&f.manning, "manning", "", "CSV of Manning n by stream order")
}

// options returns config options of flags set on the command line.
func (f *inputFlags) options(cmd *cobra.Command) []config.Option {
	var res []config.Option
	set := func(name, val string, opt func(string) config.Option) {
		if cmd.Flags().Changed(name) {
			res = append(res, opt(val))
		}
	}
	set("dem", f.dem, config.OptInputsDEM)
	set("streams", f.streams, config.OptInputsStreams)
	set("wbd", f.wbd, config.OptInputsWBD)
	set("levees", f.levees, config.OptInputsLevees)
	set("levee-areas", f.leveeAreas, config.OptInputsLeveeProtectedAreas)
	set("gauges", f.gauges, config.OptInputsGauges)
	set("manning", f.manning, config.OptInputsManningTable)
	return res
}

// hucList merges HUC arguments with codes listed in a file, one per line.
func hucList(args []string, path string) ([]string, error) {
	res := append([]string{}, args...)
	if path == "" {
		return res, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		res = append(res, strings.Fields(sc.Text())...)
	}
	if err = sc.Err(); err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	return res, nil
}

// setOutput points the run to an output directory given by a flag.
func setOutput(cmd *cobra.Command, dir string) {
	if cmd.Flags().Changed("output") {
		cfg.Update([]config.Option{config.OptOutputDir(dir)})
	}
}

// signalContext is cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func rasterStore() *iogeotiff.Store {
	return iogeotiff.New(cfg.Branch.TileSize)
}

// openCache opens the decorated network cache of the user.
func openCache() (*iocache.NetworkCache, error) {
	c, err := iocache.New(config.NetworkCacheDir(homeDir))
	if err != nil {
		return nil, err
	}
	if err = c.Open(); err != nil {
		return nil, err
	}
	return c, nil
}
