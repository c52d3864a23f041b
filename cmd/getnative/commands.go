package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dixieflatline76/getnative/config"
	"github.com/dixieflatline76/getnative/pkg/kernel"
	"github.com/dixieflatline76/getnative/util"
	"github.com/spf13/cobra"
)

const updateCheckTimeout = 10 * time.Second

// runFunc is swapped out in tests.
var runFunc = runGetnative

// flagBinding copies one flag's value into the merged configuration.
type flagBinding struct {
	name  string
	apply func(dst, src *config.Config)
}

// bindings lists every flag that maps to a config field. Flags override the
// config file only when given on the command line.
var bindings = []flagBinding{
	{"start", func(d, s *config.Config) { d.Start = s.Start }},
	{"end", func(d, s *config.Config) { d.End = s.End }},
	{"samples", func(d, s *config.Config) { d.Samples = s.Samples }},
	{"passes", func(d, s *config.Config) { d.Passes = s.Passes }},
	{"kernel", func(d, s *config.Config) { d.Kernel = s.Kernel }},
	{"bicubic-b", func(d, s *config.Config) { d.BicubicB = s.BicubicB }},
	{"bicubic-c", func(d, s *config.Config) { d.BicubicC = s.BicubicC }},
	{"lanczos-taps", func(d, s *config.Config) { d.LanczosTaps = s.LanczosTaps }},
	{"mode", func(d, s *config.Config) { d.Mode = s.Mode }},
	{"aspect-ratio", func(d, s *config.Config) { d.AspectRatio = s.AspectRatio }},
	{"min-height", func(d, s *config.Config) { d.MinHeight = s.MinHeight }},
	{"max-height", func(d, s *config.Config) { d.MaxHeight = s.MaxHeight }},
	{"ub-thr", func(d, s *config.Config) { d.UpperBoundThreshold = s.UpperBoundThreshold }},
	{"stepping", func(d, s *config.Config) { d.Steps = s.Steps }},
	{"output-mask", func(d, s *config.Config) { d.OutputMask = s.OutputMask }},
	{"plot-scaling", func(d, s *config.Config) { d.PlotScaling = s.PlotScaling }},
	{"plot-format", func(d, s *config.Config) { d.PlotFormat = s.PlotFormat }},
	{"show-plot-gui", func(d, s *config.Config) { d.ShowPlotGUI = s.ShowPlotGUI }},
	{"no-save", func(d, s *config.Config) { d.NoSave = s.NoSave }},
	{"output-dir", func(d, s *config.Config) { d.OutputDir = s.OutputDir }},
	{"is-image", func(d, s *config.Config) { d.IsImage = s.IsImage }},
	{"workers", func(d, s *config.Config) { d.Workers = s.Workers }},
	{"metrics-file", func(d, s *config.Config) { d.MetricsFile = s.MetricsFile }},
	{"verbose", func(d, s *config.Config) { d.Verbose = s.Verbose }},
}

// cliFlags holds the raw flag values before merging.
type cliFlags struct {
	cfg        config.Config
	configPath string
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{cfg: config.Default()}

	root := &cobra.Command{
		Use:   config.AppName + " [flags] <input>",
		Short: "Find the native resolution(s) of upscaled material",
		Long: `getnative descales sampled frames of the input to a range of candidate
resolutions, scales them back up and looks for the resolution where the
reconstruction error drops sharply.

The input is an image file or a directory (or glob) of frames.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return runFunc(cmd.Context(), cfg, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fl := root.Flags()
	fl.IntVarP(&f.cfg.Start, "start", "s", f.cfg.Start, "Starting frame")
	fl.IntVarP(&f.cfg.End, "end", "e", f.cfg.End, "Ending frame, exclusive (-1 for all frames)")
	fl.IntVarP(&f.cfg.Samples, "samples", "n", f.cfg.Samples, "Number of sampled frames")
	fl.IntVarP(&f.cfg.Passes, "passes", "p", f.cfg.Passes, "Number of aspect ratio refinement passes")
	fl.StringVarP(&f.cfg.Kernel, "kernel", "k", f.cfg.Kernel, "Resize kernel: bilinear, bicubic, lanczos, spline16, spline36, spline64")
	fl.StringVarP(&f.cfg.BicubicB, "bicubic-b", "b", f.cfg.BicubicB, "B parameter of bicubic resize, fractions like 1/3 allowed")
	fl.StringVarP(&f.cfg.BicubicC, "bicubic-c", "c", f.cfg.BicubicC, "C parameter of bicubic resize, fractions like 1/3 allowed")
	fl.IntVarP(&f.cfg.LanczosTaps, "lanczos-taps", "t", f.cfg.LanczosTaps, "Taps parameter of lanczos resize")
	fl.StringVarP(&f.cfg.Mode, "mode", "m", f.cfg.Mode, "Scan a predefined kernel set: "+strings.Join(kernel.Modes, ", "))
	fl.Float64Var(&f.cfg.AspectRatio, "aspect-ratio", f.cfg.AspectRatio, "Force aspect ratio, only useful for anamorphic input (0 uses the input's)")
	fl.IntVar(&f.cfg.MinHeight, "min-height", f.cfg.MinHeight, "Minimum height to consider (-1 for half the input height)")
	fl.IntVar(&f.cfg.MaxHeight, "max-height", f.cfg.MaxHeight, "Maximum height to consider (-1 for 9/10 of the input height)")
	fl.IntVar(&f.cfg.UpperBoundThreshold, "ub-thr", f.cfg.UpperBoundThreshold, "Distance to the max height that triggers the upper bound warning")
	fl.IntVar(&f.cfg.Steps, "stepping", f.cfg.Steps, "Height step size, e.g. 3 scans 500p, 503p, 506p ...")
	fl.BoolVar(&f.cfg.OutputMask, "output-mask", f.cfg.OutputMask, "Save detail masks and descaled frames as png")
	fl.StringVar(&f.cfg.PlotScaling, "plot-scaling", f.cfg.PlotScaling, "Scaling of the y axis: log or linear")
	fl.StringVar(&f.cfg.PlotFormat, "plot-format", f.cfg.PlotFormat, "Plot image formats, comma separated: "+strings.Join(config.PlotFormats, ", "))
	fl.BoolVar(&f.cfg.ShowPlotGUI, "show-plot-gui", f.cfg.ShowPlotGUI, "Show the plots in a window")
	fl.BoolVar(&f.cfg.NoSave, "no-save", f.cfg.NoSave, "Do not save any file, disables all output flags")
	fl.StringVar(&f.cfg.OutputDir, "output-dir", f.cfg.OutputDir, "Directory for results (\"results\" is always appended)")
	fl.BoolVar(&f.cfg.IsImage, "is-image", f.cfg.IsImage, "Force image input")
	fl.IntVar(&f.cfg.Workers, "workers", f.cfg.Workers, "Resampler worker pool size (0 for one per CPU)")
	fl.StringVar(&f.cfg.MetricsFile, "metrics-file", f.cfg.MetricsFile, "Write evaluation metrics in Prometheus text format to this file")
	fl.BoolVarP(&f.cfg.Verbose, "verbose", "v", f.cfg.Verbose, "Enable debug logging")
	fl.StringVar(&f.configPath, "config", "", "YAML file with default options")

	root.AddCommand(newVersionCmd())
	return root
}

// resolveConfig layers the command line over the config file over the defaults.
func resolveConfig(cmd *cobra.Command, f *cliFlags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(f.configPath); err != nil {
			return config.Config{}, err
		}
	}
	for _, b := range bindings {
		if cmd.Flags().Changed(b.name) {
			b.apply(&cfg, &f.cfg)
		}
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version and optionally check for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", config.AppName, config.AppVersion)
			if !check {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), updateCheckTimeout)
			defer cancel()
			res, err := util.CheckForUpdates(ctx, http.DefaultClient)
			if err != nil {
				return err
			}
			if res.UpdateAvailable {
				fmt.Fprintf(out, "A newer release is available: %s (%s)\n", res.LatestVersion, res.ReleaseURL)
			} else {
				fmt.Fprintf(out, "You are running the latest release (%s)\n", res.CurrentVersion)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Query GitHub for the latest release")
	return cmd
}
