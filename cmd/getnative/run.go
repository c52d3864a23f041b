package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dixieflatline76/getnative/config"
	"github.com/dixieflatline76/getnative/pkg/descale"
	"github.com/dixieflatline76/getnative/pkg/metrics"
	"github.com/dixieflatline76/getnative/pkg/native"
	"github.com/dixieflatline76/getnative/pkg/output"
	"github.com/dixieflatline76/getnative/pkg/source"
	"github.com/dixieflatline76/getnative/ui/plotview"
	"github.com/dixieflatline76/getnative/util/log"
)

// showPlots is swapped out in tests.
var showPlots = plotview.Show

// searchOptions maps the configuration onto the search options. Kernel is
// set per run by the batch.
func searchOptions(cfg config.Config) native.Options {
	return native.Options{
		FrameStart:          cfg.Start,
		FrameEnd:            cfg.End,
		Samples:             cfg.Samples,
		Passes:              cfg.Passes,
		AspectRatio:         cfg.AspectRatio,
		MinHeight:           cfg.MinHeight,
		MaxHeight:           cfg.MaxHeight,
		UpperBoundThreshold: cfg.UpperBoundThreshold,
		Step:                cfg.Steps,
	}
}

// runGetnative performs a full batch over input and prints the results to out.
// Progress goes to errOut.
func runGetnative(ctx context.Context, cfg config.Config, input string, out, errOut io.Writer) error {
	started := time.Now()
	log.SetDebug(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", native.ErrConfiguration, err)
	}
	kernels, err := cfg.Kernels()
	if err != nil {
		return err
	}
	formats, err := cfg.PlotFormats()
	if err != nil {
		return err
	}
	if cfg.Steps != 1 {
		log.Println(config.StepWarning)
	}

	src, err := source.Open(input, cfg.IsImage)
	if err != nil {
		if errors.Is(err, source.ErrNoDecoder) {
			return fmt.Errorf("%w: %w", native.ErrConfiguration, err)
		}
		return err
	}
	log.Debugf("input %s: %d frames of %dx%d", src.Name(), src.NumFrames(), src.Width(), src.Height())

	engine := descale.New(cfg.Workers)

	var writer *output.Writer
	if !cfg.NoSave {
		writer, err = output.New(cfg.OutputDir, engine, output.Options{
			PlotFormats: formats,
			LinearPlot:  cfg.PlotScaling == config.PlotScalingLinear,
			Masks:       cfg.OutputMask,
		})
		if err != nil {
			return err
		}
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}

	prog := newProgress(errOut)
	searcher := native.NewSearcher(engine, native.WithMetrics(m), native.WithProgress(prog.Update))

	var plots []plotview.Plot
	onResult := func(r *native.Result) error {
		prog.Finish()
		fmt.Fprintln(out, r.Summary())

		if writer != nil {
			var frame *source.Plane
			if cfg.OutputMask {
				planes, err := source.LoadFrames(ctx, src, r.Frames[:1])
				if err != nil {
					return err
				}
				frame = planes[0]
			}
			if _, err := writer.Write(ctx, r, frame); err != nil {
				return err
			}
			fmt.Fprintf(out, "Output Path: %s\n", writer.Dir())
		}

		if cfg.ShowPlotGUI {
			img, err := output.RenderPlot(r, cfg.PlotScaling == config.PlotScalingLinear)
			if err != nil {
				return err
			}
			plots = append(plots, plotview.Plot{Title: r.Kernel.String(), Image: img})
		}
		return nil
	}

	batch, err := searcher.RunBatch(ctx, src, searchOptions(cfg), kernels, onResult)
	prog.Finish()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, batch.Summary())

	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		return err
	}
	log.Debugf("peak concurrent evaluations: %d", engine.PeakActive())
	fmt.Fprintf(out, "done in %.2fs\n", time.Since(started).Seconds())

	showPlots(plots)
	return nil
}
