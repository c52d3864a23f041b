// Package output writes the artifacts of a run: the text report, the error
// plot in one or more image formats and optional detail masks.
package output

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dixieflatline76/getnative/config"
	"github.com/dixieflatline76/getnative/pkg/descale"
	"github.com/dixieflatline76/getnative/pkg/kernel"
	"github.com/dixieflatline76/getnative/pkg/native"
	"github.com/dixieflatline76/getnative/pkg/plot"
	"github.com/dixieflatline76/getnative/pkg/source"
	"github.com/dixieflatline76/getnative/util/log"
)

const maskGain = 16

// Options select the artifacts.
type Options struct {
	PlotFormats []string
	LinearPlot  bool
	Masks       bool
}

// Writer saves artifacts into <base>/results.
type Writer struct {
	dir    string
	engine *descale.Engine
	opts   Options
}

// New checks that base (the working directory when empty) is writable and
// returns a Writer for its results directory. engine is only used for masks.
func New(base string, engine *descale.Engine, opts Options) (*Writer, error) {
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("%w: output dir %s: %v", native.ErrConfiguration, base, err)
	}
	if err := checkWritable(abs); err != nil {
		return nil, fmt.Errorf("%w: missing write permissions: %s: %v", native.ErrConfiguration, abs, err)
	}
	if len(opts.PlotFormats) == 0 {
		opts.PlotFormats = []string{"png"}
	}
	if opts.Masks && engine == nil {
		engine = descale.New(0)
	}
	return &Writer{dir: filepath.Join(abs, config.ResultsDirName), engine: engine, opts: opts}, nil
}

// Dir is the results directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Stem names every artifact of a run.
func Stem(r *native.Result) string {
	first, last := 0, 0
	if len(r.Frames) > 0 {
		first, last = r.Frames[0], r.Frames[len(r.Frames)-1]
	}
	return fmt.Sprintf("f_%d_%d_%d_%s_ar_%.2f_steps_%d",
		first, last, len(r.Frames),
		strings.ReplaceAll(r.Kernel.String(), " ", "_"),
		r.InitialAspectRatio, r.Options.Step)
}

// RenderPlot draws the error curve of r.
func RenderPlot(r *native.Result, linear bool) (*image.NRGBA, error) {
	return plot.Render(r.Heights, r.Curve, plot.Options{
		Title:     Stem(r),
		Linear:    linear,
		TickEvery: plot.TickEvery(r.Options.MinHeight, r.Options.MaxHeight, r.Options.Step),
	})
}

// Write saves the report, the plots and, when enabled, the masks of r.
// frame is the first sampled frame and is only needed for masks. It returns
// the written paths.
func (w *Writer) Write(ctx context.Context, r *native.Result, frame *source.Plane) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", w.dir, err)
	}
	stem := filepath.Join(w.dir, Stem(r))
	var written []string

	txt := stem + ".txt"
	if err := os.WriteFile(txt, []byte(r.Report()), 0o644); err != nil {
		return written, fmt.Errorf("writing report: %w", err)
	}
	written = append(written, txt)

	img, err := RenderPlot(r, w.opts.LinearPlot)
	if err != nil {
		return written, err
	}
	for _, f := range w.opts.PlotFormats {
		path := stem + "." + f
		if err := imaging.Save(img, path); err != nil {
			return written, fmt.Errorf("saving plot: %w", err)
		}
		written = append(written, path)
	}

	if w.opts.Masks {
		if frame == nil {
			log.Println("No source frame available, skipping masks")
			return written, nil
		}
		paths, err := w.writeMasks(ctx, r, frame, stem)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	log.Debugf("run %s: wrote %d files to %s", r.RunID, len(written), w.dir)
	return written, nil
}

// writeMasks saves the source frame and, for every detected resolution, the
// detail mask and the descaled frame.
func (w *Writer) writeMasks(ctx context.Context, r *native.Result, frame *source.Plane, stem string) ([]string, error) {
	var written []string
	src := stem + "_source0.png"
	if err := imaging.Save(frame.Image(), src); err != nil {
		return written, fmt.Errorf("saving source frame: %w", err)
	}
	written = append(written, src)

	up := kernel.NewSpline36().Filter()
	for _, h := range r.Resolutions {
		width := r.WidthAt(h)

		recon, err := w.engine.Reconstruct(ctx, frame, h, width, r.Kernel)
		if err != nil {
			return written, fmt.Errorf("mask for %dp: %w", h, err)
		}
		mask := imaging.Resize(DetailMask(frame, recon).Image(), width, h, up)
		path := fmt.Sprintf("%s_mask_%dp0.png", stem, h)
		if err := imaging.Save(mask, path); err != nil {
			return written, fmt.Errorf("saving mask: %w", err)
		}
		written = append(written, path)

		low, err := w.engine.Descale(ctx, frame, h, width, r.Kernel)
		if err != nil {
			return written, fmt.Errorf("descale for %dp: %w", h, err)
		}
		path = fmt.Sprintf("%s_%dp0.png", stem, h)
		if err := imaging.Save(low.Image(), path); err != nil {
			return written, fmt.Errorf("saving descaled frame: %w", err)
		}
		written = append(written, path)
	}
	return written, nil
}

// DetailMask amplifies the thresholded reconstruction difference and inflates
// it: every pixel becomes the mean of its eight neighbours when that is larger.
func DetailMask(src, recon *source.Plane) *source.Plane {
	d := descale.Difference(src, recon)
	for i := range d.Pix {
		d.Pix[i] *= maskGain
	}

	out := source.NewPlane(d.Width, d.Height)
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			sum, n := 0.0, 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					sum += d.At(clamp(x+dx, d.Width), clamp(y+dy, d.Height))
					n++
				}
			}
			out.Set(x, y, max(d.At(x, y), sum/float64(n)))
		}
	}
	return out
}

func clamp(v, n int) int {
	return min(max(v, 0), n-1)
}
