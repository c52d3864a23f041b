// Package descale is the resampling engine: it inverts a kernel upscale to a
// candidate resolution, scales the result back up and measures what was lost.
package descale

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/dixieflatline76/getnative/pkg/kernel"
	"github.com/dixieflatline76/getnative/pkg/source"
	"github.com/dixieflatline76/getnative/util"
	"github.com/dixieflatline76/getnative/util/log"
)

const (
	// Threshold below which reconstruction differences count as zero.
	Threshold = 0.015
	// Border is the number of pixels excluded on each edge when measuring error.
	Border = 5
)

// ErrFrameTooSmall is returned when nothing remains after the border crop.
var ErrFrameTooSmall = errors.New("frame too small for error measurement")

// Engine evaluates candidate resolutions on a bounded pool of workers.
// It is safe for concurrent use.
type Engine struct {
	workers int
	sem     *semaphore.Weighted
	active  *util.Gauge

	flight singleflight.Group
	mu     sync.RWMutex
	cache  map[string]*scaler
}

// New creates an engine running at most workers evaluations at a time.
// workers <= 0 uses runtime.NumCPU().
func New(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		workers: workers,
		sem:     semaphore.NewWeighted(int64(workers)),
		active:  util.NewGauge(),
		cache:   make(map[string]*scaler),
	}
}

// NumWorkers is the size of the internal worker pool.
func (e *Engine) NumWorkers() int {
	return e.workers
}

// PeakActive is the largest number of evaluations that ran at the same time.
func (e *Engine) PeakActive() int {
	return e.active.Peak()
}

// Supports reports whether k can be used by this engine.
func (e *Engine) Supports(k kernel.Kernel) error {
	return k.Validate()
}

// Evaluate descales frame to width x height with k, upscales it back and
// returns the mean absolute reconstruction error over the frame interior.
func (e *Engine) Evaluate(ctx context.Context, frame *source.Plane, height, width int, k kernel.Kernel) (float64, error) {
	if frame.Width <= 2*Border || frame.Height <= 2*Border {
		return 0, fmt.Errorf("%w: %dx%d", ErrFrameTooSmall, frame.Width, frame.Height)
	}
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer e.sem.Release(1)
	e.active.Inc()
	defer e.active.Dec()

	_, recon, err := e.reconstruct(frame, height, width, k)
	if err != nil {
		return 0, err
	}
	return maskedError(frame, recon), nil
}

// Descale returns frame descaled to width x height.
func (e *Engine) Descale(ctx context.Context, frame *source.Plane, height, width int, k kernel.Kernel) (*source.Plane, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	low, _, err := e.reconstruct(frame, height, width, k)
	return low, err
}

// Reconstruct returns frame descaled to width x height and upscaled back to its own size.
func (e *Engine) Reconstruct(ctx context.Context, frame *source.Plane, height, width int, k kernel.Kernel) (*source.Plane, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	_, recon, err := e.reconstruct(frame, height, width, k)
	return recon, err
}

func (e *Engine) reconstruct(frame *source.Plane, height, width int, k kernel.Kernel) (low, recon *source.Plane, err error) {
	if height <= 0 || width <= 0 || height > frame.Height || width > frame.Width {
		return nil, nil, fmt.Errorf("candidate %dx%d outside frame %dx%d", width, height, frame.Width, frame.Height)
	}
	hs, err := e.scaler(k, width, frame.Width)
	if err != nil {
		return nil, nil, err
	}
	vs, err := e.scaler(k, height, frame.Height)
	if err != nil {
		return nil, nil, err
	}

	// Horizontal descale: H x W -> H x w.
	narrow := source.NewPlane(width, frame.Height)
	for y := 0; y < frame.Height; y++ {
		if err := hs.descale(narrow.Row(y), frame.Row(y)); err != nil {
			return nil, nil, err
		}
	}

	// Vertical descale and upscale, one column at a time.
	low = source.NewPlane(width, height)
	tall := source.NewPlane(width, frame.Height)
	col := make([]float64, frame.Height)
	lowCol := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < frame.Height; y++ {
			col[y] = narrow.At(x, y)
		}
		if err := vs.descale(lowCol, col); err != nil {
			return nil, nil, err
		}
		for y := 0; y < height; y++ {
			low.Set(x, y, lowCol[y])
		}
		vs.upscale(col, lowCol)
		for y := 0; y < frame.Height; y++ {
			tall.Set(x, y, col[y])
		}
	}

	// Horizontal upscale: H x w -> H x W.
	recon = source.NewPlane(frame.Width, frame.Height)
	for y := 0; y < frame.Height; y++ {
		hs.upscale(recon.Row(y), tall.Row(y))
	}
	return low, recon, nil
}

// scaler returns the cached scaler for (k, n, size), building it at most once.
func (e *Engine) scaler(k kernel.Kernel, n, size int) (*scaler, error) {
	key := fmt.Sprintf("%s:%d:%d", k.Key(), n, size)

	e.mu.RLock()
	s, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return s, nil
	}

	v, err, _ := e.flight.Do(key, func() (interface{}, error) {
		s, err := newScaler(k, n, size)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.cache[key] = s
		e.mu.Unlock()
		log.Debugf("Built scaler %s", key)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*scaler), nil
}

// Difference returns |a - b| with values at or below Threshold zeroed.
func Difference(a, b *source.Plane) *source.Plane {
	d := source.NewPlane(a.Width, a.Height)
	for i := range a.Pix {
		v := math.Abs(a.Pix[i] - b.Pix[i])
		if v > Threshold {
			d.Pix[i] = v
		}
	}
	return d
}

// maskedError is the mean thresholded difference inside the border.
func maskedError(src, recon *source.Plane) float64 {
	sum := 0.0
	for y := Border; y < src.Height-Border; y++ {
		for x := Border; x < src.Width-Border; x++ {
			v := math.Abs(src.At(x, y) - recon.At(x, y))
			if v > Threshold {
				sum += v
			}
		}
	}
	count := (src.Width - 2*Border) * (src.Height - 2*Border)
	return sum / float64(count)
}
