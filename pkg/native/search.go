package native

import (
	"context"
	"fmt"
	"time"

	"github.com/dixieflatline76/getnative/pkg/kernel"
	"github.com/dixieflatline76/getnative/pkg/metrics"
	"github.com/dixieflatline76/getnative/pkg/source"
	"github.com/dixieflatline76/getnative/util/log"
	"github.com/google/uuid"
)

// Phase is a state of the search state machine.
type Phase int

const (
	PhaseHeightScan Phase = iota
	PhaseWidthRefine
	PhaseFinalConfirm
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseHeightScan:
		return "height_scan"
	case PhaseWidthRefine:
		return "width_refine"
	case PhaseFinalConfirm:
		return "final_confirm"
	case PhaseDone:
		return "done"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Progress describes one scheduler step.
type Progress struct {
	Phase Phase
	Pass  int
	Frame int // position in the sampled frame list
	Done  int
	Total int
}

// SearchState is the only state carried between passes.
type SearchState struct {
	AspectRatio float64
	Resolutions []int // accumulated peak indices
	Pass        int
}

// Result is the outcome of a single-kernel run.
type Result struct {
	RunID  string
	Source string
	Kernel kernel.Kernel

	Height, Width int
	Error         float64

	Overstretched  bool
	NearUpperBound bool

	AspectRatio        float64 // refined
	InitialAspectRatio float64

	Resolutions []int // physical heights of all accepted peaks
	Heights     []int
	Curve       []float64
	Ratios      []float64
	Frames      []int

	Options      Options // resolved
	SourceWidth  int
	SourceHeight int
	Elapsed      time.Duration
}

// WidthAt derives the even width paired with height h at the refined aspect
// ratio.
func (r *Result) WidthAt(h int) int {
	return widthFor(h, r.AspectRatio, r.SourceWidth, true)
}

// Searcher runs the multi-pass search against an Oracle.
type Searcher struct {
	oracle   Oracle
	metrics  *metrics.Metrics
	progress func(Progress)
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithMetrics records evaluations and passes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Searcher) { s.metrics = m }
}

// WithProgress reports every completed evaluation to fn. fn runs on the
// collecting goroutine and must not block for long.
func WithProgress(fn func(Progress)) Option {
	return func(s *Searcher) { s.progress = fn }
}

// NewSearcher creates a Searcher bound to oracle.
func NewSearcher(oracle Oracle, opts ...Option) *Searcher {
	s := &Searcher{oracle: oracle}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit is the number of evaluations kept in flight.
func (s *Searcher) Limit() int {
	return s.oracle.NumWorkers() + 2
}

// run bundles the per-run inputs that never change between phases.
type run struct {
	opts      Options
	planes    []*source.Plane
	srcWidth  int
	srcHeight int
}

// heightScan is the outcome of one HeightScan or FinalConfirm phase.
type heightScan struct {
	curve []float64
	peaks Peaks
}

// Run executes the configured passes and the final confirmation scan over src.
// Configuration and kernel problems are reported before any evaluation runs.
func (s *Searcher) Run(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	started := time.Now()
	if err := s.oracle.Supports(opts.Kernel); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Kernel, err)
	}

	resolved, err := opts.Resolve(src.Width(), src.Height(), src.NumFrames())
	if err != nil {
		return nil, err
	}
	frames, err := SelectFrames(resolved.FrameStart, resolved.FrameEnd, resolved.Samples)
	if err != nil {
		return nil, err
	}
	planes, err := source.LoadFrames(ctx, src, frames)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracle, err)
	}

	r := &run{opts: resolved, planes: planes, srcWidth: src.Width(), srcHeight: src.Height()}
	state := &SearchState{AspectRatio: resolved.AspectRatio}
	runID := uuid.NewString()
	log.Debugf("run %s: %s on %s, frames %v, heights %d..%d step %d", runID, resolved.Kernel, src.Name(), frames, resolved.MinHeight, resolved.MaxHeight, resolved.Step)

	var scan *heightScan
	phase := PhaseHeightScan
	if resolved.Passes == 0 {
		phase = PhaseFinalConfirm
	}
	for phase != PhaseDone {
		switch phase {
		case PhaseHeightScan:
			if scan, err = s.scanHeights(ctx, r, state, phase); err != nil {
				return nil, err
			}
			phase = PhaseWidthRefine

		case PhaseWidthRefine:
			ar, err := s.refineAspect(ctx, r, state, scan.peaks.Resolution())
			if err != nil {
				return nil, err
			}
			log.Debugf("run %s: pass %d aspect ratio %.6f -> %.6f", runID, state.Pass+1, state.AspectRatio, ar)
			state.AspectRatio = ar
			state.Pass++
			s.metrics.PassDone()
			if state.Pass < resolved.Passes {
				phase = PhaseHeightScan
			} else {
				phase = PhaseFinalConfirm
			}

		case PhaseFinalConfirm:
			if scan, err = s.scanHeights(ctx, r, state, phase); err != nil {
				return nil, err
			}
			phase = PhaseDone
		}
	}

	h := scan.peaks.Resolution()
	w := widthFor(h, state.AspectRatio, r.srcWidth, true)
	return &Result{
		RunID:              runID,
		Source:             src.Name(),
		Kernel:             resolved.Kernel,
		Height:             h,
		Width:              w,
		Error:              scan.peaks.Error,
		Overstretched:      float64(w) > float64(h)*(resolved.AspectRatio+aspectSlack),
		NearUpperBound:     h > resolved.MaxHeight-resolved.UpperBoundThreshold,
		AspectRatio:        state.AspectRatio,
		InitialAspectRatio: resolved.AspectRatio,
		Resolutions:        scan.peaks.Resolutions(),
		Heights:            resolved.Heights(),
		Curve:              scan.curve,
		Ratios:             scan.peaks.Ratios,
		Frames:             frames,
		Options:            resolved,
		SourceWidth:        r.srcWidth,
		SourceHeight:       r.srcHeight,
		Elapsed:            time.Since(started),
	}, nil
}

// scanHeights evaluates every height at the current aspect ratio on every
// sampled frame, averages the curves and merges the detected peaks into state.
func (s *Searcher) scanHeights(ctx context.Context, r *run, state *SearchState, phase Phase) (*heightScan, error) {
	cands := heightCandidates(r.opts, state.AspectRatio, r.srcWidth)
	curves := make([][]float64, len(r.planes))
	for i, plane := range r.planes {
		curve, err := s.evaluate(ctx, phase, state.Pass, i, plane, cands, r.opts.Kernel)
		if err != nil {
			return nil, err
		}
		curves[i] = curve
	}

	mean, err := HeightCurve(curves)
	if err != nil {
		return nil, err
	}
	peaks, err := DetectPeaks(mean, r.opts.MinHeight, r.opts.Step, state.Resolutions)
	if err != nil {
		return nil, err
	}
	state.Resolutions = peaks.Indices
	return &heightScan{curve: mean, peaks: peaks}, nil
}

// refineAspect minimizes the smoothed width curve at height h. An empty
// window keeps the current aspect ratio.
func (s *Searcher) refineAspect(ctx context.Context, r *run, state *SearchState, h int) (float64, error) {
	window := NewWidthWindow(h, state.AspectRatio, r.srcWidth, r.opts.Step)
	if !window.Valid() {
		log.Printf("Width window %d..%d at %dp is too small, keeping aspect ratio %.4f", window.Min, window.Max, h, state.AspectRatio)
		return state.AspectRatio, nil
	}

	cands := window.Candidates()
	curves := make([][]float64, len(r.planes))
	for i, plane := range r.planes {
		curve, err := s.evaluate(ctx, PhaseWidthRefine, state.Pass, i, plane, cands, r.opts.Kernel)
		if err != nil {
			return 0, err
		}
		curves[i] = curve
	}

	smoothed, err := WidthCurve(curves, window.SampleCount())
	if err != nil {
		return 0, err
	}
	return window.AspectRatio(window.BestWidth(smoothed)), nil
}

// evaluate runs one frame's candidate list through the scheduler.
func (s *Searcher) evaluate(ctx context.Context, phase Phase, pass, frame int, plane *source.Plane, cands []Candidate, k kernel.Kernel) ([]float64, error) {
	eval := func(ctx context.Context, i int) (float64, error) {
		c := cands[i]
		s.metrics.InflightInc()
		defer s.metrics.InflightDec()

		start := time.Now()
		v, err := s.oracle.Evaluate(ctx, plane, c.Height, c.Width, k)
		s.metrics.ObserveEvaluation(phase.String(), time.Since(start), err)
		if err != nil {
			return 0, fmt.Errorf("%w: %dx%d: %w", ErrOracle, c.Width, c.Height, err)
		}
		return v, nil
	}

	var progress func(done, total int)
	if s.progress != nil {
		progress = func(done, total int) {
			s.progress(Progress{Phase: phase, Pass: pass, Frame: frame, Done: done, Total: total})
		}
	}
	return Schedule(ctx, len(cands), s.Limit(), eval, progress)
}
