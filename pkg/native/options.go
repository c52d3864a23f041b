package native

import (
	"context"
	"fmt"
	"math"

	"github.com/dixieflatline76/getnative/pkg/kernel"
	"github.com/dixieflatline76/getnative/pkg/source"
	"github.com/dixieflatline76/getnative/util/log"
)

// Defaults
const (
	DefaultSamples             = 5
	DefaultPasses              = 3
	DefaultStep                = 1
	DefaultUpperBoundThreshold = 10
)

// Oracle performs the actual resampling. Evaluate must be deterministic and
// safe for concurrent use; NumWorkers sizes the scheduler's in-flight cap.
type Oracle interface {
	Evaluate(ctx context.Context, frame *source.Plane, height, width int, k kernel.Kernel) (float64, error)
	NumWorkers() int
	Supports(k kernel.Kernel) error
}

// Options configure a single-kernel run. Negative or zero values marked as
// "unset" are derived from the source by Resolve.
type Options struct {
	Kernel              kernel.Kernel
	FrameStart          int
	FrameEnd            int // exclusive; < 0 means the source frame count
	Samples             int
	Passes              int
	AspectRatio         float64 // 0 means source width / height
	MinHeight           int     // < 0 means half the source height
	MaxHeight           int     // < 0 means 9/10 of the source height
	UpperBoundThreshold int
	Step                int
}

// DefaultOptions returns the stock configuration with a bicubic 1/3, 1/3 kernel.
func DefaultOptions() Options {
	return Options{
		Kernel:              kernel.NewBicubic(1.0/3.0, 1.0/3.0),
		FrameEnd:            -1,
		Samples:             DefaultSamples,
		Passes:              DefaultPasses,
		MinHeight:           -1,
		MaxHeight:           -1,
		UpperBoundThreshold: DefaultUpperBoundThreshold,
		Step:                DefaultStep,
	}
}

// Resolve fills unset values from the source geometry, applies the clamping
// policy and validates the result.
func (o Options) Resolve(srcWidth, srcHeight, numFrames int) (Options, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return o, fmt.Errorf("%w: source is %dx%d", ErrConfiguration, srcWidth, srcHeight)
	}
	if o.FrameEnd < 0 {
		o.FrameEnd = numFrames
	}
	if o.FrameEnd > numFrames {
		return o, fmt.Errorf("%w: end frame %d beyond source frame count %d", ErrConfiguration, o.FrameEnd, numFrames)
	}
	if o.FrameStart < 0 {
		return o, fmt.Errorf("%w: negative start frame %d", ErrConfiguration, o.FrameStart)
	}
	if o.Step < 1 {
		return o, fmt.Errorf("%w: step %d must be positive", ErrConfiguration, o.Step)
	}
	if o.Passes < 0 {
		return o, fmt.Errorf("%w: passes %d must not be negative", ErrConfiguration, o.Passes)
	}
	if o.AspectRatio < 0 || math.IsNaN(o.AspectRatio) || math.IsInf(o.AspectRatio, 0) {
		return o, fmt.Errorf("%w: invalid aspect ratio %v", ErrConfiguration, o.AspectRatio)
	}
	if o.AspectRatio == 0 {
		o.AspectRatio = float64(srcWidth) / float64(srcHeight)
	}
	if o.MinHeight < 0 {
		o.MinHeight = srcHeight / 2
	}
	if o.MaxHeight < 0 {
		o.MaxHeight = srcHeight * 9 / 10
	}

	switch {
	case o.MinHeight == 0:
		return o, fmt.Errorf("%w: min height must be positive", ErrConfiguration)
	case o.MinHeight >= srcHeight:
		return o, fmt.Errorf("%w: input image height %d is smaller than min height %d", ErrConfiguration, srcHeight, o.MinHeight)
	case o.MinHeight >= o.MaxHeight:
		return o, fmt.Errorf("%w: min height %d >= max height %d", ErrConfiguration, o.MinHeight, o.MaxHeight)
	case o.MaxHeight > srcHeight:
		log.Printf("The image height is %d, going higher is pointless. New max height %d", srcHeight, srcHeight)
		o.MaxHeight = srcHeight
	}
	return o, nil
}

// Heights returns the scanned heights min, min+step, ... <= max.
func (o Options) Heights() []int {
	var hs []int
	for h := o.MinHeight; h <= o.MaxHeight; h += o.Step {
		hs = append(hs, h)
	}
	return hs
}

// Candidate is one (height, width) hypothesis.
type Candidate struct {
	Height, Width int
}

// widthFor derives the width paired with height h at aspect ratio ar, rounded
// half to even, optionally forced even, and never wider than the source.
func widthFor(h int, ar float64, srcWidth int, onlyEven bool) int {
	w := int(math.RoundToEven(float64(h) * ar))
	if onlyEven {
		w = w / 2 * 2
	}
	return min(w, srcWidth)
}

// heightCandidates pairs every scanned height with its width at ar. Odd source
// widths allow odd candidate widths.
func heightCandidates(o Options, ar float64, srcWidth int) []Candidate {
	onlyEven := srcWidth%2 == 0
	heights := o.Heights()
	cands := make([]Candidate, len(heights))
	for i, h := range heights {
		cands[i] = Candidate{Height: h, Width: widthFor(h, ar, srcWidth, onlyEven)}
	}
	return cands
}
