package native

import (
	"fmt"
	"slices"
)

const (
	// MinSeparation is the smallest index distance between two accepted peaks.
	MinSeparation = 20

	maxPeaks            = 5
	peakThresholdFactor = 0.33
)

// Peaks is the outcome of ratio peak detection over one error curve.
type Peaks struct {
	Ratios  []float64
	Indices []int // accumulated over passes, discovery order
	Best    int   // index of the best of bests
	Error   float64
	Offset  int
	Step    int
}

// Resolution maps the best index to a physical height.
func (p Peaks) Resolution() int {
	return p.Best*p.Step + p.Offset
}

// Resolutions maps every accepted index to a physical height.
func (p Peaks) Resolutions() []int {
	res := make([]int, len(p.Indices))
	for i, idx := range p.Indices {
		res[i] = idx*p.Step + p.Offset
	}
	return res
}

// Ratios returns vals[i-1]/vals[i] for every i > 0; position 0 and any zero
// divisor give 0.
func Ratios(vals []float64) []float64 {
	ratios := make([]float64, len(vals))
	for i := 1; i < len(vals); i++ {
		if vals[i] != 0 {
			ratios[i] = vals[i-1] / vals[i]
		}
	}
	return ratios
}

// DetectPeaks finds up to five ratio peaks above a third of the largest drop,
// merges them into known (indices from earlier passes) while keeping peaks at
// least MinSeparation indices apart, and picks the index with the largest
// ratio from the accumulated set.
//
// A curve without any drop (every ratio <= 1) still yields an answer: the
// largest ratio is taken as the only peak.
func DetectPeaks(vals []float64, offset, step int, known []int) (Peaks, error) {
	if len(vals) == 0 {
		return Peaks{}, fmt.Errorf("%w: empty error curve", ErrNoCandidates)
	}
	ratios := Ratios(vals)

	sorted := slices.Clone(ratios)
	slices.SortFunc(sorted, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	threshold := (sorted[0] - 1) * peakThresholdFactor

	selected := sorted[:1]
	for i, r := range sorted[:min(maxPeaks, len(sorted))] {
		if r-1 <= threshold {
			break
		}
		selected = sorted[:i+1]
	}

	indices := slices.Clone(known)
	for _, r := range selected {
		current := slices.Index(ratios, r)
		if !withinSeparation(indices, current) {
			indices = append(indices, current)
		}
	}

	for _, idx := range indices {
		if idx < 0 || idx >= len(ratios) {
			return Peaks{}, fmt.Errorf("accumulated index %d outside curve of %d values", idx, len(ratios))
		}
	}

	best := indices[0]
	for _, idx := range indices[1:] {
		if ratios[idx] > ratios[best] {
			best = idx
		}
	}

	return Peaks{
		Ratios:  ratios,
		Indices: indices,
		Best:    best,
		Error:   vals[best],
		Offset:  offset,
		Step:    step,
	}, nil
}

func withinSeparation(indices []int, current int) bool {
	for _, idx := range indices {
		d := current - idx
		if d < 0 {
			d = -d
		}
		if d < MinSeparation {
			return true
		}
	}
	return false
}
