package native

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MeanCurve sums the curves elementwise in slice order and divides by divisor.
func MeanCurve(curves [][]float64, divisor float64) ([]float64, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("%w: no error curves to aggregate", ErrConfiguration)
	}
	if divisor <= 0 {
		return nil, fmt.Errorf("%w: divisor %v must be positive", ErrConfiguration, divisor)
	}
	n := len(curves[0])
	sum := make([]float64, n)
	for i, c := range curves {
		if len(c) != n {
			return nil, fmt.Errorf("error curve %d has %d values, want %d", i, len(c), n)
		}
		floats.Add(sum, c)
	}
	floats.Scale(1/divisor, sum)
	return sum, nil
}

// HeightCurve averages per-frame height curves over the number of frames.
func HeightCurve(curves [][]float64) ([]float64, error) {
	return MeanCurve(curves, float64(len(curves)))
}

// WidthCurve divides the summed per-frame width curves by the window's sample
// count and applies Smooth.
func WidthCurve(curves [][]float64, sampleCount int) ([]float64, error) {
	mean, err := MeanCurve(curves, float64(sampleCount))
	if err != nil {
		return nil, err
	}
	return Smooth(mean), nil
}

// Smooth divides every value by the mean of its two neighbours, treating
// values outside the curve as zero. A zero denominator yields +Inf.
func Smooth(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		var left, right float64
		if i > 0 {
			left = vals[i-1]
		}
		if i+1 < len(vals) {
			right = vals[i+1]
		}
		den := 0.5*left + 0.5*right
		if den == 0 {
			out[i] = math.Inf(1)
			continue
		}
		out[i] = v / den
	}
	return out
}
