package native

import "fmt"

// SelectFrames picks n frame indices from [start, end): the range is split
// into n+1 equal parts and the inner boundaries are taken, truncated to
// integers. When the range holds no more than n frames every frame is used.
func SelectFrames(start, end, n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample count %d must be positive", ErrConfiguration, n)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: start frame %d must be before end frame %d", ErrConfiguration, start, end)
	}

	span := end - start
	if span <= n {
		frames := make([]int, span)
		for i := range frames {
			frames[i] = start + i
		}
		return frames, nil
	}

	step := float64(span) / float64(n+1)
	frames := make([]int, n)
	for k := 1; k <= n; k++ {
		frames[k-1] = start + int(float64(k)*step)
	}
	return frames, nil
}
