package native

import "gonum.org/v1/gonum/floats"

// aspectSlack bounds the width window and the overstretch check.
const aspectSlack = 0.2

// WidthWindow is the range of widths tried while refining the aspect ratio.
type WidthWindow struct {
	Height   int
	Min, Max int
	Step     int
}

// NewWidthWindow spans widths within ±0.2 of the aspect ratio at height h,
// capped at 9/10 of the source width.
func NewWidthWindow(h int, ar float64, srcWidth, step int) WidthWindow {
	lo := int((ar - aspectSlack) * float64(h))
	hi := min(int(float64(srcWidth)*9/10), int((ar+aspectSlack)*float64(h)))
	return WidthWindow{Height: h, Min: lo, Max: hi, Step: step}
}

// SampleCount is the divisor used when aggregating width curves.
func (w WidthWindow) SampleCount() int {
	if w.Max < w.Min {
		return 0
	}
	return (w.Max - w.Min) / w.Step
}

// Valid reports whether the window can be scanned and aggregated.
func (w WidthWindow) Valid() bool {
	return w.Step > 0 && w.Min > 0 && w.SampleCount() > 0
}

// Widths lists Min, Min+Step, ... <= Max.
func (w WidthWindow) Widths() []int {
	var ws []int
	for x := w.Min; x <= w.Max; x += w.Step {
		ws = append(ws, x)
	}
	return ws
}

// Candidates pairs every width with the window height.
func (w WidthWindow) Candidates() []Candidate {
	ws := w.Widths()
	cands := make([]Candidate, len(ws))
	for i, x := range ws {
		cands[i] = Candidate{Height: w.Height, Width: x}
	}
	return cands
}

// BestWidth returns the width at the minimum of the smoothed curve. Ties
// resolve to the smallest width.
func (w WidthWindow) BestWidth(smoothed []float64) int {
	return floats.MinIdx(smoothed)*w.Step + w.Min
}

// AspectRatio is the refined ratio for the given width.
func (w WidthWindow) AspectRatio(width int) float64 {
	return float64(width) / float64(w.Height)
}
