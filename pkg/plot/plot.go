// Package plot renders error curves as raster images.
package plot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/floats"
)

// Default canvas size.
const (
	DefaultWidth  = 1200
	DefaultHeight = 600
)

const (
	marginLeft   = 80
	marginRight  = 24
	marginTop    = 36
	marginBottom = 44
	tickLen      = 5
	yTicks       = 6
)

var (
	background = color.NRGBA{0x1c, 0x1c, 0x1e, 0xff}
	axisColor  = color.NRGBA{0xb0, 0xb0, 0xb0, 0xff}
	gridColor  = color.NRGBA{0x3a, 0x3a, 0x3e, 0xff}
	curveColor = color.NRGBA{0x4f, 0xc3, 0xf7, 0xff}
	textColor  = color.NRGBA{0xe8, 0xe8, 0xe8, 0xff}
)

// ErrEmpty is returned when there is nothing to draw.
var ErrEmpty = errors.New("no data to plot")

// Options control the rendering.
type Options struct {
	Title  string
	Linear bool // linear y axis instead of log10
	Width  int
	Height int
	// TickEvery labels every n-th x value; 0 picks roughly ten labels.
	TickEvery int
}

// TickEvery returns the x label stride for a height scan, giving about ten
// labels over the range.
func TickEvery(minH, maxH, step int) int {
	if step < 1 {
		step = 1
	}
	n := (maxH - minH + 10*step - 1) / (10 * step)
	return max(n, 1)
}

// Render draws ys against xs.
func Render(xs []int, ys []float64, opts Options) (*image.NRGBA, error) {
	if len(xs) == 0 {
		return nil, ErrEmpty
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("plot: %d x values but %d y values", len(xs), len(ys))
	}
	for i, v := range ys {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("plot: value %d is %v", i, v)
		}
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Width <= marginLeft+marginRight || opts.Height <= marginTop+marginBottom {
		return nil, fmt.Errorf("plot: canvas %dx%d too small", opts.Width, opts.Height)
	}
	if opts.TickEvery <= 0 {
		opts.TickEvery = max((len(xs)+9)/10, 1)
	}

	ty := transform(ys, opts.Linear)
	lo, hi := floats.Min(ty), floats.Max(ty)
	if hi-lo < 1e-12 {
		lo, hi = lo-0.5, hi+0.5
	}

	img := imaging.New(opts.Width, opts.Height, background)
	area := image.Rect(marginLeft, marginTop, opts.Width-marginRight, opts.Height-marginBottom)

	px := func(i int) int {
		if len(xs) == 1 {
			return (area.Min.X + area.Max.X) / 2
		}
		return area.Min.X + i*(area.Dx()-1)/(len(xs)-1)
	}
	py := func(v float64) int {
		return area.Max.Y - 1 - int(math.Round((v-lo)/(hi-lo)*float64(area.Dy()-1)))
	}

	// y grid and labels
	for t := 0; t < yTicks; t++ {
		v := lo + (hi-lo)*float64(t)/float64(yTicks-1)
		y := py(v)
		hline(img, area.Min.X, area.Max.X-1, y, gridColor)
		hline(img, area.Min.X-tickLen, area.Min.X, y, axisColor)
		label := yLabel(v, opts.Linear)
		drawText(img, area.Min.X-tickLen-2-textWidth(label), y+4, label)
	}

	// x ticks and labels
	for i := 0; i < len(xs); i += opts.TickEvery {
		x := px(i)
		vline(img, x, area.Max.Y, area.Max.Y+tickLen, axisColor)
		label := strconv.Itoa(xs[i])
		drawText(img, x-textWidth(label)/2, area.Max.Y+tickLen+14, label)
	}

	// axes
	hline(img, area.Min.X, area.Max.X-1, area.Max.Y, axisColor)
	vline(img, area.Min.X-1, area.Min.Y, area.Max.Y, axisColor)

	// curve
	prevX, prevY := px(0), py(ty[0])
	img.SetNRGBA(prevX, prevY, curveColor)
	for i := 1; i < len(ty); i++ {
		x, y := px(i), py(ty[i])
		line(img, prevX, prevY, x, y, curveColor)
		prevX, prevY = x, y
	}

	if opts.Title != "" {
		drawText(img, (opts.Width-textWidth(opts.Title))/2, marginTop-14, opts.Title)
	}
	return img, nil
}

// transform maps ys onto the plotted scale. Log scale replaces values <= 0
// with the smallest positive value so a perfect match stays on the canvas.
func transform(ys []float64, linear bool) []float64 {
	out := make([]float64, len(ys))
	if linear {
		copy(out, ys)
		return out
	}
	floor := math.Inf(1)
	for _, v := range ys {
		if v > 0 && v < floor {
			floor = v
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1e-12
	}
	for i, v := range ys {
		out[i] = math.Log10(max(v, floor))
	}
	return out
}

func yLabel(v float64, linear bool) string {
	if !linear {
		v = math.Pow(10, v)
	}
	return strconv.FormatFloat(v, 'g', 3, 64)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

func drawText(img *image.NRGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func hline(img *image.NRGBA, x0, x1, y int, c color.NRGBA) {
	for x := x0; x <= x1; x++ {
		img.SetNRGBA(x, y, c)
	}
}

func vline(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	for y := y0; y <= y1; y++ {
		img.SetNRGBA(x, y, c)
	}
}

// line draws a segment with Bresenham's algorithm.
func line(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetNRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
