package source

import (
	"image"
	"image/color"
	"math"
)

// BT.709 luma coefficients.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// Plane is a single channel float image with samples nominally in [0, 1].
type Plane struct {
	Width, Height int
	Pix           []float64 // row major, len == Width*Height
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height int) *Plane {
	return &Plane{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// At returns the sample at column x, row y.
func (p *Plane) At(x, y int) float64 {
	return p.Pix[y*p.Width+x]
}

// Set stores v at column x, row y.
func (p *Plane) Set(x, y int, v float64) {
	p.Pix[y*p.Width+x] = v
}

// Row returns row y as a slice sharing the plane's storage.
func (p *Plane) Row(y int) []float64 {
	return p.Pix[y*p.Width : (y+1)*p.Width]
}

// Bounds returns the plane rectangle anchored at the origin.
func (p *Plane) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// FromImage extracts the luma plane of img. Gray images are taken as is,
// everything else is converted with BT.709 weights.
func FromImage(img image.Image) *Plane {
	b := img.Bounds()
	p := NewPlane(b.Dx(), b.Dy())
	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				p.Set(x, y, float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)/0xff)
			}
		}
	case *image.Gray16:
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				p.Set(x, y, float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y)/0xffff)
			}
		}
	default:
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				p.Set(x, y, (lumaR*float64(r)+lumaG*float64(g)+lumaB*float64(bl))/0xffff)
			}
		}
	}
	return p
}

// Image renders the plane as a 16-bit gray image, clamping to [0, 1].
func (p *Plane) Image() *image.Gray16 {
	img := image.NewGray16(p.Bounds())
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			v := math.Max(0, math.Min(1, p.At(x, y)))
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * 0xffff))})
		}
	}
	return img
}
