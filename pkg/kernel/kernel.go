// Package kernel defines the resampling filter families used to test candidate
// native resolutions.
package kernel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupported is returned when a kernel cannot be built or is not offered
// by the resampler.
var ErrUnsupported = errors.New("unsupported kernel")

// Family identifies a resampling filter family.
type Family int

// Filter families
const (
	Bilinear Family = iota
	Bicubic
	Lanczos
	Spline16
	Spline36
	Spline64
)

// MaxLanczosTaps is the largest tap count accepted for lanczos.
const MaxLanczosTaps = 16

var familyNames = map[Family]string{
	Bilinear: "bilinear",
	Bicubic:  "bicubic",
	Lanczos:  "lanczos",
	Spline16: "spline16",
	Spline36: "spline36",
	Spline64: "spline64",
}

// String returns the lower case family name.
func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// Kernel is one filter configuration. The weight function and support are
// resolved once at construction and shared by descaling and re-upscaling.
type Kernel struct {
	Family Family
	B, C   float64 // bicubic shape
	Taps   int     // lanczos

	support float64
	weight  func(float64) float64
}

// NewBilinear returns the bilinear (triangle) kernel.
func NewBilinear() Kernel {
	return Kernel{Family: Bilinear, support: 1, weight: triangle}
}

// NewBicubic returns a Mitchell-Netravali style bicubic kernel with shape b, c.
func NewBicubic(b, c float64) Kernel {
	return Kernel{Family: Bicubic, B: b, C: c, support: 2, weight: bicubic(b, c)}
}

// NewLanczos returns a lanczos kernel with the given number of taps.
func NewLanczos(taps int) Kernel {
	return Kernel{Family: Lanczos, Taps: taps, support: float64(taps), weight: lanczos(taps)}
}

// NewSpline16 returns the 2-tap spline kernel.
func NewSpline16() Kernel {
	return Kernel{Family: Spline16, support: 2, weight: spline16}
}

// NewSpline36 returns the 3-tap spline kernel.
func NewSpline36() Kernel {
	return Kernel{Family: Spline36, support: 3, weight: spline36}
}

// NewSpline64 returns the 4-tap spline kernel.
func NewSpline64() Kernel {
	return Kernel{Family: Spline64, support: 4, weight: spline64}
}

// New builds a kernel from its family name and parameters.
func New(name string, b, c float64, taps int) (Kernel, error) {
	var k Kernel
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bilinear":
		k = NewBilinear()
	case "bicubic":
		k = NewBicubic(b, c)
	case "lanczos":
		k = NewLanczos(taps)
	case "spline16":
		k = NewSpline16()
	case "spline36":
		k = NewSpline36()
	case "spline64":
		k = NewSpline64()
	default:
		return Kernel{}, fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	if err := k.Validate(); err != nil {
		return Kernel{}, err
	}
	return k, nil
}

// Validate checks that the kernel was constructed and its parameters are usable.
func (k Kernel) Validate() error {
	if k.weight == nil {
		return fmt.Errorf("%w: %s was not constructed", ErrUnsupported, k.Family)
	}
	switch k.Family {
	case Bicubic:
		if math.IsNaN(k.B) || math.IsInf(k.B, 0) || math.IsNaN(k.C) || math.IsInf(k.C, 0) {
			return fmt.Errorf("%w: bicubic b=%v c=%v", ErrUnsupported, k.B, k.C)
		}
	case Lanczos:
		if k.Taps < 1 || k.Taps > MaxLanczosTaps {
			return fmt.Errorf("%w: lanczos taps %d outside 1..%d", ErrUnsupported, k.Taps, MaxLanczosTaps)
		}
	}
	return nil
}

// Support is the kernel radius in source samples.
func (k Kernel) Support() float64 {
	return k.support
}

// Weight evaluates the kernel at distance x.
func (k Kernel) Weight(x float64) float64 {
	return k.weight(x)
}

// Filter exposes the kernel as an imaging resample filter.
func (k Kernel) Filter() imaging.ResampleFilter {
	return imaging.ResampleFilter{Support: k.support, Kernel: k.weight}
}

// Key identifies the kernel with full parameter precision.
func (k Kernel) Key() string {
	return fmt.Sprintf("%s/%g/%g/%d", k.Family, k.B, k.C, k.Taps)
}

// String returns the human readable description, e.g. "Bicubic b 0.33 c 0.33".
func (k Kernel) String() string {
	name := k.Family.String()
	name = strings.ToUpper(name[:1]) + name[1:]
	switch k.Family {
	case Bicubic:
		return fmt.Sprintf("%s b %.2f c %.2f", name, k.B, k.C)
	case Lanczos:
		return fmt.Sprintf("%s taps %d", name, k.Taps)
	default:
		return name
	}
}

// ParseFloat accepts plain numbers as well as fractions such as "1/3".
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing numerator of %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing denominator of %q: %w", s, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("parsing %q: division by zero", s)
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, err)
	}
	return v, nil
}
