package kernel

import "fmt"

// Preset modes for scanning several kernels in one run.
const (
	ModeBilinear = "bilinear"
	ModeBicubic  = "bicubic"
	ModeBLBC     = "bl-bc"
	ModeAll      = "all"
)

// Modes lists the accepted preset names.
var Modes = []string{ModeBilinear, ModeBicubic, ModeBLBC, ModeAll}

// BicubicPresets are the commonly used bicubic shapes.
func BicubicPresets() []Kernel {
	return []Kernel{
		NewBicubic(1.0/3.0, 1.0/3.0),
		NewBicubic(0.5, 0),
		NewBicubic(0, 0.5),
		NewBicubic(0, 0.75),
		NewBicubic(1, 0),
		NewBicubic(0, 1),
		NewBicubic(0.2, 0.5),
		NewBicubic(0.5, 0.5),
	}
}

// LanczosPresets are lanczos with 2 to 5 taps.
func LanczosPresets() []Kernel {
	return []Kernel{NewLanczos(2), NewLanczos(3), NewLanczos(4), NewLanczos(5)}
}

// SplinePresets are the three spline kernels.
func SplinePresets() []Kernel {
	return []Kernel{NewSpline16(), NewSpline36(), NewSpline64()}
}

// Preset returns the kernels scanned by the named mode.
func Preset(mode string) ([]Kernel, error) {
	switch mode {
	case ModeBilinear:
		return []Kernel{NewBilinear()}, nil
	case ModeBicubic:
		return BicubicPresets(), nil
	case ModeBLBC:
		return append(BicubicPresets(), NewBilinear()), nil
	case ModeAll:
		all := []Kernel{NewBilinear()}
		all = append(all, BicubicPresets()...)
		all = append(all, LanczosPresets()...)
		return append(all, SplinePresets()...), nil
	default:
		return nil, fmt.Errorf("unknown mode %q, expected one of %v", mode, Modes)
	}
}
