package kernel

import "math"

func triangle(x float64) float64 {
	x = math.Abs(x)
	if x < 1 {
		return 1 - x
	}
	return 0
}

func bicubic(b, c float64) func(float64) float64 {
	p0 := (6 - 2*b) / 6
	p2 := (-18 + 12*b + 6*c) / 6
	p3 := (12 - 9*b - 6*c) / 6
	q0 := (8*b + 24*c) / 6
	q1 := (-12*b - 48*c) / 6
	q2 := (6*b + 30*c) / 6
	q3 := (-b - 6*c) / 6
	return func(x float64) float64 {
		x = math.Abs(x)
		switch {
		case x < 1:
			return p0 + x*x*(p2+x*p3)
		case x < 2:
			return q0 + x*(q1+x*(q2+x*q3))
		default:
			return 0
		}
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

func lanczos(taps int) func(float64) float64 {
	t := float64(taps)
	return func(x float64) float64 {
		x = math.Abs(x)
		if x < t {
			return sinc(x) * sinc(x/t)
		}
		return 0
	}
}

func spline16(x float64) float64 {
	x = math.Abs(x)
	switch {
	case x < 1:
		return ((x-9.0/5.0)*x-1.0/5.0)*x + 1
	case x < 2:
		x--
		return ((-1.0/3.0*x+4.0/5.0)*x - 7.0/15.0) * x
	default:
		return 0
	}
}

func spline36(x float64) float64 {
	x = math.Abs(x)
	switch {
	case x < 1:
		return ((13.0/11.0*x-453.0/209.0)*x-3.0/209.0)*x + 1
	case x < 2:
		x--
		return ((-6.0/11.0*x+270.0/209.0)*x - 156.0/209.0) * x
	case x < 3:
		x -= 2
		return ((1.0/11.0*x-45.0/209.0)*x + 26.0/209.0) * x
	default:
		return 0
	}
}

func spline64(x float64) float64 {
	x = math.Abs(x)
	switch {
	case x < 1:
		return ((49.0/41.0*x-6387.0/2911.0)*x-3.0/2911.0)*x + 1
	case x < 2:
		x--
		return ((-24.0/41.0*x+4032.0/2911.0)*x - 2328.0/2911.0) * x
	case x < 3:
		x -= 2
		return ((6.0/41.0*x-1008.0/2911.0)*x + 582.0/2911.0) * x
	case x < 4:
		x -= 3
		return ((-1.0/41.0*x+168.0/2911.0)*x - 97.0/2911.0) * x
	default:
		return 0
	}
}
