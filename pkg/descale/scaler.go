package descale

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/dixieflatline76/getnative/pkg/kernel"
)

// taps is one row of the upscale matrix: contiguous weights starting at column first.
type taps struct {
	first   int
	weights []float64
}

// scaler maps between a low resolution of n samples and a high resolution of
// size samples along one axis. The upscale matrix A (size x n) is stored
// sparsely; the normal matrix AᵀA is banded and factorized once.
type scaler struct {
	n, size int
	rows    []taps
	chol    mat.BandCholesky
}

func newScaler(k kernel.Kernel, n, size int) (*scaler, error) {
	if n <= 0 || size <= 0 {
		return nil, fmt.Errorf("invalid scaler dimensions %d -> %d", n, size)
	}
	support := k.Support()
	scale := float64(size) / float64(n)
	rows := make([]taps, size)
	bandwidth := 0

	for i := 0; i < size; i++ {
		center := (float64(i)+0.5)/scale - 0.5
		lo := int(math.Floor(center-support)) + 1
		hi := int(math.Floor(center + support))

		first := clamp(lo, n)
		weights := make([]float64, clamp(hi, n)-first+1)
		sum := 0.0
		for j := lo; j <= hi; j++ {
			w := k.Weight(center - float64(j))
			weights[clamp(j, n)-first] += w
			sum += w
		}
		if sum == 0 {
			return nil, fmt.Errorf("kernel %s has zero weight at output %d", k, i)
		}
		for t := range weights {
			weights[t] /= sum
		}
		rows[i] = taps{first: first, weights: weights}
		if len(weights)-1 > bandwidth {
			bandwidth = len(weights) - 1
		}
	}

	ata := mat.NewSymBandDense(n, bandwidth, nil)
	for _, r := range rows {
		for a, wa := range r.weights {
			for b := a; b < len(r.weights); b++ {
				i, j := r.first+a, r.first+b
				ata.SetSymBand(i, j, ata.At(i, j)+wa*r.weights[b])
			}
		}
	}

	s := &scaler{n: n, size: size, rows: rows}
	if ok := s.chol.Factorize(ata); !ok {
		return nil, fmt.Errorf("descale %d -> %d with %s is singular", n, size, k)
	}
	return s, nil
}

func clamp(j, n int) int {
	if j < 0 {
		return 0
	}
	if j >= n {
		return n - 1
	}
	return j
}

// descale solves the least squares problem min |A x - y| for x.
func (s *scaler) descale(dst, y []float64) error {
	aty := make([]float64, s.n)
	for i, r := range s.rows {
		for t, w := range r.weights {
			aty[r.first+t] += w * y[i]
		}
	}
	x := mat.NewVecDense(s.n, dst)
	if err := s.chol.SolveVecTo(x, mat.NewVecDense(s.n, aty)); err != nil {
		return fmt.Errorf("solving descale %d -> %d: %w", s.n, s.size, err)
	}
	return nil
}

// upscale computes dst = A x.
func (s *scaler) upscale(dst, x []float64) {
	for i, r := range s.rows {
		v := 0.0
		for t, w := range r.weights {
			v += w * x[r.first+t]
		}
		dst[i] = v
	}
}
