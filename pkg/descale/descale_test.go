package descale

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/getnative/pkg/kernel"
	"github.com/dixieflatline76/getnative/pkg/source"
)

func randomPlane(w, h int, seed int64) *source.Plane {
	r := rand.New(rand.NewSource(seed))
	p := source.NewPlane(w, h)
	for i := range p.Pix {
		p.Pix[i] = r.Float64()
	}
	return p
}

// upscalePlane applies the engine's own forward operator to build a frame with a known native size.
func upscalePlane(t *testing.T, k kernel.Kernel, low *source.Plane, width, height int) *source.Plane {
	t.Helper()
	hs, err := newScaler(k, low.Width, width)
	require.NoError(t, err)
	vs, err := newScaler(k, low.Height, height)
	require.NoError(t, err)

	wide := source.NewPlane(width, low.Height)
	for y := 0; y < low.Height; y++ {
		hs.upscale(wide.Row(y), low.Row(y))
	}
	out := source.NewPlane(width, height)
	col := make([]float64, low.Height)
	up := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < low.Height; y++ {
			col[y] = wide.At(x, y)
		}
		vs.upscale(up, col)
		for y := 0; y < height; y++ {
			out.Set(x, y, up[y])
		}
	}
	return out
}

func TestScalerRoundTrip(t *testing.T) {
	for _, k := range []kernel.Kernel{kernel.NewBilinear(), kernel.NewBicubic(1.0/3.0, 1.0/3.0), kernel.NewLanczos(3), kernel.NewSpline36()} {
		t.Run(k.String(), func(t *testing.T) {
			s, err := newScaler(k, 20, 33)
			require.NoError(t, err)

			x := randomPlane(20, 1, 7).Pix
			y := make([]float64, 33)
			s.upscale(y, x)

			got := make([]float64, 20)
			require.NoError(t, s.descale(got, y))
			assert.InDeltaSlice(t, x, got, 1e-8)
		})
	}
}

func TestScalerIdentity(t *testing.T) {
	s, err := newScaler(kernel.NewBilinear(), 12, 12)
	require.NoError(t, err)
	x := randomPlane(12, 1, 3).Pix
	y := make([]float64, 12)
	s.upscale(y, x)
	assert.InDeltaSlice(t, x, y, 1e-12)
}

func TestScalerRowsAreNormalized(t *testing.T) {
	s, err := newScaler(kernel.NewLanczos(4), 30, 71)
	require.NoError(t, err)
	for i, r := range s.rows {
		sum := 0.0
		for _, w := range r.weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "row %d", i)
		assert.GreaterOrEqual(t, r.first, 0)
		assert.LessOrEqual(t, r.first+len(r.weights), 30)
	}
}

func TestEvaluateFindsNativeResolution(t *testing.T) {
	k := kernel.NewBicubic(0, 0.5)
	frame := upscalePlane(t, k, randomPlane(30, 20, 42), 48, 32)
	e := New(2)
	ctx := context.Background()

	native, err := e.Evaluate(ctx, frame, 20, 30, k)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, native, 1e-9)

	off, err := e.Evaluate(ctx, frame, 23, 34, k)
	require.NoError(t, err)
	assert.Greater(t, off, 0.01)

	wrongKernel, err := e.Evaluate(ctx, frame, 20, 30, kernel.NewBilinear())
	require.NoError(t, err)
	assert.Greater(t, wrongKernel, native)
}

func TestDescaleAndReconstruct(t *testing.T) {
	k := kernel.NewSpline36()
	low := randomPlane(24, 16, 5)
	frame := upscalePlane(t, k, low, 36, 24)
	e := New(1)

	got, err := e.Descale(context.Background(), frame, 16, 24, k)
	require.NoError(t, err)
	assert.InDeltaSlice(t, low.Pix, got.Pix, 1e-8)

	recon, err := e.Reconstruct(context.Background(), frame, 16, 24, k)
	require.NoError(t, err)
	assert.InDeltaSlice(t, frame.Pix, recon.Pix, 1e-8)

	diff := Difference(frame, recon)
	for _, v := range diff.Pix {
		assert.Equal(t, 0.0, v)
	}
}

func TestEvaluateErrors(t *testing.T) {
	e := New(1)
	ctx := context.Background()
	k := kernel.NewBilinear()

	_, err := e.Evaluate(ctx, source.NewPlane(8, 40), 20, 4, k)
	assert.True(t, errors.Is(err, ErrFrameTooSmall))

	_, err = e.Evaluate(ctx, source.NewPlane(40, 40), 50, 40, k)
	assert.Error(t, err)

	assert.Error(t, e.Supports(kernel.Kernel{Family: kernel.Lanczos}))
	assert.NoError(t, e.Supports(k))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	// Fill the pool so Acquire has to observe the canceled context.
	require.NoError(t, e.sem.Acquire(ctx, 1))
	defer e.sem.Release(1)
	_, err = e.Evaluate(canceled, source.NewPlane(40, 40), 20, 20, k)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateRespectsWorkerLimit(t *testing.T) {
	k := kernel.NewBilinear()
	frame := randomPlane(40, 30, 9)
	e := New(2)
	assert.Equal(t, 2, e.NumWorkers())

	var wg sync.WaitGroup
	for h := 12; h < 30; h++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Evaluate(context.Background(), frame, h, 40, k)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, e.PeakActive(), 2)
	assert.GreaterOrEqual(t, e.PeakActive(), 1)
}

func TestScalerCacheIsShared(t *testing.T) {
	e := New(4)
	k := kernel.NewSpline16()
	a, err := e.scaler(k, 10, 20)
	require.NoError(t, err)
	b, err := e.scaler(k, 10, 20)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Len(t, e.cache, 1)
}
