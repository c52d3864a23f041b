package native

import (
	"context"
	"errors"
	"testing"

	"github.com/dixieflatline76/getnative/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatchSkipsUnsupportedKernels(t *testing.T) {
	oracle := newFakeOracle(80, 160)
	oracle.unsupported = kernel.Lanczos
	src := newTestSource(t, 200, 100, 1)

	kernels := []kernel.Kernel{kernel.NewLanczos(3), kernel.NewBilinear(), kernel.NewSpline36()}
	var seen []string
	b, err := NewSearcher(oracle).RunBatch(context.Background(), src, DefaultOptions(), kernels, func(r *Result) error {
		seen = append(seen, r.Kernel.String())
		return nil
	})
	require.NoError(t, err)

	require.Len(t, b.Outcomes, 3)
	assert.True(t, b.Outcomes[0].Skipped)
	assert.ErrorIs(t, b.Outcomes[0].Err, ErrUnsupportedKernel)
	assert.Nil(t, b.Outcomes[0].Result)
	assert.NotNil(t, b.Outcomes[1].Result)
	assert.NotNil(t, b.Outcomes[2].Result)
	assert.Equal(t, []string{"Bilinear", "Spline36"}, seen)

	require.True(t, b.Converged())
	assert.Equal(t, kernel.Bilinear, b.Best.Kernel.Family) // equal errors keep the first
	assert.Equal(t, "Native scaling best guess: Bilinear 160 x 80", b.Summary())
}

func TestRunBatchExcludesOverstretched(t *testing.T) {
	oracle := newFakeOracle(88, 180)
	src := newTestSource(t, 200, 100, 1)

	opts := DefaultOptions()
	opts.AspectRatio = 1.6
	b, err := NewSearcher(oracle).RunBatch(context.Background(), src, opts, []kernel.Kernel{kernel.NewBilinear()}, nil)
	require.NoError(t, err)

	require.Len(t, b.Outcomes, 1)
	assert.True(t, b.Outcomes[0].Result.Overstretched)
	assert.False(t, b.Converged())
	assert.Equal(t, "The estimation does not converge. Your input clip might be over-stretched.", b.Summary())
}

func TestRunBatchNearUpperBoundWarning(t *testing.T) {
	oracle := newFakeOracle(86, 172)
	src := newTestSource(t, 200, 100, 1)

	b, err := NewSearcher(oracle).RunBatch(context.Background(), src, DefaultOptions(), []kernel.Kernel{kernel.NewBilinear()}, nil)
	require.NoError(t, err)
	require.True(t, b.Converged())
	assert.True(t, b.Best.NearUpperBound)
	assert.Contains(t, b.Summary(), "Native scaling best guess: Bilinear 172 x 86")
	assert.Contains(t, b.Summary(), "close to the upper bound")
}

func TestRunBatchFatalErrors(t *testing.T) {
	src := newTestSource(t, 200, 100, 1)
	kernels := []kernel.Kernel{kernel.NewBilinear(), kernel.NewSpline16()}

	oracle := newFakeOracle(80, 160)
	oracle.failAt = 60
	_, err := NewSearcher(oracle).RunBatch(context.Background(), src, DefaultOptions(), kernels, nil)
	assert.ErrorIs(t, err, ErrOracle)

	opts := DefaultOptions()
	opts.MinHeight = 200
	_, err = NewSearcher(newFakeOracle(80, 160)).RunBatch(context.Background(), src, opts, kernels, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewSearcher(newFakeOracle(80, 160)).RunBatch(context.Background(), src, DefaultOptions(), nil, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	boom := errors.New("disk full")
	_, err = NewSearcher(newFakeOracle(80, 160)).RunBatch(context.Background(), src, DefaultOptions(), kernels, func(*Result) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
