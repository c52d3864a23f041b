package native

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeightCurve(t *testing.T) {
	curves := [][]float64{
		{1, 2, 3},
		{3, 2, 1},
		{2, 2, 2},
	}
	got, err := HeightCurve(curves)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 2, 2}, got, 1e-12)

	// inputs are not modified
	assert.Equal(t, []float64{1, 2, 3}, curves[0])
}

func TestHeightCurveOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	curves := make([][]float64, 7)
	for i := range curves {
		curves[i] = make([]float64, 50)
		for j := range curves[i] {
			curves[i][j] = rng.Float64()
		}
	}

	want, err := HeightCurve(curves)
	require.NoError(t, err)

	for range 10 {
		shuffled := make([][]float64, len(curves))
		copy(shuffled, curves)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := HeightCurve(shuffled)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-12)
	}
}

func TestMeanCurveErrors(t *testing.T) {
	_, err := MeanCurve(nil, 1)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = MeanCurve([][]float64{{1}}, 0)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = MeanCurve([][]float64{{1, 2}, {1}}, 2)
	assert.Error(t, err)
}

func TestSmooth(t *testing.T) {
	got := Smooth([]float64{2, 4, 2, 4})
	// 2/(0.5*0+0.5*4), 4/(0.5*2+0.5*2), 2/(0.5*4+0.5*4), 4/(0.5*2+0.5*0)
	assert.InDeltaSlice(t, []float64{1, 2, 0.5, 4}, got, 1e-12)

	got = Smooth([]float64{1, 0, 1, 0})
	assert.True(t, math.IsInf(got[0], 1))
	assert.InDelta(t, 0, got[1], 1e-12)
	assert.True(t, math.IsInf(got[2], 1))
	assert.InDelta(t, 0, got[3], 1e-12)
}

func TestWidthCurve(t *testing.T) {
	curves := [][]float64{
		{4, 4, 4},
		{4, 4, 4},
	}
	got, err := WidthCurve(curves, 2)
	require.NoError(t, err)
	// mean is 4 everywhere; edges see a zero neighbour
	assert.InDeltaSlice(t, []float64{2, 1, 2}, got, 1e-12)
}
