package kernel

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelString(t *testing.T) {
	tests := []struct {
		kernel   Kernel
		expected string
	}{
		{NewBilinear(), "Bilinear"},
		{NewBicubic(1.0/3.0, 1.0/3.0), "Bicubic b 0.33 c 0.33"},
		{NewBicubic(0, 0.5), "Bicubic b 0.00 c 0.50"},
		{NewLanczos(3), "Lanczos taps 3"},
		{NewSpline16(), "Spline16"},
		{NewSpline36(), "Spline36"},
		{NewSpline64(), "Spline64"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kernel.String())
		})
	}
}

func TestWeightsAreInterpolating(t *testing.T) {
	// Every kernel except smoothing bicubics is 1 at the origin and 0 at other integers.
	kernels := []Kernel{NewBilinear(), NewBicubic(0, 0.5), NewLanczos(3), NewSpline16(), NewSpline36(), NewSpline64()}
	for _, k := range kernels {
		t.Run(k.String(), func(t *testing.T) {
			assert.InDelta(t, 1.0, k.Weight(0), 1e-12)
			for i := 1; i <= int(k.Support()); i++ {
				assert.InDelta(t, 0.0, k.Weight(float64(i)), 1e-9, "x=%d", i)
				assert.InDelta(t, 0.0, k.Weight(float64(-i)), 1e-9, "x=-%d", i)
			}
			assert.Equal(t, 0.0, k.Weight(k.Support()+0.5))
		})
	}
}

func TestBicubicPartitionOfUnity(t *testing.T) {
	k := NewBicubic(1.0/3.0, 1.0/3.0)
	for _, off := range []float64{0, 0.25, 0.5, 0.8} {
		sum := 0.0
		for i := -2; i <= 2; i++ {
			sum += k.Weight(float64(i) + off)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "offset %v", off)
	}
}

func TestNew(t *testing.T) {
	k, err := New("Lanczos", 0, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, Lanczos, k.Family)
	assert.Equal(t, 4.0, k.Support())

	_, err = New("lanczos", 0, 0, 0)
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = New("bicubic", math.NaN(), 0, 0)
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = New("point", 0, 0, 0)
	assert.True(t, errors.Is(err, ErrUnsupported))

	assert.Error(t, Kernel{Family: Spline36}.Validate(), "zero value kernel must not validate")
}

func TestFilterMatchesWeight(t *testing.T) {
	k := NewSpline36()
	f := k.Filter()
	assert.Equal(t, 3.0, f.Support)
	assert.Equal(t, k.Weight(0.4), f.Kernel(0.4))
}

func TestKeyDistinguishesCloseParameters(t *testing.T) {
	a := NewBicubic(0.333, 0.333)
	b := NewBicubic(1.0/3.0, 1.0/3.0)
	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1/3", 1.0 / 3.0, false},
		{" 0.5 ", 0.5, false},
		{"16/9", 16.0 / 9.0, false},
		{"1/0", 0, true},
		{"abc", 0, true},
		{"x/2", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFloat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestPreset(t *testing.T) {
	tests := []struct {
		mode  string
		count int
		first string
		last  string
	}{
		{ModeBilinear, 1, "Bilinear", "Bilinear"},
		{ModeBicubic, 8, "Bicubic b 0.33 c 0.33", "Bicubic b 0.50 c 0.50"},
		{ModeBLBC, 9, "Bicubic b 0.33 c 0.33", "Bilinear"},
		{ModeAll, 16, "Bilinear", "Spline64"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			ks, err := Preset(tt.mode)
			require.NoError(t, err)
			require.Len(t, ks, tt.count)
			assert.Equal(t, tt.first, ks[0].String())
			assert.Equal(t, tt.last, ks[len(ks)-1].String())
			for _, k := range ks {
				assert.NoError(t, k.Validate())
			}
		})
	}

	_, err := Preset("nope")
	assert.Error(t, err)
}
