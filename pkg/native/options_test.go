package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	o, err := DefaultOptions().Resolve(1920, 1080, 240)
	require.NoError(t, err)

	assert.Equal(t, 240, o.FrameEnd)
	assert.Equal(t, 540, o.MinHeight)
	assert.Equal(t, 972, o.MaxHeight)
	assert.InDelta(t, 16.0/9.0, o.AspectRatio, 1e-12)
	assert.Equal(t, DefaultPasses, o.Passes)
	assert.Equal(t, DefaultSamples, o.Samples)
}

func TestResolveClampsMaxHeight(t *testing.T) {
	o := DefaultOptions()
	o.MinHeight = 500
	o.MaxHeight = 2000

	got, err := o.Resolve(1920, 1080, 1)
	require.NoError(t, err)
	assert.Equal(t, 1080, got.MaxHeight)
	assert.Equal(t, 500, got.MinHeight)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"min height above source", func(o *Options) { o.MinHeight = 1000 }},
		{"min height equals max height", func(o *Options) { o.MinHeight = 600; o.MaxHeight = 600 }},
		{"min height above max height", func(o *Options) { o.MinHeight = 700; o.MaxHeight = 600 }},
		{"zero min height", func(o *Options) { o.MinHeight = 0 }},
		{"zero step", func(o *Options) { o.Step = 0 }},
		{"negative passes", func(o *Options) { o.Passes = -1 }},
		{"negative aspect ratio", func(o *Options) { o.AspectRatio = -1 }},
		{"end beyond frame count", func(o *Options) { o.FrameEnd = 11 }},
		{"negative start", func(o *Options) { o.FrameStart = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			_, err := o.Resolve(1422, 800, 10)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestHeights(t *testing.T) {
	o := Options{MinHeight: 500, MaxHeight: 510, Step: 3}
	assert.Equal(t, []int{500, 503, 506, 509}, o.Heights())
}

func TestWidthFor(t *testing.T) {
	tests := []struct {
		h        int
		ar       float64
		srcWidth int
		onlyEven bool
		want     int
	}{
		{720, 16.0 / 9.0, 1920, true, 1280},
		{719, 16.0 / 9.0, 1920, true, 1278}, // 1278.22
		{721, 16.0 / 9.0, 1920, true, 1282}, // 1281.78
		{10, 1.5, 101, true, 14},
		{10, 1.5, 101, false, 15},
		{5, 0.5, 100, false, 2}, // 2.5 rounds half to even
		{7, 0.5, 100, false, 4}, // 3.5 rounds half to even
		{1000, 2, 1920, true, 1920},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, widthFor(tt.h, tt.ar, tt.srcWidth, tt.onlyEven), "h=%d ar=%v", tt.h, tt.ar)
	}
}

func TestHeightCandidatesFollowSourceParity(t *testing.T) {
	o := Options{MinHeight: 9, MaxHeight: 11, Step: 1}

	even := heightCandidates(o, 1.5, 100)
	assert.Equal(t, []Candidate{{9, 14}, {10, 14}, {11, 16}}, even)

	odd := heightCandidates(o, 1.5, 101)
	assert.Equal(t, []Candidate{{9, 14}, {10, 15}, {11, 16}}, odd)
}
