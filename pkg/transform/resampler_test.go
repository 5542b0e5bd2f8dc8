package transform

import (
	"errors"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupResampler(t *testing.T) {
	cases := map[string]string{
		"Lanczos":    "lanczos3",
		" bicubic ":  "catmullrom",
		"nearest":    "nearest",
		"NN":         "nearest",
		"linear":     "bilinear",
		"mitchell":   "mitchell",
		"catmullrom": "catmullrom",
	}
	for in, want := range cases {
		r, err := LookupResampler(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, r.Name())
	}

	_, err := LookupResampler("sharpest")
	assert.True(t, errors.Is(err, ErrUnknownResampler))

	for _, name := range ResamplerNames() {
		_, err := LookupResampler(name)
		assert.NoError(t, err, name)
	}
	assert.Len(t, Resamplers(), len(ResamplerNames()))
}

func TestResamplerKinds(t *testing.T) {
	assert.Equal(t, KindNearestNeighbor, NearestNeighbor.Kind())
	assert.Equal(t, KindNearestNeighbor, Resampler{}.Kind())
	assert.Equal(t, KindNearestNeighbor, FromImagingFilter("nn", imaging.NearestNeighbor).Kind())
	assert.Equal(t, KindConvolution, Lanczos3.Kind())
	assert.Equal(t, 3.0, Lanczos3.Radius())
	assert.Equal(t, "convolution", KindConvolution.String())
}

func TestDrawKernelIsSymmetricAndBounded(t *testing.T) {
	assert.InDelta(t, 1, Bilinear.Weight(0), 1e-12)
	assert.InDelta(t, 0.5, Bilinear.Weight(0.5), 1e-12)
	assert.InDelta(t, 0.5, Bilinear.Weight(-0.5), 1e-12)
	assert.Equal(t, 0.0, Bilinear.Weight(1))
	assert.Equal(t, 0.0, Bilinear.Weight(-7))

	assert.InDelta(t, 1, CatmullRom.Weight(0), 1e-12)
	assert.Equal(t, CatmullRom.Weight(1.3), CatmullRom.Weight(-1.3))
	assert.Equal(t, 0.0, CatmullRom.Weight(2))
}

func TestImagingKernelHasNegativeLobes(t *testing.T) {
	assert.Less(t, Lanczos3.Weight(1.5), 0.0)
	assert.Equal(t, 0.0, Lanczos3.Weight(3))
	assert.Equal(t, 1.0, NearestNeighbor.Weight(0))
	assert.Equal(t, 0.0, NearestNeighbor.Weight(0.2))
}

func TestNewResamplerWithoutWeightIsNearest(t *testing.T) {
	r := NewResampler("custom", 2, nil)
	assert.Equal(t, KindNearestNeighbor, r.Kind())
	r = NewResampler("tent", 1, func(x float64) float64 { return 1 })
	assert.Equal(t, KindConvolution, r.Kind())
	assert.Equal(t, "tent", r.String())
}
