package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Kind selects the sampling path used by Processor.Apply.
type Kind int

const (
	// KindNearestNeighbor copies the closest source pixel without blending.
	KindNearestNeighbor Kind = iota
	// KindConvolution blends a window of source pixels with a weight function.
	KindConvolution
)

func (k Kind) String() string {
	switch k {
	case KindNearestNeighbor:
		return "nearest"
	case KindConvolution:
		return "convolution"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Resampler describes how source pixels are combined. The zero value is a
// nearest-neighbour sampler.
type Resampler struct {
	name   string
	kind   Kind
	radius float64
	weight func(x float64) float64
}

// NewResampler returns a convolution resampler with the given support radius.
// weight is evaluated at signed distances in [-radius, radius] and should be
// zero outside that range.
func NewResampler(name string, radius float64, weight func(x float64) float64) Resampler {
	if radius <= 0 || weight == nil {
		return Resampler{name: name, kind: KindNearestNeighbor}
	}
	return Resampler{name: name, kind: KindConvolution, radius: radius, weight: weight}
}

// FromImagingFilter adapts an imaging.ResampleFilter. Filters with zero
// support become nearest-neighbour samplers.
func FromImagingFilter(name string, f imaging.ResampleFilter) Resampler {
	return NewResampler(name, f.Support, f.Kernel)
}

// FromDrawKernel adapts an x/image/draw kernel, which is only defined for
// t in [0, Support).
func FromDrawKernel(name string, k *draw.Kernel) Resampler {
	support := k.Support
	return NewResampler(name, support, func(x float64) float64 {
		x = math.Abs(x)
		if x >= support {
			return 0
		}
		return k.At(x)
	})
}

func (r Resampler) Name() string {
	if r.name == "" {
		return "nearest"
	}
	return r.name
}

func (r Resampler) Kind() Kind { return r.kind }

// Radius is the kernel support in source pixels at unit scale.
func (r Resampler) Radius() float64 { return r.radius }

// Weight evaluates the kernel at x. Nearest-neighbour samplers return 1 at
// the origin and 0 elsewhere.
func (r Resampler) Weight(x float64) float64 {
	if r.weight == nil {
		if x == 0 {
			return 1
		}
		return 0
	}
	return r.weight(x)
}

func (r Resampler) String() string { return r.Name() }

// Built-in resamplers.
var (
	NearestNeighbor   = Resampler{name: "nearest", kind: KindNearestNeighbor}
	Box               = FromImagingFilter("box", imaging.Box)
	Bilinear          = FromDrawKernel("bilinear", draw.BiLinear)
	Hermite           = FromImagingFilter("hermite", imaging.Hermite)
	CatmullRom        = FromDrawKernel("catmullrom", draw.CatmullRom)
	MitchellNetravali = FromImagingFilter("mitchell", imaging.MitchellNetravali)
	BSpline           = FromImagingFilter("bspline", imaging.BSpline)
	Gaussian          = FromImagingFilter("gaussian", imaging.Gaussian)
	Lanczos3          = FromImagingFilter("lanczos3", imaging.Lanczos)
	Welch             = FromImagingFilter("welch", imaging.Welch)
	Hann              = FromImagingFilter("hann", imaging.Hann)
	Blackman          = FromImagingFilter("blackman", imaging.Blackman)
)

var catalogue = []Resampler{
	NearestNeighbor, Box, Bilinear, Hermite, CatmullRom, MitchellNetravali,
	BSpline, Gaussian, Lanczos3, Welch, Hann, Blackman,
}

var aliases = map[string]string{
	"nn":       "nearest",
	"point":    "nearest",
	"linear":   "bilinear",
	"triangle": "bilinear",
	"bicubic":  "catmullrom",
	"lanczos":  "lanczos3",
}

// Resamplers returns the built-in resamplers in a stable order.
func Resamplers() []Resampler {
	out := make([]Resampler, len(catalogue))
	copy(out, catalogue)
	return out
}

// ResamplerNames lists the names accepted by LookupResampler, aliases
// excluded.
func ResamplerNames() []string {
	names := make([]string, len(catalogue))
	for i, r := range catalogue {
		names[i] = r.Name()
	}
	return names
}

// LookupResampler finds a built-in resampler by case-insensitive name.
func LookupResampler(name string) (Resampler, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[key]; ok {
		key = a
	}
	for _, r := range catalogue {
		if r.name == key {
			return r, nil
		}
	}
	return Resampler{}, fmt.Errorf("%w: %q", ErrUnknownResampler, name)
}
