package stdimg

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/Fepozopo/tilt/pkg/config"
	"github.com/Fepozopo/tilt/pkg/frame"
	"github.com/Fepozopo/tilt/pkg/transform"
)

// sinc helper
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x = math.Pi * x
	return math.Sin(x) / x
}

// lanczosKernel returns lanczos weight for distance x with parameter a.
func lanczosKernel(x, a float64) float64 {
	x = math.Abs(x)
	if x < 1e-12 {
		return 1
	}
	if x >= a {
		return 0
	}
	return sinc(x) * sinc(x/a)
}

// Lanczos returns a windowed-sinc resampler with a lobes on each side.
func Lanczos(a int) transform.Resampler {
	fa := float64(a)
	return transform.NewResampler(fmt.Sprintf("lanczos%d", a), fa, func(x float64) float64 {
		return lanczosKernel(x, fa)
	})
}

// lanczos3 comes from the transform catalogue; these widen the choice.
var extraResamplers = map[string]transform.Resampler{
	"lanczos2": Lanczos(2),
	"lanczos4": Lanczos(4),
	"lanczos5": Lanczos(5),
}

// ResolveResampler accepts any name known to transform.LookupResampler plus
// lanczos2, lanczos4 and lanczos5.
func ResolveResampler(name string) (transform.Resampler, error) {
	if r, ok := extraResamplers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return r, nil
	}
	return transform.LookupResampler(name)
}

// ResamplerNames lists every name ResolveResampler accepts, aliases excluded.
func ResamplerNames() []string {
	names := transform.ResamplerNames()
	for n := range extraResamplers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// resampleNRGBA runs one projective transform over img and returns the
// result as a zero-origin *image.NRGBA.
func resampleNRGBA(cfg *config.Configuration, img image.Image, m transform.Matrix, r transform.Resampler, size image.Point) (*image.NRGBA, error) {
	src := frame.FromImage(img)
	dst, err := transform.Transform(cfg, src, m, r, size)
	if err != nil {
		return nil, err
	}
	return frame.ToNRGBA(dst), nil
}
