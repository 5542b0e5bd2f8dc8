package transform

import (
	"image"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/image/math/f64"

	"github.com/Fepozopo/tilt/pkg/frame"
	"github.com/Fepozopo/tilt/pkg/pixel"
)

var weightPool = sync.Pool{
	New: func() any { return new([]float64) },
}

// pooledBuffers counts weight buffers taken from weightPool and not yet
// returned. Tests use it to check that every KernelMap is released.
var pooledBuffers atomic.Int64

func getWeights(n int) *[]float64 {
	buf := weightPool.Get().(*[]float64)
	if cap(*buf) < n {
		*buf = make([]float64, n)
	}
	*buf = (*buf)[:n]
	pooledBuffers.Add(1)
	return buf
}

func putWeights(buf *[]float64) {
	pooledBuffers.Add(-1)
	weightPool.Put(buf)
}

// axis holds the sampling geometry along x or y.
type axis struct {
	scale  float64 // max(1, source length / destination length)
	radius float64 // ceil(scale * kernel support)
	length int     // window length, ceil(2*radius + 2)
	min    int     // first source index inside the source rectangle
	max    int     // one past the last source index
}

func newAxis(sourceMin, sourceMax, dest int, support float64) axis {
	scale := math.Max(1, float64(sourceMax-sourceMin)/float64(dest))
	radius := math.Ceil(scale * support)
	return axis{
		scale:  scale,
		radius: radius,
		length: int(math.Ceil(2*radius + 2)),
		min:    sourceMin,
		max:    sourceMax,
	}
}

// window returns the inclusive index range [p-radius, p+radius] clipped to
// the source rectangle. ok is false when nothing is left.
func (a axis) window(p float64) (first, last int, ok bool) {
	lo := math.Max(math.Ceil(p-a.radius), float64(a.min))
	hi := math.Min(math.Floor(p+a.radius), float64(a.max-1))
	if !(lo <= hi) {
		return 0, 0, false
	}
	return int(lo), int(hi), true
}

// fill writes normalized weights for [first, last] into w and reports
// whether any weight was non-zero.
func (a axis) fill(r Resampler, p float64, first, last int, w []float64) bool {
	w = w[:last-first+1]
	var sum float64
	for i := range w {
		v := r.Weight((float64(first+i) - p) / a.scale)
		w[i] = v
		sum += v
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return false
	}
	for i := range w {
		w[i] /= sum
	}
	return true
}

// KernelMap holds the per-row weight scratch space used by the convolution
// path. Row y of the destination owns YStart(y) and XStart(y) exclusively, so
// rows may be convolved concurrently as long as no two goroutines share a
// row. Release must be called once the map is no longer needed.
type KernelMap[P pixel.Pixel[P]] struct {
	sampler Resampler
	bounds  image.Rectangle
	x, y    axis
	rows    int
	xBuf    *[]float64
	yBuf    *[]float64
}

// NewKernelMap sizes a kernel map for sampling sourceRect into a destination
// of destSize with r.
func NewKernelMap[P pixel.Pixel[P]](sourceRect image.Rectangle, destSize image.Point, r Resampler) *KernelMap[P] {
	km := &KernelMap[P]{
		sampler: r,
		bounds:  sourceRect,
		x:       newAxis(sourceRect.Min.X, sourceRect.Max.X, destSize.X, r.Radius()),
		y:       newAxis(sourceRect.Min.Y, sourceRect.Max.Y, destSize.Y, r.Radius()),
		rows:    destSize.Y,
	}
	km.xBuf = getWeights(km.x.length * km.rows)
	km.yBuf = getWeights(km.y.length * km.rows)
	return km
}

// YStart returns the y weight scratch row owned by destination row y.
func (km *KernelMap[P]) YStart(y int) []float64 {
	n := km.y.length
	return (*km.yBuf)[y*n : (y+1)*n : (y+1)*n]
}

// XStart returns the x weight scratch row owned by destination row y.
func (km *KernelMap[P]) XStart(y int) []float64 {
	n := km.x.length
	return (*km.xBuf)[y*n : (y+1)*n : (y+1)*n]
}

// Convolve samples src around point and stores the result in
// target[column]. Only pixels inside the source rectangle are read. When the
// window is empty or all its weights are zero, target[column] is left as is.
func (km *KernelMap[P]) Convolve(point f64.Vec2, column int, yWeights, xWeights []float64, src *frame.Frame[P], target []pixel.Vector4) {
	left, right, ok := km.x.window(point[0])
	if !ok {
		return
	}
	top, bottom, ok := km.y.window(point[1])
	if !ok {
		return
	}
	if !km.x.fill(km.sampler, point[0], left, right, xWeights) ||
		!km.y.fill(km.sampler, point[1], top, bottom, yWeights) {
		return
	}

	var r, g, b, a float64
	for j := top; j <= bottom; j++ {
		wy := yWeights[j-top]
		if wy == 0 {
			continue
		}
		row := src.Row(j)
		for i := left; i <= right; i++ {
			w := wy * xWeights[i-left]
			if w == 0 {
				continue
			}
			v := row[i].ToVector4()
			pa := float64(v[3]) * w
			r += float64(v[0]) * pa
			g += float64(v[1]) * pa
			b += float64(v[2]) * pa
			a += pa
		}
	}

	if a <= 0 {
		// negative lobes can cancel out a thin opaque edge
		target[column] = pixel.Vector4{}
		return
	}
	out := pixel.Vector4{float32(r), float32(g), float32(b), float32(a)}
	pixel.Unpremultiply(&out)
	target[column] = out
}

// Release returns the weight buffers to the shared pool. It is safe to call
// more than once.
func (km *KernelMap[P]) Release() {
	if km.xBuf != nil {
		putWeights(km.xBuf)
		km.xBuf = nil
	}
	if km.yBuf != nil {
		putWeights(km.yBuf)
		km.yBuf = nil
	}
}
