// Package frame provides a generic, row-addressable pixel buffer and its
// bridge to the standard library image types.
package frame

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Fepozopo/tilt/pkg/pixel"
)

// Frame is a width x height buffer of pixels stored row by row with no
// padding. The origin is always (0, 0).
type Frame[P any] struct {
	width  int
	height int
	pix    []P
}

// New allocates a zeroed frame. Non-positive dimensions yield an empty frame.
func New[P any](width, height int) *Frame[P] {
	if width <= 0 || height <= 0 {
		return &Frame[P]{}
	}
	return &Frame[P]{width: width, height: height, pix: make([]P, width*height)}
}

// Wrap builds a frame around an existing slice without copying.
func Wrap[P any](width, height int, pix []P) (*Frame[P], error) {
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, fmt.Errorf("frame: %d pixels do not fit %dx%d", len(pix), width, height)
	}
	return &Frame[P]{width: width, height: height, pix: pix}, nil
}

func (f *Frame[P]) Width() int  { return f.width }
func (f *Frame[P]) Height() int { return f.height }

// Size returns the frame dimensions as a point.
func (f *Frame[P]) Size() image.Point { return image.Pt(f.width, f.height) }

// Bounds returns the half-open rectangle covered by the frame.
func (f *Frame[P]) Bounds() image.Rectangle { return image.Rect(0, 0, f.width, f.height) }

// Pix returns the backing slice.
func (f *Frame[P]) Pix() []P { return f.pix }

// Row returns the pixels of row y. The slice aliases the frame.
func (f *Frame[P]) Row(y int) []P {
	start := y * f.width
	return f.pix[start : start+f.width : start+f.width]
}

// At returns the pixel at (x, y). Coordinates must be inside Bounds.
func (f *Frame[P]) At(x, y int) P {
	return f.pix[y*f.width+x]
}

// Set stores p at (x, y). Coordinates must be inside Bounds.
func (f *Frame[P]) Set(x, y int, p P) {
	f.pix[y*f.width+x] = p
}

// Fill sets every pixel to p.
func (f *Frame[P]) Fill(p P) {
	for i := range f.pix {
		f.pix[i] = p
	}
}

// Clone returns a deep copy of f.
func (f *Frame[P]) Clone() *Frame[P] {
	out := &Frame[P]{width: f.width, height: f.height, pix: make([]P, len(f.pix))}
	copy(out.pix, f.pix)
	return out
}

// CopyTo copies the area shared by f and dst, row by row.
func (f *Frame[P]) CopyTo(dst *Frame[P]) {
	if f.width == dst.width && f.height == dst.height {
		copy(dst.pix, f.pix)
		return
	}
	w := min(f.width, dst.width)
	h := min(f.height, dst.height)
	for y := 0; y < h; y++ {
		copy(dst.Row(y)[:w], f.Row(y)[:w])
	}
}

// Equal reports whether both frames have the same size and pixels.
func Equal[P comparable](a, b *Frame[P]) bool {
	if a.width != b.width || a.height != b.height {
		return false
	}
	for i := range a.pix {
		if a.pix[i] != b.pix[i] {
			return false
		}
	}
	return true
}

// FromImage converts any image.Image to an NRGBA32 frame. The image's
// Bounds().Min becomes the frame's (0, 0).
func FromImage(img image.Image) *Frame[pixel.NRGBA32] {
	if img == nil {
		return New[pixel.NRGBA32](0, 0)
	}
	// imaging.Clone always returns a zero-origin *image.NRGBA copy
	n := imaging.Clone(img)
	b := n.Bounds()
	f := New[pixel.NRGBA32](b.Dx(), b.Dy())
	for y := 0; y < f.height; y++ {
		src := n.Pix[y*n.Stride : y*n.Stride+f.width*4]
		row := f.Row(y)
		for x := range row {
			i := x * 4
			row[x] = pixel.NRGBA32{R: src[i+0], G: src[i+1], B: src[i+2], A: src[i+3]}
		}
	}
	return f
}

// ToNRGBA copies an NRGBA32 frame into a new *image.NRGBA.
func ToNRGBA(f *Frame[pixel.NRGBA32]) *image.NRGBA {
	out := image.NewNRGBA(f.Bounds())
	for y := 0; y < f.height; y++ {
		dst := out.Pix[y*out.Stride:]
		for x, p := range f.Row(y) {
			i := x * 4
			dst[i+0] = p.R
			dst[i+1] = p.G
			dst[i+2] = p.B
			dst[i+3] = p.A
		}
	}
	return out
}
