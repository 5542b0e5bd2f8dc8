// Package pixel defines the pixel formats understood by tilt and their
// conversion to and from a normalized 4-component float representation.
//
// Every format converts to Vector4 with components (R, G, B, A) in [0, 1],
// non-premultiplied. Resampling code works only on Vector4 rows and converts
// back once per row, so precision is lost at most twice per pixel.
package pixel

import (
	"golang.org/x/image/math/f32"
)

// Vector4 is a normalized (R, G, B, A) value in [0, 1].
type Vector4 = f32.Vec4

// Pixel is the constraint satisfied by every pixel format. FromVector4 is
// called on the zero value and must not depend on the receiver.
type Pixel[P any] interface {
	ToVector4() Vector4
	FromVector4(v Vector4) P
}

// NRGBA32 is 8 bits per channel, non-premultiplied. Its layout matches
// color.NRGBA and the Pix slice of *image.NRGBA.
type NRGBA32 struct {
	R, G, B, A uint8
}

func (p NRGBA32) ToVector4() Vector4 {
	return Vector4{
		float32(p.R) / 255,
		float32(p.G) / 255,
		float32(p.B) / 255,
		float32(p.A) / 255,
	}
}

func (NRGBA32) FromVector4(v Vector4) NRGBA32 {
	return NRGBA32{to8(v[0]), to8(v[1]), to8(v[2]), to8(v[3])}
}

// NRGBA64 is 16 bits per channel, non-premultiplied.
type NRGBA64 struct {
	R, G, B, A uint16
}

func (p NRGBA64) ToVector4() Vector4 {
	return Vector4{
		float32(p.R) / 65535,
		float32(p.G) / 65535,
		float32(p.B) / 65535,
		float32(p.A) / 65535,
	}
}

func (NRGBA64) FromVector4(v Vector4) NRGBA64 {
	return NRGBA64{to16(v[0]), to16(v[1]), to16(v[2]), to16(v[3])}
}

// Gray8 is an 8-bit opaque luminance pixel.
type Gray8 struct {
	Y uint8
}

func (p Gray8) ToVector4() Vector4 {
	y := float32(p.Y) / 255
	return Vector4{y, y, y, 1}
}

// FromVector4 uses Rec. 709 luminance and ignores alpha.
func (Gray8) FromVector4(v Vector4) Gray8 {
	return Gray8{to8(0.2126*v[0] + 0.7152*v[1] + 0.0722*v[2])}
}

// RGBAVector stores the normalized representation directly.
type RGBAVector struct {
	R, G, B, A float32
}

func (p RGBAVector) ToVector4() Vector4 {
	return Vector4{p.R, p.G, p.B, p.A}
}

func (RGBAVector) FromVector4(v Vector4) RGBAVector {
	return RGBAVector{clamp01(v[0]), clamp01(v[1]), clamp01(v[2]), clamp01(v[3])}
}

func clamp01(v float32) float32 {
	// NaN fails both comparisons; map it to 0
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func to16(v float32) uint16 {
	return uint16(clamp01(v)*65535 + 0.5)
}
