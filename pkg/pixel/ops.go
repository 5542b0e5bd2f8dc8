package pixel

// ToVector4 converts src into dst. dst must be at least as long as src.
func ToVector4[P Pixel[P]](src []P, dst []Vector4) {
	dst = dst[:len(src)]
	for i, p := range src {
		dst[i] = p.ToVector4()
	}
}

// FromVector4Destructive converts src into dst. src is clamped in place and
// must not be reused by the caller afterwards.
func FromVector4Destructive[P Pixel[P]](src []Vector4, dst []P) {
	var zero P
	src = src[:len(dst)]
	for i := range src {
		v := &src[i]
		v[0], v[1], v[2], v[3] = clamp01(v[0]), clamp01(v[1]), clamp01(v[2]), clamp01(v[3])
		dst[i] = zero.FromVector4(*v)
	}
}

// Premultiply scales the colour channels of v by its alpha.
func Premultiply(v *Vector4) {
	a := v[3]
	v[0] *= a
	v[1] *= a
	v[2] *= a
}

// Unpremultiply reverses Premultiply. A fully transparent value stays zero.
func Unpremultiply(v *Vector4) {
	a := v[3]
	if a == 0 {
		v[0], v[1], v[2] = 0, 0, 0
		return
	}
	v[0] /= a
	v[1] /= a
	v[2] /= a
}
