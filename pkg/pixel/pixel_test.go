package pixel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNRGBA32RoundTripIsExact(t *testing.T) {
	for v := 0; v < 256; v++ {
		p := NRGBA32{uint8(v), uint8(255 - v), uint8(v / 2), uint8(v)}
		got := NRGBA32{}.FromVector4(p.ToVector4())
		require.Equal(t, p, got, "value %d", v)
	}
}

func TestNRGBA64RoundTripIsExact(t *testing.T) {
	for _, v := range []uint16{0, 1, 255, 256, 32767, 65534, 65535} {
		p := NRGBA64{v, v, v, v}
		require.Equal(t, p, NRGBA64{}.FromVector4(p.ToVector4()))
	}
}

func TestGray8(t *testing.T) {
	g := Gray8{Y: 200}
	v := g.ToVector4()
	assert.InDelta(t, 200.0/255, v[0], 1e-6)
	assert.Equal(t, float32(1), v[3])
	assert.Equal(t, g, Gray8{}.FromVector4(v))
}

func TestFromVector4ClampsOutOfRange(t *testing.T) {
	nan := float32(math.NaN())
	cases := []struct {
		in   Vector4
		want NRGBA32
	}{
		{Vector4{-1, 2, 0.5, 1}, NRGBA32{0, 255, 128, 255}},
		{Vector4{nan, nan, nan, nan}, NRGBA32{}},
		{Vector4{float32(math.Inf(1)), 0, 0, 1}, NRGBA32{255, 0, 0, 255}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NRGBA32{}.FromVector4(c.in))
	}
	assert.Equal(t, RGBAVector{0, 1, 0.25, 1}, RGBAVector{}.FromVector4(Vector4{-3, 4, 0.25, 1}))
}

func TestRowConversion(t *testing.T) {
	row := []NRGBA32{{10, 20, 30, 255}, {0, 0, 0, 0}, {255, 128, 1, 64}}
	buf := make([]Vector4, 5)
	ToVector4(row, buf)
	buf[0][0] = 1.5 // out of range on purpose
	out := make([]NRGBA32, len(row))
	FromVector4Destructive(buf[:len(row)], out)
	assert.Equal(t, NRGBA32{255, 20, 30, 255}, out[0])
	assert.Equal(t, row[1:], out[1:])
	// destructive conversion leaves the clamped value behind
	assert.Equal(t, float32(1), buf[0][0])
}

func TestPremultiply(t *testing.T) {
	v := Vector4{1, 0.5, 0.25, 0.5}
	Premultiply(&v)
	assert.Equal(t, Vector4{0.5, 0.25, 0.125, 0.5}, v)
	Unpremultiply(&v)
	assert.Equal(t, Vector4{1, 0.5, 0.25, 0.5}, v)

	z := Vector4{0.3, 0.3, 0.3, 0}
	Unpremultiply(&z)
	assert.Equal(t, Vector4{}, z)
}
