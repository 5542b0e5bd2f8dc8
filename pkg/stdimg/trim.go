package stdimg

import (
	"image"

	"github.com/disintegration/imaging"
)

// Trim crops away border rows and columns whose pixels lie within fuzz of the
// top-left pixel. Distance is Euclidean over straight-alpha RGBA on a 0..255
// scale, so the transparent margin a transform leaves around its output is
// removed with fuzz 0. An image that is uniform throughout is returned as a
// copy.
func Trim(src image.Image, fuzz float64) *image.NRGBA {
	img := imaging.Clone(src)
	b := img.Bounds()
	if b.Empty() {
		return img
	}
	ref := img.Pix[0:4]
	fuzzSq := fuzz * fuzz

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			var dsq float64
			for c := 0; c < 4; c++ {
				d := float64(row[x*4+c]) - float64(ref[c])
				dsq += d * d
			}
			if dsq <= fuzzSq {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return img
	}
	return imaging.Crop(img, image.Rect(minX, minY, maxX+1, maxY+1))
}
