package transform

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// homography is a 3x3 row-major projective matrix using the same row-vector
// convention as Matrix: x' = (x*h11 + y*h21 + h31) / (x*h13 + y*h23 + h33).
type homography [9]float64

// then returns the transform that applies h first and then o.
func (h homography) then(o homography) homography {
	var out homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = h[r*3]*o[c] + h[r*3+1]*o[3+c] + h[r*3+2]*o[6+c]
		}
	}
	return out
}

// adjoint is the transpose of the cofactor matrix; it inverts h up to scale.
func (h homography) adjoint() homography {
	a11, a12, a13 := h[0], h[1], h[2]
	a21, a22, a23 := h[3], h[4], h[5]
	a31, a32, a33 := h[6], h[7], h[8]
	return homography{
		a22*a33 - a23*a32, a13*a32 - a12*a33, a12*a23 - a13*a22,
		a23*a31 - a21*a33, a11*a33 - a13*a31, a13*a21 - a11*a23,
		a21*a32 - a22*a31, a12*a31 - a11*a32, a11*a22 - a12*a21,
	}
}

// squareTo maps the unit square corners (0,0) (1,0) (1,1) (0,1) to q.
func squareTo(q [4]f64.Vec2) (homography, bool) {
	x0, y0 := q[0][0], q[0][1]
	x1, y1 := q[1][0], q[1][1]
	x2, y2 := q[2][0], q[2][1]
	x3, y3 := q[3][0], q[3][1]
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		return homography{
			x1 - x0, y1 - y0, 0,
			x2 - x1, y2 - y1, 0,
			x0, y0, 1,
		}, true
	}
	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	den := dx1*dy2 - dx2*dy1
	if den == 0 {
		return homography{}, false
	}
	a13 := (dx3*dy2 - dx2*dy3) / den
	a23 := (dx1*dy3 - dx3*dy1) / den
	return homography{
		x1 - x0 + a13*x1, y1 - y0 + a13*y1, a13,
		x3 - x0 + a23*x3, y3 - y0 + a23*y3, a23,
		x0, y0, 1,
	}, true
}

// embed lifts h into a Matrix that leaves z untouched.
func (h homography) embed() Matrix {
	return Matrix{
		float32(h[0]), float32(h[1]), 0, float32(h[2]),
		float32(h[3]), float32(h[4]), 0, float32(h[5]),
		0, 0, 1, 0,
		float32(h[6]), float32(h[7]), 0, float32(h[8]),
	}
}

// QuadrilateralMatrix returns the projective matrix sending the corners
// src[i] to dst[i]. Corners are given in order around the quadrilateral.
// Three collinear corners in either quad yield ErrDegenerateTransform.
func QuadrilateralMatrix(src, dst [4]f64.Vec2) (Matrix, error) {
	fromSquare, ok1 := squareTo(src)
	toQuad, ok2 := squareTo(dst)
	if !ok1 || !ok2 {
		return Matrix{}, fmt.Errorf("%w: collinear corners", ErrDegenerateTransform)
	}
	h := fromSquare.adjoint().then(toQuad)
	// scale so that W is 1 at the first source corner; the sign of W must be
	// positive over the quad for ProjectiveTransform2D to sample it
	if w := src[0][0]*h[2] + src[0][1]*h[5] + h[8]; w != 0 {
		for i := range h {
			h[i] /= w
		}
	}
	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Matrix{}, fmt.Errorf("%w: non-finite quad mapping", ErrDegenerateTransform)
		}
	}
	return h.embed(), nil
}
