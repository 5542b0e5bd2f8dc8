package transform

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a 4x4 homogeneous transform stored row-major. Points are row
// vectors multiplied on the left, so a 2D point (x, y) maps to
//
//	X = x*M11 + y*M21 + M41
//	Y = x*M12 + y*M22 + M42
//	W = x*M14 + y*M24 + M44
//
// and the result is (X/W, Y/W). Translation lives in M41/M42 and the
// perspective terms in M14/M24. Element Mrc is at index (r-1)*4 + (c-1).
type Matrix = f32.Mat4

// Identity is the multiplicative identity.
var Identity = Matrix{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// minW is the smallest homogeneous divisor accepted by ProjectiveTransform2D.
// Anything at or below it is on or behind the projection plane.
const minW = 1e-7

// IsIdentity reports whether m is exactly Identity.
func IsIdentity(m Matrix) bool { return m == Identity }

// IsZero reports whether every element of m is zero. The zero matrix is
// treated as "no transform" by Processor.Apply.
func IsZero(m Matrix) bool { return m == Matrix{} }

// Multiply returns a·b: the transform that applies a first and then b.
func Multiply(a, b Matrix) Matrix {
	var out Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[r*4+k] * b[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// Translation moves points by (dx, dy).
func Translation(dx, dy float32) Matrix {
	m := Identity
	m[12], m[13] = dx, dy
	return m
}

// Scale multiplies x by sx and y by sy about the origin.
func Scale(sx, sy float32) Matrix {
	m := Identity
	m[0], m[5] = sx, sy
	return m
}

// Rotation turns points clockwise on screen (y down) by radians about the
// origin.
func Rotation(radians float64) Matrix {
	sin, cos := math.Sincos(radians)
	m := Identity
	m[0], m[1] = float32(cos), float32(sin)
	m[4], m[5] = float32(-sin), float32(cos)
	return m
}

// Skew shears x by tan(radiansX) per unit of y and y by tan(radiansY) per
// unit of x.
func Skew(radiansX, radiansY float64) Matrix {
	m := Identity
	m[4] = float32(math.Tan(radiansX))
	m[1] = float32(math.Tan(radiansY))
	return m
}

// Invert returns the inverse of m in float64. Only singular matrices, and
// inverses with non-finite elements, are reported as ErrDegenerateTransform;
// a large but finite condition number is accepted.
func Invert(m Matrix) (f64.Mat4, error) {
	var data [16]float64
	for i, v := range m {
		data[i] = float64(v)
	}
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(4, 4, data[:])); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) || math.IsNaN(float64(cond)) {
			return f64.Mat4{}, fmt.Errorf("%w: %v", ErrDegenerateTransform, err)
		}
	}
	var out f64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			v := inv.At(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return f64.Mat4{}, fmt.Errorf("%w: inverse has non-finite element", ErrDegenerateTransform)
			}
			out[r*4+c] = v
		}
	}
	return out, nil
}

// ProjectiveTransform2D maps the integer point (x, y) through m. ok is false
// when the homogeneous W is not safely positive or the result is not finite;
// such points must not be sampled.
func ProjectiveTransform2D(x, y int, m f64.Mat4) (p f64.Vec2, ok bool) {
	return project(m, float64(x), float64(y))
}

func project(m f64.Mat4, x, y float64) (f64.Vec2, bool) {
	w := x*m[3] + y*m[7] + m[15]
	if !(w > minW) {
		return f64.Vec2{}, false
	}
	px := (x*m[0] + y*m[4] + m[12]) / w
	py := (x*m[1] + y*m[5] + m[13]) / w
	if math.IsNaN(px) || math.IsInf(px, 0) || math.IsNaN(py) || math.IsInf(py, 0) {
		return f64.Vec2{}, false
	}
	return f64.Vec2{px, py}, true
}

func widen(m Matrix) f64.Mat4 {
	var out f64.Mat4
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}

// MapPoint maps a point forward through m in float64.
func MapPoint(m Matrix, p f64.Vec2) (f64.Vec2, bool) {
	return project(widen(m), p[0], p[1])
}

// maxBoundsCoord caps transformed corner coordinates so that bounds and their
// areas stay representable as int.
const maxBoundsCoord = math.MaxInt32

// TransformedBounds returns the smallest integer rectangle containing the
// four corners of rect after mapping them through m. Corners beyond
// ±math.MaxInt32 are reported as ErrTargetSize.
func TransformedBounds(m Matrix, rect image.Rectangle) (image.Rectangle, error) {
	corners := [4]f64.Vec2{
		{float64(rect.Min.X), float64(rect.Min.Y)},
		{float64(rect.Max.X), float64(rect.Min.Y)},
		{float64(rect.Max.X), float64(rect.Max.Y)},
		{float64(rect.Min.X), float64(rect.Max.Y)},
	}
	wm := widen(m)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p, ok := project(wm, c[0], c[1])
		if !ok {
			return image.Rectangle{}, fmt.Errorf("%w: corner %v maps behind the projection plane", ErrDegenerateTransform, c)
		}
		if math.Abs(p[0]) > maxBoundsCoord || math.Abs(p[1]) > maxBoundsCoord {
			return image.Rectangle{}, fmt.Errorf("%w: corner %v maps to %v", ErrTargetSize, c, p)
		}
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	// round away tiny float32 noise before taking floor/ceil
	const eps = 1e-4
	return image.Rect(
		int(math.Floor(minX+eps)), int(math.Floor(minY+eps)),
		int(math.Ceil(maxX-eps)), int(math.Ceil(maxY-eps)),
	), nil
}

// FitToBounds appends a translation to m so that the transformed rect starts
// at (0, 0), and returns the adjusted matrix with the size of the result.
func FitToBounds(m Matrix, rect image.Rectangle) (Matrix, image.Point, error) {
	b, err := TransformedBounds(m, rect)
	if err != nil {
		return Matrix{}, image.Point{}, err
	}
	if b.Empty() {
		return Matrix{}, image.Point{}, fmt.Errorf("%w: %v transforms to an empty area", ErrDegenerateTransform, rect)
	}
	fitted := Multiply(m, Translation(float32(-b.Min.X), float32(-b.Min.Y)))
	return fitted, b.Size(), nil
}
