package transform

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// TaperSide is the edge of the image that is shrunk by a taper.
type TaperSide int

const (
	TaperLeft TaperSide = iota
	TaperTop
	TaperRight
	TaperBottom
)

// TaperCorner selects which end of the tapered edge stays in place.
type TaperCorner int

const (
	// TaperRightOrBottom keeps the top (or left) end and pulls the other one in.
	TaperRightOrBottom TaperCorner = iota
	// TaperLeftOrTop keeps the bottom (or right) end.
	TaperLeftOrTop
	// TaperBoth shrinks the edge symmetrically about its centre.
	TaperBoth
)

var taperSides = map[string]TaperSide{
	"left": TaperLeft, "top": TaperTop, "right": TaperRight, "bottom": TaperBottom,
}

var taperCorners = map[string]TaperCorner{
	"rightorbottom": TaperRightOrBottom, "leftortop": TaperLeftOrTop, "both": TaperBoth,
}

// ParseTaperSide accepts left, top, right or bottom.
func ParseTaperSide(s string) (TaperSide, error) {
	if v, ok := taperSides[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("transform: unknown taper side %q", s)
}

// ParseTaperCorner accepts rightorbottom, leftortop or both.
func ParseTaperCorner(s string) (TaperCorner, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	if v, ok := taperCorners[key]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("transform: unknown taper corner %q", s)
}

// TaperMatrix returns a matrix that shrinks one side of an image of the given
// size to fraction of its length, leaving the opposite side fixed.
func TaperMatrix(size image.Point, side TaperSide, corner TaperCorner, fraction float32) Matrix {
	m := Identity
	w, h := float32(size.X), float32(size.Y)
	f := fraction
	switch side {
	case TaperLeft:
		m[0], m[5] = f, f
		m[3] = (f - 1) / w
		switch corner {
		case TaperLeftOrTop:
			m[1] = h * m[3]
			m[13] = h * (1 - f)
		case TaperBoth:
			m[1] = h * 0.5 * m[3]
			m[13] = h * (1 - f) / 2
		}
	case TaperTop:
		m[0], m[5] = f, f
		m[7] = (f - 1) / h
		switch corner {
		case TaperLeftOrTop:
			m[4] = w * m[7]
			m[12] = w * (1 - f)
		case TaperBoth:
			m[4] = w * 0.5 * m[7]
			m[12] = w * (1 - f) / 2
		}
	case TaperRight:
		m[0] = 1 / f
		m[3] = (1 - f) / (w * f)
		switch corner {
		case TaperLeftOrTop:
			m[1] = h * m[3]
		case TaperBoth:
			m[1] = h * 0.5 * m[3]
		}
	case TaperBottom:
		m[5] = 1 / f
		m[7] = (1 - f) / (h * f)
		switch corner {
		case TaperLeftOrTop:
			m[4] = w * m[7]
		case TaperBoth:
			m[4] = w * 0.5 * m[7]
		}
	}
	return m
}

// about conjugates m so that it acts around the centre of size.
func about(size image.Point, m Matrix) Matrix {
	cx, cy := float32(size.X)/2, float32(size.Y)/2
	return Multiply(Multiply(Translation(-cx, -cy), m), Translation(cx, cy))
}

type matrixFunc func(size image.Point) Matrix

// Builder composes a projective transform from simple steps. Steps that
// depend on the image (rotation, skew and taper about the centre) are
// evaluated against the source rectangle passed to Build.
type Builder struct {
	steps []matrixFunc
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) append(f matrixFunc) *Builder {
	b.steps = append(b.steps, f)
	return b
}

func (b *Builder) prepend(f matrixFunc) *Builder {
	b.steps = append([]matrixFunc{f}, b.steps...)
	return b
}

func fixed(m Matrix) matrixFunc { return func(image.Point) Matrix { return m } }

func rotation(degrees float64) matrixFunc {
	return func(size image.Point) Matrix {
		return about(size, Rotation(degrees*math.Pi/180))
	}
}

func skew(degreesX, degreesY float64) matrixFunc {
	return func(size image.Point) Matrix {
		return about(size, Skew(degreesX*math.Pi/180, degreesY*math.Pi/180))
	}
}

func taper(side TaperSide, corner TaperCorner, fraction float32) matrixFunc {
	return func(size image.Point) Matrix {
		return TaperMatrix(size, side, corner, fraction)
	}
}

// Append* steps run after the existing ones and Prepend* steps before them,
// both still after the shift to the source rectangle's origin.

func (b *Builder) AppendMatrix(m Matrix) *Builder  { return b.append(fixed(m)) }
func (b *Builder) PrependMatrix(m Matrix) *Builder { return b.prepend(fixed(m)) }

func (b *Builder) AppendTranslation(dx, dy float32) *Builder {
	return b.append(fixed(Translation(dx, dy)))
}

func (b *Builder) PrependTranslation(dx, dy float32) *Builder {
	return b.prepend(fixed(Translation(dx, dy)))
}

func (b *Builder) AppendScale(sx, sy float32) *Builder  { return b.append(fixed(Scale(sx, sy))) }
func (b *Builder) PrependScale(sx, sy float32) *Builder { return b.prepend(fixed(Scale(sx, sy))) }

// AppendRotation rotates clockwise by degrees about the image centre.
func (b *Builder) AppendRotation(degrees float64) *Builder  { return b.append(rotation(degrees)) }
func (b *Builder) PrependRotation(degrees float64) *Builder { return b.prepend(rotation(degrees)) }

// AppendSkew shears about the image centre.
func (b *Builder) AppendSkew(degreesX, degreesY float64) *Builder {
	return b.append(skew(degreesX, degreesY))
}

func (b *Builder) PrependSkew(degreesX, degreesY float64) *Builder {
	return b.prepend(skew(degreesX, degreesY))
}

func (b *Builder) AppendTaper(side TaperSide, corner TaperCorner, fraction float32) *Builder {
	return b.append(taper(side, corner, fraction))
}

func (b *Builder) PrependTaper(side TaperSide, corner TaperCorner, fraction float32) *Builder {
	return b.prepend(taper(side, corner, fraction))
}

// Build returns the composed matrix for sourceRect. Coordinates are first
// made relative to sourceRect.Min, so the result maps the rectangle's top
// left corner through the steps as if it were the origin.
func (b *Builder) Build(sourceRect image.Rectangle) (Matrix, error) {
	if sourceRect.Empty() {
		return Matrix{}, fmt.Errorf("%w: %v", ErrSourceRectangle, sourceRect)
	}
	size := sourceRect.Size()
	m := Translation(float32(-sourceRect.Min.X), float32(-sourceRect.Min.Y))
	for _, step := range b.steps {
		m = Multiply(m, step(size))
	}
	for _, v := range m {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Matrix{}, fmt.Errorf("%w: non-finite element", ErrDegenerateTransform)
		}
	}
	return m, nil
}
