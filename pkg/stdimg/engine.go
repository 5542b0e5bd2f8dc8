package stdimg

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/math/f64"

	"github.com/Fepozopo/tilt/pkg/config"
	"github.com/Fepozopo/tilt/pkg/transform"
)

// DefaultMaxOutputPixels bounds the canvas a fitted transform may allocate.
const DefaultMaxOutputPixels = 1 << 26

// ErrOutputTooLarge is returned when a transform would produce an image
// larger than Engine.MaxOutputPixels.
var ErrOutputTooLarge = errors.New("stdimg: output image too large")

// Engine applies the commands listed in Commands to image.Image values.
type Engine struct {
	cfg *config.Configuration

	// Resampler is used when a command's resampler argument is empty.
	Resampler transform.Resampler
	// MaxOutputPixels caps width*height of any result.
	MaxOutputPixels int
}

// NewEngine returns an engine using cfg for parallelism and logging. A nil
// cfg means config.Default().
func NewEngine(cfg *config.Configuration) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		cfg:             cfg,
		Resampler:       transform.CatmullRom,
		MaxOutputPixels: DefaultMaxOutputPixels,
	}
}

// Apply runs commandName on img and returns a new image. identify returns a
// nil image and no error; callers print the information themselves.
func (e *Engine) Apply(img image.Image, commandName string, args []string) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	e.cfg.Log().Debug("apply command", "command", commandName, "args", args)

	switch commandName {
	case "perspective":
		// perspective x0 y0 x1 y1 x2 y2 x3 y3 [resampler]
		if len(args) < 8 || len(args) > 9 {
			return nil, fmt.Errorf("perspective requires 8 args: x0 y0 x1 y1 x2 y2 x3 y3 [resampler]")
		}
		v, err := parseFloats(args[:8], "x0", "y0", "x1", "y1", "x2", "y2", "x3", "y3")
		if err != nil {
			return nil, err
		}
		r, err := e.resamplerArg(args, 8)
		if err != nil {
			return nil, err
		}
		w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
		from := [4]f64.Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}
		to := [4]f64.Vec2{{v[0], v[1]}, {v[2], v[3]}, {v[4], v[5]}, {v[6], v[7]}}
		m, err := transform.QuadrilateralMatrix(from, to)
		if err != nil {
			return nil, fmt.Errorf("perspective: %w", err)
		}
		return e.fitted(img, m, r)

	case "taper":
		// taper side [corner] fraction [resampler]
		if len(args) < 3 || len(args) > 4 {
			return nil, fmt.Errorf("taper requires 3 args: side corner fraction [resampler]")
		}
		side, err := transform.ParseTaperSide(args[0])
		if err != nil {
			return nil, err
		}
		corner := transform.TaperBoth
		if strings.TrimSpace(args[1]) != "" {
			if corner, err = transform.ParseTaperCorner(args[1]); err != nil {
				return nil, err
			}
		}
		fraction, err := strconv.ParseFloat(args[2], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid fraction: %w", err)
		}
		if fraction <= 0 {
			return nil, fmt.Errorf("invalid fraction: %v must be positive", fraction)
		}
		r, err := e.resamplerArg(args, 3)
		if err != nil {
			return nil, err
		}
		return e.built(img, transform.NewBuilder().AppendTaper(side, corner, float32(fraction)), r)

	case "rotate":
		if len(args) < 1 || len(args) > 2 {
			return nil, fmt.Errorf("rotate requires 1 arg: degrees [resampler]")
		}
		deg, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid degrees: %w", err)
		}
		r, err := e.resamplerArg(args, 1)
		if err != nil {
			return nil, err
		}
		return e.built(img, transform.NewBuilder().AppendRotation(deg), r)

	case "skew":
		if len(args) < 1 || len(args) > 3 {
			return nil, fmt.Errorf("skew requires 1 arg: degreesX [degreesY] [resampler]")
		}
		dx, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid degreesX: %w", err)
		}
		dy := 0.0
		if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
			if dy, err = strconv.ParseFloat(args[1], 64); err != nil {
				return nil, fmt.Errorf("invalid degreesY: %w", err)
			}
		}
		r, err := e.resamplerArg(args, 2)
		if err != nil {
			return nil, err
		}
		return e.built(img, transform.NewBuilder().AppendSkew(dx, dy), r)

	case "resize":
		if len(args) < 2 || len(args) > 3 {
			return nil, fmt.Errorf("resize requires 2 args: width height [resampler]")
		}
		w, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid width: %w", err)
		}
		h, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid height: %w", err)
		}
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("invalid size %dx%d", w, h)
		}
		r, err := e.resamplerArg(args, 2)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		// align pixel centres rather than pixel corners
		m := transform.NewBuilder().
			AppendTranslation(0.5, 0.5).
			AppendScale(float32(w)/float32(b.Dx()), float32(h)/float32(b.Dy())).
			AppendTranslation(-0.5, -0.5)
		return e.sized(img, m, r, image.Pt(w, h))

	case "matrix":
		if len(args) < 9 || len(args) > 10 {
			return nil, fmt.Errorf("matrix requires 9 args: m11 m12 m13 m21 m22 m23 m31 m32 m33 [resampler]")
		}
		v, err := parseFloats(args[:9], "m11", "m12", "m13", "m21", "m22", "m23", "m31", "m32", "m33")
		if err != nil {
			return nil, err
		}
		r, err := e.resamplerArg(args, 9)
		if err != nil {
			return nil, err
		}
		m := transform.Matrix{
			float32(v[0]), float32(v[1]), 0, float32(v[2]),
			float32(v[3]), float32(v[4]), 0, float32(v[5]),
			0, 0, 1, 0,
			float32(v[6]), float32(v[7]), 0, float32(v[8]),
		}
		return e.fitted(img, m, r)

	case "flip":
		return imaging.FlipV(img), nil

	case "flop":
		return imaging.FlipH(img), nil

	case "trim":
		fuzz := 0.0
		if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid fuzz: %w", err)
			}
			if f < 0 {
				return nil, fmt.Errorf("invalid fuzz: %v must not be negative", f)
			}
			fuzz = f
		}
		return Trim(img, fuzz), nil

	case "identify":
		return nil, nil

	case "strip":
		// metadata never survives decoding; a copy is all that is left to do
		return imaging.Clone(img), nil

	default:
		return nil, fmt.Errorf("unsupported command: %s", commandName)
	}
}

func (e *Engine) resamplerArg(args []string, i int) (transform.Resampler, error) {
	if i >= len(args) || strings.TrimSpace(args[i]) == "" {
		return e.Resampler, nil
	}
	return ResolveResampler(args[i])
}

func parseFloats(args []string, names ...string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", names[i], err)
		}
		out[i] = v
	}
	return out, nil
}

func (e *Engine) checkSize(size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("%w: %v", transform.ErrTargetSize, size)
	}
	// compare by division first so size.X*size.Y cannot overflow
	if e.MaxOutputPixels > 0 && (size.X > e.MaxOutputPixels/size.Y || size.X*size.Y > e.MaxOutputPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrOutputTooLarge, size.X, size.Y, e.MaxOutputPixels)
	}
	return nil
}

// built evaluates b against the image bounds and fits the result.
func (e *Engine) built(img image.Image, b *transform.Builder, r transform.Resampler) (image.Image, error) {
	m, err := b.Build(zeroOrigin(img))
	if err != nil {
		return nil, err
	}
	return e.fitted(img, m, r)
}

// fitted shifts m so the transformed image starts at the origin and sizes the
// canvas to its bounds.
func (e *Engine) fitted(img image.Image, m transform.Matrix, r transform.Resampler) (image.Image, error) {
	fm, size, err := transform.FitToBounds(m, zeroOrigin(img))
	if err != nil {
		return nil, err
	}
	return e.resample(img, fm, r, size)
}

func (e *Engine) sized(img image.Image, b *transform.Builder, r transform.Resampler, size image.Point) (image.Image, error) {
	m, err := b.Build(zeroOrigin(img))
	if err != nil {
		return nil, err
	}
	return e.resample(img, m, r, size)
}

func (e *Engine) resample(img image.Image, m transform.Matrix, r transform.Resampler, size image.Point) (image.Image, error) {
	if err := e.checkSize(size); err != nil {
		return nil, err
	}
	return resampleNRGBA(e.cfg, img, m, r, size)
}

func zeroOrigin(img image.Image) image.Rectangle {
	b := img.Bounds()
	return image.Rect(0, 0, b.Dx(), b.Dy())
}
