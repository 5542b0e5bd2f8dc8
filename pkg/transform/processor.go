// Package transform resamples an image through an arbitrary projective
// (homography) matrix. Each destination pixel is mapped back into the source
// through the inverse matrix and sampled there, either by copying the nearest
// pixel or by convolving a window of source pixels with a resampling kernel.
package transform

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/Fepozopo/tilt/pkg/config"
	"github.com/Fepozopo/tilt/pkg/frame"
	"github.com/Fepozopo/tilt/pkg/parallel"
	"github.com/Fepozopo/tilt/pkg/pixel"
)

// Processor applies one projective transform. It only stores its inputs and
// may be applied any number of times.
type Processor[P pixel.Pixel[P]] struct {
	targetSize image.Point
	matrix     Matrix
	resampler  Resampler
	sourceRect image.Rectangle
}

// NewProcessor records the parameters of a transform. sourceRect is the part
// of the source that may be read; targetSize is the destination size.
func NewProcessor[P pixel.Pixel[P]](targetSize image.Point, matrix Matrix, resampler Resampler, sourceRect image.Rectangle) *Processor[P] {
	return &Processor[P]{
		targetSize: targetSize,
		matrix:     matrix,
		resampler:  resampler,
		sourceRect: sourceRect,
	}
}

// TargetSize is the size Apply requires of its destination.
func (p *Processor[P]) TargetSize() image.Point { return p.targetSize }

// Matrix is the forward transform from source to destination space.
func (p *Processor[P]) Matrix() Matrix { return p.matrix }

// Resampler is the kernel used by Apply.
func (p *Processor[P]) Resampler() Resampler { return p.resampler }

// SourceRect bounds the source pixels Apply may read.
func (p *Processor[P]) SourceRect() image.Rectangle { return p.sourceRect }

// Apply fills dst by sampling src. On error dst is left untouched, except
// for errors returned by a panicking row worker.
//
// A zero or identity matrix copies src into dst. Otherwise destination
// pixels whose inverse-mapped point falls outside the source rectangle keep
// their current value.
func (p *Processor[P]) Apply(cfg *config.Configuration, src, dst *frame.Frame[P]) error {
	if src == nil || dst == nil {
		return ErrNilFrame
	}
	if p.targetSize.X <= 0 || p.targetSize.Y <= 0 || dst.Size() != p.targetSize {
		return fmt.Errorf("%w: want %v, got %v", ErrTargetSize, p.targetSize, dst.Size())
	}
	if p.sourceRect.Empty() || !p.sourceRect.In(src.Bounds()) {
		return fmt.Errorf("%w: %v within %v", ErrSourceRectangle, p.sourceRect, src.Bounds())
	}
	if cfg == nil {
		cfg = config.Default()
	}
	log := cfg.Log()

	if IsZero(p.matrix) || IsIdentity(p.matrix) {
		log.Debug("projective transform", "path", "copy", "target", p.targetSize)
		src.CopyTo(dst)
		return nil
	}

	inv, err := Invert(p.matrix)
	if err != nil {
		return err
	}
	if aliased(src, dst) {
		return ErrAliasedFrames
	}

	log.Debug("projective transform",
		"path", p.resampler.Kind().String(),
		"resampler", p.resampler.Name(),
		"source", p.sourceRect,
		"target", p.targetSize,
		"intervals", len(parallel.Partition(dst.Bounds(), cfg.Parallel)),
	)

	if p.resampler.Kind() == KindNearestNeighbor {
		return parallel.IterateRows(dst.Bounds(), cfg.Parallel, func(rows parallel.RowInterval) {
			p.nearestRows(rows, inv, src, dst)
		})
	}

	km := NewKernelMap[P](p.sourceRect, p.targetSize, p.resampler)
	defer km.Release()
	return parallel.IterateRowsWithTempBuffer(dst.Bounds(), cfg.Parallel, func(rows parallel.RowInterval, buf []pixel.Vector4) {
		p.convolveRows(rows, buf, inv, km, src, dst)
	})
}

func (p *Processor[P]) nearestRows(rows parallel.RowInterval, inv f64.Mat4, src, dst *frame.Frame[P]) {
	b := p.sourceRect
	for y := rows.Min; y < rows.Max; y++ {
		row := dst.Row(y)
		for x := range row {
			pt, ok := ProjectiveTransform2D(x, y, inv)
			if !ok {
				continue
			}
			sx, sy := math.RoundToEven(pt[0]), math.RoundToEven(pt[1])
			if sx < float64(b.Min.X) || sx >= float64(b.Max.X) ||
				sy < float64(b.Min.Y) || sy >= float64(b.Max.Y) {
				continue
			}
			row[x] = src.At(int(sx), int(sy))
		}
	}
}

func (p *Processor[P]) convolveRows(rows parallel.RowInterval, buf []pixel.Vector4, inv f64.Mat4, km *KernelMap[P], src, dst *frame.Frame[P]) {
	for y := rows.Min; y < rows.Max; y++ {
		row := dst.Row(y)
		pixel.ToVector4(row, buf)
		yw, xw := km.YStart(y), km.XStart(y)
		for x := range row {
			pt, ok := ProjectiveTransform2D(x, y, inv)
			if !ok {
				continue
			}
			km.Convolve(pt, x, yw, xw, src, buf)
		}
		pixel.FromVector4Destructive(buf, row)
	}
}

func aliased[P any](a, b *frame.Frame[P]) bool {
	if a == b {
		return true
	}
	pa, pb := a.Pix(), b.Pix()
	return len(pa) > 0 && len(pb) > 0 && &pa[0] == &pb[0]
}

// Transform resamples all of src through matrix into a new zeroed frame of
// targetSize.
func Transform[P pixel.Pixel[P]](cfg *config.Configuration, src *frame.Frame[P], matrix Matrix, resampler Resampler, targetSize image.Point) (*frame.Frame[P], error) {
	if src == nil {
		return nil, ErrNilFrame
	}
	if targetSize.X <= 0 || targetSize.Y <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrTargetSize, targetSize)
	}
	dst := frame.New[P](targetSize.X, targetSize.Y)
	if err := NewProcessor[P](targetSize, matrix, resampler, src.Bounds()).Apply(cfg, src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
