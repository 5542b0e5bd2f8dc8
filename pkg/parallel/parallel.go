// Package parallel splits a rectangle into disjoint row intervals and runs a
// callback for each interval on a bounded set of goroutines.
package parallel

import (
	"errors"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrWorkerPanic is returned when a row callback panics.
var ErrWorkerPanic = errors.New("parallel: row worker panicked")

// DefaultMinimumPixelsProcessedPerTask keeps small images on a single task.
const DefaultMinimumPixelsProcessedPerTask = 4096

// Settings controls how rows are spread across goroutines.
type Settings struct {
	// MaxDegreeOfParallelism caps both the number of intervals and the number
	// of goroutines running at once.
	MaxDegreeOfParallelism int
	// MinimumPixelsProcessedPerTask is the smallest amount of work worth a task.
	MinimumPixelsProcessedPerTask int
}

// DefaultSettings uses every available CPU.
func DefaultSettings() Settings {
	return Settings{
		MaxDegreeOfParallelism:        runtime.GOMAXPROCS(0),
		MinimumPixelsProcessedPerTask: DefaultMinimumPixelsProcessedPerTask,
	}
}

// Validate reports settings that cannot drive a partition.
func (s Settings) Validate() error {
	if s.MaxDegreeOfParallelism <= 0 {
		return fmt.Errorf("parallel: MaxDegreeOfParallelism must be positive, got %d", s.MaxDegreeOfParallelism)
	}
	if s.MinimumPixelsProcessedPerTask <= 0 {
		return fmt.Errorf("parallel: MinimumPixelsProcessedPerTask must be positive, got %d", s.MinimumPixelsProcessedPerTask)
	}
	return nil
}

// RowInterval is the half-open row range [Min, Max).
type RowInterval struct {
	Min, Max int
}

func (r RowInterval) Height() int { return r.Max - r.Min }

func (r RowInterval) String() string { return fmt.Sprintf("[%d,%d)", r.Min, r.Max) }

func divideCeil(a, b int) int {
	return (a + b - 1) / b
}

// Partition splits the rows of bounds into contiguous, non-overlapping
// intervals whose union is [bounds.Min.Y, bounds.Max.Y). Invalid settings
// fall back to a single interval.
func Partition(bounds image.Rectangle, s Settings) []RowInterval {
	if bounds.Empty() {
		return nil
	}
	height := bounds.Dy()
	if s.Validate() != nil {
		return []RowInterval{{bounds.Min.Y, bounds.Max.Y}}
	}
	maxSteps := divideCeil(bounds.Dx()*height, s.MinimumPixelsProcessedPerTask)
	steps := min(s.MaxDegreeOfParallelism, maxSteps, height)
	step := divideCeil(height, steps)

	out := make([]RowInterval, 0, steps)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		out = append(out, RowInterval{y, min(y+step, bounds.Max.Y)})
	}
	return out
}

// IterateRows calls fn once per interval of Partition(bounds, s). A single
// interval runs on the calling goroutine.
func IterateRows(bounds image.Rectangle, s Settings, fn func(rows RowInterval)) error {
	return run(bounds, s, func(rows RowInterval) { fn(rows) })
}

// IterateRowsWithTempBuffer is IterateRows with a private scratch slice of
// bounds.Dx() elements per interval. The buffer is reused for every row of
// the interval and never shared between goroutines.
func IterateRowsWithTempBuffer[T any](bounds image.Rectangle, s Settings, fn func(rows RowInterval, buf []T)) error {
	width := bounds.Dx()
	return run(bounds, s, func(rows RowInterval) {
		fn(rows, make([]T, width))
	})
}

func run(bounds image.Rectangle, s Settings, fn func(rows RowInterval)) error {
	intervals := Partition(bounds, s)
	if len(intervals) == 1 {
		return guard(intervals[0], fn)
	}
	var g errgroup.Group
	g.SetLimit(max(s.MaxDegreeOfParallelism, 1))
	for _, rows := range intervals {
		g.Go(func() error {
			return guard(rows, fn)
		})
	}
	return g.Wait()
}

func guard(rows RowInterval, fn func(rows RowInterval)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: rows %s: %v", ErrWorkerPanic, rows, r)
		}
	}()
	fn(rows)
	return nil
}
