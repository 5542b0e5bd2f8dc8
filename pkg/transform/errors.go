package transform

import "errors"

var (
	// ErrDegenerateTransform is returned when the matrix cannot be inverted,
	// or when a forward mapping sends a corner to infinity.
	ErrDegenerateTransform = errors.New("transform: matrix is degenerate")

	// ErrTargetSize is returned when the destination frame does not match the
	// requested target size, or the size is not positive.
	ErrTargetSize = errors.New("transform: destination does not match target size")

	// ErrSourceRectangle is returned for an empty source rectangle or one that
	// extends past the source frame.
	ErrSourceRectangle = errors.New("transform: invalid source rectangle")

	// ErrAliasedFrames is returned when source and destination share storage
	// on a path that reads the source while writing the destination.
	ErrAliasedFrames = errors.New("transform: source and destination alias")

	// ErrNilFrame is returned when a source or destination frame is nil.
	ErrNilFrame = errors.New("transform: nil frame")

	// ErrUnknownResampler is returned by LookupResampler.
	ErrUnknownResampler = errors.New("transform: unknown resampler")
)
