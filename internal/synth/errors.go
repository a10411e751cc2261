package synth

import "errors"

// Input validation errors. All of them are detected before any random draw
// or grid allocation happens, so a failed call does no work at all.
var (
	// ErrInvalidSquareSize means the square size cannot be reduced to 1 by
	// repeated halving (it is not a positive power of two).
	ErrInvalidSquareSize = errors.New("square size must be a positive power of two")

	// ErrInvalidNumSquares means fewer than one square was requested along
	// one of the axes.
	ErrInvalidNumSquares = errors.New("number of squares must be at least 1 on each axis")

	// ErrShapeMismatch means an array-valued parameter does not match the
	// output grid shape.
	ErrShapeMismatch = errors.New("parameter shape does not match grid shape")
)
