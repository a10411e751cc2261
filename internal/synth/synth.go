// Package synth generates heightfields with the diamond-square algorithm.
//
// See https://en.wikipedia.org/wiki/Diamond-square_algorithm. The coarse
// lattice is seeded from an exponential distribution because real-world
// elevation is heavily skewed: most terrain sits near sea level, with
// occasional high peaks.
package synth

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
)

// Synthesize generates a heightfield of shape
// (numSquares[0]*squareSize+1, numSquares[1]*squareSize+1).
//
// squareSize must be a positive power of two and both numSquares entries
// must be at least 1. primaryScale controls the overall elevation magnitude
// and roughness the relative strength of the random displacement; either may
// vary across the grid. baseLevel is added to every corner. All validation
// happens before the first random draw, so a failed call consumes nothing
// from rng.
//
// The result is fully deterministic for a given seed and parameter set.
func Synthesize(rng *Source, squareSize int, numSquares [2]int, primaryScale, roughness Param, baseLevel float64) (grid.Field, error) {
	if squareSize < 1 || squareSize&(squareSize-1) != 0 {
		return grid.Field{}, fmt.Errorf("%w: got %d", ErrInvalidSquareSize, squareSize)
	}
	if numSquares[0] < 1 || numSquares[1] < 1 {
		return grid.Field{}, fmt.Errorf("%w: got %dx%d", ErrInvalidNumSquares, numSquares[0], numSquares[1])
	}

	rows := numSquares[0]*squareSize + 1
	cols := numSquares[1]*squareSize + 1

	if err := primaryScale.check(rows, cols); err != nil {
		return grid.Field{}, err
	}
	if err := roughness.check(rows, cols); err != nil {
		return grid.Field{}, err
	}

	primary := primaryScale.resolve(rows, cols)
	rough := roughness.resolve(rows, cols)

	h := grid.NewField(rows, cols)

	seedCorners(h, rng, primary, numSquares, squareSize, baseLevel)
	disp := displacementField(rng, primary, rough)

	// The interpolation distance starts at sqrt(2)*sz (the diagonal of one
	// square) and shrinks by a factor of sqrt(2) every half-step.
	currentScale := math.Sqrt2
	sz := squareSize
	nr, nc := numSquares[0], numSquares[1]

	for sz >= 2 {
		diamondStep(h, disp, nr, nc, sz, currentScale)

		nr, nc = nr*2, nc*2
		sz /= 2
		currentScale /= math.Sqrt2

		squareStep(h, disp, nr, nc, sz, currentScale)
		currentScale /= math.Sqrt2
	}

	return h, nil
}

// seedCorners fills the coarse lattice points (i*sz, j*sz) with exponential
// draws scaled by primaryScale sampled at the corner position, offset by
// baseLevel. These values are never touched again by later passes.
func seedCorners(h grid.Field, rng *Source, primary grid.Field, numSquares [2]int, sz int, baseLevel float64) {
	cornerScale := grid.NewField(numSquares[0]+1, numSquares[1]+1)
	for i := 0; i <= numSquares[0]; i++ {
		for j := 0; j <= numSquares[1]; j++ {
			cornerScale.Set(i, j, primary.At(i*sz, j*sz))
		}
	}

	corners := rng.Exponential(cornerScale)
	for i := 0; i <= numSquares[0]; i++ {
		for j := 0; j <= numSquares[1]; j++ {
			h.Set(i*sz, j*sz, baseLevel+corners.At(i, j))
		}
	}
}

// displacementField precomputes one normal draw per grid cell, scaled by
// primaryScale and roughness. The field is generated once and indexed at
// every refinement level rather than redrawn per level; redrawing would
// change the output for a given seed.
func displacementField(rng *Source, primary, rough grid.Field) grid.Field {
	disp := rng.Normal(primary.Rows, primary.Cols)
	for i := range disp.Data {
		disp.Data[i] *= primary.Data[i] * rough.Data[i]
	}
	return disp
}

// diamondStep fills the center of every square from the mean of its four
// corners plus scaled displacement. All writes at one level are disjoint
// from all reads.
func diamondStep(h, disp grid.Field, nr, nc, sz int, scale float64) {
	half := sz / 2
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			c := (h.At(i*sz, j*sz) +
				h.At(i*sz, (j+1)*sz) +
				h.At((i+1)*sz, (j+1)*sz) +
				h.At((i+1)*sz, j*sz)) / 4

			r, col := i*sz+half, j*sz+half
			h.Set(r, col, c+scale*disp.At(r, col))
		}
	}
}

// squareStep fills every not-yet-set lattice point at the current stride
// from the mean of its available axis neighbors plus scaled displacement.
// The unset points form a checkerboard: on even rows the odd columns, on
// odd rows the even columns. Neighbors outside the grid are skipped, so
// border points average 3 values and interior points 4.
func squareStep(h, disp grid.Field, nr, nc, sz int, scale float64) {
	for i := 0; i <= nr; i++ {
		jStart := (i + 1) % 2
		for j := jStart; j <= nc; j += 2 {
			sum := 0.0
			n := 0
			if i > 0 {
				sum += h.At((i-1)*sz, j*sz)
				n++
			}
			if i < nr {
				sum += h.At((i+1)*sz, j*sz)
				n++
			}
			if j > 0 {
				sum += h.At(i*sz, (j-1)*sz)
				n++
			}
			if j < nc {
				sum += h.At(i*sz, (j+1)*sz)
				n++
			}

			r, col := i*sz, j*sz
			h.Set(r, col, sum/float64(n)+scale*disp.At(r, col))
		}
	}
}
