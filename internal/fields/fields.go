// Package fields builds spatially varying parameter grids for terrain
// synthesis. A Perlin-modulated primary scale or roughness gives the output
// large-scale structure (mountain ranges, plains) instead of uniform
// statistics.
package fields

import (
	"fmt"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
	"github.com/aquilax/go-perlin"
)

// PerlinConfig controls a Perlin-noise parameter field.
type PerlinConfig struct {
	Seed int64

	// Alpha, Beta and Octaves are the go-perlin generator parameters.
	// The defaults (2, 2, 3) give good terrain-like noise.
	Alpha   float64
	Beta    float64
	Octaves int32

	// Frequency is the number of grid cells per noise unit; larger values
	// produce broader features.
	Frequency float64

	// Min and Max bound the output range the noise is mapped into.
	Min float64
	Max float64
}

// DefaultPerlinConfig returns a config producing broad features in
// [min, max].
func DefaultPerlinConfig(seed int64, min, max float64) PerlinConfig {
	return PerlinConfig{
		Seed:      seed,
		Alpha:     2,
		Beta:      2,
		Octaves:   3,
		Frequency: 64,
		Min:       min,
		Max:       max,
	}
}

// Perlin generates a rows x cols field of Perlin noise mapped into
// [cfg.Min, cfg.Max].
func Perlin(rows, cols int, cfg PerlinConfig) (grid.Field, error) {
	if rows < 1 || cols < 1 {
		return grid.Field{}, fmt.Errorf("field shape must be positive, got %dx%d", rows, cols)
	}
	if cfg.Frequency <= 0 {
		return grid.Field{}, fmt.Errorf("frequency must be positive, got %v", cfg.Frequency)
	}
	if cfg.Max < cfg.Min {
		return grid.Field{}, fmt.Errorf("invalid range [%v, %v]", cfg.Min, cfg.Max)
	}

	noise := perlin.NewPerlin(cfg.Alpha, cfg.Beta, cfg.Octaves, cfg.Seed)

	f := grid.NewField(rows, cols)
	for r := 0; r < rows; r++ {
		y := float64(r) / cfg.Frequency
		for c := 0; c < cols; c++ {
			x := float64(c) / cfg.Frequency
			// Noise2D is approximately within [-1, 1]; map to [0, 1] and
			// clamp the tails before scaling into the requested range.
			n := (noise.Noise2D(x, y) + 1) / 2
			if n < 0 {
				n = 0
			} else if n > 1 {
				n = 1
			}
			f.Set(r, c, cfg.Min+n*(cfg.Max-cfg.Min))
		}
	}
	return f, nil
}
